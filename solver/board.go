package solver

import (
	"fmt"

	"github.com/beka-birhanu/vinom-mines/field"
)

// constraint is one revealed number and the unrevealed cells it covers.
type constraint struct {
	pos    field.Position
	need   int              // Mines among closed, after discounting revealed mines.
	closed []field.Position // Unrevealed neighbours.
}

// board is the solver's working view of a field.
type board struct {
	constraints []constraint
	known       map[field.Position]bool // Proven cells: true is a mine, false is safe.
}

func newBoard(f field.Field) *board {
	b := &board{known: make(map[field.Position]bool)}

	for r := range f.Rows() {
		for c := range f.Cols() {
			cell, _ := f.Cell(field.Position{Row: r, Col: c})
			if !cell.IsRevealed || cell.IsMine {
				continue
			}

			con := constraint{pos: cell.Position, need: cell.AdjacentMines}
			for _, nbr := range f.Neighbors(cell.Position) {
				n, _ := f.Cell(nbr)
				switch {
				case !n.IsRevealed:
					con.closed = append(con.closed, nbr)
				case n.IsMine:
					con.need--
				}
			}
			if len(con.closed) > 0 {
				b.constraints = append(b.constraints, con)
			}
		}
	}

	return b
}

// infer applies the certain-mine and certain-safe rules until a full pass proves nothing new.
func (b *board) infer() {
	for changed := true; changed; {
		changed = false
		for _, con := range b.constraints {
			mines, safe, open := b.split(con.closed)
			if len(open) == 0 {
				continue
			}

			var mark, value bool
			switch {
			case con.need == len(con.closed)-safe:
				mark, value = true, true
			case con.need == mines:
				mark, value = true, false
			}
			if !mark {
				continue
			}
			for _, pos := range open {
				b.known[pos] = value
			}
			changed = true
		}
	}
}

// split counts proven mines and proven safe cells in cells and returns the undetermined rest.
func (b *board) split(cells []field.Position) (mines, safe int, open []field.Position) {
	for _, pos := range cells {
		mine, ok := b.known[pos]
		switch {
		case !ok:
			open = append(open, pos)
		case mine:
			mines++
		default:
			safe++
		}
	}
	return mines, safe, open
}

// regions groups the constraints that still have undetermined cells into connected
// components linked by shared undetermined cells.
func (b *board) regions() []*region {
	var active []constraint
	var opens [][]field.Position
	for _, con := range b.constraints {
		mines, _, open := b.split(con.closed)
		if len(open) == 0 {
			continue
		}
		con.need -= mines
		active = append(active, con)
		opens = append(opens, open)
	}

	uf := newUnionFind(len(active))
	owner := make(map[field.Position]int)
	for i, open := range opens {
		for _, pos := range open {
			if j, seen := owner[pos]; seen {
				uf.union(i, j)
				continue
			}
			owner[pos] = i
		}
	}

	byRoot := make(map[int]*region)
	var result []*region
	for i, con := range active {
		root := uf.find(i)
		r, ok := byRoot[root]
		if !ok {
			r = &region{index: make(map[field.Position]int)}
			byRoot[root] = r
			result = append(result, r)
		}
		r.add(con.need, opens[i])
	}
	return result
}

func regionTooLarge(vars, ceiling int) error {
	return fmt.Errorf("%w: %d variables, ceiling is %d", ErrRegionTooLarge, vars, ceiling)
}

type unionFind struct {
	parent []int
}

func newUnionFind(n int) *unionFind {
	parent := make([]int, n)
	for i := range parent {
		parent[i] = i
	}
	return &unionFind{parent: parent}
}

func (u *unionFind) find(i int) int {
	for u.parent[i] != i {
		u.parent[i] = u.parent[u.parent[i]]
		i = u.parent[i]
	}
	return i
}

func (u *unionFind) union(a, b int) {
	ra, rb := u.find(a), u.find(b)
	if ra != rb {
		u.parent[ra] = rb
	}
}
