package field

import (
	"fmt"
	"strings"
)

const (
	// maxRejectedDraws bounds rejection sampling per mine before falling back to a
	// linear probe from the drawn cell.
	maxRejectedDraws = 64
)

var (
	// squareOffsets lists the 8-neighbourhood of a square cell.
	squareOffsets = []Position{
		{Row: -1, Col: -1}, {Row: -1, Col: 0}, {Row: -1, Col: 1},
		{Row: 0, Col: -1}, {Row: 0, Col: 1},
		{Row: 1, Col: -1}, {Row: 1, Col: 0}, {Row: 1, Col: 1},
	}
)

var _ Field = &Square{}

// Square is a rectangular field where every cell touches up to 8 neighbours.
type Square struct {
	rows        int           // Number of rows.
	cols        int           // Number of columns.
	grid        [][]CellState // Cells indexed by row then column.
	minesPlaced bool          // Whether the field was seeded.
}

// NewSquare creates an unseeded square field.
func NewSquare(c Config) (*Square, error) {
	if c.Rows <= 0 || c.Cols <= 0 {
		return nil, ErrInvalidDimension
	}

	grid := make([][]CellState, c.Rows)
	for r := range grid {
		grid[r] = make([]CellState, c.Cols)
		for col := range grid[r] {
			grid[r][col] = CellState{Position: Position{Row: r, Col: col}}
		}
	}

	return &Square{
		rows: c.Rows,
		cols: c.Cols,
		grid: grid,
	}, nil
}

// squareFromData restores a square field verbatim from saved cells. The field counts
// as seeded when at least one mine is present.
func squareFromData(c Config, data [][]CellState) (*Square, error) {
	s, err := NewSquare(c)
	if err != nil {
		return nil, err
	}
	if len(data) != c.Rows {
		return nil, fmt.Errorf("%w: got %d rows, want %d", ErrDataShape, len(data), c.Rows)
	}

	for r, row := range data {
		if len(row) != c.Cols {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrDataShape, r, len(row), c.Cols)
		}
		for col, cell := range row {
			cell.Position = Position{Row: r, Col: col}
			s.grid[r][col] = cell
			if cell.IsMine {
				s.minesPlaced = true
			}
		}
	}
	return s, nil
}

// Shape implements Field.
func (s *Square) Shape() Shape {
	return ShapeSquare
}

// Rows implements Field.
func (s *Square) Rows() int {
	return s.rows
}

// Cols implements Field.
func (s *Square) Cols() int {
	return s.cols
}

// Size implements Field.
func (s *Square) Size() int {
	return s.rows * s.cols
}

// InBound implements Field.
func (s *Square) InBound(pos Position) bool {
	return pos.Row >= 0 && pos.Row < s.rows && pos.Col >= 0 && pos.Col < s.cols
}

// Cell implements Field.
func (s *Square) Cell(pos Position) (CellState, bool) {
	if !s.InBound(pos) {
		return CellState{}, false
	}
	return s.grid[pos.Row][pos.Col], true
}

// MinesPlaced implements Field.
func (s *Square) MinesPlaced() bool {
	return s.minesPlaced
}

// MineCount implements Field.
func (s *Square) MineCount() int {
	count := 0
	for _, row := range s.grid {
		for _, cell := range row {
			if cell.IsMine {
				count++
			}
		}
	}
	return count
}

// PlaceMines implements Field.
//
// Positions are drawn uniformly at random and redrawn when already chosen. After
// maxRejectedDraws consecutive rejections the next free cell after the drawn one, in
// row-major order, is taken instead, so a skewed source still terminates. count is
// clamped to the number of cells.
func (s *Square) PlaceMines(count int, rnd RandSource) {
	if s.minesPlaced {
		return
	}
	s.minesPlaced = true

	count = min(count, s.Size())
	if count <= 0 {
		return
	}

	chosen := make(map[Position]struct{}, count)
	rejected := 0
	for len(chosen) < count {
		pos := Position{Row: rnd(s.rows), Col: rnd(s.cols)}
		if _, taken := chosen[pos]; taken {
			rejected++
			if rejected < maxRejectedDraws {
				continue
			}
			pos = s.nextFree(pos, chosen)
		}
		rejected = 0
		chosen[pos] = struct{}{}
	}

	for pos := range chosen {
		s.setMine(pos, true)
	}
}

// nextFree walks row-major from pos, wrapping around, to the first position not in taken.
func (s *Square) nextFree(pos Position, taken map[Position]struct{}) Position {
	start := pos.Row*s.cols + pos.Col
	for i := 1; i <= s.Size(); i++ {
		idx := (start + i) % s.Size()
		candidate := Position{Row: idx / s.cols, Col: idx % s.cols}
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
	return pos
}

// RelocateMine implements Field.
func (s *Square) RelocateMine(from, to Position) error {
	if !s.InBound(from) || !s.InBound(to) {
		return ErrOutOfBounds
	}
	if !s.grid[from.Row][from.Col].IsMine {
		return ErrNotMine
	}
	if s.grid[to.Row][to.Col].IsMine {
		return ErrAlreadyMine
	}

	s.setMine(from, false)
	s.setMine(to, true)
	return nil
}

// setMine flips the mine flag of pos and adjusts every neighbour's counter.
func (s *Square) setMine(pos Position, mined bool) {
	cell := &s.grid[pos.Row][pos.Col]
	if cell.IsMine == mined {
		return
	}
	cell.IsMine = mined

	delta := 1
	if !mined {
		delta = -1
	}
	for _, nbr := range s.Neighbors(pos) {
		s.grid[nbr.Row][nbr.Col].AdjacentMines += delta
	}
}

// Neighbors implements Field.
func (s *Square) Neighbors(pos Position) []Position {
	result := make([]Position, 0, len(squareOffsets))
	for _, delta := range squareOffsets {
		nbr := Position{Row: pos.Row + delta.Row, Col: pos.Col + delta.Col}
		if s.InBound(nbr) {
			result = append(result, nbr)
		}
	}
	return result
}

// FloodFillReveal implements Field.
//
// The traversal is breadth first from origin and only expands empty cells. Every
// visited cell is part of the area whatever its current revealed or flagged state.
func (s *Square) FloodFillReveal(origin Position) []Position {
	if !s.InBound(origin) {
		return nil
	}

	visited := map[Position]struct{}{origin: {}}
	area := []Position{origin}
	queue := []Position{origin}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if !s.grid[cur.Row][cur.Col].IsEmpty() {
			continue
		}
		for _, nbr := range s.Neighbors(cur) {
			if _, seen := visited[nbr]; seen {
				continue
			}
			visited[nbr] = struct{}{}
			area = append(area, nbr)
			queue = append(queue, nbr)
		}
	}

	return area
}

// Reveal implements Field.
func (s *Square) Reveal(pos Position) {
	if s.InBound(pos) {
		s.grid[pos.Row][pos.Col].IsRevealed = true
	}
}

// SetFlag implements Field.
func (s *Square) SetFlag(pos Position, flagged bool) {
	if s.InBound(pos) {
		s.grid[pos.Row][pos.Col].IsFlagged = flagged
	}
}

// Clone implements Field.
func (s *Square) Clone() Field {
	return &Square{
		rows:        s.rows,
		cols:        s.cols,
		grid:        s.Data(),
		minesPlaced: s.minesPlaced,
	}
}

// Data implements Field.
func (s *Square) Data() [][]CellState {
	data := make([][]CellState, s.rows)
	for r, row := range s.grid {
		data[r] = make([]CellState, s.cols)
		copy(data[r], row)
	}
	return data
}

// Snapshot implements Field.
func (s *Square) Snapshot() Snapshot {
	snap := Snapshot{Cells: make([][]CellView, s.rows)}

	for r, row := range s.grid {
		snap.Cells[r] = make([]CellView, s.cols)
		for c, cell := range row {
			view := cell.View()
			snap.Cells[r][c] = view

			if view.IsMine {
				snap.Mined = append(snap.Mined, view)
			}
			if view.IsFlagged {
				snap.Flagged = append(snap.Flagged, view)
			}
			if view.IsRevealed {
				snap.Revealed = append(snap.Revealed, view)
			}
			if view.IsExploded {
				snap.Exploded = append(snap.Exploded, view)
			}
			if view.IsMissed {
				snap.Missed = append(snap.Missed, view)
			}
			if view.NotFoundMine {
				snap.NotFoundMine = append(snap.NotFoundMine, view)
			}
		}
	}

	return snap
}

// Validate implements Field.
func (s *Square) Validate() error {
	for r, row := range s.grid {
		for c, cell := range row {
			mined := 0
			for _, nbr := range s.Neighbors(Position{Row: r, Col: c}) {
				if s.grid[nbr.Row][nbr.Col].IsMine {
					mined++
				}
			}
			if mined != cell.AdjacentMines {
				return fmt.Errorf("%w: cell (%d,%d) has %d, neighbours hold %d", ErrAdjacencyDrift, r, c, cell.AdjacentMines, mined)
			}
		}
	}
	return nil
}

// String provides a textual representation of the field.
func (s *Square) String() string {
	var b strings.Builder
	for _, row := range s.grid {
		for _, cell := range row {
			switch {
			case cell.IsFlagged:
				b.WriteString("F ")
			case !cell.IsRevealed:
				b.WriteString("- ")
			case cell.IsMine:
				b.WriteString("* ")
			case cell.AdjacentMines == 0:
				b.WriteString(". ")
			default:
				fmt.Fprintf(&b, "%d ", cell.AdjacentMines)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
