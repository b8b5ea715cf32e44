/*
Package field provides the board model of the mine-finding puzzle.

A Field owns every cell of a board: it places and relocates mines, keeps the
adjacent-mine counters of all cells in sync, answers neighbourhood and flood-fill
queries, and produces deep clones and classified snapshots.

Board shapes are modelled as implementations of the Field interface and are selected
through New. Only the square topology is currently provided.
*/
package field

import (
	crand "crypto/rand"
	"encoding/binary"
	"errors"
	"math/rand"
	"sync"
)

// Shape identifies a board topology.
type Shape string

const (
	ShapeSquare   Shape = "square"
	ShapeHexagon  Shape = "hexagon"
	ShapeTriangle Shape = "triangle"
)

// Field-related errors.
var (
	ErrUnsupportedShape = errors.New("unsupported board shape")
	ErrInvalidDimension = errors.New("field dimensions must be positive")
	ErrOutOfBounds      = errors.New("position is out of the field")
	ErrNotMine          = errors.New("source cell holds no mine")
	ErrAlreadyMine      = errors.New("target cell already holds a mine")
	ErrDataShape        = errors.New("data grid does not match field dimensions")
	ErrAdjacencyDrift   = errors.New("adjacent mine count does not match neighbours")
)

// RandSource returns a pseudo-random integer in [0, n).
type RandSource func(n int) int

// Field is the capability set every board shape provides.
type Field interface {
	// Shape returns the board topology.
	Shape() Shape
	// Rows returns the number of rows.
	Rows() int
	// Cols returns the number of columns.
	Cols() int
	// Size returns the number of cells.
	Size() int
	// InBound reports whether pos addresses a cell of the field.
	InBound(pos Position) bool
	// Cell returns a copy of the cell at pos.
	Cell(pos Position) (CellState, bool)
	// MinesPlaced reports whether the field has been seeded.
	MinesPlaced() bool
	// MineCount returns the number of mined cells.
	MineCount() int

	// PlaceMines seeds count mines at random. It is a no-op once mines are placed.
	PlaceMines(count int, rnd RandSource)
	// RelocateMine moves the mine at from to to.
	RelocateMine(from, to Position) error
	// Neighbors returns the in-bounds neighbours of pos.
	Neighbors(pos Position) []Position
	// FloodFillReveal returns the reveal area opened from origin.
	FloodFillReveal(origin Position) []Position

	// Reveal marks the cell revealed.
	Reveal(pos Position)
	// SetFlag sets or clears the flag of the cell.
	SetFlag(pos Position, flagged bool)

	// Clone returns an independent deep copy.
	Clone() Field
	// Snapshot classifies every cell in one pass.
	Snapshot() Snapshot
	// Data returns a copy of the cell grid, row by row.
	Data() [][]CellState
	// Validate checks that every adjacent mine counter matches its neighbourhood.
	Validate() error
}

// Config holds the dimensions of a new field.
type Config struct {
	Rows int
	Cols int
}

// Option customises a new field.
type Option func(*options)

type options struct {
	data [][]CellState
}

// WithData restores the field from a previously saved cell grid.
func WithData(data [][]CellState) Option {
	return func(o *options) {
		o.data = data
	}
}

// New creates a field of the given shape.
func New(shape Shape, c Config, opts ...Option) (Field, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	switch shape {
	case ShapeSquare, "":
		var (
			s   *Square
			err error
		)
		if o.data != nil {
			s, err = squareFromData(c, o.data)
		} else {
			s, err = NewSquare(c)
		}
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, ErrUnsupportedShape
	}
}

// Snapshot is the classified view of a field at one point in time.
type Snapshot struct {
	Cells        [][]CellView `json:"cells"`
	Mined        []CellView   `json:"mined"`
	Flagged      []CellView   `json:"flagged"`
	Revealed     []CellView   `json:"revealed"`
	Exploded     []CellView   `json:"exploded"`
	Missed       []CellView   `json:"missed"`
	NotFoundMine []CellView   `json:"notFoundMine"`
}

// DefaultRandSource returns a RandSource backed by math/rand seeded from crypto/rand.
func DefaultRandSource() RandSource {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return rand.Intn
	}
	rng := rand.New(rand.NewSource(int64(binary.LittleEndian.Uint64(b[:]))))
	return rng.Intn
}

// LockedRandSource serialises calls to rnd so it can be shared between goroutines.
func LockedRandSource(rnd RandSource) RandSource {
	var mu sync.Mutex
	return func(n int) int {
		mu.Lock()
		defer mu.Unlock()
		return rnd(n)
	}
}

// ObscureSnapshot returns snap as a player sees it before the game ends. Unrevealed
// cells keep only their position and flag; no predicate reveals what lies beneath, so
// Missed and NotFoundMine stay empty.
func ObscureSnapshot(snap Snapshot) Snapshot {
	out := Snapshot{Cells: make([][]CellView, len(snap.Cells))}
	for r, row := range snap.Cells {
		out.Cells[r] = make([]CellView, len(row))
		for c, view := range row {
			if !view.IsRevealed {
				view = CellView{
					Position:    view.Position,
					IsFlagged:   view.IsFlagged,
					IsUntouched: view.IsUntouched,
				}
			}
			out.Cells[r][c] = view

			if view.IsMine {
				out.Mined = append(out.Mined, view)
			}
			if view.IsFlagged {
				out.Flagged = append(out.Flagged, view)
			}
			if view.IsRevealed {
				out.Revealed = append(out.Revealed, view)
			}
			if view.IsExploded {
				out.Exploded = append(out.Exploded, view)
			}
		}
	}
	return out
}

// Obscure returns a copy of data as a player sees it: unrevealed cells carry neither
// mine nor adjacency information.
func Obscure(data [][]CellState) [][]CellState {
	out := make([][]CellState, len(data))
	for r, row := range data {
		out[r] = make([]CellState, len(row))
		for c, cell := range row {
			if !cell.IsRevealed {
				cell.IsMine = false
				cell.AdjacentMines = 0
			}
			out[r][c] = cell
		}
	}
	return out
}
