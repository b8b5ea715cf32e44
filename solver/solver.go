/*
Package solver infers mine probabilities from the revealed numbers of a field.

The solver first applies the two local rules (certain mine, certain safe) until a
pass learns nothing new. The remaining frontier is split into regions: revealed
numbers linked through shared undetermined neighbours. Every region is solved by
enumerating the mine assignments of its variables that satisfy all its numbers.

Enumeration is exponential in the variable count of a region, so it is bounded by
MaxRegionVariables; a larger region fails with ErrRegionTooLarge.

Flags are never trusted. Revealed mines count as known mines.
*/
package solver

import (
	"cmp"
	"errors"
	"slices"

	"github.com/beka-birhanu/vinom-mines/field"
)

// Solver-related errors.
var (
	ErrRegionTooLarge = errors.New("region exceeds the enumeration ceiling")
	ErrInconsistent   = errors.New("revealed numbers admit no mine layout")
	ErrNilField       = errors.New("solver needs a field")
)

const (
	// DefaultMaxRegionVariables is the enumeration ceiling used when none is configured.
	DefaultMaxRegionVariables = 20
)

// Probability is the chance that the cell at Position holds a mine.
type Probability struct {
	Position    field.Position `json:"position"`
	Probability float64        `json:"probability"`
}

// IsSafe reports whether the cell is proven free of mines.
func (p Probability) IsSafe() bool {
	return p.Probability == 0
}

// IsMine reports whether the cell is proven to hold a mine.
func (p Probability) IsMine() bool {
	return p.Probability == 1
}

// Option customises a Solver.
type Option func(*Solver)

// WithMaxRegionVariables sets the enumeration ceiling. Non-positive values keep the default.
func WithMaxRegionVariables(n int) Option {
	return func(s *Solver) {
		if n > 0 {
			s.maxVars = n
		}
	}
}

// Solver analyses one field. It never mutates it.
type Solver struct {
	f       field.Field
	maxVars int
}

// New creates a solver over f.
func New(f field.Field, opts ...Option) *Solver {
	s := &Solver{f: f, maxVars: DefaultMaxRegionVariables}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Solve returns the mine probability of every unrevealed cell bordering a revealed
// number, in row-major order. Cells without any revealed neighbour are not reported.
func (s *Solver) Solve() ([]Probability, error) {
	if s.f == nil {
		return nil, ErrNilField
	}

	b := newBoard(s.f)
	b.infer()

	probs := make(map[field.Position]float64, len(b.known))
	for pos, mine := range b.known {
		probs[pos] = 0
		if mine {
			probs[pos] = 1
		}
	}

	for _, r := range b.regions() {
		if len(r.vars) > s.maxVars {
			return nil, regionTooLarge(len(r.vars), s.maxVars)
		}
		regionProbs, err := r.enumerate()
		if err != nil {
			return nil, err
		}
		for i, v := range r.vars {
			probs[v] = regionProbs[i]
		}
	}

	result := make([]Probability, 0, len(probs))
	for pos, p := range probs {
		result = append(result, Probability{Position: pos, Probability: p})
	}
	slices.SortFunc(result, func(a, b Probability) int {
		if c := cmp.Compare(a.Position.Row, b.Position.Row); c != 0 {
			return c
		}
		return cmp.Compare(a.Position.Col, b.Position.Col)
	})
	return result, nil
}

// IsGuessingState reports whether no unrevealed cell is proven safe, so the next
// reveal has to be a guess.
func (s *Solver) IsGuessingState() (bool, error) {
	probs, err := s.Solve()
	if err != nil {
		return false, err
	}
	return Guessing(probs), nil
}

// Guessing reports whether probs proves no cell safe.
func Guessing(probs []Probability) bool {
	return !slices.ContainsFunc(probs, Probability.IsSafe)
}
