package solver

import (
	"fmt"

	"github.com/beka-birhanu/vinom-mines/field"
)

// rule says that exactly need of the variables in vars are mines.
type rule struct {
	need int
	vars []int
}

// region is an independent set of rules over shared variables.
type region struct {
	vars  []field.Position
	index map[field.Position]int
	rules []rule
	// watch lists, per variable, the rules mentioning it.
	watch [][]int
}

func (r *region) add(need int, cells []field.Position) {
	ru := rule{need: need}
	for _, pos := range cells {
		i, ok := r.index[pos]
		if !ok {
			i = len(r.vars)
			r.index[pos] = i
			r.vars = append(r.vars, pos)
			r.watch = append(r.watch, nil)
		}
		ru.vars = append(ru.vars, i)
		r.watch[i] = append(r.watch[i], len(r.rules))
	}
	r.rules = append(r.rules, ru)
}

// enumerate counts, over every assignment satisfying all rules, how often each
// variable is a mine, and returns those frequencies.
func (r *region) enumerate() ([]float64, error) {
	e := &enumeration{
		r:       r,
		assign:  make([]int8, len(r.vars)),
		mines:   make([]int, len(r.rules)),
		unknown: make([]int, len(r.rules)),
		hits:    make([]int, len(r.vars)),
	}
	for i := range e.assign {
		e.assign[i] = unassigned
	}
	for i, ru := range r.rules {
		e.unknown[i] = len(ru.vars)
		if ru.need < 0 || ru.need > len(ru.vars) {
			return nil, fmt.Errorf("%w: number at %v", ErrInconsistent, r.vars[ru.vars[0]])
		}
	}

	e.search(0)
	if e.solutions == 0 {
		return nil, ErrInconsistent
	}

	probs := make([]float64, len(r.vars))
	for i, h := range e.hits {
		probs[i] = float64(h) / float64(e.solutions)
	}
	return probs, nil
}

const unassigned int8 = -1

// enumeration is the backtracking state of one region.
type enumeration struct {
	r         *region
	assign    []int8 // Per variable: unassigned, 0 or 1.
	mines     []int  // Per rule: assigned mines.
	unknown   []int  // Per rule: unassigned variables.
	hits      []int  // Per variable: solutions where it is a mine.
	solutions int
}

func (e *enumeration) search(v int) {
	if v == len(e.assign) {
		e.solutions++
		for i, a := range e.assign {
			if a == 1 {
				e.hits[i]++
			}
		}
		return
	}

	for _, value := range []int8{0, 1} {
		if e.set(v, value) {
			e.search(v + 1)
		}
		e.unset(v, value)
	}
}

// set assigns value to v and reports whether every rule touching v can still be met.
func (e *enumeration) set(v int, value int8) bool {
	e.assign[v] = value
	ok := true
	for _, ri := range e.r.watch[v] {
		e.unknown[ri]--
		e.mines[ri] += int(value)
		need := e.r.rules[ri].need
		if e.mines[ri] > need || e.mines[ri]+e.unknown[ri] < need {
			ok = false
		}
	}
	return ok
}

func (e *enumeration) unset(v int, value int8) {
	for _, ri := range e.r.watch[v] {
		e.unknown[ri]++
		e.mines[ri] -= int(value)
	}
	e.assign[v] = unassigned
}
