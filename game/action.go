package game

import (
	"github.com/beka-birhanu/vinom-mines/field"
)

// ActionKind identifies what a player asked for.
type ActionKind int

const (
	ActionReveal     ActionKind = iota + 1 // Reveal a cell or chord a revealed one.
	ActionToggleFlag                       // Flag or unflag a cell.
)

// Action is one player request against a position.
type Action struct {
	Kind     ActionKind
	Position field.Position
}

// State is the complete state of a game at one point in time. A State produced by
// Resolve shares nothing mutable with its input.
type State struct {
	Field          field.Field
	Status         Status
	FlagsRemaining int
	Mines          int
}

// ActionChanges lists the cells whose category changed because of one action.
// Exploded cells are also listed as revealed.
type ActionChanges struct {
	Revealed  []field.Position `json:"revealed"`
	Flagged   []field.Position `json:"flagged"`
	Unflagged []field.Position `json:"unflagged"`
	Exploded  []field.Position `json:"exploded"`
}

// IsEmpty reports whether the action changed no cell.
func (c ActionChanges) IsEmpty() bool {
	return len(c.Revealed) == 0 && len(c.Flagged) == 0 && len(c.Unflagged) == 0 && len(c.Exploded) == 0
}

// Resolve computes the outcome of applying a to s. The input state is never modified:
// either s is returned as is (the action is meaningless) or a fresh state built on a
// clone of its field. rnd is only consulted when mines are seeded lazily.
func Resolve(s State, a Action, rnd field.RandSource) (State, ActionChanges) {
	if s.Status.IsTerminal() || s.Field == nil || !s.Field.InBound(a.Position) {
		return s, ActionChanges{}
	}

	switch a.Kind {
	case ActionReveal:
		return resolveReveal(s, a.Position, rnd)
	case ActionToggleFlag:
		return resolveToggleFlag(s, a.Position)
	default:
		return s, ActionChanges{}
	}
}

func resolveReveal(s State, pos field.Position, rnd field.RandSource) (State, ActionChanges) {
	work := s.Field.Clone()
	next := State{Field: work, Status: s.Status, Mines: s.Mines}
	var changes ActionChanges

	if s.Status == StatusIdle {
		if !work.MinesPlaced() {
			work.PlaceMines(s.Mines, rnd)
		}
		if target, _ := work.Cell(pos); target.IsMine {
			if dest, ok := firstSafeCell(work, pos); ok {
				_ = work.RelocateMine(pos, dest)
			}
		}
		next.Status = StatusPlaying
	}

	target, _ := work.Cell(pos)
	switch {
	case target.IsFlagged:
	case target.IsMine:
		explode(work, pos, &changes)
	case target.IsRevealed:
		chord(work, target, &changes)
	default:
		openArea(work, pos, &changes)
	}

	if changes.IsEmpty() && next.Status == s.Status {
		return s, ActionChanges{}
	}

	snap := work.Snapshot()
	next.Status = deriveStatus(next.Status, snap, work.Size(), s.Mines)
	next.FlagsRemaining = s.Mines - len(snap.Flagged)
	return next, changes
}

func resolveToggleFlag(s State, pos field.Position) (State, ActionChanges) {
	if s.Status != StatusPlaying {
		return s, ActionChanges{}
	}

	target, _ := s.Field.Cell(pos)
	if target.IsRevealed || (!target.IsFlagged && s.FlagsRemaining <= 0) {
		return s, ActionChanges{}
	}

	work := s.Field.Clone()
	next := State{Field: work, Status: s.Status, Mines: s.Mines, FlagsRemaining: s.FlagsRemaining}
	var changes ActionChanges
	if target.IsFlagged {
		work.SetFlag(pos, false)
		changes.Unflagged = append(changes.Unflagged, pos)
		next.FlagsRemaining++
	} else {
		work.SetFlag(pos, true)
		changes.Flagged = append(changes.Flagged, pos)
		next.FlagsRemaining--
	}
	return next, changes
}

// chord opens the closed neighbours of a revealed cell once enough of them are flagged.
func chord(f field.Field, target field.CellState, changes *ActionChanges) {
	nbrs := f.Neighbors(target.Position)

	flags := 0
	for _, nbr := range nbrs {
		if cell, _ := f.Cell(nbr); cell.IsFlagged {
			flags++
		}
	}
	if flags != target.AdjacentMines {
		return
	}

	for _, nbr := range nbrs {
		cell, _ := f.Cell(nbr)
		if cell.IsFlagged || cell.IsRevealed {
			continue
		}
		if cell.IsMine {
			explode(f, nbr, changes)
			continue
		}
		openArea(f, nbr, changes)
	}
}

// openArea reveals the flood-fill area of origin, clearing flags on the way.
func openArea(f field.Field, origin field.Position, changes *ActionChanges) {
	for _, pos := range f.FloodFillReveal(origin) {
		cell, _ := f.Cell(pos)
		if cell.IsFlagged {
			f.SetFlag(pos, false)
			changes.Unflagged = append(changes.Unflagged, pos)
		}
		if !cell.IsRevealed {
			f.Reveal(pos)
			changes.Revealed = append(changes.Revealed, pos)
		}
	}
}

func explode(f field.Field, pos field.Position, changes *ActionChanges) {
	f.Reveal(pos)
	changes.Revealed = append(changes.Revealed, pos)
	changes.Exploded = append(changes.Exploded, pos)
}

// firstSafeCell returns the first cell in row-major order, other than skip, without a mine.
func firstSafeCell(f field.Field, skip field.Position) (field.Position, bool) {
	for r := range f.Rows() {
		for c := range f.Cols() {
			pos := field.Position{Row: r, Col: c}
			if pos == skip {
				continue
			}
			if cell, _ := f.Cell(pos); !cell.IsMine {
				return pos, true
			}
		}
	}
	return field.Position{}, false
}

// deriveStatus applies the win and loss conditions to a post-action snapshot.
func deriveStatus(current Status, snap field.Snapshot, size, mines int) Status {
	switch {
	case len(snap.Exploded) > 0:
		return StatusLost
	case len(snap.Revealed) == size-mines:
		return StatusWon
	case current == StatusIdle && len(snap.Revealed) == 0:
		return StatusIdle
	default:
		return StatusPlaying
	}
}
