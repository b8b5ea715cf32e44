/*
Package game implements the action resolver of the mine-finding puzzle.

An Engine holds the committed State of one game. RevealCell and ToggleFlag never touch
that state: they resolve the action against a clone of the field and hand back an
ActionResult previewing the outcome. Nothing changes until the result is passed to
Commit, which swaps field, status and flag counter in one step.
*/
package game

import (
	"errors"
	"fmt"
	"sync"

	"github.com/beka-birhanu/vinom-mines/field"
)

// Engine-related errors.
var (
	ErrInvalidConfig = errors.New("invalid game configuration")
	ErrInvalidData   = errors.New("invalid saved game data")
	ErrStaleAction   = errors.New("action was resolved against an outdated state")
)

const (
	minDimension = 1   // Minimum rows or columns.
	maxDimension = 100 // Maximum rows or columns.
)

// Config describes the board of a game.
type Config struct {
	Rows  int `json:"rows" bson:"rows"`
	Cols  int `json:"cols" bson:"cols"`
	Mines int `json:"mines" bson:"mines"`
}

// Validate rejects boards that cannot be played: mines must leave at least one safe cell.
func (c Config) Validate() error {
	if c.Rows < minDimension || c.Cols < minDimension {
		return fmt.Errorf("%w: board must be at least %dx%d", ErrInvalidConfig, minDimension, minDimension)
	}
	if c.Rows > maxDimension || c.Cols > maxDimension {
		return fmt.Errorf("%w: board must be at most %dx%d", ErrInvalidConfig, maxDimension, maxDimension)
	}
	if c.Mines < 0 || c.Mines >= c.Rows*c.Cols {
		return fmt.Errorf("%w: mines must be in [0, %d)", ErrInvalidConfig, c.Rows*c.Cols)
	}
	return nil
}

// Option customises a new Engine.
type Option func(*options)

type options struct {
	rnd   field.RandSource
	data  [][]field.CellState
	shape field.Shape
}

// WithRandSource sets the source used for lazy mine placement.
func WithRandSource(rnd field.RandSource) Option {
	return func(o *options) {
		o.rnd = rnd
	}
}

// WithData restores the game from a previously saved cell grid.
func WithData(data [][]field.CellState) Option {
	return func(o *options) {
		o.data = data
	}
}

// WithShape selects the board topology.
func WithShape(shape field.Shape) Option {
	return func(o *options) {
		o.shape = shape
	}
}

// GameSnapshot is the outward view of a game state.
type GameSnapshot struct {
	field.Snapshot
	Status         Status `json:"status"`
	FlagsRemaining int    `json:"flagsRemaining"`
	Mines          int    `json:"mines"`
	Version        int64  `json:"version"`
}

// ActionData is the preview of an action.
type ActionData struct {
	Snapshot GameSnapshot  `json:"snapshot"`
	Changes  ActionChanges `json:"changes"`
}

// ActionResult carries the preview of one action and the state Commit installs.
type ActionResult struct {
	Data ActionData

	next    *State // Nil when the action resolved to nothing.
	version int64  // Engine version the action was resolved against.
}

// Changed reports whether committing the result alters the game.
func (r ActionResult) Changed() bool {
	return r.next != nil
}

// Engine holds the committed state of one game.
type Engine struct {
	config       Config
	state        *State           // Committed state, replaced wholesale on commit.
	version      int64            // Bumped on every state-changing commit.
	rnd          field.RandSource // Guarded by rndMu.
	rndMu        sync.Mutex
	sync.RWMutex // Guards state and version.
}

// NewEngine creates an engine for a fresh or restored game.
func NewEngine(c Config, opts ...Option) (*Engine, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	o := &options{shape: field.ShapeSquare}
	for _, opt := range opts {
		opt(o)
	}
	if o.rnd == nil {
		o.rnd = field.DefaultRandSource()
	}

	fieldOpts := []field.Option{}
	if o.data != nil {
		fieldOpts = append(fieldOpts, field.WithData(o.data))
	}
	f, err := field.New(o.shape, field.Config{Rows: c.Rows, Cols: c.Cols}, fieldOpts...)
	if err != nil {
		if o.data != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidData, err)
		}
		return nil, err
	}

	state := &State{Field: f, Status: StatusIdle, FlagsRemaining: c.Mines, Mines: c.Mines}
	if o.data != nil {
		if err := restoreState(state); err != nil {
			return nil, err
		}
	}

	return &Engine{
		config: c,
		state:  state,
		rnd:    o.rnd,
	}, nil
}

// restoreState checks a restored field and derives status and flags from it.
func restoreState(s *State) error {
	if err := s.Field.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidData, err)
	}

	mines := s.Field.MineCount()
	if mines != 0 && mines != s.Mines {
		return fmt.Errorf("%w: board holds %d mines, want %d", ErrInvalidData, mines, s.Mines)
	}

	snap := s.Field.Snapshot()
	if mines == 0 && s.Mines > 0 && len(snap.Revealed) > 0 {
		return fmt.Errorf("%w: revealed cells on a board without mines", ErrInvalidData)
	}

	s.Status = deriveStatus(StatusIdle, snap, s.Field.Size(), s.Mines)
	s.FlagsRemaining = s.Mines - len(snap.Flagged)
	return nil
}

// Config returns the board configuration.
func (e *Engine) Config() Config {
	return e.config
}

// Status returns the committed status.
func (e *Engine) Status() Status {
	e.RLock()
	defer e.RUnlock()
	return e.state.Status
}

// Export returns the committed status together with its cell grid.
func (e *Engine) Export() (Status, [][]field.CellState) {
	e.RLock()
	defer e.RUnlock()
	return e.state.Status, e.state.Field.Data()
}

// GameSnapshot returns the outward view of the committed state.
func (e *Engine) GameSnapshot() GameSnapshot {
	state, version := e.committed()
	return snapshotOf(state, version)
}

// PlayerSnapshot is GameSnapshot as the player may see it: until the game is finished,
// unrevealed cells carry neither mine nor adjacency information.
func (e *Engine) PlayerSnapshot() GameSnapshot {
	state, version := e.committed()
	snap := snapshotOf(state, version)
	if !state.Status.IsTerminal() {
		snap.Snapshot = field.ObscureSnapshot(snap.Snapshot)
	}
	return snap
}

// RevealCell previews revealing, or chording, the cell at pos.
func (e *Engine) RevealCell(pos field.Position) ActionResult {
	return e.resolve(Action{Kind: ActionReveal, Position: pos})
}

// ToggleFlag previews flagging or unflagging the cell at pos.
func (e *Engine) ToggleFlag(pos field.Position) ActionResult {
	return e.resolve(Action{Kind: ActionToggleFlag, Position: pos})
}

// Commit installs the state previewed by r. Results that changed nothing commit as a
// no-op; results resolved against an older version are refused.
func (e *Engine) Commit(r ActionResult) error {
	if !r.Changed() {
		return nil
	}

	e.Lock()
	defer e.Unlock()

	if r.version != e.version {
		return ErrStaleAction
	}
	e.state = r.next
	e.version++
	return nil
}

// Apply resolves and commits a in one step.
func (e *Engine) Apply(a Action) (ActionResult, error) {
	r := e.resolve(a)
	if err := e.Commit(r); err != nil {
		return ActionResult{}, err
	}
	return r, nil
}

func (e *Engine) resolve(a Action) ActionResult {
	state, version := e.committed()

	next, changes := Resolve(*state, a, e.lockedRand)
	if next.Field == state.Field {
		return ActionResult{
			Data:    ActionData{Snapshot: snapshotOf(state, version), Changes: changes},
			version: version,
		}
	}

	return ActionResult{
		Data:    ActionData{Snapshot: snapshotOf(&next, version+1), Changes: changes},
		next:    &next,
		version: version,
	}
}

func (e *Engine) committed() (*State, int64) {
	e.RLock()
	defer e.RUnlock()
	return e.state, e.version
}

func (e *Engine) lockedRand(n int) int {
	e.rndMu.Lock()
	defer e.rndMu.Unlock()
	return e.rnd(n)
}

func snapshotOf(s *State, version int64) GameSnapshot {
	return GameSnapshot{
		Snapshot:       s.Field.Snapshot(),
		Status:         s.Status,
		FlagsRemaining: s.FlagsRemaining,
		Mines:          s.Mines,
		Version:        version,
	}
}
