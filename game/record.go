package game

import (
	"time"

	"github.com/beka-birhanu/vinom-mines/field"
	"github.com/google/uuid"
)

// Record is the persisted form of one game.
type Record struct {
	ID         uuid.UUID           `json:"id" bson:"_id"`
	UserID     uuid.UUID           `json:"userId" bson:"userId"`
	Config     Config              `json:"config" bson:"config"`
	Status     Status              `json:"status" bson:"status"`
	Cells      [][]field.CellState `json:"cells" bson:"cells"`
	Moves      int                 `json:"moves" bson:"moves"`
	CreatedAt  time.Time           `json:"createdAt" bson:"createdAt"`
	StartedAt  time.Time           `json:"startedAt" bson:"startedAt"`
	FinishedAt time.Time           `json:"finishedAt" bson:"finishedAt"`
}

// NewRecord creates the record of a game that has not been played yet.
func NewRecord(id, userID uuid.UUID, c Config, now time.Time) *Record {
	return &Record{
		ID:        id,
		UserID:    userID,
		Config:    c,
		Status:    StatusIdle,
		CreatedAt: now,
	}
}

// Engine rebuilds the engine of the recorded game.
func (r *Record) Engine(opts ...Option) (*Engine, error) {
	if r.Cells != nil {
		opts = append(opts, WithData(r.Cells))
	}
	return NewEngine(r.Config, opts...)
}

// Sync copies the committed state of e into r, stamping start and finish times on
// status transitions.
func (r *Record) Sync(e *Engine, now time.Time) {
	prev := r.Status
	r.Status, r.Cells = e.Export()
	r.Moves++

	if prev == StatusIdle && r.Status != StatusIdle {
		r.StartedAt = now
	}
	if !prev.IsTerminal() && r.Status.IsTerminal() {
		r.FinishedAt = now
	}
}

// Duration returns how long the game has been, or was, played.
func (r *Record) Duration(now time.Time) time.Duration {
	switch {
	case r.StartedAt.IsZero():
		return 0
	case r.FinishedAt.IsZero():
		return now.Sub(r.StartedAt)
	default:
		return r.FinishedAt.Sub(r.StartedAt)
	}
}
