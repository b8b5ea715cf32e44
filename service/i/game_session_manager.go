package i

import (
	"context"

	"github.com/beka-birhanu/vinom-mines/field"
	"github.com/beka-birhanu/vinom-mines/game"
	"github.com/beka-birhanu/vinom-mines/solver"
	"github.com/google/uuid"
)

// GameView is what a player sees of a game.
type GameView struct {
	ID       uuid.UUID         `json:"id"`
	Config   game.Config       `json:"config"`
	Snapshot game.GameSnapshot `json:"snapshot"`
}

// MoveResult is the view of a game after an action, together with what it changed.
type MoveResult struct {
	GameView
	Changes game.ActionChanges `json:"changes"`
}

// Hint is the solver's analysis of the player's view of a game.
type Hint struct {
	Probabilities []solver.Probability `json:"probabilities"`
	Guessing      bool                 `json:"guessing"`
}

// GameSessionManager runs single-player games on behalf of users.
type GameSessionManager interface {
	// NewGame starts a game for the user. A zero config selects the default board.
	NewGame(ctx context.Context, userID uuid.UUID, c game.Config) (*GameView, error)

	// Game returns the current view of a game owned by the user.
	Game(ctx context.Context, userID, gameID uuid.UUID) (*GameView, error)

	// Games lists the user's most recent games.
	Games(ctx context.Context, userID uuid.UUID, limit int) ([]*GameView, error)

	// Reveal reveals or chords a cell.
	Reveal(ctx context.Context, userID, gameID uuid.UUID, pos field.Position) (*MoveResult, error)

	// ToggleFlag flags or unflags a cell.
	ToggleFlag(ctx context.Context, userID, gameID uuid.UUID, pos field.Position) (*MoveResult, error)

	// Hint analyses the player's view of a game.
	Hint(ctx context.Context, userID, gameID uuid.UUID) (*Hint, error)
}
