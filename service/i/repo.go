package i

import (
	"errors"

	"github.com/beka-birhanu/vinom-mines/game"
	"github.com/beka-birhanu/vinom-mines/identity"
	"github.com/google/uuid"
)

// Repository errors shared by every store implementation.
var (
	ErrUserNotFound     = errors.New("user not found")
	ErrUsernameConflict = errors.New("username conflict")
	ErrGameNotFound     = errors.New("game not found")
)

// UserRepo defines the interface for user persistence operations.
type UserRepo interface {
	// Save inserts or updates a user in the repository.
	// If the user already exists, it updates the record. Otherwise, it creates a new one.
	Save(user *identity.User) error

	// ByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	ByID(id uuid.UUID) (*identity.User, error)

	// ByUsername retrieves a user by their username.
	// Returns ErrUserNotFound if the user does not exist.
	ByUsername(username string) (*identity.User, error)
}

// GameRepo defines the interface for game persistence operations.
type GameRepo interface {
	// Save inserts or replaces a game record.
	Save(record *game.Record) error

	// ByID retrieves a game by its ID.
	// Returns ErrGameNotFound if the game does not exist.
	ByID(id uuid.UUID) (*game.Record, error)

	// ByUser lists the most recent games of a user, newest first.
	ByUser(userID uuid.UUID, limit int) ([]*game.Record, error)
}
