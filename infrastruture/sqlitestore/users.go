package sqlitestore

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-mines/identity"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/google/uuid"
)

var _ i.UserRepo = &UserStore{}

// UserStore persists users.
type UserStore struct {
	sqlDB *sql.DB
}

// Save implements i.UserRepo.
func (u *UserStore) Save(user *identity.User) error {
	ctx, cancel := withTimeout()
	defer cancel()

	_, err := u.sqlDB.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, wins, losses, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   username = excluded.username,
		   password_hash = excluded.password_hash,
		   wins = excluded.wins,
		   losses = excluded.losses,
		   updated_at = excluded.updated_at`,
		user.ID.String(), user.Username, user.PasswordHash, user.Wins, user.Losses, toMillis(time.Now()),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return i.ErrUsernameConflict
		}
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

// ByID implements i.UserRepo.
func (u *UserStore) ByID(id uuid.UUID) (*identity.User, error) {
	return u.queryOne(`SELECT id, username, password_hash, wins, losses FROM users WHERE id = ?`, id.String())
}

// ByUsername implements i.UserRepo.
func (u *UserStore) ByUsername(username string) (*identity.User, error) {
	return u.queryOne(`SELECT id, username, password_hash, wins, losses FROM users WHERE username = ?`, username)
}

func (u *UserStore) queryOne(query string, arg any) (*identity.User, error) {
	ctx, cancel := withTimeout()
	defer cancel()

	var (
		user identity.User
		id   string
	)
	err := u.sqlDB.QueryRowContext(ctx, query, arg).Scan(&id, &user.Username, &user.PasswordHash, &user.Wins, &user.Losses)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, i.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}

	if user.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	return &user, nil
}
