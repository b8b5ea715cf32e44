package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-mines/identity"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/google/uuid"
)

const (
	tokenLifetime = 24 * time.Hour
)

// Auth-related errors.
var (
	ErrInvalidCredentials = errors.New("invalid username or password")
)

var _ i.Authenticator = &Auth{}

// Auth registers users and issues access tokens.
type Auth struct {
	userRepo  i.UserRepo
	tokenizer i.Tokenizer
}

// NewAuthService creates the authentication service.
func NewAuthService(userRepo i.UserRepo, tokenizer i.Tokenizer) (*Auth, error) {
	if userRepo == nil || tokenizer == nil {
		return nil, errors.New("auth service needs a user repository and a tokenizer")
	}
	return &Auth{
		userRepo:  userRepo,
		tokenizer: tokenizer,
	}, nil
}

// Register creates a user account.
func (a *Auth) Register(username, password string) error {
	if _, err := a.userRepo.ByUsername(username); err == nil {
		return i.ErrUsernameConflict
	} else if !errors.Is(err, i.ErrUserNotFound) {
		return err
	}

	userConfig := identity.UserConfig{
		ID:            uuid.New(),
		Username:      username,
		PlainPassword: password,
	}

	user, err := identity.NewUser(userConfig)
	if err != nil {
		return err
	}

	return a.userRepo.Save(user)
}

// SignIn checks the credentials and returns the user with a fresh token.
func (a *Auth) SignIn(username, password string) (*identity.User, string, error) {
	user, err := a.userRepo.ByUsername(username)
	if err != nil {
		return nil, "", ErrInvalidCredentials
	}

	if !user.VerifyPassword(password) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := a.tokenizer.Generate(user.Claims(), tokenLifetime)
	if err != nil {
		return nil, "", fmt.Errorf("generating token: %w", err)
	}

	return user, token, nil
}
