package identity

import (
	"errors"

	"github.com/google/uuid"
)

// Token claim keys.
const (
	ClaimUserID   = "userID"
	ClaimUsername = "username"
)

// ErrInvalidClaims is returned when token claims do not name a user.
var ErrInvalidClaims = errors.New("token claims carry no valid user id")

// Claims returns the token claims identifying u.
func (u *User) Claims() map[string]interface{} {
	return map[string]interface{}{
		ClaimUserID:   u.ID.String(),
		ClaimUsername: u.Username,
	}
}

// UserIDFromClaims extracts the user id from decoded token claims.
func UserIDFromClaims(claims map[string]interface{}) (uuid.UUID, error) {
	raw, ok := claims[ClaimUserID].(string)
	if !ok {
		return uuid.Nil, ErrInvalidClaims
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, ErrInvalidClaims
	}
	return id, nil
}
