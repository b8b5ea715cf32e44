package i

import (
	"github.com/beka-birhanu/vinom-mines/identity"
)

// Authenticator registers users and signs them in.
type Authenticator interface {
	Register(username, password string) error
	SignIn(username, password string) (*identity.User, string, error)
}
