package game

import (
	"errors"
	"strings"
)

// ErrUnknownStatus is returned when a status name cannot be parsed.
var ErrUnknownStatus = errors.New("unknown game status")

// Status is the lifecycle state of a game.
type Status int

const (
	StatusIdle    Status = iota // No reveal has happened yet.
	StatusPlaying               // At least one reveal, not finished.
	StatusWon                   // Every safe cell is revealed.
	StatusLost                  // A mine was revealed.
)

var statusNames = map[Status]string{
	StatusIdle:    "idle",
	StatusPlaying: "playing",
	StatusWon:     "won",
	StatusLost:    "lost",
}

// String returns the lower-case name of the status.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// IsTerminal reports whether no further action can change the game.
func (s Status) IsTerminal() bool {
	return s == StatusWon || s == StatusLost
}

// ParseStatus converts a status name back into a Status.
func ParseStatus(name string) (Status, error) {
	for s, n := range statusNames {
		if strings.EqualFold(n, name) {
			return s, nil
		}
	}
	return StatusIdle, ErrUnknownStatus
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
