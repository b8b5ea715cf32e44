package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-mines/field"
	"github.com/beka-birhanu/vinom-mines/game"
	"github.com/beka-birhanu/vinom-mines/identity"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/google/uuid"
)

type memUserRepo struct {
	users map[uuid.UUID]identity.User
	sync.Mutex
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]identity.User)}
}

func (m *memUserRepo) Save(user *identity.User) error {
	m.Lock()
	defer m.Unlock()
	m.users[user.ID] = *user
	return nil
}

func (m *memUserRepo) ByID(id uuid.UUID) (*identity.User, error) {
	m.Lock()
	defer m.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, i.ErrUserNotFound
	}
	return &u, nil
}

func (m *memUserRepo) ByUsername(username string) (*identity.User, error) {
	m.Lock()
	defer m.Unlock()
	for _, u := range m.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, i.ErrUserNotFound
}

type memGameRepo struct {
	games map[uuid.UUID]game.Record
	sync.Mutex
}

func newMemGameRepo() *memGameRepo {
	return &memGameRepo{games: make(map[uuid.UUID]game.Record)}
}

func copyRecord(r game.Record) *game.Record {
	if r.Cells != nil {
		cells := make([][]field.CellState, len(r.Cells))
		for row := range r.Cells {
			cells[row] = append([]field.CellState(nil), r.Cells[row]...)
		}
		r.Cells = cells
	}
	return &r
}

func (m *memGameRepo) Save(rec *game.Record) error {
	m.Lock()
	defer m.Unlock()
	m.games[rec.ID] = *copyRecord(*rec)
	return nil
}

func (m *memGameRepo) ByID(id uuid.UUID) (*game.Record, error) {
	m.Lock()
	defer m.Unlock()
	rec, ok := m.games[id]
	if !ok {
		return nil, i.ErrGameNotFound
	}
	return copyRecord(rec), nil
}

func (m *memGameRepo) ByUser(userID uuid.UUID, limit int) ([]*game.Record, error) {
	m.Lock()
	defer m.Unlock()
	var out []*game.Record
	for _, rec := range m.games {
		if rec.UserID == userID {
			out = append(out, copyRecord(rec))
		}
	}
	sort.Slice(out, func(a, b int) bool { return out[a].CreatedAt.After(out[b].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type memLeaderboard struct {
	wins map[uuid.UUID]time.Duration
}

func (m *memLeaderboard) Submit(ctx context.Context, board game.Config, userID uuid.UUID, d time.Duration) error {
	if best, ok := m.wins[userID]; !ok || d < best {
		m.wins[userID] = d
	}
	return nil
}

func (m *memLeaderboard) Top(ctx context.Context, board game.Config, n int64) ([]i.LeaderboardEntry, error) {
	return nil, nil
}

func (m *memLeaderboard) Count(ctx context.Context, board game.Config) (int64, error) {
	return int64(len(m.wins)), nil
}

func (m *memLeaderboard) Rank(ctx context.Context, board game.Config, userID uuid.UUID) (i.LeaderboardEntry, bool, error) {
	d, ok := m.wins[userID]
	return i.LeaderboardEntry{UserID: userID, Duration: d}, ok, nil
}

type countingLocker struct {
	locks   int
	unlocks int
}

func (c *countingLocker) Lock(ctx context.Context, name string) (func(), error) {
	c.locks++
	return func() { c.unlocks++ }, nil
}

type nopLogger struct{}

func (nopLogger) Info(string)                    {}
func (nopLogger) Warning(string)                 {}
func (nopLogger) Error(string)                   {}
func (nopLogger) Debug(string)                   {}
func (l nopLogger) With(map[string]any) i.Logger { return l }

type fakeTokenizer struct{}

func (fakeTokenizer) Generate(claims map[string]interface{}, exp time.Duration) (string, error) {
	return "token-" + claims[identity.ClaimUsername].(string), nil
}

func (fakeTokenizer) Decode(token string) (map[string]interface{}, error) {
	return map[string]interface{}{}, nil
}
