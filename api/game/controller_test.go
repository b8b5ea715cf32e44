package gameapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-mines/api"
	identityapi "github.com/beka-birhanu/vinom-mines/api/identity"
	apii "github.com/beka-birhanu/vinom-mines/api/i"
	"github.com/beka-birhanu/vinom-mines/field"
	"github.com/beka-birhanu/vinom-mines/game"
	"github.com/beka-birhanu/vinom-mines/service"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/beka-birhanu/vinom-mines/solver"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// uuidTokenizer accepts any token that is a user id.
type uuidTokenizer struct{}

func (uuidTokenizer) Generate(claims map[string]interface{}, _ time.Duration) (string, error) {
	return claims["userID"].(string), nil
}

func (uuidTokenizer) Decode(token string) (map[string]interface{}, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, err
	}
	return map[string]interface{}{"userID": token}, nil
}

type stubSessions struct {
	err    error
	userID uuid.UUID
	gameID uuid.UUID
	pos    field.Position
	conf   game.Config
	limit  int
}

func (s *stubSessions) view() *i.GameView {
	return &i.GameView{ID: s.gameID, Config: game.Config{Rows: 2, Cols: 2, Mines: 1}}
}

func (s *stubSessions) NewGame(ctx context.Context, userID uuid.UUID, c game.Config) (*i.GameView, error) {
	s.userID, s.conf = userID, c
	return s.view(), s.err
}

func (s *stubSessions) Game(ctx context.Context, userID, gameID uuid.UUID) (*i.GameView, error) {
	s.userID, s.gameID = userID, gameID
	return s.view(), s.err
}

func (s *stubSessions) Games(ctx context.Context, userID uuid.UUID, limit int) ([]*i.GameView, error) {
	s.userID, s.limit = userID, limit
	return []*i.GameView{s.view()}, s.err
}

func (s *stubSessions) Reveal(ctx context.Context, userID, gameID uuid.UUID, pos field.Position) (*i.MoveResult, error) {
	s.userID, s.gameID, s.pos = userID, gameID, pos
	if s.err != nil {
		return nil, s.err
	}
	return &i.MoveResult{GameView: *s.view(), Changes: game.ActionChanges{Revealed: []field.Position{pos}}}, nil
}

func (s *stubSessions) ToggleFlag(ctx context.Context, userID, gameID uuid.UUID, pos field.Position) (*i.MoveResult, error) {
	s.userID, s.gameID, s.pos = userID, gameID, pos
	if s.err != nil {
		return nil, s.err
	}
	return &i.MoveResult{GameView: *s.view(), Changes: game.ActionChanges{Flagged: []field.Position{pos}}}, nil
}

func (s *stubSessions) Hint(ctx context.Context, userID, gameID uuid.UUID) (*i.Hint, error) {
	s.userID, s.gameID = userID, gameID
	if s.err != nil {
		return nil, s.err
	}
	return &i.Hint{Guessing: true}, nil
}

type stubLeaderboard struct {
	board    game.Config
	limit    int64
	entries  []i.LeaderboardEntry
	countErr error
}

func (l *stubLeaderboard) Submit(ctx context.Context, board game.Config, userID uuid.UUID, d time.Duration) error {
	return nil
}

func (l *stubLeaderboard) Top(ctx context.Context, board game.Config, n int64) ([]i.LeaderboardEntry, error) {
	l.board, l.limit = board, n
	return l.entries, nil
}

func (l *stubLeaderboard) Count(ctx context.Context, board game.Config) (int64, error) {
	if l.countErr != nil {
		return 0, l.countErr
	}
	return int64(len(l.entries)), nil
}

func (l *stubLeaderboard) Rank(ctx context.Context, board game.Config, userID uuid.UUID) (i.LeaderboardEntry, bool, error) {
	for _, e := range l.entries {
		if e.UserID == userID {
			return e, true, nil
		}
	}
	return i.LeaderboardEntry{}, false, nil
}

func newHandler(t *testing.T, controllers ...apii.Controller) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	return api.NewRouter(api.Config{
		BaseURL:                 "/api",
		Controllers:             controllers,
		AuthorizationMiddleware: identityapi.Authoriz(uuidTokenizer{}),
	}).Handler()
}

func do(h http.Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestGameController(t *testing.T) {
	userID := uuid.New()
	token := userID.String()

	setup := func(t *testing.T) (*stubSessions, http.Handler) {
		sessions := &stubSessions{}
		gc, err := NewGameController(sessions)
		require.NoError(t, err)
		return sessions, newHandler(t, gc)
	}

	t.Run("Requires authentication", func(t *testing.T) {
		_, h := setup(t)
		assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/api/v1/games", "", nil).Code)
		assert.Equal(t, http.StatusUnauthorized, do(h, http.MethodGet, "/api/v1/games", "not-a-token", nil).Code)
	})

	t.Run("New game", func(t *testing.T) {
		sessions, h := setup(t)
		w := do(h, http.MethodPost, "/api/v1/games", token, NewGameRequest{Rows: 5, Cols: 5, Mines: 3})
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, userID, sessions.userID)
		assert.Equal(t, game.Config{Rows: 5, Cols: 5, Mines: 3}, sessions.conf)
	})

	t.Run("New game with default board", func(t *testing.T) {
		sessions, h := setup(t)
		w := do(h, http.MethodPost, "/api/v1/games", token, nil)
		assert.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, game.Config{}, sessions.conf)
	})

	t.Run("History", func(t *testing.T) {
		sessions, h := setup(t)
		w := do(h, http.MethodGet, "/api/v1/games?limit=5", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 5, sessions.limit)

		assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/api/v1/games?limit=-1", token, nil).Code)
	})

	t.Run("Reveal", func(t *testing.T) {
		sessions, h := setup(t)
		gameID := uuid.New()
		w := do(h, http.MethodPost, "/api/v1/games/"+gameID.String()+"/reveal", token, map[string]int{"row": 0, "col": 1})
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, gameID, sessions.gameID)
		assert.Equal(t, field.Position{Row: 0, Col: 1}, sessions.pos)

		var res i.MoveResult
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
		assert.Equal(t, []field.Position{{Row: 0, Col: 1}}, res.Changes.Revealed)
	})

	t.Run("Flag needs a cell", func(t *testing.T) {
		_, h := setup(t)
		w := do(h, http.MethodPost, "/api/v1/games/"+uuid.NewString()+"/flag", token, map[string]int{"row": 1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Invalid game id", func(t *testing.T) {
		_, h := setup(t)
		assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/api/v1/games/nope", token, nil).Code)
	})

	t.Run("Hint", func(t *testing.T) {
		_, h := setup(t)
		w := do(h, http.MethodGet, "/api/v1/games/"+uuid.NewString()+"/hint", token, nil)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"guessing":true`)
	})

	t.Run("Error mapping", func(t *testing.T) {
		cases := []struct {
			err  error
			code int
		}{
			{i.ErrGameNotFound, http.StatusNotFound},
			{service.ErrForbidden, http.StatusForbidden},
			{service.ErrOutOfBounds, http.StatusBadRequest},
			{solver.ErrRegionTooLarge, http.StatusUnprocessableEntity},
			{context.Canceled, http.StatusInternalServerError},
		}
		for _, tc := range cases {
			sessions, h := setup(t)
			sessions.err = tc.err
			w := do(h, http.MethodPost, "/api/v1/games/"+uuid.NewString()+"/flag", token, map[string]int{"row": 0, "col": 0})
			assert.Equal(t, tc.code, w.Code, tc.err.Error())
		}
	})
}

func TestLeaderboardController(t *testing.T) {
	userID := uuid.New()
	lb := &stubLeaderboard{entries: []i.LeaderboardEntry{{UserID: userID, Duration: 1500 * time.Millisecond, Rank: 1}}}
	lc, err := NewLeaderboardController(lb)
	require.NoError(t, err)
	h := newHandler(t, lc)

	t.Run("Top is public", func(t *testing.T) {
		w := do(h, http.MethodGet, "/api/v1/leaderboard?rows=9&cols=9&mines=10", "", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, game.Config{Rows: 9, Cols: 9, Mines: 10}, lb.board)
		assert.Equal(t, int64(defaultTop), lb.limit)
		assert.Contains(t, w.Body.String(), `"durationMs":1500`)
		assert.Contains(t, w.Body.String(), `"total":1`)
	})

	t.Run("Count failure", func(t *testing.T) {
		lb.countErr = assert.AnError
		defer func() { lb.countErr = nil }()
		w := do(h, http.MethodGet, "/api/v1/leaderboard?rows=9&cols=9&mines=10", "", nil)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})

	t.Run("Invalid board", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/api/v1/leaderboard?rows=9&cols=9", "", nil).Code)
		assert.Equal(t, http.StatusBadRequest, do(h, http.MethodGet, "/api/v1/leaderboard?rows=2&cols=2&mines=4", "", nil).Code)
	})

	t.Run("Own rank", func(t *testing.T) {
		w := do(h, http.MethodGet, "/api/v1/leaderboard/me?rows=9&cols=9&mines=10", userID.String(), nil)
		assert.Equal(t, http.StatusOK, w.Code)

		w = do(h, http.MethodGet, "/api/v1/leaderboard/me?rows=9&cols=9&mines=10", uuid.NewString(), nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
