package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/vinom-mines/field"
	"github.com/beka-birhanu/vinom-mines/game"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/beka-birhanu/vinom-mines/solver"
	"github.com/google/uuid"
)

const (
	defaultRows         = 9
	defaultCols         = 9
	defaultMines        = 10
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100

	gameLockKeyFmt = "mines:game:%s:lock"
)

// Session errors.
var (
	ErrForbidden    = errors.New("game belongs to another user")
	ErrOutOfBounds  = errors.New("position is outside the board")
	ErrMissingStore = errors.New("session manager needs game and user repositories and a logger")
)

var _ i.GameSessionManager = &GameSessionManager{}

// Options tunes a GameSessionManager. Zero values select the defaults.
type Options struct {
	DefaultBoard       game.Config
	MaxRegionVariables int
	HistoryLimit       int
	RandSource         field.RandSource // Shared by all games; must be safe for concurrent use.
	Clock              func() time.Time
}

// Config holds the collaborators of a GameSessionManager.
type Config struct {
	Games       i.GameRepo
	Users       i.UserRepo
	Leaderboard i.Leaderboard
	Locker      i.Locker
	Logger      i.Logger
	Options     *Options
}

// GameSessionManager runs games: every action loads the record, resolves and commits
// it on a fresh engine, and saves the record back while holding the game's lock.
type GameSessionManager struct {
	games       i.GameRepo
	users       i.UserRepo
	leaderboard i.Leaderboard
	locker      i.Locker
	logger      i.Logger
	opts        *Options
}

// NewGameSessionManager creates a session manager.
func NewGameSessionManager(c *Config) (*GameSessionManager, error) {
	if c.Games == nil || c.Users == nil || c.Logger == nil {
		return nil, ErrMissingStore
	}

	opts := c.Options
	if opts == nil {
		opts = &Options{}
	}
	if opts.DefaultBoard == (game.Config{}) {
		opts.DefaultBoard = game.Config{Rows: defaultRows, Cols: defaultCols, Mines: defaultMines}
	}
	if err := opts.DefaultBoard.Validate(); err != nil {
		return nil, fmt.Errorf("default board: %w", err)
	}
	if opts.MaxRegionVariables <= 0 {
		opts.MaxRegionVariables = solver.DefaultMaxRegionVariables
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = defaultHistoryLimit
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	return &GameSessionManager{
		games:       c.Games,
		users:       c.Users,
		leaderboard: c.Leaderboard,
		locker:      c.Locker,
		logger:      c.Logger,
		opts:        opts,
	}, nil
}

// NewGame implements i.GameSessionManager.
func (g *GameSessionManager) NewGame(ctx context.Context, userID uuid.UUID, c game.Config) (*i.GameView, error) {
	if c == (game.Config{}) {
		c = g.opts.DefaultBoard
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if _, err := g.users.ByID(userID); err != nil {
		return nil, err
	}

	rec := game.NewRecord(uuid.New(), userID, c, g.opts.Clock())
	e, err := g.engine(rec)
	if err != nil {
		return nil, err
	}
	if err := g.games.Save(rec); err != nil {
		return nil, err
	}

	g.logger.With(map[string]any{"game": rec.ID, "user": userID}).
		Info(fmt.Sprintf("started %dx%d game with %d mines", c.Rows, c.Cols, c.Mines))
	return viewOf(rec, e), nil
}

// Game implements i.GameSessionManager.
func (g *GameSessionManager) Game(ctx context.Context, userID, gameID uuid.UUID) (*i.GameView, error) {
	rec, err := g.load(userID, gameID)
	if err != nil {
		return nil, err
	}
	e, err := g.engine(rec)
	if err != nil {
		return nil, err
	}
	return viewOf(rec, e), nil
}

// Games implements i.GameSessionManager.
func (g *GameSessionManager) Games(ctx context.Context, userID uuid.UUID, limit int) ([]*i.GameView, error) {
	if limit <= 0 {
		limit = g.opts.HistoryLimit
	}
	limit = min(limit, maxHistoryLimit)

	records, err := g.games.ByUser(userID, limit)
	if err != nil {
		return nil, err
	}

	views := make([]*i.GameView, 0, len(records))
	for _, rec := range records {
		e, err := g.engine(rec)
		if err != nil {
			g.logger.Warning(fmt.Sprintf("skipping unreadable game %s: %s", rec.ID, err))
			continue
		}
		views = append(views, viewOf(rec, e))
	}
	return views, nil
}

// Reveal implements i.GameSessionManager.
func (g *GameSessionManager) Reveal(ctx context.Context, userID, gameID uuid.UUID, pos field.Position) (*i.MoveResult, error) {
	return g.act(ctx, userID, gameID, game.Action{Kind: game.ActionReveal, Position: pos})
}

// ToggleFlag implements i.GameSessionManager.
func (g *GameSessionManager) ToggleFlag(ctx context.Context, userID, gameID uuid.UUID, pos field.Position) (*i.MoveResult, error) {
	return g.act(ctx, userID, gameID, game.Action{Kind: game.ActionToggleFlag, Position: pos})
}

// Hint implements i.GameSessionManager.
func (g *GameSessionManager) Hint(ctx context.Context, userID, gameID uuid.UUID) (*i.Hint, error) {
	rec, err := g.load(userID, gameID)
	if err != nil {
		return nil, err
	}

	view, err := field.New(field.ShapeSquare, field.Config{Rows: rec.Config.Rows, Cols: rec.Config.Cols}, field.WithData(field.Obscure(g.cells(rec))))
	if err != nil {
		return nil, err
	}

	probs, err := solver.New(view, solver.WithMaxRegionVariables(g.opts.MaxRegionVariables)).Solve()
	if err != nil {
		return nil, err
	}

	return &i.Hint{Probabilities: probs, Guessing: solver.Guessing(probs)}, nil
}

func (g *GameSessionManager) act(ctx context.Context, userID, gameID uuid.UUID, a game.Action) (*i.MoveResult, error) {
	if g.locker != nil {
		unlock, err := g.locker.Lock(ctx, fmt.Sprintf(gameLockKeyFmt, gameID))
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	rec, err := g.load(userID, gameID)
	if err != nil {
		return nil, err
	}
	e, err := g.engine(rec)
	if err != nil {
		return nil, err
	}
	if a.Position.Row < 0 || a.Position.Row >= rec.Config.Rows || a.Position.Col < 0 || a.Position.Col >= rec.Config.Cols {
		return nil, ErrOutOfBounds
	}

	result, err := e.Apply(a)
	if err != nil {
		return nil, err
	}
	if !result.Changed() {
		return &i.MoveResult{GameView: *viewOf(rec, e), Changes: result.Data.Changes}, nil
	}

	prev := rec.Status
	now := g.opts.Clock()
	rec.Sync(e, now)
	if err := g.games.Save(rec); err != nil {
		return nil, err
	}

	if !prev.IsTerminal() && rec.Status.IsTerminal() {
		g.finish(ctx, rec, now)
	}

	return &i.MoveResult{GameView: *viewOf(rec, e), Changes: result.Data.Changes}, nil
}

// finish books a finished game on the user's record and the leaderboard. Failures are
// logged only: the game itself is already saved.
func (g *GameSessionManager) finish(ctx context.Context, rec *game.Record, now time.Time) {
	won := rec.Status == game.StatusWon
	logger := g.logger.With(map[string]any{"game": rec.ID, "user": rec.UserID})
	logger.Info(fmt.Sprintf("game %s after %d moves", rec.Status, rec.Moves))

	user, err := g.users.ByID(rec.UserID)
	if err != nil {
		logger.Error(fmt.Sprintf("loading user for result: %s", err))
	} else {
		user.RecordResult(won)
		if err := g.users.Save(user); err != nil {
			logger.Error(fmt.Sprintf("saving user result: %s", err))
		}
	}

	if won && g.leaderboard != nil {
		if err := g.leaderboard.Submit(ctx, rec.Config, rec.UserID, rec.Duration(now)); err != nil {
			logger.Error(fmt.Sprintf("submitting win to leaderboard: %s", err))
		}
	}
}

func (g *GameSessionManager) load(userID, gameID uuid.UUID) (*game.Record, error) {
	rec, err := g.games.ByID(gameID)
	if err != nil {
		return nil, err
	}
	if rec.UserID != userID {
		return nil, ErrForbidden
	}
	return rec, nil
}

func (g *GameSessionManager) engine(rec *game.Record) (*game.Engine, error) {
	opts := []game.Option{}
	if g.opts.RandSource != nil {
		opts = append(opts, game.WithRandSource(g.opts.RandSource))
	}
	return rec.Engine(opts...)
}

// cells returns the saved grid of rec, or an empty grid if nothing was played yet.
func (g *GameSessionManager) cells(rec *game.Record) [][]field.CellState {
	if rec.Cells != nil {
		return rec.Cells
	}
	cells := make([][]field.CellState, rec.Config.Rows)
	for r := range cells {
		cells[r] = make([]field.CellState, rec.Config.Cols)
	}
	return cells
}

func viewOf(rec *game.Record, e *game.Engine) *i.GameView {
	return &i.GameView{
		ID:       rec.ID,
		Config:   rec.Config,
		Snapshot: e.PlayerSnapshot(),
	}
}
