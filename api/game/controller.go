package gameapi

import (
	"context"
	"errors"
	"net/http"

	identityapi "github.com/beka-birhanu/vinom-mines/api/identity"
	"github.com/beka-birhanu/vinom-mines/field"
	"github.com/beka-birhanu/vinom-mines/game"
	"github.com/beka-birhanu/vinom-mines/service"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/beka-birhanu/vinom-mines/solver"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// GameController serves the games of the authenticated user.
type GameController struct {
	sessions i.GameSessionManager
}

// NewGameController initializes a GameController.
func NewGameController(gsm i.GameSessionManager) (*GameController, error) {
	if gsm == nil {
		return nil, errors.New("game controller needs a session manager")
	}
	return &GameController{sessions: gsm}, nil
}

// RegisterPublic registers public routes.
func (gc *GameController) RegisterPublic(route *gin.RouterGroup) {}

// RegisterProtected registers protected routes.
func (gc *GameController) RegisterProtected(route *gin.RouterGroup) {
	games := route.Group("/games")
	{
		games.POST("", gc.newGame)
		games.GET("", gc.games)
		games.GET("/:ID", gc.game)
		games.POST("/:ID/reveal", gc.reveal)
		games.POST("/:ID/flag", gc.toggleFlag)
		games.GET("/:ID/hint", gc.hint)
	}
}

func (gc *GameController) newGame(ctx *gin.Context) {
	userID, ok := identityapi.UserID(ctx)
	if !ok {
		ctx.Status(http.StatusUnauthorized)
		return
	}

	var request NewGameRequest
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&request); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	view, err := gc.sessions.NewGame(ctx, userID, game.Config{Rows: request.Rows, Cols: request.Cols, Mines: request.Mines})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, view)
}

func (gc *GameController) games(ctx *gin.Context) {
	userID, ok := identityapi.UserID(ctx)
	if !ok {
		ctx.Status(http.StatusUnauthorized)
		return
	}

	var query HistoryQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	views, err := gc.sessions.Games(ctx, userID, query.Limit)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"games": views})
}

func (gc *GameController) game(ctx *gin.Context) {
	userID, gameID, ok := gc.ids(ctx)
	if !ok {
		return
	}

	view, err := gc.sessions.Game(ctx, userID, gameID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, view)
}

func (gc *GameController) reveal(ctx *gin.Context) {
	gc.move(ctx, gc.sessions.Reveal)
}

func (gc *GameController) toggleFlag(ctx *gin.Context) {
	gc.move(ctx, gc.sessions.ToggleFlag)
}

type moveFunc func(ctx context.Context, userID, gameID uuid.UUID, pos field.Position) (*i.MoveResult, error)

func (gc *GameController) move(ctx *gin.Context, do moveFunc) {
	userID, gameID, ok := gc.ids(ctx)
	if !ok {
		return
	}

	var request CellRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res, err := do(ctx, userID, gameID, field.Position{Row: *request.Row, Col: *request.Col})
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, res)
}

func (gc *GameController) hint(ctx *gin.Context) {
	userID, gameID, ok := gc.ids(ctx)
	if !ok {
		return
	}

	hint, err := gc.sessions.Hint(ctx, userID, gameID)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, hint)
}

// ids returns the caller and the game named in the path, or writes the error response.
func (gc *GameController) ids(ctx *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	userID, ok := identityapi.UserID(ctx)
	if !ok {
		ctx.Status(http.StatusUnauthorized)
		return uuid.Nil, uuid.Nil, false
	}

	gameID, err := uuid.Parse(ctx.Params.ByName("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid game id"})
		return uuid.Nil, uuid.Nil, false
	}
	return userID, gameID, true
}

func writeError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, i.ErrGameNotFound), errors.Is(err, i.ErrUserNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrOutOfBounds), errors.Is(err, game.ErrInvalidConfig):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, solver.ErrRegionTooLarge):
		ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, solver.ErrInconsistent):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error"})
	}
}
