package gameapi

import (
	"errors"
	"net/http"

	identityapi "github.com/beka-birhanu/vinom-mines/api/identity"
	"github.com/beka-birhanu/vinom-mines/game"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/gin-gonic/gin"
)

const defaultTop = 10

// LeaderboardController serves the fastest wins per board configuration.
type LeaderboardController struct {
	leaderboard i.Leaderboard
}

// NewLeaderboardController initializes a LeaderboardController.
func NewLeaderboardController(lb i.Leaderboard) (*LeaderboardController, error) {
	if lb == nil {
		return nil, errors.New("leaderboard controller needs a leaderboard")
	}
	return &LeaderboardController{leaderboard: lb}, nil
}

// RegisterPublic registers public routes.
func (lc *LeaderboardController) RegisterPublic(route *gin.RouterGroup) {
	route.GET("/leaderboard", lc.top)
}

// RegisterProtected registers protected routes.
func (lc *LeaderboardController) RegisterProtected(route *gin.RouterGroup) {
	route.GET("/leaderboard/me", lc.rank)
}

func (lc *LeaderboardController) top(ctx *gin.Context) {
	board, query, ok := bindBoard(ctx)
	if !ok {
		return
	}
	limit := query.Limit
	if limit == 0 {
		limit = defaultTop
	}

	entries, err := lc.leaderboard.Top(ctx, board, limit)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error"})
		return
	}

	total, err := lc.leaderboard.Count(ctx, board)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error"})
		return
	}

	response := make([]LeaderboardEntryResponse, 0, len(entries))
	for _, e := range entries {
		response = append(response, entryResponse(e.UserID.String(), e.Rank, e.Duration))
	}
	ctx.JSON(http.StatusOK, gin.H{"board": board, "total": total, "entries": response})
}

func (lc *LeaderboardController) rank(ctx *gin.Context) {
	userID, ok := identityapi.UserID(ctx)
	if !ok {
		ctx.Status(http.StatusUnauthorized)
		return
	}
	board, _, ok := bindBoard(ctx)
	if !ok {
		return
	}

	entry, found, err := lc.leaderboard.Rank(ctx, board, userID)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "unexpected error"})
		return
	}
	if !found {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "no win on this board"})
		return
	}
	ctx.JSON(http.StatusOK, entryResponse(entry.UserID.String(), entry.Rank, entry.Duration))
}

func bindBoard(ctx *gin.Context) (game.Config, BoardQuery, bool) {
	var query BoardQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return game.Config{}, query, false
	}
	board := game.Config{Rows: query.Rows, Cols: query.Cols, Mines: query.Mines}
	if err := board.Validate(); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return game.Config{}, query, false
	}
	return board, query, true
}
