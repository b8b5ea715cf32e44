// Package gameapi serves games and the leaderboard over HTTP.
package gameapi

import "time"

// NewGameRequest selects the board of a new game. Omitting every field selects the
// default board.
type NewGameRequest struct {
	Rows  int `json:"rows"`
	Cols  int `json:"cols"`
	Mines int `json:"mines"`
}

// CellRequest addresses the cell an action targets.
type CellRequest struct {
	Row *int `json:"row" binding:"required"`
	Col *int `json:"col" binding:"required"`
}

// HistoryQuery pages the caller's recent games.
type HistoryQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

// BoardQuery names the board configuration of a leaderboard.
type BoardQuery struct {
	Rows  int   `form:"rows" binding:"required,min=1"`
	Cols  int   `form:"cols" binding:"required,min=1"`
	Mines int   `form:"mines" binding:"required,min=1"`
	Limit int64 `form:"limit" binding:"omitempty,min=1,max=100"`
}

// LeaderboardEntryResponse is one ranked win.
type LeaderboardEntryResponse struct {
	UserID     string `json:"userId"`
	Rank       int64  `json:"rank"`
	DurationMs int64  `json:"durationMs"`
}

func entryResponse(userID string, rank int64, d time.Duration) LeaderboardEntryResponse {
	return LeaderboardEntryResponse{UserID: userID, Rank: rank, DurationMs: d.Milliseconds()}
}
