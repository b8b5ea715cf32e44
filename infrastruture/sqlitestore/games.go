package sqlitestore

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/beka-birhanu/vinom-mines/field"
	"github.com/beka-birhanu/vinom-mines/game"
	"github.com/beka-birhanu/vinom-mines/service/i"
	"github.com/google/uuid"
)

const gameColumns = `id, user_id, board_rows, board_cols, mines, status, cells, moves, created_at, started_at, finished_at`

var _ i.GameRepo = &GameStore{}

// GameStore persists game records. The cell grid is kept as a JSON document.
type GameStore struct {
	sqlDB *sql.DB
}

// Save implements i.GameRepo.
func (g *GameStore) Save(record *game.Record) error {
	ctx, cancel := withTimeout()
	defer cancel()

	var cells sql.NullString
	if record.Cells != nil {
		payload, err := json.Marshal(record.Cells)
		if err != nil {
			return fmt.Errorf("encode cells: %w", err)
		}
		cells = sql.NullString{String: string(payload), Valid: true}
	}

	_, err := g.sqlDB.ExecContext(ctx,
		`INSERT INTO games (`+gameColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		   status = excluded.status,
		   cells = excluded.cells,
		   moves = excluded.moves,
		   started_at = excluded.started_at,
		   finished_at = excluded.finished_at`,
		record.ID.String(),
		record.UserID.String(),
		record.Config.Rows,
		record.Config.Cols,
		record.Config.Mines,
		record.Status.String(),
		cells,
		record.Moves,
		toMillis(record.CreatedAt),
		toMillis(record.StartedAt),
		toMillis(record.FinishedAt),
	)
	if err != nil {
		return fmt.Errorf("save game: %w", err)
	}
	return nil
}

// ByID implements i.GameRepo.
func (g *GameStore) ByID(id uuid.UUID) (*game.Record, error) {
	ctx, cancel := withTimeout()
	defer cancel()

	row := g.sqlDB.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = ?`, id.String())
	record, err := scanGame(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, i.ErrGameNotFound
		}
		return nil, err
	}
	return record, nil
}

// ByUser implements i.GameRepo.
func (g *GameStore) ByUser(userID uuid.UUID, limit int) ([]*game.Record, error) {
	ctx, cancel := withTimeout()
	defer cancel()

	rows, err := g.sqlDB.QueryContext(ctx,
		`SELECT `+gameColumns+` FROM games WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`,
		userID.String(), limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query games: %w", err)
	}
	defer rows.Close()

	var records []*game.Record
	for rows.Next() {
		record, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}
	return records, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(s scanner) (*game.Record, error) {
	var (
		record                           game.Record
		id, userID, status               string
		cells                            sql.NullString
		createdAt, startedAt, finishedAt int64
	)
	err := s.Scan(
		&id, &userID,
		&record.Config.Rows, &record.Config.Cols, &record.Config.Mines,
		&status, &cells, &record.Moves,
		&createdAt, &startedAt, &finishedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan game: %w", err)
	}

	if record.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse game id: %w", err)
	}
	if record.UserID, err = uuid.Parse(userID); err != nil {
		return nil, fmt.Errorf("parse user id: %w", err)
	}
	if record.Status, err = game.ParseStatus(status); err != nil {
		return nil, err
	}
	if cells.Valid {
		var grid [][]field.CellState
		if err := json.Unmarshal([]byte(cells.String), &grid); err != nil {
			return nil, fmt.Errorf("decode cells: %w", err)
		}
		record.Cells = grid
	}
	record.CreatedAt = fromMillis(createdAt)
	record.StartedAt = fromMillis(startedAt)
	record.FinishedAt = fromMillis(finishedAt)
	return &record, nil
}
