package repository

import (
	"context"
	"events-platform/data/models"
	"fmt"
)

// CreateCompilation inserts the compilation and its event memberships in one
// transaction.
func (sr *SqlRepo) CreateCompilation(ctx context.Context, c models.Compilation, eventIDs []int64) (int64, error) {
	tx, err := sr.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("error beginning transaction: %v", err)
	}

	var id int64
	err = tx.QueryRowContext(ctx,
		"INSERT INTO compilations (title, pinned) VALUES ($1, $2) RETURNING id",
		c.Title, c.Pinned,
	).Scan(&id)
	if err != nil {
		_ = tx.Rollback()
		return 0, fmt.Errorf("error inserting compilation: %v", err)
	}

	for _, eventID := range eventIDs {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO compilation_events (compilation_id, event_id) VALUES ($1, $2)",
			id, eventID)
		if err != nil {
			_ = tx.Rollback()
			return 0, fmt.Errorf("error inserting compilation event: %v", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("error committing transaction: %v", err)
	}
	return id, nil
}

func (sr *SqlRepo) CompilationEventIDs(ctx context.Context, compilationID int64) ([]int64, error) {
	rows, err := sr.DB.QueryContext(ctx,
		"SELECT event_id FROM compilation_events WHERE compilation_id = $1 ORDER BY event_id",
		compilationID)
	if err != nil {
		return nil, fmt.Errorf("error listing compilation events: %v", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("error scanning event id: %v", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
