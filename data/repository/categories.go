package repository

import (
	"context"
	"events-platform/data/models"
	"fmt"
)

func (sr *SqlRepo) Categories(ctx context.Context, limit, offset int) ([]models.Category, error) {
	rows, err := sr.DB.QueryContext(ctx,
		"SELECT id, name FROM categories ORDER BY id LIMIT $1 OFFSET $2", limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error listing categories: %v", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var c models.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("error scanning category: %v", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

func (sr *SqlRepo) UpdateCategory(ctx context.Context, c models.Category) error {
	res, err := sr.DB.ExecContext(ctx,
		"UPDATE categories SET name = $1 WHERE id = $2", c.Name, c.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("error updating category: %v", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoRows
	}
	return nil
}
