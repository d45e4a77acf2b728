package repository

import (
	"context"
	"fmt"
	"strings"

	"events-platform/data/models"
)

// Users lists users ordered by id. A non-empty ids slice narrows the result
// to those users; pagination applies to the narrowed set.
func (sr *SqlRepo) Users(ctx context.Context, ids []int64, limit, offset int) ([]models.User, error) {
	var sb strings.Builder
	sb.WriteString("SELECT id, name, email, created_at FROM users")

	var args []interface{}
	phIndex := 1
	if len(ids) > 0 {
		ph, next := inPlaceholders(len(ids), phIndex)
		phIndex = next
		sb.WriteString(" WHERE id IN (" + ph + ")")
		for _, id := range ids {
			args = append(args, id)
		}
	}
	sb.WriteString(fmt.Sprintf(" ORDER BY id LIMIT $%d OFFSET $%d", phIndex, phIndex+1))
	args = append(args, limit, offset)

	rows, err := sr.DB.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("error listing users: %v", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning user: %v", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
