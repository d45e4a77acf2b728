package repository

import (
	"context"
	"database/sql"
	"errors"
	"events-platform/data/models"
	"fmt"
	"strings"
)

const eventColumns = `id, initiator_id, category_id, title, annotation, description,
	lat, lon, paid, participant_limit, request_moderation, created_on, event_date,
	published_on, state`

func scanEvent(row interface{ Scan(...interface{}) error }) (models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.InitiatorID, &e.CategoryID, &e.Title, &e.Annotation,
		&e.Description, &e.Lat, &e.Lon, &e.Paid, &e.ParticipantLimit,
		&e.RequestModeration, &e.CreatedOn, &e.EventDate, &e.PublishedOn, &e.State)
	return e, err
}

func scanEvents(rows *sql.Rows) ([]models.Event, error) {
	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning event: %v", err)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (sr *SqlRepo) GetEventByID(ctx context.Context, id int64) (models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE id = $1", eventColumns)
	e, err := scanEvent(sr.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Event{}, ErrNoRows
		}
		return models.Event{}, fmt.Errorf("error getting event: %v", err)
	}
	return e, nil
}

func (sr *SqlRepo) UpdateEvent(ctx context.Context, e models.Event) error {
	query := `UPDATE events SET category_id = $1, title = $2, annotation = $3,
		description = $4, lat = $5, lon = $6, paid = $7, participant_limit = $8,
		request_moderation = $9, event_date = $10, published_on = $11, state = $12
		WHERE id = $13`
	res, err := sr.DB.ExecContext(ctx, query, e.CategoryID, e.Title, e.Annotation,
		e.Description, e.Lat, e.Lon, e.Paid, e.ParticipantLimit,
		e.RequestModeration, e.EventDate, e.PublishedOn, e.State, e.ID)
	if err != nil {
		return fmt.Errorf("error updating event: %v", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNoRows
	}
	return nil
}

func (sr *SqlRepo) EventsByInitiator(ctx context.Context, initiatorID int64, limit, offset int) ([]models.Event, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM events WHERE initiator_id = $1 ORDER BY id LIMIT $2 OFFSET $3",
		eventColumns)
	rows, err := sr.DB.QueryContext(ctx, query, initiatorID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error listing events: %v", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func (sr *SqlRepo) EventsByIDs(ctx context.Context, ids []int64) ([]models.Event, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ph, _ := inPlaceholders(len(ids), 1)
	query := fmt.Sprintf("SELECT %s FROM events WHERE id IN (%s) ORDER BY id", eventColumns, ph)

	vals := make([]interface{}, len(ids))
	for i, id := range ids {
		vals[i] = id
	}

	rows, err := sr.DB.QueryContext(ctx, query, vals...)
	if err != nil {
		return nil, fmt.Errorf("error listing events: %v", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// SearchEvents pages the filtered set at the storage layer. orderBy must be
// one of the keys accepted by orderClause.
func (sr *SqlRepo) SearchEvents(ctx context.Context, f EventFilter, orderBy string, limit, offset int) ([]models.Event, error) {
	where, vals := f.whereClause()
	order, err := orderClause(orderBy)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT %s FROM events %s %s LIMIT $%d OFFSET $%d",
		eventColumns, where, order, len(vals)+1, len(vals)+2)
	vals = append(vals, limit, offset)

	rows, err := sr.DB.QueryContext(ctx, query, vals...)
	if err != nil {
		return nil, fmt.Errorf("error searching events: %v", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

// SearchEventsAll materializes the entire filtered set, for sorts that must
// happen in memory (view counts live outside the primary store).
func (sr *SqlRepo) SearchEventsAll(ctx context.Context, f EventFilter) ([]models.Event, error) {
	where, vals := f.whereClause()
	query := fmt.Sprintf("SELECT %s FROM events %s ORDER BY id", eventColumns, where)

	rows, err := sr.DB.QueryContext(ctx, query, vals...)
	if err != nil {
		return nil, fmt.Errorf("error searching events: %v", err)
	}
	defer rows.Close()
	return scanEvents(rows)
}

func orderClause(orderBy string) (string, error) {
	switch orderBy {
	case "id":
		return "ORDER BY id", nil
	case "event_date":
		return "ORDER BY event_date", nil
	default:
		return "", fmt.Errorf("unsupported sort column: %s", orderBy)
	}
}

// inPlaceholders renders an expanding ($n, $n+1, ...) list starting at phIndex
// and returns the next free index.
func inPlaceholders(n, phIndex int) (string, int) {
	ph := make([]string, n)
	for i := 0; i < n; i++ {
		ph[i] = fmt.Sprintf("$%d", phIndex)
		phIndex++
	}
	return strings.Join(ph, ", "), phIndex
}
