package repository

import (
	"context"
	"database/sql"
	"errors"
	"events-platform/data/models"
	"fmt"
)

const requestColumns = "id, requester_id, event_id, created, status"

// EventTx is the unit-of-work surface handed to InEventTx callbacks. Every
// method runs inside the same transaction; LockEvent must be called first so
// the capacity check-and-write sequence is serialized per event.
type EventTx interface {
	LockEvent(id int64) (models.Event, error)
	CountConfirmed(eventID int64) (int64, error)
	RequestExists(requesterID, eventID int64) (bool, error)
	CreateRequest(r models.ParticipationRequest) (models.ParticipationRequest, error)
	RequestsByIDs(ids []int64) ([]models.ParticipationRequest, error)
	PendingRequests(eventID int64) ([]models.ParticipationRequest, error)
	UpdateRequestStatuses(ids []int64, status models.RequestStatus) error
}

type sqlEventTx struct {
	ctx context.Context
	tx  *sql.Tx
}

// InEventTx runs fn inside a single transaction, committing on nil and rolling
// back on error. All request-status mutations against a capacity-limited event
// go through here so either the whole batch commits or none of it does.
func (sr *SqlRepo) InEventTx(ctx context.Context, fn func(tx EventTx) error) error {
	tx, err := sr.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error beginning transaction: %v", err)
	}

	if err := fn(&sqlEventTx{ctx: ctx, tx: tx}); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (after: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %v", err)
	}
	return nil
}

// LockEvent reads the event row under FOR UPDATE. Concurrent transactions
// locking the same event block here until this one commits or rolls back,
// which closes the read-then-write capacity race.
func (t *sqlEventTx) LockEvent(id int64) (models.Event, error) {
	query := fmt.Sprintf("SELECT %s FROM events WHERE id = $1 FOR UPDATE", eventColumns)
	e, err := scanEvent(t.tx.QueryRowContext(t.ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Event{}, ErrNoRows
		}
		return models.Event{}, fmt.Errorf("error locking event row: %v", err)
	}
	return e, nil
}

func (t *sqlEventTx) CountConfirmed(eventID int64) (int64, error) {
	var count int64
	err := t.tx.QueryRowContext(t.ctx,
		"SELECT COUNT(*) FROM participation_requests WHERE event_id = $1 AND status = $2",
		eventID, models.RequestConfirmed,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("error counting confirmed requests: %v", err)
	}
	return count, nil
}

func (t *sqlEventTx) RequestExists(requesterID, eventID int64) (bool, error) {
	var exists bool
	err := t.tx.QueryRowContext(t.ctx,
		"SELECT EXISTS(SELECT 1 FROM participation_requests WHERE requester_id = $1 AND event_id = $2)",
		requesterID, eventID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking request existence: %v", err)
	}
	return exists, nil
}

func (t *sqlEventTx) CreateRequest(r models.ParticipationRequest) (models.ParticipationRequest, error) {
	err := t.tx.QueryRowContext(t.ctx,
		`INSERT INTO participation_requests (requester_id, event_id, created, status)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		r.RequesterID, r.EventID, r.Created, r.Status,
	).Scan(&r.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return models.ParticipationRequest{}, ErrDuplicate
		}
		return models.ParticipationRequest{}, fmt.Errorf("error inserting request: %v", err)
	}
	return r, nil
}

func (t *sqlEventTx) RequestsByIDs(ids []int64) ([]models.ParticipationRequest, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	ph, _ := inPlaceholders(len(ids), 1)
	query := fmt.Sprintf(
		"SELECT %s FROM participation_requests WHERE id IN (%s) ORDER BY id",
		requestColumns, ph)

	vals := make([]interface{}, len(ids))
	for i, id := range ids {
		vals[i] = id
	}

	rows, err := t.tx.QueryContext(t.ctx, query, vals...)
	if err != nil {
		return nil, fmt.Errorf("error loading requests: %v", err)
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (t *sqlEventTx) PendingRequests(eventID int64) ([]models.ParticipationRequest, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM participation_requests WHERE event_id = $1 AND status = $2 ORDER BY id",
		requestColumns)
	rows, err := t.tx.QueryContext(t.ctx, query, eventID, models.RequestPending)
	if err != nil {
		return nil, fmt.Errorf("error loading pending requests: %v", err)
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (t *sqlEventTx) UpdateRequestStatuses(ids []int64, status models.RequestStatus) error {
	if len(ids) == 0 {
		return nil
	}
	ph, next := inPlaceholders(len(ids), 1)
	query := fmt.Sprintf(
		"UPDATE participation_requests SET status = $%d WHERE id IN (%s)", next, ph)

	vals := make([]interface{}, 0, len(ids)+1)
	for _, id := range ids {
		vals = append(vals, id)
	}
	vals = append(vals, status)

	if _, err := t.tx.ExecContext(t.ctx, query, vals...); err != nil {
		return fmt.Errorf("error updating request statuses: %v", err)
	}
	return nil
}

func scanRequests(rows *sql.Rows) ([]models.ParticipationRequest, error) {
	var requests []models.ParticipationRequest
	for rows.Next() {
		var r models.ParticipationRequest
		if err := rows.Scan(&r.ID, &r.RequesterID, &r.EventID, &r.Created, &r.Status); err != nil {
			return nil, fmt.Errorf("error scanning request: %v", err)
		}
		requests = append(requests, r)
	}
	return requests, rows.Err()
}

func (sr *SqlRepo) RequestsByRequester(ctx context.Context, requesterID int64) ([]models.ParticipationRequest, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM participation_requests WHERE requester_id = $1 ORDER BY id",
		requestColumns)
	rows, err := sr.DB.QueryContext(ctx, query, requesterID)
	if err != nil {
		return nil, fmt.Errorf("error listing requests: %v", err)
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (sr *SqlRepo) RequestsByEvent(ctx context.Context, eventID int64) ([]models.ParticipationRequest, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM participation_requests WHERE event_id = $1 ORDER BY id",
		requestColumns)
	rows, err := sr.DB.QueryContext(ctx, query, eventID)
	if err != nil {
		return nil, fmt.Errorf("error listing requests: %v", err)
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (sr *SqlRepo) RequestByIDAndRequester(ctx context.Context, id, requesterID int64) (models.ParticipationRequest, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM participation_requests WHERE id = $1 AND requester_id = $2",
		requestColumns)
	var r models.ParticipationRequest
	err := sr.DB.QueryRowContext(ctx, query, id, requesterID).
		Scan(&r.ID, &r.RequesterID, &r.EventID, &r.Created, &r.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ParticipationRequest{}, ErrNoRows
		}
		return models.ParticipationRequest{}, fmt.Errorf("error getting request: %v", err)
	}
	return r, nil
}

func (sr *SqlRepo) SetRequestStatus(ctx context.Context, id int64, status models.RequestStatus) (models.ParticipationRequest, error) {
	query := fmt.Sprintf(
		"UPDATE participation_requests SET status = $1 WHERE id = $2 RETURNING %s",
		requestColumns)
	var r models.ParticipationRequest
	err := sr.DB.QueryRowContext(ctx, query, status, id).
		Scan(&r.ID, &r.RequesterID, &r.EventID, &r.Created, &r.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.ParticipationRequest{}, ErrNoRows
		}
		return models.ParticipationRequest{}, fmt.Errorf("error setting request status: %v", err)
	}
	return r, nil
}

// CountConfirmedBatch groups confirmed requests by event in one query. Events
// absent from the result simply have no confirmed requests; callers default
// them to zero.
func (sr *SqlRepo) CountConfirmedBatch(ctx context.Context, eventIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}

	ph, next := inPlaceholders(len(eventIDs), 1)
	query := fmt.Sprintf(
		`SELECT event_id, COUNT(*) FROM participation_requests
		 WHERE event_id IN (%s) AND status = $%d GROUP BY event_id`, ph, next)

	vals := make([]interface{}, 0, len(eventIDs)+1)
	for _, id := range eventIDs {
		vals = append(vals, id)
	}
	vals = append(vals, models.RequestConfirmed)

	rows, err := sr.DB.QueryContext(ctx, query, vals...)
	if err != nil {
		return nil, fmt.Errorf("error counting confirmed requests: %v", err)
	}
	defer rows.Close()

	for rows.Next() {
		var eventID, count int64
		if err := rows.Scan(&eventID, &count); err != nil {
			return nil, fmt.Errorf("error scanning count: %v", err)
		}
		counts[eventID] = count
	}
	return counts, rows.Err()
}
