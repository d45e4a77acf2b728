package service

import (
	"context"
	"events-platform/data/models"
	"events-platform/data/repository"
	"events-platform/stats"
	"sort"
	"time"
)

// fixedClock pins "now" so lead-time checks are deterministic.
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

// memRepo is an in-memory stand-in for the SQL repository. The embedded
// interface panics on anything a test did not mean to touch.
type memRepo struct {
	repository.DBRepo

	users      map[int64]models.User
	categories map[int64]models.Category
	events     map[int64]models.Event
	requests   map[int64]models.ParticipationRequest

	nextEventID   int64
	nextRequestID int64
}

func newMemRepo() *memRepo {
	return &memRepo{
		users:         make(map[int64]models.User),
		categories:    make(map[int64]models.Category),
		events:        make(map[int64]models.Event),
		requests:      make(map[int64]models.ParticipationRequest),
		nextEventID:   1,
		nextRequestID: 1,
	}
}

func (m *memRepo) addUser(id int64) {
	m.users[id] = models.User{ID: id, Name: "user", Email: "user@example.com"}
}

func (m *memRepo) addCategory(id int64) {
	m.categories[id] = models.Category{ID: id, Name: "concerts"}
}

func (m *memRepo) addEvent(e models.Event) models.Event {
	if e.ID == 0 {
		e.ID = m.nextEventID
	}
	if e.ID >= m.nextEventID {
		m.nextEventID = e.ID + 1
	}
	m.events[e.ID] = e
	return e
}

func (m *memRepo) addRequest(r models.ParticipationRequest) models.ParticipationRequest {
	if r.ID == 0 {
		r.ID = m.nextRequestID
	}
	if r.ID >= m.nextRequestID {
		m.nextRequestID = r.ID + 1
	}
	m.requests[r.ID] = r
	return r
}

func (m *memRepo) UserExists(id int64) (bool, error) {
	_, ok := m.users[id]
	return ok, nil
}

func (m *memRepo) GetUserByID(id int64) (models.User, error) {
	u, ok := m.users[id]
	if !ok {
		return models.User{}, repository.ErrNoRows
	}
	return u, nil
}

func (m *memRepo) GetCategoryByID(id int64) (models.Category, error) {
	c, ok := m.categories[id]
	if !ok {
		return models.Category{}, repository.ErrNoRows
	}
	return c, nil
}

func (m *memRepo) Create(model models.Model) (int64, error) {
	switch v := model.(type) {
	case models.Event:
		return m.addEvent(v).ID, nil
	default:
		panic("memRepo.Create: unsupported model")
	}
}

func (m *memRepo) GetEventByID(_ context.Context, id int64) (models.Event, error) {
	e, ok := m.events[id]
	if !ok {
		return models.Event{}, repository.ErrNoRows
	}
	return e, nil
}

func (m *memRepo) UpdateEvent(_ context.Context, e models.Event) error {
	if _, ok := m.events[e.ID]; !ok {
		return repository.ErrNoRows
	}
	m.events[e.ID] = e
	return nil
}

func (m *memRepo) EventsByInitiator(_ context.Context, initiatorID int64, limit, offset int) ([]models.Event, error) {
	var events []models.Event
	for _, e := range m.sortedEvents() {
		if e.InitiatorID == initiatorID {
			events = append(events, e)
		}
	}
	return page(events, limit, offset), nil
}

func (m *memRepo) EventsByIDs(_ context.Context, ids []int64) ([]models.Event, error) {
	var events []models.Event
	for _, id := range ids {
		if e, ok := m.events[id]; ok {
			events = append(events, e)
		}
	}
	return events, nil
}

func (m *memRepo) SearchEvents(_ context.Context, f repository.EventFilter, _ string, limit, offset int) ([]models.Event, error) {
	return page(m.filterEvents(f), limit, offset), nil
}

func (m *memRepo) SearchEventsAll(_ context.Context, f repository.EventFilter) ([]models.Event, error) {
	return m.filterEvents(f), nil
}

func (m *memRepo) filterEvents(f repository.EventFilter) []models.Event {
	var events []models.Event
	for _, e := range m.sortedEvents() {
		if len(f.States) > 0 && !containsState(f.States, e.State) {
			continue
		}
		if len(f.InitiatorIDs) > 0 && !containsID(f.InitiatorIDs, e.InitiatorID) {
			continue
		}
		if len(f.CategoryIDs) > 0 && !containsID(f.CategoryIDs, e.CategoryID) {
			continue
		}
		if f.Paid != nil && e.Paid != *f.Paid {
			continue
		}
		if !f.RangeStart.IsZero() && e.EventDate.Before(f.RangeStart) {
			continue
		}
		if !f.RangeEnd.IsZero() && e.EventDate.After(f.RangeEnd) {
			continue
		}
		events = append(events, e)
	}
	return events
}

func (m *memRepo) CountConfirmedBatch(_ context.Context, eventIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64)
	for _, r := range m.requests {
		if r.Status == models.RequestConfirmed && containsID(eventIDs, r.EventID) {
			counts[r.EventID]++
		}
	}
	return counts, nil
}

func (m *memRepo) RequestsByRequester(_ context.Context, requesterID int64) ([]models.ParticipationRequest, error) {
	var requests []models.ParticipationRequest
	for _, r := range m.sortedRequests() {
		if r.RequesterID == requesterID {
			requests = append(requests, r)
		}
	}
	return requests, nil
}

func (m *memRepo) RequestsByEvent(_ context.Context, eventID int64) ([]models.ParticipationRequest, error) {
	var requests []models.ParticipationRequest
	for _, r := range m.sortedRequests() {
		if r.EventID == eventID {
			requests = append(requests, r)
		}
	}
	return requests, nil
}

func (m *memRepo) RequestByIDAndRequester(_ context.Context, id, requesterID int64) (models.ParticipationRequest, error) {
	r, ok := m.requests[id]
	if !ok || r.RequesterID != requesterID {
		return models.ParticipationRequest{}, repository.ErrNoRows
	}
	return r, nil
}

func (m *memRepo) SetRequestStatus(_ context.Context, id int64, status models.RequestStatus) (models.ParticipationRequest, error) {
	r, ok := m.requests[id]
	if !ok {
		return models.ParticipationRequest{}, repository.ErrNoRows
	}
	r.Status = status
	m.requests[id] = r
	return r, nil
}

// InEventTx mimics transactional behavior: mutations are staged on a copy of
// the request table and dropped when fn fails, so a failed batch leaves
// nothing half-applied.
func (m *memRepo) InEventTx(_ context.Context, fn func(tx repository.EventTx) error) error {
	staged := make(map[int64]models.ParticipationRequest, len(m.requests))
	for id, r := range m.requests {
		staged[id] = r
	}
	tx := &memTx{repo: m, staged: staged, nextID: m.nextRequestID}

	if err := fn(tx); err != nil {
		return err
	}

	m.requests = tx.staged
	m.nextRequestID = tx.nextID
	return nil
}

type memTx struct {
	repo   *memRepo
	staged map[int64]models.ParticipationRequest
	nextID int64
}

func (t *memTx) LockEvent(id int64) (models.Event, error) {
	e, ok := t.repo.events[id]
	if !ok {
		return models.Event{}, repository.ErrNoRows
	}
	return e, nil
}

func (t *memTx) CountConfirmed(eventID int64) (int64, error) {
	var count int64
	for _, r := range t.staged {
		if r.EventID == eventID && r.Status == models.RequestConfirmed {
			count++
		}
	}
	return count, nil
}

func (t *memTx) RequestExists(requesterID, eventID int64) (bool, error) {
	for _, r := range t.staged {
		if r.RequesterID == requesterID && r.EventID == eventID {
			return true, nil
		}
	}
	return false, nil
}

func (t *memTx) CreateRequest(r models.ParticipationRequest) (models.ParticipationRequest, error) {
	exists, _ := t.RequestExists(r.RequesterID, r.EventID)
	if exists {
		return models.ParticipationRequest{}, repository.ErrDuplicate
	}
	r.ID = t.nextID
	t.nextID++
	t.staged[r.ID] = r
	return r, nil
}

func (t *memTx) RequestsByIDs(ids []int64) ([]models.ParticipationRequest, error) {
	var requests []models.ParticipationRequest
	for _, id := range ids {
		if r, ok := t.staged[id]; ok {
			requests = append(requests, r)
		}
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].ID < requests[j].ID })
	return requests, nil
}

func (t *memTx) PendingRequests(eventID int64) ([]models.ParticipationRequest, error) {
	var requests []models.ParticipationRequest
	for _, r := range t.staged {
		if r.EventID == eventID && r.Status == models.RequestPending {
			requests = append(requests, r)
		}
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].ID < requests[j].ID })
	return requests, nil
}

func (t *memTx) UpdateRequestStatuses(ids []int64, status models.RequestStatus) error {
	for _, id := range ids {
		r := t.staged[id]
		r.Status = status
		t.staged[id] = r
	}
	return nil
}

func (m *memRepo) sortedEvents() []models.Event {
	events := make([]models.Event, 0, len(m.events))
	for _, e := range m.events {
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool { return events[i].ID < events[j].ID })
	return events
}

func (m *memRepo) sortedRequests() []models.ParticipationRequest {
	requests := make([]models.ParticipationRequest, 0, len(m.requests))
	for _, r := range m.requests {
		requests = append(requests, r)
	}
	sort.Slice(requests, func(i, j int) bool { return requests[i].ID < requests[j].ID })
	return requests
}

func page(events []models.Event, limit, offset int) []models.Event {
	if offset > len(events) {
		return nil
	}
	events = events[offset:]
	if limit < len(events) {
		events = events[:limit]
	}
	return events
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

func containsState(states []models.EventState, s models.EventState) bool {
	for _, v := range states {
		if v == s {
			return true
		}
	}
	return false
}

// stubStats records every QueryViews call and serves canned rows.
type stubStats struct {
	calls int
	uris  [][]string
	rows  []stats.ViewStats
	err   error
}

func (s *stubStats) QueryViews(_ context.Context, _, _ time.Time, uris []string, _ bool) ([]stats.ViewStats, error) {
	s.calls++
	s.uris = append(s.uris, uris)
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func publishedEvent(initiatorID int64, limit int, moderation bool) models.Event {
	return models.Event{
		InitiatorID:       initiatorID,
		CategoryID:        1,
		Title:             "Summer open air",
		Annotation:        "An open-air event with live performances",
		Description:       "A long evening of live music in the city park",
		Paid:              false,
		ParticipantLimit:  limit,
		RequestModeration: moderation,
		CreatedOn:         testNow.Add(-24 * time.Hour),
		EventDate:         testNow.Add(72 * time.Hour),
		State:             models.StatePublished,
	}
}
