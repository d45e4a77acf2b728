package service

import (
	"context"
	"events-platform/apperrors"
	"events-platform/data/models"
	"events-platform/data/repository"
	"sort"
	"time"
)

// SortKey selects the ordering of public search results.
type SortKey string

const (
	SortByDate  SortKey = "EVENT_DATE"
	SortByViews SortKey = "VIEWS"
)

// AdminQuery is the moderator-side search predicate.
type AdminQuery struct {
	Users      []int64
	States     []models.EventState
	Categories []int64
	RangeStart time.Time
	RangeEnd   time.Time
	From       int
	Size       int
}

// PublicQuery is the public search predicate. OnlyAvailable drops events
// whose confirmed count has reached their limit.
type PublicQuery struct {
	Text          string
	Categories    []int64
	Paid          *bool
	RangeStart    time.Time
	RangeEnd      time.Time
	OnlyAvailable bool
	Sort          SortKey
	From          int
	Size          int
}

// AdminSearch returns a page of events matching the moderator predicate.
func (s *EventService) AdminSearch(ctx context.Context, q AdminQuery) ([]EventView, error) {
	if err := checkPagination(q.From, q.Size); err != nil {
		return nil, err
	}
	if err := checkRange(q.RangeStart, q.RangeEnd); err != nil {
		return nil, err
	}

	filter := repository.EventFilter{
		InitiatorIDs: q.Users,
		States:       q.States,
		CategoryIDs:  q.Categories,
		RangeStart:   q.RangeStart,
		RangeEnd:     q.RangeEnd,
	}
	events, err := s.repo.SearchEvents(ctx, filter, "id", q.Size, q.From)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, events)
}

// PublicSearch returns a page of published events matching the public
// predicate. Sorting by views has to materialize the whole filtered set first:
// view counts live in the stats service, not in the primary store, so the page
// cannot be cut in SQL.
func (s *EventService) PublicSearch(ctx context.Context, q PublicQuery) ([]EventView, error) {
	if err := checkPagination(q.From, q.Size); err != nil {
		return nil, err
	}
	if err := checkRange(q.RangeStart, q.RangeEnd); err != nil {
		return nil, err
	}

	filter := repository.EventFilter{
		States:      []models.EventState{models.StatePublished},
		CategoryIDs: q.Categories,
		Text:        q.Text,
		Paid:        q.Paid,
		RangeStart:  q.RangeStart,
		RangeEnd:    q.RangeEnd,
	}
	// With no explicit range, only upcoming events are of interest.
	if q.RangeStart.IsZero() && q.RangeEnd.IsZero() {
		filter.RangeStart = s.clock.Now()
	}

	var events []models.Event
	var err error
	if q.Sort == SortByViews {
		events, err = s.repo.SearchEventsAll(ctx, filter)
	} else {
		events, err = s.repo.SearchEvents(ctx, filter, "event_date", q.Size, q.From)
	}
	if err != nil {
		return nil, err
	}

	if q.OnlyAvailable {
		events, err = s.onlyAvailable(ctx, events)
		if err != nil {
			return nil, err
		}
	}

	views, err := s.toViews(ctx, events)
	if err != nil {
		return nil, err
	}

	if q.Sort == SortByViews {
		sort.SliceStable(views, func(i, j int) bool {
			return views[i].Views > views[j].Views
		})
		start := q.From
		if start > len(views) {
			start = len(views)
		}
		end := q.From + q.Size
		if end > len(views) {
			end = len(views)
		}
		views = views[start:end]
	}
	return views, nil
}

// onlyAvailable filters out events at capacity using one batched confirmed
// count, never a per-event query.
func (s *EventService) onlyAvailable(ctx context.Context, events []models.Event) ([]models.Event, error) {
	confirmed, err := s.ledger.ConfirmedCounts(ctx, eventIDs(events))
	if err != nil {
		return nil, err
	}

	available := events[:0]
	for _, e := range events {
		if e.Unlimited() || confirmed[e.ID] < int64(e.ParticipantLimit) {
			available = append(available, e)
		}
	}
	return available, nil
}

func checkRange(start, end time.Time) error {
	if !start.IsZero() && !end.IsZero() && start.After(end) {
		return apperrors.Validation("range start must not be after range end")
	}
	return nil
}
