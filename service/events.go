// Package service implements the business core: event lifecycle, the
// participation-request approval engine, availability aggregation, and event
// search. Handlers stay thin and call in here.
package service

import (
	"context"
	"errors"
	"events-platform/apperrors"
	"events-platform/data/models"
	"events-platform/data/repository"
	"fmt"
	"time"
)

// Minimum interval between "now" and an event's date for an edit to be legal.
const (
	userEditLeadTime  = 2 * time.Hour
	adminEditLeadTime = 1 * time.Hour
)

// StateAction requests a lifecycle transition alongside a field patch.
type StateAction string

const (
	ActionSendToReview StateAction = "SEND_TO_REVIEW"
	ActionCancelReview StateAction = "CANCEL_REVIEW"
	ActionPublish      StateAction = "PUBLISH_EVENT"
	ActionReject       StateAction = "REJECT_EVENT"
)

// NewEventDraft carries the fields of an event being submitted.
type NewEventDraft struct {
	Title             string
	Annotation        string
	Description       string
	CategoryID        int64
	Lat               float64
	Lon               float64
	Paid              bool
	ParticipantLimit  int
	RequestModeration *bool
	EventDate         time.Time
}

// EventPatch is a partial update; nil fields are left untouched.
type EventPatch struct {
	Title             *string
	Annotation        *string
	Description       *string
	CategoryID        *int64
	Lat               *float64
	Lon               *float64
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
	EventDate         *time.Time
	StateAction       StateAction
}

// EventView is an event joined with its availability numbers.
type EventView struct {
	models.Event
	ConfirmedRequests int64 `json:"confirmedRequests"`
	Views             int64 `json:"views"`
}

// EventService owns the event lifecycle state machine and event reads. It is
// the only component that mutates Event.State and PublishedOn.
type EventService struct {
	repo   repository.DBRepo
	ledger *Ledger
	clock  Clock
}

func NewEventService(repo repository.DBRepo, ledger *Ledger, clock Clock) *EventService {
	return &EventService{repo: repo, ledger: ledger, clock: clock}
}

// Submit creates a new event in PENDING on behalf of its initiator.
func (s *EventService) Submit(ctx context.Context, initiatorID int64, draft NewEventDraft) (EventView, error) {
	exists, err := s.repo.UserExists(initiatorID)
	if err != nil {
		return EventView{}, err
	}
	if !exists {
		return EventView{}, apperrors.NotFound("user with id=%d not found", initiatorID)
	}
	if _, err := s.repo.GetCategoryByID(draft.CategoryID); err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return EventView{}, apperrors.NotFound("category with id=%d not found", draft.CategoryID)
		}
		return EventView{}, err
	}

	now := s.clock.Now()
	if draft.EventDate.Before(now.Add(userEditLeadTime)) {
		return EventView{}, apperrors.Validation("event date must be at least 2 hours from now")
	}

	event := models.Event{
		InitiatorID:       initiatorID,
		CategoryID:        draft.CategoryID,
		Title:             draft.Title,
		Annotation:        draft.Annotation,
		Description:       draft.Description,
		Lat:               draft.Lat,
		Lon:               draft.Lon,
		Paid:              draft.Paid,
		ParticipantLimit:  draft.ParticipantLimit,
		RequestModeration: draft.RequestModeration == nil || *draft.RequestModeration,
		CreatedOn:         now,
		EventDate:         draft.EventDate,
		State:             models.StatePending,
	}
	if err := models.ValidateModel(event); err != nil {
		return EventView{}, apperrors.Validation("invalid event: %v", err)
	}

	id, err := s.repo.Create(event)
	if err != nil {
		return EventView{}, fmt.Errorf("error creating event: %w", err)
	}
	event.ID = id
	return EventView{Event: event}, nil
}

// UpdateUserEvent applies an initiator's partial edit. Published events are
// immutable to their initiator.
func (s *EventService) UpdateUserEvent(ctx context.Context, actorID, eventID int64, patch EventPatch) (EventView, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return EventView{}, err
	}
	if event.InitiatorID != actorID {
		return EventView{}, apperrors.Authorization("user with id=%d cannot edit event with id=%d", actorID, eventID)
	}
	if event.State == models.StatePublished {
		return EventView{}, apperrors.Conflict("published events cannot be modified")
	}

	if err := s.applyPatch(&event, patch); err != nil {
		return EventView{}, err
	}
	switch patch.StateAction {
	case ActionSendToReview:
		event.State = models.StatePending
	case ActionCancelReview:
		event.State = models.StateCanceled
	case "":
	default:
		return EventView{}, apperrors.Validation("unknown state action: %s", patch.StateAction)
	}

	if event.EventDate.Before(s.clock.Now().Add(userEditLeadTime)) {
		return EventView{}, apperrors.Validation("event date must be at least 2 hours from now")
	}

	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		return EventView{}, fmt.Errorf("error updating event: %w", err)
	}
	return s.toView(ctx, event)
}

// UpdateAdminEvent applies a moderator's partial edit, including publication
// and rejection.
func (s *EventService) UpdateAdminEvent(ctx context.Context, eventID int64, patch EventPatch) (EventView, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return EventView{}, err
	}

	if err := s.applyPatch(&event, patch); err != nil {
		return EventView{}, err
	}
	switch patch.StateAction {
	case ActionPublish:
		if event.State != models.StatePending {
			return EventView{}, apperrors.Conflict("event with id=%d is not awaiting publication", eventID)
		}
		event.State = models.StatePublished
		event.PublishedOn.Time = s.clock.Now()
		event.PublishedOn.Valid = true
	case ActionReject:
		if event.State == models.StatePublished {
			return EventView{}, apperrors.Conflict("cannot reject a published event")
		}
		event.State = models.StateCanceled
	case "":
	default:
		return EventView{}, apperrors.Validation("unknown state action: %s", patch.StateAction)
	}

	if event.EventDate.Before(s.clock.Now().Add(adminEditLeadTime)) {
		return EventView{}, apperrors.Validation("event date must be at least 1 hour from now")
	}

	if err := s.repo.UpdateEvent(ctx, event); err != nil {
		return EventView{}, fmt.Errorf("error updating event: %w", err)
	}
	return s.toView(ctx, event)
}

// UserEvents returns a page of the initiator's own events.
func (s *EventService) UserEvents(ctx context.Context, initiatorID int64, from, size int) ([]EventView, error) {
	if err := checkPagination(from, size); err != nil {
		return nil, err
	}
	exists, err := s.repo.UserExists(initiatorID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NotFound("user with id=%d not found", initiatorID)
	}

	events, err := s.repo.EventsByInitiator(ctx, initiatorID, size, from)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, events)
}

// UserEvent returns one event owned by initiatorID. Ownership misses surface
// as not-found so existence is not leaked.
func (s *EventService) UserEvent(ctx context.Context, initiatorID, eventID int64) (EventView, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return EventView{}, err
	}
	if event.InitiatorID != initiatorID {
		return EventView{}, apperrors.NotFound("event with id=%d not found", eventID)
	}
	return s.toView(ctx, event)
}

// PublicEvent returns a published event; anything else is not found to the
// public.
func (s *EventService) PublicEvent(ctx context.Context, eventID int64) (EventView, error) {
	event, err := s.getEvent(ctx, eventID)
	if err != nil {
		return EventView{}, err
	}
	if event.State != models.StatePublished {
		return EventView{}, apperrors.NotFound("event with id=%d not found", eventID)
	}
	return s.toView(ctx, event)
}

// EventViews loads the named events decorated with availability numbers, for
// compilation reads.
func (s *EventService) EventViews(ctx context.Context, ids []int64) ([]EventView, error) {
	events, err := s.repo.EventsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	return s.toViews(ctx, events)
}

func (s *EventService) getEvent(ctx context.Context, eventID int64) (models.Event, error) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return models.Event{}, apperrors.NotFound("event with id=%d not found", eventID)
		}
		return models.Event{}, err
	}
	return event, nil
}

func (s *EventService) applyPatch(event *models.Event, patch EventPatch) error {
	if patch.Title != nil {
		event.Title = *patch.Title
	}
	if patch.Annotation != nil {
		event.Annotation = *patch.Annotation
	}
	if patch.Description != nil {
		event.Description = *patch.Description
	}
	if patch.CategoryID != nil {
		if _, err := s.repo.GetCategoryByID(*patch.CategoryID); err != nil {
			if errors.Is(err, repository.ErrNoRows) {
				return apperrors.NotFound("category with id=%d not found", *patch.CategoryID)
			}
			return err
		}
		event.CategoryID = *patch.CategoryID
	}
	if patch.Lat != nil {
		event.Lat = *patch.Lat
	}
	if patch.Lon != nil {
		event.Lon = *patch.Lon
	}
	if patch.Paid != nil {
		event.Paid = *patch.Paid
	}
	if patch.ParticipantLimit != nil {
		if *patch.ParticipantLimit < 0 {
			return apperrors.Validation("participant limit must not be negative")
		}
		event.ParticipantLimit = *patch.ParticipantLimit
	}
	if patch.RequestModeration != nil {
		event.RequestModeration = *patch.RequestModeration
	}
	if patch.EventDate != nil {
		event.EventDate = *patch.EventDate
	}
	return nil
}

// toViews decorates events with confirmed counts and views, one batched call
// each regardless of how many events are in the page.
func (s *EventService) toViews(ctx context.Context, events []models.Event) ([]EventView, error) {
	ids := eventIDs(events)
	confirmed, err := s.ledger.ConfirmedCounts(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := s.ledger.ViewCounts(ctx, ids, s.clock.Now())

	result := make([]EventView, len(events))
	for i, e := range events {
		result[i] = EventView{
			Event:             e,
			ConfirmedRequests: confirmed[e.ID],
			Views:             views[e.ID],
		}
	}
	return result, nil
}

func (s *EventService) toView(ctx context.Context, event models.Event) (EventView, error) {
	views, err := s.toViews(ctx, []models.Event{event})
	if err != nil {
		return EventView{}, err
	}
	return views[0], nil
}

func checkPagination(from, size int) error {
	if from < 0 || size <= 0 {
		return apperrors.Validation("pagination parameters must be positive")
	}
	return nil
}
