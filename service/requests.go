package service

import (
	"context"
	"errors"
	"events-platform/apperrors"
	"events-platform/data/models"
	"events-platform/data/repository"
)

// Decision is the organizer's verdict on a batch of pending requests.
type Decision string

const (
	DecisionConfirm Decision = "CONFIRMED"
	DecisionReject  Decision = "REJECTED"
)

// StatusUpdateResult partitions a processed batch into its final statuses.
// Rejected includes requests closed by the capacity cascade, not only the ones
// named in the call.
type StatusUpdateResult struct {
	Confirmed []models.ParticipationRequest `json:"confirmedRequests"`
	Rejected  []models.ParticipationRequest `json:"rejectedRequests"`
}

// RequestService is the approval engine. It is the only component that
// mutates participation-request statuses in bulk, and every capacity-coupled
// mutation runs under the event's row lock so concurrent batches cannot
// jointly overshoot the participant limit.
type RequestService struct {
	repo  repository.DBRepo
	clock Clock
}

func NewRequestService(repo repository.DBRepo, clock Clock) *RequestService {
	return &RequestService{repo: repo, clock: clock}
}

// SubmitRequest files a participation request for a published event. The
// request is confirmed immediately when the event needs no moderation or has
// no cap, otherwise it starts out pending.
func (s *RequestService) SubmitRequest(ctx context.Context, requesterID, eventID int64) (models.ParticipationRequest, error) {
	exists, err := s.repo.UserExists(requesterID)
	if err != nil {
		return models.ParticipationRequest{}, err
	}
	if !exists {
		return models.ParticipationRequest{}, apperrors.NotFound("user with id=%d not found", requesterID)
	}

	var request models.ParticipationRequest
	err = s.repo.InEventTx(ctx, func(tx repository.EventTx) error {
		event, err := tx.LockEvent(eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNoRows) {
				return apperrors.NotFound("event with id=%d not found", eventID)
			}
			return err
		}

		if event.InitiatorID == requesterID {
			return apperrors.Conflict("cannot request participation in your own event")
		}
		if event.State != models.StatePublished {
			return apperrors.Conflict("event must be published to accept requests")
		}

		duplicate, err := tx.RequestExists(requesterID, eventID)
		if err != nil {
			return err
		}
		if duplicate {
			return apperrors.Conflict("request for event with id=%d already exists", eventID)
		}

		confirmed, err := tx.CountConfirmed(eventID)
		if err != nil {
			return err
		}
		if !event.Unlimited() && confirmed >= int64(event.ParticipantLimit) {
			return apperrors.Conflict("the participant limit has been reached")
		}

		status := models.RequestPending
		if !event.RequestModeration || event.Unlimited() {
			status = models.RequestConfirmed
		}

		request, err = tx.CreateRequest(models.ParticipationRequest{
			RequesterID: requesterID,
			EventID:     eventID,
			Created:     s.clock.Now(),
			Status:      status,
		})
		if errors.Is(err, repository.ErrDuplicate) {
			return apperrors.Conflict("request for event with id=%d already exists", eventID)
		}
		return err
	})
	if err != nil {
		return models.ParticipationRequest{}, err
	}
	return request, nil
}

// CancelOwnRequest moves the requester's own request to CANCELED. It never
// re-checks capacity and never resurrects other pending requests; cancelling
// an already canceled request is a no-op returning the same terminal state.
func (s *RequestService) CancelOwnRequest(ctx context.Context, requesterID, requestID int64) (models.ParticipationRequest, error) {
	request, err := s.repo.RequestByIDAndRequester(ctx, requestID, requesterID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return models.ParticipationRequest{}, apperrors.NotFound("request with id=%d not found", requestID)
		}
		return models.ParticipationRequest{}, err
	}

	if request.Status == models.RequestCanceled {
		return request, nil
	}
	return s.repo.SetRequestStatus(ctx, requestID, models.RequestCanceled)
}

// UserRequests lists a user's own participation requests.
func (s *RequestService) UserRequests(ctx context.Context, requesterID int64) ([]models.ParticipationRequest, error) {
	exists, err := s.repo.UserExists(requesterID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, apperrors.NotFound("user with id=%d not found", requesterID)
	}
	return s.repo.RequestsByRequester(ctx, requesterID)
}

// EventRequests lists the requests for an event the organizer owns.
func (s *RequestService) EventRequests(ctx context.Context, organizerID, eventID int64) ([]models.ParticipationRequest, error) {
	event, err := s.repo.GetEventByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			return nil, apperrors.NotFound("event with id=%d not found", eventID)
		}
		return nil, err
	}
	if event.InitiatorID != organizerID {
		return nil, apperrors.NotFound("event with id=%d not found", eventID)
	}
	return s.repo.RequestsByEvent(ctx, eventID)
}

// UpdateRequestStatuses processes a batch of approve/reject decisions against
// the event's capacity. Named requests are decided in caller order, so the
// first-listed requests win the remaining slots. A confirm that would exceed
// the limit fails the whole batch; nothing is half-applied. Once the cap is
// reached, every other pending request for the event is rejected in the same
// transaction (the capacity cascade).
func (s *RequestService) UpdateRequestStatuses(ctx context.Context, organizerID, eventID int64, requestIDs []int64, decision Decision) (StatusUpdateResult, error) {
	if decision != DecisionConfirm && decision != DecisionReject {
		return StatusUpdateResult{}, apperrors.Validation("unknown decision: %s", decision)
	}

	var result StatusUpdateResult
	err := s.repo.InEventTx(ctx, func(tx repository.EventTx) error {
		event, err := tx.LockEvent(eventID)
		if err != nil {
			if errors.Is(err, repository.ErrNoRows) {
				return apperrors.NotFound("event with id=%d not found", eventID)
			}
			return err
		}
		if event.InitiatorID != organizerID {
			return apperrors.NotFound("event with id=%d not found", eventID)
		}

		loaded, err := tx.RequestsByIDs(requestIDs)
		if err != nil {
			return err
		}
		byID := make(map[int64]models.ParticipationRequest, len(loaded))
		for _, r := range loaded {
			if r.EventID != eventID {
				return apperrors.Conflict("request with id=%d does not belong to event with id=%d", r.ID, eventID)
			}
			if r.Status != models.RequestPending {
				return apperrors.Conflict("only pending requests can be updated")
			}
			byID[r.ID] = r
		}

		confirmed, err := tx.CountConfirmed(eventID)
		if err != nil {
			return err
		}

		// Phase one: decide everything in memory against the snapshot.
		decided := make(map[int64]bool, len(requestIDs))
		var confirmedIDs, rejectedIDs []int64
		for _, id := range requestIDs {
			request, ok := byID[id]
			if !ok {
				return apperrors.NotFound("request with id=%d not found", id)
			}
			if decided[id] {
				return apperrors.Conflict("request with id=%d listed more than once", id)
			}
			decided[id] = true

			if decision == DecisionReject {
				request.Status = models.RequestRejected
				rejectedIDs = append(rejectedIDs, id)
				result.Rejected = append(result.Rejected, request)
				continue
			}

			if !event.Unlimited() && confirmed >= int64(event.ParticipantLimit) {
				return apperrors.Conflict("the participant limit has been reached")
			}
			request.Status = models.RequestConfirmed
			confirmed++
			confirmedIDs = append(confirmedIDs, id)
			result.Confirmed = append(result.Confirmed, request)
		}

		// Capacity cascade: reaching the cap closes the waitlist for good.
		if !event.Unlimited() && confirmed >= int64(event.ParticipantLimit) {
			pending, err := tx.PendingRequests(eventID)
			if err != nil {
				return err
			}
			for _, request := range pending {
				if decided[request.ID] {
					continue
				}
				request.Status = models.RequestRejected
				rejectedIDs = append(rejectedIDs, request.ID)
				result.Rejected = append(result.Rejected, request)
			}
		}

		// Phase two: commit the computed statuses as one unit.
		if err := tx.UpdateRequestStatuses(confirmedIDs, models.RequestConfirmed); err != nil {
			return err
		}
		return tx.UpdateRequestStatuses(rejectedIDs, models.RequestRejected)
	})
	if err != nil {
		return StatusUpdateResult{}, err
	}
	return result, nil
}
