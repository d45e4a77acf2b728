package service

import (
	"context"
	"events-platform/apperrors"
	"events-platform/data/models"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRequestService(repo *memRepo) *RequestService {
	return NewRequestService(repo, fixedClock{now: testNow})
}

func pendingRequest(repo *memRepo, requesterID, eventID int64) models.ParticipationRequest {
	return repo.addRequest(models.ParticipationRequest{
		RequesterID: requesterID,
		EventID:     eventID,
		Created:     testNow.Add(-time.Hour),
		Status:      models.RequestPending,
	})
}

func TestSubmitRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("confirms immediately without moderation", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		repo.addUser(2)
		event := repo.addEvent(publishedEvent(1, 10, false))

		request, err := newRequestService(repo).SubmitRequest(ctx, 2, event.ID)

		require.NoError(t, err)
		assert.Equal(t, models.RequestConfirmed, request.Status)
		assert.Equal(t, testNow, request.Created)
	})

	t.Run("confirms immediately with no cap", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		repo.addUser(2)
		event := repo.addEvent(publishedEvent(1, 0, true))

		request, err := newRequestService(repo).SubmitRequest(ctx, 2, event.ID)

		require.NoError(t, err)
		assert.Equal(t, models.RequestConfirmed, request.Status)
	})

	t.Run("pending when moderated and capped", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		repo.addUser(2)
		event := repo.addEvent(publishedEvent(1, 10, true))

		request, err := newRequestService(repo).SubmitRequest(ctx, 2, event.ID)

		require.NoError(t, err)
		assert.Equal(t, models.RequestPending, request.Status)
	})

	t.Run("rejects the event initiator", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		event := repo.addEvent(publishedEvent(1, 10, true))

		_, err := newRequestService(repo).SubmitRequest(ctx, 1, event.ID)

		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("rejects unpublished events", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		repo.addUser(2)
		event := publishedEvent(1, 10, true)
		event.State = models.StatePending
		saved := repo.addEvent(event)

		_, err := newRequestService(repo).SubmitRequest(ctx, 2, saved.ID)

		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("rejects duplicates", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		repo.addUser(2)
		event := repo.addEvent(publishedEvent(1, 10, true))
		pendingRequest(repo, 2, event.ID)

		_, err := newRequestService(repo).SubmitRequest(ctx, 2, event.ID)

		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("rejects when the limit is reached", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		repo.addUser(2)
		repo.addUser(3)
		event := repo.addEvent(publishedEvent(1, 1, true))
		repo.addRequest(models.ParticipationRequest{
			RequesterID: 3, EventID: event.ID, Status: models.RequestConfirmed,
		})

		_, err := newRequestService(repo).SubmitRequest(ctx, 2, event.ID)

		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("unknown requester is not found", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		event := repo.addEvent(publishedEvent(1, 10, true))

		_, err := newRequestService(repo).SubmitRequest(ctx, 99, event.ID)

		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("unknown event is not found", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(2)

		_, err := newRequestService(repo).SubmitRequest(ctx, 2, 99)

		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestCancelOwnRequest(t *testing.T) {
	ctx := context.Background()

	t.Run("cancels a pending request", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		repo.addUser(2)
		event := repo.addEvent(publishedEvent(1, 10, true))
		request := pendingRequest(repo, 2, event.ID)

		canceled, err := newRequestService(repo).CancelOwnRequest(ctx, 2, request.ID)

		require.NoError(t, err)
		assert.Equal(t, models.RequestCanceled, canceled.Status)
	})

	t.Run("cancels a confirmed request without resurrecting others", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		repo.addUser(2)
		repo.addUser(3)
		event := repo.addEvent(publishedEvent(1, 1, true))
		confirmed := repo.addRequest(models.ParticipationRequest{
			RequesterID: 2, EventID: event.ID, Status: models.RequestConfirmed,
		})
		other := repo.addRequest(models.ParticipationRequest{
			RequesterID: 3, EventID: event.ID, Status: models.RequestRejected,
		})

		canceled, err := newRequestService(repo).CancelOwnRequest(ctx, 2, confirmed.ID)

		require.NoError(t, err)
		assert.Equal(t, models.RequestCanceled, canceled.Status)
		assert.Equal(t, models.RequestRejected, repo.requests[other.ID].Status)
	})

	t.Run("cancelling twice is a no-op", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		repo.addUser(2)
		event := repo.addEvent(publishedEvent(1, 10, true))
		request := pendingRequest(repo, 2, event.ID)

		svc := newRequestService(repo)
		first, err := svc.CancelOwnRequest(ctx, 2, request.ID)
		require.NoError(t, err)
		second, err := svc.CancelOwnRequest(ctx, 2, request.ID)
		require.NoError(t, err)

		assert.Equal(t, first, second)
		assert.Equal(t, models.RequestCanceled, second.Status)
	})

	t.Run("someone else's request is not found", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		repo.addUser(2)
		repo.addUser(3)
		event := repo.addEvent(publishedEvent(1, 10, true))
		request := pendingRequest(repo, 2, event.ID)

		_, err := newRequestService(repo).CancelOwnRequest(ctx, 3, request.ID)

		assert.True(t, apperrors.IsNotFound(err))
	})
}

func TestUpdateRequestStatuses(t *testing.T) {
	ctx := context.Background()

	t.Run("named requests win the remaining slots", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		event := repo.addEvent(publishedEvent(1, 2, true))
		r1 := pendingRequest(repo, 2, event.ID)
		r2 := pendingRequest(repo, 3, event.ID)
		r3 := pendingRequest(repo, 4, event.ID)

		result, err := newRequestService(repo).UpdateRequestStatuses(ctx, 1, event.ID,
			[]int64{r1.ID, r2.ID}, DecisionConfirm)

		require.NoError(t, err)
		assert.Equal(t, []int64{r1.ID, r2.ID}, requestIDsOf(result.Confirmed))
		assert.Equal(t, []int64{r3.ID}, requestIDsOf(result.Rejected))
		assert.Equal(t, models.RequestRejected, repo.requests[r3.ID].Status)
	})

	t.Run("a different batch picks different winners in caller order", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		event := repo.addEvent(publishedEvent(1, 2, true))
		r1 := pendingRequest(repo, 2, event.ID)
		r2 := pendingRequest(repo, 3, event.ID)
		r3 := pendingRequest(repo, 4, event.ID)

		result, err := newRequestService(repo).UpdateRequestStatuses(ctx, 1, event.ID,
			[]int64{r3.ID, r1.ID}, DecisionConfirm)

		require.NoError(t, err)
		assert.Equal(t, []int64{r3.ID, r1.ID}, requestIDsOf(result.Confirmed))
		assert.Equal(t, []int64{r2.ID}, requestIDsOf(result.Rejected))
	})

	t.Run("naming more requests than remaining slots fails the whole batch", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		event := repo.addEvent(publishedEvent(1, 2, true))
		r1 := pendingRequest(repo, 2, event.ID)
		r2 := pendingRequest(repo, 3, event.ID)
		r3 := pendingRequest(repo, 4, event.ID)

		_, err := newRequestService(repo).UpdateRequestStatuses(ctx, 1, event.ID,
			[]int64{r1.ID, r2.ID, r3.ID}, DecisionConfirm)

		assert.True(t, apperrors.IsConflict(err))
		assert.Equal(t, models.RequestPending, repo.requests[r1.ID].Status)
		assert.Equal(t, models.RequestPending, repo.requests[r2.ID].Status)
		assert.Equal(t, models.RequestPending, repo.requests[r3.ID].Status)
	})

	t.Run("cascade rejects pending requests outside the batch", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		event := repo.addEvent(publishedEvent(1, 1, true))
		named := pendingRequest(repo, 2, event.ID)
		waitlisted := pendingRequest(repo, 3, event.ID)
		unrelated := repo.addRequest(models.ParticipationRequest{
			RequesterID: 3, EventID: 99, Status: models.RequestPending,
		})

		result, err := newRequestService(repo).UpdateRequestStatuses(ctx, 1, event.ID,
			[]int64{named.ID}, DecisionConfirm)

		require.NoError(t, err)
		assert.Equal(t, []int64{named.ID}, requestIDsOf(result.Confirmed))
		assert.Equal(t, []int64{waitlisted.ID}, requestIDsOf(result.Rejected))
		assert.Equal(t, models.RequestRejected, repo.requests[waitlisted.ID].Status)
		assert.Equal(t, models.RequestPending, repo.requests[unrelated.ID].Status)
	})

	t.Run("overflowing confirm fails the whole batch", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		event := repo.addEvent(publishedEvent(1, 1, true))
		repo.addRequest(models.ParticipationRequest{
			RequesterID: 5, EventID: event.ID, Status: models.RequestConfirmed,
		})
		r1 := pendingRequest(repo, 2, event.ID)
		r2 := pendingRequest(repo, 3, event.ID)

		_, err := newRequestService(repo).UpdateRequestStatuses(ctx, 1, event.ID,
			[]int64{r1.ID, r2.ID}, DecisionConfirm)

		assert.True(t, apperrors.IsConflict(err))
		assert.Equal(t, models.RequestPending, repo.requests[r1.ID].Status)
		assert.Equal(t, models.RequestPending, repo.requests[r2.ID].Status)
	})

	t.Run("rejection has no capacity effect and no cascade", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		event := repo.addEvent(publishedEvent(1, 1, true))
		r1 := pendingRequest(repo, 2, event.ID)
		r2 := pendingRequest(repo, 3, event.ID)

		result, err := newRequestService(repo).UpdateRequestStatuses(ctx, 1, event.ID,
			[]int64{r1.ID}, DecisionReject)

		require.NoError(t, err)
		assert.Empty(t, result.Confirmed)
		assert.Equal(t, []int64{r1.ID}, requestIDsOf(result.Rejected))
		assert.Equal(t, models.RequestPending, repo.requests[r2.ID].Status)
	})

	t.Run("unlimited events never cascade", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		event := repo.addEvent(publishedEvent(1, 0, true))
		r1 := pendingRequest(repo, 2, event.ID)
		r2 := pendingRequest(repo, 3, event.ID)

		result, err := newRequestService(repo).UpdateRequestStatuses(ctx, 1, event.ID,
			[]int64{r1.ID}, DecisionConfirm)

		require.NoError(t, err)
		assert.Equal(t, []int64{r1.ID}, requestIDsOf(result.Confirmed))
		assert.Empty(t, result.Rejected)
		assert.Equal(t, models.RequestPending, repo.requests[r2.ID].Status)
	})

	t.Run("re-deciding a decided request is a conflict", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		event := repo.addEvent(publishedEvent(1, 10, true))
		decided := repo.addRequest(models.ParticipationRequest{
			RequesterID: 2, EventID: event.ID, Status: models.RequestRejected,
		})

		_, err := newRequestService(repo).UpdateRequestStatuses(ctx, 1, event.ID,
			[]int64{decided.ID}, DecisionConfirm)

		assert.True(t, apperrors.IsConflict(err))
		assert.Equal(t, models.RequestRejected, repo.requests[decided.ID].Status)
	})

	t.Run("foreign requests are a conflict", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		event := repo.addEvent(publishedEvent(1, 10, true))
		other := repo.addEvent(publishedEvent(1, 10, true))
		foreign := pendingRequest(repo, 2, other.ID)

		_, err := newRequestService(repo).UpdateRequestStatuses(ctx, 1, event.ID,
			[]int64{foreign.ID}, DecisionConfirm)

		assert.True(t, apperrors.IsConflict(err))
	})

	t.Run("non-owner sees not found", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		repo.addUser(2)
		event := repo.addEvent(publishedEvent(1, 10, true))
		request := pendingRequest(repo, 3, event.ID)

		_, err := newRequestService(repo).UpdateRequestStatuses(ctx, 2, event.ID,
			[]int64{request.ID}, DecisionConfirm)

		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("unknown request id is not found", func(t *testing.T) {
		repo := newMemRepo()
		repo.addUser(1)
		event := repo.addEvent(publishedEvent(1, 10, true))

		_, err := newRequestService(repo).UpdateRequestStatuses(ctx, 1, event.ID,
			[]int64{42}, DecisionConfirm)

		assert.True(t, apperrors.IsNotFound(err))
	})

	t.Run("unknown decision is a validation error", func(t *testing.T) {
		repo := newMemRepo()

		_, err := newRequestService(repo).UpdateRequestStatuses(ctx, 1, 1,
			[]int64{1}, Decision("MAYBE"))

		assert.True(t, apperrors.IsValidation(err))
	})
}

func TestCapacityInvariantHolds(t *testing.T) {
	// Drive the engine through a mixed sequence and check confirmed <= limit
	// at every step.
	ctx := context.Background()
	repo := newMemRepo()
	repo.addUser(1)
	event := repo.addEvent(publishedEvent(1, 3, true))
	svc := newRequestService(repo)

	var ids []int64
	for user := int64(2); user <= 8; user++ {
		repo.addUser(user)
		request, err := svc.SubmitRequest(ctx, user, event.ID)
		require.NoError(t, err)
		ids = append(ids, request.ID)
	}

	_, err := svc.UpdateRequestStatuses(ctx, 1, event.ID, ids[:2], DecisionConfirm)
	require.NoError(t, err)
	_, err = svc.UpdateRequestStatuses(ctx, 1, event.ID, ids[2:3], DecisionReject)
	require.NoError(t, err)
	result, err := svc.UpdateRequestStatuses(ctx, 1, event.ID, ids[3:4], DecisionConfirm)
	require.NoError(t, err)

	// Third confirm hits the cap: everyone still pending got swept.
	assert.Len(t, result.Rejected, 3)

	var confirmed int
	for _, r := range repo.requests {
		assert.NotEqual(t, models.RequestPending, r.Status)
		if r.Status == models.RequestConfirmed {
			confirmed++
		}
	}
	assert.Equal(t, 3, confirmed)

	// The closed waitlist takes no new confirmations.
	repo.addUser(20)
	_, err = svc.SubmitRequest(ctx, 20, event.ID)
	assert.True(t, apperrors.IsConflict(err))
}

func requestIDsOf(requests []models.ParticipationRequest) []int64 {
	ids := make([]int64, len(requests))
	for i, r := range requests {
		ids[i] = r.ID
	}
	return ids
}
