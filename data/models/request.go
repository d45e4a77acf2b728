package models

import "time"

// RequestStatus is the status of a participation request.
type RequestStatus string

const (
	RequestPending   RequestStatus = "PENDING"
	RequestConfirmed RequestStatus = "CONFIRMED"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCanceled  RequestStatus = "CANCELED"
)

// ParticipationRequest is a user's application to take part in an event. A
// (requester, event) pair is unique, enforced by a db constraint. The event
// reference never changes after creation.
type ParticipationRequest struct {
	ID          int64         `json:"id" db:"id" readOnly:"true"`
	RequesterID int64         `validate:"required" json:"requester" db:"requester_id"`
	EventID     int64         `validate:"required" json:"event" db:"event_id"`
	Created     time.Time     `json:"created" db:"created"`
	Status      RequestStatus `validate:"required" json:"status" db:"status"`
}

func (ParticipationRequest) TableName() string {
	return "participation_requests"
}

func (r ParticipationRequest) ColumnNames() []string {
	return GetColumnNames(r)
}

func (r ParticipationRequest) GetID() int64 {
	return r.ID
}
