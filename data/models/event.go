package models

import (
	"database/sql"
	"time"
)

// EventState is the moderation status of an event.
type EventState string

const (
	StatePending   EventState = "PENDING"
	StatePublished EventState = "PUBLISHED"
	StateCanceled  EventState = "CANCELED"
)

// Valid reports whether s is one of the known states.
func (s EventState) Valid() bool {
	switch s {
	case StatePending, StatePublished, StateCanceled:
		return true
	}
	return false
}

// Event field order must match the events table column order, see
// data/migrations.
type Event struct {
	ID                int64        `json:"id" db:"id" readOnly:"true"`
	InitiatorID       int64        `validate:"required" json:"initiatorId" db:"initiator_id"`
	CategoryID        int64        `validate:"required" json:"categoryId" db:"category_id"`
	Title             string       `validate:"required,min=3,max=120" json:"title" db:"title"`
	Annotation        string       `validate:"required,min=20,max=2000" json:"annotation" db:"annotation"`
	Description       string       `validate:"required,min=20,max=7000" json:"description" db:"description"`
	Lat               float64      `json:"lat" db:"lat"`
	Lon               float64      `json:"lon" db:"lon"`
	Paid              bool         `json:"paid" db:"paid"`
	ParticipantLimit  int          `validate:"min=0" json:"participantLimit" db:"participant_limit"`
	RequestModeration bool         `json:"requestModeration" db:"request_moderation"`
	CreatedOn         time.Time    `json:"createdOn" db:"created_on"`
	EventDate         time.Time    `validate:"required" json:"eventDate" db:"event_date"`
	PublishedOn       sql.NullTime `json:"publishedOn" db:"published_on"`
	State             EventState   `validate:"required" json:"state" db:"state"`
}

func (Event) TableName() string {
	return "events"
}

func (e Event) ColumnNames() []string {
	return GetColumnNames(e)
}

func (e Event) GetID() int64 {
	return e.ID
}

// Unlimited reports whether the event has no participant cap.
func (e Event) Unlimited() bool {
	return e.ParticipantLimit == 0
}
