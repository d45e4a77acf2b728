package models

import "time"

// EndpointHit is one recorded page view, stored by the stats service.
type EndpointHit struct {
	ID        int64     `json:"id" db:"id" readOnly:"true"`
	App       string    `validate:"required" json:"app" db:"app"`
	URI       string    `validate:"required" json:"uri" db:"uri"`
	IP        string    `validate:"required" json:"ip" db:"ip"`
	Timestamp time.Time `validate:"required" json:"timestamp" db:"hit_timestamp"`
}

func (EndpointHit) TableName() string {
	return "endpoint_hits"
}

func (h EndpointHit) ColumnNames() []string {
	return GetColumnNames(h)
}

func (h EndpointHit) GetID() int64 {
	return h.ID
}
