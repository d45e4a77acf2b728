package repository

import (
	"events-platform/data/models"
	"fmt"
	"strings"
	"time"
)

// EventFilter is the predicate for admin and public event searches. Zero
// values mean "no constraint". Composed into a parameterized WHERE clause so
// values never end up in the SQL text.
type EventFilter struct {
	InitiatorIDs []int64
	States       []models.EventState
	CategoryIDs  []int64
	Text         string
	Paid         *bool
	RangeStart   time.Time
	RangeEnd     time.Time
}

// whereClause constructs a formatted and parameterized sql WHERE clause from
// the filter. It returns the finished clause (empty string when the filter has
// no conditions) and the values to be passed alongside the query.
func (f EventFilter) whereClause() (string, []interface{}) {
	parts := []string{}
	values := []interface{}{}
	phIndex := 1

	if len(f.InitiatorIDs) > 0 {
		var ph string
		ph, phIndex = inPlaceholders(len(f.InitiatorIDs), phIndex)
		parts = append(parts, fmt.Sprintf("initiator_id IN (%s)", ph))
		for _, id := range f.InitiatorIDs {
			values = append(values, id)
		}
	}

	if len(f.States) > 0 {
		var ph string
		ph, phIndex = inPlaceholders(len(f.States), phIndex)
		parts = append(parts, fmt.Sprintf("state IN (%s)", ph))
		for _, s := range f.States {
			values = append(values, string(s))
		}
	}

	if len(f.CategoryIDs) > 0 {
		var ph string
		ph, phIndex = inPlaceholders(len(f.CategoryIDs), phIndex)
		parts = append(parts, fmt.Sprintf("category_id IN (%s)", ph))
		for _, id := range f.CategoryIDs {
			values = append(values, id)
		}
	}

	if f.Text != "" {
		parts = append(parts, fmt.Sprintf(
			"(LOWER(annotation) LIKE $%d OR LOWER(description) LIKE $%d)", phIndex, phIndex))
		values = append(values, "%"+strings.ToLower(f.Text)+"%")
		phIndex++
	}

	if f.Paid != nil {
		parts = append(parts, fmt.Sprintf("paid = $%d", phIndex))
		values = append(values, *f.Paid)
		phIndex++
	}

	if !f.RangeStart.IsZero() {
		parts = append(parts, fmt.Sprintf("event_date >= $%d", phIndex))
		values = append(values, f.RangeStart)
		phIndex++
	}

	if !f.RangeEnd.IsZero() {
		parts = append(parts, fmt.Sprintf("event_date <= $%d", phIndex))
		values = append(values, f.RangeEnd)
		phIndex++
	}

	if len(parts) == 0 {
		return "", values
	}
	return "WHERE " + strings.Join(parts, " AND "), values
}
