package service

import (
	"context"
	"events-platform/data/models"
	"events-platform/data/repository"
	"events-platform/stats"
	"fmt"
	"log"
	"time"
)

// StatsReader is the slice of the stats client the ledger depends on.
type StatsReader interface {
	QueryViews(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]stats.ViewStats, error)
}

// Ledger is the read side of event availability: confirmed participant counts
// from the primary store and view counts from the stats service. It never
// mutates anything.
type Ledger struct {
	repo  repository.DBRepo
	stats StatsReader
}

func NewLedger(repo repository.DBRepo, statsReader StatsReader) *Ledger {
	return &Ledger{repo: repo, stats: statsReader}
}

// ConfirmedCounts maps each event id to its confirmed request count. Ids with
// no confirmed requests map to 0; the result always has an entry per input id.
func (l *Ledger) ConfirmedCounts(ctx context.Context, eventIDs []int64) (map[int64]int64, error) {
	counts := make(map[int64]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return counts, nil
	}

	found, err := l.repo.CountConfirmedBatch(ctx, eventIDs)
	if err != nil {
		return nil, fmt.Errorf("error loading confirmed counts: %w", err)
	}
	for _, id := range eventIDs {
		counts[id] = found[id]
	}
	return counts, nil
}

// ViewCounts maps each event id to its unique view count as of asOf, asking
// the stats service once for the whole batch. Views are best-effort: on any
// stats failure every event gets 0 rather than the read failing.
func (l *Ledger) ViewCounts(ctx context.Context, eventIDs []int64, asOf time.Time) map[int64]int64 {
	views := make(map[int64]int64, len(eventIDs))
	if len(eventIDs) == 0 {
		return views
	}

	uris := make([]string, len(eventIDs))
	for i, id := range eventIDs {
		uris[i] = eventURI(id)
		views[id] = 0
	}

	rows, err := l.stats.QueryViews(ctx, time.Unix(0, 0), asOf, uris, true)
	if err != nil {
		log.Printf("stats lookup failed, defaulting views to 0: %v", err)
		return views
	}

	hitsByURI := make(map[string]int64, len(rows))
	for _, row := range rows {
		hitsByURI[row.URI] = row.Hits
	}
	for _, id := range eventIDs {
		views[id] = hitsByURI[eventURI(id)]
	}
	return views
}

func eventURI(id int64) string {
	return fmt.Sprintf("/events/%d", id)
}

func eventIDs(events []models.Event) []int64 {
	ids := make([]int64, len(events))
	for i, e := range events {
		ids[i] = e.ID
	}
	return ids
}
