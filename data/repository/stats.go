package repository

import (
	"context"
	"events-platform/data/models"
	"fmt"
	"time"
)

// ViewStat is one aggregated row of the stats query: how many hits (optionally
// distinct by ip) a uri received inside the window.
type ViewStat struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

func (sr *SqlRepo) CreateHit(ctx context.Context, h models.EndpointHit) (int64, error) {
	var id int64
	err := sr.DB.QueryRowContext(ctx,
		`INSERT INTO endpoint_hits (app, uri, ip, hit_timestamp)
		 VALUES ($1, $2, $3, $4) RETURNING id`,
		h.App, h.URI, h.IP, h.Timestamp,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error inserting hit: %v", err)
	}
	return id, nil
}

// ViewStats aggregates hits per uri over [start, end], ordered by hits
// descending. With unique set, each ip counts once per uri. An empty uris
// slice means no uri filter.
func (sr *SqlRepo) ViewStats(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]ViewStat, error) {
	hitExpr := "COUNT(ip)"
	if unique {
		hitExpr = "COUNT(DISTINCT ip)"
	}

	vals := []interface{}{start, end}
	uriFilter := ""
	if len(uris) > 0 {
		ph, _ := inPlaceholders(len(uris), 3)
		uriFilter = fmt.Sprintf("AND uri IN (%s)", ph)
		for _, uri := range uris {
			vals = append(vals, uri)
		}
	}

	query := fmt.Sprintf(
		`SELECT app, uri, %s AS hits FROM endpoint_hits
		 WHERE hit_timestamp BETWEEN $1 AND $2 %s
		 GROUP BY app, uri ORDER BY hits DESC`, hitExpr, uriFilter)

	rows, err := sr.DB.QueryContext(ctx, query, vals...)
	if err != nil {
		return nil, fmt.Errorf("error querying stats: %v", err)
	}
	defer rows.Close()

	var stats []ViewStat
	for rows.Next() {
		var s ViewStat
		if err := rows.Scan(&s.App, &s.URI, &s.Hits); err != nil {
			return nil, fmt.Errorf("error scanning stat: %v", err)
		}
		stats = append(stats, s)
	}
	return stats, rows.Err()
}
