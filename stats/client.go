// Package stats holds the wire types of the hit-statistics service and the
// HTTP client the main service uses to talk to it.
package stats

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// TimeLayout is the timestamp format used on the stats wire.
const TimeLayout = "2006-01-02 15:04:05"

// Hit is the payload of POST /hit.
type Hit struct {
	App       string `json:"app"`
	URI       string `json:"uri"`
	IP        string `json:"ip"`
	Timestamp string `json:"timestamp"`
}

// ViewStats is one row of the GET /stats response.
type ViewStats struct {
	App  string `json:"app"`
	URI  string `json:"uri"`
	Hits int64  `json:"hits"`
}

// Client talks to the stats service. The embedded http.Client carries a
// bounded timeout so a slow stats backend cannot stall callers; view lookups
// are best-effort and callers degrade to zero counts on error.
type Client struct {
	baseURL string
	appName string
	http    *http.Client
}

func NewClient(baseURL, appName string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		appName: appName,
		http:    &http.Client{Timeout: timeout},
	}
}

// RecordHit registers one page view for uri from clientIP.
func (c *Client) RecordHit(ctx context.Context, uri, clientIP string, at time.Time) error {
	hit := Hit{
		App:       c.appName,
		URI:       uri,
		IP:        clientIP,
		Timestamp: at.Format(TimeLayout),
	}

	body, err := json.Marshal(hit)
	if err != nil {
		return fmt.Errorf("error marshaling hit: %v", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/hit", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error building hit request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error sending hit: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode >= 300 {
		return fmt.Errorf("stats service returned status %d", res.StatusCode)
	}
	return nil
}

// QueryViews fetches aggregated hit counts for the given uris over
// [start, end] in one round trip, regardless of how many uris are asked for.
func (c *Client) QueryViews(ctx context.Context, start, end time.Time, uris []string, unique bool) ([]ViewStats, error) {
	params := url.Values{}
	params.Set("start", start.Format(TimeLayout))
	params.Set("end", end.Format(TimeLayout))
	if unique {
		params.Set("unique", "true")
	}
	for _, uri := range uris {
		params.Add("uris", uri)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/stats?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("error building stats request: %v", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error querying stats: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("stats service returned status %d", res.StatusCode)
	}

	var stats []ViewStats
	if err := json.NewDecoder(res.Body).Decode(&stats); err != nil {
		return nil, fmt.Errorf("error decoding stats response: %v", err)
	}
	return stats, nil
}
