package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"events-platform/stats"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type frozenClock struct{ at time.Time }

func (c frozenClock) Now() time.Time { return c.at }

func TestRecordHitUsesApplicationClock(t *testing.T) {
	var got stats.Hit
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/hit", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	app := &application{
		stats: stats.NewClient(srv.URL, "events-platform", time.Second),
		clock: frozenClock{at: at},
	}

	req := httptest.NewRequest("GET", "/events/1", nil)
	req.RemoteAddr = "203.0.113.9:4040"
	app.recordHit(req)

	assert.Equal(t, "/events/1", got.URI)
	assert.Equal(t, "203.0.113.9", got.IP)
	assert.Equal(t, at.Format(stats.TimeLayout), got.Timestamp)
}
