package main

import (
	"encoding/json"
	"events-platform/data/models"
	"events-platform/stats"
	"net/http"
	"strconv"
	"time"
)

func (app *application) recordHitHandler(w http.ResponseWriter, r *http.Request) {
	var hit stats.Hit
	if err := json.NewDecoder(r.Body).Decode(&hit); err != nil {
		sendJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid hit payload"})
		return
	}
	if hit.App == "" || hit.URI == "" || hit.IP == "" {
		sendJSON(w, http.StatusBadRequest, map[string]string{"message": "app, uri and ip are required"})
		return
	}
	timestamp, err := time.Parse(stats.TimeLayout, hit.Timestamp)
	if err != nil {
		sendJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid timestamp"})
		return
	}

	_, err = app.Repo.CreateHit(r.Context(), models.EndpointHit{
		App:       hit.App,
		URI:       hit.URI,
		IP:        hit.IP,
		Timestamp: timestamp,
	})
	if err != nil {
		sendJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to record hit"})
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (app *application) viewStatsHandler(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	start, err := time.Parse(stats.TimeLayout, query.Get("start"))
	if err != nil {
		sendJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid start"})
		return
	}
	end, err := time.Parse(stats.TimeLayout, query.Get("end"))
	if err != nil {
		sendJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid end"})
		return
	}
	if start.After(end) {
		sendJSON(w, http.StatusBadRequest, map[string]string{"message": "start must not be after end"})
		return
	}

	unique := false
	if raw := query.Get("unique"); raw != "" {
		unique, err = strconv.ParseBool(raw)
		if err != nil {
			sendJSON(w, http.StatusBadRequest, map[string]string{"message": "invalid unique"})
			return
		}
	}

	rows, err := app.Repo.ViewStats(r.Context(), start, end, query["uris"], unique)
	if err != nil {
		sendJSON(w, http.StatusInternalServerError, map[string]string{"message": "failed to query stats"})
		return
	}

	result := make([]stats.ViewStats, len(rows))
	for i, row := range rows {
		result[i] = stats.ViewStats{App: row.App, URI: row.URI, Hits: row.Hits}
	}
	sendJSON(w, http.StatusOK, result)
}

func sendJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}
