package main

import (
	"events-platform/apperrors"
	"events-platform/data/models"
	"events-platform/service"
	"log"
	"net/http"
	"time"
)

type newEventRequest struct {
	Title             string  `json:"title" validate:"required,min=3,max=120"`
	Annotation        string  `json:"annotation" validate:"required,min=20,max=2000"`
	Description       string  `json:"description" validate:"required,min=20,max=7000"`
	Category          int64   `json:"category" validate:"required"`
	Lat               float64 `json:"lat"`
	Lon               float64 `json:"lon"`
	Paid              bool    `json:"paid"`
	ParticipantLimit  int     `json:"participantLimit" validate:"min=0"`
	RequestModeration *bool   `json:"requestModeration"`
	EventDate         string  `json:"eventDate" validate:"required"`
}

type updateEventRequest struct {
	Title             *string  `json:"title"`
	Annotation        *string  `json:"annotation"`
	Description       *string  `json:"description"`
	Category          *int64   `json:"category"`
	Lat               *float64 `json:"lat"`
	Lon               *float64 `json:"lon"`
	Paid              *bool    `json:"paid"`
	ParticipantLimit  *int     `json:"participantLimit"`
	RequestModeration *bool    `json:"requestModeration"`
	EventDate         *string  `json:"eventDate"`
	StateAction       string   `json:"stateAction"`
}

func (req updateEventRequest) toPatch() (service.EventPatch, error) {
	patch := service.EventPatch{
		Title:             req.Title,
		Annotation:        req.Annotation,
		Description:       req.Description,
		CategoryID:        req.Category,
		Lat:               req.Lat,
		Lon:               req.Lon,
		Paid:              req.Paid,
		ParticipantLimit:  req.ParticipantLimit,
		RequestModeration: req.RequestModeration,
		StateAction:       service.StateAction(req.StateAction),
	}
	if req.EventDate != nil {
		t, err := time.Parse(dateTimeLayout, *req.EventDate)
		if err != nil {
			return service.EventPatch{}, apperrors.Validation("invalid eventDate: %q", *req.EventDate)
		}
		patch.EventDate = &t
	}
	return patch, nil
}

func (app *application) createEventHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := urlID(r, "userId")
	if err != nil {
		app.SendAppError(w, err)
		return
	}

	var req newEventRequest
	if err := app.ReadJSON(w, r, &req, true); err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}
	eventDate, err := time.Parse(dateTimeLayout, req.EventDate)
	if err != nil {
		app.SendAppError(w, apperrors.Validation("invalid eventDate: %q", req.EventDate))
		return
	}

	event, err := app.events.Submit(r.Context(), userID, service.NewEventDraft{
		Title:             req.Title,
		Annotation:        req.Annotation,
		Description:       req.Description,
		CategoryID:        req.Category,
		Lat:               req.Lat,
		Lon:               req.Lon,
		Paid:              req.Paid,
		ParticipantLimit:  req.ParticipantLimit,
		RequestModeration: req.RequestModeration,
		EventDate:         eventDate,
	})
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusCreated, event, "event")
}

func (app *application) userEventsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := urlID(r, "userId")
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	from, err := queryInt(r, "from", 0)
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	size, err := queryInt(r, "size", 10)
	if err != nil {
		app.SendAppError(w, err)
		return
	}

	events, err := app.events.UserEvents(r.Context(), userID, from, size)
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, events, "events")
}

func (app *application) userEventHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := urlID(r, "userId")
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	eventID, err := urlID(r, "eventId")
	if err != nil {
		app.SendAppError(w, err)
		return
	}

	event, err := app.events.UserEvent(r.Context(), userID, eventID)
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, event, "event")
}

func (app *application) updateUserEventHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := urlID(r, "userId")
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	eventID, err := urlID(r, "eventId")
	if err != nil {
		app.SendAppError(w, err)
		return
	}

	var req updateEventRequest
	if err := app.ReadJSON(w, r, &req, false); err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		app.SendAppError(w, err)
		return
	}

	event, err := app.events.UpdateUserEvent(r.Context(), userID, eventID, patch)
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, event, "event")
}

func (app *application) updateAdminEventHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlID(r, "eventId")
	if err != nil {
		app.SendAppError(w, err)
		return
	}

	var req updateEventRequest
	if err := app.ReadJSON(w, r, &req, false); err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}
	patch, err := req.toPatch()
	if err != nil {
		app.SendAppError(w, err)
		return
	}

	event, err := app.events.UpdateAdminEvent(r.Context(), eventID, patch)
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, event, "event")
}

func (app *application) adminSearchHandler(w http.ResponseWriter, r *http.Request) {
	q := service.AdminQuery{}
	var err error

	if q.Users, err = queryInt64s(r, "users"); err != nil {
		app.SendAppError(w, err)
		return
	}
	if q.Categories, err = queryInt64s(r, "categories"); err != nil {
		app.SendAppError(w, err)
		return
	}
	for _, raw := range r.URL.Query()["states"] {
		state := models.EventState(raw)
		if !state.Valid() {
			app.SendAppError(w, apperrors.Validation("invalid state: %q", raw))
			return
		}
		q.States = append(q.States, state)
	}
	if q.RangeStart, err = queryTime(r, "rangeStart"); err != nil {
		app.SendAppError(w, err)
		return
	}
	if q.RangeEnd, err = queryTime(r, "rangeEnd"); err != nil {
		app.SendAppError(w, err)
		return
	}
	if q.From, err = queryInt(r, "from", 0); err != nil {
		app.SendAppError(w, err)
		return
	}
	if q.Size, err = queryInt(r, "size", 10); err != nil {
		app.SendAppError(w, err)
		return
	}

	events, err := app.events.AdminSearch(r.Context(), q)
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, events, "events")
}

func (app *application) publicSearchHandler(w http.ResponseWriter, r *http.Request) {
	q := service.PublicQuery{
		Text: r.URL.Query().Get("text"),
		Sort: service.SortByDate,
	}
	var err error

	if q.Categories, err = queryInt64s(r, "categories"); err != nil {
		app.SendAppError(w, err)
		return
	}
	if q.Paid, err = queryBool(r, "paid"); err != nil {
		app.SendAppError(w, err)
		return
	}
	if q.RangeStart, err = queryTime(r, "rangeStart"); err != nil {
		app.SendAppError(w, err)
		return
	}
	if q.RangeEnd, err = queryTime(r, "rangeEnd"); err != nil {
		app.SendAppError(w, err)
		return
	}
	if available, err := queryBool(r, "onlyAvailable"); err != nil {
		app.SendAppError(w, err)
		return
	} else if available != nil {
		q.OnlyAvailable = *available
	}
	if raw := r.URL.Query().Get("sort"); raw != "" {
		switch service.SortKey(raw) {
		case service.SortByDate, service.SortByViews:
			q.Sort = service.SortKey(raw)
		default:
			app.SendAppError(w, apperrors.Validation("invalid sort: %q", raw))
			return
		}
	}
	if q.From, err = queryInt(r, "from", 0); err != nil {
		app.SendAppError(w, err)
		return
	}
	if q.Size, err = queryInt(r, "size", 10); err != nil {
		app.SendAppError(w, err)
		return
	}

	events, err := app.events.PublicSearch(r.Context(), q)
	if err != nil {
		app.SendAppError(w, err)
		return
	}

	app.recordHit(r)
	app.SendSuccessJSON(w, http.StatusOK, events, "events")
}

func (app *application) publicEventHandler(w http.ResponseWriter, r *http.Request) {
	eventID, err := urlID(r, "eventId")
	if err != nil {
		app.SendAppError(w, err)
		return
	}

	event, err := app.events.PublicEvent(r.Context(), eventID)
	if err != nil {
		app.SendAppError(w, err)
		return
	}

	app.recordHit(r)
	app.SendSuccessJSON(w, http.StatusOK, event, "event")
}

// recordHit reports the page view to the stats service. Hits are best-effort;
// a stats outage never fails the read that triggered it.
func (app *application) recordHit(r *http.Request) {
	if err := app.stats.RecordHit(r.Context(), r.URL.Path, clientIP(r), app.clock.Now()); err != nil {
		log.Printf("failed to record hit for %s: %v", r.URL.Path, err)
	}
}
