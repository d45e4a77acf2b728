package main

import (
	"events-platform/apperrors"
	"events-platform/service"
	"net/http"
)

type statusUpdateRequest struct {
	RequestIDs []int64 `json:"requestIds" validate:"required,min=1"`
	Status     string  `json:"status" validate:"required"`
}

func (app *application) createRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := urlID(r, "userId")
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	eventID, err := queryInt(r, "eventId", 0)
	if err != nil || eventID <= 0 {
		app.SendAppError(w, apperrors.Validation("eventId query parameter is required"))
		return
	}

	request, err := app.requests.SubmitRequest(r.Context(), userID, int64(eventID))
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusCreated, request, "request")
}

func (app *application) userRequestsHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := urlID(r, "userId")
	if err != nil {
		app.SendAppError(w, err)
		return
	}

	requests, err := app.requests.UserRequests(r.Context(), userID)
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, requests, "requests")
}

func (app *application) cancelRequestHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := urlID(r, "userId")
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	requestID, err := urlID(r, "requestId")
	if err != nil {
		app.SendAppError(w, err)
		return
	}

	request, err := app.requests.CancelOwnRequest(r.Context(), userID, requestID)
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, request, "request")
}

func (app *application) eventRequestsHandler(w http.ResponseWriter, r *http.Request) {
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

	requests, err := app.requests.EventRequests(r.Context(), userID, eventID)
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, requests, "requests")
}

func (app *application) updateRequestStatusesHandler(w http.ResponseWriter, r *http.Request) {
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

	var req statusUpdateRequest
	if err := app.ReadJSON(w, r, &req, true); err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	result, err := app.requests.UpdateRequestStatuses(r.Context(), userID, eventID,
		req.RequestIDs, service.Decision(req.Status))
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, result)
}
