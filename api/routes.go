package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func (app *application) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(app.requestID)

	r.Route("/events", func(r chi.Router) {
		r.Get("/", app.publicSearchHandler)
		r.Get("/{eventId}", app.publicEventHandler)
	})

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", app.listCategoriesHandler)
		r.Get("/{catId}", app.getCategoryHandler)
	})

	r.Get("/compilations/{compId}", app.getCompilationHandler)

	r.Route("/users/{userId}", func(r chi.Router) {
		r.Route("/events", func(r chi.Router) {
			r.Get("/", app.userEventsHandler)
			r.Post("/", app.createEventHandler)
			r.Get("/{eventId}", app.userEventHandler)
			r.Patch("/{eventId}", app.updateUserEventHandler)
			r.Get("/{eventId}/requests", app.eventRequestsHandler)
			r.Patch("/{eventId}/requests", app.updateRequestStatusesHandler)
		})
		r.Route("/requests", func(r chi.Router) {
			r.Get("/", app.userRequestsHandler)
			r.Post("/", app.createRequestHandler)
			r.Patch("/{requestId}/cancel", app.cancelRequestHandler)
		})
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/events", app.adminSearchHandler)
		r.Patch("/events/{eventId}", app.updateAdminEventHandler)
		r.Get("/users", app.listUsersHandler)
		r.Post("/users", app.createUserHandler)
		r.Delete("/users/{userId}", app.deleteUserHandler)
		r.Post("/categories", app.createCategoryHandler)
		r.Patch("/categories/{catId}", app.updateCategoryHandler)
		r.Delete("/categories/{catId}", app.deleteCategoryHandler)
		r.Post("/compilations", app.createCompilationHandler)
	})

	return r
}
