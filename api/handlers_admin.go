package main

import (
	"errors"
	"events-platform/apperrors"
	"events-platform/data/models"
	"events-platform/data/repository"
	"net/http"
)

func (app *application) createUserHandler(w http.ResponseWriter, r *http.Request) {
	var user models.User
	if err := app.ReadJSON(w, r, &user, true); err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	id, err := app.Repo.Create(user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			app.SendAppError(w, apperrors.Conflict("user with email %s already exists", user.Email))
			return
		}
		app.SendAppError(w, err)
		return
	}
	user.ID = id
	app.SendSuccessJSON(w, http.StatusCreated, user, "user")
}

func (app *application) deleteUserHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := urlID(r, "userId")
	if err != nil {
		app.SendAppError(w, err)
		return
	}

	user, err := app.Repo.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			app.SendAppError(w, apperrors.NotFound("user with id=%d not found", userID))
			return
		}
		app.SendAppError(w, err)
		return
	}
	if err := app.Repo.Delete(user); err != nil {
		app.SendAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) listUsersHandler(w http.ResponseWriter, r *http.Request) {
	ids, err := queryInt64s(r, "ids")
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
	if from < 0 || size <= 0 {
		app.SendAppError(w, apperrors.Validation("pagination parameters must be positive"))
		return
	}

	users, err := app.Repo.Users(r.Context(), ids, size, from)
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, users, "users")
}

func (app *application) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var category models.Category
	if err := app.ReadJSON(w, r, &category, true); err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	id, err := app.Repo.Create(category)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			app.SendAppError(w, apperrors.Conflict("category %q already exists", category.Name))
			return
		}
		app.SendAppError(w, err)
		return
	}
	category.ID = id
	app.SendSuccessJSON(w, http.StatusCreated, category, "category")
}

func (app *application) updateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	catID, err := urlID(r, "catId")
	if err != nil {
		app.SendAppError(w, err)
		return
	}

	var category models.Category
	if err := app.ReadJSON(w, r, &category, true); err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}
	category.ID = catID

	if err := app.Repo.UpdateCategory(r.Context(), category); err != nil {
		switch {
		case errors.Is(err, repository.ErrNoRows):
			app.SendAppError(w, apperrors.NotFound("category with id=%d not found", catID))
		case errors.Is(err, repository.ErrDuplicate):
			app.SendAppError(w, apperrors.Conflict("category %q already exists", category.Name))
		default:
			app.SendAppError(w, err)
		}
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, category, "category")
}

func (app *application) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	catID, err := urlID(r, "catId")
	if err != nil {
		app.SendAppError(w, err)
		return
	}

	category, err := app.Repo.GetCategoryByID(catID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			app.SendAppError(w, apperrors.NotFound("category with id=%d not found", catID))
			return
		}
		app.SendAppError(w, err)
		return
	}
	if err := app.Repo.Delete(category); err != nil {
		app.SendAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (app *application) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
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
	if from < 0 || size <= 0 {
		app.SendAppError(w, apperrors.Validation("pagination parameters must be positive"))
		return
	}

	categories, err := app.Repo.Categories(r.Context(), size, from)
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, categories, "categories")
}

func (app *application) getCategoryHandler(w http.ResponseWriter, r *http.Request) {
	catID, err := urlID(r, "catId")
	if err != nil {
		app.SendAppError(w, err)
		return
	}

	category, err := app.Repo.GetCategoryByID(catID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			app.SendAppError(w, apperrors.NotFound("category with id=%d not found", catID))
			return
		}
		app.SendAppError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, category, "category")
}

type newCompilationRequest struct {
	Title  string  `json:"title" validate:"required,min=1,max=50"`
	Pinned bool    `json:"pinned"`
	Events []int64 `json:"events"`
}

func (app *application) createCompilationHandler(w http.ResponseWriter, r *http.Request) {
	var req newCompilationRequest
	if err := app.ReadJSON(w, r, &req, true); err != nil {
		app.SendErrorJSON(w, http.StatusBadRequest, err)
		return
	}

	compilation := models.Compilation{Title: req.Title, Pinned: req.Pinned}
	id, err := app.Repo.CreateCompilation(r.Context(), compilation, req.Events)
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	compilation.ID = id

	events, err := app.events.EventViews(r.Context(), req.Events)
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusCreated, map[string]interface{}{
		"compilation": compilation,
		"events":      events,
	})
}

func (app *application) getCompilationHandler(w http.ResponseWriter, r *http.Request) {
	compID, err := urlID(r, "compId")
	if err != nil {
		app.SendAppError(w, err)
		return
	}

	model, err := app.Repo.GetModelByID(&models.Compilation{}, compID)
	if err != nil {
		if errors.Is(err, repository.ErrNoRows) {
			app.SendAppError(w, apperrors.NotFound("compilation with id=%d not found", compID))
			return
		}
		app.SendAppError(w, err)
		return
	}
	compilation := model.(*models.Compilation)

	eventIDs, err := app.Repo.CompilationEventIDs(r.Context(), compID)
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	events, err := app.events.EventViews(r.Context(), eventIDs)
	if err != nil {
		app.SendAppError(w, err)
		return
	}
	app.SendSuccessJSON(w, http.StatusOK, map[string]interface{}{
		"compilation": compilation,
		"events":      events,
	})
}
