package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/A7medBenRomdhanO/backend/internal/engine"
	"github.com/A7medBenRomdhanO/backend/internal/httpx"
	"github.com/A7medBenRomdhanO/backend/internal/services"
)

// idParam reads a positive integer query parameter; 0 means absent/invalid.
func idParam(r *http.Request, name string) uint {
	v := r.URL.Query().Get(name)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 0
	}
	return uint(n)
}

// pageParams mirrors the list pagination used across handlers (limit + page).
func pageParams(r *http.Request) (limit, offset int) {
	limit = 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if v := r.URL.Query().Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 1 {
			offset = (n - 1) * limit
		}
	}
	return limit, offset
}

// writeServiceError maps domain errors to HTTP statuses. Anything unknown is a 500.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, services.ErrQuestionnaireNotFound),
		errors.Is(err, services.ErrRoadmapNotFound),
		errors.Is(err, services.ErrTaskNotFound):
		httpx.JSONError(w, http.StatusNotFound, "not_found", err.Error())
	case errors.Is(err, services.ErrOwnershipMismatch):
		httpx.JSONError(w, http.StatusForbidden, "forbidden", nil)
	case errors.Is(err, services.ErrConcurrentModification):
		httpx.JSONError(w, http.StatusConflict, "concurrent_modification", nil)
	case errors.Is(err, services.ErrInvalidStatus):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"status": "invalid_value"})
	case errors.Is(err, engine.ErrInvalidResponseValue),
		errors.Is(err, engine.ErrInvalidWeight):
		httpx.JSONError(w, http.StatusBadRequest, "validation_failed", map[string]string{"responses": err.Error()})
	default:
		httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
	}
}
