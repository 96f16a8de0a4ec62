package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/budgetplanner/internal/adapter/http/dto"
	"github.com/iho/budgetplanner/internal/domain"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	var validation *domain.ValidationError
	switch {
	case errors.As(err, &validation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrWorkspaceNotFound),
		errors.Is(err, domain.ErrMonthNotFound),
		errors.Is(err, domain.ErrCategoryNotFound),
		errors.Is(err, domain.ErrCommandNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNothingToUndo),
		errors.Is(err, domain.ErrNothingToRedo),
		errors.Is(err, domain.ErrMonthExists),
		errors.Is(err, domain.ErrConflictOnReconcile):
		return http.StatusConflict
	case errors.Is(err, domain.ErrWorkspaceRequired),
		errors.Is(err, domain.ErrInvalidMonth),
		errors.Is(err, domain.ErrInvalidMoney),
		errors.Is(err, domain.ErrTooManyDecimals),
		errors.Is(err, domain.ErrUnknownCommand):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// writeDomainError writes err with the status it maps to.
func writeDomainError(w http.ResponseWriter, message string, err error) {
	writeError(w, mapDomainError(err), message, err.Error())
}

// monthParam parses the {month} URL parameter.
func monthParam(r *http.Request) (domain.Month, error) {
	return domain.ParseMonth(chi.URLParam(r, "month"))
}

// workspaceIDParam returns the {workspaceID} URL parameter.
func workspaceIDParam(r *http.Request) string {
	return chi.URLParam(r, "workspaceID")
}
