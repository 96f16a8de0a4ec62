package handler

import (
	"errors"
	"net/http"

	"github.com/iho/budgetplanner/internal/adapter/http/dto"
	"github.com/iho/budgetplanner/internal/usecase"
)

// LedgerHandler handles workspace-wide ledger checks.
type LedgerHandler struct {
	engines Engines
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(engines Engines) *LedgerHandler {
	return &LedgerHandler{engines: engines}
}

// CheckConsistency checks that every derived figure matches its inputs.
func (h *LedgerHandler) CheckConsistency(w http.ResponseWriter, r *http.Request) {
	engine, err := h.engines.Get(r.Context(), workspaceIDParam(r))
	if err != nil {
		writeDomainError(w, "failed to load workspace", err)
		return
	}

	consistent, err := engine.CheckConsistency(r.Context())
	if err != nil {
		if errors.Is(err, usecase.ErrInconsistentLedger) {
			writeJSON(w, http.StatusConflict, dto.ConsistencyResponse{
				Status:     "inconsistent",
				Consistent: false,
				Message:    err.Error(),
			})
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to check consistency", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ConsistencyResponse{
		Status:     "consistent",
		Consistent: consistent,
	})
}
