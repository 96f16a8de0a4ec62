package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/iho/budgetplanner/internal/adapter/http/dto"
	"github.com/iho/budgetplanner/internal/domain"
	"github.com/iho/budgetplanner/internal/usecase"
)

// Engines hands out the engine of a workspace.
type Engines interface {
	Get(ctx context.Context, workspaceID string) (*usecase.PlannerUseCase, error)
}

// ActivityPublisher forwards activity updates to the feed.
type ActivityPublisher interface {
	Publish(ctx context.Context, update domain.ActivityUpdate) error
}

// PlannerHandler handles budget planning requests for one workspace.
type PlannerHandler struct {
	engines   Engines
	publisher ActivityPublisher
}

// NewPlannerHandler creates a new PlannerHandler. When publisher is nil,
// activity updates are applied directly to the engine.
func NewPlannerHandler(engines Engines, publisher ActivityPublisher) *PlannerHandler {
	return &PlannerHandler{
		engines:   engines,
		publisher: publisher,
	}
}

// GetMonth returns the view of one month.
func (h *PlannerHandler) GetMonth(w http.ResponseWriter, r *http.Request) {
	engine, month, ok := h.resolve(w, r)
	if !ok {
		return
	}

	h.writeMonth(w, http.StatusOK, engine, month)
}

// OpenMonth starts a new month.
func (h *PlannerHandler) OpenMonth(w http.ResponseWriter, r *http.Request) {
	engine, month, ok := h.resolve(w, r)
	if !ok {
		return
	}

	if _, err := engine.OpenMonth(r.Context(), month); err != nil {
		writeDomainError(w, "failed to open month", err)
		return
	}

	h.writeMonth(w, http.StatusCreated, engine, month)
}

// SetBudgeted sets a category's budgeted amount.
func (h *PlannerHandler) SetBudgeted(w http.ResponseWriter, r *http.Request) {
	engine, month, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var req dto.SetBudgetedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	amount, err := req.ToMoney()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount", err.Error())
		return
	}

	if _, err := engine.SetBudgeted(r.Context(), month, chi.URLParam(r, "categoryID"), amount); err != nil {
		writeDomainError(w, "failed to set budgeted amount", err)
		return
	}

	h.writeMonth(w, http.StatusOK, engine, month)
}

// ToggleRollover flips a category's rollover flag.
func (h *PlannerHandler) ToggleRollover(w http.ResponseWriter, r *http.Request) {
	h.categoryCommand(w, r, "failed to toggle rollover", (*usecase.PlannerUseCase).ToggleRollover)
}

// HideCategory hides a category from the month view.
func (h *PlannerHandler) HideCategory(w http.ResponseWriter, r *http.Request) {
	h.categoryCommand(w, r, "failed to hide category", (*usecase.PlannerUseCase).HideCategory)
}

// UnhideCategory restores a hidden category.
func (h *PlannerHandler) UnhideCategory(w http.ResponseWriter, r *http.Request) {
	h.categoryCommand(w, r, "failed to unhide category", (*usecase.PlannerUseCase).UnhideCategory)
}

// Distribute runs a bulk distribution over the month.
func (h *PlannerHandler) Distribute(w http.ResponseWriter, r *http.Request) {
	engine, month, ok := h.resolve(w, r)
	if !ok {
		return
	}

	var req dto.DistributeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	strategy, err := req.ToStrategy()
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid strategy", err.Error())
		return
	}

	if _, err := engine.Distribute(r.Context(), month, strategy); err != nil {
		writeDomainError(w, "failed to distribute", err)
		return
	}

	h.writeMonth(w, http.StatusOK, engine, month)
}

// RecordActivity accepts an authoritative activity or income figure.
func (h *PlannerHandler) RecordActivity(w http.ResponseWriter, r *http.Request) {
	workspaceID := workspaceIDParam(r)
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err.Error())
		return
	}

	var req dto.ActivityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	update, err := req.ToUpdate(workspaceID, month)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid activity", err.Error())
		return
	}

	if h.publisher != nil {
		if err := h.publisher.Publish(r.Context(), update); err != nil {
			writeError(w, http.StatusInternalServerError, "failed to publish activity", err.Error())
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
		return
	}

	engine, err := h.engines.Get(r.Context(), workspaceID)
	if err != nil {
		writeDomainError(w, "failed to load workspace", err)
		return
	}

	if err := engine.HandleActivity(r.Context(), update); err != nil {
		writeDomainError(w, "failed to record activity", err)
		return
	}

	h.writeMonth(w, http.StatusOK, engine, month)
}

// Undo reverses the most recent command.
func (h *PlannerHandler) Undo(w http.ResponseWriter, r *http.Request) {
	h.historyCommand(w, r, "failed to undo", (*usecase.PlannerUseCase).Undo)
}

// Redo re-applies the most recently undone command.
func (h *PlannerHandler) Redo(w http.ResponseWriter, r *http.Request) {
	h.historyCommand(w, r, "failed to redo", (*usecase.PlannerUseCase).Redo)
}

// GetHistory lists the undo and redo stacks.
func (h *PlannerHandler) GetHistory(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, dto.HistoryFromDomain(engine.History()))
}

// ListPending lists commands awaiting user confirmation after a conflict.
func (h *PlannerHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, dto.CommandsFromDomain(engine.PendingCommands()))
}

// ConfirmPending re-applies a pending command on the reloaded state.
func (h *PlannerHandler) ConfirmPending(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w, r)
	if !ok {
		return
	}

	ledger, err := engine.ConfirmPending(r.Context(), chi.URLParam(r, "commandID"))
	if err != nil {
		writeDomainError(w, "failed to confirm command", err)
		return
	}

	h.writeMonth(w, http.StatusOK, engine, ledger.Month)
}

// DiscardPending drops a pending command.
func (h *PlannerHandler) DiscardPending(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w, r)
	if !ok {
		return
	}

	if err := engine.DiscardPending(chi.URLParam(r, "commandID")); err != nil {
		writeDomainError(w, "failed to discard command", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListFailures lists commands whose persistence failed.
func (h *PlannerHandler) ListFailures(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, dto.FailuresFromDomain(engine.Failures()))
}

// ClearFailures dismisses reported failures.
func (h *PlannerHandler) ClearFailures(w http.ResponseWriter, r *http.Request) {
	engine, ok := h.engine(w, r)
	if !ok {
		return
	}

	engine.ClearFailures()
	w.WriteHeader(http.StatusNoContent)
}

func (h *PlannerHandler) categoryCommand(
	w http.ResponseWriter,
	r *http.Request,
	message string,
	run func(*usecase.PlannerUseCase, context.Context, domain.Month, string) (*domain.MonthLedger, error),
) {
	engine, month, ok := h.resolve(w, r)
	if !ok {
		return
	}

	if _, err := run(engine, r.Context(), month, chi.URLParam(r, "categoryID")); err != nil {
		writeDomainError(w, message, err)
		return
	}

	h.writeMonth(w, http.StatusOK, engine, month)
}

func (h *PlannerHandler) historyCommand(
	w http.ResponseWriter,
	r *http.Request,
	message string,
	run func(*usecase.PlannerUseCase, context.Context) (*domain.MonthLedger, error),
) {
	engine, ok := h.engine(w, r)
	if !ok {
		return
	}

	ledger, err := run(engine, r.Context())
	if errors.Is(err, domain.ErrNothingToUndo) || errors.Is(err, domain.ErrNothingToRedo) {
		label, _ := engine.LastActionLabel()
		writeJSON(w, http.StatusConflict, dto.HistoryUnavailableResponse{
			Error:           message,
			Message:         err.Error(),
			CanUndo:         engine.CanUndo(),
			CanRedo:         engine.CanRedo(),
			LastActionLabel: label,
		})
		return
	}
	if err != nil {
		writeDomainError(w, message, err)
		return
	}

	h.writeMonth(w, http.StatusOK, engine, ledger.Month)
}

func (h *PlannerHandler) engine(w http.ResponseWriter, r *http.Request) (*usecase.PlannerUseCase, bool) {
	engine, err := h.engines.Get(r.Context(), workspaceIDParam(r))
	if err != nil {
		writeDomainError(w, "failed to load workspace", err)
		return nil, false
	}
	return engine, true
}

func (h *PlannerHandler) resolve(w http.ResponseWriter, r *http.Request) (*usecase.PlannerUseCase, domain.Month, bool) {
	month, err := monthParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid month", err.Error())
		return nil, domain.Month{}, false
	}

	engine, ok := h.engine(w, r)
	if !ok {
		return nil, domain.Month{}, false
	}

	return engine, month, true
}

func (h *PlannerHandler) writeMonth(w http.ResponseWriter, status int, engine *usecase.PlannerUseCase, month domain.Month) {
	projection, err := engine.Project(month)
	if err != nil {
		writeDomainError(w, "failed to project month", err)
		return
	}

	writeJSON(w, status, dto.MonthFromProjection(projection))
}
