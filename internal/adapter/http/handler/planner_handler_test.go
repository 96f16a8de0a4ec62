package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/iho/budgetplanner/internal/adapter/http/dto"
	"github.com/iho/budgetplanner/internal/adapter/repository/memory"
	"github.com/iho/budgetplanner/internal/domain"
	"github.com/iho/budgetplanner/internal/usecase"
	"github.com/iho/budgetplanner/internal/usecase/mocks"
)

type publisherStub struct {
	updates []domain.ActivityUpdate
	err     error
}

func (p *publisherStub) Publish(ctx context.Context, update domain.ActivityUpdate) error {
	if p.err != nil {
		return p.err
	}
	p.updates = append(p.updates, update)
	return nil
}

func seedWorkspace(t *testing.T) *usecase.Registry {
	registry, _ := seedWorkspaceWithOutbox(t)
	return registry
}

func seedWorkspaceWithOutbox(t *testing.T) (*usecase.Registry, *mocks.RecordingOutbox) {
	t.Helper()

	repo := memory.NewBudgetRepository()
	err := repo.Import(context.Background(), &domain.BudgetState{
		WorkspaceID: "ws-1",
		Version:     1,
		Categories: []domain.Category{
			{ID: "rent", Name: "Rent", GroupID: "bills", GroupName: "Bills"},
			{ID: "fun", Name: "Fun", GroupID: "wants", GroupName: "Wants", GroupOrder: 1, RolloverEnabled: true},
		},
		Months: []domain.MonthLedger{{
			Month:  domain.MustParseMonth("2024-06"),
			Income: 500000,
			Figures: []domain.CategoryMonthFigures{
				{CategoryID: "rent", Budgeted: 150000},
				{CategoryID: "fun", Budgeted: 5000, RolloverEnabled: true},
			},
		}},
	})
	if err != nil {
		t.Fatalf("failed to seed workspace: %v", err)
	}

	outbox := mocks.NewRecordingOutbox()
	return usecase.NewRegistry(repo, outbox, mocks.NewSequenceIDGenerator("cmd"), nil, nil, zerolog.Nop()), outbox
}

func plannerRouter(h *PlannerHandler) http.Handler {
	r := chi.NewRouter()
	r.Route("/workspaces/{workspaceID}", func(r chi.Router) {
		r.Get("/months/{month}", h.GetMonth)
		r.Post("/months/{month}", h.OpenMonth)
		r.Put("/months/{month}/categories/{categoryID}/budgeted", h.SetBudgeted)
		r.Post("/months/{month}/categories/{categoryID}/rollover", h.ToggleRollover)
		r.Post("/months/{month}/categories/{categoryID}/hide", h.HideCategory)
		r.Post("/months/{month}/categories/{categoryID}/unhide", h.UnhideCategory)
		r.Post("/months/{month}/distribute", h.Distribute)
		r.Post("/months/{month}/activity", h.RecordActivity)
		r.Post("/undo", h.Undo)
		r.Post("/redo", h.Redo)
		r.Get("/history", h.GetHistory)
		r.Get("/pending", h.ListPending)
		r.Post("/pending/{commandID}/confirm", h.ConfirmPending)
		r.Delete("/pending/{commandID}", h.DiscardPending)
		r.Get("/failures", h.ListFailures)
		r.Delete("/failures", h.ClearFailures)
	})
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeMonth(t *testing.T, rec *httptest.ResponseRecorder) dto.MonthResponse {
	t.Helper()

	var resp dto.MonthResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode month: %v", err)
	}
	return resp
}

func TestPlannerHandler_GetMonth(t *testing.T) {
	router := plannerRouter(NewPlannerHandler(seedWorkspace(t), nil))

	rec := do(t, router, http.MethodGet, "/workspaces/ws-1/months/2024-06", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeMonth(t, rec)
	if resp.ReadyToAssign != "3450.00" {
		t.Fatalf("expected ready to assign 3450.00, got %s", resp.ReadyToAssign)
	}
	if len(resp.Categories) != 2 || resp.Categories[0].ID != "rent" {
		t.Fatalf("expected rent first among visible categories, got %+v", resp.Categories)
	}
	if resp.CanUndo {
		t.Fatalf("expected nothing to undo on a fresh workspace")
	}
}

func TestPlannerHandler_GetMonth_Errors(t *testing.T) {
	router := plannerRouter(NewPlannerHandler(seedWorkspace(t), nil))

	tests := []struct {
		name     string
		path     string
		expected int
	}{
		{"invalid month", "/workspaces/ws-1/months/june", http.StatusBadRequest},
		{"unknown month", "/workspaces/ws-1/months/2024-07", http.StatusNotFound},
		{"unknown workspace", "/workspaces/ws-404/months/2024-06", http.StatusNotFound},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodGet, tt.path, nil)
			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d: %s", tt.expected, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestPlannerHandler_SetBudgetedAndUndo(t *testing.T) {
	router := plannerRouter(NewPlannerHandler(seedWorkspace(t), nil))

	rec := do(t, router, http.MethodPut, "/workspaces/ws-1/months/2024-06/categories/rent/budgeted",
		dto.SetBudgetedRequest{Amount: "1600"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeMonth(t, rec)
	if resp.Categories[0].Budgeted != "1600.00" || resp.ReadyToAssign != "3400.00" {
		t.Fatalf("unexpected figures after set: %+v", resp)
	}
	if !resp.CanUndo || resp.LastActionLabel == "" {
		t.Fatalf("expected an undoable action, got %+v", resp)
	}

	rec = do(t, router, http.MethodPost, "/workspaces/ws-1/undo", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp = decodeMonth(t, rec)
	if resp.Categories[0].Budgeted != "1500.00" || !resp.CanRedo {
		t.Fatalf("expected undo to restore 1500.00, got %+v", resp)
	}

	rec = do(t, router, http.MethodPost, "/workspaces/ws-1/redo", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp = decodeMonth(t, rec); resp.Categories[0].Budgeted != "1600.00" {
		t.Fatalf("expected redo to restore 1600.00, got %s", resp.Categories[0].Budgeted)
	}

	rec = do(t, router, http.MethodGet, "/workspaces/ws-1/history", nil)
	var history dto.HistoryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &history); err != nil {
		t.Fatalf("failed to decode history: %v", err)
	}
	if len(history.Undo) != 1 || len(history.Redo) != 0 {
		t.Fatalf("expected one undoable command, got %+v", history)
	}
}

func TestPlannerHandler_SetBudgeted_Invalid(t *testing.T) {
	router := plannerRouter(NewPlannerHandler(seedWorkspace(t), nil))
	path := "/workspaces/ws-1/months/2024-06/categories/rent/budgeted"

	tests := []struct {
		name     string
		path     string
		body     any
		expected int
	}{
		{"malformed amount", path, dto.SetBudgetedRequest{Amount: "12.345"}, http.StatusBadRequest},
		{"negative amount", path, dto.SetBudgetedRequest{Amount: "-5"}, http.StatusUnprocessableEntity},
		{"unknown category", "/workspaces/ws-1/months/2024-06/categories/car/budgeted", dto.SetBudgetedRequest{Amount: "5"}, http.StatusUnprocessableEntity},
		{"bad body", path, "not an object", http.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, router, http.MethodPut, tt.path, tt.body)
			if rec.Code != tt.expected {
				t.Fatalf("expected %d, got %d: %s", tt.expected, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestPlannerHandler_HideAndUnhide(t *testing.T) {
	router := plannerRouter(NewPlannerHandler(seedWorkspace(t), nil))

	rec := do(t, router, http.MethodPost, "/workspaces/ws-1/months/2024-06/categories/fun/hide", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeMonth(t, rec)
	if len(resp.Categories) != 1 || len(resp.Hidden) != 1 || resp.Hidden[0].ID != "fun" {
		t.Fatalf("expected fun to be hidden, got %+v", resp)
	}

	rec = do(t, router, http.MethodPost, "/workspaces/ws-1/months/2024-06/categories/fun/hide", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected hiding twice to be rejected, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodPost, "/workspaces/ws-1/months/2024-06/categories/fun/unhide", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp = decodeMonth(t, rec); len(resp.Hidden) != 0 {
		t.Fatalf("expected no hidden categories, got %+v", resp.Hidden)
	}
}

func TestPlannerHandler_ToggleRollover(t *testing.T) {
	router := plannerRouter(NewPlannerHandler(seedWorkspace(t), nil))

	rec := do(t, router, http.MethodPost, "/workspaces/ws-1/months/2024-06/categories/rent/rollover", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if resp := decodeMonth(t, rec); !resp.Categories[0].CarryIn {
		t.Fatalf("expected rent to carry its balance in, got %+v", resp.Categories[0])
	}
}

func TestPlannerHandler_OpenMonthAndDistribute(t *testing.T) {
	router := plannerRouter(NewPlannerHandler(seedWorkspace(t), nil))

	rec := do(t, router, http.MethodPost, "/workspaces/ws-1/months/2024-07", nil)
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, router, http.MethodPost, "/workspaces/ws-1/months/2024-07", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected reopening to conflict, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodPost, "/workspaces/ws-1/months/2024-07/distribute",
		dto.DistributeRequest{Strategy: string(domain.StrategyCopyPrevious)})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeMonth(t, rec)
	if resp.Categories[0].Budgeted != "1500.00" || resp.Categories[1].Budgeted != "50.00" {
		t.Fatalf("expected June budgets copied, got %+v", resp.Categories)
	}

	rec = do(t, router, http.MethodPost, "/workspaces/ws-1/months/2024-07/distribute",
		dto.DistributeRequest{Strategy: "by_vibes"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected unknown strategy to be rejected, got %d", rec.Code)
	}
}

func TestPlannerHandler_UndoWithEmptyHistory(t *testing.T) {
	router := plannerRouter(NewPlannerHandler(seedWorkspace(t), nil))

	rec := do(t, router, http.MethodPost, "/workspaces/ws-1/undo", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodPost, "/workspaces/ws-1/redo", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestPlannerHandler_RedoWithEmptyHistoryReportsFlags(t *testing.T) {
	router := plannerRouter(NewPlannerHandler(seedWorkspace(t), nil))

	rec := do(t, router, http.MethodPut, "/workspaces/ws-1/months/2024-06/categories/rent/budgeted",
		dto.SetBudgetedRequest{Amount: "1600"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, router, http.MethodPost, "/workspaces/ws-1/redo", nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}

	var resp dto.HistoryUnavailableResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.CanUndo || resp.CanRedo {
		t.Fatalf("expected can_undo without can_redo, got %+v", resp)
	}
	if resp.LastActionLabel == "" || resp.Error != "failed to redo" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestPlannerHandler_RecordActivity_Direct(t *testing.T) {
	router := plannerRouter(NewPlannerHandler(seedWorkspace(t), nil))

	rec := do(t, router, http.MethodPost, "/workspaces/ws-1/months/2024-06/activity",
		dto.ActivityRequest{Kind: string(domain.ActivityKindCategory), CategoryID: "fun", Amount: "20"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	resp := decodeMonth(t, rec)
	if resp.Categories[1].Activity != "20.00" || resp.Categories[1].Available != "30.00" {
		t.Fatalf("expected activity to reduce fun to 30.00, got %+v", resp.Categories[1])
	}
	if resp.CanUndo {
		t.Fatalf("expected activity updates to stay out of history")
	}
}

func TestPlannerHandler_RecordActivity_Published(t *testing.T) {
	publisher := &publisherStub{}
	router := plannerRouter(NewPlannerHandler(seedWorkspace(t), publisher))

	rec := do(t, router, http.MethodPost, "/workspaces/ws-1/months/2024-06/activity",
		dto.ActivityRequest{Kind: string(domain.ActivityKindIncome), Amount: "6000"})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	if len(publisher.updates) != 1 || publisher.updates[0].Amount != 600000 || publisher.updates[0].WorkspaceID != "ws-1" {
		t.Fatalf("expected one published income update, got %+v", publisher.updates)
	}

	publisher.err = errors.New("feed down")
	rec = do(t, router, http.MethodPost, "/workspaces/ws-1/months/2024-06/activity",
		dto.ActivityRequest{Kind: string(domain.ActivityKindIncome), Amount: "6000"})
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 when publishing fails, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodPost, "/workspaces/ws-1/months/2024-06/activity",
		dto.ActivityRequest{Kind: "refund", Amount: "1"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected unknown kind to be rejected, got %d", rec.Code)
	}
}

func TestPlannerHandler_PendingAndFailures(t *testing.T) {
	registry, outbox := seedWorkspaceWithOutbox(t)
	router := plannerRouter(NewPlannerHandler(registry, nil))

	rec := do(t, router, http.MethodGet, "/workspaces/ws-1/pending", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "[]\n" {
		t.Fatalf("expected empty pending list, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = do(t, router, http.MethodPost, "/workspaces/ws-1/pending/cmd-9/confirm", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown pending command, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodDelete, "/workspaces/ws-1/pending/cmd-9", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown pending command, got %d", rec.Code)
	}

	rec = do(t, router, http.MethodPut, "/workspaces/ws-1/months/2024-06/categories/rent/budgeted",
		dto.SetBudgetedRequest{Amount: "1600"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	engine, err := registry.Get(context.Background(), "ws-1")
	if err != nil {
		t.Fatalf("failed to get engine: %v", err)
	}
	patches := outbox.Patches()
	if len(patches) != 1 {
		t.Fatalf("expected one queued patch, got %d", len(patches))
	}
	engine.RevertFailed(patches[0], domain.ErrPatchRejected)

	rec = do(t, router, http.MethodGet, "/workspaces/ws-1/failures", nil)
	var failures []dto.SyncFailureResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &failures); err != nil {
		t.Fatalf("failed to decode failures: %v", err)
	}
	if len(failures) != 1 {
		t.Fatalf("expected one failure, got %+v", failures)
	}

	rec = do(t, router, http.MethodDelete, "/workspaces/ws-1/failures", nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
	if len(engine.Failures()) != 0 {
		t.Fatalf("expected failures to be cleared")
	}
}
