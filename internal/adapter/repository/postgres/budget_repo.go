package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/budgetplanner/internal/domain"
	"github.com/iho/budgetplanner/internal/infrastructure/postgres/generated"
)

// BudgetRepository implements usecase.BudgetRepository on PostgreSQL. Every
// applied patch bumps the workspace version and is recorded in
// applied_patches, so a re-sent patch returns the version it produced.
type BudgetRepository struct {
	queries *generated.Queries
	tx      *TxManager
	retrier *Retrier
}

// NewBudgetRepository creates a new BudgetRepository.
func NewBudgetRepository(pool pgxPool, retrier *Retrier) *BudgetRepository {
	return &BudgetRepository{
		queries: generated.New(pool),
		tx:      NewTxManager(pool),
		retrier: retrier,
	}
}

// Load reads the authoritative state of a workspace.
func (r *BudgetRepository) Load(ctx context.Context, workspaceID string) (*domain.BudgetState, error) {
	ws, err := r.queries.GetWorkspace(ctx, workspaceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrWorkspaceNotFound, workspaceID)
		}
		return nil, err
	}

	categories, err := r.queries.ListCategories(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	months, err := r.queries.ListBudgetMonths(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	figures, err := r.queries.ListCategoryMonthFigures(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	state := &domain.BudgetState{
		WorkspaceID:          ws.ID,
		Version:              ws.Version,
		OpeningReadyToAssign: domain.NewMoney(ws.OpeningReadyToAssignCents),
		Categories:           make([]domain.Category, 0, len(categories)),
		Months:               make([]domain.MonthLedger, 0, len(months)),
	}

	for _, row := range categories {
		state.Categories = append(state.Categories, domain.Category{
			ID:              row.ID,
			Name:            row.Name,
			GroupID:         row.GroupID,
			GroupName:       row.GroupName,
			Color:           row.Color,
			Icon:            row.Icon,
			GroupOrder:      int(row.GroupOrder),
			SortOrder:       int(row.SortOrder),
			RolloverEnabled: row.RolloverEnabled,
			Hidden:          row.Hidden,
		})
	}

	index := make(map[string]int, len(months))
	for _, row := range months {
		m, err := domain.ParseMonth(row.Month)
		if err != nil {
			return nil, fmt.Errorf("stored month %q: %w", row.Month, err)
		}
		index[row.Month] = len(state.Months)
		state.Months = append(state.Months, domain.MonthLedger{
			Month:  m,
			Income: domain.NewMoney(row.IncomeCents),
		})
	}

	for _, row := range figures {
		i, ok := index[row.Month]
		if !ok {
			return nil, fmt.Errorf("%w: figures stored for %s", domain.ErrMonthNotFound, row.Month)
		}
		state.Months[i].Figures = append(state.Months[i].Figures, domain.CategoryMonthFigures{
			CategoryID:      row.CategoryID,
			Budgeted:        domain.NewMoney(row.BudgetedCents),
			Activity:        domain.NewMoney(row.ActivityCents),
			PrevAvailable:   domain.NewMoney(row.PrevAvailableCents),
			RolloverEnabled: row.CarryIn,
		})
	}

	return state, nil
}

// ApplyPatch writes a patch in one transaction and returns the new version.
func (r *BudgetRepository) ApplyPatch(ctx context.Context, patch *domain.Patch) (int64, error) {
	var version int64

	err := r.retrier.Retry(ctx, func() error {
		return r.tx.WithTx(ctx, func(q *generated.Queries) error {
			v, err := applyPatch(ctx, q, patch)
			if err != nil {
				return err
			}
			version = v
			return nil
		})
	})
	if err != nil {
		if isConstraintViolation(err) {
			return 0, fmt.Errorf("%w: %v", domain.ErrPatchRejected, err)
		}
		return 0, err
	}

	return version, nil
}

func applyPatch(ctx context.Context, q *generated.Queries, patch *domain.Patch) (int64, error) {
	ws, err := q.GetWorkspaceForUpdate(ctx, patch.WorkspaceID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%w: %s", domain.ErrWorkspaceNotFound, patch.WorkspaceID)
		}
		return 0, err
	}

	// The workspace row lock serializes resends of the same patch.
	applied, err := q.GetAppliedPatchVersion(ctx, patch.ID)
	if err == nil {
		return applied, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, err
	}

	if ws.Version != patch.BaseVersion {
		return 0, fmt.Errorf("%w: workspace %s is at version %d, patch based on %d",
			domain.ErrConflictOnReconcile, patch.WorkspaceID, ws.Version, patch.BaseVersion)
	}

	for _, f := range patch.Fields {
		n, err := writeField(ctx, q, patch.WorkspaceID, f)
		if err != nil {
			return 0, err
		}
		if n == 0 {
			return 0, fmt.Errorf("%w: no %s row for category %s in %s",
				domain.ErrPatchRejected, f.Field, f.CategoryID, f.Month)
		}
	}

	version, err := q.BumpWorkspaceVersion(ctx, patch.WorkspaceID)
	if err != nil {
		return 0, err
	}

	err = q.CreateAppliedPatch(ctx, generated.CreateAppliedPatchParams{
		ID:            patch.ID,
		WorkspaceID:   patch.WorkspaceID,
		CommandID:     patch.CommandID,
		Op:            string(patch.Op),
		ResultVersion: version,
	})
	if err != nil {
		return 0, err
	}

	return version, nil
}

func writeField(ctx context.Context, q *generated.Queries, workspaceID string, f domain.PatchField) (int64, error) {
	switch f.Field {
	case domain.FieldBudgeted:
		return q.UpdateBudgeted(ctx, generated.UpdateBudgetedParams{
			WorkspaceID:   workspaceID,
			Month:         f.Month.String(),
			CategoryID:    f.CategoryID,
			BudgetedCents: f.Value.Cents.Cents(),
		})
	case domain.FieldCarryIn:
		return q.UpdateCarryIn(ctx, generated.UpdateCarryInParams{
			WorkspaceID: workspaceID,
			Month:       f.Month.String(),
			CategoryID:  f.CategoryID,
			CarryIn:     f.Value.Flag,
		})
	case domain.FieldRollover:
		return q.UpdateCategoryRollover(ctx, generated.UpdateCategoryRolloverParams{
			WorkspaceID:     workspaceID,
			ID:              f.CategoryID,
			RolloverEnabled: f.Value.Flag,
		})
	case domain.FieldHidden:
		return q.UpdateCategoryHidden(ctx, generated.UpdateCategoryHiddenParams{
			WorkspaceID: workspaceID,
			ID:          f.CategoryID,
			Hidden:      f.Value.Flag,
		})
	default:
		return 0, fmt.Errorf("%w: unknown field %q", domain.ErrPatchRejected, f.Field)
	}
}

// CreateMonth persists a newly opened month with its figures. The workspace
// version is left alone because opening a month changes no existing row.
func (r *BudgetRepository) CreateMonth(ctx context.Context, workspaceID string, ledger *domain.MonthLedger) error {
	return r.tx.WithTx(ctx, func(q *generated.Queries) error {
		return createMonth(ctx, q, workspaceID, ledger)
	})
}

func createMonth(ctx context.Context, q *generated.Queries, workspaceID string, ledger *domain.MonthLedger) error {
	n, err := q.CreateBudgetMonth(ctx, generated.CreateBudgetMonthParams{
		WorkspaceID: workspaceID,
		Month:       ledger.Month.String(),
		IncomeCents: ledger.Income.Cents(),
	})
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", domain.ErrMonthExists, ledger.Month)
	}

	for _, f := range ledger.Figures {
		err := q.CreateCategoryMonthFigure(ctx, generated.CreateCategoryMonthFigureParams{
			WorkspaceID:        workspaceID,
			Month:              ledger.Month.String(),
			CategoryID:         f.CategoryID,
			BudgetedCents:      f.Budgeted.Cents(),
			ActivityCents:      f.Activity.Cents(),
			PrevAvailableCents: f.PrevAvailable.Cents(),
			CarryIn:            f.RolloverEnabled,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// Import stores a complete workspace. It fails with domain.ErrWorkspaceExists
// when the workspace is already present.
func (r *BudgetRepository) Import(ctx context.Context, state *domain.BudgetState) error {
	err := r.tx.WithTx(ctx, func(q *generated.Queries) error {
		err := q.CreateWorkspace(ctx, generated.CreateWorkspaceParams{
			ID:                        state.WorkspaceID,
			Version:                   state.Version,
			OpeningReadyToAssignCents: state.OpeningReadyToAssign.Cents(),
		})
		if err != nil {
			if pgErrorCode(err) == pgErrUniqueViolation {
				return fmt.Errorf("%w: %s", domain.ErrWorkspaceExists, state.WorkspaceID)
			}
			return err
		}

		for _, c := range state.Categories {
			err := q.CreateCategory(ctx, generated.CreateCategoryParams{
				WorkspaceID:     state.WorkspaceID,
				ID:              c.ID,
				Name:            c.Name,
				GroupID:         c.GroupID,
				GroupName:       c.GroupName,
				Color:           c.Color,
				Icon:            c.Icon,
				GroupOrder:      int32(c.GroupOrder),
				SortOrder:       int32(c.SortOrder),
				RolloverEnabled: c.RolloverEnabled,
				Hidden:          c.Hidden,
			})
			if err != nil {
				return err
			}
		}

		for i := range state.Months {
			if err := createMonth(ctx, q, state.WorkspaceID, &state.Months[i]); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to import workspace: %w", err)
	}

	return nil
}
