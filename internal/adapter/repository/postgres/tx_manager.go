package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/iho/budgetplanner/internal/infrastructure/postgres/generated"
	"github.com/iho/budgetplanner/internal/usecase"
)

// pgxPool is the part of *pgxpool.Pool the repositories use.
type pgxPool interface {
	generated.DBTX
	Begin(context.Context) (pgx.Tx, error)
}

// TxManager runs units of work in a transaction.
type TxManager struct {
	pool pgxPool
}

// NewTxManager creates a new TxManager.
func NewTxManager(pool pgxPool) *TxManager {
	return &TxManager{pool: pool}
}

// Begin starts a new transaction.
func (m *TxManager) Begin(ctx context.Context) (*Tx, error) {
	tx, err := m.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}

	return &Tx{tx: tx}, nil
}

// WithTx runs fn with queries bound to a new transaction. The transaction
// commits when fn returns nil and rolls back otherwise.
func (m *TxManager) WithTx(ctx context.Context, fn func(q *generated.Queries) error) error {
	ctx, cancel := context.WithTimeout(ctx, usecase.DefaultTransactionTimeout)
	defer cancel()

	tx, err := m.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(generated.New(tx.PgxTx())); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			return errors.Join(err, fmt.Errorf("rollback failed: %w", rbErr))
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Tx wraps a pgx transaction.
type Tx struct {
	tx pgx.Tx
}

// Commit commits the transaction.
func (t *Tx) Commit(ctx context.Context) error {
	return t.tx.Commit(ctx)
}

// Rollback rolls back the transaction.
func (t *Tx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

// PgxTx returns the underlying pgx.Tx.
func (t *Tx) PgxTx() pgx.Tx {
	return t.tx
}
