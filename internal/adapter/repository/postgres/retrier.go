package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/iho/budgetplanner/internal/domain"
)

// PostgreSQL error codes for retryable errors.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
)

// Retrier runs an operation with exponential backoff while its error is
// retryable.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	retryable       func(error) bool
	logger          zerolog.Logger
}

// NewRetrier creates a retrier for database transactions. Only deadlocks and
// serialization failures are retried.
func NewRetrier(logger zerolog.Logger) *Retrier {
	return &Retrier{
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     1 * time.Second,
		maxElapsedTime:  10 * time.Second,
		retryable:       isRetryableError,
		logger:          logger,
	}
}

// NewSyncRetrier creates a retrier for sending patches. Every error is
// retried except conflicts, rejections and cancellation. Timeouts of a single
// attempt are retried.
func NewSyncRetrier(maxRetries int, maxElapsed time.Duration, logger zerolog.Logger) *Retrier {
	return &Retrier{
		maxRetries:      maxRetries,
		initialInterval: 100 * time.Millisecond,
		maxInterval:     5 * time.Second,
		maxElapsedTime:  maxElapsed,
		retryable:       isTransientSyncError,
		logger:          logger,
	}
}

// Retry executes an operation with exponential backoff on retryable errors.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	retryCount := 0

	return backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		// A deadline inside the operation is retried; the caller's own
		// context ending is not.
		if ctx.Err() != nil || !r.retryable(err) {
			return backoff.Permanent(err)
		}

		retryCount++
		if retryCount > r.maxRetries {
			return backoff.Permanent(err)
		}

		r.logger.Warn().
			Err(err).
			Int("retry", retryCount).
			Msg("retryable error, retrying")

		return err
	}, backoff.WithContext(b, ctx))
}

// isRetryableError checks if a PostgreSQL error should trigger a retry.
func isRetryableError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrDeadlock, pgErrSerializationFailure:
			return true
		}
	}
	return false
}

func isTransientSyncError(err error) bool {
	var verr *domain.ValidationError
	switch {
	case errors.Is(err, domain.ErrConflictOnReconcile),
		errors.Is(err, domain.ErrPatchRejected),
		errors.Is(err, context.Canceled),
		errors.As(err, &verr):
		return false
	}
	return true
}
