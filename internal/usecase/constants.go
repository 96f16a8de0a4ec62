package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	// This prevents long-running transactions from blocking tables
	DefaultTransactionTimeout = 10 * time.Second

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// MaxHistory is how many commands the undo stack keeps
	MaxHistory = 200

	// MaxFailures is how many sync failures are kept for display
	MaxFailures = 50

	// BudgetStateTTL is how long a loaded budget state stays in the cache
	BudgetStateTTL = 10 * time.Minute
)
