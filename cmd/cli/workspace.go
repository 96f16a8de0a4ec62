package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	postgresRepo "github.com/iho/budgetplanner/internal/adapter/repository/postgres"
	"github.com/iho/budgetplanner/internal/domain"
	"github.com/iho/budgetplanner/internal/adapter/repository/memory"
	"github.com/iho/budgetplanner/internal/infrastructure/postgres"
	"github.com/iho/budgetplanner/internal/usecase"
)

func newWorkspaceCmd() *cobra.Command {
	workspaceCmd := &cobra.Command{
		Use:   "workspace",
		Short: "Workspace administration",
	}

	var databaseURL string

	importCmd := &cobra.Command{
		Use:   "import <state.json>",
		Short: "Create a workspace in the database from a state file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := readState(args[0])
			if err != nil {
				return err
			}

			pool, err := postgres.NewPool(cmd.Context(), databaseURL, 2, 0)
			if err != nil {
				return err
			}
			defer pool.Close()

			repo := postgresRepo.NewBudgetRepository(pool, postgresRepo.NewRetrier(zerolog.Nop()))
			if err := repo.Import(cmd.Context(), state); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported workspace %s (%d categories, %d months)\n",
				state.WorkspaceID, len(state.Categories), len(state.Months))
			return nil
		},
	}
	importCmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")

	var stateFile string

	checkCmd := &cobra.Command{
		Use:   "check <workspace-id>",
		Short: "Verify stored figures without going through the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if stateFile != "" {
				state, err := readState(stateFile)
				if err != nil {
					return err
				}
				repo := memory.NewBudgetRepository()
				if err := repo.Import(cmd.Context(), state); err != nil {
					return err
				}
				return checkWorkspace(cmd.Context(), repo, args[0], cmd.OutOrStdout())
			}

			pool, err := postgres.NewPool(cmd.Context(), databaseURL, 2, 0)
			if err != nil {
				return err
			}
			defer pool.Close()

			repo := postgresRepo.NewBudgetRepository(pool, postgresRepo.NewRetrier(zerolog.Nop()))
			return checkWorkspace(cmd.Context(), repo, args[0], cmd.OutOrStdout())
		},
	}
	checkCmd.Flags().StringVar(&databaseURL, "database-url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	checkCmd.Flags().StringVar(&stateFile, "file", "", "check a state file instead of the database")

	workspaceCmd.AddCommand(importCmd, checkCmd)
	return workspaceCmd
}

// checkWorkspace loads a workspace into a throwaway engine and recomputes
// every month. Nothing is written back.
func checkWorkspace(ctx context.Context, repo usecase.BudgetRepository, workspaceID string, out io.Writer) error {
	registry := usecase.NewRegistry(repo, postgresRepo.NewNullPatchOutbox(), postgresRepo.NewULIDGenerator(), nil, nil, zerolog.Nop())

	engine, err := registry.Get(ctx, workspaceID)
	if err != nil {
		return err
	}

	ok, err := engine.CheckConsistency(ctx)
	if errors.Is(err, usecase.ErrInconsistentLedger) {
		fmt.Fprintf(out, "Workspace %s is inconsistent: %v\n", workspaceID, err)
		return err
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Workspace %s consistent: %t (%d months)\n", workspaceID, ok, len(engine.Months()))
	return nil
}

// readState loads a state file and checks it builds a valid budget.
func readState(path string) (*domain.BudgetState, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var state domain.BudgetState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if state.WorkspaceID == "" {
		return nil, domain.ErrWorkspaceRequired
	}
	if _, err := domain.NewBudget(state); err != nil {
		return nil, fmt.Errorf("invalid state in %s: %w", path, err)
	}

	return &state, nil
}
