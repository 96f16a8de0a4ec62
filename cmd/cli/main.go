package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/iho/budgetplanner/internal/adapter/http/dto"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	c := &apiClient{}
	var timeout time.Duration

	rootCmd := &cobra.Command{
		Use:           "budgetplanner-cli",
		Short:         "Budget planner CLI tool",
		Long:          `A command line interface for interacting with the budget planner API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.http = &http.Client{Timeout: timeout}
		},
	}
	rootCmd.SetOut(out)

	rootCmd.PersistentFlags().StringVar(&c.baseURL, "url", "http://localhost:8080", "Base URL of the budget planner API")
	rootCmd.PersistentFlags().StringVarP(&c.workspace, "workspace", "w", "", "Workspace ID")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 10*time.Second, "Request timeout")

	rootCmd.AddCommand(
		newMonthCmd(c),
		newBudgetCmd(c),
		newCategoryCmd(c, "rollover", "Toggle rollover for a category", "rollover"),
		newCategoryCmd(c, "hide", "Hide a category", "hide"),
		newCategoryCmd(c, "unhide", "Unhide a category", "unhide"),
		newDistributeCmd(c),
		newActivityCmd(c),
		newHistoryStepCmd(c, "undo", "Undo the last command"),
		newHistoryStepCmd(c, "redo", "Redo the last undone command"),
		newHistoryCmd(c),
		newPendingCmd(c),
		newFailuresCmd(c),
		newLedgerCmd(c),
		newWorkspaceCmd(),
	)

	return rootCmd
}

func newMonthCmd(c *apiClient) *cobra.Command {
	monthCmd := &cobra.Command{
		Use:   "month",
		Short: "Month operations",
	}

	monthCmd.AddCommand(&cobra.Command{
		Use:   "show <YYYY-MM>",
		Short: "Show a month's figures",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var month dto.MonthResponse
			if err := c.do(cmd.Context(), http.MethodGet, "/months/"+args[0], nil, &month); err != nil {
				return err
			}
			printMonth(cmd.OutOrStdout(), &month)
			return nil
		},
	}, &cobra.Command{
		Use:   "open <YYYY-MM>",
		Short: "Open a new month",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.monthCommand(cmd, http.MethodPost, "/months/"+args[0], nil)
		},
	})

	return monthCmd
}

func newBudgetCmd(c *apiClient) *cobra.Command {
	budgetCmd := &cobra.Command{
		Use:   "budget",
		Short: "Budget operations",
	}

	budgetCmd.AddCommand(&cobra.Command{
		Use:   "set <YYYY-MM> <category> <amount>",
		Short: "Set a category's budgeted amount",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/months/%s/categories/%s/budgeted", args[0], args[1])
			return c.monthCommand(cmd, http.MethodPut, path, map[string]string{"amount": args[2]})
		},
	})

	return budgetCmd
}

func newCategoryCmd(c *apiClient, use, short, action string) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <YYYY-MM> <category>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/months/%s/categories/%s/%s", args[0], args[1], action)
			return c.monthCommand(cmd, http.MethodPost, path, nil)
		},
	}
}

func newDistributeCmd(c *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "distribute <YYYY-MM> <copy_previous|three_month_average>",
		Short: "Fill a month's budgets with a distribution strategy",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.monthCommand(cmd, http.MethodPost, "/months/"+args[0]+"/distribute",
				map[string]string{"strategy": args[1]})
		},
	}
}

func newActivityCmd(c *apiClient) *cobra.Command {
	var kind, category string

	activityCmd := &cobra.Command{
		Use:   "activity <YYYY-MM> <amount>",
		Short: "Record authoritative activity or income",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]string{"kind": kind, "category_id": category, "amount": args[1]}

			var raw map[string]any
			if err := c.do(cmd.Context(), http.MethodPost, "/months/"+args[0]+"/activity", body, &raw); err != nil {
				return err
			}
			if status, ok := raw["status"].(string); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "Activity %s\n", status)
				return nil
			}
			return printJSON(cmd.OutOrStdout(), raw)
		},
	}
	activityCmd.Flags().StringVar(&kind, "kind", "category", "Update kind: category or income")
	activityCmd.Flags().StringVar(&category, "category", "", "Category ID for category activity")

	return activityCmd
}

func newHistoryStepCmd(c *apiClient, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.monthCommand(cmd, http.MethodPost, "/"+action, nil)
		},
	}
}

func newHistoryCmd(c *apiClient) *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List the undo and redo stacks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var history dto.HistoryResponse
			if err := c.do(cmd.Context(), http.MethodGet, "/history", nil, &history); err != nil {
				return err
			}
			printHistory(cmd.OutOrStdout(), &history)
			return nil
		},
	}
}

func newPendingCmd(c *apiClient) *cobra.Command {
	pendingCmd := &cobra.Command{
		Use:   "pending",
		Short: "Commands awaiting confirmation after a conflict",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var commands []dto.CommandResponse
			if err := c.do(cmd.Context(), http.MethodGet, "/pending", nil, &commands); err != nil {
				return err
			}
			printCommands(cmd.OutOrStdout(), "Pending", commands)
			return nil
		},
	}

	pendingCmd.AddCommand(&cobra.Command{
		Use:   "confirm <command-id>",
		Short: "Re-apply a pending command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.monthCommand(cmd, http.MethodPost, "/pending/"+args[0]+"/confirm", nil)
		},
	}, &cobra.Command{
		Use:   "discard <command-id>",
		Short: "Drop a pending command",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.do(cmd.Context(), http.MethodDelete, "/pending/"+args[0], nil, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Discarded %s\n", args[0])
			return nil
		},
	})

	return pendingCmd
}

func newFailuresCmd(c *apiClient) *cobra.Command {
	var clear bool

	failuresCmd := &cobra.Command{
		Use:   "failures",
		Short: "List commands the backend failed to persist",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if clear {
				if err := c.do(cmd.Context(), http.MethodDelete, "/failures", nil, nil); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Failures cleared")
				return nil
			}

			var failures []dto.SyncFailureResponse
			if err := c.do(cmd.Context(), http.MethodGet, "/failures", nil, &failures); err != nil {
				return err
			}
			printFailures(cmd.OutOrStdout(), failures)
			return nil
		},
	}
	failuresCmd.Flags().BoolVar(&clear, "clear", false, "Dismiss all reported failures")

	return failuresCmd
}

func newLedgerCmd(c *apiClient) *cobra.Command {
	ledgerCmd := &cobra.Command{
		Use:   "ledger",
		Short: "Ledger operations",
	}

	ledgerCmd.AddCommand(&cobra.Command{
		Use:   "consistency",
		Short: "Check ledger consistency",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.checkConsistency(cmd)
		},
	})

	return ledgerCmd
}
