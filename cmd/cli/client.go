package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/iho/budgetplanner/internal/adapter/http/dto"
)

// apiClient talks to one workspace of the budget planner API.
type apiClient struct {
	baseURL   string
	workspace string
	http      *http.Client
}

// apiError is a non-2xx response.
type apiError struct {
	Status  int
	Message string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("request failed (status %d): %s", e.Status, e.Message)
}

func (c *apiClient) do(ctx context.Context, method, path string, body, out any) error {
	if c.workspace == "" {
		return errors.New("--workspace is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}

	endpoint := strings.TrimRight(c.baseURL, "/") + "/api/v1/workspaces/" + url.PathEscape(c.workspace) + path
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var errResp dto.ErrorResponse
		if json.Unmarshal(raw, &errResp) == nil && errResp.Error != "" {
			msg := errResp.Error
			if errResp.Message != "" {
				msg += ": " + errResp.Message
			}
			return &apiError{Status: resp.StatusCode, Message: msg}
		}
		return &apiError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// monthCommand sends a command and prints the month view it returns.
func (c *apiClient) monthCommand(cmd *cobra.Command, method, path string, body any) error {
	var month dto.MonthResponse
	if err := c.do(cmd.Context(), method, path, body, &month); err != nil {
		return err
	}
	printMonth(cmd.OutOrStdout(), &month)
	return nil
}

func (c *apiClient) checkConsistency(cmd *cobra.Command) error {
	var result dto.ConsistencyResponse
	err := c.do(cmd.Context(), http.MethodGet, "/consistency", nil, &result)

	var apiErr *apiError
	if errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict {
		fmt.Fprintf(cmd.OutOrStdout(), "Consistency check FAILED\n%s\n", apiErr.Message)
		return err
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Consistency check PASSED\n")
	fmt.Fprintf(cmd.OutOrStdout(), "Consistent: %v\n", result.Consistent)
	fmt.Fprintf(cmd.OutOrStdout(), "Status: %s\n", result.Status)
	return nil
}

func printMonth(out io.Writer, m *dto.MonthResponse) {
	fmt.Fprintf(out, "%s  income %s  assigned %s  ready to assign %s\n",
		m.Month, m.Income, m.Assigned, m.ReadyToAssign)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "CATEGORY\tBUDGETED\tACTIVITY\tAVAILABLE\tROLLOVER\t")
	for _, c := range m.Categories {
		rollover := ""
		if c.CarryIn {
			rollover = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t\n", truncate(c.Name, 24), c.Budgeted, c.Activity, c.Available, rollover)
	}
	tw.Flush()

	if len(m.Hidden) > 0 {
		names := make([]string, len(m.Hidden))
		for i, c := range m.Hidden {
			names[i] = c.Name
		}
		fmt.Fprintf(out, "hidden: %s\n", strings.Join(names, ", "))
	}
	if m.LastActionLabel != "" {
		fmt.Fprintf(out, "last action: %s\n", m.LastActionLabel)
	}
	if len(m.Pending) > 0 {
		fmt.Fprintf(out, "%d command(s) await confirmation\n", len(m.Pending))
	}
	if len(m.Failures) > 0 {
		fmt.Fprintf(out, "%d command(s) failed to save\n", len(m.Failures))
	}
}

func printHistory(out io.Writer, h *dto.HistoryResponse) {
	printCommands(out, "Undo", h.Undo)
	printCommands(out, "Redo", h.Redo)
}

func printCommands(out io.Writer, title string, commands []dto.CommandResponse) {
	fmt.Fprintf(out, "%s (%d)\n", title, len(commands))
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, c := range commands {
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", c.ID, c.Month, c.State, c.Label)
	}
	tw.Flush()
}

func printFailures(out io.Writer, failures []dto.SyncFailureResponse) {
	if len(failures) == 0 {
		fmt.Fprintln(out, "No failures")
		return
	}
	for _, f := range failures {
		fmt.Fprintf(out, "%s %s %s [%s]: %s\n", f.CommandID, f.Kind, f.Month, strings.Join(f.CategoryIDs, ","), f.Error)
	}
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
