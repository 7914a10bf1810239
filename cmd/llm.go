package cmd

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/spf13/cobra"

	"github.com/abhisek/practiced/internal/llm"
	"github.com/abhisek/practiced/internal/store"
	"github.com/abhisek/practiced/internal/ui/theme"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect recorded model requests",
}

// openStore opens the store named by --db / PRACTICED_DB.
func openStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent model requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		purpose, _ := cmd.Flags().GetString("purpose")

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), store.QueryOpts{Limit: limit, Purpose: purpose})
		if err != nil {
			return fmt.Errorf("query events: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(events) == 0 {
			lipgloss.Fprintln(out, theme.Hint.Render("No LLM events found."))
			return nil
		}

		rows := make([][]string, 0, len(events))
		for _, e := range events {
			rows = append(rows, []string{
				strconv.FormatInt(e.ID, 10),
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				e.Purpose,
				truncate(e.Model, 28),
				strconv.Itoa(e.InputTokens),
				strconv.Itoa(e.OutputTokens),
				strconv.FormatInt(e.LatencyMs, 10),
				theme.Mark(e.Success),
			})
		}

		lipgloss.Fprintln(out, theme.Table(
			[]string{"ID", "Timestamp", "Purpose", "Model", "In", "Out", "Ms", "OK"}, rows))
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View the full request and response of a model call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid ID %q: %w", args[0], err)
		}

		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("event %d not found", id)
		}
		if err != nil {
			return fmt.Errorf("get event: %w", err)
		}

		out := cmd.OutOrStdout()
		field := func(label, value string) {
			lipgloss.Fprintln(out, theme.Label.Render(label)+value)
		}

		field("ID", strconv.FormatInt(e.ID, 10))
		field("Event", e.EventID)
		field("Time", e.Timestamp.Local().Format("2006-01-02 15:04:05"))
		field("Provider", e.Provider)
		field("Model", e.Model)
		field("Purpose", e.Purpose)
		field("Tokens", fmt.Sprintf("%d in / %d out", e.InputTokens, e.OutputTokens))
		field("Latency", fmt.Sprintf("%dms", e.LatencyMs))
		field("Success", theme.Mark(e.Success))
		if e.ErrorMessage != "" {
			field("Error", theme.Incorrect.Render(e.ErrorMessage))
		}

		sep := strings.Repeat("─", 60)
		section := func(title, body string) {
			lipgloss.Fprintln(out)
			lipgloss.Fprintln(out, theme.Hint.Render(sep))
			lipgloss.Fprintln(out, theme.Title.Render(title))
			lipgloss.Fprintln(out, theme.Hint.Render(sep))
			if body == "" {
				body = theme.Hint.Render("(not captured)")
			}
			fmt.Fprintln(out, body)
		}
		section("REQUEST", e.RequestBody)
		section("RESPONSE", e.ResponseBody)

		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated token usage and estimated cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		byPurpose, err := s.EventRepo().LLMUsageByPurpose(ctx)
		if err != nil {
			return fmt.Errorf("query usage: %w", err)
		}
		if len(byPurpose) == 0 {
			lipgloss.Fprintln(out, theme.Hint.Render("No LLM usage recorded yet."))
			return nil
		}

		var totalCalls, totalFailed, totalIn, totalOut int
		rows := make([][]string, 0, len(byPurpose)+1)
		for _, u := range byPurpose {
			rows = append(rows, []string{
				u.Key,
				strconv.Itoa(u.Calls),
				strconv.Itoa(u.Failures),
				strconv.Itoa(u.InputTokens),
				strconv.Itoa(u.OutputTokens),
				strconv.Itoa(u.InputTokens + u.OutputTokens),
				strconv.FormatInt(u.AvgLatencyMs, 10),
			})
			totalCalls += u.Calls
			totalFailed += u.Failures
			totalIn += u.InputTokens
			totalOut += u.OutputTokens
		}
		rows = append(rows, []string{
			"TOTAL",
			strconv.Itoa(totalCalls),
			strconv.Itoa(totalFailed),
			strconv.Itoa(totalIn),
			strconv.Itoa(totalOut),
			strconv.Itoa(totalIn + totalOut),
			"",
		})

		lipgloss.Fprintln(out, theme.Title.Render("Usage by Purpose"))
		lipgloss.Fprintln(out, theme.Table(
			[]string{"Purpose", "Calls", "Failed", "Input", "Output", "Total", "Avg Ms"}, rows))

		byModel, err := s.EventRepo().LLMUsageByModel(ctx)
		if err != nil {
			return fmt.Errorf("query model usage: %w", err)
		}

		var totalCost float64
		var unknownModels []string
		costRows := make([][]string, 0, len(byModel)+1)
		for _, u := range byModel {
			costCell := "?"
			if cost := llm.LookupCost(u.Key); cost != nil {
				c := cost.Cost(u.InputTokens, u.OutputTokens)
				totalCost += c
				costCell = formatCost(c)
			} else {
				unknownModels = append(unknownModels, u.Key)
			}
			costRows = append(costRows, []string{
				truncate(u.Key, 32),
				strconv.Itoa(u.Calls),
				strconv.Itoa(u.InputTokens),
				strconv.Itoa(u.OutputTokens),
				costCell,
			})
		}
		costRows = append(costRows, []string{"TOTAL", "", "", "", formatCost(totalCost)})

		lipgloss.Fprintln(out)
		title := "Estimated Cost (USD)"
		if len(unknownModels) > 0 {
			title += " (partial)"
		}
		lipgloss.Fprintln(out, theme.Title.Render(title))
		lipgloss.Fprintln(out, theme.Table([]string{"Model", "Calls", "Input", "Output", "Cost"}, costRows))

		if len(unknownModels) > 0 {
			lipgloss.Fprintln(out, theme.Hint.Render("Pricing unavailable for: "+strings.Join(unknownModels, ", ")))
		}

		return nil
	},
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of events to show")
	llmListCmd.Flags().StringP("purpose", "p", "", "Filter by purpose (quiz-gen, quiz-eval)")

	llmCmd.AddCommand(llmListCmd)
	llmCmd.AddCommand(llmViewCmd)
	llmCmd.AddCommand(llmStatsCmd)
}
