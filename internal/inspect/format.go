// Package inspect provides the read side of the CLI: fetching and formatting
// committed task and profile records.
package inspect

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/openpost/tradepost/pkg/market"
)

// OutputFormat specifies how to format task list output.
type OutputFormat string

const (
	// OutputFormatDefault uses a table format with truncated fields
	OutputFormatDefault OutputFormat = "default"

	// OutputFormatJSONL outputs complete tasks as line-delimited JSON
	OutputFormatJSONL OutputFormat = "jsonl"
)

// FormatTable writes tasks as a formatted table. Returns the number of tasks
// written.
func FormatTable(w io.Writer, tasks []*market.Task, creator market.Identity) int {
	if len(tasks) == 0 {
		fmt.Fprintf(w, "No tasks found for creator %s\n", shortIdentity(creator.String()))
		return 0
	}

	fmt.Fprintf(w, "Tasks created by %s:\n\n", shortIdentity(creator.String()))

	fmt.Fprintf(w, "%-6s %-10s %-10s %-8s %-10s %s\n",
		"ID", "STATUS", "ASSIGNEE", "REWARD", "AGE", "TITLE")
	fmt.Fprintf(w, "%-6s %-10s %-10s %-8s %-10s %s\n",
		"------", "----------", "----------", "--------", "----------", "----------------------------------------")

	for _, t := range tasks {
		fmt.Fprintf(w, "%-6d %-10s %-10s %-8d %-10s %s\n",
			t.ID,
			t.Status,
			formatAssignee(t.Assignee),
			t.RewardAmount,
			formatAge(t.CreatedAtMs),
			truncate(t.Title, 40),
		)
	}

	countMsg := "task"
	if len(tasks) != 1 {
		countMsg = "tasks"
	}
	fmt.Fprintf(w, "\n%d %s found\n", len(tasks), countMsg)

	return len(tasks)
}

// FormatJSONL writes tasks as line-delimited JSON, one object per line.
func FormatJSONL(w io.Writer, tasks []*market.Task) error {
	for _, t := range tasks {
		data, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("failed to marshal task to JSON: %w", err)
		}
		if _, err := fmt.Fprintf(w, "%s\n", data); err != nil {
			return fmt.Errorf("failed to write JSONL output: %w", err)
		}
	}
	return nil
}

// FormatSingleJSON writes one record as pretty-printed JSON.
func FormatSingleJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal to JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	fmt.Fprintln(w)
	return nil
}

// shortIdentity truncates an identity hex string for compact display.
func shortIdentity(s string) string {
	if len(s) > 10 {
		return s[:10]
	}
	return s
}

func formatAssignee(assignee *market.Identity) string {
	if assignee == nil {
		return "-"
	}
	return shortIdentity(assignee.String())
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max-3] + "..."
	}
	return s
}

// formatAge renders a millisecond timestamp as relative time.
func formatAge(timestampMs int64) string {
	if timestampMs == 0 {
		return "-"
	}

	diff := time.Since(time.UnixMilli(timestampMs))

	switch {
	case diff < time.Minute:
		return fmt.Sprintf("%ds ago", int(diff.Seconds()))
	case diff < time.Hour:
		return fmt.Sprintf("%dm ago", int(diff.Minutes()))
	case diff < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(diff.Hours()))
	default:
		return fmt.Sprintf("%dd ago", int(diff.Hours()/24))
	}
}
