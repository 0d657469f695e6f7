package cmd

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/jcommit/jcommit/internal/pkg/history"
)

const (
	// DefaultHistoryLimit is the default number of history entries to display.
	DefaultHistoryLimit = 20
)

// NewHistoryCmd creates the history command and its subcommands.
func NewHistoryCmd() *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "View generated commit messages",
		Long: `View the history of generated commit messages.

By default, displays the most recent 20 entries. Use --limit to change the number of entries shown.

Examples:
  jcommit history           # Show last 20 entries
  jcommit history --limit 5 # Show last 5 entries
  jcommit history clear     # Clear all history`,
		Args: cobra.NoArgs,
		RunE: runHistoryList,
	}

	historyCmd.Flags().IntP("limit", "l", DefaultHistoryLimit, "Number of entries to display")

	historyCmd.AddCommand(newHistoryClearCmd())

	return historyCmd
}

func newHistoryManager(cmd *cobra.Command) (*history.FileManager, bool, error) {
	mgr, err := newConfigManager(cmd)
	if err != nil {
		return nil, false, err
	}
	cfg, err := mgr.Load()
	if err != nil {
		return nil, false, err
	}
	return history.NewFileManager(cfg.History.FilePath, cfg.History.MaxEntries), cfg.History.Enabled, nil
}

// runHistoryList displays the history entries.
func runHistoryList(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	out := cmd.OutOrStdout()

	historyMgr, enabled, err := newHistoryManager(cmd)
	if err != nil {
		return err
	}
	if !enabled {
		fmt.Fprintln(out, "History is disabled. Enable it with: jcommit config set history.enabled true")
		return nil
	}

	entries, err := historyMgr.List(limit)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Fprintln(out, "No history entries found.")
		return nil
	}

	fmt.Fprintf(out, "Showing %d most recent entries:\n\n", len(entries))
	for i, entry := range entries {
		printHistoryEntry(out, entry, i+1)
	}

	return nil
}

// printHistoryEntry formats and prints a single history entry.
func printHistoryEntry(out io.Writer, entry *history.Entry, index int) {
	timestamp := entry.Timestamp.Format(time.RFC3339)

	status := "not committed"
	if entry.Committed {
		status = "committed"
	}

	fmt.Fprintf(out, "[%d] %s (%s)\n", index, timestamp, status)

	mode := string(entry.Mode)
	if entry.Base != "" {
		mode += " from " + entry.Base
	}
	if mode != "" {
		fmt.Fprintf(out, "    Mode: %s\n", mode)
	}
	if entry.Model != "" {
		fmt.Fprintf(out, "    Model: %s\n", entry.Model)
	}

	fmt.Fprintln(out, "    Message:")
	for _, line := range strings.Split(entry.Message, "\n") {
		fmt.Fprintf(out, "      %s\n", line)
	}

	if entry.DiffSummary != "" {
		fmt.Fprintf(out, "    Changes: %s\n", entry.DiffSummary)
	}

	fmt.Fprintln(out)
}

// newHistoryClearCmd creates the 'history clear' subcommand.
func newHistoryClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Clear all history entries",
		Long: `Delete all entries from the history file.

This action cannot be undone.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			historyMgr, _, err := newHistoryManager(cmd)
			if err != nil {
				return err
			}

			if err := historyMgr.Clear(); err != nil {
				return fmt.Errorf("failed to clear history: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), "History cleared successfully.")
			return nil
		},
	}
}
