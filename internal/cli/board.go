package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/racetally/internal/ledger"
)

// NewBoardCommand creates the board command.
func NewBoardCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "board",
		Short: "Show standings and recent rounds",
		Long: `Show progress, the combined total against the 1000-per-game baseline,
current standings and the five most recent rounds.

Examples:
  racetally board
  racetally board --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(rootOpts, cmd)
		},
	}
	return cmd
}

// NewSettleCommand creates the settle command.
func NewSettleCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settle",
		Short: "Show the settlement sheet",
		Long: `Show every player's final place, rank summary and total.

The rank summary lists how often each finish occurred: "1:3, 2re:1, 5x:2"
means three wins, one retirement in second and two DNFs in fifth.
Settling does not end the session.

Examples:
  racetally settle`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettle(rootOpts, cmd)
		},
	}
	return cmd
}

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	Limit int
}

// HistoryEntry is one round in history output.
type HistoryEntry struct {
	Number int          `json:"number"`
	Round  ledger.Round `json:"round"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded rounds",
		Long: `List recorded rounds, oldest first, with each player's points.

Rounds older than the retention cap are no longer listed but still count
toward totals.

Examples:
  racetally history
  racetally history --limit 5`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "show only the last N rounds (0 shows all)")

	return cmd
}

func runBoard(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	sess, err := openSession(opts, cmd, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	return formatter.Success(sess.Board())
}

func runSettle(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	sess, err := openSession(opts, cmd, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	return formatter.Success(sess.Settle())
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	sess, err := openSession(opts.RootOptions, cmd, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	history := sess.History()
	// Rounds trimmed by retention still count toward numbering.
	first := sess.Played() - len(history) + 1
	entries := make([]HistoryEntry, len(history))
	for i, r := range history {
		entries[i] = HistoryEntry{Number: first + i, Round: r}
	}
	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[len(entries)-opts.Limit:]
	}

	if opts.Format == "json" {
		return formatter.Success(entries)
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No rounds recorded.")
		return nil
	}
	p := opts.printer()
	players := sess.Players()
	for _, e := range entries {
		fmt.Fprintf(w, "#%d %s  %s  %s\n", e.Number, e.Round.Timestamp,
			strings.Join(e.Round.Tokens, " / "), formatDelta(p, players, e.Round.Delta, 1))
	}
	return nil
}
