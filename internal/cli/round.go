package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	"github.com/roach88/racetally/internal/ledger"
)

// RoundResult is the JSON payload of round and undo.
type RoundResult struct {
	Round     ledger.Round `json:"round"`
	Played    int          `json:"played"`
	Remaining int          `json:"remaining"`
}

// NewRoundCommand creates the round command.
func NewRoundCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "round <token>...",
		Short: "Record one round",
		Long: `Record one round from one rank token per player, in seat order.

A token is a rank from 1 to 8 with an optional marker:
  3      finished third
  3re    retired, ranked third (also 3리, 3리타)
  3x     did not finish (also 3초, 3초사)

No two players may share a rank. A rejected round changes nothing.

Exit codes:
  0 - Round recorded
  1 - Round rejected (bad token, shared rank, session complete, ...)
  2 - Command error

Examples:
  racetally round 1 3re 2 4x`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRound(rootOpts, cmd, args)
		},
	}
	return cmd
}

// NewUndoCommand creates the undo command.
func NewUndoCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "undo",
		Short: "Remove the most recent round",
		Long: `Remove the most recent round and take its points back from every player.

Examples:
  racetally undo`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUndo(rootOpts, cmd)
		},
	}
	return cmd
}

func runRound(opts *RootOptions, cmd *cobra.Command, tokens []string) error {
	formatter := opts.formatter(cmd)

	sess, err := openSession(opts, cmd, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	round, err := sess.AddRound(commandContext(cmd), tokens)
	if err != nil {
		return reportError(formatter, ErrCodeStore, err)
	}

	result := RoundResult{Round: round, Played: sess.Played(), Remaining: sess.Roster().TotalGames - sess.Played()}
	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	p := opts.printer()
	p.Fprintf(w, "Round %d/%d recorded at %s\n", result.Played, sess.Roster().TotalGames, round.Timestamp)
	fmt.Fprintln(w, formatDelta(p, sess.Players(), round.Delta, 1))
	if result.Remaining == 0 {
		fmt.Fprintln(w, "Session complete. Run 'racetally settle' for the final sheet.")
	}
	return nil
}

func runUndo(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	sess, err := openSession(opts, cmd, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	round, err := sess.UndoLast(commandContext(cmd))
	if err != nil {
		return reportError(formatter, ErrCodeStore, err)
	}

	result := RoundResult{Round: round, Played: sess.Played(), Remaining: sess.Roster().TotalGames - sess.Played()}
	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	p := opts.printer()
	fmt.Fprintf(w, "Undid round from %s: %s\n", round.Timestamp, strings.Join(round.Tokens, " / "))
	fmt.Fprintln(w, formatDelta(p, sess.Players(), round.Delta, -1))
	return nil
}

// formatDelta renders "Ann +288, Bo +135" in roster order, scaled by sign.
func formatDelta(p *message.Printer, players []string, delta map[string]int, sign int) string {
	parts := make([]string, 0, len(players))
	for _, name := range players {
		pts, ok := delta[name]
		if !ok {
			continue
		}
		parts = append(parts, name+" "+p.Sprintf("%+d", sign*pts))
	}
	return strings.Join(parts, ", ")
}
