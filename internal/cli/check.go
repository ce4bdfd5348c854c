package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// CheckResult is the JSON payload of the check command.
type CheckResult struct {
	OK       bool `json:"ok"`
	Played   int  `json:"played"`
	Retained int  `json:"retained"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Verify totals against round history",
		Long: `Recompute every player's total from the recorded rounds and compare it
with the running total.

A stored session that could not be read is reported here too; the session
was replaced with a backup or the defaults when it was opened.

Exit codes:
  0 - Totals match
  1 - Totals drifted, or stored data was unreadable
  2 - Command error

Examples:
  racetally check`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, cmd)
		},
	}
	return cmd
}

func runCheck(opts *RootOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	sess, err := openSession(opts, cmd, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Check(); err != nil {
		return reportError(formatter, ErrCodeGeneric, err)
	}
	if notice := sess.Notice(); notice != nil {
		return reportError(formatter, ErrCodeGeneric, notice)
	}

	result := CheckResult{OK: true, Played: sess.Played(), Retained: len(sess.History())}
	if opts.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "OK: totals match %d retained rounds (%d played)\n", result.Retained, result.Played)
	return nil
}
