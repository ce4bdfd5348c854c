package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ResetOptions holds flags for the reset command.
type ResetOptions struct {
	*RootOptions
	Yes bool
}

// NewResetCommand creates the reset command.
func NewResetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ResetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Discard the session and start over",
		Long: `Discard players, totals, history and settings changes.

The new session starts from --config (or the built-in defaults). The previous
snapshot stays in the database as a backup until the next change.

Examples:
  racetally reset --yes`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReset(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Yes, "yes", false, "confirm the reset")

	return cmd
}

func runReset(opts *ResetOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	if !opts.Yes {
		msg := "reset discards the whole session; pass --yes to confirm"
		_ = formatter.Error(ErrCodeUsage, msg, nil)
		return NewExitError(ExitCommandError, msg)
	}

	sess, err := openSession(opts.RootOptions, cmd, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	if err := sess.Reset(commandContext(cmd)); err != nil {
		return reportError(formatter, ErrCodeStore, err)
	}

	if opts.Format == "json" {
		return formatter.Success(map[string]interface{}{"reset": true})
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Session reset.")
	return nil
}
