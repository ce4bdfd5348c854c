package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// PlayersResult is the JSON payload of register and rename.
type PlayersResult struct {
	Players []string `json:"players"`
}

// NewRegisterCommand creates the register command.
func NewRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register <name>...",
		Short: "Register the players and start a new session",
		Long: `Register one name per player slot, in seat order.

Registering clears any recorded rounds and zeroes every total. Names must be
non-empty and distinct, and there must be exactly as many as the configured
player count.

Examples:
  racetally register Ann Bo Cy Di`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoster(rootOpts, cmd, args, false)
		},
	}
	return cmd
}

// NewRenameCommand creates the rename command.
func NewRenameCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rename <name>...",
		Short: "Rename players by slot, keeping their points",
		Long: `Give every slot a new name, in seat order.

Totals and round history follow the slot, so a renamed player keeps their
points. Pass the unchanged names for slots that keep theirs.

Examples:
  racetally rename Ann Bo Cy Dee`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRoster(rootOpts, cmd, args, true)
		},
	}
	return cmd
}

func runRoster(opts *RootOptions, cmd *cobra.Command, names []string, rename bool) error {
	formatter := opts.formatter(cmd)
	ctx := commandContext(cmd)

	sess, err := openSession(opts, cmd, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	verb := "Registered"
	if rename {
		verb = "Renamed"
		err = sess.Rename(ctx, names)
	} else {
		err = sess.Register(ctx, names)
	}
	if err != nil {
		return reportError(formatter, ErrCodeStore, err)
	}

	players := sess.Players()
	if opts.Format == "json" {
		return formatter.Success(PlayersResult{Players: players})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %d players: %s\n", verb, len(players), strings.Join(players, ", "))
	return nil
}
