package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/racetally/internal/score"
)

// SettingsOptions holds flags for the settings command.
type SettingsOptions struct {
	*RootOptions
	Players     int
	Games       int
	Retention   int
	ReloadRules bool
}

// SettingsView is the settings payload for JSON output.
type SettingsView struct {
	RosterSize int         `json:"roster_size"`
	TotalGames int         `json:"total_games"`
	Played     int         `json:"played"`
	Retention  int         `json:"retention"`
	Rules      score.Rules `json:"rules"`
}

// NewSettingsCommand creates the settings command.
func NewSettingsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SettingsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change session settings",
		Long: `Show the session settings, or change them with flags.

The player count is locked once players are registered; run reset first.
The game count can change mid-session but never below the rounds played.
--reload-rules replaces the session's point tables with those from --config.

Exit codes:
  0 - Settings shown or changed
  1 - Change rejected
  2 - Command error (database or config unreadable)

Examples:
  racetally settings
  racetally settings --players 6 --games 12
  racetally settings --config rules.yaml --reload-rules`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSettings(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Players, "players", 0, "number of players (2-8)")
	cmd.Flags().IntVar(&opts.Games, "games", 0, "number of games (1-999)")
	cmd.Flags().IntVar(&opts.Retention, "retention", -1, "rounds kept in detail (0 keeps all)")
	cmd.Flags().BoolVar(&opts.ReloadRules, "reload-rules", false, "replace point tables with those from --config")

	return cmd
}

func runSettings(opts *SettingsOptions, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := commandContext(cmd)

	sess, err := openSession(opts.RootOptions, cmd, formatter)
	if err != nil {
		return err
	}
	defer sess.Close()

	flags := cmd.Flags()
	if flags.Changed("players") || flags.Changed("games") {
		roster := sess.Roster()
		if flags.Changed("players") {
			roster.RosterSize = opts.Players
		}
		if flags.Changed("games") {
			roster.TotalGames = opts.Games
		}
		if err := sess.Configure(ctx, roster); err != nil {
			return reportError(formatter, ErrCodeStore, err)
		}
		formatter.VerboseLog("roster set to %d players, %d games", roster.RosterSize, roster.TotalGames)
	}
	if flags.Changed("retention") {
		if err := sess.SetRetention(ctx, opts.Retention); err != nil {
			return reportError(formatter, ErrCodeStore, err)
		}
	}
	if opts.ReloadRules {
		if err := sess.SetRules(ctx, sess.Config.Rules); err != nil {
			return reportError(formatter, ErrCodeStore, err)
		}
	}

	view := SettingsView{
		RosterSize: sess.Roster().RosterSize,
		TotalGames: sess.Roster().TotalGames,
		Played:     sess.Played(),
		Retention:  sess.Retention(),
		Rules:      sess.Rules(),
	}
	if opts.Format == "json" {
		return formatter.Success(view)
	}
	return outputSettingsText(cmd, opts.RootOptions, view)
}

func outputSettingsText(cmd *cobra.Command, opts *RootOptions, v SettingsView) error {
	w := cmd.OutOrStdout()
	p := opts.printer()

	p.Fprintf(w, "Players: %d\n", v.RosterSize)
	p.Fprintf(w, "Games: %d (%d played)\n", v.TotalGames, v.Played)
	if v.Retention == 0 {
		fmt.Fprintln(w, "Retention: all rounds")
	} else {
		p.Fprintf(w, "Retention: %d rounds\n", v.Retention)
	}
	fmt.Fprintf(w, "Goal: %s\n", formatTable(v.Rules.Goal))
	fmt.Fprintf(w, "Retired: %s\n", formatTable(v.Rules.Retired))
	fmt.Fprintf(w, "DNF: %d\n", v.Rules.DNF)
	fmt.Fprintf(w, "Bonus: goal %+d, retired %+d, dnf %+d\n", v.Rules.GoalBonus, v.Rules.RetiredBonus, v.Rules.DNFBonus)
	return nil
}

// formatTable renders a point table as "1=288 2=270 ...", ranks ascending.
func formatTable(t score.PointTable) string {
	ranks := make([]int, 0, len(t))
	for r := range t {
		ranks = append(ranks, r)
	}
	sort.Ints(ranks)

	parts := make([]string, len(ranks))
	for i, r := range ranks {
		parts[i] = fmt.Sprintf("%d=%d", r, t[r])
	}
	if len(parts) == 0 {
		return "(empty)"
	}
	return strings.Join(parts, " ")
}
