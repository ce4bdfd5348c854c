package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/roach88/racetally/internal/config"
)

// DefaultDatabase is the SQLite file used when neither --db nor
// RACETALLY_DB is set.
const DefaultDatabase = "racetally.db"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose  bool
	Format   string // "json" | "text"
	Database string
	Config   string
	Lang     string

	// Env is read once before any command runs.
	Env config.Env
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the racetally CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "racetally",
		Short: "racetally - race session scoreboard",
		Long: `Keep score for a multiplayer racing session.

Register the players, enter one rank token per player after every round
("1", "3re", "5x"), and settle up when the session is over. State is kept
in a local SQLite file.

Settings come from --config (YAML or CUE), then RACETALLY_* environment
variables (also read from ./.env), then flags.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadDotEnv(config.DotEnvFile); err != nil {
				return WrapExitError(ExitCommandError, "failed to read environment", err)
			}
			env, err := config.ParseEnv()
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to read environment", err)
			}
			opts.applyEnv(cmd, env)

			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if _, err := language.Parse(opts.Lang); err != nil {
				return fmt.Errorf("invalid language %q: %w", opts.Lang, err)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", DefaultDatabase, "path to SQLite database")
	cmd.PersistentFlags().StringVar(&opts.Config, "config", "", "settings file (.yaml, .yml or .cue)")
	cmd.PersistentFlags().StringVar(&opts.Lang, "lang", "en", "language for number formatting (BCP 47)")

	// Add subcommands
	cmd.AddCommand(NewSettingsCommand(opts))
	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewRenameCommand(opts))
	cmd.AddCommand(NewRoundCommand(opts))
	cmd.AddCommand(NewUndoCommand(opts))
	cmd.AddCommand(NewResetCommand(opts))
	cmd.AddCommand(NewBoardCommand(opts))
	cmd.AddCommand(NewSettleCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))

	return cmd
}

// applyEnv fills every global flag the user did not set from env.
func (o *RootOptions) applyEnv(cmd *cobra.Command, env config.Env) {
	o.Env = env
	flags := cmd.Flags()
	if env.DB != "" && !flags.Changed("db") {
		o.Database = env.DB
	}
	if env.Config != "" && !flags.Changed("config") {
		o.Config = env.Config
	}
	if env.Format != "" && !flags.Changed("format") {
		o.Format = env.Format
	}
	if env.Lang != "" && !flags.Changed("lang") {
		o.Lang = env.Lang
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// formatter builds the output formatter for cmd.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   o.Verbose,
		Printer:   o.printer(),
	}
}

// printer returns a message printer for the configured language.
func (o *RootOptions) printer() *message.Printer {
	tag, err := language.Parse(o.Lang)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

// logger returns a text logger on w: DEBUG when verbose, INFO otherwise.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// commandContext returns the command's context, or Background when the
// command runs outside Execute (as in tests).
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
