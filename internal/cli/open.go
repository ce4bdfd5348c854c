package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/racetally/internal/config"
	"github.com/roach88/racetally/internal/session"
	"github.com/roach88/racetally/internal/store"
)

// openedSession bundles what a command needs after opening the database.
type openedSession struct {
	*session.Session
	Config config.Config
	store  *store.Store
	logger *slog.Logger
}

// Close closes the database, logging any failure.
func (o *openedSession) Close() {
	if err := o.store.Close(); err != nil {
		o.logger.Error("error closing database", "error", err)
	}
}

// openSession loads config, opens the database and restores the session.
// Failures are written through formatter and returned as ExitErrors.
func openSession(opts *RootOptions, cmd *cobra.Command, formatter *OutputFormatter) (*openedSession, error) {
	logger := opts.logger(formatter.GetErrWriter())

	cfg, err := config.Load(opts.Config)
	if err != nil {
		_ = formatter.Error(ErrCodeConfig, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to load config", err)
	}
	cfg = opts.Env.Apply(cfg)

	logger.Debug("opening database", "path", opts.Database)
	st, err := store.Open(opts.Database)
	if err != nil {
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}

	sess, err := session.Open(commandContext(cmd), st, cfg, session.WithLogger(logger))
	if err != nil {
		st.Close()
		_ = formatter.Error(ErrCodeStore, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "failed to load session", err)
	}

	return &openedSession{Session: sess, Config: cfg, store: st, logger: logger}, nil
}
