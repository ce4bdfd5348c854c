package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/racetally/internal/aggregate"
	"github.com/roach88/racetally/internal/config"
	"github.com/roach88/racetally/internal/ledger"
	"github.com/roach88/racetally/internal/score"
)

// DefaultKey is the store key a session is saved under.
const DefaultKey = "session"

// BlobStore loads and saves opaque snapshots by key.
type BlobStore interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, data []byte) error
}

// BackupStore is implemented by stores that keep the value a key held
// before its last save.
type BackupStore interface {
	LoadBackup(ctx context.Context, key string) ([]byte, bool, error)
}

// Session owns one ledger and keeps it in sync with a BlobStore.
type Session struct {
	store  BlobStore
	key    string
	cfg    config.Config
	logger *slog.Logger
	clock  ledger.Clock
	ids    ledger.IDGenerator

	ledger *ledger.Ledger
	notice error
}

// Option configures a Session.
type Option func(*Session)

// WithKey overrides DefaultKey.
func WithKey(key string) Option {
	return func(s *Session) { s.key = key }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) { s.logger = logger }
}

// WithClock sets the clock used for round timestamps and settlements.
func WithClock(c ledger.Clock) Option {
	return func(s *Session) { s.clock = c }
}

// WithIDGenerator sets the round ID generator.
func WithIDGenerator(g ledger.IDGenerator) Option {
	return func(s *Session) { s.ids = g }
}

// Open loads the session stored under the session key.
//
// Settings saved in the snapshot take precedence over cfg; cfg seeds new
// sessions and Reset. Only store errors are returned. Undecodable or
// inconsistent data is replaced and reported through Notice.
func Open(ctx context.Context, store BlobStore, cfg config.Config, opts ...Option) (*Session, error) {
	s := &Session{
		store:  store,
		key:    DefaultKey,
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		clock:  ledger.SystemClock{},
		ids:    ledger.UUIDv7Generator{},
	}
	for _, opt := range opts {
		opt(s)
	}

	data, ok, err := store.Load(ctx, s.key)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if ok {
		l, err := s.restore(data)
		if err == nil {
			s.ledger = l
		} else {
			s.notice = err
			s.logger.Warn("stored session is unreadable", "key", s.key, "error", err)
			s.ledger, err = s.recover(ctx)
			if err != nil {
				return nil, err
			}
		}
	} else {
		s.ledger, err = s.fresh()
		if err != nil {
			return nil, err
		}
		s.logger.Debug("starting new session", "key", s.key)
	}

	if err := s.ledger.Rules().Complete(); err != nil {
		s.logger.Warn("scoring rules are incomplete; rounds using a missing rank will fail", "error", err)
	}
	return s, nil
}

// recover tries the store's backup before falling back to defaults.
func (s *Session) recover(ctx context.Context) (*ledger.Ledger, error) {
	if bs, ok := s.store.(BackupStore); ok {
		data, found, err := bs.LoadBackup(ctx, s.key)
		if err != nil {
			return nil, fmt.Errorf("load session backup: %w", err)
		}
		if found {
			l, err := s.restore(data)
			if err == nil {
				s.logger.Warn("restored previous session snapshot", "key", s.key)
				return l, nil
			}
			s.logger.Warn("session backup is unreadable", "key", s.key, "error", err)
		}
	}
	s.logger.Warn("starting from default settings", "key", s.key)
	return s.fresh()
}

func (s *Session) restore(data []byte) (*ledger.Ledger, error) {
	state, err := Decode(data)
	if err != nil {
		return nil, err
	}
	l, err := ledger.Restore(state, s.ledgerOptions()...)
	if err != nil {
		return nil, score.Newf(score.CodeCorruptState, "restore snapshot: %v", err)
	}
	return l, nil
}

func (s *Session) fresh() (*ledger.Ledger, error) {
	opts := append(s.ledgerOptions(), ledger.WithRetention(s.cfg.Retention))
	l, err := ledger.New(s.cfg.Roster(), s.cfg.Rules, opts...)
	if err != nil {
		return nil, fmt.Errorf("new session: %w", err)
	}
	return l, nil
}

func (s *Session) ledgerOptions() []ledger.Option {
	return []ledger.Option{ledger.WithClock(s.clock), ledger.WithIDGenerator(s.ids)}
}

// Notice reports why stored data was discarded when the session opened,
// or nil. It is always a CORRUPT_STATE error.
func (s *Session) Notice() error {
	return s.notice
}

// Save writes the current snapshot without mutating anything.
func (s *Session) Save(ctx context.Context) error {
	data, err := Encode(s.ledger.State())
	if err != nil {
		return err
	}
	if err := s.store.Save(ctx, s.key, data); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// mutate applies fn and saves. If fn fails nothing changes; if the save
// fails the ledger is rolled back to its state before fn.
func (s *Session) mutate(ctx context.Context, op string, fn func(l *ledger.Ledger) error) error {
	before := s.ledger.State()
	if err := fn(s.ledger); err != nil {
		s.logger.Debug("operation rejected", "op", op, "error", err)
		return err
	}
	if err := s.Save(ctx); err != nil {
		restored, rerr := ledger.Restore(before, s.ledgerOptions()...)
		if rerr != nil {
			return errors.Join(err, rerr)
		}
		s.ledger = restored
		return err
	}
	s.logger.Debug("operation saved", "op", op, "played", s.ledger.Played())
	return nil
}

// Configure changes roster size and game count.
func (s *Session) Configure(ctx context.Context, roster score.RosterConfig) error {
	return s.mutate(ctx, "configure", func(l *ledger.Ledger) error {
		return l.Configure(roster)
	})
}

// SetRules replaces the scoring rules for future rounds.
func (s *Session) SetRules(ctx context.Context, rules score.Rules) error {
	err := s.mutate(ctx, "rules", func(l *ledger.Ledger) error {
		return l.SetRules(rules)
	})
	if err == nil {
		if cerr := rules.Complete(); cerr != nil {
			s.logger.Warn("scoring rules are incomplete; rounds using a missing rank will fail", "error", cerr)
		}
	}
	return err
}

// SetRetention changes how many rounds are kept in detail.
func (s *Session) SetRetention(ctx context.Context, n int) error {
	return s.mutate(ctx, "retention", func(l *ledger.Ledger) error {
		return l.SetRetention(n)
	})
}

// Register starts a new roster and clears any rounds.
func (s *Session) Register(ctx context.Context, names []string) error {
	return s.mutate(ctx, "register", func(l *ledger.Ledger) error {
		return l.Register(names)
	})
}

// Rename renames players by slot, carrying their points and history.
func (s *Session) Rename(ctx context.Context, names []string) error {
	return s.mutate(ctx, "rename", func(l *ledger.Ledger) error {
		return l.RenamePlayers(names)
	})
}

// AddRound scores one round from one raw token per player.
func (s *Session) AddRound(ctx context.Context, tokens []string) (ledger.Round, error) {
	var round ledger.Round
	err := s.mutate(ctx, "round", func(l *ledger.Ledger) error {
		var err error
		round, err = l.ApplyRound(tokens)
		return err
	})
	if err != nil {
		return ledger.Round{}, err
	}
	return round, nil
}

// UndoLast removes the most recent round.
func (s *Session) UndoLast(ctx context.Context) (ledger.Round, error) {
	var round ledger.Round
	err := s.mutate(ctx, "undo", func(l *ledger.Ledger) error {
		var err error
		round, err = l.UndoLast()
		return err
	})
	if err != nil {
		return ledger.Round{}, err
	}
	return round, nil
}

// Reset discards the session and starts over from the configured defaults.
func (s *Session) Reset(ctx context.Context) error {
	return s.mutate(ctx, "reset", func(l *ledger.Ledger) error {
		fresh, err := s.fresh()
		if err != nil {
			return err
		}
		*l = *fresh
		return nil
	})
}

// Roster returns the current roster configuration.
func (s *Session) Roster() score.RosterConfig { return s.ledger.Roster() }

// Rules returns the current scoring rules.
func (s *Session) Rules() score.Rules { return s.ledger.Rules() }

// Retention returns the current retention cap.
func (s *Session) Retention() int { return s.ledger.Retention() }

// Players returns the registered names in slot order.
func (s *Session) Players() []string { return s.ledger.Players() }

// Totals returns every player's running total.
func (s *Session) Totals() map[string]int { return s.ledger.Totals() }

// History returns the retained rounds, oldest first.
func (s *Session) History() []ledger.Round { return s.ledger.History() }

// Played returns the number of rounds played, including trimmed ones.
func (s *Session) Played() int { return s.ledger.Played() }

// Summaries summarizes every registered player from retained history.
func (s *Session) Summaries() map[string]aggregate.PlayerSummary {
	return aggregate.Summarize(s.ledger.Players(), s.ledger.History())
}

// Board returns the in-session progress view.
func (s *Session) Board() aggregate.Board {
	return aggregate.NewBoard(s.ledger)
}

// Settle builds the settlement as of now.
func (s *Session) Settle() aggregate.Settlement {
	return aggregate.Settle(s.clock.Now(), s.ledger)
}

// Check verifies the running totals against history.
func (s *Session) Check() error {
	if err := s.ledger.CheckInvariant(); err != nil {
		return err
	}
	return aggregate.Reconcile(s.ledger)
}
