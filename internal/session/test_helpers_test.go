package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/racetally/internal/config"
	"github.com/roach88/racetally/internal/store"
	"github.com/roach88/racetally/internal/testutil"
)

// twoPlayerConfig is a two-player, three-game config with default rules.
func twoPlayerConfig() config.Config {
	cfg := config.Default()
	cfg.RosterSize = 2
	cfg.TotalGames = 3
	return cfg
}

// openTestSession opens a session over st with deterministic time and IDs.
func openTestSession(t *testing.T, st BlobStore, cfg config.Config) *Session {
	t.Helper()
	s, err := Open(context.Background(), st, cfg,
		WithClock(testutil.NewDeterministicClock()),
		WithIDGenerator(testutil.NewSequenceGenerator("r")),
	)
	require.NoError(t, err)
	return s
}

// playedSession returns a memory-backed session with A and B registered
// and one round applied.
func playedSession(t *testing.T) (*Session, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	s := openTestSession(t, mem, twoPlayerConfig())
	ctx := context.Background()
	require.NoError(t, s.Register(ctx, []string{"A", "B"}))
	_, err := s.AddRound(ctx, []string{"1", "2re"})
	require.NoError(t, err)
	return s, mem
}
