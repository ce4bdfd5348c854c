package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/racetally/internal/score"
	"github.com/roach88/racetally/internal/testutil"
)

// twoPlayerRules is the minimal table set used by the two-player scenarios.
func twoPlayerRules() score.Rules {
	return score.Rules{
		Goal:    score.PointTable{1: 288, 2: 270},
		Retired: score.PointTable{1: 144, 2: 135},
		DNF:     0,
	}
}

// createTestLedger creates a ledger with deterministic timestamps and IDs.
func createTestLedger(t *testing.T, roster score.RosterConfig, rules score.Rules, opts ...Option) *Ledger {
	t.Helper()
	opts = append([]Option{
		WithClock(testutil.NewDeterministicClock()),
		WithIDGenerator(testutil.NewSequenceGenerator("r")),
	}, opts...)
	l, err := New(roster, rules, opts...)
	require.NoError(t, err)
	return l
}

// registeredLedger creates a ledger with names already registered.
func registeredLedger(t *testing.T, games int, names ...string) *Ledger {
	t.Helper()
	l := createTestLedger(t, score.RosterConfig{RosterSize: len(names), TotalGames: games}, score.DefaultRules())
	require.NoError(t, l.Register(names))
	return l
}

// requireInvariant fails the test if totals drift from history.
func requireInvariant(t *testing.T, l *Ledger) {
	t.Helper()
	require.NoError(t, l.CheckInvariant())
}
