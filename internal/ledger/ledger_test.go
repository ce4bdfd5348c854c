package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/racetally/internal/score"
)

func TestLedger_TwoPlayerScenario(t *testing.T) {
	l := createTestLedger(t, score.RosterConfig{RosterSize: 2, TotalGames: 30}, twoPlayerRules())
	require.NoError(t, l.Register([]string{"A", "B"}))

	r1, err := l.ApplyRound([]string{"1", "2re"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 288, "B": 135}, r1.Delta)
	assert.Equal(t, map[string]int{"A": 288, "B": 135}, l.Totals())

	r2, err := l.ApplyRound([]string{"2", "1x"})
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 270, "B": 0}, r2.Delta)
	assert.Equal(t, map[string]int{"A": 558, "B": 135}, l.Totals())
	assert.Equal(t, score.Outcome{Rank: 1, DNF: true}, r2.Outcomes[1])

	undone, err := l.UndoLast()
	require.NoError(t, err)
	assert.Equal(t, r2.ID, undone.ID)
	assert.Equal(t, map[string]int{"A": 288, "B": 135}, l.Totals())
	assert.Len(t, l.History(), 1)
	requireInvariant(t, l)
}

func TestLedger_ApplyRoundRecordsRound(t *testing.T) {
	l := registeredLedger(t, 30, "A", "B", "C")

	r, err := l.ApplyRound([]string{" 1 ", "2리", "3X"})
	require.NoError(t, err)

	assert.Equal(t, "r-1", r.ID)
	assert.Equal(t, "2026-01-01T09:01:00", r.Timestamp)
	assert.Equal(t, []string{"1", "2리", "3X"}, r.Tokens)
	assert.Equal(t, []score.Outcome{{Rank: 1}, {Rank: 2, Retired: true}, {Rank: 3, DNF: true}}, r.Outcomes)
	assert.Equal(t, map[string]int{"A": 288, "B": 135, "C": 0}, r.Delta)
	assert.Equal(t, 1, l.Played())
	assert.Equal(t, 29, l.Remaining())
}

func TestLedger_ApplyThenUndoRestoresState(t *testing.T) {
	l := registeredLedger(t, 30, "A", "B", "C", "D")
	_, err := l.ApplyRound([]string{"4", "3", "2", "1"})
	require.NoError(t, err)

	rounds := [][]string{
		{"1", "2", "3", "4"},
		{"8x", "1re", "5", "2"},
		{"3re", "4x", "6리", "7"},
	}
	for _, tokens := range rounds {
		before := l.State()

		_, err := l.ApplyRound(tokens)
		require.NoError(t, err)
		_, err = l.UndoLast()
		require.NoError(t, err)

		assert.Equal(t, before, l.State(), "tokens %v", tokens)
	}
}

func TestLedger_RankCollisionLeavesStateUntouched(t *testing.T) {
	l := registeredLedger(t, 30, "A", "B")
	before := l.State()

	_, err := l.ApplyRound([]string{"1", "1"})
	require.Error(t, err)

	var rc *score.RankCollisionError
	require.ErrorAs(t, err, &rc)
	assert.Equal(t, []score.RankGroup{{Rank: 1, Players: []string{"A", "B"}}}, rc.Groups)
	assert.Equal(t, before, l.State())
}

func TestLedger_InvalidTokenReportsSlot(t *testing.T) {
	l := registeredLedger(t, 30, "A", "B", "C")
	before := l.State()

	_, err := l.ApplyRound([]string{"1", "9", "abc"})
	require.Error(t, err)

	var se *score.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, score.CodeInvalidToken, se.Code)
	assert.Equal(t, 2, se.Slot)
	assert.Equal(t, "B", se.Player)
	assert.Equal(t, "9", se.Token)
	assert.Equal(t, before, l.State())
}

func TestLedger_MissingScoreEntryLeavesStateUntouched(t *testing.T) {
	l := createTestLedger(t, score.RosterConfig{RosterSize: 2, TotalGames: 30}, twoPlayerRules())
	require.NoError(t, l.Register([]string{"A", "B"}))
	before := l.State()

	_, err := l.ApplyRound([]string{"1", "3"})
	require.Error(t, err)

	var se *score.Error
	require.ErrorAs(t, err, &se)
	assert.Equal(t, score.CodeConfigError, se.Code)
	assert.Equal(t, 2, se.Slot)
	assert.Equal(t, before, l.State())
}

func TestLedger_TokenCountMismatch(t *testing.T) {
	l := registeredLedger(t, 30, "A", "B")

	_, err := l.ApplyRound([]string{"1"})
	assert.True(t, score.IsCode(err, score.CodeInvalidToken))
	assert.Empty(t, l.History())
}

func TestLedger_NotRegistered(t *testing.T) {
	l := createTestLedger(t, score.RosterConfig{RosterSize: 2, TotalGames: 30}, score.DefaultRules())

	_, err := l.ApplyRound([]string{"1", "2"})
	assert.True(t, score.IsCode(err, score.CodeNotRegistered))
}

func TestLedger_RegisterRejectsBadRosters(t *testing.T) {
	tests := []struct {
		name  string
		names []string
	}{
		{"empty name", []string{"A", ""}},
		{"blank name", []string{"A", "   "}},
		{"duplicate", []string{"A", "A"}},
		{"too few", []string{"A"}},
		{"too many", []string{"A", "B", "C"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := createTestLedger(t, score.RosterConfig{RosterSize: 2, TotalGames: 30}, score.DefaultRules())
			err := l.Register(tt.names)
			assert.True(t, score.IsCode(err, score.CodeNotRegistered), "got %v", err)
			assert.False(t, l.Registered())

			_, err = l.ApplyRound([]string{"1", "2"})
			assert.True(t, score.IsCode(err, score.CodeNotRegistered))
		})
	}
}

func TestLedger_RegisterIsCaseSensitive(t *testing.T) {
	l := createTestLedger(t, score.RosterConfig{RosterSize: 2, TotalGames: 30}, score.DefaultRules())
	require.NoError(t, l.Register([]string{"kim", "Kim"}))
	assert.True(t, l.Registered())
}

func TestLedger_RegisterClearsHistory(t *testing.T) {
	l := registeredLedger(t, 30, "A", "B")
	_, err := l.ApplyRound([]string{"1", "2"})
	require.NoError(t, err)

	require.NoError(t, l.Register([]string{"C", "D"}))

	assert.Empty(t, l.History())
	assert.Equal(t, map[string]int{"C": 0, "D": 0}, l.Totals())
}

func TestLedger_SessionComplete(t *testing.T) {
	l := registeredLedger(t, 1, "A", "B")

	_, err := l.ApplyRound([]string{"1", "2"})
	require.NoError(t, err)
	assert.Equal(t, 0, l.Remaining())

	_, err = l.ApplyRound([]string{"2", "1"})
	assert.True(t, score.IsCode(err, score.CodeSessionComplete))
	assert.Len(t, l.History(), 1)
}

func TestLedger_UndoEmptyHistory(t *testing.T) {
	l := registeredLedger(t, 30, "A", "B")

	_, err := l.UndoLast()
	assert.True(t, score.IsCode(err, score.CodeEmptyHistory))
}

func TestLedger_UndoUsesRecordedDelta(t *testing.T) {
	l := registeredLedger(t, 30, "A", "B")
	_, err := l.ApplyRound([]string{"1", "2"})
	require.NoError(t, err)

	rules := score.DefaultRules()
	rules.Goal[1] = 1000
	require.NoError(t, l.SetRules(rules))

	_, err = l.UndoLast()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 0, "B": 0}, l.Totals())
}

func TestLedger_UndoRepeatsLIFO(t *testing.T) {
	l := registeredLedger(t, 30, "A", "B")
	_, err := l.ApplyRound([]string{"1", "2"})
	require.NoError(t, err)
	_, err = l.ApplyRound([]string{"2", "1"})
	require.NoError(t, err)

	r, err := l.UndoLast()
	require.NoError(t, err)
	assert.Equal(t, "r-2", r.ID)
	r, err = l.UndoLast()
	require.NoError(t, err)
	assert.Equal(t, "r-1", r.ID)

	assert.Equal(t, map[string]int{"A": 0, "B": 0}, l.Totals())
	_, err = l.UndoLast()
	assert.True(t, score.IsCode(err, score.CodeEmptyHistory))
}

func TestLedger_RetentionKeepsTotalsAuthoritative(t *testing.T) {
	l := createTestLedger(t, score.RosterConfig{RosterSize: 2, TotalGames: 30}, score.DefaultRules(), WithRetention(2))
	require.NoError(t, l.Register([]string{"A", "B"}))

	for _, tokens := range [][]string{{"1", "2"}, {"2", "1"}, {"1", "2re"}} {
		_, err := l.ApplyRound(tokens)
		require.NoError(t, err)
	}

	assert.Len(t, l.History(), 2)
	assert.Equal(t, "r-2", l.History()[0].ID)
	assert.Equal(t, 3, l.Played())
	assert.Equal(t, map[string]int{"A": 288 + 270 + 288, "B": 270 + 288 + 135}, l.Totals())
	requireInvariant(t, l)

	_, err := l.UndoLast()
	require.NoError(t, err)
	_, err = l.UndoLast()
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"A": 288, "B": 270}, l.Totals())
	assert.Equal(t, 1, l.Played())
	requireInvariant(t, l)

	_, err = l.UndoLast()
	assert.True(t, score.IsCode(err, score.CodeEmptyHistory))
}

func TestLedger_SetRetentionTrims(t *testing.T) {
	l := registeredLedger(t, 30, "A", "B")
	for i := 0; i < 4; i++ {
		_, err := l.ApplyRound([]string{"1", "2"})
		require.NoError(t, err)
	}

	require.NoError(t, l.SetRetention(1))
	assert.Len(t, l.History(), 1)
	assert.Equal(t, 4, l.Played())
	requireInvariant(t, l)

	assert.Error(t, l.SetRetention(-1))
}

func TestLedger_Configure(t *testing.T) {
	l := createTestLedger(t, score.RosterConfig{RosterSize: 2, TotalGames: 30}, score.DefaultRules())

	require.NoError(t, l.Configure(score.RosterConfig{RosterSize: 3, TotalGames: 10}))
	require.NoError(t, l.Register([]string{"A", "B", "C"}))

	err := l.Configure(score.RosterConfig{RosterSize: 4, TotalGames: 10})
	assert.True(t, score.IsCode(err, score.CodeConfigError))
	assert.Contains(t, err.Error(), "locked")

	require.NoError(t, l.Configure(score.RosterConfig{RosterSize: 3, TotalGames: 5}))
	for i := 0; i < 3; i++ {
		_, err := l.ApplyRound([]string{"1", "2", "3"})
		require.NoError(t, err)
	}
	err = l.Configure(score.RosterConfig{RosterSize: 3, TotalGames: 2})
	assert.True(t, score.IsCode(err, score.CodeConfigError))

	err = l.Configure(score.RosterConfig{RosterSize: 9, TotalGames: 5})
	assert.True(t, score.IsCode(err, score.CodeConfigError))
	assert.Equal(t, score.RosterConfig{RosterSize: 3, TotalGames: 5}, l.Roster())
}

func TestLedger_Reset(t *testing.T) {
	l := registeredLedger(t, 30, "A", "B")
	_, err := l.ApplyRound([]string{"1", "2"})
	require.NoError(t, err)

	l.Reset()

	assert.False(t, l.Registered())
	assert.Empty(t, l.Players())
	assert.Empty(t, l.Totals())
	assert.Empty(t, l.History())
	assert.Equal(t, 0, l.Played())
	require.NoError(t, l.Configure(score.RosterConfig{RosterSize: 5, TotalGames: 30}))
}

func TestLedger_ReturnedRoundsAreCopies(t *testing.T) {
	l := registeredLedger(t, 30, "A", "B")
	r, err := l.ApplyRound([]string{"1", "2"})
	require.NoError(t, err)

	r.Delta["A"] = 0
	r.Tokens[0] = "8"

	h := l.History()
	assert.Equal(t, 288, h[0].Delta["A"])
	assert.Equal(t, "1", h[0].Tokens[0])
}

func TestRestore_RoundTrip(t *testing.T) {
	l := registeredLedger(t, 30, "A", "B")
	_, err := l.ApplyRound([]string{"1", "2re"})
	require.NoError(t, err)

	restored, err := Restore(l.State())
	require.NoError(t, err)
	assert.Equal(t, l.State(), restored.State())
}

func TestRestore_RejectsCorruptState(t *testing.T) {
	base := func() State {
		l := registeredLedger(t, 30, "A", "B")
		_, err := l.ApplyRound([]string{"1", "2"})
		require.NoError(t, err)
		return l.State()
	}

	tests := []struct {
		name   string
		mutate func(*State)
		code   score.ErrorCode
	}{
		{"total drift", func(s *State) { s.Totals["A"]++ }, score.CodeCorruptState},
		{"roster size mismatch", func(s *State) { s.Players = []string{"A"} }, score.CodeCorruptState},
		{"history without players", func(s *State) { s.Players = nil }, score.CodeCorruptState},
		{"short round", func(s *State) { s.History[0].Outcomes = s.History[0].Outcomes[:1] }, score.CodeCorruptState},
		{"bad rank", func(s *State) { s.History[0].Outcomes[0].Rank = 12 }, score.CodeCorruptState},
		{"too many rounds", func(s *State) { s.Roster.TotalGames = 1; s.Trimmed = 1 }, score.CodeCorruptState},
		{"bad roster", func(s *State) { s.Roster.RosterSize = 1 }, score.CodeConfigError},
		{"negative retention", func(s *State) { s.Retention = -3 }, score.CodeConfigError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(&s)
			_, err := Restore(s)
			require.Error(t, err)
			assert.Equal(t, tt.code, score.CodeOf(err), "got %v", err)
		})
	}
}
