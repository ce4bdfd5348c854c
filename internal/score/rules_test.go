package score

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRules_Score(t *testing.T) {
	rules := DefaultRules()

	tests := []struct {
		name    string
		outcome Outcome
		want    int
	}{
		{"goal first", Outcome{Rank: 1}, 288},
		{"goal last", Outcome{Rank: 8}, 162},
		{"retired second", Outcome{Rank: 2, Retired: true}, 135},
		{"retired fourth", Outcome{Rank: 4, Retired: true}, 116},
		{"dnf ignores rank", Outcome{Rank: 1, DNF: true}, 0},
		{"dnf with retired flag", Outcome{Rank: 1, DNF: true, Retired: true}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := rules.Score(tt.outcome)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRules_ScoreWithBonus(t *testing.T) {
	rules := DefaultRules()
	rules.GoalBonus = 10
	rules.RetiredBonus = 5
	rules.DNF = -20
	rules.DNFBonus = 3

	got, err := rules.Score(Outcome{Rank: 1})
	require.NoError(t, err)
	assert.Equal(t, 298, got)

	got, err = rules.Score(Outcome{Rank: 1, Retired: true})
	require.NoError(t, err)
	assert.Equal(t, 149, got)

	got, err = rules.Score(Outcome{Rank: 5, DNF: true})
	require.NoError(t, err)
	assert.Equal(t, -17, got)
}

func TestRules_ScoreMissingEntry(t *testing.T) {
	rules := DefaultRules()
	delete(rules.Goal, 3)
	delete(rules.Retired, 7)

	_, err := rules.Score(Outcome{Rank: 3})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeConfigError))
	assert.Contains(t, err.Error(), "goal table has no entry for rank 3")

	_, err = rules.Score(Outcome{Rank: 7, Retired: true})
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeConfigError))

	// DNF never consults a table.
	_, err = rules.Score(Outcome{Rank: 3, DNF: true})
	assert.NoError(t, err)
}

func TestRules_Validate(t *testing.T) {
	assert.NoError(t, DefaultRules().Validate())

	partial := Rules{Goal: PointTable{1: 288, 2: 270}, Retired: PointTable{1: 144, 2: 135}}
	assert.NoError(t, partial.Validate())

	extra := DefaultRules()
	extra.Goal[9] = 1
	err := extra.Validate()
	require.Error(t, err)
	assert.True(t, IsCode(err, CodeConfigError))
	assert.Contains(t, err.Error(), "out-of-range rank 9")
}

func TestRules_Complete(t *testing.T) {
	assert.NoError(t, DefaultRules().Complete())

	missing := DefaultRules()
	delete(missing.Retired, 8)
	err := missing.Complete()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retired table has no entry for rank 8")
}

func TestRules_CloneIsDeep(t *testing.T) {
	orig := DefaultRules()
	c := orig.Clone()
	c.Goal[1] = 1

	assert.Equal(t, 288, orig.Goal[1])
}

func TestRosterConfig_Validate(t *testing.T) {
	assert.NoError(t, DefaultRosterConfig().Validate())
	assert.NoError(t, RosterConfig{RosterSize: 2, TotalGames: 1}.Validate())
	assert.NoError(t, RosterConfig{RosterSize: 8, TotalGames: 999}.Validate())

	bad := []RosterConfig{
		{RosterSize: 1, TotalGames: 30},
		{RosterSize: 9, TotalGames: 30},
		{RosterSize: 4, TotalGames: 0},
		{RosterSize: 4, TotalGames: 1000},
	}
	for _, c := range bad {
		err := c.Validate()
		assert.True(t, IsCode(err, CodeConfigError), "config %+v", c)
	}
}
