package score

import "fmt"

// Rank and roster bounds.
const (
	MinRank = 1
	MaxRank = 8

	MinRosterSize = 2
	MaxRosterSize = 8

	MinTotalGames = 1
	MaxTotalGames = 999
)

// Category classifies how a player finished a round.
type Category string

const (
	// CategoryGoal is a normal finish scored from the goal table.
	CategoryGoal Category = "goal"

	// CategoryRetired is a penalized finish scored from the retired table.
	CategoryRetired Category = "retired"

	// CategoryDNF is a did-not-finish scored with a flat value.
	CategoryDNF Category = "dnf"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryGoal, CategoryRetired, CategoryDNF}

// Outcome is one player's parsed result for one round.
//
// Rank is kept for DNF outcomes as well so it can be displayed, but DNF
// scoring ignores it.
type Outcome struct {
	Rank    int  `json:"rank"`
	Retired bool `json:"retired"`
	DNF     bool `json:"dnf"`
}

// Category returns the single category that applies to the outcome.
func (o Outcome) Category() Category {
	switch {
	case o.DNF:
		return CategoryDNF
	case o.Retired:
		return CategoryRetired
	default:
		return CategoryGoal
	}
}

// String renders the outcome in token form ("3", "3re", "3x").
func (o Outcome) String() string {
	switch o.Category() {
	case CategoryDNF:
		return fmt.Sprintf("%dx", o.Rank)
	case CategoryRetired:
		return fmt.Sprintf("%dre", o.Rank)
	default:
		return fmt.Sprintf("%d", o.Rank)
	}
}

// RosterConfig fixes the shape of a session.
type RosterConfig struct {
	RosterSize int `json:"roster_size" yaml:"roster_size"`
	TotalGames int `json:"total_games" yaml:"total_games"`
}

// DefaultRosterConfig returns four players over thirty games.
func DefaultRosterConfig() RosterConfig {
	return RosterConfig{RosterSize: 4, TotalGames: 30}
}

// Validate checks both bounds.
func (c RosterConfig) Validate() error {
	if c.RosterSize < MinRosterSize || c.RosterSize > MaxRosterSize {
		return Newf(CodeConfigError, "roster size must be %d-%d, got %d", MinRosterSize, MaxRosterSize, c.RosterSize)
	}
	if c.TotalGames < MinTotalGames || c.TotalGames > MaxTotalGames {
		return Newf(CodeConfigError, "total games must be %d-%d, got %d", MinTotalGames, MaxTotalGames, c.TotalGames)
	}
	return nil
}
