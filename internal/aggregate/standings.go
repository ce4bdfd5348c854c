package aggregate

import (
	"sort"

	"github.com/roach88/racetally/internal/ledger"
)

// Standing is one row of the session ranking.
type Standing struct {
	Place          int    `json:"place"`
	Name           string `json:"name"`
	Total          int    `json:"total"`
	DiffFromLeader int    `json:"diff_from_leader"`
}

// Standings ranks roster by total, highest first.
//
// Equal totals keep registration order. The leader's DiffFromLeader is 0;
// everyone else's is their total minus the leader's (never positive).
func Standings(roster []string, totals map[string]int) []Standing {
	rows := make([]Standing, len(roster))
	for i, name := range roster {
		rows[i] = Standing{Name: name, Total: totals[name]}
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })

	for i := range rows {
		rows[i].Place = i + 1
		if i > 0 {
			rows[i].DiffFromLeader = rows[i].Total - rows[0].Total
		}
	}
	return rows
}

// BaselinePerGame is the combined score a table is measured against per game.
const BaselinePerGame = 1000

// RecentRounds is how many rounds the board lists.
const RecentRounds = 5

// Board is the in-session progress view.
type Board struct {
	Played        int            `json:"played"`
	TotalGames    int            `json:"total_games"`
	Remaining     int            `json:"remaining"`
	CombinedTotal int            `json:"combined_total"`
	Baseline      int            `json:"baseline"`
	BaselineDiff  int            `json:"baseline_diff"`
	Standings     []Standing     `json:"standings"`
	Recent        []ledger.Round `json:"recent"`
}

// NewBoard builds the board for the ledger's current state.
// Recent lists up to RecentRounds rounds, newest first.
func NewBoard(l *ledger.Ledger) Board {
	players := l.Players()
	totals := l.Totals()

	b := Board{
		Played:     l.Played(),
		TotalGames: l.Roster().TotalGames,
		Remaining:  l.Remaining(),
		Standings:  Standings(players, totals),
	}
	for _, name := range players {
		b.CombinedTotal += totals[name]
	}
	b.Baseline = BaselinePerGame * b.Played
	b.BaselineDiff = b.CombinedTotal - b.Baseline

	history := l.History()
	for i := len(history) - 1; i >= 0 && len(b.Recent) < RecentRounds; i-- {
		b.Recent = append(b.Recent, history[i])
	}
	return b
}
