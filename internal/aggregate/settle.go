package aggregate

import (
	"time"

	"github.com/roach88/racetally/internal/ledger"
	"github.com/roach88/racetally/internal/score"
)

// SettlementLine is one player's entry on the settlement sheet.
type SettlementLine struct {
	Place     int    `json:"place"`
	Name      string `json:"name"`
	Summary   string `json:"summary"`
	Total     int    `json:"total"`
	BestRank  int    `json:"best_rank"`
	BestCount int    `json:"best_count"`
}

// Settlement is the end-of-session summary, ordered like Standings.
type Settlement struct {
	At         string           `json:"at"`
	Played     int              `json:"played"`
	TotalGames int              `json:"total_games"`
	Complete   bool             `json:"complete"`
	Lines      []SettlementLine `json:"lines"`
}

// Settle builds the settlement for the ledger as of at.
//
// Totals come from the ledger so that rounds dropped by retention still
// count; summaries come from the retained history.
func Settle(at time.Time, l *ledger.Ledger) Settlement {
	players := l.Players()
	summaries := Summarize(players, l.History())

	s := Settlement{
		At:         at.UTC().Format(ledger.TimestampLayout),
		Played:     l.Played(),
		TotalGames: l.Roster().TotalGames,
		Complete:   l.Played() >= l.Roster().TotalGames,
	}
	for _, st := range Standings(players, l.Totals()) {
		sum := summaries[st.Name]
		s.Lines = append(s.Lines, SettlementLine{
			Place:     st.Place,
			Name:      st.Name,
			Summary:   sum.Sequence,
			Total:     st.Total,
			BestRank:  sum.BestRank,
			BestCount: sum.BestCount,
		})
	}
	return s
}

// Reconcile recomputes every player's total from history and compares it
// with the ledger's running total.
func Reconcile(l *ledger.Ledger) error {
	state := l.State()
	summaries := Summarize(state.Players, state.History)
	for _, name := range state.Players {
		want := summaries[name].Total + state.Carried[name]
		if got := state.Totals[name]; got != want {
			return score.Newf(score.CodeCorruptState, "total for %s is %d but history sums to %d", name, got, want)
		}
	}
	return nil
}
