package aggregate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/roach88/racetally/internal/ledger"
	"github.com/roach88/racetally/internal/score"
)

// NoData is the sequence shown for a player with no recorded rounds.
const NoData = "-"

// PlayerSummary describes one player's session from history alone.
type PlayerSummary struct {
	Name         string `json:"name"`
	Rounds       int    `json:"rounds"`
	Total        int    `json:"total"`
	BestRank     int    `json:"best_rank"`
	BestCount    int    `json:"best_count"`
	GoalCount    int    `json:"goal_count"`
	RetiredCount int    `json:"retired_count"`
	DNFCount     int    `json:"dnf_count"`
	Sequence     string `json:"sequence"`
}

// Summarize scans history in order and summarizes every player on roster.
//
// A player's outcome in a round is the one at their roster slot. Rounds
// whose delta does not mention the player are skipped. BestRank is 0 when
// the player has no rounds.
func Summarize(roster []string, history []ledger.Round) map[string]PlayerSummary {
	out := make(map[string]PlayerSummary, len(roster))
	for slot, name := range roster {
		s := PlayerSummary{Name: name}
		counts := make(map[score.Outcome]int)

		for _, r := range history {
			pts, ok := r.Delta[name]
			if !ok || slot >= len(r.Outcomes) {
				continue
			}
			o := r.Outcomes[slot]
			s.Rounds++
			s.Total += pts

			switch o.Category() {
			case score.CategoryDNF:
				s.DNFCount++
			case score.CategoryRetired:
				s.RetiredCount++
			default:
				s.GoalCount++
			}

			switch {
			case s.BestRank == 0 || o.Rank < s.BestRank:
				s.BestRank = o.Rank
				s.BestCount = 1
			case o.Rank == s.BestRank:
				s.BestCount++
			}

			// Key on the category alone so stray flags collapse.
			counts[canonical(o)]++
		}

		s.Sequence = sequence(counts)
		out[name] = s
	}
	return out
}

// canonical strips the retired flag from DNF outcomes.
func canonical(o score.Outcome) score.Outcome {
	if o.DNF {
		o.Retired = false
	}
	return o
}

// sequence renders rank counts as "1:3, 4:1, 2re:1, 6x:2": goal, then
// retired, then DNF, ranks ascending within each.
func sequence(counts map[score.Outcome]int) string {
	if len(counts) == 0 {
		return NoData
	}

	keys := make([]score.Outcome, 0, len(counts))
	for o := range counts {
		keys = append(keys, o)
	}
	order := map[score.Category]int{}
	for i, c := range score.Categories {
		order[c] = i
	}
	sort.Slice(keys, func(i, j int) bool {
		ci, cj := order[keys[i].Category()], order[keys[j].Category()]
		if ci != cj {
			return ci < cj
		}
		return keys[i].Rank < keys[j].Rank
	})

	parts := make([]string, len(keys))
	for i, o := range keys {
		parts[i] = fmt.Sprintf("%s:%d", o, counts[o])
	}
	return strings.Join(parts, ", ")
}
