package score

import "sort"

// ValidateRound checks a round's outcomes for rank collisions.
//
// names and outcomes are aligned by roster slot. Two players collide when
// they share a rank, whatever their categories: a retired 3 and a goal 3
// still collide. All colliding ranks are reported in a single
// RankCollisionError.
func ValidateRound(names []string, outcomes []Outcome) error {
	if len(names) != len(outcomes) {
		return Newf(CodeNotRegistered, "round has %d outcomes for %d players", len(outcomes), len(names))
	}

	byRank := make(map[int][]string)
	for i, o := range outcomes {
		byRank[o.Rank] = append(byRank[o.Rank], names[i])
	}

	var groups []RankGroup
	for rank, players := range byRank {
		if len(players) >= 2 {
			groups = append(groups, RankGroup{Rank: rank, Players: players})
		}
	}
	if len(groups) == 0 {
		return nil
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Rank < groups[j].Rank })
	return &RankCollisionError{Groups: groups}
}
