package ledger

import (
	"github.com/roach88/racetally/internal/score"
)

// RenamePlayers replaces the roster, mapping slot i of the current roster to
// slot i of newRoster.
//
// Totals, carried amounts and every recorded delta are re-keyed with the
// same mapping. Amounts that land on the same new name are summed, and a
// new name with no prior total starts at 0, so the totals invariant still
// holds afterwards.
func (l *Ledger) RenamePlayers(newRoster []string) error {
	if !l.Registered() {
		return score.Newf(score.CodeNotRegistered, "no registered roster to rename")
	}
	newRoster = trimAll(newRoster)
	if len(newRoster) != len(l.state.Players) {
		return score.Newf(score.CodeNotRegistered, "expected %d names, got %d", len(l.state.Players), len(newRoster))
	}
	seen := make(map[string]bool, len(newRoster))
	for i, n := range newRoster {
		if n == "" {
			return &score.Error{Code: score.CodeNotRegistered, Message: "player name is empty", Slot: i + 1}
		}
		if seen[n] {
			return &score.Error{Code: score.CodeDuplicateName, Message: "name appears more than once", Slot: i + 1, Player: n}
		}
		seen[n] = true
	}

	mapping := make(map[string]string, len(newRoster))
	for i, old := range l.state.Players {
		mapping[old] = newRoster[i]
	}

	totals := remap(l.state.Totals, mapping)
	for _, n := range newRoster {
		if _, ok := totals[n]; !ok {
			totals[n] = 0
		}
	}
	l.state.Totals = totals
	l.state.Carried = remap(l.state.Carried, mapping)
	for i := range l.state.History {
		l.state.History[i].Delta = remap(l.state.History[i].Delta, mapping)
	}
	l.state.Players = newRoster
	return nil
}

// remap re-keys m through mapping, summing values that collide.
// Keys absent from mapping keep their name.
func remap(m map[string]int, mapping map[string]string) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		if n, ok := mapping[k]; ok {
			k = n
		}
		out[k] += v
	}
	return out
}
