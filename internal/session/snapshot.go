package session

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/racetally/internal/ledger"
	"github.com/roach88/racetally/internal/score"
)

// SnapshotVersion is the layout version written by Encode.
const SnapshotVersion = 1

// Settings is the configuration part of a snapshot.
type Settings struct {
	RosterSize int         `json:"roster_size"`
	TotalGames int         `json:"total_games"`
	Retention  int         `json:"retention"`
	Rules      score.Rules `json:"rules"`
}

// Snapshot is the persisted form of a ledger.
type Snapshot struct {
	Version  int            `json:"version"`
	Settings Settings       `json:"settings"`
	Players  []string       `json:"players"`
	Totals   map[string]int `json:"totals"`
	Carried  map[string]int `json:"carried,omitempty"`
	Trimmed  int            `json:"trimmed,omitempty"`
	History  []ledger.Round `json:"history"`
}

// NewSnapshot captures a ledger state.
func NewSnapshot(state ledger.State) Snapshot {
	snap := Snapshot{
		Version: SnapshotVersion,
		Settings: Settings{
			RosterSize: state.Roster.RosterSize,
			TotalGames: state.Roster.TotalGames,
			Retention:  state.Retention,
			Rules:      state.Rules,
		},
		Players: state.Players,
		Totals:  state.Totals,
		Trimmed: state.Trimmed,
		History: state.History,
	}
	if len(state.Carried) > 0 {
		snap.Carried = state.Carried
	}
	if snap.Players == nil {
		snap.Players = []string{}
	}
	if snap.Totals == nil {
		snap.Totals = map[string]int{}
	}
	if snap.History == nil {
		snap.History = []ledger.Round{}
	}
	return snap
}

// State converts the snapshot back to ledger state. It does not validate;
// ledger.Restore does.
func (s Snapshot) State() ledger.State {
	return ledger.State{
		Roster: score.RosterConfig{
			RosterSize: s.Settings.RosterSize,
			TotalGames: s.Settings.TotalGames,
		},
		Rules:     s.Settings.Rules,
		Retention: s.Settings.Retention,
		Players:   s.Players,
		Totals:    s.Totals,
		Carried:   s.Carried,
		Trimmed:   s.Trimmed,
		History:   s.History,
	}
}

// Encode serializes a ledger state as a versioned JSON snapshot.
func Encode(state ledger.State) ([]byte, error) {
	data, err := json.Marshal(NewSnapshot(state))
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return data, nil
}

// Decode parses a snapshot. Malformed JSON and unknown versions are
// CORRUPT_STATE.
func Decode(data []byte) (ledger.State, error) {
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return ledger.State{}, score.Newf(score.CodeCorruptState, "decode snapshot: %v", err)
	}
	if snap.Version != SnapshotVersion {
		return ledger.State{}, score.Newf(score.CodeCorruptState, "unsupported snapshot version %d", snap.Version)
	}
	return snap.State(), nil
}
