// Package harness replays scoreboard scenarios against a real session.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: two_player_undo
//	description: "Undo restores the previous totals"
//	config:
//	  roster_size: 2
//	  total_games: 3
//	steps:
//	  - action: register
//	    args: [A, B]
//	  - action: round
//	    args: ["1", "2re"]
//	    expect:
//	      delta: { A: 288, B: 135 }
//	  - action: round
//	    args: ["1", "1"]
//	    expect:
//	      error: RANK_COLLISION
//	  - action: undo
//	assertions:
//	  - type: totals
//	    totals: { A: 0, B: 0 }
//
// The optional config block is read like a config file: omitted fields keep
// their defaults and unknown fields are rejected.
//
// # Step Actions
//
//   - register, rename, round: args holds the names or tokens
//   - undo, reset: no args
//   - configure: roster holds roster_size and total_games
//   - retention: retention holds the new cap
//
// A step without expect must succeed. expect.error names the error code the
// step must fail with.
//
// # Assertion Types
//
//   - totals: running totals, subset match
//   - played: rounds played including trimmed ones
//   - history_count: rounds retained in history
//   - standings: names in ranking order
//   - summary: one player's summary fields, subset match
//   - trace_count: number of steps with the given action and outcome
//   - invariant: totals reconcile with history
//
// # Deterministic Testing
//
// Every run uses a fresh in-memory SQLite store, testutil.DeterministicClock
// and testutil.SequenceGenerator, so timestamps and round IDs are identical
// across runs and settlements can be compared against golden files.
package harness
