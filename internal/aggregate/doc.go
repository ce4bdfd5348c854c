// Package aggregate computes read-only views of a session: per-player
// summaries, standings, the progress board and the end-of-session
// settlement.
//
// Summarize is a pure function of the roster and history and never reads
// running totals, so its results can be used to cross-check the ledger.
package aggregate
