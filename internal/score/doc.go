// Package score holds the scoring core for a racing session: rank tokens,
// point tables and the per-round rank collision check.
//
// This package imports nothing internal. The ledger and aggregate packages
// build on the types defined here.
//
// Key constraints:
//   - Ranks are 1 (best) through 8 (worst)
//   - Exactly one category applies per outcome; DNF wins over retired
//   - Scores are plain ints, never floats
//   - All JSON tags use snake_case
package score
