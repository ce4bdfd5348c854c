package ledger

import (
	"time"

	"github.com/google/uuid"

	"github.com/roach88/racetally/internal/score"
)

// TimestampLayout is the second-precision UTC layout used for Round.Timestamp.
const TimestampLayout = "2006-01-02T15:04:05"

// Round is one applied round. It is never modified after it is appended;
// it only leaves the history through UndoLast or retention.
type Round struct {
	ID        string          `json:"id"`
	Timestamp string          `json:"ts"`
	Tokens    []string        `json:"tokens"`
	Outcomes  []score.Outcome `json:"outcomes"`
	Delta     map[string]int  `json:"delta"`
}

// Clone returns a deep copy.
func (r Round) Clone() Round {
	c := r
	c.Tokens = append([]string(nil), r.Tokens...)
	c.Outcomes = append([]score.Outcome(nil), r.Outcomes...)
	c.Delta = cloneTotals(r.Delta)
	return c
}

// Clock supplies round timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }

// IDGenerator supplies round IDs.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 round IDs.
//
// Panics if UUID generation fails (should never happen in practice).
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

func cloneTotals(m map[string]int) map[string]int {
	if m == nil {
		return nil
	}
	c := make(map[string]int, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
