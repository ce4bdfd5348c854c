package testutil

import (
	"sync"
	"time"
)

// Epoch is the first instant a DeterministicClock reports.
var Epoch = time.Date(2026, time.January, 1, 9, 0, 0, 0, time.UTC)

// DeterministicClock is a stepping clock for tests.
//
// Each call to Now advances the clock by Step and returns the new time, so
// the first call returns Epoch+Step. Reset rewinds it, enabling the same
// scenario to run twice with identical round timestamps.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type DeterministicClock struct {
	mu   sync.Mutex
	seq  int64
	Step time.Duration
}

// NewDeterministicClock creates a clock stepping one minute per call.
func NewDeterministicClock() *DeterministicClock {
	return &DeterministicClock{Step: time.Minute}
}

// Now advances the clock and returns the new time.
func (c *DeterministicClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return Epoch.Add(time.Duration(c.seq) * c.Step)
}

// Current returns the number of ticks so far without advancing.
func (c *DeterministicClock) Current() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Reset rewinds the clock to Epoch.
func (c *DeterministicClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq = 0
}
