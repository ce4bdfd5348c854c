package harness

import "github.com/roach88/racetally/internal/aggregate"

// Outcome recorded for a step that succeeded.
const OutcomeOK = "ok"

// TraceEvent records one executed step.
type TraceEvent struct {
	Step    int            `json:"step"`
	Action  string         `json:"action"`
	Args    []string       `json:"args,omitempty"`
	Outcome string         `json:"outcome"` // OutcomeOK or an error code
	RoundID string         `json:"round_id,omitempty"`
	Delta   map[string]int `json:"delta,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Pass is true when every step and assertion matched.
	Pass bool `json:"pass"`

	// Trace holds one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Board and Settlement are taken after the last step.
	Board      aggregate.Board      `json:"board"`
	Settlement aggregate.Settlement `json:"settlement"`
}

// NewResult creates a new passing result.
func NewResult() *Result {
	return &Result{
		Pass:   true,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends a step event.
func (r *Result) AddTrace(e TraceEvent) {
	r.Trace = append(r.Trace, e)
}
