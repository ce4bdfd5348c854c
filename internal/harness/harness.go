package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/roach88/racetally/internal/ledger"
	"github.com/roach88/racetally/internal/score"
	"github.com/roach88/racetally/internal/session"
	"github.com/roach88/racetally/internal/store"
	"github.com/roach88/racetally/internal/testutil"
)

// Harness runs one scenario against one session.
type Harness struct {
	session *session.Session
	clock   *testutil.DeterministicClock
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Step and assertion mismatches are reported in the result; the returned
// error is reserved for failures of the harness itself.
func Run(scenario *Scenario) (*Result, error) {
	return RunWithLogger(scenario, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

// RunWithLogger is Run with session logging sent to logger.
func RunWithLogger(scenario *Scenario, logger *slog.Logger) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	ctx := context.Background()
	clock := testutil.NewDeterministicClock()
	sess, err := session.Open(ctx, st, scenario.Settings,
		session.WithLogger(logger),
		session.WithClock(clock),
		session.WithIDGenerator(testutil.NewSequenceGenerator("round")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open session: %w", err)
	}

	h := &Harness{session: sess, clock: clock, logger: logger}

	result := NewResult()
	if err := h.executeSteps(ctx, scenario.Steps, result); err != nil {
		return nil, fmt.Errorf("failed to execute steps: %w", err)
	}

	for _, msg := range EvaluateAssertions(result, scenario.Assertions, sess) {
		result.AddError(msg)
	}

	result.Board = sess.Board()
	result.Settlement = sess.Settle()
	return result, nil
}

// executeSteps runs every step and checks its expect clause.
//
// Domain errors are compared with the expectation. Any other error (a
// failing store, for instance) aborts the run.
func (h *Harness) executeSteps(ctx context.Context, steps []Step, result *Result) error {
	for i, step := range steps {
		round, err := h.execute(ctx, step)

		event := TraceEvent{Step: i, Action: step.Action, Args: step.Args, Outcome: OutcomeOK}
		if err != nil {
			code := score.CodeOf(err)
			if code == "" {
				return fmt.Errorf("step %d (%s): %w", i, step.Action, err)
			}
			event.Outcome = string(code)
		} else if step.Action == ActionRound || step.Action == ActionUndo {
			event.RoundID = round.ID
			event.Delta = round.Delta
		}
		result.AddTrace(event)

		for _, msg := range checkExpect(i, step, event, err) {
			result.AddError(msg)
		}

		h.logger.Info("step completed",
			"step", i,
			"action", step.Action,
			"outcome", event.Outcome,
		)
	}
	return nil
}

func (h *Harness) execute(ctx context.Context, step Step) (ledger.Round, error) {
	s := h.session
	switch step.Action {
	case ActionConfigure:
		return ledger.Round{}, s.Configure(ctx, *step.Roster)
	case ActionRetention:
		return ledger.Round{}, s.SetRetention(ctx, *step.Retention)
	case ActionRegister:
		return ledger.Round{}, s.Register(ctx, step.Args)
	case ActionRename:
		return ledger.Round{}, s.Rename(ctx, step.Args)
	case ActionRound:
		return s.AddRound(ctx, step.Args)
	case ActionUndo:
		return s.UndoLast(ctx)
	case ActionReset:
		return ledger.Round{}, s.Reset(ctx)
	default:
		return ledger.Round{}, fmt.Errorf("unknown action %q", step.Action)
	}
}

// checkExpect compares a step's outcome with its expect clause.
func checkExpect(i int, step Step, event TraceEvent, err error) []string {
	want := OutcomeOK
	if step.Expect != nil && step.Expect.Error != "" {
		want = step.Expect.Error
	}
	if event.Outcome != want {
		msg := fmt.Sprintf("step %d (%s): expected %s, got %s", i, step.Action, want, event.Outcome)
		if err != nil {
			msg += ": " + err.Error()
		}
		return []string{msg}
	}
	if step.Expect == nil {
		return nil
	}

	var errs []string
	if step.Expect.Slot != 0 {
		var se *score.Error
		if !errors.As(err, &se) || se.Slot != step.Expect.Slot {
			errs = append(errs, fmt.Sprintf("step %d (%s): expected slot %d, got %v", i, step.Action, step.Expect.Slot, err))
		}
	}
	if step.Expect.Delta != nil {
		names := make([]string, 0, len(step.Expect.Delta))
		for name := range step.Expect.Delta {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			pts := step.Expect.Delta[name]
			got, ok := event.Delta[name]
			if !ok || got != pts {
				errs = append(errs, fmt.Sprintf("step %d (%s): expected delta %s=%d, got %d", i, step.Action, name, pts, got))
			}
		}
	}
	return errs
}
