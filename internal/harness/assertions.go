package harness

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/roach88/racetally/internal/session"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		fmt.Fprintf(&buf, "  [%d] %s %v -> %s\n", event.Step, event.Action, event.Args, event.Outcome)
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns one message per
// failure.
func EvaluateAssertions(result *Result, assertions []Assertion, s *session.Session) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result.Trace, a, s); err != nil {
			errs = append(errs, fmt.Sprintf("assertions[%d]: %v", i, err))
		}
	}
	return errs
}

func evaluate(trace []TraceEvent, a Assertion, s *session.Session) error {
	switch a.Type {
	case AssertTotals:
		return assertTotals(trace, a, s.Totals())
	case AssertPlayed:
		return assertCount(trace, a.Type, a.Count, s.Played())
	case AssertHistoryCount:
		return assertCount(trace, a.Type, a.Count, len(s.History()))
	case AssertStandings:
		return assertStandings(trace, a, s)
	case AssertSummary:
		return assertSummary(trace, a, s)
	case AssertTraceCount:
		return assertTraceCount(trace, a)
	case AssertInvariant:
		if err := s.Check(); err != nil {
			return &AssertionError{Type: a.Type, Expected: "totals match history", Actual: err.Error(), Trace: trace}
		}
		return nil
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertTotals checks the named players' totals (subset match).
func assertTotals(trace []TraceEvent, a Assertion, totals map[string]int) error {
	names := make([]string, 0, len(a.Totals))
	for name := range a.Totals {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		got, ok := totals[name]
		if !ok || got != a.Totals[name] {
			actual := fmt.Sprintf("%s=%d", name, got)
			if !ok {
				actual = fmt.Sprintf("%s not registered", name)
			}
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s=%d", name, a.Totals[name]),
				Actual:   actual,
				Trace:    trace,
			}
		}
	}
	return nil
}

func assertCount(trace []TraceEvent, typ string, want, got int) error {
	if got != want {
		return &AssertionError{
			Type:     typ,
			Expected: fmt.Sprintf("%d", want),
			Actual:   fmt.Sprintf("%d", got),
			Trace:    trace,
		}
	}
	return nil
}

// assertStandings checks the ranking order by name.
func assertStandings(trace []TraceEvent, a Assertion, s *session.Session) error {
	var got []string
	for _, st := range s.Board().Standings {
		got = append(got, st.Name)
	}
	if !reflect.DeepEqual(got, a.Order) {
		return &AssertionError{
			Type:     a.Type,
			Expected: strings.Join(a.Order, " > "),
			Actual:   strings.Join(got, " > "),
			Trace:    trace,
		}
	}
	return nil
}

// assertSummary compares the listed summary fields by their JSON names.
func assertSummary(trace []TraceEvent, a Assertion, s *session.Session) error {
	sum, ok := s.Summaries()[a.Player]
	if !ok {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("summary for %s", a.Player),
			Actual:   "player not registered",
			Trace:    trace,
		}
	}

	fields, err := toMap(sum)
	if err != nil {
		return err
	}

	keys := make([]string, 0, len(a.Summary))
	for k := range a.Summary {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		got, ok := fields[k]
		if !ok {
			return fmt.Errorf("summary has no field %q", k)
		}
		if fmt.Sprint(got) != fmt.Sprint(a.Summary[k]) {
			return &AssertionError{
				Type:     a.Type,
				Expected: fmt.Sprintf("%s.%s = %v", a.Player, k, a.Summary[k]),
				Actual:   fmt.Sprintf("%s.%s = %v", a.Player, k, got),
				Trace:    trace,
			}
		}
	}
	return nil
}

// assertTraceCount checks how many steps ran the action with the outcome.
func assertTraceCount(trace []TraceEvent, a Assertion) error {
	outcome := a.Outcome
	if outcome == "" {
		outcome = OutcomeOK
	}

	count := 0
	for _, event := range trace {
		if event.Action == a.Action && event.Outcome == outcome {
			count++
		}
	}

	if count != a.Count {
		return &AssertionError{
			Type:     a.Type,
			Expected: fmt.Sprintf("%s -> %s exactly %d times", a.Action, outcome, a.Count),
			Actual:   fmt.Sprintf("found %d times", count),
			Trace:    trace,
		}
	}
	return nil
}

// toMap converts v to its JSON object form, keeping numbers as json.Number.
func toMap(v any) (map[string]any, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return nil, err
	}
	return m, nil
}
