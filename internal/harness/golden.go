package harness

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Render formats a result as the text stored in golden files: the step
// trace, the final board and the settlement. Numbers use English grouping.
func Render(name string, result *Result) ([]byte, error) {
	var buf bytes.Buffer
	p := message.NewPrinter(language.English)

	fmt.Fprintf(&buf, "scenario: %s\n\n", name)
	for _, e := range result.Trace {
		line := fmt.Sprintf("%d %s", e.Step, e.Action)
		if len(e.Args) > 0 {
			line += " " + strings.Join(e.Args, " ")
		}
		line += " -> " + e.Outcome
		if e.RoundID != "" {
			line += " " + e.RoundID
		}
		buf.WriteString(line + "\n")
	}

	buf.WriteString("\n")
	if err := result.Board.WriteText(&buf, p); err != nil {
		return nil, err
	}
	buf.WriteString("\n")
	if err := result.Settlement.WriteText(&buf, p); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RunWithGolden executes a scenario and compares the rendered result
// against testdata/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the output doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, name string, result *Result) error {
	t.Helper()

	out, err := Render(name, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, out)

	return nil
}
