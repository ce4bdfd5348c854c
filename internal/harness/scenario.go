package harness

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/racetally/internal/config"
	"github.com/roach88/racetally/internal/score"
)

// Scenario is a scripted session with expectations.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config is decoded like a config file over the defaults.
	// Use Settings for the decoded value.
	Config yaml.Node `yaml:"config,omitempty"`

	// Steps run in order against one session.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final session.
	Assertions []Assertion `yaml:"assertions"`

	// Settings is the decoded Config block.
	Settings config.Config `yaml:"-"`
}

// Step is one operator action.
type Step struct {
	// Action is one of the Action* constants.
	Action string `yaml:"action"`

	// Args holds names (register, rename) or tokens (round).
	Args []string `yaml:"args,omitempty"`

	// Roster is the new configuration for configure.
	Roster *score.RosterConfig `yaml:"roster,omitempty"`

	// Retention is the new cap for retention.
	Retention *int `yaml:"retention,omitempty"`

	// Expect describes the expected outcome. Nil means success.
	Expect *Expect `yaml:"expect,omitempty"`
}

// Expect describes how a step should end.
type Expect struct {
	// Error is the expected error code. Empty means success.
	Error string `yaml:"error,omitempty"`

	// Slot is the expected 1-based slot of an INVALID_TOKEN error.
	Slot int `yaml:"slot,omitempty"`

	// Delta is the expected per-player points of a successful round.
	Delta map[string]int `yaml:"delta,omitempty"`
}

// Step actions.
const (
	ActionConfigure = "configure"
	ActionRetention = "retention"
	ActionRegister  = "register"
	ActionRename    = "rename"
	ActionRound     = "round"
	ActionUndo      = "undo"
	ActionReset     = "reset"
)

// Assertion validates the final session or the trace.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Totals are expected running totals (totals). Subset match.
	Totals map[string]int `yaml:"totals,omitempty"`

	// Count is the expected count (played, history_count, trace_count).
	Count int `yaml:"count,omitempty"`

	// Order is the expected ranking by name (standings).
	Order []string `yaml:"order,omitempty"`

	// Player and Summary select and match one summary (summary).
	Player  string         `yaml:"player,omitempty"`
	Summary map[string]any `yaml:"summary,omitempty"`

	// Action and Outcome filter steps (trace_count). Outcome defaults to ok.
	Action  string `yaml:"action,omitempty"`
	Outcome string `yaml:"outcome,omitempty"`
}

// Assertion type constants.
const (
	AssertTotals       = "totals"
	AssertPlayed       = "played"
	AssertHistoryCount = "history_count"
	AssertStandings    = "standings"
	AssertSummary      = "summary"
	AssertTraceCount   = "trace_count"
	AssertInvariant    = "invariant"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(data)
}

// ParseScenario parses scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	// Parse YAML with strict field validation (catches typos like "assertion:" vs "assertions:")
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	scenario.Settings = config.Default()
	if !scenario.Config.IsZero() {
		raw, err := yaml.Marshal(&scenario.Config)
		if err != nil {
			return nil, fmt.Errorf("failed to read config block: %w", err)
		}
		scenario.Settings, err = config.Parse(raw, config.FormatYAML)
		if err != nil {
			return nil, fmt.Errorf("invalid scenario config: %w", err)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

// validateStep checks that a step carries what its action needs.
func validateStep(index int, s *Step) error {
	switch s.Action {
	case "":
		return fmt.Errorf("steps[%d]: action is required", index)
	case ActionRegister, ActionRename, ActionRound:
		if len(s.Args) == 0 {
			return fmt.Errorf("steps[%d]: args are required for %s", index, s.Action)
		}
	case ActionConfigure:
		if s.Roster == nil {
			return fmt.Errorf("steps[%d]: roster is required for configure", index)
		}
	case ActionRetention:
		if s.Retention == nil {
			return fmt.Errorf("steps[%d]: retention is required for retention", index)
		}
	case ActionUndo, ActionReset:
	default:
		return fmt.Errorf("steps[%d]: unknown action %q", index, s.Action)
	}

	if s.Expect != nil {
		if s.Expect.Error != "" && s.Expect.Delta != nil {
			return fmt.Errorf("steps[%d].expect: error and delta are mutually exclusive", index)
		}
		if s.Expect.Delta != nil && s.Action != ActionRound {
			return fmt.Errorf("steps[%d].expect: delta only applies to round", index)
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTotals:
		if len(a.Totals) == 0 {
			return fmt.Errorf("assertions[%d]: totals is required for totals", index)
		}
	case AssertPlayed, AssertHistoryCount, AssertTraceCount:
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for %s", index, a.Type)
		}
		if a.Type == AssertTraceCount && a.Action == "" {
			return fmt.Errorf("assertions[%d]: action is required for trace_count", index)
		}
	case AssertStandings:
		if len(a.Order) == 0 {
			return fmt.Errorf("assertions[%d]: order is required for standings", index)
		}
	case AssertSummary:
		if a.Player == "" {
			return fmt.Errorf("assertions[%d]: player is required for summary", index)
		}
		if len(a.Summary) == 0 {
			return fmt.Errorf("assertions[%d]: summary is required for summary", index)
		}
	case AssertInvariant:
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}
