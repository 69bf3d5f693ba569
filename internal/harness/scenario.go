package harness

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/roach88/reminders/internal/reminder"
)

// Scenario defines a reminder-list scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. Used as the golden file name.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Config overrides store settings. Unset fields keep the defaults.
	Config *ScenarioConfig `yaml:"config,omitempty"`

	// Session is the fixed session id. Defaults to "scenario-<name>".
	Session string `yaml:"session,omitempty"`

	// Flow is the ordered list of actions to apply.
	Flow []FlowStep `yaml:"flow"`

	// Assertions validate the final trace and state.
	Assertions []Assertion `yaml:"assertions"`
}

// ScenarioConfig holds per-scenario store settings.
type ScenarioConfig struct {
	DelayMS  int    `yaml:"delayMs,omitempty"`
	IDPolicy string `yaml:"idPolicy,omitempty"`
}

// FlowStep is one user action or clock movement.
type FlowStep struct {
	// Action is one of the Action* constants.
	Action string `yaml:"action"`

	// Text is the reminder text (add) or input text (input).
	Text string `yaml:"text,omitempty"`

	// ID is the target reminder (toggle, delete).
	ID int64 `yaml:"id,omitempty"`

	// Duration is how far to move the clock (wait), e.g. "10s".
	Duration string `yaml:"duration,omitempty"`

	// Expect optionally checks the outcome of this step.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause checks the immediate outcome of a step.
type ExpectClause struct {
	// OK is whether the action took effect (false for a no-op).
	OK *bool `yaml:"ok,omitempty"`

	// ID is the id of the created or toggled reminder.
	ID *int64 `yaml:"id,omitempty"`

	// Completed is the completed flag after a toggle.
	Completed *bool `yaml:"completed,omitempty"`

	// Removed is the number of reminders removed by an expire step.
	Removed *int `yaml:"removed,omitempty"`
}

// Assertion validates trace or final state.
type Assertion struct {
	// Type is one of the Assert* constants.
	Type string `yaml:"type"`

	// Event is the event kind (trace_contains, trace_count).
	Event string `yaml:"event,omitempty"`

	// ID narrows trace_contains to one reminder.
	ID int64 `yaml:"id,omitempty"`

	// Text narrows trace_contains to one reminder text.
	Text string `yaml:"text,omitempty"`

	// Count is the expected number of occurrences (trace_count).
	Count int `yaml:"count,omitempty"`

	// Events is the expected first-occurrence order (trace_order).
	Events []string `yaml:"events,omitempty"`

	// Active, History, Counts and Input are compared exactly when set (final_state).
	Active  *[]reminder.Reminder `yaml:"active,omitempty"`
	History *[]reminder.Reminder `yaml:"history,omitempty"`
	Counts  *reminder.Counts     `yaml:"counts,omitempty"`
	Input   *string              `yaml:"input,omitempty"`
}

// Flow action constants.
const (
	ActionInput  = "input"
	ActionSubmit = "submit"
	ActionAdd    = "add"
	ActionToggle = "toggle"
	ActionDelete = "delete"
	ActionWait   = "wait"
	ActionExpire = "expire"
)

// Assertion type constants.
const (
	AssertTraceContains = "trace_contains"
	AssertTraceOrder    = "trace_order"
	AssertTraceCount    = "trace_count"
	AssertFinalState    = "final_state"
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

// ParseScenario parses and validates scenario YAML.
func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true) // Reject unknown fields
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
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

	if len(s.Flow) == 0 {
		return fmt.Errorf("flow list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Flow {
		if err := validateStep(i, step); err != nil {
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

// validateStep checks the arguments a flow action needs. Blank text is
// allowed for add and input: the store treats it as a no-op.
func validateStep(index int, step FlowStep) error {
	switch step.Action {
	case ActionInput, ActionAdd, ActionSubmit, ActionExpire:
	case ActionToggle, ActionDelete:
		if step.ID == 0 {
			return fmt.Errorf("flow[%d]: id is required for %s", index, step.Action)
		}
	case ActionWait:
		if step.Duration == "" {
			return fmt.Errorf("flow[%d]: duration is required for wait", index)
		}
		d, err := time.ParseDuration(step.Duration)
		if err != nil {
			return fmt.Errorf("flow[%d]: invalid duration: %w", index, err)
		}
		if d < 0 {
			return fmt.Errorf("flow[%d]: duration must be non-negative", index)
		}
	case "":
		return fmt.Errorf("flow[%d]: action is required", index)
	default:
		return fmt.Errorf("flow[%d]: unknown action %q", index, step.Action)
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	switch a.Type {
	case AssertTraceContains:
		if err := validateEventKind(index, a.Event); err != nil {
			return err
		}
	case AssertTraceOrder:
		if len(a.Events) == 0 {
			return fmt.Errorf("assertions[%d]: events list is required for trace_order", index)
		}
		for _, kind := range a.Events {
			if err := validateEventKind(index, kind); err != nil {
				return err
			}
		}
	case AssertTraceCount:
		if err := validateEventKind(index, a.Event); err != nil {
			return err
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for trace_count", index)
		}
	case AssertFinalState:
		if a.Active == nil && a.History == nil && a.Counts == nil && a.Input == nil {
			return fmt.Errorf("assertions[%d]: final_state needs at least one of active, history, counts, input", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

func validateEventKind(index int, kind string) error {
	switch reminder.EventKind(kind) {
	case reminder.EventAdded, reminder.EventToggled, reminder.EventDeleted, reminder.EventExpired:
		return nil
	case "":
		return fmt.Errorf("assertions[%d]: event is required", index)
	default:
		return fmt.Errorf("assertions[%d]: unknown event kind %q", index, kind)
	}
}
