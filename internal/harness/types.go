package harness

import "github.com/roach88/reminders/internal/reminder"

// Trace entry types.
const (
	TypeStep  = "step"  // a flow step as written in the scenario
	TypeEvent = "event" // a store event published while the step ran
)

// TraceEvent is one entry in a scenario trace: either a flow step or a
// store event. Steps carry Action and its arguments; events carry Kind,
// the affected reminder and Seq.
type TraceEvent struct {
	Type      string             `json:"type"`
	Action    string             `json:"action,omitempty"`
	Kind      reminder.EventKind `json:"kind,omitempty"`
	ID        int64              `json:"id,omitempty"`
	Text      string             `json:"text,omitempty"`
	Duration  string             `json:"duration,omitempty"`
	Completed bool               `json:"completed,omitempty"`
	Seq       int64              `json:"seq,omitempty"`
}

// Result is the outcome of a test scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if all expect clauses and assertions match.
	Pass bool `json:"pass"`

	// Session is the fixed session id the store ran under.
	Session string `json:"session"`

	// Trace contains every step and the events it produced, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// State is the store snapshot after the last step.
	State reminder.Snapshot `json:"state"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
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

// AddStepTrace adds a flow step to the trace.
func (r *Result) AddStepTrace(step FlowStep) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:     TypeStep,
		Action:   step.Action,
		ID:       step.ID,
		Text:     step.Text,
		Duration: step.Duration,
	})
}

// AddEventTrace adds a store event to the trace.
func (r *Result) AddEventTrace(e reminder.Event) {
	r.Trace = append(r.Trace, TraceEvent{
		Type:      TypeEvent,
		Kind:      e.Kind,
		ID:        e.Reminder.ID,
		Text:      e.Reminder.Text,
		Completed: e.Reminder.Completed,
		Seq:       e.Seq,
	})
}

// Events returns only the store events of the trace.
func (r *Result) Events() []TraceEvent {
	var out []TraceEvent
	for _, e := range r.Trace {
		if e.Type == TypeEvent {
			out = append(out, e)
		}
	}
	return out
}
