package harness

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/roach88/reminders/internal/reminder"
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

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for i, event := range e.Trace {
			fmt.Fprintf(&buf, "  [%d] %s\n", i+1, describeTraceEvent(event))
		}
	}

	return buf.String()
}

func describeTraceEvent(e TraceEvent) string {
	if e.Type == TypeStep {
		switch e.Action {
		case ActionAdd, ActionInput:
			return fmt.Sprintf("%s %q", e.Action, e.Text)
		case ActionToggle, ActionDelete:
			return fmt.Sprintf("%s %d", e.Action, e.ID)
		case ActionWait:
			return fmt.Sprintf("%s %s", e.Action, e.Duration)
		default:
			return e.Action
		}
	}
	return fmt.Sprintf("  -> %s #%d %q completed=%t (seq %d)", e.Kind, e.ID, e.Text, e.Completed, e.Seq)
}

// assertTraceContains checks that some event of the given kind occurred,
// narrowed to a reminder id and text when those are set.
func assertTraceContains(trace []TraceEvent, assertion Assertion) error {
	for _, event := range trace {
		if event.Type != TypeEvent || string(event.Kind) != assertion.Event {
			continue
		}
		if assertion.ID != 0 && event.ID != assertion.ID {
			continue
		}
		if assertion.Text != "" && event.Text != assertion.Text {
			continue
		}
		return nil
	}

	expected := assertion.Event
	if assertion.ID != 0 {
		expected += fmt.Sprintf(" id=%d", assertion.ID)
	}
	if assertion.Text != "" {
		expected += fmt.Sprintf(" text=%q", assertion.Text)
	}

	return &AssertionError{
		Type:     AssertTraceContains,
		Expected: "event " + expected,
		Actual:   "not found in trace",
		Trace:    trace,
	}
}

// assertTraceOrder checks that event kinds first occur in the given order.
// Kinds don't need to be consecutive (intervening events are allowed).
func assertTraceOrder(trace []TraceEvent, assertion Assertion) error {
	positions := make(map[string]int)

	for i, event := range trace {
		if event.Type != TypeEvent {
			continue
		}
		kind := string(event.Kind)
		if positions[kind] == 0 {
			positions[kind] = i + 1 // 1-indexed for readability
		}
	}

	for _, kind := range assertion.Events {
		if positions[kind] == 0 {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("all events present: %v", assertion.Events),
				Actual:   fmt.Sprintf("missing event: %s", kind),
				Trace:    trace,
			}
		}
	}

	for i := 1; i < len(assertion.Events); i++ {
		prev := assertion.Events[i-1]
		curr := assertion.Events[i]

		if positions[prev] >= positions[curr] {
			return &AssertionError{
				Type:     AssertTraceOrder,
				Expected: fmt.Sprintf("events in order: %v", assertion.Events),
				Actual: fmt.Sprintf("%s (pos %d) should be before %s (pos %d)",
					prev, positions[prev], curr, positions[curr]),
				Trace: trace,
			}
		}
	}

	return nil
}

// assertTraceCount checks that an event kind occurred exactly Count times.
func assertTraceCount(trace []TraceEvent, assertion Assertion) error {
	count := 0
	for _, event := range trace {
		if event.Type == TypeEvent && string(event.Kind) == assertion.Event {
			count++
		}
	}

	if count != assertion.Count {
		return &AssertionError{
			Type:     AssertTraceCount,
			Expected: fmt.Sprintf("%d occurrences of %s", assertion.Count, assertion.Event),
			Actual:   fmt.Sprintf("%d occurrences", count),
			Trace:    trace,
		}
	}

	return nil
}

// assertFinalState compares each field the assertion sets against the
// final snapshot. Unset fields are not checked.
func assertFinalState(state reminder.Snapshot, assertion Assertion) error {
	if assertion.Active != nil && !sameReminders(*assertion.Active, state.Active) {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("active %s", formatReminders(*assertion.Active)),
			Actual:   fmt.Sprintf("active %s", formatReminders(state.Active)),
		}
	}

	if assertion.History != nil && !sameReminders(*assertion.History, state.History) {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("history %s", formatReminders(*assertion.History)),
			Actual:   fmt.Sprintf("history %s", formatReminders(state.History)),
		}
	}

	if assertion.Counts != nil && *assertion.Counts != state.Counts {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("counts %+v", *assertion.Counts),
			Actual:   fmt.Sprintf("counts %+v", state.Counts),
		}
	}

	if assertion.Input != nil && *assertion.Input != state.Input {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("input %q", *assertion.Input),
			Actual:   fmt.Sprintf("input %q", state.Input),
		}
	}

	return nil
}

// sameReminders treats nil and empty as equal; YAML "[]" and an empty
// snapshot slice must match.
func sameReminders(expected, actual []reminder.Reminder) bool {
	if len(expected) == 0 && len(actual) == 0 {
		return true
	}
	return reflect.DeepEqual(expected, actual)
}

func formatReminders(rs []reminder.Reminder) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = fmt.Sprintf("{%d %q %t}", r.ID, r.Text, r.Completed)
	}
	return "[" + strings.Join(parts, " ") + "]"
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertTraceContains:
			err = assertTraceContains(result.Trace, assertion)
		case AssertTraceOrder:
			err = assertTraceOrder(result.Trace, assertion)
		case AssertTraceCount:
			err = assertTraceCount(result.Trace, assertion)
		case AssertFinalState:
			err = assertFinalState(result.State, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}
