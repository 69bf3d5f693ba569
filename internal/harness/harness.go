package harness

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/roach88/reminders/internal/config"
	"github.com/roach88/reminders/internal/reminder"
	"github.com/roach88/reminders/internal/testutil"
)

// Harness is the test execution engine.
// It runs one scenario against a fresh store on a manual clock.
type Harness struct {
	store  *reminder.Store
	sched  *testutil.ManualScheduler
	feed   *reminder.Feed
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs against a fresh store for isolation. The manual
// scheduler and fixed session id make the trace reproducible.
//
// Execution flow:
// 1. Resolve the scenario config over the defaults and validate it
// 2. Create the store and subscribe to its events
// 3. Execute flow steps, recording each step and the events it produced
// 4. Evaluate assertions against the trace and final state
//
// An error is returned only when the scenario cannot run at all.
// Expect and assertion mismatches are reported through Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	cfg, err := scenarioConfig(scenario)
	if err != nil {
		return nil, err
	}
	opts, err := cfg.Options()
	if err != nil {
		return nil, fmt.Errorf("invalid scenario config: %w", err)
	}

	session := scenario.Session
	if session == "" {
		session = "scenario-" + scenario.Name
	}

	sched := testutil.NewManualScheduler()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	opts = append(opts,
		reminder.WithScheduler(sched),
		reminder.WithLogger(logger),
		reminder.WithSessionIDGenerator(reminder.NewFixedSessionGenerator(session)),
	)

	st := reminder.New(opts...)
	defer st.Close()

	h := &Harness{
		store:  st,
		sched:  sched,
		feed:   st.Subscribe(),
		logger: logger,
	}

	result := NewResult()
	result.Session = st.Session()

	if err := h.executeFlow(scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	result.State = st.Snapshot()

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	return result, nil
}

// scenarioConfig applies the scenario's overrides to the default config.
func scenarioConfig(scenario *Scenario) (config.Config, error) {
	cfg := config.Default()
	if scenario.Config != nil {
		if scenario.Config.DelayMS != 0 {
			cfg.DelayMS = scenario.Config.DelayMS
		}
		if scenario.Config.IDPolicy != "" {
			cfg.IDPolicy = scenario.Config.IDPolicy
		}
	}
	if err := config.Validate(cfg); err != nil {
		return config.Config{}, fmt.Errorf("invalid scenario config: %w", err)
	}
	return cfg, nil
}

// stepOutcome is what a step reports back for its expect clause.
type stepOutcome struct {
	ok        bool
	reminder  reminder.Reminder
	removed   int
	hasResult bool
}

// executeFlow runs all flow steps in order.
func (h *Harness) executeFlow(flow []FlowStep, result *Result) error {
	for i, step := range flow {
		result.AddStepTrace(step)

		outcome, err := h.executeStep(step)
		if err != nil {
			return fmt.Errorf("flow step %d: %w", i, err)
		}

		for _, e := range h.feed.Drain() {
			result.AddEventTrace(e)
		}

		if step.Expect != nil {
			for _, msg := range checkExpect(i, step, outcome) {
				result.AddError(msg)
			}
		}
	}
	return nil
}

func (h *Harness) executeStep(step FlowStep) (stepOutcome, error) {
	switch step.Action {
	case ActionInput:
		h.store.SetInput(step.Text)
		return stepOutcome{ok: true}, nil

	case ActionSubmit:
		r, ok := h.store.Submit()
		return stepOutcome{ok: ok, reminder: r, hasResult: ok}, nil

	case ActionAdd:
		r, ok := h.store.Add(step.Text)
		return stepOutcome{ok: ok, reminder: r, hasResult: ok}, nil

	case ActionToggle:
		r, ok := h.store.ToggleComplete(step.ID)
		return stepOutcome{ok: ok, reminder: r, hasResult: ok}, nil

	case ActionDelete:
		ok := h.store.Delete(step.ID)
		return stepOutcome{ok: ok}, nil

	case ActionWait:
		d, err := time.ParseDuration(step.Duration)
		if err != nil {
			return stepOutcome{}, fmt.Errorf("invalid duration: %w", err)
		}
		h.sched.Advance(d)
		h.logger.Debug("clock advanced", "by", d, "now", h.sched.Now())
		return stepOutcome{ok: true}, nil

	case ActionExpire:
		n := h.store.ExpireNow()
		return stepOutcome{ok: n > 0, removed: n}, nil

	default:
		return stepOutcome{}, fmt.Errorf("unknown action %q", step.Action)
	}
}

// checkExpect compares a step outcome against its expect clause.
func checkExpect(index int, step FlowStep, out stepOutcome) []string {
	var errs []string
	exp := step.Expect

	if exp.OK != nil && *exp.OK != out.ok {
		errs = append(errs, fmt.Sprintf("flow[%d] %s: expected ok=%t, got ok=%t", index, step.Action, *exp.OK, out.ok))
	}

	if exp.ID != nil {
		switch {
		case !out.hasResult:
			errs = append(errs, fmt.Sprintf("flow[%d] %s: expected id %d, got no reminder", index, step.Action, *exp.ID))
		case out.reminder.ID != *exp.ID:
			errs = append(errs, fmt.Sprintf("flow[%d] %s: expected id %d, got %d", index, step.Action, *exp.ID, out.reminder.ID))
		}
	}

	if exp.Completed != nil {
		switch {
		case !out.hasResult:
			errs = append(errs, fmt.Sprintf("flow[%d] %s: expected completed=%t, got no reminder", index, step.Action, *exp.Completed))
		case out.reminder.Completed != *exp.Completed:
			errs = append(errs, fmt.Sprintf("flow[%d] %s: expected completed=%t, got completed=%t", index, step.Action, *exp.Completed, out.reminder.Completed))
		}
	}

	if exp.Removed != nil && *exp.Removed != out.removed {
		errs = append(errs, fmt.Sprintf("flow[%d] %s: expected %d removed, got %d", index, step.Action, *exp.Removed, out.removed))
	}

	return errs
}
