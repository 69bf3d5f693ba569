// Package harness runs reminder-list scenarios against a real Store.
//
// A scenario applies a flow of user actions and clock movements to a fresh
// store and then checks the resulting trace and final state.
//
// # Scenario Format
//
// Scenarios are YAML files:
//
//	name: buy_milk_expires
//	description: "Completed reminders leave the list after the delay"
//	config:
//	  delayMs: 10000
//	  idPolicy: counter
//	flow:
//	  - action: add
//	    text: Buy milk
//	    expect: { ok: true, id: 1 }
//	  - action: toggle
//	    id: 1
//	  - action: wait
//	    duration: 10s
//	assertions:
//	  - type: trace_contains
//	    event: expired
//	    id: 1
//	  - type: final_state
//	    counts: { total: 0, pending: 0, completed: 1 }
//
// # Flow Actions
//
//   - input: set the pending input text (text)
//   - submit: add a reminder from the pending input text
//   - add: add a reminder (text)
//   - toggle: flip a reminder's completed flag (id)
//   - delete: remove a reminder (id)
//   - wait: advance the manual clock (duration, Go duration syntax)
//   - expire: run the auto-expire sweep immediately
//
// # Assertion Types
//
//   - trace_contains: an event of the given kind (and id/text if set) occurred
//   - trace_order: event kinds first occur in the given order
//   - trace_count: an event kind occurred exactly N times
//   - final_state: active set, history, counts and input match (each optional)
//
// # Deterministic Testing
//
// Every scenario runs on a testutil.ManualScheduler, so timers only fire
// inside wait steps, and with a fixed session id. The same scenario always
// produces the same trace, which makes golden file comparison possible.
package harness
