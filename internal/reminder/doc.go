// Package reminder implements the state of a reminder list.
//
// A Store owns three things: the active set (reminders shown in the list,
// pending or recently completed), the completion history (an append-only
// record of every pending-to-completed transition) and the pending input
// text. Counts are derived from those on every read.
//
// ARCHITECTURE:
//
// Synchronous mutations:
// Add, ToggleComplete and Delete are plain method calls that apply their
// change atomically under the store lock and return immediately. Invalid
// input (blank text, unknown id) is a silent no-op reported only through
// the boolean result.
//
// Debounced auto-expire:
// Every effective mutation of the active set re-arms a single deferred
// timer on the Scheduler. When the active set has been quiet for the full
// delay the timer fires and removes every completed reminder from the
// active set. The history is never touched.
//
// Revisions:
// Mutations are stamped by a monotonic Clock. The timer remembers the
// revision it was armed at, so a callback that fires after a newer
// mutation (because Stop lost the race) is recognised and dropped.
//
// Teardown:
// Close cancels the outstanding timer and closes every Feed. A closed
// store ignores mutations and never arms another timer.
package reminder
