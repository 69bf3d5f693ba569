package reminder

// Reminder is a single entry in the list.
type Reminder struct {
	ID        int64  `json:"id" yaml:"id"`
	Text      string `json:"text" yaml:"text"`
	Completed bool   `json:"completed" yaml:"completed"`
}

// Counts are the derived counters shown next to the list.
//
// They are computed from the store on every read and never cached:
//   - Total is the size of the active set
//   - Pending is the number of active reminders not yet completed
//   - Completed is the size of the completion history
type Counts struct {
	Total     int `json:"total" yaml:"total"`
	Pending   int `json:"pending" yaml:"pending"`
	Completed int `json:"completed" yaml:"completed"`
}

// Snapshot is a point-in-time copy of everything the store owns.
// Slices are copies; mutating them does not affect the store.
type Snapshot struct {
	Active  []Reminder `json:"active"`
	History []Reminder `json:"history"`
	Input   string     `json:"input"`
	Counts  Counts     `json:"counts"`
}

// EventKind identifies what changed in the store.
type EventKind string

const (
	// EventAdded is published when Add appends a new reminder.
	EventAdded EventKind = "added"
	// EventToggled is published when ToggleComplete flips a reminder.
	EventToggled EventKind = "toggled"
	// EventDeleted is published when Delete removes a reminder.
	EventDeleted EventKind = "deleted"
	// EventExpired is published for each completed reminder removed by auto-expire.
	EventExpired EventKind = "expired"
)

// Event describes one applied mutation.
//
// Reminder holds the state of the affected reminder after the mutation
// (for deletions and expirations, the state it had when it was removed).
type Event struct {
	Seq      int64     `json:"seq"`
	Kind     EventKind `json:"kind"`
	Reminder Reminder  `json:"reminder"`
}

func countsOf(active, history []Reminder) Counts {
	c := Counts{
		Total:     len(active),
		Completed: len(history),
	}
	for _, r := range active {
		if !r.Completed {
			c.Pending++
		}
	}
	return c
}

func cloneReminders(in []Reminder) []Reminder {
	out := make([]Reminder, len(in))
	copy(out, in)
	return out
}
