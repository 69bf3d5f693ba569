package reminder

import "fmt"

// IDPolicy selects how identifiers are assigned to new reminders.
type IDPolicy string

const (
	// IDCounter assigns identifiers from a monotonic counter that is
	// independent of the list length. Identifiers are never reused.
	IDCounter IDPolicy = "counter"

	// IDLength assigns len(active)+1. Identifiers can repeat after a
	// deletion: Add A, Add B, Delete 1, Add C leaves two reminders with id 2.
	IDLength IDPolicy = "length"
)

// ParseIDPolicy converts a configuration string into an IDPolicy.
func ParseIDPolicy(s string) (IDPolicy, error) {
	switch IDPolicy(s) {
	case IDCounter, IDLength:
		return IDPolicy(s), nil
	case "":
		return IDCounter, nil
	default:
		return "", fmt.Errorf("unknown id policy %q: must be %q or %q", s, IDCounter, IDLength)
	}
}

// idAssigner hands out identifiers according to a policy.
type idAssigner struct {
	policy IDPolicy
	last   int64
}

func (a *idAssigner) next(activeLen int) int64 {
	if a.policy == IDLength {
		return int64(activeLen) + 1
	}
	a.last++
	return a.last
}
