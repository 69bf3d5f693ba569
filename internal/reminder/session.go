package reminder

import (
	"sync"

	"github.com/google/uuid"
)

// SessionIDGenerator produces the identifier a store attaches to its log lines.
// Implemented by UUIDv7Generator (production) and FixedSessionGenerator (tests).
type SessionIDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 session identifiers.
//
// Thread-safety: UUIDv7Generator is stateless and safe for concurrent use.
type UUIDv7Generator struct{}

// Generate creates a new UUIDv7 and returns it as a hyphenated string.
//
// Panics if UUID generation fails (should never happen in practice).
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// FixedSessionGenerator returns predetermined session identifiers.
//
// Tokens are returned in order; once exhausted the last one repeats. With no
// tokens at all it always returns "test-session".
type FixedSessionGenerator struct {
	mu     sync.Mutex
	tokens []string
	idx    int
}

// NewFixedSessionGenerator creates a generator that returns tokens in order.
func NewFixedSessionGenerator(tokens ...string) *FixedSessionGenerator {
	return &FixedSessionGenerator{tokens: tokens}
}

// Generate returns the next predetermined token.
func (g *FixedSessionGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if len(g.tokens) == 0 {
		return "test-session"
	}
	if g.idx >= len(g.tokens) {
		return g.tokens[len(g.tokens)-1]
	}
	token := g.tokens[g.idx]
	g.idx++
	return token
}
