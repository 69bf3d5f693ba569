package reminder

import (
	"log/slog"
	"slices"
	"sync"
	"time"
)

// DefaultAutoExpireDelay is how long the active set must stay unchanged
// before completed reminders are cleared from it.
const DefaultAutoExpireDelay = 10 * time.Second

// Store owns the reminder list: the active set, the completion history and
// the pending input text.
//
// Thread-safety model:
//   - Every exported method is safe from any goroutine.
//   - Each mutation holds the store lock for its whole duration, including
//     the auto-expire callback, so mutations never interleave.
//
// INVARIANTS:
//   - history is append-only and every entry has Completed == true
//   - at most one auto-expire timer is outstanding, armed at armedRev
//   - after Close no timer is outstanding and none is ever armed again
type Store struct {
	mu sync.Mutex

	active  []Reminder
	history []Reminder
	input   string

	ids   idAssigner
	clock *Clock

	delay     time.Duration
	scheduler Scheduler
	timer     Timer
	armedRev  int64

	subs   []*Feed
	closed bool

	normalize bool

	sessionGen SessionIDGenerator
	session    string
	logger     *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithAutoExpireDelay sets the quiet period after which completed reminders
// leave the active set. Non-positive values keep the default.
func WithAutoExpireDelay(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.delay = d
		}
	}
}

// WithIDPolicy selects how new reminders are numbered. Default: IDCounter.
func WithIDPolicy(p IDPolicy) Option {
	return func(s *Store) {
		if p != "" {
			s.ids.policy = p
		}
	}
}

// WithScheduler replaces the timer facility used for auto-expire.
func WithScheduler(sched Scheduler) Option {
	return func(s *Store) {
		if sched != nil {
			s.scheduler = sched
		}
	}
}

// WithLogger sets the logger. The store adds a session attribute to it.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSessionIDGenerator sets the generator for the session identifier.
func WithSessionIDGenerator(g SessionIDGenerator) Option {
	return func(s *Store) {
		if g != nil {
			s.sessionGen = g
		}
	}
}

// WithTextNormalization makes Add store trimmed, NFC-normalized text.
// By default text is stored exactly as given.
func WithTextNormalization() Option {
	return func(s *Store) {
		s.normalize = true
	}
}

// New creates an empty store.
func New(opts ...Option) *Store {
	s := &Store{
		active:     []Reminder{},
		history:    []Reminder{},
		ids:        idAssigner{policy: IDCounter},
		clock:      NewClock(),
		delay:      DefaultAutoExpireDelay,
		scheduler:  SystemScheduler{},
		sessionGen: UUIDv7Generator{},
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	s.session = s.sessionGen.Generate()
	s.logger = s.logger.With("session", s.session)
	s.logger.Debug("reminder store created",
		"delay", s.delay,
		"id_policy", s.ids.policy,
		"normalize_text", s.normalize,
	)
	return s
}

// Session returns the identifier attached to this store's log lines.
func (s *Store) Session() string {
	return s.session
}

// Delay returns the configured auto-expire delay.
func (s *Store) Delay() time.Duration {
	return s.delay
}

// SetInput replaces the pending input text. It does not touch the active set.
func (s *Store) SetInput(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.input = text
}

// Input returns the pending input text.
func (s *Store) Input() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.input
}

// Add appends a new pending reminder and clears the pending input text.
// The text is stored as given, surrounding whitespace included, unless the
// store was built WithTextNormalization.
//
// Blank text (whitespace only) is a no-op: nothing is added and the input
// text is left as it was. The boolean reports whether a reminder was added.
func (s *Store) Add(text string) (Reminder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(text)
}

// Submit adds a reminder from the pending input text.
func (s *Store) Submit() (Reminder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addLocked(s.input)
}

func (s *Store) addLocked(text string) (Reminder, bool) {
	if s.closed {
		return Reminder{}, false
	}

	if isBlank(text) {
		s.logger.Debug("ignoring blank reminder")
		return Reminder{}, false
	}
	if s.normalize {
		text = normalizeText(text)
	}

	r := Reminder{
		ID:   s.ids.next(len(s.active)),
		Text: text,
	}
	s.active = append(s.active, r)
	s.input = ""

	rev := s.clock.Next()
	s.publishLocked(Event{Seq: rev, Kind: EventAdded, Reminder: r})
	s.logger.Debug("reminder added", "id", r.ID, "rev", rev)

	s.rearmLocked(rev)
	return r, true
}

// ToggleComplete flips the completed flag of the active reminder with id.
//
// A pending-to-completed transition also appends a completed copy to the
// history. Flipping back to pending leaves the history untouched, so the
// history may list a reminder that is currently pending again.
//
// Under IDLength several active reminders can share an id; all of them are
// flipped, and the first one decides whether a history entry is written.
//
// Unknown ids are a no-op; the boolean reports whether a reminder matched.
func (s *Store) ToggleComplete(id int64) (Reminder, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return Reminder{}, false
	}

	matches := s.indicesLocked(id)
	if len(matches) == 0 {
		s.logger.Debug("toggle of unknown reminder", "id", id)
		return Reminder{}, false
	}

	first := matches[0]
	wasCompleted := s.active[first].Completed

	var rev int64
	for _, i := range matches {
		s.active[i].Completed = !s.active[i].Completed
		rev = s.clock.Next()
		s.publishLocked(Event{Seq: rev, Kind: EventToggled, Reminder: s.active[i]})
	}

	r := s.active[first]
	if !wasCompleted {
		s.history = append(s.history, r)
	}
	s.logger.Debug("reminder toggled", "id", r.ID, "completed", r.Completed, "rev", rev)

	s.rearmLocked(rev)
	return r, true
}

// Delete removes the active reminder with id, whatever its completed flag.
// Under IDLength every reminder sharing the id is removed.
// Unknown ids are a no-op; the boolean reports whether a reminder matched.
func (s *Store) Delete(id int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}

	kept := make([]Reminder, 0, len(s.active))
	var rev int64
	for _, r := range s.active {
		if r.ID != id {
			kept = append(kept, r)
			continue
		}
		rev = s.clock.Next()
		s.publishLocked(Event{Seq: rev, Kind: EventDeleted, Reminder: r})
	}

	if len(kept) == len(s.active) {
		s.logger.Debug("delete of unknown reminder", "id", id)
		return false
	}
	s.active = kept
	s.logger.Debug("reminder deleted", "id", id, "rev", rev)

	s.rearmLocked(rev)
	return true
}

// ExpireNow removes every completed reminder from the active set right away,
// exactly as the auto-expire timer does when it fires. Returns the number of
// reminders removed.
func (s *Store) ExpireNow() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0
	}
	return s.expireLocked()
}

// Close cancels the outstanding auto-expire timer and closes every feed.
// Afterwards mutations are no-ops. Close is idempotent.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true

	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	for _, f := range s.subs {
		f.Close()
	}
	s.subs = nil

	s.logger.Info("reminder store closed",
		"active", len(s.active),
		"history", len(s.history),
	)
}

// Subscribe returns a feed that receives every event applied from now on.
// The feed is closed when the store is closed.
func (s *Store) Subscribe() *Feed {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := newFeed()
	if s.closed {
		f.Close()
		return f
	}
	s.subs = append(s.subs, f)
	return f
}

// Unsubscribe detaches and closes a feed.
func (s *Store) Unsubscribe(f *Feed) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, sub := range s.subs {
		if sub == f {
			s.subs = slices.Delete(s.subs, i, i+1)
			break
		}
	}
	f.Close()
}

// Active returns a copy of the active set in insertion order.
func (s *Store) Active() []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneReminders(s.active)
}

// History returns a copy of the completion history in completion order.
func (s *Store) History() []Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneReminders(s.history)
}

// Counts computes the derived counters from the current state.
func (s *Store) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countsOf(s.active, s.history)
}

// Snapshot returns a consistent copy of the whole store.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		Active:  cloneReminders(s.active),
		History: cloneReminders(s.history),
		Input:   s.input,
		Counts:  countsOf(s.active, s.history),
	}
}

// Revision returns the revision of the last applied mutation.
func (s *Store) Revision() int64 {
	return s.clock.Current()
}

func (s *Store) indicesLocked(id int64) []int {
	var out []int
	for i, r := range s.active {
		if r.ID == id {
			out = append(out, i)
		}
	}
	return out
}

func (s *Store) publishLocked(e Event) {
	for _, f := range s.subs {
		f.publish(e)
	}
}
