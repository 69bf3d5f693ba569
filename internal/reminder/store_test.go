package reminder_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/reminders/internal/reminder"
	"github.com/roach88/reminders/internal/testutil"
)

func newTestStore(t *testing.T, opts ...reminder.Option) (*reminder.Store, *testutil.ManualScheduler) {
	t.Helper()
	sched := testutil.NewManualScheduler()
	base := []reminder.Option{
		reminder.WithScheduler(sched),
		reminder.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		reminder.WithSessionIDGenerator(reminder.NewFixedSessionGenerator("session-test")),
	}
	s := reminder.New(append(base, opts...)...)
	t.Cleanup(s.Close)
	return s, sched
}

func TestStore_AddBuyMilk(t *testing.T) {
	s, _ := newTestStore(t)

	r, ok := s.Add("Buy milk")
	require.True(t, ok)
	assert.Equal(t, reminder.Reminder{ID: 1, Text: "Buy milk", Completed: false}, r)

	assert.Equal(t, []reminder.Reminder{{ID: 1, Text: "Buy milk"}}, s.Active())
	assert.Empty(t, s.History())
	assert.Equal(t, reminder.Counts{Total: 1, Pending: 1, Completed: 0}, s.Counts())
}

func TestStore_AddBlankIsNoop(t *testing.T) {
	s, sched := newTestStore(t)
	s.SetInput("   ")

	for _, text := range []string{"", " ", "\t\n", "   "} {
		_, ok := s.Add(text)
		assert.False(t, ok, "text %q should be rejected", text)
	}
	_, ok := s.Submit()
	assert.False(t, ok)

	assert.Empty(t, s.Active())
	assert.Equal(t, "   ", s.Input(), "input is cleared only on a successful add")
	assert.Equal(t, 0, sched.Scheduled(), "no-op must not arm auto-expire")
	assert.Equal(t, int64(0), s.Revision())
}

func TestStore_AddKeepsTextAsTyped(t *testing.T) {
	s, _ := newTestStore(t)

	r, ok := s.Add("  Buy milk ")
	require.True(t, ok)
	assert.Equal(t, "  Buy milk ", r.Text)
	assert.Equal(t, []reminder.Reminder{{ID: 1, Text: "  Buy milk "}}, s.Active())

	// "e" followed by a combining acute accent is not recomposed
	r, ok = s.Add("cafe\u0301")
	require.True(t, ok)
	assert.Equal(t, "cafe\u0301", r.Text)
}

func TestStore_AddWithTextNormalization(t *testing.T) {
	s, _ := newTestStore(t, reminder.WithTextNormalization())

	r, ok := s.Add("  cafe\u0301  ")
	require.True(t, ok)
	assert.Equal(t, "caf\u00e9", r.Text)

	_, ok = s.Add(" \t ")
	assert.False(t, ok)
}

func TestStore_SubmitUsesAndClearsInput(t *testing.T) {
	s, _ := newTestStore(t)

	s.SetInput("Call mom")
	assert.Equal(t, "Call mom", s.Input())

	r, ok := s.Submit()
	require.True(t, ok)
	assert.Equal(t, "Call mom", r.Text)
	assert.Equal(t, "", s.Input())
}

func TestStore_AddClearsPendingInput(t *testing.T) {
	s, _ := newTestStore(t)
	s.SetInput("draft")

	_, ok := s.Add("something else")
	require.True(t, ok)
	assert.Equal(t, "", s.Input())
}

func TestStore_CounterIDsAreUniqueAndIncreasing(t *testing.T) {
	s, _ := newTestStore(t)

	var last int64
	for _, text := range []string{"a", "b", "c", "d"} {
		r, ok := s.Add(text)
		require.True(t, ok)
		assert.Greater(t, r.ID, last)
		last = r.ID
	}
	require.True(t, s.Delete(2))
	require.True(t, s.Delete(4))

	r, _ := s.Add("e")
	assert.Equal(t, int64(5), r.ID, "counter ids are never reused")
}

func TestStore_CounterIDsAfterDelete(t *testing.T) {
	s, _ := newTestStore(t)

	s.Add("A")
	s.Add("B")
	require.True(t, s.Delete(1))
	assert.Equal(t, []reminder.Reminder{{ID: 2, Text: "B"}}, s.Active())

	r, _ := s.Add("C")
	assert.Equal(t, int64(3), r.ID)
	assert.Equal(t, []reminder.Reminder{{ID: 2, Text: "B"}, {ID: 3, Text: "C"}}, s.Active())
}

func TestStore_LengthIDsReproduceCollision(t *testing.T) {
	s, _ := newTestStore(t, reminder.WithIDPolicy(reminder.IDLength))

	a, _ := s.Add("A")
	b, _ := s.Add("B")
	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)

	require.True(t, s.Delete(1))
	c, _ := s.Add("C")
	assert.Equal(t, int64(2), c.ID, "len(active)+1 reuses the id of B")
	assert.Equal(t, []reminder.Reminder{{ID: 2, Text: "B"}, {ID: 2, Text: "C"}}, s.Active())
}

func TestStore_LengthIDsDuplicateToggleAndDelete(t *testing.T) {
	s, _ := newTestStore(t, reminder.WithIDPolicy(reminder.IDLength))
	s.Add("A")
	s.Add("B")
	s.Delete(1)
	s.Add("C")

	r, ok := s.ToggleComplete(2)
	require.True(t, ok)
	assert.Equal(t, "B", r.Text)
	assert.Equal(t, []reminder.Reminder{
		{ID: 2, Text: "B", Completed: true},
		{ID: 2, Text: "C", Completed: true},
	}, s.Active())
	assert.Equal(t, []reminder.Reminder{{ID: 2, Text: "B", Completed: true}}, s.History(),
		"only the first match is recorded")

	require.True(t, s.Delete(2))
	assert.Empty(t, s.Active())
}

func TestStore_ToggleCompleteAppendsHistory(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add("Buy milk")

	r, ok := s.ToggleComplete(1)
	require.True(t, ok)
	assert.True(t, r.Completed)

	want := []reminder.Reminder{{ID: 1, Text: "Buy milk", Completed: true}}
	assert.Equal(t, want, s.Active())
	assert.Equal(t, want, s.History())
	assert.Equal(t, reminder.Counts{Total: 1, Pending: 0, Completed: 1}, s.Counts())
}

func TestStore_ToggleBackKeepsHistory(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add("Buy milk")
	s.ToggleComplete(1)

	r, ok := s.ToggleComplete(1)
	require.True(t, ok)
	assert.False(t, r.Completed)

	assert.Equal(t, []reminder.Reminder{{ID: 1, Text: "Buy milk"}}, s.Active())
	assert.Equal(t, []reminder.Reminder{{ID: 1, Text: "Buy milk", Completed: true}}, s.History())
	assert.Equal(t, reminder.Counts{Total: 1, Pending: 1, Completed: 1}, s.Counts())

	// Completing again records a second snapshot
	s.ToggleComplete(1)
	assert.Len(t, s.History(), 2)
	for _, h := range s.History() {
		assert.True(t, h.Completed)
	}
}

func TestStore_ToggleUnknownIsNoop(t *testing.T) {
	s, sched := newTestStore(t)
	s.Add("A")
	rev := s.Revision()
	scheduled := sched.Scheduled()

	_, ok := s.ToggleComplete(42)
	assert.False(t, ok)
	assert.Equal(t, []reminder.Reminder{{ID: 1, Text: "A"}}, s.Active())
	assert.Empty(t, s.History())
	assert.Equal(t, rev, s.Revision())
	assert.Equal(t, scheduled, sched.Scheduled())
}

func TestStore_DeleteRegardlessOfCompletion(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add("pending")
	s.Add("done")
	s.ToggleComplete(2)

	require.True(t, s.Delete(2))
	assert.Equal(t, []reminder.Reminder{{ID: 1, Text: "pending"}}, s.Active())
	assert.Len(t, s.History(), 1, "delete never touches history")

	require.True(t, s.Delete(1))
	assert.Empty(t, s.Active())
}

func TestStore_DeleteUnknownIsNoop(t *testing.T) {
	s, sched := newTestStore(t)
	s.Add("A")
	scheduled := sched.Scheduled()

	assert.False(t, s.Delete(7))
	assert.Len(t, s.Active(), 1)
	assert.Equal(t, scheduled, sched.Scheduled())
}

func TestStore_AutoExpireAfterDelay(t *testing.T) {
	s, sched := newTestStore(t)
	s.Add("Buy milk")
	s.ToggleComplete(1)

	sched.Advance(9 * time.Second)
	assert.Len(t, s.Active(), 1)

	sched.Advance(time.Second)
	assert.Empty(t, s.Active())
	assert.Equal(t, []reminder.Reminder{{ID: 1, Text: "Buy milk", Completed: true}}, s.History())
	assert.Equal(t, reminder.Counts{Total: 0, Pending: 0, Completed: 1}, s.Counts())
}

func TestStore_AutoExpireLeavesPending(t *testing.T) {
	s, sched := newTestStore(t)
	s.Add("keep")
	s.Add("drop")
	s.Add("keep too")
	s.ToggleComplete(2)

	sched.Advance(10 * time.Second)
	assert.Equal(t, []reminder.Reminder{
		{ID: 1, Text: "keep"},
		{ID: 3, Text: "keep too"},
	}, s.Active())
}

func TestStore_AutoExpireIsDebounced(t *testing.T) {
	s, sched := newTestStore(t)
	s.Add("A")
	s.ToggleComplete(1)

	sched.Advance(5 * time.Second)
	s.Add("B") // resets the countdown

	sched.Advance(5 * time.Second)
	assert.Len(t, s.Active(), 2, "only 5s of quiet since the last mutation")

	sched.Advance(4 * time.Second)
	assert.Len(t, s.Active(), 2)

	sched.Advance(time.Second)
	assert.Equal(t, []reminder.Reminder{{ID: 2, Text: "B"}}, s.Active())
}

func TestStore_AutoExpireRearmsOnlyAfterRemoval(t *testing.T) {
	s, sched := newTestStore(t)
	s.Add("A")
	assert.Equal(t, 1, sched.Pending())

	s.ToggleComplete(1)
	assert.Equal(t, 1, sched.Pending(), "previous timer is cancelled")

	sched.Advance(10 * time.Second)
	assert.Empty(t, s.Active())
	assert.Equal(t, 1, sched.Pending(), "expiry is a mutation and re-arms")

	sched.Advance(10 * time.Second)
	assert.Equal(t, 0, sched.Pending(), "nothing removed, nothing re-armed")
}

func TestStore_AutoExpireWithNothingCompleted(t *testing.T) {
	s, sched := newTestStore(t)
	s.Add("A")
	rev := s.Revision()

	sched.Advance(time.Minute)
	assert.Len(t, s.Active(), 1)
	assert.Equal(t, rev, s.Revision())
}

func TestStore_CustomDelay(t *testing.T) {
	s, sched := newTestStore(t, reminder.WithAutoExpireDelay(3*time.Second))
	assert.Equal(t, 3*time.Second, s.Delay())

	s.Add("A")
	s.ToggleComplete(1)
	sched.Advance(3 * time.Second)
	assert.Empty(t, s.Active())
}

func TestStore_NonPositiveDelayKeepsDefault(t *testing.T) {
	s, _ := newTestStore(t, reminder.WithAutoExpireDelay(0))
	assert.Equal(t, reminder.DefaultAutoExpireDelay, s.Delay())
}

// leakyScheduler hands out timers whose Stop never prevents the callback,
// reproducing the race where a timer fires after it has been superseded.
type leakyScheduler struct {
	*testutil.ManualScheduler
}

type leakyTimer struct{}

func (leakyTimer) Stop() bool { return false }

func (l leakyScheduler) AfterFunc(d time.Duration, f func()) reminder.Timer {
	l.ManualScheduler.AfterFunc(d, f)
	return leakyTimer{}
}

func TestStore_StaleTimerIsIgnored(t *testing.T) {
	sched := leakyScheduler{testutil.NewManualScheduler()}
	s, _ := newTestStore(t, reminder.WithScheduler(sched))

	s.Add("A")
	s.ToggleComplete(1)
	sched.Advance(5 * time.Second)
	s.Add("B")

	sched.Advance(5 * time.Second)
	assert.Len(t, s.Active(), 2, "timer armed before Add(B) must not expire anything")

	sched.Advance(5 * time.Second)
	assert.Equal(t, []reminder.Reminder{{ID: 2, Text: "B"}}, s.Active())
}

func TestStore_ExpireNow(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add("A")
	s.Add("B")
	s.ToggleComplete(1)

	assert.Equal(t, 1, s.ExpireNow())
	assert.Equal(t, []reminder.Reminder{{ID: 2, Text: "B"}}, s.Active())
	assert.Equal(t, 0, s.ExpireNow())
}

func TestStore_CountsInvariant(t *testing.T) {
	s, sched := newTestStore(t)

	check := func() {
		t.Helper()
		c := s.Counts()
		completedInActive := 0
		for _, r := range s.Active() {
			if r.Completed {
				completedInActive++
			}
		}
		assert.Equal(t, c.Total, c.Pending+completedInActive)
		assert.Equal(t, len(s.History()), c.Completed)
		for _, h := range s.History() {
			assert.True(t, h.Completed)
		}
	}

	steps := []func(){
		func() { s.Add("one") },
		func() { s.Add("two") },
		func() { s.Add("three") },
		func() { s.ToggleComplete(2) },
		func() { s.ToggleComplete(3) },
		func() { s.ToggleComplete(3) },
		func() { s.Delete(1) },
		func() { s.Add(" ") },
		func() { sched.Advance(10 * time.Second) },
		func() { s.ToggleComplete(99) },
		func() { s.Add("four") },
		func() { s.ToggleComplete(4) },
		func() { sched.Advance(10 * time.Second) },
	}
	for _, step := range steps {
		step()
		check()
	}
}

func TestStore_CloseCancelsTimer(t *testing.T) {
	s, sched := newTestStore(t)
	s.Add("A")
	s.ToggleComplete(1)
	require.Equal(t, 1, sched.Pending())

	s.Close()
	assert.Equal(t, 0, sched.Pending())

	sched.Advance(time.Minute)
	assert.Len(t, s.Active(), 1, "no expiry after teardown")
}

func TestStore_MutationsAfterCloseAreNoops(t *testing.T) {
	s, sched := newTestStore(t)
	s.Add("A")
	s.Close()
	s.Close() // idempotent

	_, ok := s.Add("B")
	assert.False(t, ok)
	_, ok = s.ToggleComplete(1)
	assert.False(t, ok)
	assert.False(t, s.Delete(1))
	assert.Equal(t, 0, s.ExpireNow())
	s.SetInput("ignored")

	assert.Equal(t, []reminder.Reminder{{ID: 1, Text: "A"}}, s.Active())
	assert.Equal(t, "", s.Input())
	assert.Equal(t, 0, sched.Pending())
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s, _ := newTestStore(t)
	s.Add("A")
	s.ToggleComplete(1)
	s.SetInput("draft")

	snap := s.Snapshot()
	assert.Equal(t, reminder.Snapshot{
		Active:  []reminder.Reminder{{ID: 1, Text: "A", Completed: true}},
		History: []reminder.Reminder{{ID: 1, Text: "A", Completed: true}},
		Input:   "draft",
		Counts:  reminder.Counts{Total: 1, Pending: 0, Completed: 1},
	}, snap)

	snap.Active[0].Text = "mutated"
	snap.History[0].Completed = false
	assert.Equal(t, "A", s.Active()[0].Text)
	assert.True(t, s.History()[0].Completed)
}

func TestStore_SubscribeReceivesEvents(t *testing.T) {
	s, sched := newTestStore(t)
	feed := s.Subscribe()

	s.Add("A")
	s.Add("B")
	s.ToggleComplete(1)
	s.Delete(2)
	s.Delete(9)
	sched.Advance(10 * time.Second)

	events := feed.Drain()
	require.Len(t, events, 5)

	kinds := make([]reminder.EventKind, len(events))
	for i, ev := range events {
		kinds[i] = ev.Kind
		if i > 0 {
			assert.Greater(t, ev.Seq, events[i-1].Seq)
		}
	}
	assert.Equal(t, []reminder.EventKind{
		reminder.EventAdded,
		reminder.EventAdded,
		reminder.EventToggled,
		reminder.EventDeleted,
		reminder.EventExpired,
	}, kinds)

	assert.Equal(t, reminder.Reminder{ID: 2, Text: "B"}, events[3].Reminder)
	assert.Equal(t, reminder.Reminder{ID: 1, Text: "A", Completed: true}, events[4].Reminder)
}

func TestStore_SubscribeSeesExpiry(t *testing.T) {
	s, sched := newTestStore(t)
	s.Add("A")
	s.ToggleComplete(1)

	feed := s.Subscribe()
	sched.Advance(10 * time.Second)

	ev, ok := feed.TryNext()
	require.True(t, ok)
	assert.Equal(t, reminder.EventExpired, ev.Kind)
	assert.Equal(t, reminder.Reminder{ID: 1, Text: "A", Completed: true}, ev.Reminder)

	_, ok = feed.TryNext()
	assert.False(t, ok)
}

func TestStore_CloseClosesFeeds(t *testing.T) {
	s, _ := newTestStore(t)
	feed := s.Subscribe()
	s.Close()

	assert.True(t, feed.Closed())
	select {
	case <-feed.Wait():
	default:
		t.Fatal("wait channel should be closed")
	}

	late := s.Subscribe()
	assert.True(t, late.Closed())
}

func TestStore_Unsubscribe(t *testing.T) {
	s, _ := newTestStore(t)
	feed := s.Subscribe()
	s.Unsubscribe(feed)

	s.Add("A")
	assert.True(t, feed.Closed())
	assert.Equal(t, 0, feed.Len())
}

func TestStore_Session(t *testing.T) {
	s, _ := newTestStore(t)
	assert.Equal(t, "session-test", s.Session())
}

func TestStore_SystemSchedulerExpires(t *testing.T) {
	s := reminder.New(
		reminder.WithAutoExpireDelay(20*time.Millisecond),
		reminder.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	defer s.Close()

	s.Add("A")
	s.ToggleComplete(1)

	require.Eventually(t, func() bool {
		return s.Counts().Total == 0
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, s.Counts().Completed)
	assert.NotEmpty(t, s.Session())
}
