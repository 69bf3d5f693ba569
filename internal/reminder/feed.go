package reminder

import "sync"

// Feed is a FIFO of store events for one subscriber.
//
// The feed is unbounded so a burst of expirations never blocks the store
// while it holds its lock. Consumers select on Wait and then drain with
// TryNext:
//
//	for {
//	    select {
//	    case <-ctx.Done():
//	        return
//	    case <-feed.Wait():
//	        for ev, ok := feed.TryNext(); ok; ev, ok = feed.TryNext() {
//	            handle(ev)
//	        }
//	    }
//	}
//
// Wait's channel is closed when the feed is closed, so a waiter never hangs
// on a store that has been torn down.
type Feed struct {
	mu     sync.Mutex
	events []Event
	closed bool
	signal chan struct{} // buffered, size 1
}

func newFeed() *Feed {
	return &Feed{
		events: make([]Event, 0, 16),
		signal: make(chan struct{}, 1),
	}
}

// publish appends an event. Returns false if the feed is closed.
func (f *Feed) publish(e Event) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return false
	}

	f.events = append(f.events, e)

	// Non-blocking: a pending signal already covers this event.
	select {
	case f.signal <- struct{}{}:
	default:
	}

	return true
}

// TryNext removes and returns the oldest event without blocking.
func (f *Feed) TryNext() (Event, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.events) == 0 {
		return Event{}, false
	}

	e := f.events[0]
	if len(f.events) == 1 {
		f.events = f.events[:0]
	} else {
		f.events = f.events[1:]
	}
	return e, true
}

// Drain removes and returns every queued event.
func (f *Feed) Drain() []Event {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]Event, len(f.events))
	copy(out, f.events)
	f.events = f.events[:0]
	return out
}

// Wait returns a channel that signals when events may be available.
func (f *Feed) Wait() <-chan struct{} {
	return f.signal
}

// Len returns the number of queued events.
func (f *Feed) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

// Closed reports whether the feed has been closed.
func (f *Feed) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// Close stops delivery and wakes any waiter. Queued events stay readable.
func (f *Feed) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.closed {
		return
	}

	f.closed = true
	close(f.signal)
}
