package reminder

// rearmLocked cancels any outstanding auto-expire timer and starts a new one
// for the mutation stamped rev. Only the timer armed at the latest revision
// may act when it fires.
func (s *Store) rearmLocked(rev int64) {
	if s.closed {
		return
	}
	if s.timer != nil {
		s.timer.Stop()
	}

	s.armedRev = rev
	s.timer = s.scheduler.AfterFunc(s.delay, func() {
		s.fire(rev)
	})
	s.logger.Debug("auto-expire armed", "rev", rev, "delay", s.delay)
}

// fire is the timer callback. A callback that lost the race against a newer
// mutation (Stop came too late) sees a stale revision and does nothing.
func (s *Store) fire(rev int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || rev != s.armedRev {
		s.logger.Debug("auto-expire skipped", "rev", rev, "armed_rev", s.armedRev, "closed", s.closed)
		return
	}
	s.timer = nil

	removed := s.expireLocked()
	s.logger.Debug("auto-expire fired", "rev", rev, "removed", removed)
}

// expireLocked drops completed reminders from the active set. Removing at
// least one reminder is itself a mutation and re-arms the timer.
func (s *Store) expireLocked() int {
	kept := make([]Reminder, 0, len(s.active))
	var rev int64
	for _, r := range s.active {
		if !r.Completed {
			kept = append(kept, r)
			continue
		}
		rev = s.clock.Next()
		s.publishLocked(Event{Seq: rev, Kind: EventExpired, Reminder: r})
	}

	removed := len(s.active) - len(kept)
	if removed == 0 {
		return 0
	}
	s.active = kept

	s.rearmLocked(rev)
	return removed
}
