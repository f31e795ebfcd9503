package sequencer

import "time"

// Subscribe registers a playhead observer and returns its unsubscribe
// function. Observers receive the step index about to sound. Both calls are
// safe from inside a notification.
func (s *Scheduler) Subscribe(fn func(step int)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.observers, id)
		s.mu.Unlock()
	}
}

// observerSnapshot copies the current observer set so a notification pass
// survives subscribes and unsubscribes made by the callbacks themselves.
// Caller holds s.mu.
func (s *Scheduler) observerSnapshot() []func(int) {
	fns := make([]func(int), 0, len(s.observers))
	for _, fn := range s.observers {
		fns = append(fns, fn)
	}
	return fns
}

// stepNotice is a deferred playhead notification: the step it announces,
// the playing session it belongs to, and the timer that will deliver it.
// Its only cancellation is the session check at fire time; a Stop or a
// fresh Start in the interim turns it into a no-op.
type stepNotice struct {
	step    int
	session uint64
	timer   *time.Timer
}

// queueNotice schedules the playhead notification for a step, timed to
// land noticeLead before the hit is audible (clamped so it never fires in
// the past).
func (s *Scheduler) queueNotice(step int, at float64, session uint64) {
	s.mu.Lock()
	lead := s.noticeLead
	s.mu.Unlock()

	delay := time.Duration((at-s.backend.Now())*float64(time.Second)) - lead
	if delay < 0 {
		delay = 0
	}

	n := &stepNotice{step: step, session: session}
	n.timer = time.AfterFunc(delay, func() { s.fireNotice(n) })
}

func (s *Scheduler) fireNotice(n *stepNotice) {
	s.mu.Lock()
	live := s.playing && s.session == n.session
	var fns []func(int)
	if live {
		fns = s.observerSnapshot()
	}
	s.mu.Unlock()
	if !live {
		return
	}
	for _, fn := range fns {
		fn(n.step)
	}
}
