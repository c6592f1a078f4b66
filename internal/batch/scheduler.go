package batch

import (
	"sync"
	"time"
)

// DefaultIdleTimeout is how long the scheduler waits for new records before
// forcing a flush of a partially filled batch.
const DefaultIdleTimeout = 3 * time.Second

// Scheduler debounces idle flushes. It is a two-state machine: Idle (no
// pending timer) and Armed (a flush is scheduled idle-timeout-from-now).
// Every Touch while Armed cancels and re-arms the timer, so continuous
// traffic defers the idle flush indefinitely; the size-threshold flush path
// is independent and keeps the buffer bounded.
//
// Timer.Stop cannot cancel a timer whose callback has already started, so
// each arm carries a generation number and only the current generation may
// fire. At most one generation is live at a time.
type Scheduler struct {
	mu      sync.Mutex
	idle    time.Duration
	fire    func()
	timer   *time.Timer
	gen     uint64
	armed   bool
	stopped bool
}

// NewScheduler creates a Scheduler that invokes fire after idle elapses with
// no intervening Touch.
func NewScheduler(idle time.Duration, fire func()) *Scheduler {
	if idle <= 0 {
		idle = DefaultIdleTimeout
	}
	return &Scheduler{idle: idle, fire: fire}
}

// Touch records write activity: arms the timer if Idle, re-arms it if
// already Armed.
func (s *Scheduler) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	if s.timer != nil {
		// Best effort: a timer that already fired is past stopping. The
		// generation check in expire is what actually retires it.
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.armed = true
	s.timer = time.AfterFunc(s.idle, func() { s.expire(gen) })
}

// Armed reports whether an idle flush is pending.
func (s *Scheduler) Armed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.armed
}

// Stop cancels any pending timer. Touch becomes a no-op afterwards.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopped = true
	if s.timer != nil {
		s.timer.Stop()
	}
}

func (s *Scheduler) expire(gen uint64) {
	s.mu.Lock()
	// A Touch may have re-armed between this timer firing and it taking the
	// lock; the newer generation then owns the flush.
	if s.stopped || !s.armed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.armed = false
	s.mu.Unlock()
	// fire runs outside the lock; it may Touch re-entrantly.
	s.fire()
}
