package clock

import (
	"context"
	"sync"
	"time"
)

// Clock is an interface for accessing wall-clock time. The tracker's compute
// loop and the client's poll loop depend on this abstraction rather than the
// time package directly, enabling deterministic tests.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
	// After returns a channel that receives the current time once d has elapsed.
	After(d time.Duration) <-chan time.Time
}

// Sleep blocks until d has elapsed on c or ctx is cancelled. It returns
// ctx.Err() when cancelled early, nil otherwise.
func Sleep(ctx context.Context, c Clock, d time.Duration) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.After(d):
		return nil
	}
}

// Real is a Clock backed by the time package.
type Real struct{}

func (Real) Now() time.Time                         { return time.Now() }
func (Real) After(d time.Duration) <-chan time.Time { return time.After(d) }

// Manual is a Clock whose time only moves when Advance is called. Timers
// registered via After fire when the manual time passes their deadline.
type Manual struct {
	mu     sync.Mutex
	now    time.Time
	timers []*manualTimer
}

type manualTimer struct {
	deadline time.Time
	ch       chan time.Time
}

// NewManual constructs a Manual clock starting at now.
func NewManual(now time.Time) *Manual {
	return &Manual{now: now}
}

// Now returns the current manual time.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// After registers a timer firing once Advance moves the clock past d.
func (m *Manual) After(d time.Duration) <-chan time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()

	ch := make(chan time.Time, 1)
	t := &manualTimer{deadline: m.now.Add(d), ch: ch}
	if d <= 0 {
		t.ch <- m.now
		return ch
	}
	m.timers = append(m.timers, t)
	return ch
}

// Advance moves the clock forward by d and fires every timer whose deadline
// has been reached.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.now = m.now.Add(d)
	remaining := m.timers[:0]
	for _, t := range m.timers {
		if !t.deadline.After(m.now) {
			t.ch <- m.now
		} else {
			remaining = append(remaining, t)
		}
	}
	m.timers = remaining
}

// Pending reports how many timers are registered and not yet fired.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.timers)
}
