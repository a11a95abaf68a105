package util

import (
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// Waiter monitors reception of values on a channel that is expected to
// deliver continuously, e.g. a push message stream
type Waiter struct {
	sync.Mutex
	clock   clock.Clock
	updated time.Time
	timeout time.Duration
}

// NewWaiter creates new waiter
func NewWaiter(timeout time.Duration) *Waiter {
	return &Waiter{
		clock:   clock.New(),
		timeout: timeout,
	}
}

// Update is called when a value has been received. Update resets the
// timeout counter.
func (p *Waiter) Update() {
	p.Lock()
	p.updated = p.clock.Now()
	p.Unlock()
}

// Overdue returns by how much the channel has been silent beyond its
// timeout, or 0 while it is still considered live. A waiter that never
// received a value is not overdue.
func (p *Waiter) Overdue() time.Duration {
	p.Lock()
	defer p.Unlock()

	if p.updated.IsZero() || p.timeout == 0 {
		return 0
	}

	if elapsed := p.clock.Since(p.updated); elapsed > p.timeout {
		return elapsed
	}

	return 0
}
