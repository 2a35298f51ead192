package run

import (
	"sync"
	"time"
)

// Clock invokes its tick callback once per interval on a dedicated
// goroutine. Consumers only care about the count of ticks, not wall-clock
// precision, so there is no drift correction.
type Clock struct {
	interval time.Duration
	tick     func()

	mu     sync.Mutex
	cancel chan struct{}
	done   chan struct{}
}

// NewClock builds a stopped clock. A non-positive interval defaults to one
// second.
func NewClock(interval time.Duration, tick func()) *Clock {
	if interval <= 0 {
		interval = time.Second
	}
	return &Clock{interval: interval, tick: tick}
}

// Start begins ticking. Starting an already-running clock is a no-op.
func (c *Clock) Start() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}
	cancel := make(chan struct{})
	done := make(chan struct{})
	c.cancel, c.done = cancel, done
	go c.loop(cancel, done)
}

func (c *Clock) loop(cancel <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	t := time.NewTicker(c.interval)
	defer t.Stop()
	for {
		select {
		case <-cancel:
			return
		case <-t.C:
			// A tick queued before Stop closed cancel must not fire.
			select {
			case <-cancel:
				return
			default:
			}
			c.tick()
		}
	}
}

// Stop ceases emission and waits for the ticking goroutine to exit, so no
// tick callback runs after Stop returns. Must not be called from inside the
// tick callback itself.
func (c *Clock) Stop() {
	c.mu.Lock()
	cancel, done := c.cancel, c.done
	c.cancel, c.done = nil, nil
	c.mu.Unlock()

	if cancel == nil {
		return
	}
	close(cancel)
	<-done
}

// Running reports whether the clock is currently ticking.
func (c *Clock) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancel != nil
}
