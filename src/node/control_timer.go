package node

import (
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

type timerFactory func(time.Duration) <-chan time.Time

// ControlTimer ticks once per reset. It stays silent until reset, so a node
// with nothing to commit does not wake up.
type ControlTimer struct {
	timerFactory timerFactory
	tickCh       chan struct{}      //sends a signal to listening process
	resetCh      chan time.Duration //receives instruction to reset the heartbeatTimer
	stopCh       chan struct{}      //receives instruction to stop the heartbeatTimer
	shutdownCh   chan struct{}      //receives instruction to exit Run loop
	set          int32
}

// NewControlTimer creates a ControlTimer on top of a timer factory.
func NewControlTimer(timerFactory timerFactory) *ControlTimer {
	return &ControlTimer{
		timerFactory: timerFactory,
		tickCh:       make(chan struct{}, 1),
		resetCh:      make(chan time.Duration),
		stopCh:       make(chan struct{}),
		shutdownCh:   make(chan struct{}),
	}
}

// NewClockControlTimer creates a ControlTimer driven by clock.
func NewClockControlTimer(clock clockwork.Clock) *ControlTimer {
	return NewControlTimer(func(d time.Duration) <-chan time.Time {
		if d <= 0 {
			return nil
		}
		return clock.After(d)
	})
}

// Run is the timer loop. A zero init leaves the timer unset.
func (c *ControlTimer) Run(init time.Duration) {

	setTimer := func(t time.Duration) <-chan time.Time {
		ch := c.timerFactory(t)
		if ch != nil {
			atomic.StoreInt32(&c.set, 1)
		}
		return ch
	}

	timer := setTimer(init)
	for {
		select {
		case <-timer:
			// A pending tick is enough; the reader has not caught up yet.
			select {
			case c.tickCh <- struct{}{}:
			default:
			}
			timer = nil
			atomic.StoreInt32(&c.set, 0)
		case t := <-c.resetCh:
			timer = setTimer(t)
		case <-c.stopCh:
			timer = nil
			atomic.StoreInt32(&c.set, 0)
		case <-c.shutdownCh:
			atomic.StoreInt32(&c.set, 0)
			return
		}
	}
}

// Set reports whether a tick is scheduled.
func (c *ControlTimer) Set() bool {
	return atomic.LoadInt32(&c.set) == 1
}

// Reset schedules a tick after t, replacing any scheduled one. It returns
// false once the timer is shut down.
func (c *ControlTimer) Reset(t time.Duration) bool {
	select {
	case c.resetCh <- t:
		return true
	case <-c.shutdownCh:
		return false
	}
}

// Stop cancels the scheduled tick.
func (c *ControlTimer) Stop() {
	select {
	case c.stopCh <- struct{}{}:
	case <-c.shutdownCh:
	}
}

// Shutdown exits the Run loop.
func (c *ControlTimer) Shutdown() {
	close(c.shutdownCh)
}
