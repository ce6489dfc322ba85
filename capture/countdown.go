package capture

import (
	"sync"
	"time"
)

const (
	// DefaultRecordingDuration bounds a single recording.
	DefaultRecordingDuration = 5 * time.Second
	// DefaultTickInterval is the countdown resolution.
	DefaultTickInterval = time.Second
)

// Ticker delivers ticks on C until stopped.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// TickerFactory creates a Ticker firing every d.
type TickerFactory func(d time.Duration) Ticker

type timeTicker struct{ t *time.Ticker }

func (t timeTicker) C() <-chan time.Time { return t.t.C }
func (t timeTicker) Stop()               { t.t.Stop() }

// NewTimeTicker is the TickerFactory backed by time.NewTicker.
func NewTimeTicker(d time.Duration) Ticker { return timeTicker{time.NewTicker(d)} }

// Countdown counts whole intervals down to zero.
//
// The tick callback runs with the countdown locked, so it must not call back
// into the Countdown; once Cancel returns no further tick callback runs.
// The expire callback runs at most once, unlocked, when the count reaches
// zero. A Cancel that completes before the final tick suppresses it, but a
// Cancel racing the final tick can return before the callback starts, so
// the callback must tolerate running after Cancel. It may call Cancel.
type Countdown struct {
	mu        sync.Mutex
	remaining int
	stopped   bool
	cancelled bool
	stop      chan struct{}
	done      chan struct{}

	interval  time.Duration
	newTicker TickerFactory
	onTick    func(remaining int)
	onExpire  func()
}

// CountdownOption configures a Countdown.
type CountdownOption func(*Countdown)

// WithTickInterval sets the tick interval.
func WithTickInterval(d time.Duration) CountdownOption {
	return func(c *Countdown) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithTicker replaces the ticker source.
func WithTicker(f TickerFactory) CountdownOption {
	return func(c *Countdown) { c.newTicker = f }
}

// OnTick registers a callback receiving the remaining count after each tick.
func OnTick(fn func(remaining int)) CountdownOption {
	return func(c *Countdown) { c.onTick = fn }
}

// OnExpire registers the callback fired when the count reaches zero.
func OnExpire(fn func()) CountdownOption {
	return func(c *Countdown) { c.onExpire = fn }
}

// StartCountdown starts counting total down in interval steps. The initial
// remaining count is total/interval, rounded up.
func StartCountdown(total time.Duration, opts ...CountdownOption) *Countdown {
	c := &Countdown{
		interval:  DefaultTickInterval,
		newTicker: NewTimeTicker,
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	if total <= 0 {
		total = DefaultRecordingDuration
	}
	c.remaining = int((total + c.interval - 1) / c.interval)

	go c.run(c.newTicker(c.interval))
	return c
}

func (c *Countdown) run(t Ticker) {
	defer close(c.done)
	defer t.Stop()
	for {
		select {
		case <-c.stop:
			return
		case <-t.C():
			if c.tick() {
				if c.onExpire != nil && !c.wasCancelled() {
					c.onExpire()
				}
				return
			}
		}
	}
}

// tick decrements the count and reports whether it expired.
func (c *Countdown) tick() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return false
	}
	c.remaining--
	if c.onTick != nil {
		c.onTick(c.remaining)
	}
	if c.remaining > 0 {
		return false
	}
	c.stopped = true
	close(c.stop)
	return true
}

func (c *Countdown) wasCancelled() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled
}

// Remaining returns the whole intervals left.
func (c *Countdown) Remaining() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Cancel stops the countdown and resets the remaining count to zero. It is
// idempotent and does not fire the expire callback.
func (c *Countdown) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.remaining = 0
	c.cancelled = true
	if c.stopped {
		return
	}
	c.stopped = true
	close(c.stop)
}

// Done is closed once the countdown goroutine has exited, after any expire
// callback has returned.
func (c *Countdown) Done() <-chan struct{} { return c.done }
