package reactor

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultReleasePollPeriod is how often the button is sampled while a
// release is pending.
const DefaultReleasePollPeriod = 5 * time.Millisecond

// LevelReader reads the raw level of a line.
type LevelReader interface {
	Value() (bool, error)
}

// ReleasePoller samples the button level after a press until it returns
// high. It is owned by the reactor goroutine and is not safe for
// concurrent use.
type ReleasePoller struct {
	button LevelReader
	clock  clockwork.Clock
	period time.Duration
	ticker clockwork.Ticker
}

// NewReleasePoller creates a disarmed poller. A nil clock uses the real
// clock; a non-positive period uses DefaultReleasePollPeriod.
func NewReleasePoller(button LevelReader, clock clockwork.Clock, period time.Duration) *ReleasePoller {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if period <= 0 {
		period = DefaultReleasePollPeriod
	}
	return &ReleasePoller{button: button, clock: clock, period: period}
}

// Arm starts sampling. It reports false when the poller was already armed.
func (p *ReleasePoller) Arm() bool {
	if p.ticker != nil {
		return false
	}
	p.ticker = p.clock.NewTicker(p.period)
	return true
}

// Disarm stops sampling. Disarming an idle poller is a no-op.
func (p *ReleasePoller) Disarm() {
	if p.ticker == nil {
		return
	}
	p.ticker.Stop()
	p.ticker = nil
}

// Armed reports whether a release is pending.
func (p *ReleasePoller) Armed() bool {
	return p.ticker != nil
}

// C returns the tick channel while armed and nil otherwise, so a select
// on it blocks forever when idle.
func (p *ReleasePoller) C() <-chan time.Time {
	if p.ticker == nil {
		return nil
	}
	return p.ticker.Chan()
}

// Check samples the button once. It disarms and reports true when the
// line is high again. A read error leaves the poller armed.
func (p *ReleasePoller) Check() (bool, error) {
	high, err := p.button.Value()
	if err != nil {
		return false, err
	}
	if !high {
		return false, nil
	}
	p.Disarm()
	return true, nil
}
