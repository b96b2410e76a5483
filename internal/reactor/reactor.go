package reactor

import (
	"sync/atomic"
	"time"

	"github.com/smazurov/gpiosample/internal/board"
	"github.com/smazurov/gpiosample/internal/display"
	"github.com/smazurov/gpiosample/internal/events"
	"github.com/smazurov/gpiosample/internal/gpio"
	"github.com/smazurov/gpiosample/internal/logging"
	"github.com/smazurov/gpiosample/internal/metrics"
)

// State is the logical LED state.
type State int32

// LED states.
const (
	LedOff State = iota
	LedOn
)

func (s State) String() string {
	if s == LedOn {
		return "on"
	}
	return "off"
}

// Command returns the LED command for kind under the given polarity.
func Command(kind Kind, polarity board.Polarity) LedCommand {
	lit := kind == Pressed
	level := lit
	if polarity == board.ActiveLow {
		level = !lit
	}
	return LedCommand{Level: level, Lit: lit}
}

// Options carries the optional collaborators of a Reactor.
type Options struct {
	Metrics *metrics.Metrics
	Bus     *events.Bus
	Logger  logging.Logger
	// Poller, when set, is armed on every press to detect releases on
	// boards whose button only interrupts on the falling edge.
	Poller *ReleasePoller
}

// Reactor drives the LED line and the presenter from button events. Its
// methods must only be called from the reactor goroutine; State is safe
// from anywhere.
type Reactor struct {
	led       gpio.Line
	polarity  board.Polarity
	presenter display.Presenter
	poller    *ReleasePoller
	metrics   *metrics.Metrics
	bus       *events.Bus
	logger    logging.Logger

	state atomic.Int32
}

// New creates a reactor for the LED line of a board with the given polarity.
func New(led gpio.Line, polarity board.Polarity, presenter display.Presenter, opts Options) *Reactor {
	if opts.Logger == nil {
		opts.Logger = logging.GetLogger("reactor")
	}
	return &Reactor{
		led:       led,
		polarity:  polarity,
		presenter: presenter,
		poller:    opts.Poller,
		metrics:   opts.Metrics,
		bus:       opts.Bus,
		logger:    opts.Logger,
	}
}

// Reset drives the LED to its inactive level and shows the released
// display, whatever the previous state.
func (r *Reactor) Reset() LedCommand {
	if r.poller != nil {
		r.poller.Disarm()
	}
	cmd := Command(Released, r.polarity)
	r.write(cmd)
	r.state.Store(int32(LedOff))
	r.presenter.ShowReleased()
	return cmd
}

// Apply handles one button event. Repeating an event repeats the command.
func (r *Reactor) Apply(ev ButtonEvent) LedCommand {
	cmd := Command(ev.Kind, r.polarity)
	r.logger.Debug("Button event", "event", ev.Kind.String(), "source", string(ev.Source), "level", cmd.Level)

	r.write(cmd)

	if ev.Kind == Pressed {
		r.state.Store(int32(LedOn))
		r.presenter.ShowPressed()
		// Only the physical button can be polled for its release; a soft
		// press is held until its own release arrives.
		if r.poller != nil && ev.Source == SourceHardware && r.poller.Arm() {
			r.logger.Debug("Release poller armed")
		}
	} else {
		r.state.Store(int32(LedOff))
		r.presenter.ShowReleased()
		if r.poller != nil {
			r.poller.Disarm()
		}
	}

	r.metrics.ButtonEvent(ev.Kind == Pressed, string(ev.Source))
	if r.bus != nil {
		r.bus.Publish(events.ButtonEvent{
			Pressed:   ev.Kind == Pressed,
			Source:    string(ev.Source),
			Timestamp: time.Now().Format(time.RFC3339),
		})
	}
	return cmd
}

// State returns the logical LED state.
func (r *Reactor) State() State {
	return State(r.state.Load())
}

// write sets the LED line. A failure is logged and counted; the caller
// carries on and the display is still updated.
func (r *Reactor) write(cmd LedCommand) {
	err := r.led.SetValue(cmd.Level)
	if err != nil {
		r.logger.Warn("Failed to write LED line", "level", cmd.Level, "error", err)
		r.metrics.HardwareError("write")
	} else {
		r.metrics.LEDWrite(cmd.Level, cmd.Lit)
	}

	if r.bus != nil {
		ev := events.LEDChangedEvent{
			Level:     cmd.Level,
			Lit:       cmd.Lit,
			Timestamp: time.Now().Format(time.RFC3339),
		}
		if err != nil {
			ev.Error = err.Error()
		}
		r.bus.Publish(ev)
	}
}

// releaseTick is the tick channel of an armed poller, nil otherwise.
func (r *Reactor) releaseTick() <-chan time.Time {
	if r.poller == nil {
		return nil
	}
	return r.poller.C()
}

// pollRelease reads the button once and applies a synthetic release when
// it is back at its idle level.
func (r *Reactor) pollRelease() {
	released, err := r.poller.Check()
	if err != nil {
		r.logger.Warn("Failed to read button while polling for release", "error", err)
		r.metrics.HardwareError("read")
		return
	}
	if released {
		r.Apply(Release(SourceSynthetic))
	}
}
