package input

import (
	"sync/atomic"
	"time"

	"github.com/smazurov/gpiosample/internal/gpio"
	"github.com/smazurov/gpiosample/internal/logging"
	"github.com/smazurov/gpiosample/internal/reactor"
)

// Listener registers a driver callback; it has no goroutine of its own.
type Listener struct {
	notifier gpio.Notifier
	sink     Sink
	logger   logging.Logger
	stopped  atomic.Bool
}

func newListener(notifier gpio.Notifier, sink Sink, opts Options) *Listener {
	return &Listener{notifier: notifier, sink: sink, logger: opts.Logger}
}

func (l *Listener) Model() Model { return ModelListener }

// Start registers the callback.
func (l *Listener) Start() error {
	if err := l.notifier.RegisterListener(l.onChange); err != nil {
		return err
	}
	l.logger.Debug("Button listener registered")
	return nil
}

func (l *Listener) onChange(high bool) {
	if l.stopped.Load() {
		return
	}
	l.sink.Post(reactor.FromLevel(high, reactor.SourceHardware))
}

// Stop mutes the callback. Driver callbacks end when the line is closed.
func (l *Listener) Stop(time.Duration) error {
	l.stopped.Store(true)
	return nil
}
