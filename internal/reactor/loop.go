package reactor

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/smazurov/gpiosample/internal/logging"
	"github.com/smazurov/gpiosample/internal/metrics"
)

// DefaultInboxSize bounds the number of queued button events.
const DefaultInboxSize = 32

// ErrLoopRunning is returned by Run when the loop is already running.
var ErrLoopRunning = errors.New("reactor loop already running")

// Loop is the reactor goroutine. It serialises inbox events and release
// poll ticks onto the Reactor.
type Loop struct {
	reactor *Reactor
	inbox   chan ButtonEvent
	metrics *metrics.Metrics
	logger  logging.Logger
	running atomic.Bool
}

// NewLoop creates a loop around r. inboxSize <= 0 uses DefaultInboxSize.
func NewLoop(r *Reactor, inboxSize int, m *metrics.Metrics, logger logging.Logger) *Loop {
	if inboxSize <= 0 {
		inboxSize = DefaultInboxSize
	}
	if logger == nil {
		logger = logging.GetLogger("reactor")
	}
	return &Loop{
		reactor: r,
		inbox:   make(chan ButtonEvent, inboxSize),
		metrics: m,
		logger:  logger,
	}
}

// Post queues ev without blocking. It reports false when the inbox is full
// and the event was dropped.
func (l *Loop) Post(ev ButtonEvent) bool {
	select {
	case l.inbox <- ev:
		return true
	default:
		l.metrics.DroppedEvent()
		l.logger.Warn("Reactor inbox full, dropping button event", "event", ev.Kind.String(), "source", string(ev.Source))
		return false
	}
}

// Run applies events until ctx is done. An event being applied when ctx
// is cancelled completes first.
func (l *Loop) Run(ctx context.Context) error {
	if !l.running.CompareAndSwap(false, true) {
		return ErrLoopRunning
	}
	defer l.running.Store(false)

	l.logger.Debug("Reactor loop started")
	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("Reactor loop stopped")
			return nil
		case ev := <-l.inbox:
			l.reactor.Apply(ev)
		case <-l.reactor.releaseTick():
			l.reactor.pollRelease()
		}
	}
}
