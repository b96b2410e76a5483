package input

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/smazurov/gpiosample/internal/gpio"
	"github.com/smazurov/gpiosample/internal/logging"
	"github.com/smazurov/gpiosample/internal/metrics"
	"github.com/smazurov/gpiosample/internal/reactor"
)

// Poller blocks on WaitForChange in its own goroutine and posts an event
// for every observed edge.
type Poller struct {
	line    gpio.Line
	waiter  gpio.Waiter
	sink    Sink
	timeout time.Duration
	metrics *metrics.Metrics
	logger  logging.Logger

	stopping atomic.Bool
	stopCh   chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

func newPoller(line gpio.Line, waiter gpio.Waiter, sink Sink, opts Options) *Poller {
	return &Poller{
		line:    line,
		waiter:  waiter,
		sink:    sink,
		timeout: opts.PollTimeout,
		metrics: opts.Metrics,
		logger:  opts.Logger,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (p *Poller) Model() Model { return ModelPolling }

// Start launches the worker goroutine.
func (p *Poller) Start() error {
	go p.run()
	p.logger.Debug("Polling worker started", "timeout", p.timeout)
	return nil
}

func (p *Poller) run() {
	defer close(p.done)

	for !p.stopping.Load() {
		changed, err := p.waiter.WaitForChange(p.timeout)
		if err != nil {
			if p.stopping.Load() {
				return
			}
			p.logger.Warn("Waiting for button change failed", "error", err)
			p.metrics.HardwareError("wait")
			// Back off one timeout so a dead line does not spin.
			select {
			case <-p.stopCh:
				return
			case <-time.After(p.timeout):
			}
			continue
		}
		if !changed || p.stopping.Load() {
			continue
		}

		high, err := p.line.Value()
		if err != nil {
			p.logger.Warn("Reading button failed", "error", err)
			p.metrics.HardwareError("read")
			continue
		}
		p.sink.Post(reactor.FromLevel(high, reactor.SourceHardware))
	}
}

// Stop asks the worker to exit and waits up to grace for it.
func (p *Poller) Stop(grace time.Duration) error {
	if grace <= 0 {
		grace = DefaultShutdownGrace
	}
	p.stopOnce.Do(func() {
		p.stopping.Store(true)
		close(p.stopCh)
		p.waiter.StopWaiting()
	})

	select {
	case <-p.done:
		p.logger.Debug("Polling worker stopped")
		return nil
	case <-time.After(grace):
		return ErrLifecycleInterrupted
	}
}
