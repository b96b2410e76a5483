// Package input watches the button line and posts button events to the
// reactor loop, either from a polling goroutine or from a driver callback.
package input

import (
	"errors"
	"fmt"
	"time"

	"github.com/smazurov/gpiosample/internal/gpio"
	"github.com/smazurov/gpiosample/internal/logging"
	"github.com/smazurov/gpiosample/internal/metrics"
	"github.com/smazurov/gpiosample/internal/reactor"
)

// Model selects how button changes are observed.
type Model string

// Input models.
const (
	ModelAuto     Model = "auto"
	ModelPolling  Model = "polling"
	ModelListener Model = "listener"
)

// Defaults for the polling model.
const (
	DefaultPollTimeout   = 100 * time.Millisecond
	DefaultShutdownGrace = time.Second
)

// ErrLifecycleInterrupted is returned by Stop when the worker did not exit
// within the grace period.
var ErrLifecycleInterrupted = errors.New("input worker did not stop within grace period")

// Sink receives button events. It must not block.
type Sink interface {
	Post(ev reactor.ButtonEvent) bool
}

// Source is a running button watcher.
type Source interface {
	Start() error
	Stop(grace time.Duration) error
	Model() Model
}

// Options tunes a Source.
type Options struct {
	PollTimeout time.Duration
	Metrics     *metrics.Metrics
	Logger      logging.Logger
}

// New picks the watcher for line. ModelAuto prefers the listener when the
// driver can call back, and falls back to polling.
func New(line gpio.Line, model Model, sink Sink, opts Options) (Source, error) {
	if opts.Logger == nil {
		opts.Logger = logging.GetLogger("input")
	}
	if opts.PollTimeout <= 0 {
		opts.PollTimeout = DefaultPollTimeout
	}

	notifier, canListen := line.(gpio.Notifier)
	waiter, canPoll := line.(gpio.Waiter)

	switch model {
	case ModelAuto, "":
		if canListen {
			return newListener(notifier, sink, opts), nil
		}
		if canPoll {
			return newPoller(line, waiter, sink, opts), nil
		}
	case ModelListener:
		if canListen {
			return newListener(notifier, sink, opts), nil
		}
	case ModelPolling:
		if canPoll {
			return newPoller(line, waiter, sink, opts), nil
		}
	default:
		return nil, fmt.Errorf("unknown input model %q", model)
	}
	return nil, &gpio.Error{Code: gpio.ErrCodeUnsupported, Op: "watch", Cause: fmt.Errorf("driver line does not support the %s model", model)}
}
