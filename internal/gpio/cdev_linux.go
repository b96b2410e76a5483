//go:build linux

package gpio

import (
	"errors"
	"sync"

	"github.com/smazurov/gpiosample/internal/logging"
	"github.com/warthog618/go-gpiocdev"
)

const cdevSupported = true

// cdevDriver opens lines on the GPIO character device, addressed by chip
// and offset. Interrupt lines are listener-capable.
type cdevDriver struct {
	logger logging.Logger
}

func newCdev(logger logging.Logger) (Driver, error) {
	return &cdevDriver{logger: logger}, nil
}

func (d *cdevDriver) Name() string { return DriverCdev }

func (d *cdevDriver) Close() error { return nil }

func (d *cdevDriver) Open(spec LineSpec, mode Mode) (Line, error) {
	if spec.Chip == "" {
		return nil, ioError("open", spec, errors.New("no chip configured for line"))
	}

	consumer := spec.Consumer
	if consumer == "" {
		consumer = "gpiosample"
	}

	var edge *cdevEdgeLine
	var handler gpiocdev.EventHandler
	if mode.IsInterrupt() {
		// The handler has to be supplied with the request, so listeners
		// registered later are dispatched through the edge line.
		edge = &cdevEdgeLine{}
		handler = edge.handle
	}
	opts := cdevOptions(mode, consumer, handler)

	l, err := gpiocdev.RequestLine(spec.Chip, spec.Offset, opts...)
	if err != nil {
		return nil, ioError("request", spec, err)
	}

	d.logger.Debug("Requested cdev line", "line", spec.String(), "mode", mode.String())

	line := &cdevLine{spec: spec, line: l}
	if edge != nil {
		edge.cdevLine = line
		return edge, nil
	}
	return line, nil
}

type cdevLine struct {
	spec LineSpec
	line *gpiocdev.Line
}

func (l *cdevLine) SetValue(high bool) error {
	v := 0
	if high {
		v = 1
	}
	if err := l.line.SetValue(v); err != nil {
		return ioError("write", l.spec, err)
	}
	return nil
}

func (l *cdevLine) Value() (bool, error) {
	v, err := l.line.Value()
	if err != nil {
		return false, ioError("read", l.spec, err)
	}
	return v != 0, nil
}

func (l *cdevLine) Close() error {
	if err := l.line.Close(); err != nil {
		return ioError("close", l.spec, err)
	}
	return nil
}

type cdevEdgeLine struct {
	*cdevLine
	mu       sync.RWMutex
	listener func(high bool)
}

func (l *cdevEdgeLine) RegisterListener(fn func(high bool)) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listener = fn
	return nil
}

func (l *cdevEdgeLine) handle(evt gpiocdev.LineEvent) {
	l.mu.RLock()
	fn := l.listener
	l.mu.RUnlock()
	if fn == nil {
		return
	}
	fn(evt.Type == gpiocdev.LineEventRisingEdge)
}

// cdevOptions builds the line request for mode. Buttons are active-low
// against a pull-up, so interrupt lines request the pull-up bias.
func cdevOptions(mode Mode, consumer string, handler gpiocdev.EventHandler) []gpiocdev.LineReqOption {
	opts := []gpiocdev.LineReqOption{gpiocdev.WithConsumer(consumer)}
	switch mode {
	case ModeOutputHigh:
		opts = append(opts, gpiocdev.AsOutput(1))
	case ModeOutputLow:
		opts = append(opts, gpiocdev.AsOutput(0))
	case ModeInput:
		opts = append(opts, gpiocdev.AsInput)
	case ModeEdgeRising, ModeEdgeFalling, ModeEdgeBoth:
		opts = append(opts, gpiocdev.AsInput, gpiocdev.WithPullUp, gpiocdev.WithEventHandler(handler))
		switch mode {
		case ModeEdgeRising:
			opts = append(opts, gpiocdev.WithRisingEdge)
		case ModeEdgeFalling:
			opts = append(opts, gpiocdev.WithFallingEdge)
		default:
			opts = append(opts, gpiocdev.WithBothEdges)
		}
	}
	return opts
}
