package gpio

import (
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/smazurov/gpiosample/internal/logging"
	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// periphDriver opens lines through periph.io, addressed by global GPIO
// number. Interrupt lines are polling-capable.
type periphDriver struct {
	logger logging.Logger
}

func newPeriph(logger logging.Logger) (Driver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize periph host: %w", err)
	}
	return &periphDriver{logger: logger}, nil
}

func (d *periphDriver) Name() string { return DriverPeriph }

func (d *periphDriver) Close() error { return nil }

func (d *periphDriver) Open(spec LineSpec, mode Mode) (Line, error) {
	pin := gpioreg.ByName(strconv.Itoa(spec.Number))
	if pin == nil {
		return nil, ioError("open", spec, errors.New("no such pin"))
	}

	var err error
	switch mode {
	case ModeOutputHigh:
		err = pin.Out(pgpio.High)
	case ModeOutputLow:
		err = pin.Out(pgpio.Low)
	case ModeInput:
		err = pin.In(pgpio.PullNoChange, pgpio.NoEdge)
	case ModeEdgeRising:
		err = pin.In(pgpio.PullNoChange, pgpio.RisingEdge)
	case ModeEdgeFalling:
		err = pin.In(pgpio.PullNoChange, pgpio.FallingEdge)
	case ModeEdgeBoth:
		err = pin.In(pgpio.PullNoChange, pgpio.BothEdges)
	default:
		err = fmt.Errorf("unsupported mode %s", mode)
	}
	if err != nil {
		return nil, ioError("configure", spec, err)
	}

	d.logger.Debug("Opened periph line", "line", spec.String(), "pin", pin.Name(), "mode", mode.String())

	line := &periphLine{spec: spec, pin: pin}
	if mode.IsInterrupt() {
		return &periphEdgeLine{periphLine: line}, nil
	}
	return line, nil
}

type periphLine struct {
	spec   LineSpec
	pin    pgpio.PinIO
	mu     sync.Mutex
	closed bool
}

func (l *periphLine) SetValue(high bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return ioError("write", l.spec, ErrClosed)
	}
	if err := l.pin.Out(pgpio.Level(high)); err != nil {
		return ioError("write", l.spec, err)
	}
	return nil
}

func (l *periphLine) Value() (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false, ioError("read", l.spec, ErrClosed)
	}
	return bool(l.pin.Read()), nil
}

func (l *periphLine) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return nil
	}
	l.closed = true
	if err := l.pin.Halt(); err != nil {
		return ioError("close", l.spec, err)
	}
	return nil
}

// periphEdgeLine adds WaitForEdge based waiting. Halt aborts a pending
// WaitForEdge, which is how StopWaiting is delivered.
type periphEdgeLine struct {
	*periphLine
}

func (l *periphEdgeLine) WaitForChange(timeout time.Duration) (bool, error) {
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return false, ioError("wait", l.spec, ErrClosed)
	}
	return l.pin.WaitForEdge(timeout), nil
}

func (l *periphEdgeLine) StopWaiting() {
	_ = l.pin.Halt()
}
