// Package gpio abstracts the GPIO lines used by the button/LED reactor.
//
// A Driver opens lines by LineSpec. Every Line can be read and written;
// lines opened in an interrupt-edge mode additionally implement Waiter
// (polling-capable drivers) or Notifier (listener-capable drivers), which
// selects the concurrency model used to watch the button.
package gpio

import (
	"fmt"
	"time"
)

// Mode is the configuration a line is opened with.
type Mode int

// Line modes.
const (
	ModeInput Mode = iota
	ModeOutputHigh
	ModeOutputLow
	ModeEdgeRising
	ModeEdgeFalling
	ModeEdgeBoth
)

var modeNames = map[Mode]string{
	ModeInput:       "input",
	ModeOutputHigh:  "output-high",
	ModeOutputLow:   "output-low",
	ModeEdgeRising:  "interrupt-edge-rising",
	ModeEdgeFalling: "interrupt-edge-falling",
	ModeEdgeBoth:    "interrupt-edge-both",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", int(m))
}

// IsOutput reports whether the mode drives the line.
func (m Mode) IsOutput() bool {
	return m == ModeOutputHigh || m == ModeOutputLow
}

// IsInterrupt reports whether the mode enables edge detection.
func (m Mode) IsInterrupt() bool {
	return m == ModeEdgeRising || m == ModeEdgeFalling || m == ModeEdgeBoth
}

// LineSpec addresses a single line. Number is the global (sysfs) GPIO
// number; Chip and Offset address the same line on the character device.
// Drivers use whichever addressing they support.
type LineSpec struct {
	Number   int
	Chip     string
	Offset   int
	Consumer string
}

func (s LineSpec) String() string {
	if s.Chip != "" {
		return fmt.Sprintf("%d (%s:%d)", s.Number, s.Chip, s.Offset)
	}
	return fmt.Sprintf("%d", s.Number)
}

// Line is an opened GPIO line. Levels are electrical: true is high.
type Line interface {
	SetValue(high bool) error
	Value() (bool, error)
	Close() error
}

// Waiter is implemented by lines that can block until an edge occurs.
type Waiter interface {
	// WaitForChange blocks until an edge is detected, the timeout elapses
	// or StopWaiting is called. It reports whether an edge was seen.
	WaitForChange(timeout time.Duration) (bool, error)
	// StopWaiting makes a pending WaitForChange return early.
	StopWaiting()
}

// Notifier is implemented by lines that deliver edges through a callback.
// The callback receives the level after the edge and runs on a driver
// goroutine.
type Notifier interface {
	RegisterListener(fn func(high bool)) error
}

// Driver opens lines on one GPIO backend.
type Driver interface {
	Name() string
	Open(spec LineSpec, mode Mode) (Line, error)
	Close() error
}
