package gpio

import (
	"fmt"
	"sync"
	"time"
)

// Sim is an in-memory driver. Input lines idle high, matching a pulled-up
// push button. Lines opened in an interrupt mode are both Waiters and
// Notifiers, so either input model can run against it.
type Sim struct {
	mu     sync.Mutex
	lines  map[int]*simLine
	levels map[int]bool
	// failures injected per line number and operation ("read", "write", "wait")
	failures map[int]map[string]error
}

// NewSim creates an empty simulator.
func NewSim() *Sim {
	return &Sim{
		lines:    make(map[int]*simLine),
		levels:   make(map[int]bool),
		failures: make(map[int]map[string]error),
	}
}

func (s *Sim) Name() string { return DriverSim }

func (s *Sim) Close() error {
	s.mu.Lock()
	lines := make([]*simLine, 0, len(s.lines))
	for _, l := range s.lines {
		lines = append(lines, l)
	}
	s.mu.Unlock()

	for _, l := range lines {
		_ = l.Close()
	}
	return nil
}

func (s *Sim) Open(spec LineSpec, mode Mode) (Line, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.lines[spec.Number]; busy {
		return nil, ioError("open", spec, fmt.Errorf("line busy"))
	}

	switch mode {
	case ModeOutputHigh:
		s.levels[spec.Number] = true
	case ModeOutputLow:
		s.levels[spec.Number] = false
	default:
		if _, ok := s.levels[spec.Number]; !ok {
			s.levels[spec.Number] = true
		}
	}

	l := &simLine{
		sim:   s,
		spec:  spec,
		mode:  mode,
		edges: make(chan bool, 16),
		stop:  make(chan struct{}, 1),
	}
	s.lines[spec.Number] = l
	return l, nil
}

// Drive sets the level of a line as if an external circuit changed it,
// delivering edges to waiters and listeners according to the line mode.
func (s *Sim) Drive(number int, high bool) {
	s.mu.Lock()
	prev, known := s.levels[number]
	s.levels[number] = high
	l := s.lines[number]
	s.mu.Unlock()

	if l == nil || (known && prev == high) {
		return
	}
	l.edge(high)
}

// Level returns the current level of a line.
func (s *Sim) Level(number int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.levels[number]
}

// IsOpen reports whether a line is currently opened.
func (s *Sim) IsOpen(number int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.lines[number]
	return ok
}

// OpenCount returns the number of opened lines.
func (s *Sim) OpenCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.lines)
}

// Fail makes the given operation on a line return err until cleared with
// a nil err.
func (s *Sim) Fail(number int, op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.failures[number], op)
		return
	}
	if s.failures[number] == nil {
		s.failures[number] = make(map[string]error)
	}
	s.failures[number][op] = err
}

func (s *Sim) failure(number int, op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failures[number][op]
}

type simLine struct {
	sim  *Sim
	spec LineSpec
	mode Mode

	edges chan bool
	stop  chan struct{}

	mu       sync.Mutex
	listener func(high bool)
	closed   bool
}

func (l *simLine) edge(high bool) {
	switch l.mode {
	case ModeEdgeBoth:
	case ModeEdgeRising:
		if !high {
			return
		}
	case ModeEdgeFalling:
		if high {
			return
		}
	default:
		return
	}

	l.mu.Lock()
	fn := l.listener
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return
	}

	select {
	case l.edges <- high:
	default:
	}
	if fn != nil {
		fn(high)
	}
}

func (l *simLine) isClosed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}

func (l *simLine) SetValue(high bool) error {
	if l.isClosed() {
		return ioError("write", l.spec, ErrClosed)
	}
	if err := l.sim.failure(l.spec.Number, "write"); err != nil {
		return ioError("write", l.spec, err)
	}
	l.sim.mu.Lock()
	l.sim.levels[l.spec.Number] = high
	l.sim.mu.Unlock()
	return nil
}

func (l *simLine) Value() (bool, error) {
	if l.isClosed() {
		return false, ioError("read", l.spec, ErrClosed)
	}
	if err := l.sim.failure(l.spec.Number, "read"); err != nil {
		return false, ioError("read", l.spec, err)
	}
	return l.sim.Level(l.spec.Number), nil
}

func (l *simLine) Close() error {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return nil
	}
	l.closed = true
	l.mu.Unlock()

	l.StopWaiting()

	l.sim.mu.Lock()
	delete(l.sim.lines, l.spec.Number)
	l.sim.mu.Unlock()
	return nil
}

func (l *simLine) WaitForChange(timeout time.Duration) (bool, error) {
	if l.isClosed() {
		return false, ioError("wait", l.spec, ErrClosed)
	}
	if err := l.sim.failure(l.spec.Number, "wait"); err != nil {
		return false, ioError("wait", l.spec, err)
	}

	var timeoutC <-chan time.Time
	if timeout >= 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutC = timer.C
	}

	select {
	case <-l.edges:
		return true, nil
	case <-l.stop:
		return false, nil
	case <-timeoutC:
		return false, nil
	}
}

func (l *simLine) StopWaiting() {
	select {
	case l.stop <- struct{}{}:
	default:
	}
}

func (l *simLine) RegisterListener(fn func(high bool)) error {
	if !l.mode.IsInterrupt() {
		return &Error{Code: ErrCodeUnsupported, Op: "listen", Line: l.spec.String()}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.listener = fn
	return nil
}
