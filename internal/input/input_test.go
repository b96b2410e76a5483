package input

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/smazurov/gpiosample/internal/gpio"
	"github.com/smazurov/gpiosample/internal/metrics"
	"github.com/smazurov/gpiosample/internal/reactor"
)

const buttonLine = 148

type chanSink chan reactor.ButtonEvent

func (c chanSink) Post(ev reactor.ButtonEvent) bool {
	select {
	case c <- ev:
		return true
	default:
		return false
	}
}

func (c chanSink) next(t *testing.T) reactor.ButtonEvent {
	t.Helper()
	select {
	case ev := <-c:
		return ev
	case <-time.After(2 * time.Second):
		t.Fatal("no button event posted")
		return reactor.ButtonEvent{}
	}
}

func (c chanSink) none(t *testing.T) {
	t.Helper()
	select {
	case ev := <-c:
		t.Fatalf("unexpected event %+v", ev)
	case <-time.After(30 * time.Millisecond):
	}
}

// plainLine supports neither waiting nor callbacks.
type plainLine struct{}

func (plainLine) SetValue(bool) error  { return nil }
func (plainLine) Value() (bool, error) { return true, nil }
func (plainLine) Close() error         { return nil }

// stuckLine never returns from WaitForChange until release is closed.
type stuckLine struct {
	plainLine
	release chan struct{}
}

func (s stuckLine) WaitForChange(time.Duration) (bool, error) {
	<-s.release
	return false, nil
}

func (s stuckLine) StopWaiting() {}

func openButton(t *testing.T, sim *gpio.Sim) gpio.Line {
	t.Helper()
	line, err := sim.Open(gpio.LineSpec{Number: buttonLine}, gpio.ModeEdgeBoth)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	return line
}

func TestNew_SelectsModel(t *testing.T) {
	sim := gpio.NewSim()
	line := openButton(t, sim)
	sink := make(chanSink, 1)

	tests := []struct {
		model Model
		want  Model
	}{
		{ModelAuto, ModelListener},
		{"", ModelListener},
		{ModelListener, ModelListener},
		{ModelPolling, ModelPolling},
	}
	for _, tt := range tests {
		src, err := New(line, tt.model, sink, Options{})
		if err != nil {
			t.Fatalf("New(%q) error = %v", tt.model, err)
		}
		if src.Model() != tt.want {
			t.Errorf("New(%q).Model() = %q, want %q", tt.model, src.Model(), tt.want)
		}
	}
}

func TestNew_Unsupported(t *testing.T) {
	sink := make(chanSink, 1)

	if _, err := New(plainLine{}, ModelAuto, sink, Options{}); err == nil {
		t.Error("New() on a line without capabilities should fail")
	}
	if _, err := New(stuckLine{}, ModelListener, sink, Options{}); err == nil {
		t.Error("listener model on a polling-only line should fail")
	}
	if _, err := New(stuckLine{}, "interrupts", sink, Options{}); err == nil {
		t.Error("unknown model should fail")
	}
}

func TestPoller_PostsPressAndRelease(t *testing.T) {
	sim := gpio.NewSim()
	sink := make(chanSink, 4)
	src, err := New(openButton(t, sim), ModelPolling, sink, Options{PollTimeout: 10 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	if err := src.Start(); err != nil {
		t.Fatal(err)
	}
	defer src.Stop(time.Second)

	sim.Drive(buttonLine, false)
	if ev := sink.next(t); ev != reactor.Press(reactor.SourceHardware) {
		t.Errorf("got %+v, want hardware press", ev)
	}

	sim.Drive(buttonLine, true)
	if ev := sink.next(t); ev != reactor.Release(reactor.SourceHardware) {
		t.Errorf("got %+v, want hardware release", ev)
	}
}

func TestPoller_StopWithinGrace(t *testing.T) {
	sim := gpio.NewSim()
	src, _ := New(openButton(t, sim), ModelPolling, make(chanSink, 1), Options{PollTimeout: time.Hour})
	_ = src.Start()

	start := time.Now()
	if err := src.Stop(time.Second); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("Stop() took %v; StopWaiting should release the wait", elapsed)
	}
	// Idempotent.
	if err := src.Stop(time.Second); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestPoller_StopTimesOut(t *testing.T) {
	line := stuckLine{release: make(chan struct{})}
	defer close(line.release)

	src, _ := New(line, ModelPolling, make(chanSink, 1), Options{})
	_ = src.Start()

	if err := src.Stop(20 * time.Millisecond); !errors.Is(err, ErrLifecycleInterrupted) {
		t.Errorf("Stop() error = %v, want ErrLifecycleInterrupted", err)
	}
}

func TestPoller_WaitErrorsAreCountedAndSurvived(t *testing.T) {
	sim := gpio.NewSim()
	m := metrics.New()
	sink := make(chanSink, 4)
	line := openButton(t, sim)

	sim.Fail(buttonLine, "wait", errors.New("EIO"))
	src, _ := New(line, ModelPolling, sink, Options{PollTimeout: 5 * time.Millisecond, Metrics: m})
	_ = src.Start()
	defer src.Stop(time.Second)

	time.Sleep(20 * time.Millisecond)
	sim.Fail(buttonLine, "wait", nil)

	sim.Drive(buttonLine, false)
	if ev := sink.next(t); ev.Kind != reactor.Pressed {
		t.Errorf("got %+v after recovering, want press", ev)
	}

	if n, err := testutil.GatherAndCount(m.Registry(), "gpiosample_hardware_errors_total"); err != nil || n != 1 {
		t.Errorf("hardware error series = %d, %v; want 1", n, err)
	}
}

func TestListener_PostsAndStops(t *testing.T) {
	sim := gpio.NewSim()
	sink := make(chanSink, 4)
	src, err := New(openButton(t, sim), ModelListener, sink, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := src.Start(); err != nil {
		t.Fatal(err)
	}

	sim.Drive(buttonLine, false)
	if ev := sink.next(t); ev != reactor.Press(reactor.SourceHardware) {
		t.Errorf("got %+v, want press", ev)
	}

	if err := src.Stop(0); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	sim.Drive(buttonLine, true)
	sink.none(t)
}

func TestListener_RegisterFailure(t *testing.T) {
	sim := gpio.NewSim()
	line, _ := sim.Open(gpio.LineSpec{Number: 1}, gpio.ModeInput)

	src, err := New(line, ModelListener, make(chanSink, 1), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if err := src.Start(); err == nil {
		t.Error("Start() on a non-interrupt line should fail")
	}
}
