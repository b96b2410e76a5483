package gpio

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func TestSim_OutputModesSetInitialLevel(t *testing.T) {
	sim := NewSim()

	if _, err := sim.Open(LineSpec{Number: 1}, ModeOutputHigh); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if _, err := sim.Open(LineSpec{Number: 2}, ModeOutputLow); err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	if !sim.Level(1) {
		t.Error("output-high line should start high")
	}
	if sim.Level(2) {
		t.Error("output-low line should start low")
	}
}

func TestSim_InputIdlesHigh(t *testing.T) {
	sim := NewSim()
	line, err := sim.Open(LineSpec{Number: 7}, ModeEdgeBoth)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}

	high, err := line.Value()
	if err != nil {
		t.Fatalf("Value() error = %v", err)
	}
	if !high {
		t.Error("button line should idle high")
	}
}

func TestSim_OpenBusyLine(t *testing.T) {
	sim := NewSim()
	if _, err := sim.Open(LineSpec{Number: 3}, ModeInput); err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	_, err := sim.Open(LineSpec{Number: 3}, ModeInput)
	if !IsHardwareIO(err) {
		t.Errorf("second Open() error = %v, want hardware IO error", err)
	}
}

func TestSim_WaitForChange(t *testing.T) {
	sim := NewSim()
	line, _ := sim.Open(LineSpec{Number: 5}, ModeEdgeBoth)
	waiter := line.(Waiter)

	changed, err := waiter.WaitForChange(10 * time.Millisecond)
	if err != nil || changed {
		t.Fatalf("WaitForChange() = %v, %v; want timeout", changed, err)
	}

	sim.Drive(5, false)
	changed, err = waiter.WaitForChange(time.Second)
	if err != nil || !changed {
		t.Fatalf("WaitForChange() = %v, %v; want edge", changed, err)
	}
}

func TestSim_StopWaiting(t *testing.T) {
	sim := NewSim()
	line, _ := sim.Open(LineSpec{Number: 5}, ModeEdgeBoth)
	waiter := line.(Waiter)

	done := make(chan bool, 1)
	go func() {
		changed, _ := waiter.WaitForChange(-1)
		done <- changed
	}()

	time.Sleep(10 * time.Millisecond)
	waiter.StopWaiting()

	select {
	case changed := <-done:
		if changed {
			t.Error("stopped wait should not report a change")
		}
	case <-time.After(time.Second):
		t.Fatal("StopWaiting did not release WaitForChange")
	}
}

func TestSim_FallingEdgeOnly(t *testing.T) {
	sim := NewSim()
	line, _ := sim.Open(LineSpec{Number: 9}, ModeEdgeFalling)

	var got []bool
	if err := line.(Notifier).RegisterListener(func(high bool) { got = append(got, high) }); err != nil {
		t.Fatalf("RegisterListener() error = %v", err)
	}

	sim.Drive(9, false)
	sim.Drive(9, true)
	sim.Drive(9, false)

	if len(got) != 2 {
		t.Fatalf("listener called %d times, want 2 (falling edges only)", len(got))
	}
	for _, high := range got {
		if high {
			t.Error("falling edge delivered a high level")
		}
	}
}

func TestSim_DriveSameLevelIsNotAnEdge(t *testing.T) {
	sim := NewSim()
	line, _ := sim.Open(LineSpec{Number: 4}, ModeEdgeBoth)

	calls := 0
	_ = line.(Notifier).RegisterListener(func(bool) { calls++ })

	sim.Drive(4, true)
	if calls != 0 {
		t.Errorf("listener called %d times for unchanged level", calls)
	}
}

func TestSim_InjectedFailures(t *testing.T) {
	sim := NewSim()
	line, _ := sim.Open(LineSpec{Number: 6}, ModeOutputLow)

	boom := errors.New("boom")
	sim.Fail(6, "write", boom)

	err := line.SetValue(true)
	if !IsHardwareIO(err) || !errors.Is(err, boom) {
		t.Fatalf("SetValue() error = %v, want wrapped boom", err)
	}
	if sim.Level(6) {
		t.Error("failed write must not change the level")
	}

	sim.Fail(6, "write", nil)
	if err := line.SetValue(true); err != nil {
		t.Fatalf("SetValue() after clearing failure error = %v", err)
	}
}

func TestSim_CloseReleasesLine(t *testing.T) {
	sim := NewSim()
	line, _ := sim.Open(LineSpec{Number: 8}, ModeInput)

	if err := line.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if sim.IsOpen(8) {
		t.Error("line still open after Close")
	}
	if _, err := line.Value(); !errors.Is(err, ErrClosed) {
		t.Errorf("Value() after Close error = %v, want ErrClosed", err)
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeOutputHigh, "output-high"},
		{ModeEdgeBoth, "interrupt-edge-both"},
		{Mode(42), "mode(42)"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", int(tt.mode), got, tt.want)
		}
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	if _, err := New("bogus", nil); err == nil {
		t.Error("New() with unknown driver should fail")
	}
}

func TestNew_Sim(t *testing.T) {
	drv, err := New(DriverSim, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if drv.Name() != DriverSim {
		t.Errorf("Name() = %q, want %q", drv.Name(), DriverSim)
	}
}

func TestNew_AutoWithoutController(t *testing.T) {
	oldChardev, oldSysfs := chardevProbePath, sysfsProbePath
	t.Cleanup(func() { chardevProbePath, sysfsProbePath = oldChardev, oldSysfs })
	dir := t.TempDir()
	chardevProbePath = filepath.Join(dir, "gpiochip0")
	sysfsProbePath = filepath.Join(dir, "gpio")

	for _, name := range []string{DriverAuto, ""} {
		drv, err := New(name, nil)
		if drv != nil {
			t.Errorf("New(%q) returned driver %q on a host without GPIO", name, drv.Name())
		}
		if !errors.Is(err, ErrNoController) {
			t.Errorf("New(%q) error = %v, want ErrNoController", name, err)
		}
	}
}
