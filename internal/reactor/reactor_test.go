package reactor

import (
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"gotest.tools/v3/assert"

	"github.com/smazurov/gpiosample/internal/board"
	"github.com/smazurov/gpiosample/internal/display"
	"github.com/smazurov/gpiosample/internal/gpio"
	"github.com/smazurov/gpiosample/internal/metrics"
)

const (
	buttonLine = 37
	ledLine    = 34
)

type countingPresenter struct {
	mu       sync.Mutex
	pressed  int
	released int
	board    string
}

func (p *countingPresenter) ShowPressed() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pressed++
}

func (p *countingPresenter) ShowReleased() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.released++
}

func (p *countingPresenter) ShowBoard(image string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.board = image
}

func (p *countingPresenter) counts() (int, int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pressed, p.released
}

func openLED(t *testing.T, sim *gpio.Sim) gpio.Line {
	t.Helper()
	led, err := sim.Open(gpio.LineSpec{Number: ledLine}, gpio.ModeOutputHigh)
	assert.NilError(t, err)
	return led
}

func TestCommand(t *testing.T) {
	tests := []struct {
		name     string
		kind     Kind
		polarity board.Polarity
		want     LedCommand
	}{
		{"active-high press", Pressed, board.ActiveHigh, LedCommand{Level: true, Lit: true}},
		{"active-high release", Released, board.ActiveHigh, LedCommand{Level: false, Lit: false}},
		{"active-low press", Pressed, board.ActiveLow, LedCommand{Level: false, Lit: true}},
		{"active-low release", Released, board.ActiveLow, LedCommand{Level: true, Lit: false}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Command(tt.kind, tt.polarity), tt.want)
		})
	}
}

func TestFromLevel(t *testing.T) {
	assert.Equal(t, FromLevel(false, SourceHardware), Press(SourceHardware))
	assert.Equal(t, FromLevel(true, SourceHardware), Release(SourceHardware))
}

func TestReset_DrivesInactiveLevel(t *testing.T) {
	for _, polarity := range []board.Polarity{board.ActiveHigh, board.ActiveLow} {
		t.Run(string(polarity), func(t *testing.T) {
			sim := gpio.NewSim()
			model := display.NewModel(nil)
			r := New(openLED(t, sim), polarity, model, Options{})

			r.Apply(Press(SourceSoft)) // arbitrary prior state
			cmd := r.Reset()

			assert.Equal(t, cmd.Lit, false)
			assert.Equal(t, sim.Level(ledLine), polarity == board.ActiveLow)
			assert.Equal(t, r.State(), LedOff)
			assert.Equal(t, model.State().ButtonIcon, display.IconButton)
			assert.Equal(t, model.State().LEDIcon, display.IconLED)
		})
	}
}

func TestPressRelease_ActiveHigh(t *testing.T) {
	sim := gpio.NewSim()
	model := display.NewModel(nil)
	r := New(openLED(t, sim), board.ActiveHigh, model, Options{})
	r.Reset()
	resetLevel := sim.Level(ledLine)

	r.Apply(Press(SourceHardware))
	assert.Assert(t, sim.Level(ledLine))
	assert.Equal(t, r.State(), LedOn)
	assert.Equal(t, model.State(), display.Pressed(""))

	r.Apply(Release(SourceHardware))
	assert.Equal(t, sim.Level(ledLine), resetLevel)
	assert.Equal(t, r.State(), LedOff)
	assert.Equal(t, model.State(), display.Released(""))
}

func TestPressRelease_ActiveLow(t *testing.T) {
	sim := gpio.NewSim()
	r := New(openLED(t, sim), board.ActiveLow, display.NewModel(nil), Options{})
	r.Reset()
	assert.Assert(t, sim.Level(ledLine), "active-low LED must idle high")

	r.Apply(Press(SourceHardware))
	assert.Assert(t, !sim.Level(ledLine))

	r.Apply(Release(SourceHardware))
	assert.Assert(t, sim.Level(ledLine))
}

func TestPress_Idempotent(t *testing.T) {
	sim := gpio.NewSim()
	presenter := &countingPresenter{}
	r := New(openLED(t, sim), board.ActiveHigh, presenter, Options{})

	first := r.Apply(Press(SourceHardware))
	second := r.Apply(Press(SourceHardware))

	assert.Equal(t, first, second)
	assert.Assert(t, sim.Level(ledLine))
	pressed, _ := presenter.counts()
	assert.Equal(t, pressed, 2)
}

func TestWriteFailure_DisplayStillUpdated(t *testing.T) {
	sim := gpio.NewSim()
	m := metrics.New()
	model := display.NewModel(nil)
	r := New(openLED(t, sim), board.ActiveHigh, model, Options{Metrics: m})

	sim.Fail(ledLine, "write", errors.New("EIO"))
	r.Apply(Press(SourceHardware))

	assert.Assert(t, model.State().Pressed)
	assert.Equal(t, r.State(), LedOn)

	n, err := testutil.GatherAndCount(m.Registry(), "gpiosample_hardware_errors_total")
	assert.NilError(t, err)
	assert.Equal(t, n, 1)
}

func TestApply_PublishesMetrics(t *testing.T) {
	sim := gpio.NewSim()
	m := metrics.New()
	r := New(openLED(t, sim), board.ActiveHigh, display.NewModel(nil), Options{Metrics: m})

	r.Apply(Press(SourceSoft))
	r.Apply(Release(SourceSoft))

	n, err := testutil.GatherAndCount(m.Registry(), "gpiosample_button_events_total")
	assert.NilError(t, err)
	assert.Equal(t, n, 2, "one series per event kind")

	expected := `
# HELP gpiosample_led_lit 1 while the LED is lit
# TYPE gpiosample_led_lit gauge
gpiosample_led_lit 0
`
	assert.NilError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "gpiosample_led_lit"))
}
