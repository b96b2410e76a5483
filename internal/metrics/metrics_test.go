package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestButtonEvents(t *testing.T) {
	m := New()

	m.ButtonEvent(true, "hardware")
	m.ButtonEvent(true, "hardware")
	m.ButtonEvent(false, "synthetic")

	if got := testutil.ToFloat64(m.buttonEvents.WithLabelValues("pressed", "hardware")); got != 2 {
		t.Errorf("pressed/hardware = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.buttonEvents.WithLabelValues("released", "synthetic")); got != 1 {
		t.Errorf("released/synthetic = %v, want 1", got)
	}
}

func TestLEDWriteTracksLitGauge(t *testing.T) {
	m := New()

	m.LEDWrite(true, true)
	if got := testutil.ToFloat64(m.ledLit); got != 1 {
		t.Errorf("led_lit = %v, want 1", got)
	}

	// active-low wiring: low level lights the LED
	m.LEDWrite(false, true)
	m.LEDWrite(true, false)
	if got := testutil.ToFloat64(m.ledLit); got != 0 {
		t.Errorf("led_lit = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.ledWrites.WithLabelValues("high")); got != 2 {
		t.Errorf("led_writes{high} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.ledWrites.WithLabelValues("low")); got != 1 {
		t.Errorf("led_writes{low} = %v, want 1", got)
	}
}

func TestErrorsAndDrops(t *testing.T) {
	m := New()
	m.HardwareError("write")
	m.HardwareError("write")
	m.HardwareError("wait")
	m.DroppedEvent()

	if got := testutil.ToFloat64(m.hardwareErrors.WithLabelValues("write")); got != 2 {
		t.Errorf("hardware_errors{write} = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.droppedEvents); got != 1 {
		t.Errorf("dropped_events = %v, want 1", got)
	}
}

func TestNilMetricsIsNoop(_ *testing.T) {
	var m *Metrics
	m.ButtonEvent(true, "soft")
	m.LEDWrite(true, true)
	m.HardwareError("read")
	m.DroppedEvent()
}

func TestHandlerExposesMetrics(t *testing.T) {
	m := New()
	m.ButtonEvent(true, "soft")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{
		`gpiosample_button_events_total{event="pressed",source="soft"} 1`,
		"gpiosample_led_lit 0",
		"go_goroutines",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("scrape output missing %q", want)
		}
	}
}
