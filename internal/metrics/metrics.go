// Package metrics provides Prometheus metrics for the button/LED reactor.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "gpiosample"

// Metrics holds the collectors of one application instance on a private
// registry. A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	buttonEvents   *prometheus.CounterVec
	ledWrites      *prometheus.CounterVec
	hardwareErrors *prometheus.CounterVec
	droppedEvents  prometheus.Counter
	ledLit         prometheus.Gauge
}

// New creates the collectors together with Go runtime and process metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		buttonEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "button_events_total",
			Help:      "Button events applied by the reactor",
		}, []string{"event", "source"}),
		ledWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "led_writes_total",
			Help:      "Successful writes to the LED line",
		}, []string{"level"}),
		hardwareErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hardware_errors_total",
			Help:      "GPIO operations that failed",
		}, []string{"op"}),
		droppedEvents: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_events_total",
			Help:      "Button events dropped because the reactor inbox was full",
		}),
		ledLit: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "led_lit",
			Help:      "1 while the LED is lit",
		}),
	}
}

// ButtonEvent counts one applied button event.
func (m *Metrics) ButtonEvent(pressed bool, source string) {
	if m == nil {
		return
	}
	event := "released"
	if pressed {
		event = "pressed"
	}
	m.buttonEvents.WithLabelValues(event, source).Inc()
}

// LEDWrite records a successful LED write.
func (m *Metrics) LEDWrite(level, lit bool) {
	if m == nil {
		return
	}
	m.ledWrites.WithLabelValues(levelLabel(level)).Inc()
	if lit {
		m.ledLit.Set(1)
	} else {
		m.ledLit.Set(0)
	}
}

// HardwareError counts a failed GPIO operation ("read", "write", "wait").
func (m *Metrics) HardwareError(op string) {
	if m == nil {
		return
	}
	m.hardwareErrors.WithLabelValues(op).Inc()
}

// DroppedEvent counts an event that could not be queued.
func (m *Metrics) DroppedEvent() {
	if m == nil {
		return
	}
	m.droppedEvents.Inc()
}

// Registry exposes the private registry for tests and custom exporters.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus scrape handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func levelLabel(high bool) string {
	if high {
		return "high"
	}
	return "low"
}
