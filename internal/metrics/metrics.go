// Package metrics exposes bridge activity as Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smazurov/ledcontroller/internal/events"
)

const namespace = "ledcontroller"

// Call outcomes recorded by ObserveCall.
const (
	OutcomeOK      = "ok"
	OutcomeInvalid = "invalid"
	OutcomeFailed  = "failed"
)

// Metrics holds the collectors for one daemon instance.
type Metrics struct {
	registry *prometheus.Registry
	bridged  prometheus.Gauge
	missing  prometheus.Counter
	calls    *prometheus.CounterVec
}

// New creates the collectors and registers them on a private registry
// together with the Go runtime and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		bridged: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "bridged_leds",
			Help:      "Number of sysfs LEDs currently published on the bus",
		}),
		missing: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "missing_leds_total",
			Help:      "Requests naming an LED without a sysfs directory",
		}),
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "control_calls_total",
				Help:      "Control interface method calls by method and outcome",
			},
			[]string{"method", "outcome"},
		),
	}

	m.registry.MustRegister(
		m.bridged,
		m.missing,
		m.calls,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCall counts one control method call.
func (m *Metrics) ObserveCall(method, outcome string) {
	m.calls.WithLabelValues(method, outcome).Inc()
}

// Subscribe keeps the bridge gauges in step with registrar events.
// Returns a function that stops the subscription.
func (m *Metrics) Subscribe(bus *events.Bus) func() {
	unsubs := []func(){
		bus.Subscribe(func(events.LEDAddedEvent) { m.bridged.Inc() }),
		bus.Subscribe(func(events.LEDRemovedEvent) { m.bridged.Dec() }),
		bus.Subscribe(func(events.LEDMissingEvent) { m.missing.Inc() }),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
