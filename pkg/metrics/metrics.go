// Package metrics exposes Prometheus instrumentation driven by the event
// bus. Attach a Collector to an organization's bus and serve promhttp.
package metrics

import (
	"github.com/avells/cadre/pkg/bus"
	"github.com/avells/cadre/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the engine's Prometheus metrics. All vectors are labeled
// by the event source (the group or organization name), so one collector
// can serve a whole organization via forwarded events.
type Collector struct {
	runs        *prometheus.CounterVec
	runDuration *prometheus.HistogramVec
	entries     *prometheus.CounterVec
}

// NewCollector creates the metric vectors and registers them with reg.
// Pass prometheus.DefaultRegisterer for the default registry.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadre_runs_total",
				Help: "Total number of workflow runs",
			},
			[]string{"source", "workflow"},
		),
		runDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "cadre_run_duration_seconds",
				Help: "Duration of workflow runs",
			},
			[]string{"source", "workflow"},
		),
		entries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cadre_entries_total",
				Help: "Total number of executed workflow entries",
			},
			[]string{"source", "outcome"},
		),
	}
	reg.MustRegister(c.runs, c.runDuration, c.entries)
	return c
}

// Attach subscribes the collector to a bus. The returned function detaches
// all subscriptions.
func (c *Collector) Attach(b *bus.Bus) func() {
	offs := []func(){
		b.On(domain.EventRunStart, func(e bus.Event) {
			c.runs.WithLabelValues(e.Source, payloadString(e, "workflow")).Inc()
		}),
		b.On(domain.EventRunEnd, func(e bus.Event) {
			if d, ok := payloadFloat(e, "duration"); ok {
				c.runDuration.WithLabelValues(e.Source, payloadString(e, "workflow")).Observe(d)
			}
		}),
		b.On(domain.EventEntrySuccess, func(e bus.Event) {
			c.entries.WithLabelValues(e.Source, "success").Inc()
		}),
		b.On(domain.EventEntryError, func(e bus.Event) {
			c.entries.WithLabelValues(e.Source, "error").Inc()
		}),
	}
	return func() {
		for _, off := range offs {
			off()
		}
	}
}

func payloadString(e bus.Event, key string) string {
	s, _ := e.Payload[key].(string)
	return s
}

func payloadFloat(e bus.Event, key string) (float64, bool) {
	f, ok := e.Payload[key].(float64)
	return f, ok
}
