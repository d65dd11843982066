// Package metrics exposes Prometheus instrumentation for hunting cycles and
// notification delivery. Labels stay bounded: outcomes come from the closed
// ErrorKind set and providers from the configured mail provider.
package metrics

import (
	"net/http"
	"time"

	"github.com/lakowalski/luxmedhunter/internal/domain/entity"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "luxmedhunter"

const (
	OutcomeBooked         = "booked"
	OutcomeNoAvailability = "no_availability"
)

type Metrics struct {
	registry *prometheus.Registry

	cycles        *prometheus.CounterVec
	cycleDuration prometheus.Histogram
	slotsSeen     prometheus.Counter
	notifications *prometheus.CounterVec
	lastCycle     *prometheus.GaugeVec
}

// New creates the collectors on a private registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "cycles_total",
				Help:      "Total number of hunting cycles by outcome.",
			},
			[]string{"outcome"},
		),
		cycleDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "cycle_duration_seconds",
				Help:      "Duration of hunting cycles in seconds.",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
		),
		slotsSeen: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "slots_seen_total",
				Help:      "Total number of matching slots returned by the portal.",
			},
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "notifications_total",
				Help:      "Total number of notification deliveries by provider and status.",
			},
			[]string{"provider", "status"},
		),
		lastCycle: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "last_cycle_timestamp_seconds",
				Help:      "Unix time of the last finished cycle per user.",
			},
			[]string{"user"},
		),
	}
	m.registry.MustRegister(m.cycles, m.cycleDuration, m.slotsSeen, m.notifications, m.lastCycle)
	m.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return m
}

// Outcome names the result of a cycle for the outcome label
func Outcome(result *entity.HuntCycleResult) string {
	switch {
	case result.Booked():
		return OutcomeBooked
	case result.Error != entity.ErrorKindNone:
		return string(result.Error)
	default:
		return OutcomeNoAvailability
	}
}

func (m *Metrics) ObserveCycle(result *entity.HuntCycleResult, took time.Duration) {
	m.cycles.WithLabelValues(Outcome(result)).Inc()
	m.cycleDuration.Observe(took.Seconds())
	m.slotsSeen.Add(float64(result.SlotsSeen))
	m.lastCycle.WithLabelValues(result.UserID).Set(float64(result.CycleStartedAt.Add(took).Unix()))
}

func (m *Metrics) ObserveNotification(provider string, success bool) {
	status := "success"
	if !success {
		status = "failure"
	}
	m.notifications.WithLabelValues(provider, status).Inc()
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
