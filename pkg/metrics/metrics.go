package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Collector struct {
	TicketsIssued prometheus.Counter
	TicketsServed prometheus.Counter
	QueueDepth    prometheus.Gauge

	PatientsRegistered prometheus.Counter
	EncountersOpened   prometheus.Counter
	EncountersClosed   prometheus.Counter

	DocumentWrites        *prometheus.CounterVec
	DocumentWriteDuration *prometheus.HistogramVec

	AuditEntriesTotal *prometheus.CounterVec
}

// NewCollector registers the clinic metrics on reg. A nil reg falls back to
// the default Prometheus registry.
func NewCollector(serviceName string, reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Collector{
		TicketsIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "queue",
			Name:      "tickets_issued_total",
			Help:      "Total waiting-room tickets issued since process start.",
		}),

		TicketsServed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "queue",
			Name:      "tickets_served_total",
			Help:      "Total tickets taken off the queue for service.",
		}),

		QueueDepth: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: serviceName,
			Subsystem: "queue",
			Name:      "waiting_tickets",
			Help:      "Tickets currently waiting to be served.",
		}),

		PatientsRegistered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "clinical",
			Name:      "patients_registered_total",
			Help:      "Total patient records created.",
		}),

		EncountersOpened: factory.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "clinical",
			Name:      "encounters_opened_total",
			Help:      "Total encounters recorded at reception.",
		}),

		EncountersClosed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "clinical",
			Name:      "encounters_closed_total",
			Help:      "Total encounters closed by a practitioner.",
		}),

		DocumentWrites: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "store",
			Name:      "document_writes_total",
			Help:      "Full document rewrites by document and result.",
		}, []string{"document", "result"}),

		DocumentWriteDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: serviceName,
			Subsystem: "store",
			Name:      "document_write_duration_seconds",
			Help:      "Latency of a full document rewrite.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		}, []string{"document"}),

		AuditEntriesTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: serviceName,
			Subsystem: "audit",
			Name:      "entries_total",
			Help:      "Audit entries recorded by action.",
		}, []string{"action"}),
	}
}

func MetricsHandler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
