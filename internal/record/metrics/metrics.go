package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for the record flows.
type Metrics struct {
	RecordsCreated      prometheus.Counter
	RecordsUpdated      prometheus.Counter
	RecordsDeleted      prometheus.Counter
	Rejections          *prometheus.CounterVec
	AllocationConflicts prometheus.Counter
	CreateDuration      prometheus.Histogram
}

// New registers the record metrics with the default registry.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the record metrics with reg. Tests pass a fresh
// prometheus.NewRegistry() so repeated construction does not collide.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		RecordsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "roster_records_created_total",
			Help: "Total number of records created",
		}),
		RecordsUpdated: f.NewCounter(prometheus.CounterOpts{
			Name: "roster_records_updated_total",
			Help: "Total number of records updated",
		}),
		RecordsDeleted: f.NewCounter(prometheus.CounterOpts{
			Name: "roster_records_deleted_total",
			Help: "Total number of records deleted",
		}),
		Rejections: f.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_record_rejections_total",
			Help: "Requests rejected before a write, by operation and reason",
		}, []string{"operation", "reason"}),
		AllocationConflicts: f.NewCounter(prometheus.CounterOpts{
			Name: "roster_identifier_allocation_conflicts_total",
			Help: "Inserts rejected because the allocated identifier was already taken",
		}),
		CreateDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "roster_create_record_duration_seconds",
			Help:    "Duration of create operations including allocation retries",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		}),
	}
}

func (m *Metrics) IncrementCreated() {
	m.RecordsCreated.Inc()
}

func (m *Metrics) IncrementUpdated() {
	m.RecordsUpdated.Inc()
}

func (m *Metrics) IncrementDeleted() {
	m.RecordsDeleted.Inc()
}

// IncrementRejected counts a request turned away by validation, conflict or lookup.
func (m *Metrics) IncrementRejected(operation, reason string) {
	m.Rejections.WithLabelValues(operation, reason).Inc()
}

func (m *Metrics) IncrementAllocationConflict() {
	m.AllocationConflicts.Inc()
}

// ObserveCreate records the duration of a create. Call with the start time.
func (m *Metrics) ObserveCreate(start time.Time) {
	m.CreateDuration.Observe(time.Since(start).Seconds())
}
