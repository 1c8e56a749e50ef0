package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	OutcomeImported = "imported"
	OutcomeUpdated  = "updated"
	OutcomeFailed   = "failed"
)

// ImportMetrics records per-record outcomes and batch durations of item imports.
type ImportMetrics struct {
	records  *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewImportMetrics registers the import metrics on the provided registerer.
func NewImportMetrics(reg prometheus.Registerer) *ImportMetrics {
	if reg == nil {
		return &ImportMetrics{}
	}
	records := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gridstock_import_records_total",
		Help: "Imported item records by outcome.",
	}, []string{"outcome"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gridstock_import_duration_seconds",
		Help:    "Duration of import batches in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})
	reg.MustRegister(records, duration)
	return &ImportMetrics{
		records:  records,
		duration: duration,
	}
}

// AddOutcome adds n records to the outcome counter.
func (m *ImportMetrics) AddOutcome(outcome string, n int) {
	if m == nil || m.records == nil || n <= 0 {
		return
	}
	m.records.WithLabelValues(normalizeLabel(outcome)).Add(float64(n))
}

// ObserveDuration records how long a batch took for the given source.
func (m *ImportMetrics) ObserveDuration(source string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(source)).Observe(duration.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
