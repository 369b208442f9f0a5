// Package metrics exposes Prometheus counters for the loss-report pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/FACorreiaa/lince-perdas/internal/domain/losses/model"
)

const namespace = "lince"

// Document statuses.
const (
	StatusParsed = "parsed"
	StatusNoData = "no_data"
)

// Metrics holds the pipeline collectors.
type Metrics struct {
	Lines      *prometheus.CounterVec
	Documents  *prometheus.CounterVec
	EmptyPages prometheus.Counter
	Batches    *prometheus.CounterVec
	Records    prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Lines: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_total",
			Help:      "Logical lines read, by outcome (accepted or skip reason).",
		}, []string{"outcome"}),
		Documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents processed, by status.",
		}, []string{"status"}),
		EmptyPages: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "empty_pages_total",
			Help:      "Pages with no extractable text.",
		}),
		Batches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_total",
			Help:      "Batches processed, by result.",
		}, []string{"result"}),
		Records: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_records",
			Help:      "Aggregated records per batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),
	}

	if reg != nil {
		reg.MustRegister(m.Lines, m.Documents, m.EmptyPages, m.Batches, m.Records)
	}
	return m
}

// ObserveDocument records the counters of one parsed document.
func (m *Metrics) ObserveDocument(r model.DocumentResult) {
	if m == nil {
		return
	}

	m.Lines.WithLabelValues("accepted").Add(float64(len(r.Items)))
	for reason, n := range r.SkipCounts {
		m.Lines.WithLabelValues(string(reason)).Add(float64(n))
	}
	m.EmptyPages.Add(float64(r.EmptyPages))

	status := StatusParsed
	if r.NoData() {
		status = StatusNoData
	}
	m.Documents.WithLabelValues(status).Inc()
}

// ObserveBatch records a finished batch.
func (m *Metrics) ObserveBatch(result string, records int) {
	if m == nil {
		return
	}
	m.Batches.WithLabelValues(result).Inc()
	m.Records.Observe(float64(records))
}
