package core

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for the imports counter.
const (
	OutcomeSuccess = "success"
	OutcomeBusy    = "busy"
)

// Metrics bundles Prometheus collectors for order imports.
type Metrics struct {
	Registry       *prometheus.Registry
	ImportsTotal   *prometheus.CounterVec
	RowsTotal      *prometheus.CounterVec
	WarningsTotal  prometheus.Counter
	ImportDuration prometheus.Histogram
	GatewayErrors  prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	imports := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderimport_imports_total",
			Help: "Total import calls by outcome.",
		},
		[]string{"outcome"},
	)
	rows := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "orderimport_rows_total",
			Help: "Total data rows processed by validity.",
		},
		[]string{"status"},
	)
	warnings := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orderimport_warnings_total",
			Help: "Total non-blocking row warnings emitted.",
		},
	)
	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "orderimport_import_duration_seconds",
			Help:    "Wall time of one import call.",
			Buckets: prometheus.DefBuckets,
		},
	)
	gatewayErrors := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "orderimport_gateway_errors_total",
			Help: "Total inventory gateway failures.",
		},
	)

	registry.MustRegister(imports, rows, warnings, duration, gatewayErrors)

	return &Metrics{
		Registry:       registry,
		ImportsTotal:   imports,
		RowsTotal:      rows,
		WarningsTotal:  warnings,
		ImportDuration: duration,
		GatewayErrors:  gatewayErrors,
	}
}

// ObserveImport records the outcome of one finished import.
func (m *Metrics) ObserveImport(result ImportResult, err error, d time.Duration) {
	if m == nil {
		return
	}
	m.ImportDuration.Observe(d.Seconds())

	if err != nil {
		kind := KindOf(err)
		if kind == "" {
			kind = "internal"
		}
		m.ImportsTotal.WithLabelValues(string(kind)).Inc()
		if kind == KindGateway {
			m.GatewayErrors.Inc()
		}
		return
	}

	m.ImportsTotal.WithLabelValues(OutcomeSuccess).Inc()
	m.RowsTotal.WithLabelValues("valid").Add(float64(result.ValidRows))
	m.RowsTotal.WithLabelValues("error").Add(float64(result.ErrorRows))

	warnings := 0
	for i := range result.Orders {
		warnings += len(result.Orders[i].Warnings)
	}
	m.WarningsTotal.Add(float64(warnings))
}

// IncBusy counts an import rejected because every slot was taken.
func (m *Metrics) IncBusy() {
	if m == nil {
		return
	}
	m.ImportsTotal.WithLabelValues(OutcomeBusy).Inc()
}
