package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

const (
	namespace = "unosat_etl"

	// PushJob is the Pushgateway job the run metrics are grouped under.
	PushJob = "unosat_hdx_etl"
)

// Metrics holds the Prometheus counters, histograms, and gauges for one run.
type Metrics struct {
	RowsSelected          prometheus.Counter
	ProductsPublished     prometheus.Counter
	PublishErrors         *prometheus.CounterVec // labels: stage={select,transform,dataset,showcase,link,audit,announce}
	RunDuration           prometheus.Histogram
	IncompletePublished   prometheus.Gauge
	LastSuccessTimestamp  prometheus.Gauge
	CatalogRequestSeconds *prometheus.HistogramVec // labels: step={dataset,showcase,link}

	registry *prometheus.Registry
}

// NewMetrics creates the run metrics on their own registry, which Push sends
// to the Pushgateway.
func NewMetrics() *Metrics {
	m := newMetrics()
	m.registry = prometheus.NewRegistry()
	m.registry.MustRegister(
		m.RowsSelected,
		m.ProductsPublished,
		m.PublishErrors,
		m.RunDuration,
		m.IncompletePublished,
		m.LastSuccessTimestamp,
		m.CatalogRequestSeconds,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them anywhere so
// tests can read values directly.
func NewMetricsForTesting() *Metrics {
	return newMetrics()
}

func newMetrics() *Metrics {
	return &Metrics{
		RowsSelected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_selected_total",
			Help:      "Product rows returned by the change query.",
		}),
		ProductsPublished: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "products_published_total",
			Help:      "Products whose dataset, showcase, and audit line were written.",
		}),
		PublishErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "publish_errors_total",
			Help:      "Failures that aborted the run, by stage.",
		}, []string{"stage"}),
		RunDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of a complete run.",
			Buckets:   []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		}),
		IncompletePublished: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "incomplete_publications",
			Help:      "Products left partially published by an earlier run.",
		}),
		LastSuccessTimestamp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that finished without error.",
		}),
		CatalogRequestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "catalog_request_duration_seconds",
			Help:      "Duration of catalog publish steps.",
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"step"}),
	}
}

// Push sends the run metrics to the Pushgateway at url.
func (m *Metrics) Push(ctx context.Context, url string) error {
	if m.registry == nil {
		return errors.New("metrics have no registry to push")
	}
	if err := push.New(url, PushJob).Gatherer(m.registry).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}
