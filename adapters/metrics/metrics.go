// Package metrics provides Prometheus metrics collection for metersplit.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds all Prometheus metrics for metersplit.
type Collector struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Billing metrics
	Allocations      prometheus.Counter
	BillsSaved       prometheus.Counter
	Rollovers        prometheus.Counter
	TotalCollection  prometheus.Gauge
	SubMeters        prometheus.Gauge

	// Tariff metrics
	TariffUpdates prometheus.Counter
	TariffVersion prometheus.Gauge

	// Config metrics
	ConfigReloads      prometheus.Counter
	ConfigReloadErrors prometheus.Counter
}

// New creates a new metrics collector registered on its own registry.
// The returned registry should be served via promhttp.
func New() (*Collector, *prometheus.Registry) {
	reg := prometheus.NewRegistry()
	factory := func(c prometheus.Collector) {
		reg.MustRegister(c)
	}

	col := &Collector{
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "metersplit",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests handled",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "metersplit",
				Name:      "request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
			},
			[]string{"method", "path"},
		),
		Allocations: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "metersplit",
				Name:      "bill_allocations_total",
				Help:      "Total number of bill allocation computations",
			},
		),
		BillsSaved: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "metersplit",
				Name:      "bills_saved_total",
				Help:      "Total number of bills saved to history",
			},
		),
		Rollovers: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "metersplit",
				Name:      "period_rollovers_total",
				Help:      "Total number of billing period rollovers",
			},
		),
		TotalCollection: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "metersplit",
				Name:      "last_total_collection",
				Help:      "System-wide total of the most recent allocation",
			},
		),
		SubMeters: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "metersplit",
				Name:      "sub_meters",
				Help:      "Number of registered sub-meters",
			},
		),
		TariffUpdates: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "metersplit",
				Name:      "tariff_updates_total",
				Help:      "Total number of tariff configuration updates",
			},
		),
		TariffVersion: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "metersplit",
				Name:      "tariff_version",
				Help:      "Current tariff configuration version",
			},
		),
		ConfigReloads: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "metersplit",
				Name:      "config_reloads_total",
				Help:      "Total number of successful config reloads",
			},
		),
		ConfigReloadErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "metersplit",
				Name:      "config_reload_errors_total",
				Help:      "Total number of failed config reloads",
			},
		),
	}

	factory(col.RequestsTotal)
	factory(col.RequestDuration)
	factory(col.Allocations)
	factory(col.BillsSaved)
	factory(col.Rollovers)
	factory(col.TotalCollection)
	factory(col.SubMeters)
	factory(col.TariffUpdates)
	factory(col.TariffVersion)
	factory(col.ConfigReloads)
	factory(col.ConfigReloadErrors)

	return col, reg
}
