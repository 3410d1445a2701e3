package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/muurk/econet/internal/econet"
)

const metricsNamespace = "econet"

// MetricsCollector exposes poll results as Prometheus gauges
type MetricsCollector struct {
	registry *prometheus.Registry

	paramValue    *prometheus.GaugeVec
	scrapeSuccess prometheus.Gauge
	lastSuccess   prometheus.Gauge
	info          *prometheus.GaugeVec
}

// NewMetricsCollector creates the gauges on a private registry
func NewMetricsCollector() *MetricsCollector {
	m := &MetricsCollector{
		registry: prometheus.NewRegistry(),
		paramValue: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "param_value",
				Help:      "Numeric controller parameter value",
			},
			[]string{"uid", "param"},
		),
		scrapeSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "scrape_success",
				Help:      "Whether the last poll of the controller succeeded (1 = success, 0 = failure)",
			},
		),
		lastSuccess: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "last_success_timestamp_seconds",
				Help:      "Unix timestamp of the last successful poll",
			},
		),
		info: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "info",
				Help:      "Controller identity, always 1",
			},
			[]string{"uid", "sw_revision", "hw_version", "model"},
		),
	}

	m.registry.MustRegister(m.paramValue)
	m.registry.MustRegister(m.scrapeSuccess)
	m.registry.MustRegister(m.lastSuccess)
	m.registry.MustRegister(m.info)
	return m
}

// Registry returns the underlying registry
func (m *MetricsCollector) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *MetricsCollector) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// OnSnapshot replaces the parameter gauges with the snapshot's numeric values.
// Non-numeric parameters are not exported.
func (m *MetricsCollector) OnSnapshot(snap Snapshot) {
	uid := snap.Identity.UID

	m.paramValue.Reset()
	for name, value := range snap.Params {
		if v, ok := econet.Numeric(value); ok {
			m.paramValue.WithLabelValues(uid, name).Set(v)
		}
	}

	m.info.Reset()
	m.info.WithLabelValues(
		uid,
		snap.Identity.SoftwareRevision,
		snap.Identity.HardwareVersion,
		snap.Identity.ModelID,
	).Set(1)

	m.scrapeSuccess.Set(1)
	m.lastSuccess.Set(float64(snap.Timestamp.Unix()))
}

// OnFailure marks the scrape as failed and keeps the last values
func (m *MetricsCollector) OnFailure(error) {
	m.scrapeSuccess.Set(0)
}
