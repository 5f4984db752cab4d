// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics exposes Prometheus collectors for sitemap generation.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"helpnest/internal/sitemap"
)

const namespace = "helpnest"

// Run outcomes used as the "status" label.
const (
	StatusSuccess  = "success"
	StatusDegraded = "degraded"
	StatusFailed   = "failed"
)

// Metrics holds the generation collectors and the registry they live in.
type Metrics struct {
	reg *prometheus.Registry

	RunsTotal       *prometheus.CounterVec
	RunDuration     prometheus.Histogram
	URLs            prometheus.Gauge
	Pages           prometheus.Gauge
	TierURLs        *prometheus.GaugeVec
	LastSuccess     prometheus.Gauge
	EventsReceived  *prometheus.CounterVec
	EventsCoalesced prometheus.Counter
}

// New creates the collectors on a fresh registry together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		reg: reg,
		RunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sitemap",
			Name:      "generation_runs_total",
			Help:      "Sitemap generation runs by trigger reason and outcome.",
		}, []string{"reason", "status"}),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "sitemap",
			Name:      "generation_duration_seconds",
			Help:      "Wall time of successful sitemap generation runs.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		URLs: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sitemap",
			Name:      "urls",
			Help:      "URL entries in the current sitemap.",
		}),
		Pages: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sitemap",
			Name:      "pages",
			Help:      "Pages in the current sitemap.",
		}),
		TierURLs: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sitemap",
			Name:      "tier_urls",
			Help:      "URL entries in the current sitemap by tier.",
		}, []string{"tier"}),
		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "sitemap",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful generation.",
		}),
		EventsReceived: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "received_total",
			Help:      "Catalog change events received by entity.",
		}, []string{"entity"}),
		EventsCoalesced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "events",
			Name:      "coalesced_total",
			Help:      "Catalog change events folded into an already pending regeneration.",
		}),
	}
}

// Registry returns the registry the collectors are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// ObserveRun records the outcome of one generation run. res is nil when the
// run failed.
func (m *Metrics) ObserveRun(reason string, res *sitemap.Result, err error) {
	if err != nil || res == nil {
		m.RunsTotal.WithLabelValues(reason, StatusFailed).Inc()
		return
	}

	status := StatusSuccess
	if res.Degraded() {
		status = StatusDegraded
	}
	m.RunsTotal.WithLabelValues(reason, status).Inc()
	m.RunDuration.Observe(res.Duration.Seconds())
	m.URLs.Set(float64(res.URLCount))
	m.Pages.Set(float64(res.PageCount()))
	m.TierURLs.WithLabelValues(string(sitemap.TierStatic)).Set(float64(res.Counts[sitemap.TierStatic]))
	for _, tier := range sitemap.DynamicTiers {
		m.TierURLs.WithLabelValues(string(tier)).Set(float64(res.Counts[tier]))
	}
	m.LastSuccess.Set(float64(res.GeneratedAt.Unix()))
}

// ObserveEvent counts a received change event; coalesced reports whether it
// joined an already pending regeneration.
func (m *Metrics) ObserveEvent(entity string, coalesced bool) {
	m.EventsReceived.WithLabelValues(entity).Inc()
	if coalesced {
		m.EventsCoalesced.Inc()
	}
}
