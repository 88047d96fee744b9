// Package metrics exposes Prometheus instruments for the build pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var registry = prometheus.NewRegistry()

var (
	// BuildsTotal counts completed build passes by outcome.
	BuildsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pressbuild_builds_total",
		Help: "Completed build passes by outcome.",
	}, []string{"outcome"})

	// BuildDuration observes full pass duration in seconds.
	BuildDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "pressbuild_build_duration_seconds",
		Help:    "Duration of full build passes.",
		Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
	})

	// EncodesTotal counts image variant encodes by format.
	EncodesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "pressbuild_image_encodes_total",
		Help: "Image variant encodes by format.",
	}, []string{"format"})

	// CacheHitsTotal counts image variants served from the on-disk cache.
	CacheHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "pressbuild_image_cache_hits_total",
		Help: "Image variants found in the cache, skipping re-encode.",
	})

	// IndexBytes reports the size of the last serialized search index.
	IndexBytes = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "pressbuild_search_index_bytes",
		Help: "Serialized size of the most recent search index.",
	})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		BuildsTotal,
		BuildDuration,
		EncodesTotal,
		CacheHitsTotal,
		IndexBytes,
	)
}

// Handler returns the /metrics HTTP handler for the preview server.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
