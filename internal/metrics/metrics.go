// Package metrics exposes Prometheus instrumentation for transcription requests.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors of one service instance. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry  *prometheus.Registry
	requests  *prometheus.CounterVec
	inference prometheus.Histogram
	audioLen  prometheus.Histogram
}

// New registers all collectors on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "asr",
			Name:      "requests_total",
			Help:      "Transcription requests by outcome.",
		}, []string{"outcome"}),
		inference: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "asr",
			Name:      "inference_duration_seconds",
			Help:      "Time spent in model inference.",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		audioLen: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "asr",
			Name:      "audio_duration_seconds",
			Help:      "Length of decoded uploads.",
			Buckets:   []float64{1, 2, 5, 10, 30, 60, 120, 300},
		}),
	}

	m.registry.MustRegister(
		m.requests,
		m.inference,
		m.audioLen,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Request counts one finished request under the given outcome label.
func (m *Metrics) Request(outcome string) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
}

// Inference records the latency of one model run.
func (m *Metrics) Inference(d time.Duration) {
	if m == nil {
		return
	}
	m.inference.Observe(d.Seconds())
}

// Audio records the duration of one decoded upload.
func (m *Metrics) Audio(d time.Duration) {
	if m == nil {
		return
	}
	m.audioLen.Observe(d.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
