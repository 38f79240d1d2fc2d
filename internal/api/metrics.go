package api

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/moldraw/moldraw/pkg/gallery"
	"github.com/moldraw/moldraw/pkg/observability"
)

const metricsNamespace = "moldraw"

// Metrics is a Prometheus adapter for the observability hooks: stage
// durations, cache traffic, gallery store calls and a draw counter. One
// instance implements all three hook families.
type Metrics struct {
	stageDuration *prometheus.HistogramVec
	stageErrors   *prometheus.CounterVec
	overlapScores prometheus.Histogram
	cacheEvents   *prometheus.CounterVec
	cacheBytes    prometheus.Counter
	draws         *prometheus.CounterVec
	storeOps      *prometheus.CounterVec
	storeDuration *prometheus.HistogramVec
}

// NewMetrics creates and registers the metric set. A nil registerer means
// the default registry; tests pass their own.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		stageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "stage_duration_seconds",
				Help:      "Time spent per pipeline stage.",
				Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 8),
			},
			[]string{"stage"},
		),
		stageErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "stage_errors_total",
				Help:      "Pipeline stage failures.",
			},
			[]string{"stage"},
		),
		overlapScores: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "layout_overlap_score",
				Help:      "Final overlap score per laid out molecule.",
				Buckets:   []float64{0, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 25},
			},
		),
		cacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "cache_events_total",
				Help:      "Cache hits, misses and writes per level.",
			},
			[]string{"level", "event"},
		),
		cacheBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "cache_written_bytes_total",
				Help:      "Bytes written to the cache.",
			},
		),
		draws: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "draws_total",
				Help:      "Draw requests by format and outcome.",
			},
			[]string{"format", "status"},
		),
		storeOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "gallery_ops_total",
				Help:      "Gallery store operations by outcome.",
			},
			[]string{"op", "status"},
		),
		storeDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "gallery_op_duration_seconds",
				Help:      "Gallery store operation latency.",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 6),
			},
			[]string{"op"},
		),
	}

	reg.MustRegister(
		m.stageDuration,
		m.stageErrors,
		m.overlapScores,
		m.cacheEvents,
		m.cacheBytes,
		m.draws,
		m.storeOps,
		m.storeDuration,
	)
	return m
}

// Install registers the adapter for all hook families.
func (m *Metrics) Install() {
	observability.SetPipelineHooks(m)
	observability.SetCacheHooks(m)
	observability.SetStoreHooks(m)
}

// UseMetrics attaches the adapter to the server and installs its hooks.
func (s *Server) UseMetrics(m *Metrics) {
	s.metrics = m
	m.Install()
}

// DrawObserved counts one draw request.
func (m *Metrics) DrawObserved(format, status string) {
	m.draws.WithLabelValues(format, status).Inc()
}

func (m *Metrics) observeStage(stage string, duration time.Duration, err error) {
	m.stageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	if err != nil {
		m.stageErrors.WithLabelValues(stage).Inc()
	}
}

// PipelineHooks implementation.

func (m *Metrics) OnParseStart(context.Context, string) {}

func (m *Metrics) OnParseComplete(_ context.Context, _ string, _ int, duration time.Duration, err error) {
	m.observeStage("parse", duration, err)
}

func (m *Metrics) OnPerceiveStart(context.Context, int) {}

func (m *Metrics) OnPerceiveComplete(_ context.Context, _ int, duration time.Duration, err error) {
	m.observeStage("perceive", duration, err)
}

func (m *Metrics) OnLayoutStart(context.Context, int) {}

func (m *Metrics) OnLayoutComplete(_ context.Context, overlap float64, duration time.Duration, err error) {
	m.observeStage("layout", duration, err)
	if err == nil {
		m.overlapScores.Observe(overlap)
	}
}

func (m *Metrics) OnRenderStart(context.Context, []string) {}

func (m *Metrics) OnRenderComplete(_ context.Context, _ []string, duration time.Duration, err error) {
	m.observeStage("render", duration, err)
}

// CacheHooks implementation.

func (m *Metrics) OnCacheHit(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheEvents.WithLabelValues(keyType, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheEvents.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.Add(float64(size))
}

// StoreHooks implementation.

func (m *Metrics) OnSave(_ context.Context, _ string, duration time.Duration, err error) {
	m.storeOps.WithLabelValues("save", storeStatus(err)).Inc()
	m.storeDuration.WithLabelValues("save").Observe(duration.Seconds())
}

func (m *Metrics) OnGet(_ context.Context, _ string, _ bool, duration time.Duration, err error) {
	m.storeOps.WithLabelValues("get", storeStatus(err)).Inc()
	m.storeDuration.WithLabelValues("get").Observe(duration.Seconds())
}

func (m *Metrics) OnList(_ context.Context, _ int, duration time.Duration, err error) {
	m.storeOps.WithLabelValues("list", storeStatus(err)).Inc()
	m.storeDuration.WithLabelValues("list").Observe(duration.Seconds())
}

// storeStatus folds expected sentinels into their own outcomes so real
// failures stand out.
func storeStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, gallery.ErrNotFound):
		return "not_found"
	case errors.Is(err, gallery.ErrExists):
		return "conflict"
	default:
		return "error"
	}
}

var (
	_ observability.PipelineHooks = (*Metrics)(nil)
	_ observability.CacheHooks    = (*Metrics)(nil)
	_ observability.StoreHooks    = (*Metrics)(nil)
)
