// Package metrics exposes prometheus collectors for the content pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the pipeline collectors on an isolated registry so several
// instances (and tests) never collide with the global default registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	DocumentsLoaded   prometheus.Counter
	LoadFailures      prometheus.Counter
	IDCollisions      prometheus.Counter
	SyntheticIDs      prometheus.Counter
	HighlightFailures *prometheus.CounterVec
	RenderDuration    prometheus.Histogram
	PagesWritten      *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		DocumentsLoaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_documents_loaded_total",
			Help: "Markdown documents loaded into a store snapshot.",
		}),
		LoadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_load_failures_total",
			Help: "Store loads that failed and kept the previous snapshot.",
		}),
		IDCollisions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_id_collisions_total",
			Help: "Ids that needed a numeric suffix to stay unique.",
		}),
		SyntheticIDs: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "blog_synthetic_ids_total",
			Help: "Documents whose id could not be derived and was generated.",
		}),
		HighlightFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_highlight_failures_total",
			Help: "Code blocks left plain because highlighting failed.",
		}, []string{"language"}),
		RenderDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "blog_render_duration_seconds",
			Help:    "Time spent rendering, sanitizing and highlighting one post.",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		PagesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "blog_pages_written_total",
			Help: "Files emitted by the static site generator.",
		}, []string{"kind"}),
	}

	reg.MustRegister(
		m.DocumentsLoaded,
		m.LoadFailures,
		m.IDCollisions,
		m.SyntheticIDs,
		m.HighlightFailures,
		m.RenderDuration,
		m.PagesWritten,
	)
	return m
}

// Loaded adds n loaded documents.
func (m *Metrics) Loaded(n int) {
	if m == nil {
		return
	}
	m.DocumentsLoaded.Add(float64(n))
}

// LoadFailed counts a failed store load.
func (m *Metrics) LoadFailed() {
	if m == nil {
		return
	}
	m.LoadFailures.Inc()
}

// Collision counts one suffixed id.
func (m *Metrics) Collision() {
	if m == nil {
		return
	}
	m.IDCollisions.Inc()
}

// Synthetic counts one generated id.
func (m *Metrics) Synthetic() {
	if m == nil {
		return
	}
	m.SyntheticIDs.Inc()
}

// HighlightFailed counts one block that stayed plain.
func (m *Metrics) HighlightFailed(language string) {
	if m == nil {
		return
	}
	m.HighlightFailures.WithLabelValues(language).Inc()
}

// ObserveRender records how long one post took to render.
func (m *Metrics) ObserveRender(seconds float64) {
	if m == nil {
		return
	}
	m.RenderDuration.Observe(seconds)
}

// PageWritten counts one generated file of the given kind (post, sitemap, ...).
func (m *Metrics) PageWritten(kind string) {
	if m == nil {
		return
	}
	m.PagesWritten.WithLabelValues(kind).Inc()
}
