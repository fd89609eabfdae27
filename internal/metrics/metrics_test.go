package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCountersRecord(t *testing.T) {
	m := New()
	m.Loaded(3)
	m.Collision()
	m.Collision()
	m.Synthetic()
	m.HighlightFailed("go")
	m.PageWritten("post")
	m.PageWritten("post")
	m.PageWritten("sitemap")
	m.ObserveRender(0.01)

	if got := testutil.ToFloat64(m.DocumentsLoaded); got != 3 {
		t.Fatalf("expected 3 documents, got %v", got)
	}
	if got := testutil.ToFloat64(m.IDCollisions); got != 2 {
		t.Fatalf("expected 2 collisions, got %v", got)
	}
	if got := testutil.ToFloat64(m.SyntheticIDs); got != 1 {
		t.Fatalf("expected 1 synthetic id, got %v", got)
	}
	if got := testutil.ToFloat64(m.HighlightFailures.WithLabelValues("go")); got != 1 {
		t.Fatalf("expected 1 highlight failure, got %v", got)
	}
	if got := testutil.ToFloat64(m.PagesWritten.WithLabelValues("post")); got != 2 {
		t.Fatalf("expected 2 posts, got %v", got)
	}
	if got := testutil.CollectAndCount(m.RenderDuration); got != 1 {
		t.Fatalf("expected one histogram series, got %d", got)
	}
}

func TestRegistriesAreIsolated(t *testing.T) {
	a, b := New(), New()
	a.Loaded(5)
	if got := testutil.ToFloat64(b.DocumentsLoaded); got != 0 {
		t.Fatalf("expected isolated registries, got %v", got)
	}
	families, err := a.Registry.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatalf("expected registered families")
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.Loaded(1)
	m.LoadFailed()
	m.Collision()
	m.Synthetic()
	m.HighlightFailed("go")
	m.ObserveRender(1)
	m.PageWritten("post")
}
