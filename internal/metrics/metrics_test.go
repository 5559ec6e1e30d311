package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordWebhook(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordWebhook("postback", "success", 0.05)
	m.RecordWebhook("postback", "success", 0.10)
	m.RecordWebhook("follow", "error", 0.01)

	if got := testutil.ToFloat64(m.WebhookRequestsTotal.WithLabelValues("postback", "success")); got != 2 {
		t.Errorf("Expected 2 postback successes, got %v", got)
	}
	if got := testutil.ToFloat64(m.WebhookRequestsTotal.WithLabelValues("follow", "error")); got != 1 {
		t.Errorf("Expected 1 follow error, got %v", got)
	}
}

func TestRecordTransition(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordTransition("start_consultation", "applied")
	m.RecordTransition("call_no_response", "guard_rejected")

	if got := testutil.ToFloat64(m.TransitionsTotal.WithLabelValues("start_consultation", "applied")); got != 1 {
		t.Errorf("Expected 1 applied transition, got %v", got)
	}
}

func TestRecordMenuLink(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := New(registry)

	m.RecordMenuLink("start_consultation", "not_registered")

	if got := testutil.ToFloat64(m.MenuLinksTotal.WithLabelValues("start_consultation", "not_registered")); got != 1 {
		t.Errorf("Expected 1 not_registered link, got %v", got)
	}
}
