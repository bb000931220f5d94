package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollectorCountsDecisions(t *testing.T) {
	c := New()
	c.RecordDecision(true, "none")
	c.RecordDecision(false, "sender_blocked")
	c.RecordDecision(false, "sender_blocked")

	if got := testutil.ToFloat64(c.decisionsTotal.WithLabelValues("skipped", "sender_blocked")); got != 2 {
		t.Fatalf("expected 2 blocked decisions, got %v", got)
	}
	if got := testutil.ToFloat64(c.decisionsTotal.WithLabelValues("allowed", "none")); got != 1 {
		t.Fatalf("expected 1 allowed decision, got %v", got)
	}
}

func TestCollectorHandlerExposesMetrics(t *testing.T) {
	c := New()
	c.Record(http.StatusOK, 20*time.Millisecond)
	c.RecordEmail("sent")

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, name := range []string{"notify_http_requests_total", "notify_emails_total"} {
		if !strings.Contains(body, name) {
			t.Fatalf("expected %s in output", name)
		}
	}
}
