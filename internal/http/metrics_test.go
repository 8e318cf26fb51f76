package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/jmehdipour/paynotify/internal/metrics"
)

func TestMetricsServer(t *testing.T) {
	h := NewMetricsServer(zaptest.NewLogger(t)).Handler()
	metrics.MessagesProcessedTotal.WithLabelValues("sent").Inc()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "paynotify_queue_messages_total") {
		t.Error("worker counters must be exported")
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("healthz status = %d", rec.Code)
	}
}
