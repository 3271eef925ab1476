package obs_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/noah-isme/toko-margin/internal/obs"
)

func TestHTTPMetricsLabels(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := obs.NewHTTPMetrics("margin", []float64{1, 10}, registry)
	handler := obs.HTTPObs{Metrics: metrics}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/compare", nil)
	req = req.WithContext(obs.WithRoutePattern(req.Context(), "/api/v1/pricing/compare"))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 got %d", rr.Code)
	}

	total := testutil.ToFloat64(metrics.ReqTotal.WithLabelValues(http.MethodPost, "/api/v1/pricing/compare", "204"))
	if total != 1 {
		t.Fatalf("expected counter to be 1, got %v", total)
	}
	if samples := testutil.CollectAndCount(metrics.ReqDur); samples == 0 {
		t.Fatalf("expected histogram sample")
	}
	if val := testutil.ToFloat64(metrics.InFlight); val != 0 {
		t.Fatalf("expected no in-flight requests, got %v", val)
	}
}

func TestMetricsReuseRegisteredCollectors(t *testing.T) {
	registry := prometheus.NewRegistry()
	first := obs.NewPricingMetrics("margin", registry)
	second := obs.NewPricingMetrics("margin", registry)
	if first.CalculationsTotal != second.CalculationsTotal {
		t.Fatal("expected the registered counter to be reused")
	}

	second.ObserveCalculation("compare", "ok", time.Millisecond)
	if got := testutil.ToFloat64(first.CalculationsTotal.WithLabelValues("compare", "ok")); got != 1 {
		t.Fatalf("expected 1 calculation, got %v", got)
	}

	var nilMetrics *obs.PricingMetrics
	nilMetrics.ObserveCalculation("compare", "ok", time.Millisecond)
}

func TestRequestLoggerWritesStructuredEvent(t *testing.T) {
	var buf bytes.Buffer
	logger := obs.NewLoggerTo(&buf, "json", "info")
	handler := obs.RequestLogger{Logger: logger}.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	}))

	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health/live", nil))

	var event map[string]any
	if err := json.Unmarshal(buf.Bytes(), &event); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	if event["message"] != "http_request" {
		t.Fatalf("unexpected message %v", event["message"])
	}
	if event["path"] != "/health/live" || event["bytes"] != float64(2) {
		t.Fatalf("unexpected event %#v", event)
	}
}

func TestParseBucketsCSV(t *testing.T) {
	got := obs.ParseBucketsCSV("5, x, -1, 10")
	if len(got) != 2 || got[0] != 5 || got[1] != 10 {
		t.Fatalf("unexpected buckets %v", got)
	}
	if obs.ParseBucketsCSV("  ") != nil {
		t.Fatal("expected nil for empty input")
	}
}
