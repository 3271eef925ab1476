package main

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-margin/internal/config"
)

func testConfig(t *testing.T, overrides map[string]string) *config.Config {
	t.Helper()
	env := map[string]string{
		"OBS_ENABLE_TRACING":    "false",
		"OBS_ENABLE_PROMETHEUS": "true",
		"RATE_LIMIT_MAX":        "100",
		"HTTP_BODY_LIMIT_BYTES": "",
	}
	for k, v := range overrides {
		env[k] = v
	}
	cfg, err := config.LoadForTests(env)
	require.NoError(t, err)
	return cfg
}

func TestRouterServesPricing(t *testing.T) {
	srv := httptest.NewServer(newRouter(testConfig(t, nil), zerolog.Nop(), prometheus.NewRegistry()))
	defer srv.Close()

	body := `{"unitPrice": 100, "unitCost": 40, "platformFeeRate": "0.2", "fixedFee": 5, "baseQuantity": 10}`
	resp, err := http.Post(srv.URL+"/api/v1/pricing/compare", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "no-store", resp.Header.Get("Cache-Control"))
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(data), `"percentageDifference":12.85714286`)

	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	out, err := io.ReadAll(metrics.Body)
	require.NoError(t, err)
	require.Contains(t, string(out), `margin_pricing_calculations_total{operation="compare_sales_strategies",result="ok"} 1`)
	require.Contains(t, string(out), `route="/api/v1/pricing/compare"`)
}

func TestRouterHealth(t *testing.T) {
	router := newRouter(testConfig(t, nil), zerolog.Nop(), prometheus.NewRegistry())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"pricing":"ok"`)
}

func TestRouterRateLimits(t *testing.T) {
	router := newRouter(testConfig(t, map[string]string{"RATE_LIMIT_MAX": "1"}), zerolog.Nop(), prometheus.NewRegistry())

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/profit/base", bytes.NewBufferString(`{"unitPrice": 1, "unitCost": 1, "baseQuantity": 1}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}
	require.Equal(t, http.StatusOK, send())
	require.Equal(t, http.StatusTooManyRequests, send())
}

func TestRouterRateLimitKeyIgnoresForwardedHeadersByDefault(t *testing.T) {
	send := func(router http.Handler, forwarded string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/profit/base", strings.NewReader(`{"unitPrice": 1, "unitCost": 1, "baseQuantity": 1}`))
		req.RemoteAddr = "198.51.100.7:4000"
		req.Header.Set("X-Forwarded-For", forwarded)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	direct := newRouter(testConfig(t, map[string]string{"RATE_LIMIT_MAX": "1", "HTTP_TRUST_PROXY": ""}), zerolog.Nop(), prometheus.NewRegistry())
	require.Equal(t, http.StatusOK, send(direct, "203.0.113.1"))
	require.Equal(t, http.StatusTooManyRequests, send(direct, "203.0.113.2"))

	proxied := newRouter(testConfig(t, map[string]string{"RATE_LIMIT_MAX": "1", "HTTP_TRUST_PROXY": "true"}), zerolog.Nop(), prometheus.NewRegistry())
	require.Equal(t, http.StatusOK, send(proxied, "203.0.113.1"))
	require.Equal(t, http.StatusOK, send(proxied, "203.0.113.2"))
	require.Equal(t, http.StatusTooManyRequests, send(proxied, "203.0.113.1"))
}

func TestRouterBodyLimit(t *testing.T) {
	router := newRouter(testConfig(t, map[string]string{"HTTP_BODY_LIMIT_BYTES": "16"}), zerolog.Nop(), prometheus.NewRegistry())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/pricing/report", strings.NewReader(`{"unitPrice": 100, "unitCost": 40, "baseQuantity": 10}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}
