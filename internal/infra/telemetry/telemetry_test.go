package telemetry

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"slackmcp/internal/domain"
)

func TestPrometheusMetricsRegistersFamilies(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewPrometheusMetrics(registry)

	metrics.ObserveDispatch("slack_users_info", 12*time.Millisecond, nil)
	metrics.ObserveDispatch("slack_users_info", 3*time.Millisecond,
		domain.E(domain.KindRateLimited, "dispatch.call", "rate limited", nil))
	metrics.ObserveRefresh(40*time.Millisecond, nil)
	metrics.ObserveRefresh(time.Millisecond, errors.New("exchange offline"))
	metrics.ObserveRateLimitWait("slack_users_info", 2*time.Second)
	metrics.SetCredentialExpiry(time.Unix(1900000000, 0))

	families, err := registry.Gather()
	require.NoError(t, err)

	names := map[string]bool{}
	for _, family := range families {
		names[family.GetName()] = true
	}
	require.True(t, names["slackmcp_dispatch_duration_seconds"])
	require.True(t, names["slackmcp_token_refresh_duration_seconds"])
	require.True(t, names["slackmcp_rate_limit_waits_total"])
	require.True(t, names["slackmcp_credential_expiry_timestamp_seconds"])
}

func TestDispatchStatusUsesTaxonomyKind(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewPrometheusMetrics(registry)

	metrics.ObserveDispatch("tool", time.Millisecond,
		domain.E(domain.KindPermission, "dispatch.permission", "nope", nil))

	families, err := registry.Gather()
	require.NoError(t, err)

	found := false
	for _, family := range families {
		if family.GetName() != "slackmcp_dispatch_duration_seconds" {
			continue
		}
		for _, metric := range family.GetMetric() {
			for _, label := range metric.GetLabel() {
				if label.GetName() == "status" {
					require.Equal(t, "permission", label.GetValue())
					found = true
				}
			}
		}
	}
	require.True(t, found)
}

func TestRefreshDurationIsRecorded(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewPrometheusMetrics(registry)

	metrics.ObserveRefresh(250*time.Millisecond, nil)

	families, err := registry.Gather()
	require.NoError(t, err)

	found := false
	for _, family := range families {
		if family.GetName() != "slackmcp_token_refresh_duration_seconds" {
			continue
		}
		require.Len(t, family.GetMetric(), 1)
		hist := family.GetMetric()[0].GetHistogram()
		require.Equal(t, uint64(1), hist.GetSampleCount())
		require.InDelta(t, 0.25, hist.GetSampleSum(), 1e-9)
		found = true
	}
	require.True(t, found)
}

func TestHealthHandler(t *testing.T) {
	handler := healthHandler()
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/healthz", nil))

	require.Equal(t, 200, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ok", body["status"])
	require.Contains(t, body, "uptime_seconds")
}

func TestStartHTTPServerDisabled(t *testing.T) {
	err := StartHTTPServer(context.Background(), HTTPServerOptions{
		Addr: "127.0.0.1:0",
	}, nil)
	require.NoError(t, err)
}
