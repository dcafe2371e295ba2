package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func staticCheck(name string, critical bool, status HealthStatus) *HealthCheck {
	return &HealthCheck{
		Name:     name,
		Critical: critical,
		Check: func(ctx context.Context) HealthCheckResult {
			return HealthCheckResult{Status: status}
		},
	}
}

func TestGetOverallHealth(t *testing.T) {
	tests := []struct {
		name   string
		checks []*HealthCheck
		want   HealthStatus
	}{
		{
			name:   "all healthy",
			checks: []*HealthCheck{staticCheck("a", true, StatusHealthy), staticCheck("b", false, StatusHealthy)},
			want:   StatusHealthy,
		},
		{
			name:   "non critical failure degrades",
			checks: []*HealthCheck{staticCheck("a", true, StatusHealthy), staticCheck("b", false, StatusUnhealthy)},
			want:   StatusDegraded,
		},
		{
			name:   "degraded check degrades",
			checks: []*HealthCheck{staticCheck("a", true, StatusDegraded)},
			want:   StatusDegraded,
		},
		{
			name:   "critical failure is unhealthy",
			checks: []*HealthCheck{staticCheck("a", true, StatusUnhealthy), staticCheck("b", false, StatusDegraded)},
			want:   StatusUnhealthy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hc := NewHealthChecker()
			for _, c := range tt.checks {
				hc.RegisterCheck(c)
			}
			got, results := hc.GetOverallHealth(context.Background())
			assert.Equal(t, tt.want, got)
			assert.Len(t, results, len(tt.checks))
		})
	}
}

func TestExecuteCheck_Timeout(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterCheck(&HealthCheck{
		Name:    "slow",
		Timeout: 10 * time.Millisecond,
		Check: func(ctx context.Context) HealthCheckResult {
			<-ctx.Done()
			return HealthCheckResult{}
		},
	})

	result, err := hc.ExecuteCheck(context.Background(), "slow")
	require.NoError(t, err)
	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Contains(t, result.Message, "timed out")

	_, err = hc.ExecuteCheck(context.Background(), "missing")
	assert.Error(t, err)
}

func TestWebhookCheck(t *testing.T) {
	methodNotAllowed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	defer methodNotAllowed.Close()

	failing := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer failing.Close()

	closed := httptest.NewServer(http.NotFoundHandler())
	closedURL := closed.URL
	closed.Close()

	tests := []struct {
		name string
		url  string
		want HealthStatus
	}{
		{"any client error means reachable", methodNotAllowed.URL, StatusHealthy},
		{"server errors degrade", failing.URL, StatusDegraded},
		{"refused connection", closedURL, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := WebhookCheck(http.DefaultClient, tt.url).Check(context.Background())
			assert.Equal(t, tt.want, result.Status)
			assert.Equal(t, tt.url, result.Details["url"])
		})
	}
}

func TestPingCheck(t *testing.T) {
	ok := PingCheck("redis", "job store", false, func(context.Context) error { return nil })
	assert.Equal(t, StatusHealthy, ok.Check(context.Background()).Status)

	failing := PingCheck("mongodb", "usage log", false, func(context.Context) error { return errors.New("no reachable servers") })
	result := failing.Check(context.Background())
	assert.Equal(t, StatusUnhealthy, result.Status)
	assert.Equal(t, "no reachable servers", result.Error)
}

func TestRegistryCheck(t *testing.T) {
	assert.Empty(t, registryProblems())
	result := RegistryCheck().Check(context.Background())
	assert.Equal(t, StatusHealthy, result.Status)
	assert.Greater(t, result.Details["valid_models"], 0)
}

func TestHealthHandler(t *testing.T) {
	hc := NewHealthChecker()
	hc.RegisterCheck(RegistryCheck())
	hc.RegisterCheck(staticCheck("redis", false, StatusUnhealthy))

	t.Run("aggregate", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HealthHandler(hc)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		var report Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, StatusDegraded, report.Status)
		assert.Contains(t, report.Checks, "registry")
		assert.Equal(t, StatusUnhealthy, report.Checks["redis"].Status)
		assert.NotEmpty(t, report.Version)
	})

	t.Run("single check", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HealthHandler(hc)(rec, httptest.NewRequest(http.MethodGet, "/health?check=registry", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"status":"healthy"`)
	})

	t.Run("unknown check", func(t *testing.T) {
		rec := httptest.NewRecorder()
		HealthHandler(hc)(rec, httptest.NewRequest(http.MethodGet, "/health?check=nope", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("critical failure", func(t *testing.T) {
		broken := NewHealthChecker()
		broken.RegisterCheck(staticCheck("registry", true, StatusUnhealthy))
		rec := httptest.NewRecorder()
		HealthHandler(broken)(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
