// Package health runs the gateway's dependency checks and serves /health.
package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/aashari/go-generative-gateway/internal/logger"
	"github.com/aashari/go-generative-gateway/internal/utils"
	"golang.org/x/sync/errgroup"
)

// HealthStatus represents the health status of a component
type HealthStatus string

const (
	StatusHealthy   HealthStatus = "healthy"
	StatusUnhealthy HealthStatus = "unhealthy"
	StatusDegraded  HealthStatus = "degraded"
)

const defaultCheckTimeout = 5 * time.Second

// HealthCheck represents a single health check
type HealthCheck struct {
	Name        string
	Description string
	Check       func(ctx context.Context) HealthCheckResult
	Timeout     time.Duration
	// Critical failures make the whole service unhealthy; others only degrade it.
	Critical bool
}

// HealthCheckResult represents the result of a health check
type HealthCheckResult struct {
	Status     HealthStatus           `json:"status"`
	Message    string                 `json:"message,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Error      string                 `json:"error,omitempty"`
	Critical   bool                   `json:"critical"`
	Timestamp  time.Time              `json:"timestamp"`
	DurationMs int64                  `json:"duration_ms"`
}

// Report is the body served by the health endpoint.
type Report struct {
	Status    HealthStatus                 `json:"status" example:"healthy"`
	Service   string                       `json:"service" example:"generative-gateway"`
	Version   string                       `json:"version" example:"2.2.0"`
	Timestamp string                       `json:"timestamp"`
	Uptime    string                       `json:"uptime" example:"1h2m3s"`
	Checks    map[string]HealthCheckResult `json:"checks"`
}

// HealthChecker manages and executes health checks
type HealthChecker struct {
	checks    map[string]*HealthCheck
	mutex     sync.RWMutex
	startTime time.Time
}

// NewHealthChecker creates a new health checker
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks:    make(map[string]*HealthCheck),
		startTime: time.Now(),
	}
}

// RegisterCheck registers a new health check, replacing one with the same name.
func (hc *HealthChecker) RegisterCheck(check *HealthCheck) {
	if check.Timeout <= 0 {
		check.Timeout = defaultCheckTimeout
	}

	hc.mutex.Lock()
	hc.checks[check.Name] = check
	hc.mutex.Unlock()

	logger.Debug(logger.WithComponent(context.Background(), logger.ComponentNames.Health), "Health check registered",
		"name", check.Name,
		"critical", check.Critical,
		"timeout", check.Timeout,
	)
}

// Names returns the registered check names, sorted.
func (hc *HealthChecker) Names() []string {
	hc.mutex.RLock()
	defer hc.mutex.RUnlock()
	names := make([]string, 0, len(hc.checks))
	for name := range hc.checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ExecuteCheck executes a single health check
func (hc *HealthChecker) ExecuteCheck(ctx context.Context, name string) (*HealthCheckResult, error) {
	hc.mutex.RLock()
	check, exists := hc.checks[name]
	hc.mutex.RUnlock()

	if !exists {
		return nil, fmt.Errorf("health check %s not found", name)
	}
	result := hc.executeCheck(ctx, check)
	return &result, nil
}

// ExecuteAllChecks runs every registered check concurrently.
func (hc *HealthChecker) ExecuteAllChecks(ctx context.Context) map[string]HealthCheckResult {
	hc.mutex.RLock()
	checks := make([]*HealthCheck, 0, len(hc.checks))
	for _, check := range hc.checks {
		checks = append(checks, check)
	}
	hc.mutex.RUnlock()

	results := make([]HealthCheckResult, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	for i, check := range checks {
		g.Go(func() error {
			results[i] = hc.executeCheck(gctx, check)
			return nil
		})
	}
	_ = g.Wait()

	out := make(map[string]HealthCheckResult, len(checks))
	for i, check := range checks {
		out[check.Name] = results[i]
	}
	return out
}

func (hc *HealthChecker) executeCheck(ctx context.Context, check *HealthCheck) HealthCheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, check.Timeout)
	defer cancel()

	start := time.Now()
	result := check.Check(checkCtx)
	if result.Status == "" {
		result.Status = StatusHealthy
	}
	if checkCtx.Err() == context.DeadlineExceeded && result.Status == StatusHealthy {
		result.Status = StatusUnhealthy
		result.Message = fmt.Sprintf("check timed out after %s", check.Timeout)
	}
	result.Critical = check.Critical
	result.Timestamp = start.UTC()
	result.DurationMs = time.Since(start).Milliseconds()

	logger.Debug(logger.WithStage(logger.WithComponent(ctx, logger.ComponentNames.Health), logger.LogStages.HealthCheck),
		"Health check executed",
		"name", check.Name,
		"status", result.Status,
		"duration_ms", result.DurationMs,
	)
	return result
}

// GetOverallHealth runs all checks and folds them into one status: any
// critical failure is unhealthy, any other failure or degradation is degraded.
func (hc *HealthChecker) GetOverallHealth(ctx context.Context) (HealthStatus, map[string]HealthCheckResult) {
	results := hc.ExecuteAllChecks(ctx)

	overall := StatusHealthy
	for _, result := range results {
		switch {
		case result.Status == StatusUnhealthy && result.Critical:
			overall = StatusUnhealthy
		case result.Status != StatusHealthy && overall == StatusHealthy:
			overall = StatusDegraded
		}
	}
	return overall, results
}

// Uptime returns how long the checker has existed.
func (hc *HealthChecker) Uptime() time.Duration {
	return time.Since(hc.startTime)
}

// HealthHandler serves the aggregated report, or a single check with ?check=name.
// Unhealthy answers 503; degraded still answers 200 so load balancers keep routing.
func HealthHandler(hc *HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.WithComponent(r.Context(), logger.ComponentNames.Health)

		if name := r.URL.Query().Get("check"); name != "" {
			result, err := hc.ExecuteCheck(ctx, name)
			if err != nil {
				writeJSON(ctx, w, http.StatusNotFound, map[string]string{"error": err.Error()})
				return
			}
			writeJSON(ctx, w, statusCode(result.Status), result)
			return
		}

		overall, results := hc.GetOverallHealth(ctx)
		if overall != StatusHealthy {
			logger.Warn(logger.WithStage(ctx, logger.LogStages.HealthCheckFailed), "Health check reported problems",
				"status", overall,
			)
		}
		writeJSON(ctx, w, statusCode(overall), Report{
			Status:    overall,
			Service:   logger.ServiceName,
			Version:   utils.ServiceVersion,
			Timestamp: time.Now().UTC().Format(utils.TimestampFormat),
			Uptime:    hc.Uptime().Truncate(time.Second).String(),
			Checks:    results,
		})
	}
}

func statusCode(status HealthStatus) int {
	if status == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}

func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set(utils.HeaderContentType, utils.ContentTypeJSON)
	w.Header().Set(utils.HeaderCacheControl, utils.CacheControlNoStore)
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error(ctx, "Failed to write health response", err)
	}
}
