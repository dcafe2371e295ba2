package health

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/aashari/go-generative-gateway/internal/models"
	"github.com/aashari/go-generative-gateway/internal/types"
)

// WebhookCheck reports whether the orchestration webhook answers at all.
// Any HTTP reply below 500 counts as reachable.
func WebhookCheck(client *http.Client, webhookURL string) *HealthCheck {
	return &HealthCheck{
		Name:        "webhook",
		Description: "Reachability of the orchestration webhook",
		Timeout:     5 * time.Second,
		Check: func(ctx context.Context) HealthCheckResult {
			details := map[string]interface{}{"url": webhookURL}
			req, err := http.NewRequestWithContext(ctx, http.MethodHead, webhookURL, nil)
			if err != nil {
				return HealthCheckResult{Status: StatusUnhealthy, Message: "invalid webhook URL", Error: err.Error(), Details: details}
			}
			resp, err := client.Do(req)
			if err != nil {
				return HealthCheckResult{Status: StatusUnhealthy, Message: "webhook unreachable", Error: err.Error(), Details: details}
			}
			resp.Body.Close()
			details["status_code"] = resp.StatusCode
			if resp.StatusCode >= http.StatusInternalServerError {
				return HealthCheckResult{Status: StatusDegraded, Message: "webhook answers with server errors", Details: details}
			}
			return HealthCheckResult{Status: StatusHealthy, Message: "webhook reachable", Details: details}
		},
	}
}

// PingCheck wraps a dependency ping (MongoDB, Redis).
func PingCheck(name, description string, critical bool, ping func(ctx context.Context) error) *HealthCheck {
	return &HealthCheck{
		Name:        name,
		Description: description,
		Critical:    critical,
		Timeout:     3 * time.Second,
		Check: func(ctx context.Context) HealthCheckResult {
			if err := ping(ctx); err != nil {
				return HealthCheckResult{Status: StatusUnhealthy, Message: name + " ping failed", Error: err.Error()}
			}
			return HealthCheckResult{Status: StatusHealthy, Message: name + " reachable"}
		},
	}
}

// RegistryCheck verifies the static model tables are self-consistent: every
// default is valid and every fallback lands on a usable identifier.
func RegistryCheck() *HealthCheck {
	return &HealthCheck{
		Name:        "registry",
		Description: "Model registry consistency",
		Critical:    true,
		Timeout:     time.Second,
		Check: func(ctx context.Context) HealthCheckResult {
			problems := registryProblems()
			details := map[string]interface{}{
				"valid_models": len(models.AllValidModels()),
				"fallbacks":    len(models.FallbackEntries()),
			}
			if len(problems) > 0 {
				details["problems"] = problems
				return HealthCheckResult{Status: StatusUnhealthy, Message: "model registry is inconsistent", Details: details}
			}
			return HealthCheckResult{Status: StatusHealthy, Message: "model registry loaded", Details: details}
		},
	}
}

func registryProblems() []string {
	var problems []string
	if !models.IsValid(models.DetectProvider(models.DefaultModel), models.DefaultModel) {
		problems = append(problems, fmt.Sprintf("default model %s is not valid", models.DefaultModel))
	}
	for _, provider := range types.Providers {
		if id := models.ProviderDefault(provider); !models.IsValid(provider, id) {
			problems = append(problems, fmt.Sprintf("%s default %s is not valid", provider, id))
		}
	}
	for source, target := range models.FallbackEntries() {
		if source == target {
			continue
		}
		if !models.IsValid(models.DetectProvider(target), target) {
			problems = append(problems, fmt.Sprintf("fallback %s -> %s is not valid", source, target))
		}
	}
	return problems
}
