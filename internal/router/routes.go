package router

import (
	"net/http"

	"github.com/aashari/go-generative-gateway/internal/handlers"
	"github.com/aashari/go-generative-gateway/internal/health"
	"github.com/aashari/go-generative-gateway/internal/middleware"
	"github.com/aashari/go-generative-gateway/internal/monitoring"
	"github.com/aashari/go-generative-gateway/internal/proxy"
	httpSwagger "github.com/swaggo/http-swagger"
)

// Dependencies are the handlers and collaborators mounted by SetupRoutes.
type Dependencies struct {
	Gateway        *proxy.ProxyHandler
	API            *handlers.APIHandlers
	Health         *health.HealthChecker
	Metrics        *monitoring.Metrics
	AllowedOrigins []string
}

// SetupRoutes configures all routes for the application
func SetupRoutes(deps Dependencies) http.Handler {
	mux := http.NewServeMux()

	// Gateway
	mux.HandleFunc("POST /api/ai-gateway", deps.Gateway.HandleGateway)

	// Jobs, sessions and catalog
	mux.HandleFunc("GET /api/jobs/{id}", deps.API.JobHandler)
	mux.HandleFunc("GET /api/sessions/{id}/messages", deps.API.SessionMessagesHandler)
	mux.HandleFunc("DELETE /api/sessions/{id}", deps.API.ResetSessionHandler)
	mux.HandleFunc("GET /v1/models", deps.API.ModelsHandler)

	mux.HandleFunc("GET /health", health.HealthHandler(deps.Health))
	mux.Handle("GET /metrics", deps.Metrics.Handler())

	// Add pprof endpoints for performance profiling
	monitoring.SetupPprofRoutes(mux)

	// Serve Swagger UI with proper configuration
	mux.Handle("GET /swagger/", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"), // The URL pointing to API definition
		httpSwagger.DeepLinking(true),
		httpSwagger.DocExpansion("none"),
		httpSwagger.DomID("swagger-ui"),
	))

	// Metrics must wrap the mux directly to see the matched pattern.
	var handler http.Handler = deps.Metrics.Middleware(mux)
	handler = middleware.CORSMiddleware(deps.AllowedOrigins)(handler)
	return middleware.RequestCorrelationMiddleware(handler)
}
