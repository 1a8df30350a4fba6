// Package server provides HTTP server implementation for the SentryLog application.
// It handles routing, middleware configuration, and server lifecycle management.
//
// The package follows a structured approach to route organization, with clear
// grouping based on functionality and proper security measures for protected
// routes. CORS and other security headers are carefully configured to provide
// secure access while enabling legitimate API usage.
package server

import (
	"net/http"
	"os"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog/log"

	"github.com/yasinhessnawi1/sentrylog/internal/constants"
	"github.com/yasinhessnawi1/sentrylog/internal/middleware"
	"github.com/yasinhessnawi1/sentrylog/internal/utils"
)

// SetupRoutes configures the routes for the application.
// It creates a router hierarchy with middleware and grouped routes
// according to functionality for organized API structure.
//
// The configured routes include:
// - Health check and version endpoints (unprotected)
// - The access-log capture middleware, applied globally so every request
//   through the router is recorded by the ingestion pipeline
// - The admin query surface under /sp-admin/access-logs, protected by JWT
//   authentication and admin-category rate limiting
//
// Route protection is handled through middleware for authenticated endpoints.
func (s *Server) SetupRoutes() {
	// Create router
	r := chi.NewRouter()

	// Get allowed origins from environment or use default values
	allowedOrigins := getAllowedOrigins()

	// Custom CORS middleware that applies to all routes
	// This ensures CORS headers are applied properly and consistently
	r.Use(corsMiddleware(allowedOrigins))

	// Base middleware
	r.Use(chimiddleware.RequestID)
	r.Use(middleware.Recovery())
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.AccessLogCapture(s.pipeline))

	// Health check and version routes (unprotected)
	r.Group(func(r chi.Router) {
		r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
			// Check database connection
			err := s.Db.HealthCheck(r.Context())
			if err != nil {
				log.Error().Err(err).Msg("Health check failed")
				utils.Error(w, http.StatusServiceUnavailable, "service_unavailable", "Service is not healthy", nil)
				return
			}

			utils.JSON(w, http.StatusOK, map[string]string{
				"status":  "healthy",
				"version": s.Config.App.Version,
			})
		})

		r.Get("/version", func(w http.ResponseWriter, r *http.Request) {
			utils.JSON(w, http.StatusOK, map[string]string{
				"version":     s.Config.App.Version,
				"environment": s.Config.App.Environment,
			})
		})

		r.Get("/sp-admin/routes", s.GetAPIRoutes)
	})

	// Admin access-log query surface (all protected)
	r.Route(constants.AccessLogsBasePath, func(r chi.Router) {
		r.Use(middleware.JWTAuth(s.authProviders.JWTService))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(s.authority, "admin-read"))
			r.Get("/", s.Handlers.AccessLogHandler.ListAccessLogs)
			r.Get("/suspicious", s.Handlers.AccessLogHandler.ListSuspiciousIPs)
			r.Get("/ip/{ipAddress}", s.Handlers.AccessLogHandler.GetIPDetails)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(s.authority, "admin-write"))
			r.Post("/ip/{ipAddress}/ban", s.Handlers.AccessLogHandler.BanIPFromSuspicious)
		})
	})

	// Set the router
	s.router = r
}

// GetRouter returns the configured router.
//
// Returns:
//   - The chi.Router implementation used by the server
//
// This method is primarily used for testing and for
// integrating the router with other components.
func (s *Server) GetRouter() chi.Router {
	return s.router.(chi.Router)
}

// handlePreflight is an explicit handler for OPTIONS preflight requests.
// It properly configures CORS headers for preflight requests to ensure
// cross-origin requests can proceed if the origin is allowed.
//
// Parameters:
//   - allowedOrigins: A list of origins that are allowed to access the API
//
// Returns:
//   - An http.HandlerFunc that handles the OPTIONS preflight requests
//
// The handler responds with a 204 No Content status, along with appropriate
// CORS headers to allow the specified origins, methods, and headers.
func handlePreflight(allowedOrigins []string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")

		// Check if the origin is allowed
		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if allowedOrigin == "*" || allowedOrigin == origin {
				allowed = true
				break
			}
		}

		if allowed {
			w.Header().Set(constants.HeaderContentType, constants.ContentTypeJSON)
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-CSRF-Token, X-Request-ID, X-API-Key")
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Max-Age", "300")
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

// corsMiddleware creates a custom CORS middleware with the specified allowed origins.
// It handles Cross-Origin Resource Sharing to allow browsers to safely access the API
// from different domains while protecting against unauthorized cross-origin requests.
//
// Parameters:
//   - allowedOrigins: A list of origins that are allowed to access the API
//
// Returns:
//   - A middleware function that adds CORS headers to responses
//
// The middleware checks incoming requests against the allowed origins list,
// adds appropriate CORS headers to responses, and handles OPTIONS preflight requests.
// It supports credentials mode for authenticated cross-origin requests.
func corsMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			// Check if the request's origin is in our allowed list
			for _, allowedOrigin := range allowedOrigins {
				if allowedOrigin == "*" || allowedOrigin == origin {
					// Set CORS headers for all responses, not just OPTIONS
					w.Header().Set("Access-Control-Allow-Origin", origin)

					// These headers are essential for credentials mode
					w.Header().Set("Access-Control-Allow-Credentials", "true")

					// For non-OPTIONS requests, just set these headers and continue
					if r.Method != "OPTIONS" {
						next.ServeHTTP(w, r)
						return
					}

					// Handle OPTIONS preflight requests
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-CSRF-Token, X-Request-ID, X-API-Key")
					w.Header().Set("Access-Control-Max-Age", "300")

					// Respond to preflight request
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}

			// If origin is not allowed, continue without setting CORS headers
			next.ServeHTTP(w, r)
		})
	}
}

// getAllowedOrigins reads allowed CORS origins from environment variable or falls back to default values.
// This provides flexibility to configure allowed origins without recompiling the application.
//
// Returns:
//   - A slice of strings representing allowed origins for CORS
//
// The function first checks for an ALLOWED_ORIGINS environment variable.
// If set, it splits the value by comma and uses the resulting list.
// Otherwise, it falls back to a default list of origins.
func getAllowedOrigins() []string {
	// Check if ALLOWED_ORIGINS is set in environment
	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")

	// If ALLOWED_ORIGINS is set, use it
	if allowedOriginsEnv != "" {
		// Split by comma and trim spaces
		origins := strings.Split(allowedOriginsEnv, ",")
		for i, origin := range origins {
			origins[i] = strings.TrimSpace(origin)
		}
		log.Info().Strs("allowed_origins", origins).Msg("Using CORS allowed origins from environment")
		return origins
	}

	// Default hardcoded values if environment variable is not set
	defaultOrigins := []string{"https://www.sentrylog.io", "http://localhost:5173", "https://localhost:5173"}
	log.Info().Strs("allowed_origins", defaultOrigins).Msg("Using default CORS allowed origins")
	return defaultOrigins
}

// GetAPIRoutes returns documentation about all API routes.
// This provides a self-documenting API endpoint that describes all available endpoints,
// their parameters, expected responses, and required authentication.
//
// Parameters:
//   - w: The HTTP response writer
//   - r: The HTTP request
//
// The function builds a map of every route exposed by the admin query
// surface, organized by category, along with the health/version endpoints.
func (s *Server) GetAPIRoutes(w http.ResponseWriter, r *http.Request) {
	routes := map[string]interface{}{}

	routes["system"] = map[string]interface{}{
		"GET /health": map[string]interface{}{
			"description": "Reports service health, including database connectivity",
			"response": map[string]interface{}{
				"status":  "healthy",
				"version": "string",
			},
		},
		"GET /version": map[string]interface{}{
			"description": "Reports application version and environment",
		},
	}

	routes["access_logs"] = map[string]interface{}{
		"GET " + constants.AccessLogsBasePath: map[string]interface{}{
			"description": "List access log records, filtered and paginated",
			"auth":        "Bearer JWT",
			"query": map[string]string{
				"ipAddress":   "string - exact IP match",
				"tenantId":    "string - exact tenant match",
				"userId":      "string - exact user match",
				"method":      "string - exact HTTP method match",
				"path":        "string - substring match",
				"statusCode":  "int - exact status code match",
				"startDate":   "RFC3339 timestamp - inclusive lower bound",
				"endDate":     "RFC3339 timestamp - inclusive upper bound",
				"page":        "int - 1-based page number",
				"limit":       "int - page size",
			},
		},
		"GET " + constants.AccessLogsSuspiciousPath: map[string]interface{}{
			"description": "List IPs flagged by the detection engine, ranked by risk score",
			"auth":        "Bearer JWT",
			"query": map[string]string{
				"startDate":    "RFC3339 timestamp - detection window lower bound",
				"endDate":      "RFC3339 timestamp - detection window upper bound",
				"minRiskScore": "int 0-100 - minimum risk score to include",
			},
		},
		"GET " + constants.AccessLogsIPDetailPath: map[string]interface{}{
			"description": "Request statistics and ban/whitelist status for a single IP",
			"auth":        "Bearer JWT",
		},
		"POST " + constants.AccessLogsIPBanPath: map[string]interface{}{
			"description": "Ban an IP address, synthesizing a reason from detection factors if none supplied",
			"auth":        "Bearer JWT",
			"body": map[string]interface{}{
				"reason":    "string - optional explicit ban reason",
				"expiresAt": "RFC3339 timestamp - optional; omitted means a permanent ban",
			},
		},
	}

	utils.JSON(w, http.StatusOK, routes)
}
