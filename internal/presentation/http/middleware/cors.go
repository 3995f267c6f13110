package middleware

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/tableorder-api/internal/config"
)

// headers the ordering clients always send
var requiredHeaders = []string{"Authorization", "Content-Type", IdempotencyKeyHeader, "X-Request-ID"}

// CORSMiddleware creates a CORS middleware with the provided configuration
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowOrigins: cfg.AllowedOrigins,
		AllowMethods: cfg.AllowedMethods,
		AllowHeaders: withRequired(cfg.AllowedHeaders),
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
			"X-Idempotency-Replayed",
			"X-RateLimit-Remaining",
			"Retry-After",
		},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	// Local table tablets and the admin dashboard during development
	if len(corsConfig.AllowOrigins) == 0 {
		corsConfig.AllowOrigins = []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
		}
	}

	if len(corsConfig.AllowMethods) == 0 {
		corsConfig.AllowMethods = []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodPatch,
			http.MethodDelete,
			http.MethodOptions,
		}
	}

	return cors.New(corsConfig)
}

func withRequired(headers []string) []string {
	result := append([]string{"Accept", "Origin"}, headers...)
	for _, required := range requiredHeaders {
		found := false
		for _, h := range headers {
			if http.CanonicalHeaderKey(h) == http.CanonicalHeaderKey(required) {
				found = true
				break
			}
		}
		if !found {
			result = append(result, required)
		}
	}
	return result
}
