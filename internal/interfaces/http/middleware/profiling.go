package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/obra/backend/internal/infrastructure/telemetry"
)

// ProfilingConfig holds configuration for the profiling middleware.
type ProfilingConfig struct {
	Enabled          bool
	SkipPaths        []string
	SkipPathPrefixes []string
}

// DefaultProfilingConfig returns default profiling middleware configuration.
func DefaultProfilingConfig() ProfilingConfig {
	return ProfilingConfig{
		Enabled:   true,
		SkipPaths: []string{"/health", "/system/ping"},
	}
}

// Profiling returns profiling middleware with default configuration.
func Profiling() gin.HandlerFunc {
	return ProfilingWithConfig(DefaultProfilingConfig())
}

// ProfilingWithConfig labels CPU samples taken while a request runs with
// "<METHOD> <route pattern>", so a slow PDF export can be told apart from
// a JSON read in the flame graph.
func ProfilingWithConfig(cfg ProfilingConfig) gin.HandlerFunc {
	if !cfg.Enabled {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		path := c.Request.URL.Path
		if shouldSkipProfiling(path, cfg) {
			c.Next()
			return
		}

		telemetry.WithOperationLabel(c.Request.Context(), profilingOperation(c), func(ctx context.Context) {
			c.Request = c.Request.WithContext(ctx)
			c.Next()
		})
	}
}

func shouldSkipProfiling(path string, cfg ProfilingConfig) bool {
	for _, p := range cfg.SkipPaths {
		if path == p {
			return true
		}
	}
	for _, prefix := range cfg.SkipPathPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// profilingOperation is empty for unmatched routes, which leaves them unlabelled
func profilingOperation(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		return ""
	}
	return c.Request.Method + " " + route
}
