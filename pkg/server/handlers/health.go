package handlers

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kgraph-io/kgraph"
)

// Build information - can be set at build time using ldflags
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildTime = "unknown"
	GoVersion = runtime.Version()
)

// HealthHandler handles health check requests
type HealthHandler struct {
	graph *kgraph.Graph
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(g *kgraph.Graph) *HealthHandler {
	return &HealthHandler{graph: g}
}

// HealthCheck handles GET /health - basic liveness check
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "kgraph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   Version,
	})
}

// LivenessCheck handles GET /live - Kubernetes liveness probe endpoint
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"service":   "kgraph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadinessCheck handles GET /ready. The graph is embedded, so
// readiness reduces to the graph handle existing and answering a
// statistics call.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if h.graph == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not_ready",
			"error":  "graph not initialized",
		})
		return
	}

	start := time.Now()
	stats := h.graph.Statistics()

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"service":   "kgraph",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"checks": gin.H{
			"store": gin.H{
				"status":    "healthy",
				"duration":  time.Since(start).String(),
				"entities":  stats.Entities.Total,
				"relations": stats.Relations.Total,
			},
		},
	})
}

// DetailedHealthCheck handles GET /health/detailed
func (h *HealthHandler) DetailedHealthCheck(c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	response := gin.H{
		"status":  "healthy",
		"service": "kgraph",
		"version": Version,
		"build_info": gin.H{
			"git_commit": GitCommit,
			"build_time": BuildTime,
		},
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"environment": gin.H{
			"go_version": GoVersion,
		},
		"system": gin.H{
			"goroutines":   runtime.NumGoroutine(),
			"heap_objects": m.HeapObjects,
			"gc_cycles":    m.NumGC,
		},
	}

	if h.graph != nil {
		stats := h.graph.Statistics()
		response["graph"] = gin.H{
			"entities":  stats.Entities.Total,
			"relations": stats.Relations.Total,
			"queries":   stats.Queries.Total,
			"insights":  stats.Insights.Total,
		}
	} else {
		response["status"] = "unhealthy"
		c.JSON(http.StatusServiceUnavailable, response)
		return
	}

	c.JSON(http.StatusOK, response)
}
