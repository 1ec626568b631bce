package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/kgraph-io/kgraph"
	"github.com/kgraph-io/kgraph/pkg/server/dto"
)

// AdminHandler handles analytics, export, cleanup, and extraction
// requests
type AdminHandler struct {
	graph *kgraph.Graph
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(g *kgraph.Graph) *AdminHandler {
	return &AdminHandler{graph: g}
}

// Analyze handles POST /api/v1/analyze
func (h *AdminHandler) Analyze(c *gin.Context) {
	insights, err := h.graph.AnalyzePatterns()
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "analysis_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"insights": insights, "count": len(insights)})
}

// Statistics handles GET /api/v1/statistics
func (h *AdminHandler) Statistics(c *gin.Context) {
	c.JSON(http.StatusOK, h.graph.Statistics())
}

// Insights handles GET /api/v1/insights
func (h *AdminHandler) Insights(c *gin.Context) {
	insights := h.graph.Insights()
	c.JSON(http.StatusOK, gin.H{"insights": insights, "count": len(insights)})
}

// Export handles POST /api/v1/export
func (h *AdminHandler) Export(c *gin.Context) {
	var req dto.ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	path, err := h.graph.Export(req.Format)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "export_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.ExportResponse{Path: path, Format: req.Format})
}

// Cleanup handles POST /api/v1/cleanup
func (h *AdminHandler) Cleanup(c *gin.Context) {
	var req dto.CleanupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	days := -1
	if req.Days != nil {
		days = *req.Days
	}
	result, err := h.graph.Cleanup(days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "cleanup_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

// Extract handles POST /api/v1/extract
func (h *AdminHandler) Extract(c *gin.Context) {
	var req dto.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	var ids []string
	var err error
	switch strings.ToLower(req.Kind) {
	case "code":
		ids, err = h.graph.ExtractFromCode(req.Content)
	case "text":
		ids, err = h.graph.ExtractFromText(req.Content)
	case "error":
		ids, err = h.graph.ExtractFromError(req.Content)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "extraction_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.ExtractResponse{EntityIDs: ids, Count: len(ids)})
}
