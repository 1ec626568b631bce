package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kgraph-io/kgraph"
	"github.com/kgraph-io/kgraph/pkg/server/dto"
)

// ReasonHandler handles inference and recommendation requests
type ReasonHandler struct {
	graph *kgraph.Graph
}

// NewReasonHandler creates a new reason handler
func NewReasonHandler(g *kgraph.Graph) *ReasonHandler {
	return &ReasonHandler{graph: g}
}

// InferTransitive handles POST /api/v1/reason/transitive
func (h *ReasonHandler) InferTransitive(c *gin.Context) {
	var req dto.InferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	pairs, err := h.graph.InferTransitiveRelations(req.RelationType)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "inference_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"inferred": pairs, "count": len(pairs)})
}

// FindSimilar handles POST /api/v1/reason/similar
func (h *ReasonHandler) FindSimilar(c *gin.Context) {
	var req dto.SimilarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	ids, err := h.graph.FindSimilarEntities(req.EntityID, req.Threshold)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "similarity_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"similar": ids, "count": len(ids)})
}

// Recommend handles POST /api/v1/reason/recommend
func (h *ReasonHandler) Recommend(c *gin.Context) {
	var req dto.RecommendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	recommendations, err := h.graph.RecommendRelations(req.EntityID, req.MaxResults)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "recommendation_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recommendations, "count": len(recommendations)})
}
