package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/kgraph-io/kgraph"
	"github.com/kgraph-io/kgraph/pkg/query"
	"github.com/kgraph-io/kgraph/pkg/server/dto"
)

// GraphHandler handles entity and relation requests
type GraphHandler struct {
	graph *kgraph.Graph
}

// NewGraphHandler creates a new graph handler
func NewGraphHandler(g *kgraph.Graph) *GraphHandler {
	return &GraphHandler{graph: g}
}

// UpsertEntity handles POST /api/v1/entities
func (h *GraphHandler) UpsertEntity(c *gin.Context) {
	var req dto.UpsertEntityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	id, err := h.graph.UpsertEntity(req.Name, req.Type, req.Properties, req.Confidence, req.Source)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "upsert_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.UpsertResponse{ID: id})
}

// UpsertRelation handles POST /api/v1/relations
func (h *GraphHandler) UpsertRelation(c *gin.Context) {
	var req dto.UpsertRelationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	id, err := h.graph.UpsertRelation(req.SourceID, req.TargetID, req.Type, req.Properties, req.Confidence, req.Source)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "upsert_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.UpsertResponse{ID: id})
}

// GetEntity handles GET /api/v1/entities/:id
func (h *GraphHandler) GetEntity(c *gin.Context) {
	entity := h.graph.Entity(c.Param("id"))
	if entity == nil {
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: "not_found", Message: "entity not found"})
		return
	}
	c.JSON(http.StatusOK, entity)
}

// QueryEntities handles GET /api/v1/entities with filter query params.
func (h *GraphHandler) QueryEntities(c *gin.Context) {
	filter := query.EntityFilter{
		Type:        c.Query("type"),
		NamePattern: c.Query("name_pattern"),
	}
	if raw := c.Query("min_confidence"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "min_confidence must be a number"})
			return
		}
		filter.MinConfidence = parsed
	}

	entities, err := h.graph.QueryEntities(filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "query_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"entities": entities, "count": len(entities)})
}

// QueryRelations handles GET /api/v1/relations with filter query params.
func (h *GraphHandler) QueryRelations(c *gin.Context) {
	filter := query.RelationFilter{
		SourceID: c.Query("source_id"),
		TargetID: c.Query("target_id"),
		Type:     c.Query("type"),
	}
	if raw := c.Query("min_confidence"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: "min_confidence must be a number"})
			return
		}
		filter.MinConfidence = parsed
	}

	relations, err := h.graph.QueryRelations(filter)
	if err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "query_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"relations": relations, "count": len(relations)})
}

// FindPaths handles POST /api/v1/paths
func (h *GraphHandler) FindPaths(c *gin.Context) {
	var req dto.PathRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid_request", Message: err.Error()})
		return
	}

	paths, err := h.graph.FindPaths(req.SourceID, req.TargetID, req.MaxDepth)
	if err != nil {
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "path_search_failed", Message: err.Error()})
		return
	}
	c.JSON(http.StatusOK, dto.PathResponse{Paths: paths, Count: len(paths)})
}
