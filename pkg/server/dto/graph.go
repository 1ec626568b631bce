// Package dto holds the request and response shapes of the HTTP API.
package dto

import (
	"errors"
	"strings"

	"github.com/kgraph-io/kgraph/pkg/types"
)

// MaxNameLength bounds entity names accepted over the API.
const MaxNameLength = 512

// ErrNameTooLong is returned when an entity name exceeds MaxNameLength.
var ErrNameTooLong = errors.New("name exceeds maximum length")

// UpsertEntityRequest adds or merges an entity.
type UpsertEntityRequest struct {
	Name       string           `json:"name" binding:"required"`
	Type       string           `json:"type" binding:"required"`
	Properties types.Properties `json:"properties,omitempty"`
	Confidence float64          `json:"confidence"`
	Source     string           `json:"source"`
}

// Validate performs validation on UpsertEntityRequest
func (r *UpsertEntityRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return errors.New("name cannot be empty")
	}
	if len(r.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if strings.TrimSpace(r.Type) == "" {
		return errors.New("type cannot be empty")
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return errors.New("confidence must be in [0, 1]")
	}
	return nil
}

// UpsertRelationRequest adds or merges a relation.
type UpsertRelationRequest struct {
	SourceID   string           `json:"source_id" binding:"required"`
	TargetID   string           `json:"target_id" binding:"required"`
	Type       string           `json:"type" binding:"required"`
	Properties types.Properties `json:"properties,omitempty"`
	Confidence float64          `json:"confidence"`
	Source     string           `json:"source"`
}

// Validate performs validation on UpsertRelationRequest
func (r *UpsertRelationRequest) Validate() error {
	if strings.TrimSpace(r.SourceID) == "" {
		return errors.New("source_id cannot be empty")
	}
	if strings.TrimSpace(r.TargetID) == "" {
		return errors.New("target_id cannot be empty")
	}
	if strings.TrimSpace(r.Type) == "" {
		return errors.New("type cannot be empty")
	}
	if r.Confidence < 0 || r.Confidence > 1 {
		return errors.New("confidence must be in [0, 1]")
	}
	return nil
}

// UpsertResponse carries the deterministic id of an upserted record.
type UpsertResponse struct {
	ID string `json:"id"`
}

// PathRequest searches for directed paths between two entities.
type PathRequest struct {
	SourceID string `json:"source_id" binding:"required"`
	TargetID string `json:"target_id" binding:"required"`
	MaxDepth int    `json:"max_depth"`
}

// PathResponse lists the discovered paths.
type PathResponse struct {
	Paths []types.Path `json:"paths"`
	Count int          `json:"count"`
}

// InferRequest runs transitive inference for one relation type.
type InferRequest struct {
	RelationType string `json:"relation_type" binding:"required"`
}

// SimilarRequest scores entities against one entity.
type SimilarRequest struct {
	EntityID  string  `json:"entity_id" binding:"required"`
	Threshold float64 `json:"threshold"`
}

// RecommendRequest asks for relation suggestions for one entity.
type RecommendRequest struct {
	EntityID   string `json:"entity_id" binding:"required"`
	MaxResults int    `json:"max_results"`
}

// ExtractRequest submits raw content for entity extraction.
type ExtractRequest struct {
	Kind    string `json:"kind" binding:"required"` // code, text, or error
	Content string `json:"content" binding:"required"`
}

// ValidExtractKinds defines acceptable extraction kinds
var ValidExtractKinds = map[string]bool{
	"code":  true,
	"text":  true,
	"error": true,
}

// Validate performs validation on ExtractRequest
func (r *ExtractRequest) Validate() error {
	if !ValidExtractKinds[strings.ToLower(r.Kind)] {
		return errors.New("invalid kind: must be code, text, or error")
	}
	if strings.TrimSpace(r.Content) == "" {
		return errors.New("content cannot be empty")
	}
	return nil
}

// ExtractResponse lists the upserted entity ids.
type ExtractResponse struct {
	EntityIDs []string `json:"entity_ids"`
	Count     int      `json:"count"`
}

// ExportRequest selects an export format.
type ExportRequest struct {
	Format string `json:"format" binding:"required"`
}

// ExportResponse reports the path the export was written to.
type ExportResponse struct {
	Path   string `json:"path"`
	Format string `json:"format"`
}

// CleanupRequest removes old query and insight records. A nil Days
// uses the server's configured retention; zero purges both collections
// immediately.
type CleanupRequest struct {
	Days *int `json:"days"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}
