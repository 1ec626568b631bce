package types

import (
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"time"
)

// Validation and lookup errors
var (
	ErrEmptyName     = errors.New("name cannot be empty")
	ErrEmptyType     = errors.New("type cannot be empty")
	ErrEmptySourceID = errors.New("source id cannot be empty")
	ErrEmptyTargetID = errors.New("target id cannot be empty")
)

// QueryKind classifies a query audit record.
type QueryKind string

const (
	// EntityQuery records an entity filter scan.
	EntityQuery QueryKind = "entity"
	// RelationQuery records a relation filter scan.
	RelationQuery QueryKind = "relation"
	// PathQuery records a path search.
	PathQuery QueryKind = "path"
)

// InsightKind classifies an insight produced by analytics.
type InsightKind string

const (
	PatternInsight        InsightKind = "pattern"
	AnomalyInsight        InsightKind = "anomaly"
	TrendInsight          InsightKind = "trend"
	RecommendationInsight InsightKind = "recommendation"
)

// Entity is a typed, named knowledge node. Its ID is a pure function
// of (Name, Type), so upserts with the same pair always resolve to the
// same record.
type Entity struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
	Confidence float64    `json:"confidence"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Source     string     `json:"source"`
}

// Relation is a typed directed edge between two entity IDs. Endpoints
// are not validated against the entity collection: a relation may
// forward-declare entities that have not been upserted yet.
type Relation struct {
	ID         string     `json:"id"`
	SourceID   string     `json:"source_id"`
	TargetID   string     `json:"target_id"`
	Type       string     `json:"type"`
	Properties Properties `json:"properties"`
	Confidence float64    `json:"confidence"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
	Source     string     `json:"source"`
}

// Query is an append-only audit record of a read operation. It is not
// used for correctness.
type Query struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Kind       QueryKind  `json:"kind"`
	Parameters Properties `json:"parameters"`
	Timestamp  time.Time  `json:"timestamp"`
}

// Insight is an append-only analytics finding.
type Insight struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Kind        InsightKind `json:"kind"`
	Confidence  float64     `json:"confidence"`
	Evidence    []string    `json:"evidence"`
	CreatedAt   time.Time   `json:"created_at"`
}

// EntityID derives the deterministic identifier for (name, type):
// the first 16 hex characters of md5("name_type"). Re-deriving from
// the same inputs always yields the same id across processes.
func EntityID(name, entityType string) string {
	return shortHash(name + "_" + entityType)
}

// RelationID derives the deterministic identifier for
// (sourceID, relationType, targetID).
func RelationID(sourceID, relationType, targetID string) string {
	return shortHash(sourceID + "_" + relationType + "_" + targetID)
}

func shortHash(s string) string {
	sum := md5.Sum([]byte(s))
	return hex.EncodeToString(sum[:])[:16]
}

// Merge applies an upsert with matching identity: properties are
// unioned (incoming wins), confidence becomes the maximum of old and
// new, UpdatedAt advances to now. CreatedAt and the original Source
// are preserved.
// Incoming properties are cloned, so the merged record never aliases
// maps still held by the caller.
func (e *Entity) Merge(properties Properties, confidence float64, now time.Time) {
	e.Properties = e.Properties.Merge(properties.Clone())
	if confidence > e.Confidence {
		e.Confidence = confidence
	}
	e.UpdatedAt = now
}

// Merge applies the same contract as Entity.Merge to a relation.
func (r *Relation) Merge(properties Properties, confidence float64, now time.Time) {
	r.Properties = r.Properties.Merge(properties.Clone())
	if confidence > r.Confidence {
		r.Confidence = confidence
	}
	r.UpdatedAt = now
}

// Clone returns an independent copy of the entity, including a deep
// copy of its property map.
func (e *Entity) Clone() *Entity {
	out := *e
	out.Properties = e.Properties.Clone()
	return &out
}

// Clone returns an independent copy of the relation, including a deep
// copy of its property map.
func (r *Relation) Clone() *Relation {
	out := *r
	out.Properties = r.Properties.Clone()
	return &out
}

// Validate checks the fields that identity derivation depends on.
func (e *Entity) Validate() error {
	if e.Name == "" {
		return ErrEmptyName
	}
	if e.Type == "" {
		return ErrEmptyType
	}
	return nil
}

// Validate checks the fields that identity derivation depends on.
func (r *Relation) Validate() error {
	if r.SourceID == "" {
		return ErrEmptySourceID
	}
	if r.TargetID == "" {
		return ErrEmptyTargetID
	}
	if r.Type == "" {
		return ErrEmptyType
	}
	return nil
}

// Path is an alternating sequence of entity ids and relation types,
// beginning at the search source and ending at the target:
// [sourceID, relType, id, relType, ..., targetID].
type Path []string

// Hops returns the number of relation hops in the path.
func (p Path) Hops() int {
	if len(p) < 3 {
		return 0
	}
	return (len(p) - 1) / 2
}

// String renders the path in "a -uses-> b" form.
func (p Path) String() string {
	if len(p) == 0 {
		return ""
	}
	out := p[0]
	for i := 1; i+1 < len(p); i += 2 {
		out += fmt.Sprintf(" -%s-> %s", p[i], p[i+1])
	}
	return out
}

// Recommendation is a suggested relation between two entities.
type Recommendation struct {
	SourceID   string  `json:"source_id"`
	TargetID   string  `json:"target_id"`
	Type       string  `json:"type"`
	Confidence float64 `json:"confidence"`
	Reason     string  `json:"reason"`
}

// Statistics aggregates the current state of all four collections.
type Statistics struct {
	Entities     EntityStats     `json:"entities"`
	Relations    RelationStats   `json:"relations"`
	Connectivity Connectivity    `json:"connectivity"`
	Queries      CollectionStats `json:"queries"`
	Insights     CollectionStats `json:"insights"`
}

// EntityStats summarizes the entity collection.
type EntityStats struct {
	Total         int            `json:"total"`
	Types         map[string]int `json:"types"`
	AvgConfidence float64        `json:"avg_confidence"`
}

// RelationStats summarizes the relation collection.
type RelationStats struct {
	Total         int            `json:"total"`
	Types         map[string]int `json:"types"`
	AvgConfidence float64        `json:"avg_confidence"`
}

// Connectivity summarizes node degree across relation endpoints.
type Connectivity struct {
	AvgDegree      float64 `json:"avg_degree"`
	MaxDegree      int     `json:"max_degree"`
	ConnectedNodes int     `json:"connected_nodes"`
}

// CollectionStats summarizes an append-only collection with a recent
// activity window (24h for queries, 7d for insights).
type CollectionStats struct {
	Total  int `json:"total"`
	Recent int `json:"recent"`
}
