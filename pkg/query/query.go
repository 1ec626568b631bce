// Package query implements the read side of the knowledge graph:
// filtered scans over entities and relations, and depth-bounded path
// search between two entities.
//
// Every call appends a Query record to the audit collection, so reads
// are not side-effect free with respect to the audit trail; they never
// mutate entity or relation data. Lookup misses return empty results,
// never errors.
package query

import (
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/kgraph-io/kgraph/pkg/store"
	"github.com/kgraph-io/kgraph/pkg/types"
)

// DefaultMaxDepth bounds path searches when the caller passes no
// explicit limit.
const DefaultMaxDepth = 3

// Engine runs filtered scans and path searches against a store.
type Engine struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

// NewEngine creates a query engine over the given store.
func NewEngine(s *store.Store, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{store: s, logger: logger, now: time.Now}
}

// EntityFilter selects entities. Zero-valued fields are ignored.
type EntityFilter struct {
	// Type matches entity type exactly when non-empty.
	Type string
	// NamePattern is a case-insensitive regular expression searched
	// against the entity name when non-empty.
	NamePattern string
	// MinConfidence is the inclusive confidence floor.
	MinConfidence float64
}

// RelationFilter selects relations. Zero-valued fields are ignored.
type RelationFilter struct {
	SourceID      string
	TargetID      string
	Type          string
	MinConfidence float64
}

// Entities scans the entity collection and returns matches ordered by
// confidence descending; ties keep store insertion order (the sort is
// stable over the store's documented iteration order).
func (e *Engine) Entities(f EntityFilter) ([]*types.Entity, error) {
	var nameRe *regexp.Regexp
	if f.NamePattern != "" {
		re, err := regexp.Compile("(?i)" + f.NamePattern)
		if err != nil {
			return nil, fmt.Errorf("invalid name pattern %q: %w", f.NamePattern, err)
		}
		nameRe = re
	}

	results := make([]*types.Entity, 0)
	for _, entity := range e.store.Entities() {
		if f.Type != "" && entity.Type != f.Type {
			continue
		}
		if nameRe != nil && !nameRe.MatchString(entity.Name) {
			continue
		}
		if entity.Confidence < f.MinConfidence {
			continue
		}
		results = append(results, entity)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})

	if err := e.record(types.EntityQuery,
		fmt.Sprintf("type=%s, pattern=%s, min_confidence=%g", f.Type, f.NamePattern, f.MinConfidence),
		types.Properties{
			"entity_type":    types.String(f.Type),
			"name_pattern":   types.String(f.NamePattern),
			"min_confidence": types.Number(f.MinConfidence),
		}); err != nil {
		return nil, err
	}
	return results, nil
}

// Relations scans the relation collection, with the same ordering
// contract as Entities.
func (e *Engine) Relations(f RelationFilter) ([]*types.Relation, error) {
	results := make([]*types.Relation, 0)
	for _, relation := range e.store.Relations() {
		if f.SourceID != "" && relation.SourceID != f.SourceID {
			continue
		}
		if f.TargetID != "" && relation.TargetID != f.TargetID {
			continue
		}
		if f.Type != "" && relation.Type != f.Type {
			continue
		}
		if relation.Confidence < f.MinConfidence {
			continue
		}
		results = append(results, relation)
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Confidence > results[j].Confidence
	})

	if err := e.record(types.RelationQuery,
		fmt.Sprintf("source=%s, target=%s, type=%s, min_confidence=%g", f.SourceID, f.TargetID, f.Type, f.MinConfidence),
		types.Properties{
			"source_id":      types.String(f.SourceID),
			"target_id":      types.String(f.TargetID),
			"relation_type":  types.String(f.Type),
			"min_confidence": types.Number(f.MinConfidence),
		}); err != nil {
		return nil, err
	}
	return results, nil
}

func (e *Engine) record(kind types.QueryKind, text string, params types.Properties) error {
	return e.store.AppendQuery(&types.Query{
		ID:         uuid.NewString(),
		Text:       text,
		Kind:       kind,
		Parameters: params,
		Timestamp:  e.now(),
	})
}
