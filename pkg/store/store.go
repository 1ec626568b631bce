// Package store owns the authoritative in-memory state of the
// knowledge graph: the entity and relation maps keyed by deterministic
// id, plus the append-only query and insight collections.
//
// All mutation funnels through a single mutex so concurrent upserts to
// the same identity cannot race on the read-merge-write cycle. Merges
// replace the stored record with a merged copy instead of mutating it
// in place, so a record pointer handed out by an accessor is a stable
// snapshot: it never changes under a later upsert and a reader never
// observes a partially merged record. Iteration order over entities
// and relations is insertion order, maintained explicitly; query
// engines rely on it for tie-breaking and it is covered by tests.
package store

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/kgraph-io/kgraph/pkg/types"
)

// Flusher mirrors the in-memory state to durable storage. Flush is
// invoked under the store's write lock at least once per logical
// mutation, before the mutating call returns.
type Flusher interface {
	Flush(snapshot types.Snapshot) error
}

// FlusherFunc adapts a function to the Flusher interface.
type FlusherFunc func(types.Snapshot) error

// Flush implements Flusher.
func (f FlusherFunc) Flush(s types.Snapshot) error { return f(s) }

// Store holds the four collections. Entities and relations are never
// hard-deleted; queries and insights are subject to age-based
// retention via Cleanup.
type Store struct {
	mu sync.RWMutex

	entities  map[string]*types.Entity
	relations map[string]*types.Relation

	// Insertion order of map keys; the documented iteration order.
	entityOrder   []string
	relationOrder []string

	queries  []*types.Query
	insights []*types.Insight

	flusher Flusher
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New creates an empty store that mirrors every mutation through
// flusher. A nil flusher disables persistence (useful for tests and
// ephemeral graphs); a nil logger falls back to slog.Default().
func New(flusher Flusher, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		entities:  make(map[string]*types.Entity),
		relations: make(map[string]*types.Relation),
		flusher:   flusher,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UpsertEntity computes the deterministic id for (name, entityType)
// and either creates the entity or replaces the existing record with a
// merged copy: property union with incoming keys winning, max
// confidence, advanced update timestamp. Confidence is accepted as
// given, not clamped. The mutation is flushed before returning.
func (s *Store) UpsertEntity(name, entityType string, properties types.Properties, confidence float64, source string) (string, error) {
	id := types.EntityID(name, entityType)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.entities[id]; ok {
		merged := existing.Clone()
		merged.Merge(properties, confidence, now)
		s.entities[id] = merged
	} else {
		s.entities[id] = &types.Entity{
			ID:         id,
			Name:       name,
			Type:       entityType,
			Properties: properties.Clone(),
			Confidence: confidence,
			CreatedAt:  now,
			UpdatedAt:  now,
			Source:     source,
		}
		s.entityOrder = append(s.entityOrder, id)
	}

	if err := s.flushLocked(); err != nil {
		return id, err
	}
	s.logger.Debug("upserted entity", "id", id, "name", name, "type", entityType)
	return id, nil
}

// UpsertRelation is the relation counterpart of UpsertEntity, keyed on
// (sourceID, relationType, targetID). Endpoints are not checked
// against the entity collection; dangling references are allowed as
// forward declarations.
func (s *Store) UpsertRelation(sourceID, targetID, relationType string, properties types.Properties, confidence float64, source string) (string, error) {
	id := types.RelationID(sourceID, relationType, targetID)
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.relations[id]; ok {
		merged := existing.Clone()
		merged.Merge(properties, confidence, now)
		s.relations[id] = merged
	} else {
		s.relations[id] = &types.Relation{
			ID:         id,
			SourceID:   sourceID,
			TargetID:   targetID,
			Type:       relationType,
			Properties: properties.Clone(),
			Confidence: confidence,
			CreatedAt:  now,
			UpdatedAt:  now,
			Source:     source,
		}
		s.relationOrder = append(s.relationOrder, id)
	}

	if err := s.flushLocked(); err != nil {
		return id, err
	}
	s.logger.Debug("upserted relation", "id", id, "source", sourceID, "type", relationType, "target", targetID)
	return id, nil
}

// Entity returns the entity with the given id, or nil.
func (s *Store) Entity(id string) *types.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entities[id]
}

// Relation returns the relation with the given id, or nil.
func (s *Store) Relation(id string) *types.Relation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.relations[id]
}

// Entities returns all entities in insertion order.
func (s *Store) Entities() []*types.Entity {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entitiesLocked()
}

// Relations returns all relations in insertion order.
func (s *Store) Relations() []*types.Relation {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.relationsLocked()
}

// Queries returns the query audit trail, oldest first.
func (s *Store) Queries() []*types.Query {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.Query, len(s.queries))
	copy(out, s.queries)
	return out
}

// Insights returns all insights, oldest first.
func (s *Store) Insights() []*types.Insight {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*types.Insight, len(s.insights))
	copy(out, s.insights)
	return out
}

// AppendQuery records a query audit entry and flushes.
func (s *Store) AppendQuery(q *types.Query) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, q)
	return s.flushLocked()
}

// AppendInsights records analytics findings and flushes once.
func (s *Store) AppendInsights(insights []*types.Insight) error {
	if len(insights) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.insights = append(s.insights, insights...)
	return s.flushLocked()
}

// CleanupResult reports what a retention sweep removed and kept.
type CleanupResult struct {
	CleanedQueries    int `json:"cleaned_queries"`
	CleanedInsights   int `json:"cleaned_insights"`
	RemainingQueries  int `json:"remaining_queries"`
	RemainingInsights int `json:"remaining_insights"`
}

// Cleanup removes query and insight records strictly older than
// now-days. Entities and relations are never touched by retention.
func (s *Store) Cleanup(days int) (CleanupResult, error) {
	cutoff := s.now().AddDate(0, 0, -days)

	s.mu.Lock()
	defer s.mu.Unlock()

	keptQueries := s.queries[:0]
	cleanedQueries := 0
	for _, q := range s.queries {
		if q.Timestamp.Before(cutoff) {
			cleanedQueries++
			continue
		}
		keptQueries = append(keptQueries, q)
	}
	s.queries = keptQueries

	keptInsights := s.insights[:0]
	cleanedInsights := 0
	for _, in := range s.insights {
		if in.CreatedAt.Before(cutoff) {
			cleanedInsights++
			continue
		}
		keptInsights = append(keptInsights, in)
	}
	s.insights = keptInsights

	result := CleanupResult{
		CleanedQueries:    cleanedQueries,
		CleanedInsights:   cleanedInsights,
		RemainingQueries:  len(s.queries),
		RemainingInsights: len(s.insights),
	}
	if err := s.flushLocked(); err != nil {
		return result, err
	}
	s.logger.Info("retention sweep", "cleaned_queries", cleanedQueries, "cleaned_insights", cleanedInsights)
	return result, nil
}

// Snapshot copies the current state of all four collections.
func (s *Store) Snapshot() types.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Restore replaces the in-memory state with a loaded snapshot. It does
// not flush: restore runs at startup, before any mutation.
func (s *Store) Restore(snapshot types.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entities = make(map[string]*types.Entity, len(snapshot.Entities))
	s.entityOrder = s.entityOrder[:0]
	for _, e := range snapshot.Entities {
		if _, ok := s.entities[e.ID]; ok {
			return fmt.Errorf("duplicate entity id %q in snapshot", e.ID)
		}
		s.entities[e.ID] = e
		s.entityOrder = append(s.entityOrder, e.ID)
	}

	s.relations = make(map[string]*types.Relation, len(snapshot.Relations))
	s.relationOrder = s.relationOrder[:0]
	for _, r := range snapshot.Relations {
		if _, ok := s.relations[r.ID]; ok {
			return fmt.Errorf("duplicate relation id %q in snapshot", r.ID)
		}
		s.relations[r.ID] = r
		s.relationOrder = append(s.relationOrder, r.ID)
	}

	s.queries = append(s.queries[:0], snapshot.Queries...)
	s.insights = append(s.insights[:0], snapshot.Insights...)
	return nil
}

func (s *Store) entitiesLocked() []*types.Entity {
	out := make([]*types.Entity, 0, len(s.entityOrder))
	for _, id := range s.entityOrder {
		out = append(out, s.entities[id])
	}
	return out
}

func (s *Store) relationsLocked() []*types.Relation {
	out := make([]*types.Relation, 0, len(s.relationOrder))
	for _, id := range s.relationOrder {
		out = append(out, s.relations[id])
	}
	return out
}

func (s *Store) snapshotLocked() types.Snapshot {
	snapshot := types.Snapshot{
		Entities:  s.entitiesLocked(),
		Relations: s.relationsLocked(),
		Queries:   make([]*types.Query, len(s.queries)),
		Insights:  make([]*types.Insight, len(s.insights)),
	}
	copy(snapshot.Queries, s.queries)
	copy(snapshot.Insights, s.insights)
	return snapshot
}

func (s *Store) flushLocked() error {
	if s.flusher == nil {
		return nil
	}
	if err := s.flusher.Flush(s.snapshotLocked()); err != nil {
		s.logger.Error("flush failed", "error", err)
		return fmt.Errorf("flush: %w", err)
	}
	return nil
}
