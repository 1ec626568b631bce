// Package reason derives new knowledge from the graph: transitive
// relation inference, entity similarity scoring, and relation
// recommendation heuristics.
//
// Inferred relations are written back through the store's upsert
// contract with the provenance source "reasoning", so they carry the
// same identity and merge semantics as any other relation.
package reason

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/kgraph-io/kgraph/pkg/store"
	"github.com/kgraph-io/kgraph/pkg/types"
)

const (
	// transitiveConfidence is the fixed confidence assigned to every
	// inferred transitive relation.
	transitiveConfidence = 0.6
	// similarityWeightType, similarityWeightName, and
	// similarityWeightProps are the fixed term weights of the
	// similarity score. They sum to 1.0.
	similarityWeightType  = 0.3
	similarityWeightName  = 0.4
	similarityWeightProps = 0.3
	// recommendationFloor drops recommendations at or below this
	// confidence.
	recommendationFloor = 0.5
	// defaultCompat is the base confidence for a type triple absent
	// from the compatibility table.
	defaultCompat = 0.3

	// SimilarRelationType names the relation created between entities
	// that score above the similarity threshold.
	SimilarRelationType = "similar_to"
	// ReasoningSource tags relations created by this package.
	ReasoningSource = "reasoning"
)

// DefaultMaxRecommendations bounds RecommendRelations when the caller
// passes no explicit limit.
const DefaultMaxRecommendations = 5

// candidateRelationTypes maps an entity type to the relation types
// worth suggesting from it.
var candidateRelationTypes = map[string][]string{
	"function": {"uses", "implements", "calls"},
	"class":    {"extends", "implements", "contains"},
	"library":  {"provides", "depends_on"},
	"error":    {"caused_by", "related_to"},
	"file":     {"contains", "imports"},
}

// typeCompatibility scores known (source type, target type, relation
// type) triples; anything else falls back to defaultCompat.
var typeCompatibility = map[[3]string]float64{
	{"function", "library", "uses"}:   0.8,
	{"class", "class", "extends"}:     0.9,
	{"function", "function", "calls"}: 0.7,
	{"error", "file", "occurs_in"}:    0.8,
	{"file", "library", "imports"}:    0.8,
}

// Pair is a (source id, target id) tuple produced by inference.
type Pair struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
}

// Reasoner derives relations from the current graph state.
type Reasoner struct {
	store  *store.Store
	logger *slog.Logger
}

// New creates a reasoner over the given store.
func New(s *store.Store, logger *slog.Logger) *Reasoner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reasoner{store: s, logger: logger}
}

// InferTransitiveRelations performs exactly one generation of
// transitive closure for relationType: for every chain A->B->C with
// A != C and no existing direct A->C relation of that type, a new
// relation is upserted with confidence 0.6, properties marking it as
// inferred, and source "reasoning". It returns the pairs newly added.
//
// This is deliberately not a fixed-point computation; closing a chain
// of length N takes repeated calls. Callers that want full closure
// invoke it until it returns no new pairs.
func (r *Reasoner) InferTransitiveRelations(relationType string) ([]Pair, error) {
	adjacency := make(map[string][]string)
	var sources []string
	for _, rel := range r.store.Relations() {
		if rel.Type != relationType {
			continue
		}
		if _, seen := adjacency[rel.SourceID]; !seen {
			sources = append(sources, rel.SourceID)
		}
		adjacency[rel.SourceID] = append(adjacency[rel.SourceID], rel.TargetID)
	}

	var pairs []Pair
	queued := make(map[Pair]bool)
	for _, source := range sources {
		for _, intermediate := range adjacency[source] {
			for _, target := range adjacency[intermediate] {
				if target == source {
					continue
				}
				p := Pair{SourceID: source, TargetID: target}
				if queued[p] {
					continue
				}
				if r.relationExists(source, relationType, target) {
					continue
				}
				queued[p] = true
				pairs = append(pairs, p)
			}
		}
	}

	for _, p := range pairs {
		_, err := r.store.UpsertRelation(p.SourceID, p.TargetID, relationType, types.Properties{
			"inferred":       types.Bool(true),
			"inference_type": types.String("transitive"),
		}, transitiveConfidence, ReasoningSource)
		if err != nil {
			return nil, fmt.Errorf("persisting inferred relation %s-%s->%s: %w", p.SourceID, relationType, p.TargetID, err)
		}
	}

	if len(pairs) > 0 {
		r.logger.Info("inferred transitive relations", "type", relationType, "count", len(pairs))
	}
	return pairs, nil
}

// FindSimilarEntities scores every other entity against entityID and
// returns the ids meeting threshold, best first. For every qualifying
// pair without an existing "similar_to" relation, one is created with
// confidence equal to the similarity score. An unknown entityID yields
// an empty result.
func (r *Reasoner) FindSimilarEntities(entityID string, threshold float64) ([]string, error) {
	target := r.store.Entity(entityID)
	if target == nil {
		return nil, nil
	}

	type scored struct {
		id    string
		score float64
	}
	var candidates []scored
	for _, other := range r.store.Entities() {
		if other.ID == entityID {
			continue
		}
		score := Similarity(target, other)
		if score < threshold {
			continue
		}
		candidates = append(candidates, scored{id: other.ID, score: score})

		if !r.relationExists(entityID, SimilarRelationType, other.ID) {
			_, err := r.store.UpsertRelation(entityID, other.ID, SimilarRelationType, types.Properties{
				"similarity_score": types.Number(score),
				"inferred":         types.Bool(true),
			}, score, ReasoningSource)
			if err != nil {
				return nil, fmt.Errorf("persisting similarity relation: %w", err)
			}
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	ids := make([]string, len(candidates))
	for i, c := range candidates {
		ids[i] = c.id
	}
	return ids, nil
}

// RecommendRelations suggests up to maxResults relations from entityID
// to other entities, based on a static table of relation types per
// entity type and a confidence blend of type compatibility and entity
// similarity. Only suggestions with confidence above 0.5 are kept.
func (r *Reasoner) RecommendRelations(entityID string, maxResults int) ([]types.Recommendation, error) {
	if maxResults < 1 {
		maxResults = DefaultMaxRecommendations
	}
	entity := r.store.Entity(entityID)
	if entity == nil {
		return nil, nil
	}

	suggested := candidateRelationTypes[entity.Type]
	if len(suggested) == 0 {
		suggested = []string{"related_to"}
	}

	var recommendations []types.Recommendation
	for _, other := range r.store.Entities() {
		if other.ID == entityID {
			continue
		}
		for _, relationType := range suggested {
			if r.relationExists(entityID, relationType, other.ID) {
				continue
			}
			confidence := relationConfidence(entity, other, relationType)
			if confidence <= recommendationFloor {
				continue
			}
			recommendations = append(recommendations, types.Recommendation{
				SourceID:   entityID,
				TargetID:   other.ID,
				Type:       relationType,
				Confidence: confidence,
				Reason:     fmt.Sprintf("Based on entity types: %s -> %s", entity.Type, other.Type),
			})
		}
	}

	sort.SliceStable(recommendations, func(i, j int) bool {
		return recommendations[i].Confidence > recommendations[j].Confidence
	})
	if len(recommendations) > maxResults {
		recommendations = recommendations[:maxResults]
	}
	return recommendations, nil
}

// Similarity scores two entities in [0,1]: 0.3 for equal types, plus
// 0.4 times the Jaccard similarity of their lowercased
// whitespace-tokenized names, plus 0.3 times the Jaccard similarity of
// their property key sets. Each term is symmetric in its arguments, so
// Similarity(a, b) == Similarity(b, a).
func Similarity(a, b *types.Entity) float64 {
	score := 0.0
	if a.Type == b.Type {
		score += similarityWeightType
	}

	aTokens := tokenSet(a.Name)
	bTokens := tokenSet(b.Name)
	if len(aTokens) > 0 && len(bTokens) > 0 {
		score += similarityWeightName * jaccard(aTokens, bTokens)
	}

	aKeys := keySet(a.Properties)
	bKeys := keySet(b.Properties)
	if len(aKeys) > 0 && len(bKeys) > 0 {
		score += similarityWeightProps * jaccard(aKeys, bKeys)
	}

	if score > 1.0 {
		score = 1.0
	}
	return score
}

func relationConfidence(source, target *types.Entity, relationType string) float64 {
	confidence, ok := typeCompatibility[[3]string{source.Type, target.Type, relationType}]
	if !ok {
		confidence = defaultCompat
	}
	confidence += Similarity(source, target) * 0.2
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

func (r *Reasoner) relationExists(sourceID, relationType, targetID string) bool {
	return r.store.Relation(types.RelationID(sourceID, relationType, targetID)) != nil
}

func tokenSet(name string) map[string]bool {
	set := make(map[string]bool)
	for _, tok := range strings.Fields(strings.ToLower(name)) {
		set[tok] = true
	}
	return set
}

func keySet(p types.Properties) map[string]bool {
	set := make(map[string]bool, len(p))
	for k := range p {
		set[k] = true
	}
	return set
}

func jaccard(a, b map[string]bool) float64 {
	intersection := 0
	for k := range a {
		if b[k] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}
