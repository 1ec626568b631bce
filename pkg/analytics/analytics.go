// Package analytics computes distribution and degree-centrality
// statistics over the graph and turns the headline findings into
// Insight records.
//
// The insight confidences (0.9 for distribution leaders, 0.8 for the
// degree leader) are fixed heuristic constants kept for compatibility
// with previously persisted insights, not statistically derived
// values.
package analytics

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/kgraph-io/kgraph/pkg/store"
	"github.com/kgraph-io/kgraph/pkg/types"
)

const (
	distributionConfidence = 0.9
	connectivityConfidence = 0.8
)

// Engine produces insights and aggregate statistics from a store.
type Engine struct {
	store  *store.Store
	logger *slog.Logger
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an analytics engine over the given store.
func New(s *store.Store, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{store: s, logger: logger, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AnalyzePatterns inspects the current distributions and connectivity
// and appends one insight per finding: the most frequent entity type,
// the most frequent relation type, and the highest-degree entity. The
// degree insight is only produced when the leading node id resolves to
// a known entity; a dangling endpoint can lead the degree count
// without being reportable. The insights are persisted before
// returning.
func (e *Engine) AnalyzePatterns() ([]*types.Insight, error) {
	entities := e.store.Entities()
	relations := e.store.Relations()
	now := e.now()

	var insights []*types.Insight

	entityTypes := make(map[string]int)
	for _, entity := range entities {
		entityTypes[entity.Type]++
	}
	if topType, count := leader(entityTypes); count > 0 {
		insights = append(insights, &types.Insight{
			ID:    uuid.NewString(),
			Title: "Entity type distribution",
			Description: fmt.Sprintf("The most frequent entity type is %q at %.1f%% of all entities",
				topType, float64(count)/float64(len(entities))*100),
			Kind:       types.PatternInsight,
			Confidence: distributionConfidence,
			Evidence:   []string{fmt.Sprintf("entity type counts: %v", entityTypes)},
			CreatedAt:  now,
		})
	}

	relationTypes := make(map[string]int)
	for _, relation := range relations {
		relationTypes[relation.Type]++
	}
	if topType, count := leader(relationTypes); count > 0 {
		insights = append(insights, &types.Insight{
			ID:    uuid.NewString(),
			Title: "Relation type distribution",
			Description: fmt.Sprintf("The most frequent relation type is %q at %.1f%% of all relations",
				topType, float64(count)/float64(len(relations))*100),
			Kind:       types.PatternInsight,
			Confidence: distributionConfidence,
			Evidence:   []string{fmt.Sprintf("relation type counts: %v", relationTypes)},
			CreatedAt:  now,
		})
	}

	degrees := nodeDegrees(relations)
	if topNode, degree := leader(degrees); degree > 0 {
		if entity := e.store.Entity(topNode); entity != nil {
			insights = append(insights, &types.Insight{
				ID:    uuid.NewString(),
				Title: "Connectivity",
				Description: fmt.Sprintf("%q is the most connected entity with %d relations",
					entity.Name, degree),
				Kind:       types.PatternInsight,
				Confidence: connectivityConfidence,
				Evidence:   []string{fmt.Sprintf("node degrees: %v", degrees)},
				CreatedAt:  now,
			})
		}
	}

	if err := e.store.AppendInsights(insights); err != nil {
		return nil, err
	}
	e.logger.Info("analyzed graph patterns", "insights", len(insights))
	return insights, nil
}

// Statistics aggregates totals, type histograms, average confidences,
// degree statistics, and recent audit activity (queries in the
// trailing 24 hours, insights in the trailing 7 days).
func (e *Engine) Statistics() types.Statistics {
	snapshot := e.store.Snapshot()
	now := e.now()

	stats := types.Statistics{
		Entities: types.EntityStats{
			Total: len(snapshot.Entities),
			Types: make(map[string]int),
		},
		Relations: types.RelationStats{
			Total: len(snapshot.Relations),
			Types: make(map[string]int),
		},
	}

	confidenceSum := 0.0
	for _, entity := range snapshot.Entities {
		stats.Entities.Types[entity.Type]++
		confidenceSum += entity.Confidence
	}
	if len(snapshot.Entities) > 0 {
		stats.Entities.AvgConfidence = round3(confidenceSum / float64(len(snapshot.Entities)))
	}

	confidenceSum = 0.0
	for _, relation := range snapshot.Relations {
		stats.Relations.Types[relation.Type]++
		confidenceSum += relation.Confidence
	}
	if len(snapshot.Relations) > 0 {
		stats.Relations.AvgConfidence = round3(confidenceSum / float64(len(snapshot.Relations)))
	}

	degrees := nodeDegrees(snapshot.Relations)
	degreeSum := 0
	for _, d := range degrees {
		degreeSum += d
		if d > stats.Connectivity.MaxDegree {
			stats.Connectivity.MaxDegree = d
		}
	}
	stats.Connectivity.ConnectedNodes = len(degrees)
	if len(degrees) > 0 {
		stats.Connectivity.AvgDegree = round2(float64(degreeSum) / float64(len(degrees)))
	}

	dayAgo := now.Add(-24 * time.Hour)
	stats.Queries.Total = len(snapshot.Queries)
	for _, q := range snapshot.Queries {
		if q.Timestamp.After(dayAgo) {
			stats.Queries.Recent++
		}
	}

	weekAgo := now.AddDate(0, 0, -7)
	stats.Insights.Total = len(snapshot.Insights)
	for _, in := range snapshot.Insights {
		if in.CreatedAt.After(weekAgo) {
			stats.Insights.Recent++
		}
	}

	return stats
}

// nodeDegrees sums in- and out-degree for every id appearing as a
// relation endpoint, whether or not it resolves to a known entity.
func nodeDegrees(relations []*types.Relation) map[string]int {
	degrees := make(map[string]int)
	for _, r := range relations {
		degrees[r.SourceID]++
		degrees[r.TargetID]++
	}
	return degrees
}

// leader returns the key with the highest count. Ties resolve to the
// lexically smallest key so repeated runs over the same graph describe
// the same leader.
func leader(counts map[string]int) (string, int) {
	best := ""
	bestCount := 0
	for k, c := range counts {
		if c > bestCount || (c == bestCount && (best == "" || k < best)) {
			best, bestCount = k, c
		}
	}
	return best, bestCount
}

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
