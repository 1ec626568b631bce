package kgraph

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/kgraph-io/kgraph/pkg/alert"
	"github.com/kgraph-io/kgraph/pkg/analytics"
	"github.com/kgraph-io/kgraph/pkg/config"
	"github.com/kgraph-io/kgraph/pkg/extract"
	"github.com/kgraph-io/kgraph/pkg/logger"
	"github.com/kgraph-io/kgraph/pkg/persist"
	"github.com/kgraph-io/kgraph/pkg/query"
	"github.com/kgraph-io/kgraph/pkg/reason"
	"github.com/kgraph-io/kgraph/pkg/store"
	"github.com/kgraph-io/kgraph/pkg/telemetry"
	"github.com/kgraph-io/kgraph/pkg/types"
)

// Graph is the top-level handle over a persistent knowledge graph. It
// owns the store, its persistence, and the query, reasoning, and
// analytics engines. A Graph is safe for concurrent use.
type Graph struct {
	cfg       *config.Config
	logger    *slog.Logger
	store     *store.Store
	queries   *query.Engine
	reasoner  *reason.Reasoner
	analytics *analytics.Engine
	exporter  *persist.Exporter
	extractor extract.Extractor
	telemetry *telemetry.ParquetHandler
}

// Open loads any existing snapshot from the configured data directory
// and returns a ready graph. Pass a nil logger to build one from the
// log configuration, including parquet error telemetry when a
// telemetry path is configured.
func Open(cfg *config.Config, logger *slog.Logger) (*Graph, error) {
	if cfg == nil {
		loaded, err := config.Load()
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	g := &Graph{cfg: cfg}

	if logger == nil {
		built, th, err := NewLogger(cfg)
		if err != nil {
			return nil, err
		}
		logger = built
		g.telemetry = th
	}
	g.logger = logger

	fileStore, err := persist.NewFileStore(cfg.Storage.DataDir, logger)
	if err != nil {
		return nil, err
	}
	alerter := alert.New(cfg.Alert, logger)
	flusher := persist.NewRetryFlusher(fileStore, cfg.Flush, alerter, logger)

	g.store = store.New(flusher, logger)

	snapshot, err := fileStore.Load()
	if err != nil {
		return nil, fmt.Errorf("loading knowledge graph: %w", err)
	}
	if err := g.store.Restore(snapshot); err != nil {
		return nil, fmt.Errorf("restoring knowledge graph: %w", err)
	}
	logger.Info("knowledge graph loaded",
		"entities", len(snapshot.Entities),
		"relations", len(snapshot.Relations),
		"data_dir", cfg.Storage.DataDir)

	g.queries = query.NewEngine(g.store, logger)
	g.reasoner = reason.New(g.store, logger)
	g.analytics = analytics.New(g.store, logger)
	g.exporter = persist.NewExporter(cfg.Storage.ExportDir)
	g.extractor = extract.NewRegexExtractor()

	return g, nil
}

// NewLogger builds a slog.Logger from the log configuration. When a
// telemetry path is configured the returned handler also captures
// error records to parquet; the caller should Flush it on shutdown.
func NewLogger(cfg *config.Config) (*slog.Logger, *telemetry.ParquetHandler, error) {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	switch strings.ToLower(cfg.Log.Format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stderr, opts)
	case "color":
		handler = logger.NewColorHandler(os.Stderr, opts)
	default:
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	var th *telemetry.ParquetHandler
	if cfg.Telemetry.ParquetPath != "" {
		wrapped, err := telemetry.NewParquetHandler(handler, cfg.Telemetry.ParquetPath)
		if err != nil {
			return nil, nil, err
		}
		th = wrapped
		handler = wrapped
	}

	return slog.New(handler), th, nil
}

// Close flushes buffered telemetry. The graph itself needs no
// shutdown: every mutation was already persisted when it returned.
func (g *Graph) Close() error {
	if g.telemetry != nil {
		return g.telemetry.Flush()
	}
	return nil
}

// UpsertEntity adds or merges an entity and returns its deterministic
// id.
func (g *Graph) UpsertEntity(name, entityType string, properties types.Properties, confidence float64, source string) (string, error) {
	return g.store.UpsertEntity(name, entityType, properties, confidence, source)
}

// UpsertRelation adds or merges a relation and returns its
// deterministic id. Endpoints need not exist yet.
func (g *Graph) UpsertRelation(sourceID, targetID, relationType string, properties types.Properties, confidence float64, source string) (string, error) {
	return g.store.UpsertRelation(sourceID, targetID, relationType, properties, confidence, source)
}

// Entity returns the entity with the given id, or nil.
func (g *Graph) Entity(id string) *types.Entity {
	return g.store.Entity(id)
}

// Relation returns the relation with the given id, or nil.
func (g *Graph) Relation(id string) *types.Relation {
	return g.store.Relation(id)
}

// QueryEntities scans entities by filter, ordered by confidence
// descending.
func (g *Graph) QueryEntities(f query.EntityFilter) ([]*types.Entity, error) {
	return g.queries.Entities(f)
}

// QueryRelations scans relations by filter, ordered by confidence
// descending.
func (g *Graph) QueryRelations(f query.RelationFilter) ([]*types.Relation, error) {
	return g.queries.Relations(f)
}

// FindPaths searches for directed paths between two entities. A
// non-positive maxDepth falls back to the configured maximum.
func (g *Graph) FindPaths(sourceID, targetID string, maxDepth int) ([]types.Path, error) {
	if maxDepth < 1 {
		maxDepth = g.cfg.Graph.MaxPathDepth
	}
	return g.queries.FindPaths(sourceID, targetID, maxDepth)
}

// InferTransitiveRelations derives one generation of transitive
// relations for the given relation type and stores them.
func (g *Graph) InferTransitiveRelations(relationType string) ([]reason.Pair, error) {
	return g.reasoner.InferTransitiveRelations(relationType)
}

// FindSimilarEntities scores all other entities against the given one
// and records similar_to relations for matches. A non-positive
// threshold falls back to the configured default.
func (g *Graph) FindSimilarEntities(entityID string, threshold float64) ([]string, error) {
	if threshold <= 0 {
		threshold = g.cfg.Graph.SimilarityThreshold
	}
	return g.reasoner.FindSimilarEntities(entityID, threshold)
}

// RecommendRelations suggests plausible new relations for an entity.
func (g *Graph) RecommendRelations(entityID string, maxResults int) ([]types.Recommendation, error) {
	return g.reasoner.RecommendRelations(entityID, maxResults)
}

// AnalyzePatterns derives distribution and connectivity insights and
// appends them to the insight collection.
func (g *Graph) AnalyzePatterns() ([]*types.Insight, error) {
	return g.analytics.AnalyzePatterns()
}

// Statistics summarizes the current state of all collections.
func (g *Graph) Statistics() types.Statistics {
	return g.analytics.Statistics()
}

// Insights returns all stored insights.
func (g *Graph) Insights() []*types.Insight {
	return g.store.Insights()
}

// Export writes the graph in the given format into the configured
// export directory and returns the path produced.
func (g *Graph) Export(format string) (string, error) {
	return g.exporter.Export(format, g.store.Snapshot(), g.analytics.Statistics())
}

// Cleanup removes query and insight records older than the given
// number of days. Zero days purges both collections immediately;
// negative days falls back to the configured retention. Entities and
// relations are never removed.
func (g *Graph) Cleanup(days int) (store.CleanupResult, error) {
	if days < 0 {
		days = g.cfg.Graph.RetentionDays
	}
	return g.store.Cleanup(days)
}

// ExtractFromCode extracts entity candidates from source code and
// upserts them, returning the ids in extraction order.
func (g *Graph) ExtractFromCode(code string) ([]string, error) {
	return g.ingest(g.extractor.FromCode(code))
}

// ExtractFromText extracts entity candidates from prose and upserts
// them.
func (g *Graph) ExtractFromText(text string) ([]string, error) {
	return g.ingest(g.extractor.FromText(text))
}

// ExtractFromError extracts entity candidates from an error message or
// traceback and upserts them.
func (g *Graph) ExtractFromError(errorMsg string) ([]string, error) {
	return g.ingest(g.extractor.FromError(errorMsg))
}

func (g *Graph) ingest(candidates []extract.Candidate) ([]string, error) {
	ids := make([]string, 0, len(candidates))
	for _, c := range candidates {
		id, err := g.store.UpsertEntity(c.Name, c.Type, c.Properties, c.Confidence, c.Source)
		if err != nil {
			return ids, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
