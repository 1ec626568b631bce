package kgraph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgraph-io/kgraph/pkg/config"
	"github.com/kgraph-io/kgraph/pkg/persist"
	"github.com/kgraph-io/kgraph/pkg/query"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Log:     config.LogConfig{Level: "error", Format: "text"},
		Storage: config.StorageConfig{DataDir: t.TempDir(), ExportDir: t.TempDir()},
		Graph: config.GraphConfig{
			RetentionDays:       365,
			MaxPathDepth:        3,
			SimilarityThreshold: 0.7,
		},
	}
}

func TestOpenEmptyGraph(t *testing.T) {
	g, err := Open(testConfig(t), nil)
	require.NoError(t, err)
	defer g.Close()

	stats := g.Statistics()
	assert.Equal(t, 0, stats.Entities.Total)
	assert.Equal(t, 0, stats.Relations.Total)
}

func TestGraphEndToEnd(t *testing.T) {
	cfg := testConfig(t)
	g, err := Open(cfg, nil)
	require.NoError(t, err)
	defer g.Close()

	parseID, err := g.UpsertEntity("parse", "function", nil, 0.8, "code_analysis")
	require.NoError(t, err)
	lexerID, err := g.UpsertEntity("lexer", "function", nil, 0.9, "code_analysis")
	require.NoError(t, err)
	tokenID, err := g.UpsertEntity("token", "class", nil, 0.7, "code_analysis")
	require.NoError(t, err)
	jsonID, err := g.UpsertEntity("json", "library", nil, 0.9, "code_analysis")
	require.NoError(t, err)

	_, err = g.UpsertRelation(parseID, lexerID, "calls", nil, 0.7, "code_analysis")
	require.NoError(t, err)
	_, err = g.UpsertRelation(lexerID, tokenID, "calls", nil, 0.8, "code_analysis")
	require.NoError(t, err)

	functions, err := g.QueryEntities(query.EntityFilter{Type: "function"})
	require.NoError(t, err)
	assert.Len(t, functions, 2)

	paths, err := g.FindPaths(parseID, tokenID, 0) // config default depth
	require.NoError(t, err)
	require.Len(t, paths, 1)
	assert.Equal(t, 2, paths[0].Hops())

	inferred, err := g.InferTransitiveRelations("calls")
	require.NoError(t, err)
	require.Len(t, inferred, 1)
	assert.Equal(t, parseID, inferred[0].SourceID)
	assert.Equal(t, tokenID, inferred[0].TargetID)

	recs, err := g.RecommendRelations(parseID, 5)
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	assert.Equal(t, jsonID, recs[0].TargetID)
	assert.Equal(t, "uses", recs[0].Type)

	insights, err := g.AnalyzePatterns()
	require.NoError(t, err)
	assert.NotEmpty(t, insights)

	stats := g.Statistics()
	assert.Equal(t, 4, stats.Entities.Total)
	assert.Equal(t, 3, stats.Relations.Total) // two stored plus one inferred
}

func TestGraphPersistsAcrossOpens(t *testing.T) {
	cfg := testConfig(t)

	g, err := Open(cfg, nil)
	require.NoError(t, err)
	parseID, err := g.UpsertEntity("parse", "function", nil, 0.8, "code_analysis")
	require.NoError(t, err)
	require.NoError(t, g.Close())

	reopened, err := Open(cfg, nil)
	require.NoError(t, err)
	defer reopened.Close()

	entity := reopened.Entity(parseID)
	require.NotNil(t, entity)
	assert.Equal(t, "parse", entity.Name)
	assert.Equal(t, 0.8, entity.Confidence)
}

func TestGraphExportJSON(t *testing.T) {
	cfg := testConfig(t)
	g, err := Open(cfg, nil)
	require.NoError(t, err)
	defer g.Close()

	_, err = g.UpsertEntity("parse", "function", nil, 0.8, "code_analysis")
	require.NoError(t, err)

	path, err := g.Export(persist.FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, path, cfg.Storage.ExportDir)

	_, err = g.Export("csv")
	assert.ErrorIs(t, err, persist.ErrUnsupportedFormat)
}

func TestGraphExtractFromCode(t *testing.T) {
	g, err := Open(testConfig(t), nil)
	require.NoError(t, err)
	defer g.Close()

	ids, err := g.ExtractFromCode("def parse_config(path):\n    return path\n")
	require.NoError(t, err)
	require.NotEmpty(t, ids)

	entities, err := g.QueryEntities(query.EntityFilter{Type: "function"})
	require.NoError(t, err)
	require.Len(t, entities, 1)
	assert.Equal(t, "parse_config", entities[0].Name)
}

func TestGraphCleanupUsesConfiguredRetention(t *testing.T) {
	cfg := testConfig(t)
	cfg.Graph.RetentionDays = 365
	g, err := Open(cfg, nil)
	require.NoError(t, err)
	defer g.Close()

	_, err = g.QueryEntities(query.EntityFilter{Type: "function"})
	require.NoError(t, err)

	result, err := g.Cleanup(-1)
	require.NoError(t, err)
	assert.Equal(t, 0, result.CleanedQueries)
	assert.Equal(t, 1, result.RemainingQueries)
}

func TestGraphCleanupDaysZeroPurgesNow(t *testing.T) {
	g, err := Open(testConfig(t), nil)
	require.NoError(t, err)
	defer g.Close()

	_, err = g.QueryEntities(query.EntityFilter{Type: "function"})
	require.NoError(t, err)

	result, err := g.Cleanup(0)
	require.NoError(t, err)
	assert.Equal(t, 1, result.CleanedQueries)
	assert.Zero(t, result.RemainingQueries)
}
