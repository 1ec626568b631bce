package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgraph-io/kgraph/pkg/store"
	"github.com/kgraph-io/kgraph/pkg/types"
)

func buildGraph(t *testing.T) (*store.Store, map[string]string) {
	t.Helper()
	s := store.New(nil, nil)

	ids := make(map[string]string)
	add := func(name, typ string, conf float64) {
		id, err := s.UpsertEntity(name, typ, nil, conf, "test")
		require.NoError(t, err)
		ids[name] = id
	}
	add("hub", "function", 0.8)
	add("leafA", "function", 0.6)
	add("leafB", "concept", 1.0)
	add("leafC", "function", 0.6)

	relate := func(from, typ, to string) {
		_, err := s.UpsertRelation(ids[from], ids[to], typ, nil, 0.5, "test")
		require.NoError(t, err)
	}
	relate("hub", "calls", "leafA")
	relate("hub", "uses", "leafB")
	relate("hub", "uses", "leafC")
	relate("leafA", "uses", "leafB")
	return s, ids
}

func TestAnalyzePatterns(t *testing.T) {
	s, _ := buildGraph(t)
	e := New(s, nil)

	insights, err := e.AnalyzePatterns()
	require.NoError(t, err)
	require.Len(t, insights, 3)

	byTitle := make(map[string]*types.Insight)
	for _, in := range insights {
		byTitle[in.Title] = in
		assert.NotEmpty(t, in.ID)
		assert.Equal(t, types.PatternInsight, in.Kind)
		assert.NotEmpty(t, in.Evidence)
	}

	entityDist := byTitle["Entity type distribution"]
	require.NotNil(t, entityDist)
	assert.Equal(t, 0.9, entityDist.Confidence)
	assert.Contains(t, entityDist.Description, `"function"`)

	relationDist := byTitle["Relation type distribution"]
	require.NotNil(t, relationDist)
	assert.Equal(t, 0.9, relationDist.Confidence)
	assert.Contains(t, relationDist.Description, `"uses"`)

	connectivity := byTitle["Connectivity"]
	require.NotNil(t, connectivity)
	assert.Equal(t, 0.8, connectivity.Confidence)
	assert.Contains(t, connectivity.Description, `"hub"`)

	assert.Len(t, s.Insights(), 3, "insights must be appended to the store")
}

func TestAnalyzePatternsEmptyGraph(t *testing.T) {
	e := New(store.New(nil, nil), nil)

	insights, err := e.AnalyzePatterns()
	require.NoError(t, err)
	assert.Empty(t, insights)
}

func TestAnalyzePatternsSkipsDanglingDegreeLeader(t *testing.T) {
	s := store.New(nil, nil)
	// Relations whose endpoints were never upserted as entities.
	_, err := s.UpsertRelation("ghost-1", "ghost-2", "uses", nil, 1.0, "test")
	require.NoError(t, err)

	e := New(s, nil)

	insights, err := e.AnalyzePatterns()
	require.NoError(t, err)
	require.Len(t, insights, 1, "only the relation distribution insight applies")
	assert.Equal(t, "Relation type distribution", insights[0].Title)
}

func TestStatistics(t *testing.T) {
	s, _ := buildGraph(t)
	now := time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	e := New(s, nil, WithClock(func() time.Time { return now }))

	require.NoError(t, s.AppendQuery(&types.Query{ID: "recent", Timestamp: now.Add(-time.Hour)}))
	require.NoError(t, s.AppendQuery(&types.Query{ID: "stale", Timestamp: now.Add(-48 * time.Hour)}))
	require.NoError(t, s.AppendInsights([]*types.Insight{
		{ID: "fresh", CreatedAt: now.AddDate(0, 0, -2)},
		{ID: "old", CreatedAt: now.AddDate(0, 0, -30)},
	}))

	stats := e.Statistics()

	assert.Equal(t, 4, stats.Entities.Total)
	assert.Equal(t, map[string]int{"function": 3, "concept": 1}, stats.Entities.Types)
	assert.InDelta(t, 0.75, stats.Entities.AvgConfidence, 1e-9)

	assert.Equal(t, 4, stats.Relations.Total)
	assert.Equal(t, map[string]int{"uses": 3, "calls": 1}, stats.Relations.Types)
	assert.InDelta(t, 0.5, stats.Relations.AvgConfidence, 1e-9)

	// hub has degree 3; leafA 2; leafB 2; leafC 1: eight endpoint
	// slots over four connected nodes.
	assert.Equal(t, 4, stats.Connectivity.ConnectedNodes)
	assert.Equal(t, 3, stats.Connectivity.MaxDegree)
	assert.InDelta(t, 2.0, stats.Connectivity.AvgDegree, 1e-9)

	assert.Equal(t, 2, stats.Queries.Total)
	assert.Equal(t, 1, stats.Queries.Recent)
	assert.Equal(t, 2, stats.Insights.Total)
	assert.Equal(t, 1, stats.Insights.Recent)
}

func TestStatisticsRoundsNegativeAverages(t *testing.T) {
	s := store.New(nil, nil)
	_, err := s.UpsertEntity("a", "concept", nil, -0.5, "test")
	require.NoError(t, err)
	_, err = s.UpsertEntity("b", "concept", nil, -0.75, "test")
	require.NoError(t, err)

	stats := New(s, nil).Statistics()
	assert.InDelta(t, -0.625, stats.Entities.AvgConfidence, 1e-9,
		"confidence is unclamped, so negative averages must round away from zero too")
}

func TestStatisticsEmptyStore(t *testing.T) {
	e := New(store.New(nil, nil), nil)
	stats := e.Statistics()

	assert.Zero(t, stats.Entities.Total)
	assert.Zero(t, stats.Entities.AvgConfidence)
	assert.Zero(t, stats.Relations.Total)
	assert.Zero(t, stats.Connectivity.ConnectedNodes)
	assert.Zero(t, stats.Connectivity.AvgDegree)
}
