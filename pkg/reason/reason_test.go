package reason

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgraph-io/kgraph/pkg/store"
	"github.com/kgraph-io/kgraph/pkg/types"
)

func upsertEntity(t *testing.T, s *store.Store, name, typ string, props types.Properties) string {
	t.Helper()
	id, err := s.UpsertEntity(name, typ, props, 1.0, "test")
	require.NoError(t, err)
	return id
}

func upsertRelation(t *testing.T, s *store.Store, src, typ, tgt string) {
	t.Helper()
	_, err := s.UpsertRelation(src, tgt, typ, nil, 1.0, "test")
	require.NoError(t, err)
}

func TestInferTransitiveRelations(t *testing.T) {
	s := store.New(nil, nil)
	a := upsertEntity(t, s, "A", "function", nil)
	b := upsertEntity(t, s, "B", "function", nil)
	c := upsertEntity(t, s, "C", "function", nil)
	upsertRelation(t, s, a, "calls", b)
	upsertRelation(t, s, b, "calls", c)

	r := New(s, nil)

	pairs, err := r.InferTransitiveRelations("calls")
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, Pair{SourceID: a, TargetID: c}, pairs[0])

	inferred := s.Relation(types.RelationID(a, "calls", c))
	require.NotNil(t, inferred, "the inferred relation must be persisted")
	assert.Equal(t, 0.6, inferred.Confidence)
	assert.True(t, inferred.Properties["inferred"].Equal(types.Bool(true)))
	assert.True(t, inferred.Properties["inference_type"].Equal(types.String("transitive")))
	assert.Equal(t, ReasoningSource, inferred.Source)

	// The graph is unchanged, so a second generation adds nothing.
	pairs, err = r.InferTransitiveRelations("calls")
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestInferTransitiveSkipsSelfLoops(t *testing.T) {
	s := store.New(nil, nil)
	a := upsertEntity(t, s, "A", "function", nil)
	b := upsertEntity(t, s, "B", "function", nil)
	upsertRelation(t, s, a, "calls", b)
	upsertRelation(t, s, b, "calls", a)

	r := New(s, nil)

	pairs, err := r.InferTransitiveRelations("calls")
	require.NoError(t, err)
	assert.Empty(t, pairs, "A->B->A must not infer a self relation")
}

func TestInferTransitiveIsSingleGeneration(t *testing.T) {
	s := store.New(nil, nil)
	ids := make([]string, 4)
	for i, name := range []string{"n0", "n1", "n2", "n3"} {
		ids[i] = upsertEntity(t, s, name, "concept", nil)
	}
	for i := 0; i < 3; i++ {
		upsertRelation(t, s, ids[i], "uses", ids[i+1])
	}

	r := New(s, nil)

	// First generation: n0->n2, n1->n3. n0->n3 needs the edges the
	// first generation just added.
	pairs, err := r.InferTransitiveRelations("uses")
	require.NoError(t, err)
	assert.Len(t, pairs, 2)

	pairs, err = r.InferTransitiveRelations("uses")
	require.NoError(t, err)
	require.Len(t, pairs, 1)
	assert.Equal(t, Pair{SourceID: ids[0], TargetID: ids[3]}, pairs[0])

	pairs, err = r.InferTransitiveRelations("uses")
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestInferTransitiveIgnoresOtherTypes(t *testing.T) {
	s := store.New(nil, nil)
	a := upsertEntity(t, s, "A", "concept", nil)
	b := upsertEntity(t, s, "B", "concept", nil)
	c := upsertEntity(t, s, "C", "concept", nil)
	upsertRelation(t, s, a, "uses", b)
	upsertRelation(t, s, b, "requires", c)

	r := New(s, nil)

	pairs, err := r.InferTransitiveRelations("uses")
	require.NoError(t, err)
	assert.Empty(t, pairs, "chains of mixed relation types must not be closed")
}

func TestSimilarityIsSymmetric(t *testing.T) {
	pairs := []struct {
		a, b *types.Entity
	}{
		{
			a: &types.Entity{Name: "http client", Type: "class", Properties: types.Properties{"lang": types.String("go")}},
			b: &types.Entity{Name: "http server", Type: "class", Properties: types.Properties{"lang": types.String("go"), "port": types.Number(80)}},
		},
		{
			a: &types.Entity{Name: "alpha", Type: "concept"},
			b: &types.Entity{Name: "beta gamma", Type: "tool", Properties: types.Properties{"x": types.Bool(true)}},
		},
		{
			a: &types.Entity{Name: "", Type: "file"},
			b: &types.Entity{Name: "main.go", Type: "file"},
		},
	}

	for _, p := range pairs {
		assert.Equal(t, Similarity(p.a, p.b), Similarity(p.b, p.a))
	}
}

func TestSimilarityScore(t *testing.T) {
	a := &types.Entity{Name: "parse config", Type: "function", Properties: types.Properties{"lang": types.Number(1), "pure": types.Bool(true)}}
	b := &types.Entity{Name: "parse input", Type: "function", Properties: types.Properties{"lang": types.Number(2)}}

	// type match 0.3 + name jaccard 1/3 * 0.4 + key jaccard 1/2 * 0.3
	want := 0.3 + 0.4/3 + 0.15
	assert.InDelta(t, want, Similarity(a, b), 1e-9)
}

func TestSimilarityIdenticalEntitiesIsOne(t *testing.T) {
	e := &types.Entity{Name: "retry policy", Type: "concept", Properties: types.Properties{"k": types.Number(1)}}
	assert.InDelta(t, 1.0, Similarity(e, e), 1e-9)
}

func TestFindSimilarEntities(t *testing.T) {
	s := store.New(nil, nil)
	target := upsertEntity(t, s, "http client", "class", types.Properties{"lang": types.String("go")})
	near := upsertEntity(t, s, "http server", "class", types.Properties{"lang": types.String("go")})
	far := upsertEntity(t, s, "zebra", "animal", nil)

	r := New(s, nil)

	ids, err := r.FindSimilarEntities(target, 0.5)
	require.NoError(t, err)
	require.Equal(t, []string{near}, ids)
	assert.NotContains(t, ids, far)

	rel := s.Relation(types.RelationID(target, SimilarRelationType, near))
	require.NotNil(t, rel, "a similar_to relation must be created for qualifying pairs")
	assert.InDelta(t, Similarity(s.Entity(target), s.Entity(near)), rel.Confidence, 1e-9)
	assert.Equal(t, ReasoningSource, rel.Source)

	// A second pass finds the same candidate but must not touch the
	// existing similar_to relation.
	before := rel.UpdatedAt
	_, err = r.FindSimilarEntities(target, 0.5)
	require.NoError(t, err)
	assert.Equal(t, before, s.Relation(types.RelationID(target, SimilarRelationType, near)).UpdatedAt)
}

func TestFindSimilarEntitiesUnknownID(t *testing.T) {
	r := New(store.New(nil, nil), nil)
	ids, err := r.FindSimilarEntities("missing", 0.5)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRecommendRelations(t *testing.T) {
	s := store.New(nil, nil)
	fn := upsertEntity(t, s, "parse config", "function", types.Properties{"lang": types.String("go")})
	lib := upsertEntity(t, s, "yaml parser", "library", types.Properties{"lang": types.String("go")})
	upsertEntity(t, s, "unrelated", "animal", nil)

	r := New(s, nil)

	recs, err := r.RecommendRelations(fn, 10)
	require.NoError(t, err)
	require.NotEmpty(t, recs)

	// (function, library, uses) scores 0.8 plus a similarity bonus and
	// must lead the list.
	top := recs[0]
	assert.Equal(t, fn, top.SourceID)
	assert.Equal(t, lib, top.TargetID)
	assert.Equal(t, "uses", top.Type)
	assert.Greater(t, top.Confidence, 0.8)
	assert.LessOrEqual(t, top.Confidence, 1.0)

	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].Confidence, recs[i].Confidence)
	}
	for _, rec := range recs {
		assert.Greater(t, rec.Confidence, 0.5)
	}
}

func TestRecommendRelationsSkipsExisting(t *testing.T) {
	s := store.New(nil, nil)
	fn := upsertEntity(t, s, "parse config", "function", nil)
	lib := upsertEntity(t, s, "yaml parser", "library", nil)
	upsertRelation(t, s, fn, "uses", lib)

	r := New(s, nil)

	recs, err := r.RecommendRelations(fn, 10)
	require.NoError(t, err)
	for _, rec := range recs {
		assert.False(t, rec.TargetID == lib && rec.Type == "uses",
			"an existing relation must not be recommended again")
	}
}

func TestRecommendRelationsMaxResults(t *testing.T) {
	s := store.New(nil, nil)
	fn := upsertEntity(t, s, "alpha", "function", nil)
	for _, name := range []string{"lib1", "lib2", "lib3"} {
		upsertEntity(t, s, name, "library", nil)
	}

	r := New(s, nil)

	recs, err := r.RecommendRelations(fn, 2)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(recs), 2)
}

func TestRecommendRelationsUnknownID(t *testing.T) {
	r := New(store.New(nil, nil), nil)
	recs, err := r.RecommendRelations("missing", 5)
	require.NoError(t, err)
	assert.Empty(t, recs)
}
