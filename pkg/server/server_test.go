package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgraph-io/kgraph"
	"github.com/kgraph-io/kgraph/pkg/config"
	"github.com/kgraph-io/kgraph/pkg/server/dto"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	cfg := &config.Config{
		Log:     config.LogConfig{Level: "error"},
		Server:  config.ServerConfig{Host: "localhost", Port: 8080, Mode: "test"},
		Storage: config.StorageConfig{DataDir: t.TempDir(), ExportDir: t.TempDir()},
		Graph: config.GraphConfig{
			RetentionDays:       365,
			MaxPathDepth:        3,
			SimilarityThreshold: 0.7,
		},
	}

	graph, err := kgraph.Open(cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { graph.Close() })

	s := New(cfg, graph)
	s.Setup()
	return s
}

func doJSON(t *testing.T, s *Server, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestNew(t *testing.T) {
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "localhost", Port: 8080, Mode: "test"},
	}

	s := New(cfg, nil)
	require.NotNil(t, s)
	s.Setup()
	assert.NotNil(t, s.router)
	assert.Equal(t, "localhost:8080", s.server.Addr)
}

func TestHealthEndpoints(t *testing.T) {
	s := testServer(t)

	for _, path := range []string{"/health", "/live", "/ready", "/health/detailed"} {
		w := doJSON(t, s, http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, w.Code, "path %s", path)
	}
}

func TestUpsertAndQueryEntities(t *testing.T) {
	s := testServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/entities", dto.UpsertEntityRequest{
		Name: "parse", Type: "function", Confidence: 0.8, Source: "code_analysis",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var upserted dto.UpsertResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &upserted))
	assert.NotEmpty(t, upserted.ID)

	w = doJSON(t, s, http.MethodGet, "/api/v1/entities?type=function", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	assert.Equal(t, 1, listed.Count)

	w = doJSON(t, s, http.MethodGet, "/api/v1/entities/"+upserted.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/v1/entities/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpsertEntityValidation(t *testing.T) {
	s := testServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/entities", dto.UpsertEntityRequest{
		Name: "parse", Type: "function", Confidence: 1.5,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/v1/entities", map[string]string{"name": "parse"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPathsEndpoint(t *testing.T) {
	s := testServer(t)

	upsert := func(name string) string {
		w := doJSON(t, s, http.MethodPost, "/api/v1/entities", dto.UpsertEntityRequest{
			Name: name, Type: "function", Confidence: 0.8,
		})
		require.Equal(t, http.StatusOK, w.Code)
		var resp dto.UpsertResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		return resp.ID
	}

	a := upsert("a")
	b := upsert("b")
	c := upsert("c")

	for _, pair := range [][2]string{{a, b}, {b, c}} {
		w := doJSON(t, s, http.MethodPost, "/api/v1/relations", dto.UpsertRelationRequest{
			SourceID: pair[0], TargetID: pair[1], Type: "calls", Confidence: 0.7,
		})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, s, http.MethodPost, "/api/v1/paths", dto.PathRequest{SourceID: a, TargetID: c})
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.PathResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
}

func TestExtractEndpoint(t *testing.T) {
	s := testServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/extract", dto.ExtractRequest{
		Kind:    "code",
		Content: "def parse(path):\n    return path\n",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.ExtractResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotZero(t, resp.Count)

	w = doJSON(t, s, http.MethodPost, "/api/v1/extract", dto.ExtractRequest{
		Kind: "binary", Content: "x",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestExportEndpointRejectsUnknownFormat(t *testing.T) {
	s := testServer(t)

	w := doJSON(t, s, http.MethodPost, "/api/v1/export", dto.ExportRequest{Format: "csv"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodPost, "/api/v1/export", dto.ExportRequest{Format: "json"})
	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.ExportResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Path)
}

func TestStatisticsEndpoint(t *testing.T) {
	s := testServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/v1/statistics", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "entities")
}

func TestCleanupEndpoint(t *testing.T) {
	s := testServer(t)

	days := 30
	w := doJSON(t, s, http.MethodPost, "/api/v1/cleanup", dto.CleanupRequest{Days: &days})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "cleaned_queries")
}

func TestCleanupEndpointDaysZeroPurges(t *testing.T) {
	s := testServer(t)

	w := doJSON(t, s, http.MethodGet, "/api/v1/entities", nil)
	require.Equal(t, http.StatusOK, w.Code)

	days := 0
	w = doJSON(t, s, http.MethodPost, "/api/v1/cleanup", dto.CleanupRequest{Days: &days})
	require.Equal(t, http.StatusOK, w.Code)

	var result struct {
		CleanedQueries   int `json:"cleaned_queries"`
		RemainingQueries int `json:"remaining_queries"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, 1, result.CleanedQueries)
	assert.Zero(t, result.RemainingQueries)
}
