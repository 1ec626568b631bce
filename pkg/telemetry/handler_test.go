package telemetry

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/parquet-go/parquet-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) (*ParquetHandler, string) {
	t.Helper()
	dir := t.TempDir()
	next := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})
	h, err := NewParquetHandler(next, dir)
	require.NoError(t, err)
	return h, dir
}

func parquetFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var files []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".parquet") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	return files
}

func TestParquetHandlerCapturesOnlyErrors(t *testing.T) {
	h, dir := newTestHandler(t)
	logger := slog.New(h)

	logger.Info("upserted entity", "id", "abc")
	logger.Warn("flush retried")
	logger.Error("flush failed", "error", "disk full")

	require.NoError(t, h.Flush())

	files := parquetFiles(t, dir)
	require.Len(t, files, 1)

	rows, err := parquet.ReadFile[ErrorRecord](files[0])
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "ERROR", rows[0].Level)
	assert.Equal(t, "flush failed", rows[0].Message)
	assert.Contains(t, rows[0].Attributes, "disk full")
	assert.NotEmpty(t, rows[0].ID)
}

func TestParquetHandlerFlushEmptyBufferWritesNothing(t *testing.T) {
	h, dir := newTestHandler(t)

	require.NoError(t, h.Flush())
	assert.Empty(t, parquetFiles(t, dir))
}

func TestParquetHandlerBatchFlush(t *testing.T) {
	h, dir := newTestHandler(t)
	h.batchSize = 3
	logger := slog.New(h)

	logger.Error("one")
	logger.Error("two")
	assert.Empty(t, parquetFiles(t, dir))

	logger.Error("three")
	files := parquetFiles(t, dir)
	require.Len(t, files, 1)

	rows, err := parquet.ReadFile[ErrorRecord](files[0])
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
