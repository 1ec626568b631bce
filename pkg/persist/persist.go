// Package persist mirrors the in-memory graph to disk and exports it
// to external formats.
//
// The snapshot model is deliberately simple: on every flush the full
// state of all four collections is rewritten, one JSON document per
// collection, with no incremental log and no cross-collection
// transaction. Each individual document is written atomically
// (temp file plus rename), but a crash between collection writes can
// leave the four documents mutually inconsistent. The in-memory maps
// remain the sole source of truth while the process is running; the
// files only matter at startup.
package persist

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/kgraph-io/kgraph/pkg/types"
)

// Collection file names inside the data directory.
const (
	entitiesFile  = "entities.json"
	relationsFile = "relations.json"
	queriesFile   = "queries.json"
	insightsFile  = "insights.json"
)

// FileStore persists the four collections as JSON documents under a
// single data directory.
type FileStore struct {
	dataDir string
	logger  *slog.Logger
}

// NewFileStore creates the data directory if needed and returns a
// store over it.
func NewFileStore(dataDir string, logger *slog.Logger) (*FileStore, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory %s: %w", dataDir, err)
	}
	return &FileStore{dataDir: dataDir, logger: logger}, nil
}

// Flush rewrites all four collection documents from the snapshot.
// Collections are written in a fixed order; there is no transaction
// across them.
func (f *FileStore) Flush(snapshot types.Snapshot) error {
	if err := f.writeCollection(entitiesFile, snapshot.Entities); err != nil {
		return err
	}
	if err := f.writeCollection(relationsFile, snapshot.Relations); err != nil {
		return err
	}
	if err := f.writeCollection(queriesFile, snapshot.Queries); err != nil {
		return err
	}
	return f.writeCollection(insightsFile, snapshot.Insights)
}

// Load reads all four collections back. A missing document is an
// empty collection; a document that fails to parse aborts the load
// with an error rather than silently dropping records.
func (f *FileStore) Load() (types.Snapshot, error) {
	var snapshot types.Snapshot
	if err := f.readCollection(entitiesFile, &snapshot.Entities); err != nil {
		return types.Snapshot{}, err
	}
	if err := f.readCollection(relationsFile, &snapshot.Relations); err != nil {
		return types.Snapshot{}, err
	}
	if err := f.readCollection(queriesFile, &snapshot.Queries); err != nil {
		return types.Snapshot{}, err
	}
	if err := f.readCollection(insightsFile, &snapshot.Insights); err != nil {
		return types.Snapshot{}, err
	}
	return snapshot, nil
}

func (f *FileStore) writeCollection(name string, collection interface{}) error {
	data, err := json.MarshalIndent(collection, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", name, err)
	}

	path := filepath.Join(f.dataDir, name)
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replacing %s: %w", name, err)
	}
	return nil
}

func (f *FileStore) readCollection(name string, out interface{}) error {
	data, err := os.ReadFile(filepath.Join(f.dataDir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("reading %s: %w", name, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("corrupt collection %s: %w", name, err)
	}
	return nil
}
