package query

import (
	"fmt"

	"github.com/kgraph-io/kgraph/pkg/types"
)

// FindPaths runs a depth-bounded depth-first search from sourceID and
// returns every path that reaches targetID within maxDepth relation
// hops. A path must contain more than one node, so the trivial
// zero-hop "path" from a node to itself is never emitted. The visited
// set is per branch and released on backtrack: a node excluded from
// the current stack can still be reached again via a different branch,
// which makes the worst case exponential in maxDepth (bounded by
// max out-degree raised to maxDepth).
//
// maxDepth values below 1 fall back to DefaultMaxDepth. An unknown
// source or target yields an empty result, not an error.
func (e *Engine) FindPaths(sourceID, targetID string, maxDepth int) ([]types.Path, error) {
	if maxDepth < 1 {
		maxDepth = DefaultMaxDepth
	}

	// Outgoing adjacency in store insertion order, so path enumeration
	// order is reproducible for a given upsert history.
	type hop struct {
		relationType string
		targetID     string
	}
	adjacency := make(map[string][]hop)
	for _, r := range e.store.Relations() {
		adjacency[r.SourceID] = append(adjacency[r.SourceID], hop{r.Type, r.TargetID})
	}

	var paths []types.Path
	visited := make(map[string]bool)

	var dfs func(current string, path types.Path, depth int)
	dfs = func(current string, path types.Path, depth int) {
		if depth > maxDepth {
			return
		}
		if current == targetID && len(path) > 1 {
			emitted := make(types.Path, len(path))
			copy(emitted, path)
			paths = append(paths, emitted)
			return
		}
		if visited[current] {
			return
		}
		visited[current] = true
		for _, h := range adjacency[current] {
			dfs(h.targetID, append(path, h.relationType, h.targetID), depth+1)
		}
		delete(visited, current)
	}
	dfs(sourceID, types.Path{sourceID}, 0)

	if err := e.record(types.PathQuery,
		fmt.Sprintf("path from %s to %s, max_depth=%d", sourceID, targetID, maxDepth),
		types.Properties{
			"source_id": types.String(sourceID),
			"target_id": types.String(targetID),
			"max_depth": types.Number(float64(maxDepth)),
		}); err != nil {
		return nil, err
	}
	return paths, nil
}
