// Package kgraph provides an embedded knowledge graph for Go programs.
//
// A Graph holds typed entities and typed directed relations between
// them, derives deterministic identifiers from content so repeated
// ingestion merges instead of duplicating, and mirrors every mutation
// to JSON documents on disk. On top of the store it offers filtered
// queries with an audit trail, depth-bounded path search, transitive
// inference, similarity scoring, relation recommendations, and
// degree-based analytics.
//
// # Basic Usage
//
// Open a graph over a data directory and add knowledge:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	g, err := kgraph.Open(cfg, slog.Default())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer g.Close()
//
//	parseID, _ := g.UpsertEntity("parse", "function", nil, 0.8, "code_analysis")
//	lexerID, _ := g.UpsertEntity("lexer", "class", nil, 0.9, "code_analysis")
//	g.UpsertRelation(parseID, lexerID, "uses", nil, 0.7, "code_analysis")
//
// # Querying
//
// Reads never fail on missing data; they return empty results and
// append an audit record:
//
//	functions, _ := g.QueryEntities(query.EntityFilter{Type: "function"})
//	paths, _ := g.FindPaths(parseID, lexerID, 3)
//
// # Reasoning and Analytics
//
// The reasoning layer derives new relations from existing ones, and
// analytics summarizes the graph:
//
//	inferred, _ := g.InferTransitiveRelations("calls")
//	recs, _ := g.RecommendRelations(parseID, 5)
//	stats := g.Statistics()
//
// State is reloaded automatically the next time the same data
// directory is opened. Use Export to produce JSON, GraphML, or
// parquet documents for external tooling.
package kgraph
