// Package types defines the core data model of the knowledge graph:
// entities, relations, query audit records, insights, and the tagged
// property values they carry.
//
// Entity and relation identifiers are deterministic: they are derived
// from (name, type) and (source id, relation type, target id)
// respectively, so upserting the same logical record twice always
// resolves to the same identifier. Merge semantics live here as well,
// next to the records they apply to.
package types
