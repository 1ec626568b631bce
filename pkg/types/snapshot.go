package types

// Snapshot is a point-in-time copy of all four collections, in store
// insertion order. It is what the persistence layer serializes on each
// flush and what a load restores.
type Snapshot struct {
	Entities  []*Entity   `json:"entities"`
	Relations []*Relation `json:"relations"`
	Queries   []*Query    `json:"queries"`
	Insights  []*Insight  `json:"insights"`
}
