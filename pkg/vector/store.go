// Package vector defines the narrow interface the pipeline uses to talk to
// the vector similarity store, plus the Chroma-backed implementation.
package vector

import "context"

// Record is one stored document with its metadata.
type Record struct {
	ID       string
	Document string
	Metadata map[string]any
}

// Candidate is a query result: a record plus its distance to the query text,
// smaller meaning more similar.
type Candidate struct {
	Record
	Distance float64
}

// Store is the vector similarity store consumed by the pipeline. One
// collection exists per entity kind, plus one for anonymized questions.
type Store interface {
	// Query returns up to k nearest neighbors of text, closest first.
	Query(ctx context.Context, collection string, text string, k int) ([]Candidate, error)

	// Get returns the record with the given id, or nil when absent.
	Get(ctx context.Context, collection string, id string) (*Record, error)

	// Add inserts a record. Callers check existence first; ids are
	// content-derived so a duplicate insert carries the same payload.
	Add(ctx context.Context, collection string, rec Record) error

	// DeleteWhere removes every record whose metadata matches all the
	// given key/value pairs.
	DeleteWhere(ctx context.Context, collection string, where map[string]any) error
}
