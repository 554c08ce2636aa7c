package models

import (
	"time"

	"github.com/google/uuid"
)

// CacheEntry is one row of the relational query cache. Rows are written once
// on a cache miss and only ever soft-deleted afterwards.
type CacheEntry struct {
	ID                uuid.UUID
	Question          string
	QuestionHash      string
	SQLQueryRaw       string
	SQLQueryProcessed string
	Justification     string
	APIVersion        string // fixed-width partition key, e.g. "001.001.014"
	Anonymized        bool   // true for anonymized-question rows
	Timings           Timings
	Deleted           bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// BestSQL prefers the processed (entity-resolved) SQL over the raw template.
func (e *CacheEntry) BestSQL() string {
	if e.SQLQueryProcessed != "" {
		return e.SQLQueryProcessed
	}
	return e.SQLQueryRaw
}
