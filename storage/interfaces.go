package storage

import (
	"context"

	"github.com/carelight/guidelines/core"
)

// GuidelineRepository provides operations for managing guideline documents.
// Implementations must be thread-safe and support concurrent access.
type GuidelineRepository interface {
	// UpsertGuideline creates or updates a guideline document, keyed by
	// (Source, Metadata["guideline_id"]). Re-ingesting an existing logical
	// guideline updates the stored row in place; a new logical guideline gets
	// an ID from the store's sequence.
	// Returns the stored document and whether its content actually changed.
	UpsertGuideline(ctx context.Context, doc *core.GuidelineDoc) (*core.GuidelineDoc, bool, error)

	// GetGuideline retrieves a single document by ID.
	// Returns ErrNotFound if the document doesn't exist.
	GetGuideline(ctx context.Context, id core.ID) (*core.GuidelineDoc, error)

	// GetAllGuidelines retrieves every stored document, ordered by ID.
	GetAllGuidelines(ctx context.Context) ([]*core.GuidelineDoc, error)

	// Close closes the repository and releases resources.
	Close() error
}

// VectorRepository provides operations for managing guideline chunk vectors.
// Implementations must be thread-safe and support concurrent access.
type VectorRepository interface {
	// DeleteVectorsByDoc removes all vectors belonging to a document.
	// Deleting vectors for a document with none stored is not an error.
	DeleteVectorsByDoc(ctx context.Context, docID core.ID) error

	// InsertVectors stores the given vectors. Callers are expected to have
	// deleted the document's previous vector set first, so that the stored
	// set always reflects the current chunking.
	InsertVectors(ctx context.Context, vectors ...*core.GuidelineVector) error

	// GetVectorsByDoc retrieves all vectors for a document, ordered by ID.
	GetVectorsByDoc(ctx context.Context, docID core.ID) ([]*core.GuidelineVector, error)

	// SimilaritySearch finds vectors similar to the query embedding.
	// A zero specialty means no filter. Results are ordered by similarity,
	// highest first, up to limit.
	SimilaritySearch(ctx context.Context, embedding []float32, specialty core.Specialty, limit int) ([]*core.SearchResult, error)

	// Close closes the repository and releases resources.
	Close() error
}

// RefreshLogRepository provides the append-only refresh audit trail.
// Implementations must be thread-safe and support concurrent access.
type RefreshLogRepository interface {
	// AppendRefreshLog appends an entry to the audit trail.
	// The entry's ID is assigned from the store's sequence.
	AppendRefreshLog(ctx context.Context, entry *core.RefreshLogEntry) (*core.RefreshLogEntry, error)

	// LatestCompletedRefreshLog returns the most recent entry with a terminal
	// completed status, or nil when no refresh has ever completed.
	LatestCompletedRefreshLog(ctx context.Context) (*core.RefreshLogEntry, error)

	// Close closes the repository and releases resources.
	Close() error
}

// LexicalIndex provides full-text search over guideline documents.
// Implementations must be thread-safe and support concurrent access.
type LexicalIndex interface {
	// Index adds or replaces a document in the full-text index.
	Index(ctx context.Context, doc *core.GuidelineDoc) error

	// Search runs a match query over title and content, returning up to
	// limit hits ordered by relevance score.
	Search(ctx context.Context, query string, limit int) ([]*core.TextSearchResult, error)

	// Close closes the index and releases resources.
	Close() error
}
