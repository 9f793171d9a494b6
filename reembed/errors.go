package reembed

import "errors"

var (
	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")

	// ErrInvalidBatchSize is returned when the embedding batch size is < 1
	ErrInvalidBatchSize = errors.New("batch size must be greater than 0")

	// ErrRepositoryRequired is returned when a pipeline is built without
	// its document or vector repository.
	ErrRepositoryRequired = errors.New("document and vector repositories are required")

	// ErrEmbedderRequired is returned when a pipeline is built without
	// an embedder.
	ErrEmbedderRequired = errors.New("embedder is required")

	// ErrEmbeddingMismatch is returned when the embedder answers with a
	// different number of vectors than texts sent.
	ErrEmbeddingMismatch = errors.New("embedding count mismatch")
)
