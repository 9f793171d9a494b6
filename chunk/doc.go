// Package chunk splits normalized guideline text into overlapping,
// token-bounded segments suitable for embedding.
//
// Chunking is a pure function over document content: paragraphs accumulate
// into chunks under an estimated-token budget, and consecutive chunks share
// a sentence-level overlap so that embedding context is not lost at chunk
// boundaries. Token counts are estimated with a fixed character ratio rather
// than exact tokenization.
package chunk
