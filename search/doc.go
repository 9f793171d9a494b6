// Package search answers clinical queries against the guideline corpus.
// It combines cosine-similarity search over chunk embeddings with
// full-text search over whole documents; the two run concurrently and
// can be consumed side by side or as one deduplicated list.
package search
