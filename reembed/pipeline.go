// Copyright 2025 Carelight Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package reembed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/carelight/guidelines/ai"
	"github.com/carelight/guidelines/chunk"
	"github.com/carelight/guidelines/core"
	"github.com/carelight/guidelines/storage"
)

// Pipeline turns stored guideline documents into searchable chunk
// vectors. For each document it removes the previous vector set, chunks
// the current contents, and embeds the chunks in small batches so a
// local embedding server is not flooded.
type Pipeline struct {
	docs      storage.GuidelineRepository
	vectors   storage.VectorRepository
	embedder  ai.Embedder
	chunker   *chunk.Chunker
	pool      *ants.Pool
	batchSize int
	// batchDelay spaces out embedding calls between batches of one
	// document. It does not apply between documents.
	batchDelay time.Duration
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the number of documents processed concurrently.
// The default of 1 keeps embedding traffic strictly sequential, which
// is what most local embedding servers want.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many chunks are embedded per call.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return ErrInvalidBatchSize
		}
		p.batchSize = size
		return nil
	}
}

// WithBatchDelay sets the pause between embedding batches of one document.
func WithBatchDelay(delay time.Duration) Option {
	return func(p *Pipeline) error {
		p.batchDelay = delay
		return nil
	}
}

// WithRetry sets the retry policy for embedding calls.
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(p *Pipeline) error {
		if maxRetries < 1 {
			return ErrInvalidMaxAttempts
		}
		p.maxRetries = maxRetries
		p.retryDelay = baseDelay
		return nil
	}
}

// WithChunker replaces the default chunker.
func WithChunker(c *chunk.Chunker) Option {
	return func(p *Pipeline) error {
		if c != nil {
			p.chunker = c
		}
		return nil
	}
}

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates an embedding pipeline.
func NewPipeline(docs storage.GuidelineRepository, vectors storage.VectorRepository, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if docs == nil || vectors == nil {
		return nil, ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	pool, err := ants.NewPool(1)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		docs:       docs,
		vectors:    vectors,
		embedder:   embedder,
		chunker:    chunk.DefaultChunker(),
		pool:       pool,
		batchSize:  5,
		batchDelay: 100 * time.Millisecond,
		maxRetries: 3,
		retryDelay: time.Second,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	p.logger = p.logger.With("component", "embedding_pipeline")
	return p, nil
}

// Release frees the worker pool. The pipeline cannot be used afterwards.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// Result summarizes one embedding pass over the corpus.
type Result struct {
	DocumentsProcessed int
	ChunksEmbedded     int
	Errors             []string
}

// ProcessAllGuidelines re-embeds every stored document. Documents are
// processed on the worker pool; a document that fails is recorded in the
// result and does not stop the pass.
func (p *Pipeline) ProcessAllGuidelines(ctx context.Context) (*Result, error) {
	docs, err := p.docs.GetAllGuidelines(ctx)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, doc := range docs {
		doc := doc
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			chunks, err := p.ProcessDocument(ctx, doc)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", doc.Title, err))
				return
			}
			result.DocumentsProcessed++
			result.ChunksEmbedded += chunks
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", doc.Title, submitErr))
			mu.Unlock()
		}
	}

	wg.Wait()

	p.logger.Info("embedding pass finished",
		"documents", result.DocumentsProcessed,
		"chunks", result.ChunksEmbedded,
		"errors", len(result.Errors))

	return result, nil
}

// ProcessDocument replaces a document's vector set with freshly embedded
// chunks and returns how many chunks were embedded. Deleting before
// inserting makes the operation idempotent: running it twice leaves the
// same vectors as running it once.
func (p *Pipeline) ProcessDocument(ctx context.Context, doc *core.GuidelineDoc) (int, error) {
	if err := p.vectors.DeleteVectorsByDoc(ctx, doc.Id); err != nil {
		return 0, fmt.Errorf("failed to delete previous vectors: %w", err)
	}

	chunks := p.chunker.Chunk(doc)
	if len(chunks) == 0 {
		return 0, nil
	}

	embedded := 0
	for start := 0; start < len(chunks); start += p.batchSize {
		end := min(start+p.batchSize, len(chunks))
		batch := chunks[start:end]

		if start > 0 && p.batchDelay > 0 {
			timer := time.NewTimer(p.batchDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return embedded, ctx.Err()
			case <-timer.C:
			}
		}

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Contents
		}

		var embeddings [][]float32
		err := RetryWithBackoff(ctx, func() error {
			var err error
			embeddings, err = p.embedder.EmbedTexts(ctx, texts)
			return err
		}, p.maxRetries, p.retryDelay)
		if err != nil {
			return embedded, fmt.Errorf("failed to embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(embeddings) != len(batch) {
			return embedded, fmt.Errorf("%w: expected %d, got %d", ErrEmbeddingMismatch, len(batch), len(embeddings))
		}

		vectors := make([]*core.GuidelineVector, len(batch))
		for i, c := range batch {
			vectors[i] = &core.GuidelineVector{
				Id:        chunkVectorID(doc.Id, start+i, c.Contents),
				DocID:     doc.Id,
				Contents:  c.Contents,
				Meta:      c.Meta,
				Embedding: NormalizeVector(embeddings[i]),
			}
		}

		if err := p.vectors.InsertVectors(ctx, vectors...); err != nil {
			return embedded, fmt.Errorf("failed to store vectors: %w", err)
		}
		embedded += len(batch)
	}

	p.logger.Debug("document embedded", "doc", doc.Id, "chunks", embedded)
	return embedded, nil
}

// ReEmbedDocument re-embeds a single document by ID.
func (p *Pipeline) ReEmbedDocument(ctx context.Context, id core.ID) (int, error) {
	doc, err := p.docs.GetGuideline(ctx, id)
	if err != nil {
		return 0, err
	}
	return p.ProcessDocument(ctx, doc)
}

// chunkVectorID derives a stable vector ID from the document, the chunk's
// position, and its text, so re-embedding unchanged content produces
// identical rows.
func chunkVectorID(docID core.ID, index int, contents string) core.ID {
	return core.IDFromContent(fmt.Sprintf("%d:%d:%s", docID, index, contents))
}
