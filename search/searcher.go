package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/carelight/guidelines/ai"
	"github.com/carelight/guidelines/core"
	"github.com/carelight/guidelines/reembed"
	"github.com/carelight/guidelines/storage"
)

// DefaultLimit is used when a caller passes a non-positive limit.
const DefaultLimit = 10

// Searcher provides hybrid semantic and lexical search over guideline chunks.
type Searcher struct {
	vectors  storage.VectorRepository
	lexical  storage.LexicalIndex
	embedder ai.Embedder
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(
	vectors storage.VectorRepository,
	lexical storage.LexicalIndex,
	embedder ai.Embedder,
	opts ...Option,
) (*Searcher, error) {
	if vectors == nil {
		return nil, ErrVectorRepositoryRequired
	}
	if lexical == nil {
		return nil, ErrLexicalIndexRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		vectors:  vectors,
		lexical:  lexical,
		embedder: embedder,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Semantic embeds the query and ranks stored chunk vectors by cosine
// similarity. A zero specialty means no filter.
func (s *Searcher) Semantic(ctx context.Context, query string, specialty core.Specialty, limit int) ([]*core.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}

	// Stored vectors are unit length, so the query must be too for the
	// dot product to equal cosine similarity.
	matches, err := s.vectors.SimilaritySearch(ctx, reembed.NormalizeVector(embedding), specialty, limit)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "err", err)
		return nil, err
	}

	return matches, nil
}

// Text runs a full-text match query over guideline titles and contents.
// A zero specialty means no filter.
func (s *Searcher) Text(ctx context.Context, query string, specialty core.Specialty, limit int) ([]*core.TextSearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	// The index has no specialty filtering, so over-fetch and filter here.
	fetch := limit
	if specialty != 0 {
		fetch = limit * 4
	}

	hits, err := s.lexical.Search(ctx, query, fetch)
	if err != nil {
		s.logger.Error("error running text search", "err", err)
		return nil, err
	}

	if specialty == 0 {
		return hits, nil
	}

	filtered := make([]*core.TextSearchResult, 0, len(hits))
	for _, hit := range hits {
		if hit.Specialty == specialty {
			filtered = append(filtered, hit)
			if len(filtered) == limit {
				break
			}
		}
	}
	return filtered, nil
}

// Combined runs the semantic and text searches concurrently and returns
// both result lists side by side. A sub-search failure is logged and
// yields an empty list for that side rather than an error, so one broken
// dependency never blanks the whole response.
func (s *Searcher) Combined(ctx context.Context, query string, specialty core.Specialty, limit int) (*core.CombinedSearchResult, error) {
	return s.CombinedWithMonitor(ctx, query, specialty, limit, nil)
}

// CombinedWithMonitor is Combined with per-stage observation hooks.
func (s *Searcher) CombinedWithMonitor(ctx context.Context, query string, specialty core.Specialty, limit int, monitor Monitor) (*core.CombinedSearchResult, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}

	monitor.Start(query)

	var (
		wg          sync.WaitGroup
		semantic    []*core.SearchResult
		semanticErr error
		text        []*core.TextSearchResult
		textErr     error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		semantic, semanticErr = s.Semantic(ctx, query, specialty, limit)
		if semanticErr == nil {
			monitor.AfterSemanticSearch(semantic)
		}
	}()
	go func() {
		defer wg.Done()
		text, textErr = s.Text(ctx, query, specialty, limit)
		if textErr == nil {
			monitor.AfterTextSearch(text)
		}
	}()
	wg.Wait()

	// A failing sub-search degrades to an empty list; the other side's
	// results still come back.
	if semanticErr != nil {
		s.logger.Error("semantic search failed", "query", query, "err", semanticErr)
		semantic = nil
	}
	if textErr != nil {
		s.logger.Error("text search failed", "query", query, "err", textErr)
		text = nil
	}

	result := &core.CombinedSearchResult{
		Semantic:     semantic,
		Text:         text,
		TotalResults: len(semantic) + len(text),
	}
	monitor.Finish(result)
	return result, nil
}

// Search is the convenience entry point: a combined search collapsed to
// one list. Semantic hits come first in similarity order; text hits for
// documents the semantic pass missed are appended in relevance order,
// and the list is cut at limit. Failures are logged and surface as an
// empty list, so callers always have something to render.
func (s *Searcher) Search(ctx context.Context, query string, specialty core.Specialty, limit int) []*core.SearchResult {
	if limit <= 0 {
		limit = DefaultLimit
	}

	combined, err := s.Combined(ctx, query, specialty, limit)
	if err != nil {
		s.logger.Error("search failed", "query", query, "err", err)
		return []*core.SearchResult{}
	}

	// Semantic hits are kept as ranked, including multiple chunks of the
	// same document; only the appended text hits are deduplicated.
	seen := make(map[core.ID]bool, len(combined.Semantic))
	results := make([]*core.SearchResult, 0, limit)
	for _, hit := range combined.Semantic {
		seen[hit.DocID] = true
		results = append(results, hit)
	}

	for _, hit := range combined.Text {
		if seen[hit.DocID] {
			continue
		}
		seen[hit.DocID] = true
		// Lexical scores are not on the cosine scale, so appended hits
		// carry no similarity.
		results = append(results, &core.SearchResult{
			DocID:    hit.DocID,
			Contents: hit.Contents,
			Meta: core.ChunkMeta{
				DocID:     hit.DocID,
				Title:     hit.Title,
				Source:    hit.Source,
				Specialty: hit.Specialty,
			},
		})
	}

	if len(results) > limit {
		results = results[:limit]
	}
	return results
}
