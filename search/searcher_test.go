package search

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelight/guidelines/ai/mock"
	"github.com/carelight/guidelines/core"
	"github.com/carelight/guidelines/storage"
	"github.com/carelight/guidelines/storage/badger"
	"github.com/carelight/guidelines/storage/bleve"
)

type searchFixture struct {
	searcher *Searcher
	docs     storage.GuidelineRepository
	vectors  storage.VectorRepository
	lexical  *bleve.Index
	embedder *mock.Embedder
}

func newSearchFixture(t *testing.T) *searchFixture {
	t.Helper()

	lexical, err := bleve.NewMemIndex()
	require.NoError(t, err)
	t.Cleanup(func() { _ = lexical.Close() })

	docs, vectors, _, backend, err := badger.NewMemoryStore(lexical)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })

	embedder := mock.NewEmbedder()
	searcher, err := NewSearcher(vectors, lexical, embedder)
	require.NoError(t, err)

	return &searchFixture{
		searcher: searcher,
		docs:     docs,
		vectors:  vectors,
		lexical:  lexical,
		embedder: embedder,
	}
}

// addDoc stores a document (which also feeds the lexical index) and one
// chunk vector with the given embedding.
func (f *searchFixture) addDoc(t *testing.T, title, contents string, specialty core.Specialty, embedding []float32) *core.GuidelineDoc {
	t.Helper()
	ctx := context.Background()

	doc, _, err := f.docs.UpsertGuideline(ctx, &core.GuidelineDoc{
		Title:     title,
		Contents:  contents,
		Source:    core.SourceManual,
		Specialty: specialty,
		Metadata:  map[string]string{core.MetaGuidelineID: "test-" + title},
	})
	require.NoError(t, err)

	// A nil embedding means the document is only reachable lexically.
	if embedding == nil {
		return doc
	}

	err = f.vectors.InsertVectors(ctx, &core.GuidelineVector{
		Id:       core.IDFromContent(fmt.Sprintf("%d:0:%s", doc.Id, contents)),
		DocID:    doc.Id,
		Contents: contents,
		Meta: core.ChunkMeta{
			DocID:     doc.Id,
			Title:     title,
			Source:    core.SourceManual,
			Specialty: specialty,
		},
		Embedding: embedding,
	})
	require.NoError(t, err)
	return doc
}

func (f *searchFixture) queryEmbedding(v []float32) {
	f.embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return v, nil
	}
}

func TestSemanticSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("ranks by similarity", func(t *testing.T) {
		f := newSearchFixture(t)
		closer := f.addDoc(t, "Close Match", "content close to the query", core.SpecialtyGeneral, []float32{1, 0})
		far := f.addDoc(t, "Far Match", "content far from the query", core.SpecialtyGeneral, []float32{0, 1})
		f.queryEmbedding([]float32{1, 0})

		results, err := f.searcher.Semantic(ctx, "anything", 0, 10)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, closer.Id, results[0].DocID)
		assert.Equal(t, far.Id, results[1].DocID)
		assert.Greater(t, results[0].Similarity, results[1].Similarity)
	})

	t.Run("filters by specialty", func(t *testing.T) {
		f := newSearchFixture(t)
		cardio := f.addDoc(t, "Cardio Doc", "heart advice", core.SpecialtyCardiology, []float32{1, 0})
		f.addDoc(t, "Endo Doc", "sugar advice", core.SpecialtyEndocrinology, []float32{1, 0})
		f.queryEmbedding([]float32{1, 0})

		results, err := f.searcher.Semantic(ctx, "anything", core.SpecialtyCardiology, 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, cardio.Id, results[0].DocID)
	})

	t.Run("rejects empty query", func(t *testing.T) {
		f := newSearchFixture(t)
		_, err := f.searcher.Semantic(ctx, "  ", 0, 10)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})

	t.Run("propagates embedder failure", func(t *testing.T) {
		f := newSearchFixture(t)
		f.embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
			return nil, errors.New("embedding server down")
		}
		_, err := f.searcher.Semantic(ctx, "query", 0, 10)
		require.Error(t, err)
	})
}

func TestTextSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("matches on content", func(t *testing.T) {
		f := newSearchFixture(t)
		doc := f.addDoc(t, "Hypertension Management", "Treat stage 2 hypertension with medication.", core.SpecialtyCardiology, []float32{1, 0})
		f.addDoc(t, "Diabetes Care", "Metformin is first-line for most patients.", core.SpecialtyEndocrinology, []float32{0, 1})

		hits, err := f.searcher.Text(ctx, "hypertension", 0, 10)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, doc.Id, hits[0].DocID)
	})

	t.Run("filters by specialty after the index query", func(t *testing.T) {
		f := newSearchFixture(t)
		f.addDoc(t, "Cardio Advice", "shared keyword treatment", core.SpecialtyCardiology, []float32{1, 0})
		endo := f.addDoc(t, "Endo Advice", "shared keyword treatment", core.SpecialtyEndocrinology, []float32{0, 1})

		hits, err := f.searcher.Text(ctx, "treatment", core.SpecialtyEndocrinology, 10)
		require.NoError(t, err)
		require.Len(t, hits, 1)
		assert.Equal(t, endo.Id, hits[0].DocID)
	})

	t.Run("rejects empty query", func(t *testing.T) {
		f := newSearchFixture(t)
		_, err := f.searcher.Text(ctx, "", 0, 10)
		assert.ErrorIs(t, err, ErrEmptyQuery)
	})
}

func TestCombinedSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns both lists with summed total", func(t *testing.T) {
		f := newSearchFixture(t)
		f.addDoc(t, "Statin Guideline", "Statin therapy reduces cardiovascular risk.", core.SpecialtyCardiology, []float32{1, 0})
		f.queryEmbedding([]float32{1, 0})

		combined, err := f.searcher.Combined(ctx, "statin", 0, 10)
		require.NoError(t, err)
		assert.Len(t, combined.Semantic, 1)
		assert.Len(t, combined.Text, 1)
		assert.Equal(t, 2, combined.TotalResults)
	})

	t.Run("a failing sub-search degrades to an empty list", func(t *testing.T) {
		f := newSearchFixture(t)
		doc := f.addDoc(t, "Warfarin Guideline", "Warfarin dosing requires INR monitoring.", core.SpecialtyGeneral, nil)
		f.embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
			return nil, errors.New("embedding server down")
		}

		combined, err := f.searcher.Combined(ctx, "warfarin", 0, 10)
		require.NoError(t, err)
		require.NotNil(t, combined)
		assert.Empty(t, combined.Semantic)
		require.Len(t, combined.Text, 1)
		assert.Equal(t, doc.Id, combined.Text[0].DocID)
		assert.Equal(t, 1, combined.TotalResults)
	})

	t.Run("invokes monitor hooks", func(t *testing.T) {
		f := newSearchFixture(t)
		f.addDoc(t, "Monitored Guideline", "Observable content.", core.SpecialtyGeneral, []float32{1, 0})
		f.queryEmbedding([]float32{1, 0})

		monitor := &recordingMonitor{}
		_, err := f.searcher.CombinedWithMonitor(ctx, "observable", 0, 10, monitor)
		require.NoError(t, err)

		assert.Equal(t, "observable", monitor.query)
		assert.True(t, monitor.semanticSeen)
		assert.True(t, monitor.textSeen)
		assert.True(t, monitor.finished)
	})
}

type recordingMonitor struct {
	mu           sync.Mutex
	query        string
	semanticSeen bool
	textSeen     bool
	finished     bool
}

func (m *recordingMonitor) Start(query string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.query = query
}

func (m *recordingMonitor) AfterSemanticSearch(_ []*core.SearchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.semanticSeen = true
}

func (m *recordingMonitor) AfterTextSearch(_ []*core.TextSearchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.textSeen = true
}

func (m *recordingMonitor) Finish(_ *core.CombinedSearchResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finished = true
}

func TestSearchDeduplicates(t *testing.T) {
	ctx := context.Background()

	t.Run("merges semantic and text hits by document", func(t *testing.T) {
		f := newSearchFixture(t)
		// Doc 1: semantic hit only (vector aligned, no keyword match).
		one := f.addDoc(t, "First Topic", "advice on the first condition", core.SpecialtyGeneral, []float32{1, 0})
		// Doc 2: both semantic and keyword hit.
		two := f.addDoc(t, "Second Topic", "advice mentioning anticoagulation", core.SpecialtyGeneral, []float32{0.9, 0.1})
		// Doc 3: keyword hit only, no stored vector.
		three := f.addDoc(t, "Third Topic", "more anticoagulation advice", core.SpecialtyGeneral, nil)
		f.queryEmbedding([]float32{1, 0})

		results := f.searcher.Search(ctx, "anticoagulation", 0, 10)

		ids := make([]core.ID, len(results))
		for i, r := range results {
			ids[i] = r.DocID
		}
		assert.Contains(t, ids, one.Id)
		assert.Contains(t, ids, two.Id)
		assert.Contains(t, ids, three.Id)

		// No document appears twice.
		seen := make(map[core.ID]int)
		for _, id := range ids {
			seen[id]++
		}
		for id, count := range seen {
			assert.Equal(t, 1, count, "doc %d duplicated", id)
		}

		// Semantic hits come first, in similarity order.
		assert.Equal(t, one.Id, results[0].DocID)
		assert.Equal(t, two.Id, results[1].DocID)
	})

	t.Run("keeps every semantic chunk of one document", func(t *testing.T) {
		f := newSearchFixture(t)
		doc := f.addDoc(t, "Long Guideline", "first section on dosing", core.SpecialtyGeneral, []float32{1, 0})

		second := "second section on monitoring"
		err := f.vectors.InsertVectors(ctx, &core.GuidelineVector{
			Id:       core.IDFromContent(fmt.Sprintf("%d:1:%s", doc.Id, second)),
			DocID:    doc.Id,
			Contents: second,
			Meta: core.ChunkMeta{
				DocID:     doc.Id,
				Title:     doc.Title,
				Source:    core.SourceManual,
				Specialty: core.SpecialtyGeneral,
			},
			Embedding: []float32{0.9, 0.1},
		})
		require.NoError(t, err)
		f.queryEmbedding([]float32{1, 0})

		// Both chunks stay in the semantic portion; the text hit for the
		// same document is the only thing deduplicated away.
		results := f.searcher.Search(ctx, "dosing", 0, 10)
		require.Len(t, results, 2)
		assert.Equal(t, doc.Id, results[0].DocID)
		assert.Equal(t, doc.Id, results[1].DocID)
		assert.Greater(t, results[0].Similarity, results[1].Similarity)
	})

	t.Run("applies the limit after merging", func(t *testing.T) {
		f := newSearchFixture(t)
		for i := 0; i < 5; i++ {
			f.addDoc(t, fmt.Sprintf("Doc %d", i), "repeated keyword dosage", core.SpecialtyGeneral, []float32{1, 0})
		}
		f.queryEmbedding([]float32{1, 0})

		results := f.searcher.Search(ctx, "dosage", 0, 3)
		assert.Len(t, results, 3)
	})

	t.Run("failures surface as an empty list", func(t *testing.T) {
		f := newSearchFixture(t)
		f.embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
			return nil, errors.New("embedding server down")
		}

		results := f.searcher.Search(ctx, "anything", 0, 10)
		assert.NotNil(t, results)
		assert.Empty(t, results)
	})
}

func TestNewSearcherValidation(t *testing.T) {
	lexical, err := bleve.NewMemIndex()
	require.NoError(t, err)
	defer lexical.Close()

	_, vectors, _, backend, err := badger.NewMemoryStore(nil)
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewSearcher(nil, lexical, mock.NewEmbedder())
	assert.ErrorIs(t, err, ErrVectorRepositoryRequired)

	_, err = NewSearcher(vectors, nil, mock.NewEmbedder())
	assert.ErrorIs(t, err, ErrLexicalIndexRequired)

	_, err = NewSearcher(vectors, lexical, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}
