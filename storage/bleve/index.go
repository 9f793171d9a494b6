package bleve

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/carelight/guidelines/core"
	"github.com/carelight/guidelines/storage"
)

// Index implements storage.LexicalIndex using Bleve full-text search.
type Index struct {
	index bleve.Index
}

var _ storage.LexicalIndex = (*Index)(nil)

func indexMapping() *mapping.IndexMappingImpl {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so clinical terms
	// match exactly as typed.
	textFieldMapping.Analyzer = standard.Name
	textFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("content", textFieldMapping)
	docMapping.AddFieldMappingsAt("title", textFieldMapping)

	keywordFieldMapping := bleve.NewKeywordFieldMapping()
	keywordFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("source", keywordFieldMapping)
	docMapping.AddFieldMappingsAt("specialty", keywordFieldMapping)

	im.DefaultMapping = docMapping
	return im
}

// NewIndex creates or opens a Bleve index at path.
// An existing index is opened and reused so that unchanged documents are not
// re-indexed across process restarts.
func NewIndex(path string) (*Index, error) {
	if _, err := os.Stat(path); err == nil {
		index, openErr := bleve.Open(path)
		if openErr != nil {
			return nil, fmt.Errorf("failed to open lexical index: %w", openErr)
		}
		return &Index{index: index}, nil
	}

	index, err := bleve.New(path, indexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create lexical index: %w", err)
	}
	return &Index{index: index}, nil
}

// NewMemIndex creates an in-memory index for testing.
func NewMemIndex() (*Index, error) {
	index, err := bleve.NewMemOnly(indexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory lexical index: %w", err)
	}
	return &Index{index: index}, nil
}

// Close closes the underlying Bleve index.
func (idx *Index) Close() error {
	return idx.index.Close()
}

// Index adds or replaces a guideline document in the full-text index.
// The Bleve document ID is the store-assigned guideline ID, so re-indexing an
// updated document replaces its previous entry.
func (idx *Index) Index(ctx context.Context, doc *core.GuidelineDoc) error {
	if doc.Id == 0 {
		return storage.ErrInvalidQuery
	}
	return idx.index.Index(strconv.FormatUint(uint64(doc.Id), 10), map[string]any{
		"title":     doc.Title,
		"content":   doc.Contents,
		"source":    doc.Source.String(),
		"specialty": doc.Specialty.String(),
	})
}

// Search runs a match query over title and content.
func (idx *Index) Search(ctx context.Context, query string, limit int) ([]*core.TextSearchResult, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	req := bleve.NewSearchRequest(bleve.NewMatchQuery(query))
	req.Size = limit
	req.Fields = []string{"title", "content", "source", "specialty"}

	res, err := idx.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, err
	}

	results := make([]*core.TextSearchResult, 0, len(res.Hits))
	for _, hit := range res.Hits {
		docID, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("unexpected lexical index key %q: %w", hit.ID, err)
		}

		result := &core.TextSearchResult{
			DocID: core.ID(docID),
			Score: hit.Score,
		}
		if title, ok := hit.Fields["title"].(string); ok {
			result.Title = title
		}
		if content, ok := hit.Fields["content"].(string); ok {
			result.Contents = content
		}
		if sourceName, ok := hit.Fields["source"].(string); ok {
			if source, err := core.ParseSource(sourceName); err == nil {
				result.Source = source
			}
		}
		if specialtyName, ok := hit.Fields["specialty"].(string); ok {
			if specialty, err := core.ParseSpecialty(specialtyName); err == nil {
				result.Specialty = specialty
			}
		}
		results = append(results, result)
	}
	return results, nil
}
