package badger

import (
	"context"
	"slices"

	"github.com/dgraph-io/badger/v4"

	"github.com/carelight/guidelines/core"
	"github.com/carelight/guidelines/storage"
)

// VectorRepository implements storage.VectorRepository for BadgerDB.
// Similarity search is a brute-force scan over all stored vectors; the corpus
// is a few thousand chunks at most, which keeps the scan well under query
// latency budgets.
type VectorRepository struct {
	backend *Backend
}

var _ storage.VectorRepository = (*VectorRepository)(nil)

// NewVectorRepository creates a new VectorRepository.
func NewVectorRepository(backend *Backend) (*VectorRepository, error) {
	return &VectorRepository{backend: backend}, nil
}

// Close releases resources. VectorRepository has no resources to release.
func (r *VectorRepository) Close() error {
	return nil
}

// DeleteVectorsByDoc removes all vectors belonging to a document.
func (r *VectorRepository) DeleteVectorsByDoc(ctx context.Context, docID core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialVectorKey(docID)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)

		var keys [][]byte
		for iter.Rewind(); iter.Valid(); iter.Next() {
			keys = append(keys, iter.Item().KeyCopy(nil))
		}
		iter.Close()

		for _, key := range keys {
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// InsertVectors stores the given vectors.
func (r *VectorRepository) InsertVectors(ctx context.Context, vectors ...*core.GuidelineVector) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, vector := range vectors {
			key := makeVectorKey(vector.DocID, vector.Id)
			if err := tx.Set(key, storage.MarshalGuidelineVector(vector)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetVectorsByDoc retrieves all vectors for a document, ordered by ID.
func (r *VectorRepository) GetVectorsByDoc(ctx context.Context, docID core.ID) ([]*core.GuidelineVector, error) {
	var vectors []*core.GuidelineVector
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialVectorKey(docID)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var vector *core.GuidelineVector
			err := iter.Item().Value(func(val []byte) error {
				var err error
				vector, err = storage.UnmarshalGuidelineVector(val)
				return err
			})
			if err != nil {
				return err
			}
			vectors = append(vectors, vector)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return vectors, nil
}

// SimilaritySearch finds vectors similar to the query embedding.
// Stored embeddings are normalized on insert, so the dot product equals
// cosine similarity.
func (r *VectorRepository) SimilaritySearch(ctx context.Context, embedding []float32, specialty core.Specialty, limit int) ([]*core.SearchResult, error) {
	if limit <= 0 {
		return nil, storage.ErrInvalidQuery
	}

	var results []*core.SearchResult
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(vectorRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var vector *core.GuidelineVector
			err := iter.Item().Value(func(val []byte) error {
				var err error
				vector, err = storage.UnmarshalGuidelineVector(val)
				return err
			})
			if err != nil {
				return err
			}
			if len(vector.Embedding) == 0 {
				continue
			}
			if specialty != 0 && vector.Meta.Specialty != specialty {
				continue
			}

			results = append(results, &core.SearchResult{
				Id:         vector.Id,
				DocID:      vector.DocID,
				Contents:   vector.Contents,
				Meta:       vector.Meta,
				Similarity: dotProduct(embedding, vector.Embedding),
			})
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.SearchResult) int {
		if a.Similarity > b.Similarity {
			return -1
		}
		if a.Similarity < b.Similarity {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

// dotProduct calculates the dot product of two vectors.
func dotProduct(a, b []float32) float32 {
	var sum float32
	minLen := len(a)
	if len(b) < minLen {
		minLen = len(b)
	}
	for i := 0; i < minLen; i++ {
		sum += a[i] * b[i]
	}
	return sum
}
