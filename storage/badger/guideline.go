package badger

import (
	"context"
	"slices"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/carelight/guidelines/core"
	"github.com/carelight/guidelines/storage"
)

// GuidelineRepository implements storage.GuidelineRepository for BadgerDB.
// When a lexical index is provided, upserts keep it in sync with the stored
// documents.
type GuidelineRepository struct {
	backend *Backend
	lexical storage.LexicalIndex
	idSeq   *badger.Sequence
}

var _ storage.GuidelineRepository = (*GuidelineRepository)(nil)

// NewGuidelineRepository creates a new GuidelineRepository.
// lexical may be nil when full-text search is not needed.
func NewGuidelineRepository(backend *Backend, lexical storage.LexicalIndex) (*GuidelineRepository, error) {
	idSeq, err := backend.GetSequence(guidelineIDSeq)
	if err != nil {
		return nil, err
	}

	return &GuidelineRepository{
		backend: backend,
		lexical: lexical,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *GuidelineRepository) Close() error {
	return r.idSeq.Release()
}

// UpsertGuideline creates or updates a document keyed by (source, guideline_id).
func (r *GuidelineRepository) UpsertGuideline(ctx context.Context, doc *core.GuidelineDoc) (*core.GuidelineDoc, bool, error) {
	if err := core.ValidateGuidelineDoc(doc); err != nil {
		return nil, false, err
	}

	stored := *doc
	stored.ContentHash = core.ContentHash(doc.Contents)

	var changed bool
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		now := time.Now().UTC()
		sourceKey := makeGuidelineSourceKey(doc.Source, doc.GuidelineID())

		old, err := r.lookupBySourceKey(tx, sourceKey)
		if err != nil {
			return err
		}

		if old == nil {
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			stored.Id = core.ID(nextID)
			stored.CreatedAt = now
			stored.LastUpdated = now
			changed = true

			if err := tx.Set(sourceKey, storage.MarshalID(stored.Id)); err != nil {
				return err
			}
		} else {
			stored.Id = old.Id
			stored.CreatedAt = old.CreatedAt
			changed = old.ContentHash != stored.ContentHash
			if changed {
				stored.LastUpdated = now
			} else {
				stored.LastUpdated = old.LastUpdated
			}
		}

		if err := tx.Set(makeGuidelineKey(stored.Id), storage.MarshalGuidelineDoc(&stored)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, false, err
	}

	if r.lexical != nil && changed {
		if err := r.lexical.Index(ctx, &stored); err != nil {
			return nil, false, err
		}
	}

	return &stored, changed, nil
}

// GetGuideline retrieves a single document by ID.
func (r *GuidelineRepository) GetGuideline(ctx context.Context, id core.ID) (*core.GuidelineDoc, error) {
	var doc *core.GuidelineDoc
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		doc, err = readGuideline(tx, makeGuidelineKey(id))
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, storage.ErrNotFound
	}
	return doc, nil
}

// GetAllGuidelines retrieves every stored document, ordered by ID.
func (r *GuidelineRepository) GetAllGuidelines(ctx context.Context) ([]*core.GuidelineDoc, error) {
	var docs []*core.GuidelineDoc
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(guidelineRecordPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var doc *core.GuidelineDoc
			err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalGuidelineDoc(val)
				return err
			})
			if err != nil {
				return err
			}
			docs = append(docs, doc)
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	// Primary keys are formatted decimal IDs, so iteration order is
	// lexicographic, not numeric.
	slices.SortFunc(docs, func(a, b *core.GuidelineDoc) int {
		switch {
		case a.Id < b.Id:
			return -1
		case a.Id > b.Id:
			return 1
		}
		return 0
	})
	return docs, nil
}

// lookupBySourceKey resolves the (source, guideline_id) index to a document.
// Returns nil when the logical guideline has never been stored.
func (r *GuidelineRepository) lookupBySourceKey(tx *badger.Txn, sourceKey []byte) (*core.GuidelineDoc, error) {
	item, err := tx.Get(sourceKey)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var id core.ID
	if err := item.Value(func(val []byte) error {
		var err error
		id, err = storage.UnmarshalID(val)
		return err
	}); err != nil {
		return nil, err
	}

	return readGuideline(tx, makeGuidelineKey(id))
}

// readGuideline reads a document by key, returning nil when absent.
func readGuideline(tx *badger.Txn, key []byte) (*core.GuidelineDoc, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var doc *core.GuidelineDoc
	if err := item.Value(func(val []byte) error {
		var err error
		doc, err = storage.UnmarshalGuidelineDoc(val)
		return err
	}); err != nil {
		return nil, err
	}
	return doc, nil
}
