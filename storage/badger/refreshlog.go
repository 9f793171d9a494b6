package badger

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/carelight/guidelines/core"
	"github.com/carelight/guidelines/storage"
)

// RefreshLogRepository implements storage.RefreshLogRepository for BadgerDB.
// The log is append-only; entries are never mutated after insertion.
type RefreshLogRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.RefreshLogRepository = (*RefreshLogRepository)(nil)

// NewRefreshLogRepository creates a new RefreshLogRepository.
func NewRefreshLogRepository(backend *Backend) (*RefreshLogRepository, error) {
	idSeq, err := backend.GetSequence(refreshLogIDSeq)
	if err != nil {
		return nil, err
	}

	return &RefreshLogRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *RefreshLogRepository) Close() error {
	return r.idSeq.Release()
}

// AppendRefreshLog appends an entry to the audit trail.
func (r *RefreshLogRepository) AppendRefreshLog(ctx context.Context, entry *core.RefreshLogEntry) (*core.RefreshLogEntry, error) {
	if err := core.ValidateRefreshLogEntry(entry); err != nil {
		return nil, err
	}

	stored := *entry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
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

		key := makeRefreshLogKey(stored.Id)
		if err := tx.Set(key, storage.MarshalRefreshLogEntry(&stored)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// LatestCompletedRefreshLog returns the most recent completed entry, or nil.
// Entry keys are BigEndian sequence IDs, so a forward scan visits entries in
// insertion order; the last completed one wins.
func (r *RefreshLogRepository) LatestCompletedRefreshLog(ctx context.Context) (*core.RefreshLogEntry, error) {
	var latest *core.RefreshLogEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(refreshLogPrefix + ":")
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var entry *core.RefreshLogEntry
			err := iter.Item().Value(func(val []byte) error {
				var err error
				entry, err = storage.UnmarshalRefreshLogEntry(val)
				return err
			})
			if err != nil {
				return err
			}
			if entry.Status == core.RefreshCompleted {
				latest = entry
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return latest, nil
}
