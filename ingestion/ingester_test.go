package ingestion

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelight/guidelines/core"
	"github.com/carelight/guidelines/storage"
	"github.com/carelight/guidelines/storage/badger"
)

func newTestStore(t *testing.T) (storage.GuidelineRepository, storage.RefreshLogRepository) {
	t.Helper()
	docs, _, logs, backend, err := badger.NewMemoryStore(nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backend.Close() })
	return docs, logs
}

func TestManualIngester(t *testing.T) {
	ctx := context.Background()

	t.Run("ingests curated set", func(t *testing.T) {
		docs, logs := newTestStore(t)
		ing := NewManualIngester(docs, logs, nil)

		result, err := ing.Ingest(ctx)
		require.NoError(t, err)

		assert.True(t, result.Success)
		assert.Empty(t, result.Errors)
		assert.Equal(t, len(curatedGuidelines()), result.DocumentsProcessed)
		assert.Equal(t, len(curatedGuidelines()), result.DocumentsUpdated)

		stored, err := docs.GetAllGuidelines(ctx)
		require.NoError(t, err)
		assert.Len(t, stored, len(curatedGuidelines()))
		for _, doc := range stored {
			assert.Equal(t, core.SourceManual, doc.Source)
			assert.NotEmpty(t, doc.GuidelineID())
		}
	})

	t.Run("second pass updates nothing", func(t *testing.T) {
		docs, logs := newTestStore(t)
		ing := NewManualIngester(docs, logs, nil)

		_, err := ing.Ingest(ctx)
		require.NoError(t, err)

		result, err := ing.Ingest(ctx)
		require.NoError(t, err)

		assert.True(t, result.Success)
		assert.Equal(t, len(curatedGuidelines()), result.DocumentsProcessed)
		assert.Zero(t, result.DocumentsUpdated)
	})

	t.Run("writes refresh log entries", func(t *testing.T) {
		docs, logs := newTestStore(t)
		ing := NewManualIngester(docs, logs, nil)

		_, err := ing.Ingest(ctx)
		require.NoError(t, err)

		latest, err := logs.LatestCompletedRefreshLog(ctx)
		require.NoError(t, err)
		require.NotNil(t, latest)
		assert.Equal(t, core.RefreshCompleted, latest.Status)
		assert.Equal(t, core.SourceManual, latest.Source)
		assert.Equal(t, len(curatedGuidelines()), latest.DocumentsUpdated)
		assert.False(t, latest.CompletedAt.IsZero())
	})

	t.Run("always configured", func(t *testing.T) {
		docs, logs := newTestStore(t)
		ing := NewManualIngester(docs, logs, nil)
		assert.True(t, ing.Configured())
		assert.Equal(t, core.SourceManual, ing.Source())
	})
}

func TestBaseRunRecordsPayloadErrors(t *testing.T) {
	ctx := context.Background()
	docs, logs := newTestStore(t)
	b := newBase(core.SourceManual, docs, logs, nil)

	result, err := b.run(ctx, func(context.Context) ([]Payload, error) {
		return []Payload{
			{
				Title:     "Valid Guideline",
				Contents:  "Some recommendation text.",
				Specialty: core.SpecialtyGeneral,
				Metadata:  map[string]string{core.MetaGuidelineID: "valid-1"},
			},
			{
				// missing guideline_id, fails validation
				Title:     "Broken Guideline",
				Contents:  "Text without identity.",
				Specialty: core.SpecialtyGeneral,
			},
		}, nil
	})
	require.NoError(t, err)

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.DocumentsProcessed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Broken Guideline")

	// the pass ended in a failed entry, so no completed refresh exists
	latest, err := logs.LatestCompletedRefreshLog(ctx)
	require.NoError(t, err)
	assert.Nil(t, latest)
}
