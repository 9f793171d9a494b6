package bleve

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelight/guidelines/core"
	"github.com/carelight/guidelines/storage"
)

func indexedDoc(id core.ID, title, contents string, specialty core.Specialty) *core.GuidelineDoc {
	return &core.GuidelineDoc{
		Id:        id,
		Title:     title,
		Contents:  contents,
		Source:    core.SourceManual,
		Specialty: specialty,
		Metadata:  map[string]string{core.MetaGuidelineID: title},
	}
}

func TestLexicalSearch(t *testing.T) {
	idx, err := NewMemIndex()
	require.NoError(t, err)
	defer idx.Close()

	ctx := context.Background()

	require.NoError(t, idx.Index(ctx, indexedDoc(1, "Statin Therapy",
		"Statin therapy is recommended for adults with elevated cardiovascular risk.",
		core.SpecialtyCardiology)))
	require.NoError(t, idx.Index(ctx, indexedDoc(2, "Metformin Dosing",
		"Metformin is first-line therapy for type 2 diabetes.",
		core.SpecialtyEndocrinology)))

	t.Run("matches on content", func(t *testing.T) {
		results, err := idx.Search(ctx, "metformin diabetes", 10)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, core.ID(2), results[0].DocID)
		assert.Equal(t, "Metformin Dosing", results[0].Title)
		assert.Equal(t, core.SpecialtyEndocrinology, results[0].Specialty)
		assert.Greater(t, results[0].Score, 0.0)
	})

	t.Run("matches on title", func(t *testing.T) {
		results, err := idx.Search(ctx, "statin", 10)
		require.NoError(t, err)
		require.NotEmpty(t, results)
		assert.Equal(t, core.ID(1), results[0].DocID)
	})

	t.Run("no hits for unrelated query", func(t *testing.T) {
		results, err := idx.Search(ctx, "zirconium", 10)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("re-index replaces previous entry", func(t *testing.T) {
		require.NoError(t, idx.Index(ctx, indexedDoc(2, "Metformin Dosing",
			"Updated guidance: metformin remains first-line therapy.",
			core.SpecialtyEndocrinology)))

		results, err := idx.Search(ctx, "metformin", 10)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Contains(t, results[0].Contents, "Updated guidance")
	})

	t.Run("zero ID rejected", func(t *testing.T) {
		err := idx.Index(ctx, indexedDoc(0, "Bad", "Bad", core.SpecialtyGeneral))
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})

	t.Run("non-positive limit rejected", func(t *testing.T) {
		_, err := idx.Search(ctx, "statin", 0)
		assert.ErrorIs(t, err, storage.ErrInvalidQuery)
	})
}
