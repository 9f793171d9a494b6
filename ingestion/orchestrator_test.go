package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carelight/guidelines/core"
)

// fakeIngester is a scriptable Ingester for orchestration tests.
type fakeIngester struct {
	source     core.Source
	configured bool
	result     *core.IngestionResult
	err        error
	calls      int
}

func (f *fakeIngester) Source() core.Source { return f.source }
func (f *fakeIngester) Configured() bool    { return f.configured }

func (f *fakeIngester) Ingest(context.Context) (*core.IngestionResult, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func okIngester(source core.Source, processed, updated int) *fakeIngester {
	return &fakeIngester{
		source:     source,
		configured: true,
		result: &core.IngestionResult{
			Success:            true,
			DocumentsProcessed: processed,
			DocumentsUpdated:   updated,
		},
	}
}

func TestOrchestratorIngestAll(t *testing.T) {
	ctx := context.Background()

	t.Run("aggregates across sources", func(t *testing.T) {
		manual := okIngester(core.SourceManual, 5, 5)
		uspstf := okIngester(core.SourceUSPSTF, 3, 1)
		orch := NewOrchestrator(nil, manual, uspstf)

		overall, err := orch.IngestAll(ctx)
		require.NoError(t, err)

		assert.True(t, overall.Success)
		assert.Equal(t, 8, overall.TotalDocumentsProcessed)
		assert.Equal(t, 6, overall.TotalDocumentsUpdated)
		assert.Len(t, overall.Results, 2)
		assert.Equal(t, 1, manual.calls)
		assert.Equal(t, 1, uspstf.calls)
	})

	t.Run("one failing source does not block the rest", func(t *testing.T) {
		manual := okIngester(core.SourceManual, 5, 5)
		uspstf := &fakeIngester{
			source:     core.SourceUSPSTF,
			configured: true,
			err:        errors.New("upstream down"),
		}
		openfda := okIngester(core.SourceOpenFDA, 2, 2)
		orch := NewOrchestrator(nil, manual, uspstf, openfda)

		overall, err := orch.IngestAll(ctx)
		require.NoError(t, err)

		assert.False(t, overall.Success)
		require.Len(t, overall.Errors, 1)
		assert.Contains(t, overall.Errors[0], "uspstf")

		// both healthy sources still ran
		assert.Equal(t, 1, manual.calls)
		assert.Equal(t, 1, openfda.calls)
		assert.Equal(t, 7, overall.TotalDocumentsProcessed)

		require.Contains(t, overall.Results, core.SourceUSPSTF)
		assert.False(t, overall.Results[core.SourceUSPSTF].Success)
		assert.True(t, overall.Results[core.SourceManual].Success)
	})

	t.Run("skips unconfigured sources", func(t *testing.T) {
		manual := okIngester(core.SourceManual, 5, 5)
		nice := &fakeIngester{source: core.SourceNICE, configured: false}
		orch := NewOrchestrator(nil, manual, nice)

		overall, err := orch.IngestAll(ctx)
		require.NoError(t, err)

		assert.True(t, overall.Success)
		assert.Zero(t, nice.calls)
		assert.NotContains(t, overall.Results, core.SourceNICE)
	})

	t.Run("runs sources in canonical order", func(t *testing.T) {
		var order []core.Source
		orch := NewOrchestrator(nil,
			&orderRecordingIngester{source: core.SourceOpenFDA, order: &order},
			&orderRecordingIngester{source: core.SourceManual, order: &order},
			&orderRecordingIngester{source: core.SourceUSPSTF, order: &order},
		)

		_, err := orch.IngestAll(ctx)
		require.NoError(t, err)
		assert.Equal(t, []core.Source{core.SourceManual, core.SourceUSPSTF, core.SourceOpenFDA}, order)
	})
}

type orderRecordingIngester struct {
	source core.Source
	order  *[]core.Source
}

func (o *orderRecordingIngester) Source() core.Source { return o.source }
func (o *orderRecordingIngester) Configured() bool    { return true }

func (o *orderRecordingIngester) Ingest(context.Context) (*core.IngestionResult, error) {
	*o.order = append(*o.order, o.source)
	return &core.IngestionResult{Success: true}, nil
}

func TestOrchestratorIngestSource(t *testing.T) {
	ctx := context.Background()

	t.Run("runs the requested source", func(t *testing.T) {
		manual := okIngester(core.SourceManual, 5, 5)
		orch := NewOrchestrator(nil, manual)

		result, err := orch.IngestSource(ctx, core.SourceManual)
		require.NoError(t, err)
		assert.Equal(t, 5, result.DocumentsProcessed)
	})

	t.Run("unknown source is an error", func(t *testing.T) {
		orch := NewOrchestrator(nil)
		_, err := orch.IngestSource(ctx, core.SourceUSPSTF)
		assert.ErrorIs(t, err, ErrUnknownSource)
	})

	t.Run("unconfigured source is an error", func(t *testing.T) {
		nice := &fakeIngester{source: core.SourceNICE, configured: false}
		orch := NewOrchestrator(nil, nice)
		_, err := orch.IngestSource(ctx, core.SourceNICE)
		assert.ErrorIs(t, err, ErrSourceNotConfigured)
		assert.Zero(t, nice.calls)
	})
}
