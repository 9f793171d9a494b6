package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/carelight/guidelines/core"
)

// Orchestrator fans ingestion out across the registered sources. One
// failing source never prevents the others from running: IngestAll
// records the failure and moves on.
type Orchestrator struct {
	ingesters map[core.Source]Ingester
	logger    *slog.Logger
}

func NewOrchestrator(logger *slog.Logger, ingesters ...Ingester) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	o := &Orchestrator{
		ingesters: make(map[core.Source]Ingester, len(ingesters)),
		logger:    logger.With("component", "orchestrator"),
	}
	for _, ing := range ingesters {
		o.ingesters[ing.Source()] = ing
	}
	return o
}

// Sources returns the registered sources in canonical processing order.
func (o *Orchestrator) Sources() []core.Source {
	var sources []core.Source
	for _, source := range core.IngestionSources {
		if _, ok := o.ingesters[source]; ok {
			sources = append(sources, source)
		}
	}
	return sources
}

// IngestAll runs every registered, configured ingester in canonical
// order. Unconfigured sources are skipped without affecting the overall
// outcome; a source that fails outright is recorded as a failed result
// and the remaining sources still run.
func (o *Orchestrator) IngestAll(ctx context.Context) (*core.OverallIngestionResult, error) {
	overall := &core.OverallIngestionResult{
		Success: true,
		Results: make(map[core.Source]*core.IngestionResult),
	}

	for _, source := range o.Sources() {
		ing := o.ingesters[source]
		if !ing.Configured() {
			o.logger.Info("skipping unconfigured source", "source", source.String())
			continue
		}

		result, err := ing.Ingest(ctx)
		if err != nil {
			o.logger.Error("source ingestion failed", "source", source.String(), "error", err)
			overall.Success = false
			overall.Errors = append(overall.Errors, fmt.Sprintf("%s: %v", source.String(), err))
			overall.Results[source] = &core.IngestionResult{
				Success: false,
				Errors:  []string{err.Error()},
			}
			continue
		}

		overall.Results[source] = result
		overall.TotalDocumentsProcessed += result.DocumentsProcessed
		overall.TotalDocumentsUpdated += result.DocumentsUpdated
		if !result.Success {
			overall.Success = false
			for _, e := range result.Errors {
				overall.Errors = append(overall.Errors, fmt.Sprintf("%s: %s", source.String(), e))
			}
		}
	}

	o.logger.Info("ingestion pass finished",
		"sources", len(overall.Results),
		"processed", overall.TotalDocumentsProcessed,
		"updated", overall.TotalDocumentsUpdated,
		"success", overall.Success)

	return overall, nil
}

// IngestSource runs a single source and fails fast: unknown and
// unconfigured sources are errors here, unlike in IngestAll.
func (o *Orchestrator) IngestSource(ctx context.Context, source core.Source) (*core.IngestionResult, error) {
	ing, ok := o.ingesters[source]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSource, source.String())
	}
	if !ing.Configured() {
		return nil, fmt.Errorf("%w: %s", ErrSourceNotConfigured, source.String())
	}
	return ing.Ingest(ctx)
}
