package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/carelight/guidelines/core"
	"github.com/carelight/guidelines/storage"
)

// Payload is a single guideline document as fetched from a source,
// before it has been assigned an ID or persisted.
type Payload struct {
	Title     string
	Contents  string
	Specialty core.Specialty
	Metadata  map[string]string
}

// Ingester fetches guideline documents from one source and persists them.
type Ingester interface {
	// Source identifies which authority this ingester covers.
	Source() core.Source

	// Configured reports whether the ingester has everything it needs
	// to run. Unconfigured ingesters are skipped by the orchestrator.
	Configured() bool

	// Ingest fetches the source's documents and upserts them. Per-document
	// failures are recorded in the result rather than returned; an error
	// return means the ingester could not run at all.
	Ingest(ctx context.Context) (*core.IngestionResult, error)
}

// base carries the persistence plumbing shared by every ingester. Each
// concrete ingester supplies a fetch function and delegates the rest
// (validation, upsert, refresh logging) to run.
type base struct {
	source core.Source
	docs   storage.GuidelineRepository
	log    storage.RefreshLogRepository
	logger *slog.Logger
}

func newBase(source core.Source, docs storage.GuidelineRepository, log storage.RefreshLogRepository, logger *slog.Logger) base {
	if logger == nil {
		logger = slog.Default()
	}
	return base{
		source: source,
		docs:   docs,
		log:    log,
		logger: logger.With("component", "ingester", "source", source.String()),
	}
}

// run executes one ingestion pass: fetch payloads, upsert each one, and
// bracket the pass with refresh log entries. A payload that fails to
// validate or persist is recorded in the result and skipped; the pass
// continues with the remaining payloads.
func (b *base) run(ctx context.Context, fetch func(ctx context.Context) ([]Payload, error)) (*core.IngestionResult, error) {
	b.appendLog(ctx, core.RefreshStarted, "ingestion started", 0)

	result := &core.IngestionResult{Success: true}

	payloads, err := fetch(ctx)
	if err != nil {
		result.Success = false
		result.Errors = append(result.Errors, err.Error())
		b.appendLog(ctx, core.RefreshFailed, err.Error(), 0)
		b.logger.Error("fetch failed", "error", err)
		return result, nil
	}

	for _, p := range payloads {
		doc := &core.GuidelineDoc{
			Title:     p.Title,
			Contents:  p.Contents,
			Source:    b.source,
			Specialty: p.Specialty,
			Metadata:  p.Metadata,
		}

		if err := core.ValidateGuidelineDoc(doc); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", p.Title, err))
			continue
		}

		_, changed, err := b.docs.UpsertGuideline(ctx, doc)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", p.Title, err))
			continue
		}

		result.DocumentsProcessed++
		if changed {
			result.DocumentsUpdated++
		}
	}

	if len(result.Errors) > 0 {
		result.Success = false
	}

	status := core.RefreshCompleted
	message := fmt.Sprintf("processed %d documents, %d updated", result.DocumentsProcessed, result.DocumentsUpdated)
	if !result.Success {
		status = core.RefreshFailed
		message = fmt.Sprintf("%s, %d errors", message, len(result.Errors))
	}
	b.appendLog(ctx, status, message, result.DocumentsUpdated)

	b.logger.Info("ingestion finished",
		"processed", result.DocumentsProcessed,
		"updated", result.DocumentsUpdated,
		"errors", len(result.Errors))

	return result, nil
}

func (b *base) appendLog(ctx context.Context, status core.RefreshStatus, message string, updated int) {
	entry := &core.RefreshLogEntry{
		Source:           b.source,
		Status:           status,
		Message:          message,
		DocumentsUpdated: updated,
	}
	if status != core.RefreshStarted {
		entry.CompletedAt = time.Now()
	}
	if _, err := b.log.AppendRefreshLog(ctx, entry); err != nil {
		b.logger.Warn("failed to append refresh log entry", "status", status.String(), "error", err)
	}
}
