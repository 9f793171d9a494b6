// Copyright 2025 Carelight Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package refresh

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/carelight/guidelines/core"
	"github.com/carelight/guidelines/ingestion"
	"github.com/carelight/guidelines/reembed"
	"github.com/carelight/guidelines/storage"
)

// StaleAfter is how long a corpus may go without a completed refresh
// before it counts as stale.
const StaleAfter = 30 * 24 * time.Hour

// DefaultSources are the sources a scheduled refresh covers: everything
// that can run without a license.
var DefaultSources = []core.Source{core.SourceManual, core.SourceUSPSTF, core.SourceOpenFDA}

// Scheduler drives periodic corpus refreshes. Only one refresh runs at
// a time within the process; a trigger that arrives while one is in
// flight is silently dropped. The scheduler does not coordinate across
// processes.
type Scheduler struct {
	orchestrator *ingestion.Orchestrator
	pipeline     *reembed.Pipeline
	log          storage.RefreshLogRepository
	running      atomic.Bool
	now          func() time.Time
	logger       *slog.Logger
}

// Option configures a Scheduler.
type Option func(*Scheduler) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scheduler) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithClock replaces the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) error {
		if now != nil {
			s.now = now
		}
		return nil
	}
}

// NewScheduler creates a refresh scheduler.
func NewScheduler(orchestrator *ingestion.Orchestrator, pipeline *reembed.Pipeline, log storage.RefreshLogRepository, opts ...Option) (*Scheduler, error) {
	if orchestrator == nil {
		return nil, ErrOrchestratorRequired
	}
	if pipeline == nil {
		return nil, ErrPipelineRequired
	}
	if log == nil {
		return nil, ErrRefreshLogRequired
	}

	s := &Scheduler{
		orchestrator: orchestrator,
		pipeline:     pipeline,
		log:          log,
		now:          time.Now,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	s.logger = s.logger.With("component", "refresh_scheduler")
	return s, nil
}

// IsRefreshDue reports whether the corpus is stale. It fails open: when
// the refresh log cannot be read, or has no completed entry, a refresh
// is due.
func (s *Scheduler) IsRefreshDue(ctx context.Context) bool {
	latest, err := s.log.LatestCompletedRefreshLog(ctx)
	if err != nil {
		s.logger.Warn("could not read refresh log, assuming refresh is due", "error", err)
		return true
	}
	if latest == nil {
		return true
	}
	return s.now().Sub(latest.CompletedAt) > StaleAfter
}

// RunScheduledRefresh refreshes the given sources, or DefaultSources
// when none are given. If another refresh is already in flight the call
// is a no-op and returns nil. Per-source failures accumulate; the
// remaining sources still run. When any documents changed, the whole
// corpus is re-embedded afterwards.
func (s *Scheduler) RunScheduledRefresh(ctx context.Context, sources ...core.Source) error {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Info("refresh already in progress, skipping")
		return nil
	}
	defer s.running.Store(false)

	if len(sources) == 0 {
		sources = DefaultSources
	}

	start := s.now()
	s.appendLog(ctx, core.RefreshStarted, fmt.Sprintf("refresh started for %d sources", len(sources)), 0)
	s.logger.Info("refresh started", "sources", len(sources))

	var errs []string
	updated := 0
	for _, source := range sources {
		result, err := s.orchestrator.IngestSource(ctx, source)
		if err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", source.String(), err))
			continue
		}
		updated += result.DocumentsUpdated
		if !result.Success {
			for _, e := range result.Errors {
				errs = append(errs, fmt.Sprintf("%s: %s", source.String(), e))
			}
		}
	}

	if updated > 0 {
		embedResult, err := s.pipeline.ProcessAllGuidelines(ctx)
		if err != nil {
			errs = append(errs, fmt.Sprintf("embedding: %v", err))
		} else {
			errs = append(errs, embedResult.Errors...)
		}
	}

	duration := s.now().Sub(start)
	status := core.RefreshCompleted
	message := fmt.Sprintf("refreshed %d sources in %s, %d documents updated", len(sources), duration.Round(time.Millisecond), updated)
	if len(errs) > 0 {
		status = core.RefreshFailed
		message = fmt.Sprintf("%s; errors: %s", message, strings.Join(errs, "; "))
	}
	s.appendLog(ctx, status, message, updated)

	s.logger.Info("refresh finished", "duration", duration, "updated", updated, "errors", len(errs))

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrRefreshFailed, strings.Join(errs, "; "))
	}
	return nil
}

// TriggerManualRefresh runs a refresh on demand. It follows the same
// path as a scheduled run, including the single-flight guard.
func (s *Scheduler) TriggerManualRefresh(ctx context.Context, sources ...core.Source) error {
	return s.RunScheduledRefresh(ctx, sources...)
}

// Status reports the scheduler's current view: when the next scheduled
// run falls, when the last completed refresh happened, and whether the
// corpus is stale.
func (s *Scheduler) Status(ctx context.Context) *core.ScheduleStatus {
	status := &core.ScheduleStatus{
		NextRun:   nextScheduledRun(s.now()),
		IsDue:     s.IsRefreshDue(ctx),
		IsRunning: s.running.Load(),
	}

	latest, err := s.log.LatestCompletedRefreshLog(ctx)
	if err == nil && latest != nil {
		status.LastRun = latest.CompletedAt
	}
	return status
}

func (s *Scheduler) appendLog(ctx context.Context, status core.RefreshStatus, message string, updated int) {
	entry := &core.RefreshLogEntry{
		Source:           core.SourceScheduler,
		Status:           status,
		Message:          message,
		DocumentsUpdated: updated,
	}
	if status != core.RefreshStarted {
		entry.CompletedAt = s.now()
	}
	if _, err := s.log.AppendRefreshLog(ctx, entry); err != nil {
		s.logger.Warn("failed to append refresh log entry", "status", status.String(), "error", err)
	}
}
