// Copyright 2025 Carelight Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package core

import "fmt"

// ValidateGuidelineDoc validates a GuidelineDoc according to domain rules.
//
// Validation rules:
//   - Title must not be empty
//   - Contents must not be empty
//   - Source must be a real ingestion source (not the synthetic scheduler source)
//   - Specialty must be a known taxonomy value
//   - Metadata must carry the guideline_id key
//
// NOT validated (populated by storage):
//   - ID (0 is valid before the store assigns one)
//   - ContentHash, CreatedAt, LastUpdated (set on upsert)
func ValidateGuidelineDoc(doc *GuidelineDoc) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidGuidelineDoc)
	}

	if doc.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidGuidelineDoc, ErrEmptyTitle)
	}

	if doc.Contents == "" {
		return fmt.Errorf("%w: %w", ErrInvalidGuidelineDoc, ErrEmptyContent)
	}

	if err := ValidateIngestionSource(doc.Source); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidGuidelineDoc, err)
	}

	if _, ok := specialtyNames[doc.Specialty]; !ok {
		return fmt.Errorf("%w: %w: value %d", ErrInvalidGuidelineDoc, ErrInvalidSpecialty, doc.Specialty)
	}

	if doc.Metadata[MetaGuidelineID] == "" {
		return fmt.Errorf("%w: %w", ErrInvalidGuidelineDoc, ErrMissingGuidelineID)
	}

	return nil
}

// ValidateRefreshLogEntry validates a RefreshLogEntry according to domain rules.
//
// Validation rules:
//   - Source must be valid (the synthetic scheduler source is allowed)
//   - Status must be started, completed, or failed
//   - Terminal entries must carry a completion timestamp
func ValidateRefreshLogEntry(entry *RefreshLogEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidRefreshLogEntry)
	}

	if _, ok := sourceNames[entry.Source]; !ok {
		return fmt.Errorf("%w: %w: value %d", ErrInvalidRefreshLogEntry, ErrInvalidSource, entry.Source)
	}

	if _, ok := refreshStatusNames[entry.Status]; !ok {
		return fmt.Errorf("%w: %w: value %d", ErrInvalidRefreshLogEntry, ErrInvalidRefreshStatus, entry.Status)
	}

	if entry.Status != RefreshStarted && entry.CompletedAt.IsZero() {
		return fmt.Errorf("%w: terminal entry missing completion time", ErrInvalidRefreshLogEntry)
	}

	return nil
}

// ValidateIngestionSource validates that a Source is a real ingestion source.
// The synthetic scheduler source is rejected: it exists only for audit entries.
func ValidateIngestionSource(source Source) error {
	if _, ok := sourceNames[source]; !ok || source == SourceScheduler {
		return fmt.Errorf("%w: value %d", ErrInvalidSource, source)
	}
	return nil
}
