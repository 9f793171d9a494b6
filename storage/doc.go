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

// Package storage provides the storage abstraction layer for the guideline
// retrieval pipeline.
//
// This package defines repository interfaces that decouple storage
// implementation from business logic:
//
//   - GuidelineRepository: guideline document CRUD with idempotent upsert
//   - VectorRepository: chunk embedding storage and similarity search
//   - RefreshLogRepository: the append-only refresh audit trail
//   - LexicalIndex: full-text search over documents
//
// The badger subpackage implements the three repositories on BadgerDB; the
// bleve subpackage implements LexicalIndex. Consumers depend only on the
// interfaces here, so alternative backends can be substituted (tests use
// in-memory instances of both).
//
// All repository implementations must be thread-safe and support concurrent
// access from multiple goroutines.
package storage
