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

// Package ai provides the embedding abstraction used by the guideline
// retrieval pipeline.
//
// The pipeline depends only on the Embedder interface defined here, so
// embedding providers can be swapped without touching business logic. Two
// implementation sub-packages are included:
//
//   - ai/openai: production implementation for OpenAI-compatible APIs
//   - ai/mock: deterministic test doubles with behavior injection
//
// Production constructors return the Embedder interface to enforce
// abstraction; mock constructors return concrete types so tests can inject
// behavior and assert call counts.
package ai
