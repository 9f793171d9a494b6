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

package badger

import "github.com/carelight/guidelines/storage"

// NewMemoryStore creates in-memory guideline, vector, and refresh log
// repositories for testing. lexical may be nil; when provided, document
// upserts keep it in sync.
// Caller must close the repositories and backend when done.
func NewMemoryStore(lexical storage.LexicalIndex) (storage.GuidelineRepository, storage.VectorRepository, storage.RefreshLogRepository, *Backend, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	guidelineRepo, err := NewGuidelineRepository(backend, lexical)
	if err != nil {
		backend.Close()
		return nil, nil, nil, nil, err
	}

	vectorRepo, err := NewVectorRepository(backend)
	if err != nil {
		guidelineRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	logRepo, err := NewRefreshLogRepository(backend)
	if err != nil {
		vectorRepo.Close()
		guidelineRepo.Close()
		backend.Close()
		return nil, nil, nil, nil, err
	}

	return guidelineRepo, vectorRepo, logRepo, backend, nil
}
