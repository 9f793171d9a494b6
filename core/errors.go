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

import "errors"

// Domain validation errors
var (
	// ErrInvalidGuidelineDoc indicates a GuidelineDoc failed validation.
	ErrInvalidGuidelineDoc = errors.New("invalid guideline document")

	// ErrInvalidRefreshLogEntry indicates a RefreshLogEntry failed validation.
	ErrInvalidRefreshLogEntry = errors.New("invalid refresh log entry")

	// ErrInvalidSource indicates an unrecognized Source value or name.
	ErrInvalidSource = errors.New("invalid source")

	// ErrInvalidSpecialty indicates an unrecognized Specialty value or name.
	ErrInvalidSpecialty = errors.New("invalid specialty")

	// ErrInvalidRefreshStatus indicates an invalid RefreshStatus value.
	ErrInvalidRefreshStatus = errors.New("invalid refresh status")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyContent indicates the Contents field is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrMissingGuidelineID indicates metadata lacks the guideline_id key.
	ErrMissingGuidelineID = errors.New("metadata must carry guideline_id")
)
