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

package ingestion

import "errors"

var (
	// ErrUnknownSource is returned when no ingester is registered for
	// the requested source.
	ErrUnknownSource = errors.New("no ingester registered for source")

	// ErrSourceNotConfigured is returned when an ingester is asked to
	// run without the configuration it needs.
	ErrSourceNotConfigured = errors.New("source is not configured")

	// ErrFetchFailed wraps transport and decoding failures while
	// fetching from a source.
	ErrFetchFailed = errors.New("failed to fetch from source")
)
