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

package storage

import (
	"github.com/carelight/guidelines/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, core.IDMUS.Size(id))
	core.IDMUS.Marshal(id, buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	id, _, err := core.IDMUS.Unmarshal(data)
	return id, err
}

// MarshalGuidelineDoc serializes a GuidelineDoc to bytes.
func MarshalGuidelineDoc(doc *core.GuidelineDoc) []byte {
	buf := make([]byte, core.GuidelineDocMUS.Size(*doc))
	core.GuidelineDocMUS.Marshal(*doc, buf)
	return buf
}

// UnmarshalGuidelineDoc deserializes a GuidelineDoc from bytes.
func UnmarshalGuidelineDoc(data []byte) (*core.GuidelineDoc, error) {
	doc, _, err := core.GuidelineDocMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// MarshalGuidelineVector serializes a GuidelineVector to bytes.
func MarshalGuidelineVector(vector *core.GuidelineVector) []byte {
	buf := make([]byte, core.GuidelineVectorMUS.Size(*vector))
	core.GuidelineVectorMUS.Marshal(*vector, buf)
	return buf
}

// UnmarshalGuidelineVector deserializes a GuidelineVector from bytes.
func UnmarshalGuidelineVector(data []byte) (*core.GuidelineVector, error) {
	vector, _, err := core.GuidelineVectorMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &vector, nil
}

// MarshalRefreshLogEntry serializes a RefreshLogEntry to bytes.
func MarshalRefreshLogEntry(entry *core.RefreshLogEntry) []byte {
	buf := make([]byte, core.RefreshLogEntryMUS.Size(*entry))
	core.RefreshLogEntryMUS.Marshal(*entry, buf)
	return buf
}

// UnmarshalRefreshLogEntry deserializes a RefreshLogEntry from bytes.
func UnmarshalRefreshLogEntry(data []byte) (*core.RefreshLogEntry, error) {
	entry, _, err := core.RefreshLogEntryMUS.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}
