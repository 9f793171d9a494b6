package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/carelight/guidelines/core"
)

// Key prefixes for different data types
const (
	guidelineRecordPrefix = "gdlrec"
	guidelineSourcePrefix = "gdlsrc"
	guidelineIDSeq        = "gdlseq"
	vectorRecordPrefix    = "gvcrec"
	refreshLogPrefix      = "rfllog"
	refreshLogIDSeq       = "rflseq"
)

// makeGuidelineKey generates a key for a guideline document by ID.
func makeGuidelineKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", guidelineRecordPrefix, id))
}

// makeGuidelineSourceKey generates a composite key for the
// (source, guideline_id) uniqueness index.
// Format: prefix:source:guidelineID
func makeGuidelineSourceKey(source core.Source, guidelineID string) []byte {
	return []byte(fmt.Sprintf("%s:%d:%s", guidelineSourcePrefix, source, guidelineID))
}

// makeVectorKey generates a composite key for a vector record.
// Format: prefix:docID:vectorID, both BigEndian so vectors of one document
// form a contiguous, ordered key range.
func makeVectorKey(docID, vectorID core.ID) []byte {
	prefix := vectorRecordPrefix + ":"
	buf := make([]byte, len(prefix)+16)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(vectorID))
	return buf
}

// makePartialVectorKey generates the key prefix covering all vectors of one document.
func makePartialVectorKey(docID core.ID) []byte {
	prefix := vectorRecordPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(docID))
	return buf
}

// makeRefreshLogKey generates a key for a refresh log entry.
// BigEndian ID keeps the append-only log in insertion order under iteration.
func makeRefreshLogKey(id core.ID) []byte {
	prefix := refreshLogPrefix + ":"
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}
