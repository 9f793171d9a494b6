package core

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for the stored record types. The set is small
// and stable, so the serializers are composed directly from mus-go's varint,
// ord, and raw serializers instead of going through code generation.

var (
	float32SliceMUS = ord.NewSliceSer[float32](raw.Float32)
	metadataMUS     = ord.NewMapSer[string, string](ord.String, ord.String)
)

// IDMUS serializes IDs as varint-encoded uint64 values.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(id ID, bs []byte) int {
	return varint.Uint64.Marshal(uint64(id), bs)
}

func (idMUS) Unmarshal(bs []byte) (ID, int, error) {
	v, n, err := varint.Uint64.Unmarshal(bs)
	return ID(v), n, err
}

func (idMUS) Size(id ID) int {
	return varint.Uint64.Size(uint64(id))
}

func (idMUS) Skip(bs []byte) (int, error) {
	return varint.Uint64.Skip(bs)
}

// ChunkMetaMUS serializes ChunkMeta values.
var ChunkMetaMUS = chunkMetaMUS{}

type chunkMetaMUS struct{}

func (chunkMetaMUS) Marshal(m ChunkMeta, bs []byte) (n int) {
	n = IDMUS.Marshal(m.DocID, bs)
	n += ord.String.Marshal(m.Title, bs[n:])
	n += varint.Int.Marshal(int(m.Source), bs[n:])
	n += varint.Int.Marshal(int(m.Specialty), bs[n:])
	return n
}

func (chunkMetaMUS) Unmarshal(bs []byte) (m ChunkMeta, n int, err error) {
	var n1 int
	if m.DocID, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if m.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	n += n1
	var v int
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	m.Source = Source(v)
	n += n1
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return m, n + n1, err
	}
	m.Specialty = Specialty(v)
	n += n1
	return m, n, nil
}

func (chunkMetaMUS) Size(m ChunkMeta) (size int) {
	size = IDMUS.Size(m.DocID)
	size += ord.String.Size(m.Title)
	size += varint.Int.Size(int(m.Source))
	size += varint.Int.Size(int(m.Specialty))
	return size
}

func (chunkMetaMUS) Skip(bs []byte) (n int, err error) {
	var n1 int
	if n, err = IDMUS.Skip(bs); err != nil {
		return
	}
	if n1, err = ord.String.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = varint.Int.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	n += n1
	if n1, err = varint.Int.Skip(bs[n:]); err != nil {
		return n + n1, err
	}
	return n + n1, nil
}

// GuidelineDocMUS serializes GuidelineDoc values. Timestamps are stored with
// microsecond precision.
var GuidelineDocMUS = guidelineDocMUS{}

type guidelineDocMUS struct{}

func (guidelineDocMUS) Marshal(d GuidelineDoc, bs []byte) (n int) {
	n = IDMUS.Marshal(d.Id, bs)
	n += ord.String.Marshal(d.Title, bs[n:])
	n += ord.String.Marshal(d.Contents, bs[n:])
	n += varint.Int.Marshal(int(d.Source), bs[n:])
	n += varint.Int.Marshal(int(d.Specialty), bs[n:])
	n += metadataMUS.Marshal(d.Metadata, bs[n:])
	n += varint.Uint64.Marshal(d.ContentHash, bs[n:])
	n += raw.TimeUnixMicro.Marshal(d.LastUpdated, bs[n:])
	n += raw.TimeUnixMicro.Marshal(d.CreatedAt, bs[n:])
	return n
}

func (guidelineDocMUS) Unmarshal(bs []byte) (d GuidelineDoc, n int, err error) {
	var n1 int
	if d.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if d.Title, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.Contents, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	var v int
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	d.Source = Source(v)
	n += n1
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	d.Specialty = Specialty(v)
	n += n1
	if d.Metadata, n1, err = metadataMUS.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.ContentHash, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.LastUpdated, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	if d.CreatedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:]); err != nil {
		return d, n + n1, err
	}
	n += n1
	return d, n, nil
}

func (guidelineDocMUS) Size(d GuidelineDoc) (size int) {
	size = IDMUS.Size(d.Id)
	size += ord.String.Size(d.Title)
	size += ord.String.Size(d.Contents)
	size += varint.Int.Size(int(d.Source))
	size += varint.Int.Size(int(d.Specialty))
	size += metadataMUS.Size(d.Metadata)
	size += varint.Uint64.Size(d.ContentHash)
	size += raw.TimeUnixMicro.Size(d.LastUpdated)
	size += raw.TimeUnixMicro.Size(d.CreatedAt)
	return size
}

// GuidelineVectorMUS serializes GuidelineVector values.
var GuidelineVectorMUS = guidelineVectorMUS{}

type guidelineVectorMUS struct{}

func (guidelineVectorMUS) Marshal(v GuidelineVector, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += IDMUS.Marshal(v.DocID, bs[n:])
	n += ord.String.Marshal(v.Contents, bs[n:])
	n += ChunkMetaMUS.Marshal(v.Meta, bs[n:])
	n += float32SliceMUS.Marshal(v.Embedding, bs[n:])
	return n
}

func (guidelineVectorMUS) Unmarshal(bs []byte) (v GuidelineVector, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.DocID, n1, err = IDMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Contents, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Meta, n1, err = ChunkMetaMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Embedding, n1, err = float32SliceMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (guidelineVectorMUS) Size(v GuidelineVector) (size int) {
	size = IDMUS.Size(v.Id)
	size += IDMUS.Size(v.DocID)
	size += ord.String.Size(v.Contents)
	size += ChunkMetaMUS.Size(v.Meta)
	size += float32SliceMUS.Size(v.Embedding)
	return size
}

// RefreshLogEntryMUS serializes RefreshLogEntry values.
var RefreshLogEntryMUS = refreshLogEntryMUS{}

type refreshLogEntryMUS struct{}

func (refreshLogEntryMUS) Marshal(e RefreshLogEntry, bs []byte) (n int) {
	n = IDMUS.Marshal(e.Id, bs)
	n += varint.Int.Marshal(int(e.Source), bs[n:])
	n += varint.Int.Marshal(int(e.Status), bs[n:])
	n += ord.String.Marshal(e.Message, bs[n:])
	n += varint.Int.Marshal(e.DocumentsUpdated, bs[n:])
	n += raw.TimeUnixMicro.Marshal(e.CompletedAt, bs[n:])
	return n
}

func (refreshLogEntryMUS) Unmarshal(bs []byte) (e RefreshLogEntry, n int, err error) {
	var n1 int
	if e.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	var v int
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	e.Source = Source(v)
	n += n1
	if v, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	e.Status = RefreshStatus(v)
	n += n1
	if e.Message, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.DocumentsUpdated, n1, err = varint.Int.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	if e.CompletedAt, n1, err = raw.TimeUnixMicro.Unmarshal(bs[n:]); err != nil {
		return e, n + n1, err
	}
	n += n1
	return e, n, nil
}

func (refreshLogEntryMUS) Size(e RefreshLogEntry) (size int) {
	size = IDMUS.Size(e.Id)
	size += varint.Int.Size(int(e.Source))
	size += varint.Int.Size(int(e.Status))
	size += ord.String.Size(e.Message)
	size += varint.Int.Size(e.DocumentsUpdated)
	size += raw.TimeUnixMicro.Size(e.CompletedAt)
	return size
}
