package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for stored entities.
// It is generated from database sequences or content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content always produces an identical ID.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ContentHash computes a 64-bit BLAKE2b digest of text.
// Used to detect whether re-ingested guideline content actually changed.
func ContentHash(text string) uint64 {
	return uint64(IDFromContent(text))
}

// Source identifies an authoritative guideline source.
type Source int

const (
	// SourceManual is the curated, statically maintained guideline set.
	SourceManual Source = iota + 1
	// SourceUSPSTF is the US Preventive Services Task Force recommendations API.
	SourceUSPSTF
	// SourceNICE is the NICE syndication dataset (licensed export).
	SourceNICE
	// SourceOpenFDA is the openFDA drug label API.
	SourceOpenFDA
	// SourceScheduler is a synthetic source used only for scheduler audit entries.
	SourceScheduler
)

var sourceNames = map[Source]string{
	SourceManual:    "manual",
	SourceUSPSTF:    "uspstf",
	SourceNICE:      "nice",
	SourceOpenFDA:   "openfda",
	SourceScheduler: "scheduler",
}

func (s Source) String() string {
	if name, ok := sourceNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseSource converts a source name to its Source value.
func ParseSource(name string) (Source, error) {
	for source, n := range sourceNames {
		if n == name {
			return source, nil
		}
	}
	return 0, ErrInvalidSource
}

// IngestionSources lists the sources that have ingesters, in their
// canonical processing order.
var IngestionSources = []Source{SourceManual, SourceUSPSTF, SourceNICE, SourceOpenFDA}

// Specialty is a fixed-taxonomy medical category used for filtering.
type Specialty int

const (
	SpecialtyGeneral Specialty = iota + 1
	SpecialtyCardiology
	SpecialtyEndocrinology
	SpecialtyRheumatology
	SpecialtyOncology
	SpecialtyInfectiousDisease
	SpecialtyNeurology
	SpecialtyPsychiatry
	SpecialtyPulmonology
	SpecialtyNephrology
)

var specialtyNames = map[Specialty]string{
	SpecialtyGeneral:           "general",
	SpecialtyCardiology:        "cardiology",
	SpecialtyEndocrinology:     "endocrinology",
	SpecialtyRheumatology:      "rheumatology",
	SpecialtyOncology:          "oncology",
	SpecialtyInfectiousDisease: "infectious_disease",
	SpecialtyNeurology:         "neurology",
	SpecialtyPsychiatry:        "psychiatry",
	SpecialtyPulmonology:       "pulmonology",
	SpecialtyNephrology:        "nephrology",
}

func (s Specialty) String() string {
	if name, ok := specialtyNames[s]; ok {
		return name
	}
	return "unknown"
}

// ParseSpecialty converts a specialty name to its Specialty value.
func ParseSpecialty(name string) (Specialty, error) {
	for specialty, n := range specialtyNames {
		if n == name {
			return specialty, nil
		}
	}
	return 0, ErrInvalidSpecialty
}

// Well-known metadata keys on guideline documents.
const (
	MetaGuidelineID     = "guideline_id"
	MetaGrade           = "grade"
	MetaPublicationDate = "publication_date"
	MetaOrganization    = "organization"
	MetaURL             = "url"
)

// GuidelineDoc is one authoritative clinical recommendation record.
// The pair (Source, Metadata["guideline_id"]) identifies a logical guideline;
// re-ingesting the same guideline updates the existing record in place.
type GuidelineDoc struct {
	Id          ID
	Title       string
	Contents    string // Normalized plain/markup text
	Source      Source
	Specialty   Specialty
	Metadata    map[string]string // grade, publication date, organization, URL, guideline_id
	ContentHash uint64            // BLAKE2b digest of Contents, set on upsert
	LastUpdated time.Time
	CreatedAt   time.Time
}

// GuidelineID returns the source-specific guideline identifier from metadata.
func (d *GuidelineDoc) GuidelineID() string {
	return d.Metadata[MetaGuidelineID]
}

// ChunkMeta carries the identifying fields of a chunk's parent document.
type ChunkMeta struct {
	DocID     ID
	Title     string
	Source    Source
	Specialty Specialty
}

// TextChunk is a bounded text segment of a document, the unit of embedding.
// Chunks are ephemeral: produced by the chunker and consumed immediately by
// the embedding pipeline, never persisted standalone.
type TextChunk struct {
	Contents string
	Meta     ChunkMeta
}

// GuidelineVector is one embedded chunk of a guideline document.
// For a given DocID the stored vector set always reflects the current
// chunking of the document's current content.
type GuidelineVector struct {
	Id        ID // Content-based, deterministic per (doc, chunk position, text)
	DocID     ID
	Contents  string // Chunk text, stored for retrieval display
	Meta      ChunkMeta
	Embedding []float32
}

// IngestionResult reports the outcome of one ingester run.
type IngestionResult struct {
	Success            bool
	DocumentsProcessed int
	DocumentsUpdated   int
	Errors             []string
}

// OverallIngestionResult aggregates the outcome of running all configured ingesters.
type OverallIngestionResult struct {
	Success                 bool
	Results                 map[Source]*IngestionResult
	TotalDocumentsProcessed int
	TotalDocumentsUpdated   int
	Errors                  []string
}

// RefreshStatus is the lifecycle state of a refresh log entry.
type RefreshStatus int

const (
	RefreshStarted RefreshStatus = iota + 1
	RefreshCompleted
	RefreshFailed
)

var refreshStatusNames = map[RefreshStatus]string{
	RefreshStarted:   "started",
	RefreshCompleted: "completed",
	RefreshFailed:    "failed",
}

func (s RefreshStatus) String() string {
	if name, ok := refreshStatusNames[s]; ok {
		return name
	}
	return "unknown"
}

// RefreshLogEntry is one record in the append-only refresh audit trail.
type RefreshLogEntry struct {
	Id               ID
	Source           Source
	Status           RefreshStatus
	Message          string
	DocumentsUpdated int
	CompletedAt      time.Time // Zero for started entries
}

// ScheduleStatus is a point-in-time view of the refresh scheduler.
type ScheduleStatus struct {
	NextRun   time.Time
	LastRun   time.Time // Zero when no completed refresh exists
	IsDue     bool
	IsRunning bool
}

// SearchResult is one semantic similarity hit.
type SearchResult struct {
	Id         ID // Vector row ID
	DocID      ID
	Contents   string
	Meta       ChunkMeta
	Similarity float32
}

// TextSearchResult is one lexical/full-text hit over guideline documents.
type TextSearchResult struct {
	DocID     ID
	Title     string
	Contents  string
	Source    Source
	Specialty Specialty
	Score     float64
}

// CombinedSearchResult holds the two parallel result lists of a combined search.
// TotalResults is their summed count, not deduplicated.
type CombinedSearchResult struct {
	Semantic     []*SearchResult
	Text         []*TextSearchResult
	TotalResults int
}
