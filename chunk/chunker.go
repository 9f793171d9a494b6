package chunk

import (
	"strings"

	"github.com/carelight/guidelines/core"
)

const (
	// DefaultMaxTokens is the estimated-token budget for one chunk.
	DefaultMaxTokens = 500

	// DefaultOverlapTokens is the estimated-token budget for the sentence
	// overlap carried into the next chunk.
	DefaultOverlapTokens = 50

	// charsPerToken is the character-to-token approximation used instead of
	// exact tokenization. A real tokenizer can be substituted without
	// changing the chunk-boundary contract.
	charsPerToken = 4
)

// Chunker splits guideline content into overlapping, token-bounded segments.
// It is deterministic and side-effect free.
type Chunker struct {
	maxTokens     int
	overlapTokens int
}

// NewChunker creates a chunker with the given size and overlap budgets,
// both in estimated tokens.
func NewChunker(maxTokens, overlapTokens int) *Chunker {
	if maxTokens < 1 {
		maxTokens = DefaultMaxTokens
	}
	if overlapTokens < 0 {
		overlapTokens = DefaultOverlapTokens
	}
	return &Chunker{
		maxTokens:     maxTokens,
		overlapTokens: overlapTokens,
	}
}

// DefaultChunker creates a chunker with the default budgets.
func DefaultChunker() *Chunker {
	return NewChunker(DefaultMaxTokens, DefaultOverlapTokens)
}

// EstimateTokens approximates the token count of text.
func EstimateTokens(text string) int {
	return len(text) / charsPerToken
}

// Chunk splits a document's content into bounded, overlapping segments.
// Content is split on blank-line paragraph boundaries; paragraphs accumulate
// into a chunk until the next one would push it over the size budget, at
// which point the chunk is closed and the next chunk starts with trailing
// whole sentences of the closed chunk as overlap. A trailing partial chunk
// is always flushed; a single oversized paragraph is still emitted.
func (c *Chunker) Chunk(doc *core.GuidelineDoc) []core.TextChunk {
	paragraphs := splitParagraphs(doc.Contents)
	if len(paragraphs) == 0 {
		return nil
	}

	meta := core.ChunkMeta{
		DocID:     doc.Id,
		Title:     doc.Title,
		Source:    doc.Source,
		Specialty: doc.Specialty,
	}

	var chunks []core.TextChunk
	var current strings.Builder

	flush := func() string {
		text := current.String()
		current.Reset()
		if text == "" {
			return ""
		}
		chunks = append(chunks, core.TextChunk{Contents: text, Meta: meta})
		return text
	}

	for _, paragraph := range paragraphs {
		if current.Len() > 0 && EstimateTokens(current.String())+EstimateTokens(paragraph) > c.maxTokens {
			closed := flush()
			if overlap := c.trailingSentences(closed); overlap != "" {
				current.WriteString(overlap)
			}
		}
		if current.Len() > 0 {
			current.WriteString("\n\n")
		}
		current.WriteString(paragraph)
	}
	flush()

	return chunks
}

// splitParagraphs splits text into blank-line separated blocks, dropping
// empty ones.
func splitParagraphs(text string) []string {
	blocks := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n\n")
	paragraphs := make([]string, 0, len(blocks))
	for _, block := range blocks {
		block = strings.TrimSpace(block)
		if block != "" {
			paragraphs = append(paragraphs, block)
		}
	}
	return paragraphs
}

// trailingSentences returns whole sentences from the end of text, up to the
// overlap budget. Returns "" when even the last sentence exceeds the budget.
func (c *Chunker) trailingSentences(text string) string {
	sentences := splitSentences(text)

	var overlap string
	for i := len(sentences) - 1; i >= 0; i-- {
		candidate := sentences[i]
		if overlap != "" {
			candidate = candidate + " " + overlap
		}
		if EstimateTokens(candidate) > c.overlapTokens {
			break
		}
		overlap = candidate
	}
	return overlap
}

// splitSentences splits text on sentence-terminating punctuation followed by
// whitespace. The terminator stays attached to its sentence.
func splitSentences(text string) []string {
	var sentences []string
	start := 0
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '.' && runes[i] != '!' && runes[i] != '?' {
			continue
		}
		if i+1 < len(runes) && !isSpace(runes[i+1]) {
			continue
		}
		sentence := strings.TrimSpace(string(runes[start : i+1]))
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		start = i + 1
	}
	if tail := strings.TrimSpace(string(runes[start:])); tail != "" {
		sentences = append(sentences, tail)
	}
	return sentences
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
