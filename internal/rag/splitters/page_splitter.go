package splitters

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/schema"
)

// clausePattern matches a leading section label such as "Section 4.2",
// "Clause 12" or "Article 3.1.4".
var clausePattern = regexp.MustCompile(`(?i)^\s*((?:section|clause|article|part)\s+\d+(?:\.\d+)*)`)

// PageSplitter cuts page records into chunks using a fixed character window
// with overlap. Windows never cross a page boundary, so a chunk's identity
// depends only on its own page's content; re-embedding a page subset
// reproduces exactly the IDs a full ingestion would have produced for those
// pages. Table blocks become one chunk each and are never split.
type PageSplitter struct {
	ChunkSize    int
	ChunkOverlap int
}

// NewPageSplitter validates the policy and creates a splitter. The overlap
// must be strictly smaller than the chunk size so that the window advances.
func NewPageSplitter(chunkSize, chunkOverlap int) (*PageSplitter, error) {
	if chunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	if chunkOverlap < 0 || chunkOverlap >= chunkSize {
		return nil, fmt.Errorf("chunk overlap must be in [0, chunkSize), got %d", chunkOverlap)
	}
	return &PageSplitter{ChunkSize: chunkSize, ChunkOverlap: chunkOverlap}, nil
}

// Split produces the chunks for one document. Empty pages are skipped
// entirely rather than producing empty chunks. Chunk IDs are deterministic in
// (document, page, sequence within page).
func (s *PageSplitter) Split(ctx context.Context, document string, pages []*schema.Page) ([]*schema.Chunk, error) {
	var chunks []*schema.Chunk

	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if page.Empty() {
			continue
		}

		seq := 0

		for _, window := range windows([]rune(page.Text), s.ChunkSize, s.ChunkOverlap) {
			text := strings.TrimSpace(string(window))
			if text == "" {
				continue
			}
			chunks = append(chunks, s.newChunk(document, page.Number, seq, schema.ChunkKindText, text))
			seq++
		}

		for _, table := range page.Tables {
			if strings.TrimSpace(table) == "" {
				continue
			}
			chunks = append(chunks, s.newChunk(document, page.Number, seq, schema.ChunkKindTable, table))
			seq++
		}
	}

	return chunks, nil
}

func (s *PageSplitter) newChunk(document string, pageNumber, seq int, kind schema.ChunkKind, text string) *schema.Chunk {
	return &schema.Chunk{
		ID:   schema.ChunkID(document, pageNumber, pageNumber, seq),
		Kind: kind,
		Text: text,
		Provenance: schema.Provenance{
			Document:  document,
			PageStart: pageNumber,
			PageEnd:   pageNumber,
			Clause:    detectClause(text),
		},
	}
}

// windows cuts runes into slices of at most size, each consecutive pair
// sharing overlap runes, so every rune lands in at least one window and each
// overlapping region in exactly two adjacent windows.
func windows(runes []rune, size, overlap int) [][]rune {
	if len(runes) == 0 {
		return nil
	}

	step := size - overlap
	var out [][]rune
	for start := 0; ; start += step {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, runes[start:end])
		if end == len(runes) {
			break
		}
	}
	return out
}

// detectClause returns the section label a chunk opens with, if any.
func detectClause(text string) string {
	m := clausePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.Join(strings.Fields(m[1]), " ")
}

var _ interfaces.Splitter = (*PageSplitter)(nil)
