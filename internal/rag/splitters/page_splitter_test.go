package splitters

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/rag/schema"
)

func TestNewPageSplitterValidation(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		overlap int
		wantErr bool
	}{
		{name: "valid", size: 100, overlap: 20, wantErr: false},
		{name: "zero overlap", size: 100, overlap: 0, wantErr: false},
		{name: "zero size", size: 0, overlap: 0, wantErr: true},
		{name: "negative overlap", size: 100, overlap: -1, wantErr: true},
		{name: "overlap equals size", size: 100, overlap: 100, wantErr: true},
		{name: "overlap exceeds size", size: 100, overlap: 150, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewPageSplitter(tt.size, tt.overlap)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, s)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, s)
			}
		})
	}
}

func TestSplitCoversAllText(t *testing.T) {
	s, err := NewPageSplitter(10, 4)
	require.NoError(t, err)

	text := "abcdefghijklmnopqrstuvwxy" // 25 runes
	pages := []*schema.Page{{Number: 1, Text: text}}

	chunks, err := s.Split(context.Background(), "terms.pdf", pages)
	require.NoError(t, err)
	require.Len(t, chunks, 4)

	// step = 10 - 4 = 6, windows start at 0, 6, 12, 18
	assert.Equal(t, "abcdefghij", chunks[0].Text)
	assert.Equal(t, "ghijklmnop", chunks[1].Text)
	assert.Equal(t, "mnopqrstuv", chunks[2].Text)
	assert.Equal(t, "stuvwxy", chunks[3].Text)

	// Each adjacent pair shares the overlap region.
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1].Text)
		tail := string(prev[len(prev)-4:])
		assert.True(t, strings.HasPrefix(chunks[i].Text, tail),
			"chunk %d should start with the previous chunk's tail", i)
	}
}

func TestSplitShortPageSingleChunk(t *testing.T) {
	s, err := NewPageSplitter(1200, 200)
	require.NoError(t, err)

	pages := []*schema.Page{{Number: 3, Text: "short page"}}
	chunks, err := s.Split(context.Background(), "contract.pdf", pages)
	require.NoError(t, err)
	require.Len(t, chunks, 1)

	assert.Equal(t, "short page", chunks[0].Text)
	assert.Equal(t, schema.ChunkKindText, chunks[0].Kind)
	assert.Equal(t, 3, chunks[0].Provenance.PageStart)
	assert.Equal(t, 3, chunks[0].Provenance.PageEnd)
	assert.Equal(t, "contract.pdf", chunks[0].Provenance.Document)
}

func TestSplitSkipsEmptyPages(t *testing.T) {
	s, err := NewPageSplitter(100, 10)
	require.NoError(t, err)

	pages := []*schema.Page{
		{Number: 1, Text: "page one"},
		{Number: 2, Text: ""},
		{Number: 3, Text: "page three"},
	}
	chunks, err := s.Split(context.Background(), "doc.pdf", pages)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, 1, chunks[0].Provenance.PageStart)
	assert.Equal(t, 3, chunks[1].Provenance.PageStart)
}

func TestSplitTableBecomesOwnChunk(t *testing.T) {
	s, err := NewPageSplitter(20, 5)
	require.NoError(t, err)

	table := "name | price\nwidget | 10\ngadget | 20"
	pages := []*schema.Page{{
		Number: 2,
		Text:   "The price list follows below on this page.",
		Tables: []string{table},
	}}

	chunks, err := s.Split(context.Background(), "pricing.pdf", pages)
	require.NoError(t, err)
	require.True(t, len(chunks) > 1)

	last := chunks[len(chunks)-1]
	assert.Equal(t, schema.ChunkKindTable, last.Kind)
	assert.Equal(t, table, last.Text, "table blocks must not be split")
	for _, c := range chunks[:len(chunks)-1] {
		assert.Equal(t, schema.ChunkKindText, c.Kind)
	}
}

func TestSplitDeterministicIDs(t *testing.T) {
	s, err := NewPageSplitter(15, 5)
	require.NoError(t, err)

	pages := []*schema.Page{
		{Number: 1, Text: "the first page of running text"},
		{Number: 2, Text: "the second page of running text"},
	}

	first, err := s.Split(context.Background(), "report.pdf", pages)
	require.NoError(t, err)
	second, err := s.Split(context.Background(), "report.pdf", pages)
	require.NoError(t, err)

	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
}

func TestSplitPageSubsetReproducesIDs(t *testing.T) {
	s, err := NewPageSplitter(15, 5)
	require.NoError(t, err)

	page1 := &schema.Page{Number: 1, Text: "page one body text goes here"}
	page2 := &schema.Page{Number: 2, Text: "page two body text goes here"}

	full, err := s.Split(context.Background(), "manual.pdf", []*schema.Page{page1, page2})
	require.NoError(t, err)
	partial, err := s.Split(context.Background(), "manual.pdf", []*schema.Page{page2})
	require.NoError(t, err)

	fullIDs := make(map[string]bool, len(full))
	for _, c := range full {
		if c.Provenance.PageStart == 2 {
			fullIDs[c.ID] = true
		}
	}
	require.Equal(t, len(fullIDs), len(partial))
	for _, c := range partial {
		assert.True(t, fullIDs[c.ID],
			"re-splitting a page subset must reproduce the full-run IDs")
	}
}

func TestSplitDistinctLocationsDistinctIDs(t *testing.T) {
	s, err := NewPageSplitter(10, 0)
	require.NoError(t, err)

	pages := []*schema.Page{
		{Number: 1, Text: "identical contents on both pages"},
		{Number: 2, Text: "identical contents on both pages"},
	}
	chunks, err := s.Split(context.Background(), "dup.pdf", pages)
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, c := range chunks {
		assert.False(t, seen[c.ID], "chunk IDs must be unique across locations")
		seen[c.ID] = true
	}
}

func TestSplitCancelledContext(t *testing.T) {
	s, err := NewPageSplitter(100, 10)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = s.Split(ctx, "doc.pdf", []*schema.Page{{Number: 1, Text: "text"}})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDetectClause(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"Section 4.2 Limitation of liability applies when", "Section 4.2"},
		{"  clause 12 notwithstanding the foregoing", "clause 12"},
		{"Article 3.1.4 of this agreement", "Article 3.1.4"},
		{"PART 7 GENERAL PROVISIONS", "PART 7"},
		{"ordinary text without any label", ""},
		{"see Section 4.2 for details", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, detectClause(tt.text), "text: %q", tt.text)
	}
}
