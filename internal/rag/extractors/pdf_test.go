package extractors

import (
	"context"
	"testing"

	"github.com/ledongthuc/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docqa/internal/rag/schema"
	"docqa/pkg/logger"
)

// frag builds one row fragment at position x with width w.
func frag(s string, x, w float64) pdf.Text {
	return pdf.Text{S: s, X: x, W: w, FontSize: 10}
}

// row builds one row of fragments.
func row(texts ...pdf.Text) *pdf.Row {
	return &pdf.Row{Content: texts}
}

func TestExtractRejectsGarbage(t *testing.T) {
	e := NewPDFExtractor(logger.New("test", ""))

	_, err := e.Extract(context.Background(), []byte("not a pdf at all"), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrExtraction)
}

func TestPageSet(t *testing.T) {
	tests := []struct {
		name  string
		pages []int
		total int
		want  map[int]bool
	}{
		{
			name:  "empty selects all",
			pages: nil,
			total: 3,
			want:  map[int]bool{1: true, 2: true, 3: true},
		},
		{
			name:  "subset",
			pages: []int{2},
			total: 3,
			want:  map[int]bool{2: true},
		},
		{
			name:  "out of range ignored",
			pages: []int{0, 2, 99, -1},
			total: 3,
			want:  map[int]bool{2: true},
		},
		{
			name:  "duplicates collapse",
			pages: []int{1, 1, 3},
			total: 3,
			want:  map[int]bool{1: true, 3: true},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, pageSet(tt.pages, tt.total))
		})
	}
}

func TestRowCellsSplitsOnLargeGaps(t *testing.T) {
	// Gaps of 30pt at a 10pt font exceed the 2x font size threshold.
	texts := []pdf.Text{
		frag("name", 0, 20),
		frag("price", 50, 25),
		frag("stock", 105, 25),
	}
	assert.Equal(t, []string{"name", "price", "stock"}, rowCells(texts))
}

func TestRowCellsMergesAdjacentFragments(t *testing.T) {
	// Fragments 2pt apart belong to the same cell.
	texts := []pdf.Text{
		frag("lim", 0, 15),
		frag("itation", 17, 30),
		frag("of liability", 90, 50),
	}
	assert.Equal(t, []string{"limitation", "of liability"}, rowCells(texts))
}

func TestRowCellsEmpty(t *testing.T) {
	assert.Nil(t, rowCells(nil))
	assert.Nil(t, rowCells([]pdf.Text{frag("   ", 0, 10)}))
}

func TestTableBlocksNeedsConsecutiveRows(t *testing.T) {
	tableRow := func(a, b, c string) *pdf.Row {
		return row(frag(a, 0, 20), frag(b, 60, 20), frag(c, 120, 20))
	}
	textRow := func(s string) *pdf.Row {
		return row(frag(s, 0, 200))
	}

	t.Run("two consecutive rows form a block", func(t *testing.T) {
		blocks := tableBlocks(pdf.Rows{
			tableRow("name", "price", "stock"),
			tableRow("widget", "10", "4"),
			textRow("Prices are quoted in euros."),
		})
		require.Len(t, blocks, 1)
		assert.Equal(t, "name | price | stock\nwidget | 10 | 4", blocks[0])
	})

	t.Run("a lone row is not a table", func(t *testing.T) {
		blocks := tableBlocks(pdf.Rows{
			textRow("Running text before."),
			tableRow("a", "b", "c"),
			textRow("Running text after."),
		})
		assert.Empty(t, blocks)
	})

	t.Run("separated blocks stay separate", func(t *testing.T) {
		blocks := tableBlocks(pdf.Rows{
			tableRow("a", "b", "c"),
			tableRow("d", "e", "f"),
			textRow("An interleaved paragraph."),
			tableRow("g", "h", "i"),
			tableRow("j", "k", "l"),
		})
		require.Len(t, blocks, 2)
		assert.Equal(t, "a | b | c\nd | e | f", blocks[0])
		assert.Equal(t, "g | h | i\nj | k | l", blocks[1])
	})

	t.Run("no rows", func(t *testing.T) {
		assert.Empty(t, tableBlocks(nil))
	})
}
