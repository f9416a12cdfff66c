package extractors

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"docqa/internal/rag/interfaces"
	"docqa/internal/rag/schema"
	"docqa/pkg/logger"
)

// cellGapFactor is the horizontal gap, in multiples of the font size, that
// separates two fragments into distinct table cells.
const cellGapFactor = 2.0

// minTableCells is the minimum number of cells in a row for it to count as a
// table row rather than spaced running text.
const minTableCells = 3

// PDFExtractor reads PDF bytes into page records. Extraction is best-effort
// per page: a page that cannot be read yields an empty record and a warning,
// never a failure. Only a document that cannot be opened at all fails.
type PDFExtractor struct {
	log *logger.Logger
}

// NewPDFExtractor creates a new PDFExtractor.
func NewPDFExtractor(log *logger.Logger) *PDFExtractor {
	return &PDFExtractor{log: log}
}

// Extract returns one Page per requested 1-based page number, or every page
// when pages is empty. Page numbers outside the document are ignored.
func (e *PDFExtractor) Extract(ctx context.Context, raw []byte, pages []int) ([]*schema.Page, error) {
	reader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", schema.ErrExtraction, err)
	}

	total := reader.NumPage()
	wanted := pageSet(pages, total)

	var out []*schema.Page
	for i := 1; i <= total; i++ {
		if !wanted[i] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		page := reader.Page(i)
		if page.V.IsNull() {
			e.log.Warn(fmt.Sprintf("Page %d is missing from the PDF structure, yielding empty text", i))
			out = append(out, &schema.Page{Number: i})
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			e.log.Warn(fmt.Sprintf("Failed to extract text from page %d: %v", i, err))
			text = ""
		}

		var tables []string
		rows, err := page.GetTextByRow()
		if err != nil {
			e.log.Warn(fmt.Sprintf("Failed to extract rows from page %d: %v", i, err))
		} else {
			tables = tableBlocks(rows)
		}

		out = append(out, &schema.Page{
			Number: i,
			Text:   strings.TrimSpace(text),
			Tables: tables,
		})
	}

	return out, nil
}

// pageSet expands the requested page list into a membership set, defaulting
// to all pages when the list is empty.
func pageSet(pages []int, total int) map[int]bool {
	wanted := make(map[int]bool, total)
	if len(pages) == 0 {
		for i := 1; i <= total; i++ {
			wanted[i] = true
		}
		return wanted
	}
	for _, p := range pages {
		if p >= 1 && p <= total {
			wanted[p] = true
		}
	}
	return wanted
}

// tableBlocks detects table-like regions from row-ordered text fragments.
// A row whose fragments split into minTableCells or more cells (separated by
// horizontal gaps larger than cellGapFactor font sizes) is treated as a table
// row; consecutive table rows merge into one block, cells joined by " | ".
func tableBlocks(rows pdf.Rows) []string {
	var blocks []string
	var current []string

	flush := func() {
		// A lone table-looking row is more likely a header line; a block
		// needs at least two rows.
		if len(current) >= 2 {
			blocks = append(blocks, strings.Join(current, "\n"))
		}
		current = nil
	}

	for _, row := range rows {
		cells := rowCells(row.Content)
		if len(cells) >= minTableCells {
			current = append(current, strings.Join(cells, " | "))
			continue
		}
		flush()
	}
	flush()

	return blocks
}

// rowCells splits one row's fragments into cells on large horizontal gaps.
func rowCells(texts []pdf.Text) []string {
	var cells []string
	var cell strings.Builder
	var prevEnd float64

	for i, t := range texts {
		if i > 0 {
			gap := t.X - prevEnd
			threshold := cellGapFactor * t.FontSize
			if threshold <= 0 {
				threshold = cellGapFactor
			}
			if gap > threshold {
				if s := strings.TrimSpace(cell.String()); s != "" {
					cells = append(cells, s)
				}
				cell.Reset()
			}
		}
		cell.WriteString(t.S)
		prevEnd = t.X + t.W
	}
	if s := strings.TrimSpace(cell.String()); s != "" {
		cells = append(cells, s)
	}
	return cells
}

var _ interfaces.Extractor = (*PDFExtractor)(nil)
