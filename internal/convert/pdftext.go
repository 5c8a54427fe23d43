package convert

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"docqa/internal/domain"
)

var _ domain.Converter = (*PDFTextConverter)(nil)

// PDFTextConverter is a local text-only fallback converter. It extracts
// plain text with no tables, pictures or HTML, for setups without a
// conversion service. The structured export degrades to a minimal JSON
// object holding the per-page text.
type PDFTextConverter struct{}

// NewPDFTextConverter creates the local fallback converter.
func NewPDFTextConverter() *PDFTextConverter {
	return &PDFTextConverter{}
}

// Convert extracts plain text from the PDF page by page.
func (c *PDFTextConverter) Convert(ctx context.Context, pdfPath string, opts domain.ConvertOptions) (*domain.Conversion, error) {
	f, reader, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	var pages []string
	var sb strings.Builder
	total := reader.NumPage()
	for i := 1; i <= total; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// a single unreadable page does not fail the document
			continue
		}
		pages = append(pages, text)
		sb.WriteString(text)
		sb.WriteString("\n")
	}

	doc, err := json.Marshal(map[string]any{"pages": pages})
	if err != nil {
		return nil, fmt.Errorf("marshal doc: %w", err)
	}
	return &domain.Conversion{Text: sb.String(), Doc: doc}, nil
}
