package loaders

import (
	"bytes"
	"context"
	"fmt"

	"github.com/ledongthuc/pdf"

	"docbot/internal/rag/interfaces"
	"docbot/internal/rag/schema"
)

// PdfLoader extracts text from PDF files, one segment per page.
type PdfLoader struct{}

// NewPdfLoader creates a new PdfLoader.
func NewPdfLoader() *PdfLoader {
	return &PdfLoader{}
}

// Load reads a PDF and returns one segment per page with the page number as
// provenance. Pages without extractable text are skipped.
func (l *PdfLoader) Load(ctx context.Context, filename string, data []byte) ([]schema.Segment, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &schema.CorruptDocumentError{Filename: filename, Err: err}
	}

	var segments []schema.Segment
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, &schema.CorruptDocumentError{
				Filename: filename,
				Err:      fmt.Errorf("page %d: %w", i, err),
			}
		}
		if text == "" {
			continue
		}

		segments = append(segments, schema.Segment{
			Text:       text,
			Provenance: fmt.Sprintf("page %d", i),
		})
	}

	return segments, nil
}

var _ interfaces.Loader = (*PdfLoader)(nil)
