package loaders

import (
	"bytes"
	"context"
	"strings"

	"github.com/unidoc/unioffice/v2/document"

	"docbot/internal/rag/interfaces"
	"docbot/internal/rag/schema"
)

// DocxLoader extracts text from Word (.docx) files.
type DocxLoader struct{}

// NewDocxLoader creates a new DocxLoader.
func NewDocxLoader() *DocxLoader {
	return &DocxLoader{}
}

// Load reads a .docx file and returns its paragraph text as a single
// segment. Word documents carry no reliable page boundaries at this level,
// so provenance is left empty.
func (l *DocxLoader) Load(ctx context.Context, filename string, data []byte) ([]schema.Segment, error) {
	doc, err := document.Read(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, &schema.CorruptDocumentError{Filename: filename, Err: err}
	}
	defer doc.Close()

	var sb strings.Builder
	for _, p := range doc.Paragraphs() {
		for _, r := range p.Runs() {
			sb.WriteString(r.Text())
		}
		sb.WriteString("\n")
	}

	text := strings.TrimSpace(sb.String())
	if text == "" {
		return nil, nil
	}
	return []schema.Segment{{Text: text}}, nil
}

var _ interfaces.Loader = (*DocxLoader)(nil)
