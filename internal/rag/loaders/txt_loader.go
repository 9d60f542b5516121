package loaders

import (
	"context"
	"fmt"
	"unicode/utf8"

	"docbot/internal/rag/interfaces"
	"docbot/internal/rag/schema"
)

// TxtLoader handles plain text and markdown files.
type TxtLoader struct{}

// NewTxtLoader creates a new TxtLoader.
func NewTxtLoader() *TxtLoader {
	return &TxtLoader{}
}

// Load returns the file content as a single segment.
func (l *TxtLoader) Load(ctx context.Context, filename string, data []byte) ([]schema.Segment, error) {
	if !utf8.Valid(data) {
		return nil, &schema.CorruptDocumentError{Filename: filename, Err: fmt.Errorf("content is not valid UTF-8")}
	}
	return []schema.Segment{{Text: string(data)}}, nil
}

var _ interfaces.Loader = (*TxtLoader)(nil)
