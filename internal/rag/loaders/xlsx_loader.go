package loaders

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"docbot/internal/rag/interfaces"
	"docbot/internal/rag/schema"
)

// XlsxLoader extracts text from Excel (.xlsx) files, one segment per sheet.
type XlsxLoader struct{}

// NewXlsxLoader creates a new XlsxLoader.
func NewXlsxLoader() *XlsxLoader {
	return &XlsxLoader{}
}

// Load renders each sheet as a Markdown table and returns it as a segment
// with the sheet name as provenance. Empty sheets are skipped.
func (l *XlsxLoader) Load(ctx context.Context, filename string, data []byte) ([]schema.Segment, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &schema.CorruptDocumentError{Filename: filename, Err: err}
	}
	defer f.Close()

	var segments []schema.Segment
	for _, sheetName := range f.GetSheetList() {
		rows, err := f.GetRows(sheetName)
		if err != nil || len(rows) == 0 {
			continue
		}

		var sb strings.Builder
		sb.WriteString("| " + strings.Join(rows[0], " | ") + " |\n")
		sb.WriteString("|" + strings.Repeat(" --- |", len(rows[0])) + "\n")
		for _, row := range rows[1:] {
			sb.WriteString("| " + strings.Join(row, " | ") + " |\n")
		}

		segments = append(segments, schema.Segment{
			Text:       sb.String(),
			Provenance: fmt.Sprintf("sheet %s", sheetName),
		})
	}

	return segments, nil
}

var _ interfaces.Loader = (*XlsxLoader)(nil)
