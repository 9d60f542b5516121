package loaders

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"docbot/internal/rag/interfaces"
	"docbot/internal/rag/schema"
)

// csvRowsPerSegment bounds how many data rows share one provenance-tagged
// segment, so a large table does not collapse into a single huge segment.
const csvRowsPerSegment = 100

// CsvLoader handles delimited tabular files.
type CsvLoader struct{}

// NewCsvLoader creates a new CsvLoader.
func NewCsvLoader() *CsvLoader {
	return &CsvLoader{}
}

// Load parses the CSV and renders windows of rows as text segments. The
// header row is repeated at the top of every segment so each window stays
// interpretable on its own, and provenance records the covered row range.
func (l *CsvLoader) Load(ctx context.Context, filename string, data []byte) ([]schema.Segment, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, &schema.CorruptDocumentError{Filename: filename, Err: err}
	}
	if len(records) == 0 {
		return nil, nil
	}

	header := strings.Join(records[0], ", ")
	rows := records[1:]
	if len(rows) == 0 {
		return []schema.Segment{{Text: header, Provenance: "row 1"}}, nil
	}

	var segments []schema.Segment
	for start := 0; start < len(rows); start += csvRowsPerSegment {
		end := start + csvRowsPerSegment
		if end > len(rows) {
			end = len(rows)
		}

		var sb strings.Builder
		sb.WriteString(header)
		sb.WriteString("\n")
		for _, row := range rows[start:end] {
			sb.WriteString(strings.Join(row, ", "))
			sb.WriteString("\n")
		}

		segments = append(segments, schema.Segment{
			Text: sb.String(),
			// Rows are 1-based and the header is row 1.
			Provenance: fmt.Sprintf("rows %d-%d", start+2, end+1),
		})
	}

	return segments, nil
}

var _ interfaces.Loader = (*CsvLoader)(nil)
