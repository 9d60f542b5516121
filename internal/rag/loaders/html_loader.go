package loaders

import (
	"bytes"
	"context"
	"io"
	"strings"

	"golang.org/x/net/html"

	"docbot/internal/rag/interfaces"
	"docbot/internal/rag/schema"
)

// HTMLLoader extracts the human-readable text of an uploaded HTML file,
// stripping tags, scripts, and styles.
type HTMLLoader struct{}

// NewHTMLLoader creates a new HTMLLoader.
func NewHTMLLoader() *HTMLLoader {
	return &HTMLLoader{}
}

// Load tokenizes the HTML and returns the visible text as a single segment.
func (l *HTMLLoader) Load(ctx context.Context, filename string, data []byte) ([]schema.Segment, error) {
	text, err := extractText(bytes.NewReader(data))
	if err != nil {
		return nil, &schema.CorruptDocumentError{Filename: filename, Err: err}
	}
	if text == "" {
		return nil, nil
	}
	return []schema.Segment{{Text: text}}, nil
}

// extractText walks the HTML token stream and collects text nodes outside
// of script and style elements.
func extractText(body io.Reader) (string, error) {
	z := html.NewTokenizer(body)
	var sb strings.Builder
	var inScript, inStyle bool

	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return strings.TrimSpace(sb.String()), nil
			}
			return "", z.Err()
		case html.StartTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script":
				inScript = true
			case "style":
				inStyle = true
			}
		case html.EndTagToken:
			name, _ := z.TagName()
			switch string(name) {
			case "script":
				inScript = false
			case "style":
				inStyle = false
			}
		case html.TextToken:
			if inScript || inStyle {
				continue
			}
			text := strings.TrimSpace(string(z.Text()))
			if text != "" {
				sb.WriteString(text)
				sb.WriteString("\n")
			}
		}
	}
}

var _ interfaces.Loader = (*HTMLLoader)(nil)
