package loaders

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"docbot/internal/rag/interfaces"
	"docbot/internal/rag/schema"
)

// Mime types with registered loaders.
const (
	MimePDF      = "application/pdf"
	MimeDocx     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	MimeXlsx     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MimeText     = "text/plain"
	MimeMarkdown = "text/markdown"
	MimeCSV      = "text/csv"
	MimeHTML     = "text/html"
)

// Registry dispatches a raw file to the loader registered for its mime type.
type Registry struct {
	loaders map[string]interfaces.Loader
}

// NewRegistry builds a registry with every built-in loader registered.
func NewRegistry() *Registry {
	r := &Registry{loaders: make(map[string]interfaces.Loader)}
	txt := NewTxtLoader()
	r.Register(MimePDF, NewPdfLoader())
	r.Register(MimeDocx, NewDocxLoader())
	r.Register(MimeXlsx, NewXlsxLoader())
	r.Register(MimeText, txt)
	r.Register(MimeMarkdown, txt)
	r.Register(MimeCSV, NewCsvLoader())
	r.Register(MimeHTML, NewHTMLLoader())
	return r
}

// Register adds or replaces the loader for a mime type.
func (r *Registry) Register(mime string, l interfaces.Loader) {
	r.loaders[normalizeMime(mime)] = l
}

// Resolve picks the loader for a file. The declared mime type wins; when it
// is empty or has no registered loader, the content is sniffed as a
// fallback. A file no loader claims fails with UnsupportedFormatError.
func (r *Registry) Resolve(filename, declaredMime string, data []byte) (interfaces.Loader, error) {
	declared := normalizeMime(declaredMime)
	if l, ok := r.loaders[declared]; ok {
		return l, nil
	}

	sniffed := normalizeMime(mimetype.Detect(data).String())
	if l, ok := r.loaders[sniffed]; ok {
		return l, nil
	}

	reported := declared
	if reported == "" {
		reported = sniffed
	}
	return nil, &schema.UnsupportedFormatError{Filename: filename, MimeType: reported}
}

// normalizeMime lowercases a mime type and strips parameters such as
// "; charset=utf-8".
func normalizeMime(m string) string {
	if i := strings.Index(m, ";"); i >= 0 {
		m = m[:i]
	}
	return strings.ToLower(strings.TrimSpace(m))
}
