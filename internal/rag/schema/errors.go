package schema

import "fmt"

// UnsupportedFormatError is returned when no loader is registered for a
// file's mime type.
type UnsupportedFormatError struct {
	Filename string
	MimeType string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q for file %q", e.MimeType, e.Filename)
}

// CorruptDocumentError is returned when a loader recognizes the format but
// cannot extract text from the file's content.
type CorruptDocumentError struct {
	Filename string
	Err      error
}

func (e *CorruptDocumentError) Error() string {
	return fmt.Sprintf("corrupt document %q: %v", e.Filename, e.Err)
}

func (e *CorruptDocumentError) Unwrap() error { return e.Err }

// InvalidChunkConfigError reports chunking parameters that can never
// terminate or make no sense. It is a configuration-time error and fatal to
// the call that carries it.
type InvalidChunkConfigError struct {
	MaxChars     int
	OverlapChars int
}

func (e *InvalidChunkConfigError) Error() string {
	return fmt.Sprintf("invalid chunk config: overlap %d must be smaller than max %d (and both non-negative)",
		e.OverlapChars, e.MaxChars)
}

// EmbeddingProviderError wraps a failed embedding call. BatchStart is the
// index of the first item of the failed batch within the full input, so the
// caller can retry the batch or fall back to per-item calls.
type EmbeddingProviderError struct {
	BatchStart int
	Err        error
}

func (e *EmbeddingProviderError) Error() string {
	return fmt.Sprintf("embedding provider failed for batch starting at item %d: %v", e.BatchStart, e.Err)
}

func (e *EmbeddingProviderError) Unwrap() error { return e.Err }

// VectorIndexError wraps a failed vector index operation.
type VectorIndexError struct {
	Op  string
	Err error
}

func (e *VectorIndexError) Error() string {
	return fmt.Sprintf("vector index %s failed: %v", e.Op, e.Err)
}

func (e *VectorIndexError) Unwrap() error { return e.Err }

// GenerationError wraps a failed generation call for a single temperature.
// Generation is stochastic, so the call is never retried automatically; a
// retry would be a new candidate, not a repair of this one.
type GenerationError struct {
	Temperature float32
	Err         error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation at temperature %.2f failed: %v", e.Temperature, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }
