package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"docbot/internal/rag/interfaces"
	"docbot/internal/rag/loaders"
	"docbot/internal/rag/schema"
	"docbot/internal/rag/splitters"
	"docbot/pkg/logger"
	"docbot/pkg/retry"
)

// UploadFile is one file of an ingestion batch.
type UploadFile struct {
	Filename string
	MimeType string
	Data     []byte
}

// IngestionPipeline composes loading, chunking, embedding and indexing into
// one idempotent ingest operation per uploaded batch.
type IngestionPipeline struct {
	registry  *loaders.Registry
	splitter  *splitters.CharSplitter
	embedder  interfaces.EmbeddingModel
	index     interfaces.VectorIndex
	docStore  interfaces.DocStore  // optional
	blobStore interfaces.BlobStore // optional

	batchSize   int
	workers     int
	callTimeout time.Duration
	retryPolicy retry.Policy
	log         *logger.Logger
}

// NewIngestionPipeline creates an ingestion pipeline. docStore and
// blobStore may be nil to skip document records and raw byte archiving.
func NewIngestionPipeline(
	registry *loaders.Registry,
	splitter *splitters.CharSplitter,
	embedder interfaces.EmbeddingModel,
	index interfaces.VectorIndex,
	docStore interfaces.DocStore,
	blobStore interfaces.BlobStore,
	batchSize int,
	workers int,
	callTimeout time.Duration,
	retryPolicy retry.Policy,
	log *logger.Logger,
) *IngestionPipeline {
	if batchSize <= 0 {
		batchSize = 100
	}
	if workers <= 0 {
		workers = 1
	}
	return &IngestionPipeline{
		registry:    registry,
		splitter:    splitter,
		embedder:    embedder,
		index:       index,
		docStore:    docStore,
		blobStore:   blobStore,
		batchSize:   batchSize,
		workers:     workers,
		callTimeout: callTimeout,
		retryPolicy: retryPolicy,
		log:         log,
	}
}

// Ingest processes every file of the batch under a bounded worker pool.
// Files are independent: one file's failure is recorded in the report and
// never aborts the others. The report preserves submission order.
func (p *IngestionPipeline) Ingest(ctx context.Context, files []UploadFile) *schema.IngestReport {
	report := &schema.IngestReport{Files: make([]schema.FileResult, len(files))}

	eg := new(errgroup.Group)
	eg.SetLimit(p.workers)
	for i := range files {
		eg.Go(func() error {
			report.Files[i] = p.ingestOne(ctx, files[i])
			return nil
		})
	}
	// Workers never return errors; failures live inside the report.
	_ = eg.Wait()

	p.log.WithPayload(map[string]interface{}{
		"files":     len(files),
		"succeeded": report.Succeeded(),
	}).Info("Finished ingesting batch")
	return report
}

// ingestOne runs the full load -> chunk -> embed -> upsert chain for one
// file. Re-ingesting a document first deletes its old index entries, so
// repeated uploads never leak stale chunks.
func (p *IngestionPipeline) ingestOne(ctx context.Context, file UploadFile) schema.FileResult {
	result := schema.FileResult{Filename: file.Filename}

	loader, err := p.registry.Resolve(file.Filename, file.MimeType, file.Data)
	if err != nil {
		p.log.WithError(err).Warn("No loader for uploaded file")
		result.Status = schema.StatusUnsupportedFormat
		result.Error = err.Error()
		return result
	}

	segments, err := loader.Load(ctx, file.Filename, file.Data)
	if err != nil {
		p.log.WithError(err).Warn("Failed to extract text from uploaded file")
		result.Status = schema.StatusCorruptDocument
		result.Error = err.Error()
		return result
	}

	doc := &schema.Document{
		ID:         documentID(file.Filename),
		Filename:   file.Filename,
		MimeType:   file.MimeType,
		Size:       int64(len(file.Data)),
		UploadedAt: time.Now().UTC(),
	}
	result.DocumentID = doc.ID

	if p.blobStore != nil {
		path, err := p.withTimeoutValue(ctx, func(ctx context.Context) (string, error) {
			return p.blobStore.Put(ctx, doc.ID, file.MimeType, file.Data)
		})
		if err != nil {
			result.Status = schema.StatusStoreFailed
			result.Error = fmt.Sprintf("failed to archive raw upload: %v", err)
			return result
		}
		doc.StoragePath = path
	}
	if p.docStore != nil {
		err := p.withTimeout(ctx, func(ctx context.Context) error {
			return p.docStore.Put(ctx, doc)
		})
		if err != nil {
			result.Status = schema.StatusStoreFailed
			result.Error = fmt.Sprintf("failed to record document: %v", err)
			return result
		}
	}

	chunks := p.splitter.Split(doc.ID, doc.Filename, segments)
	result.Chunks = len(chunks)

	vectors, err := p.embedChunks(ctx, chunks)
	if err != nil {
		p.log.WithError(err).Error("Embedding failed for document")
		result.Status = schema.StatusEmbeddingFailed
		result.Error = err.Error()
		return result
	}

	entries := make([]schema.IndexEntry, len(chunks))
	for i, chunk := range chunks {
		entries[i] = schema.IndexEntry{
			ChunkID: chunk.ID,
			Vector:  vectors[i],
			Meta: schema.ChunkMeta{
				DocumentID: chunk.DocumentID,
				Filename:   chunk.Filename,
				Provenance: chunk.Provenance,
				Text:       chunk.Text,
			},
		}
	}

	err = retry.Do(ctx, p.retryPolicy, func(ctx context.Context) error {
		return p.withTimeout(ctx, func(ctx context.Context) error {
			return p.index.DeleteByDocument(ctx, doc.ID)
		})
	})
	if err == nil {
		err = retry.Do(ctx, p.retryPolicy, func(ctx context.Context) error {
			return p.withTimeout(ctx, func(ctx context.Context) error {
				return p.index.Upsert(ctx, entries)
			})
		})
	}
	if err != nil {
		p.log.WithError(err).Error("Vector index update failed for document")
		result.Status = schema.StatusIndexFailed
		result.Error = err.Error()
		return result
	}

	result.Status = schema.StatusOK
	return result
}

// documentID derives a stable id from the filename, so re-uploading the
// same file replaces its chunks instead of accumulating a second copy.
func documentID(filename string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("docbot/"+filename)).String()
}

// embedChunks sends chunk texts to the embedding gateway in bounded
// batches. A failed batch is retried with backoff and then surfaced as an
// EmbeddingProviderError carrying the batch's starting index.
func (p *IngestionPipeline) embedChunks(ctx context.Context, chunks []schema.Chunk) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))

	for start := 0; start < len(chunks); start += p.batchSize {
		end := start + p.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		texts := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			texts = append(texts, chunk.Text)
		}

		var batch [][]float32
		err := retry.Do(ctx, p.retryPolicy, func(ctx context.Context) error {
			var embedErr error
			batch, embedErr = p.withTimeoutVectors(ctx, texts)
			return embedErr
		})
		if err != nil {
			return nil, &schema.EmbeddingProviderError{BatchStart: start, Err: err}
		}
		if len(batch) != len(texts) {
			return nil, &schema.EmbeddingProviderError{
				BatchStart: start,
				Err:        fmt.Errorf("provider returned %d vectors for %d texts", len(batch), len(texts)),
			}
		}
		vectors = append(vectors, batch...)
	}

	return vectors, nil
}

func (p *IngestionPipeline) withTimeout(ctx context.Context, fn func(ctx context.Context) error) error {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()
	return fn(callCtx)
}

func (p *IngestionPipeline) withTimeoutValue(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()
	return fn(callCtx)
}

func (p *IngestionPipeline) withTimeoutVectors(ctx context.Context, texts []string) ([][]float32, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.callTimeout)
	defer cancel()
	return p.embedder.Embed(callCtx, texts)
}
