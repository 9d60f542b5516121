package service

import (
	"context"
	"fmt"

	"docbot/internal/config"
	"docbot/internal/rag/citations"
	"docbot/internal/rag/interfaces"
	"docbot/internal/rag/loaders"
	"docbot/internal/rag/pipeline"
	"docbot/internal/rag/schema"
	"docbot/internal/rag/splitters"
	"docbot/pkg/logger"
	"docbot/pkg/retry"
)

// Service is the transport-free facade over the ingestion and query
// pipelines. The HTTP layer maps requests onto it and renders the results.
type Service struct {
	cfg *config.AppConfig

	ingestion  *pipeline.IngestionPipeline
	retrieval  *pipeline.RetrievalEngine
	generation *pipeline.GenerationEngine
	docStore   interfaces.DocStore
	log        *logger.Logger
}

// AskResult carries the candidates of one query together with the context
// they were grounded on.
type AskResult struct {
	Candidates []schema.Candidate       `json:"candidates"`
	Context    *schema.RetrievalContext `json:"context"`
}

// New wires the pipelines from the configured providers. docStore and
// blobStore may be nil. Chunking parameters are validated here, so a
// misconfigured deployment fails at startup rather than per request.
func New(
	cfg *config.AppConfig,
	embedder interfaces.EmbeddingModel,
	llm interfaces.LLM,
	index interfaces.VectorIndex,
	docStore interfaces.DocStore,
	blobStore interfaces.BlobStore,
	log *logger.Logger,
) (*Service, error) {
	splitter, err := splitters.NewCharSplitter(cfg.Rag.ChunkSize, cfg.Rag.ChunkOverlap)
	if err != nil {
		return nil, err
	}

	retryPolicy := retry.Policy{
		MaxAttempts:    cfg.Rag.Retry.MaxAttempts,
		InitialBackoff: cfg.Rag.Retry.InitialBackoffDuration(),
		MaxBackoff:     cfg.Rag.Retry.MaxBackoffDuration(),
	}
	callTimeout := cfg.Rag.RequestTimeoutDuration()

	return &Service{
		cfg: cfg,
		ingestion: pipeline.NewIngestionPipeline(
			loaders.NewRegistry(),
			splitter,
			embedder,
			index,
			docStore,
			blobStore,
			cfg.Rag.EmbedBatchSize,
			cfg.Rag.IngestWorkers,
			callTimeout,
			retryPolicy,
			log.WithField("pipeline", "ingestion"),
		),
		retrieval: pipeline.NewRetrievalEngine(
			embedder,
			index,
			cfg.Rag.MinScore,
			callTimeout,
			retryPolicy,
			log.WithField("pipeline", "retrieval"),
		),
		generation: pipeline.NewGenerationEngine(
			llm,
			callTimeout,
			log.WithField("pipeline", "generation"),
		),
		docStore: docStore,
		log:      log,
	}, nil
}

// Ingest processes one uploaded batch and reports every file's outcome.
func (s *Service) Ingest(ctx context.Context, files []pipeline.UploadFile) *schema.IngestReport {
	return s.ingestion.Ingest(ctx, files)
}

// Ask answers one question: retrieve grounding chunks, generate one
// candidate per temperature, then resolve each candidate's citations
// against the context that produced it. k and temperatures fall back to
// the configured defaults when zero-valued.
func (s *Service) Ask(ctx context.Context, question string, k int, temperatures []float32) (*AskResult, error) {
	if question == "" {
		return nil, fmt.Errorf("question must not be empty")
	}
	if k <= 0 {
		k = s.cfg.Rag.TopK
	}
	if len(temperatures) == 0 {
		temperatures = s.cfg.Rag.Temperatures
	}

	rc, err := s.retrieval.Retrieve(ctx, question, k, s.cfg.Rag.MaxContextChars)
	if err != nil {
		return nil, err
	}

	candidates := s.generation.Generate(ctx, question, rc, temperatures)
	for i := range candidates {
		if candidates[i].Failed() {
			continue
		}
		cleaned, cited, unverified := citations.Resolve(candidates[i].Answer, rc)
		candidates[i].Answer = cleaned
		candidates[i].Citations = cited
		candidates[i].Unverified = unverified
	}

	return &AskResult{Candidates: candidates, Context: rc}, nil
}

// Documents lists the uploaded document records, newest first. Without a
// configured document store the listing is empty.
func (s *Service) Documents(ctx context.Context) ([]*schema.Document, error) {
	if s.docStore == nil {
		return nil, nil
	}
	return s.docStore.List(ctx)
}
