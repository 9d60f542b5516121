package service

import (
	"context"
	"hash/fnv"
	"strings"
	"testing"

	"docbot/internal/config"
	"docbot/internal/rag/pipeline"
	"docbot/internal/rag/storages/docstore"
	"docbot/internal/rag/storages/vectorstore"
	"docbot/pkg/logger"
)

func testConfig() *config.AppConfig {
	return &config.AppConfig{
		Rag: config.RagConfig{
			ChunkSize:       200,
			ChunkOverlap:    40,
			TopK:            3,
			MaxContextChars: 4000,
			Temperatures:    []float32{0.2, 0.7},
			EmbedBatchSize:  100,
			IngestWorkers:   2,
			RequestTimeout:  "1s",
			Retry: config.RetryConfig{
				MaxAttempts:    2,
				InitialBackoff: "1ms",
				MaxBackoff:     "1ms",
			},
		},
	}
}

// bagEmbedder embeds text as a deterministic word histogram, so related
// texts score high under cosine without any external provider.
type bagEmbedder struct{}

func (bagEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		v := make([]float32, 16)
		for _, word := range strings.Fields(strings.ToLower(text)) {
			h := fnv.New32a()
			h.Write([]byte(word))
			v[h.Sum32()%16]++
		}
		vectors[i] = v
	}
	return vectors, nil
}

func (bagEmbedder) ModelID() string { return "bag-of-words" }

// citingLLM answers by quoting a chunk of its prompt's context and citing
// it, mimicking a well-behaved generation model. It picks the last marker
// in the prompt: the instruction block mentions the marker form before the
// context, so the last occurrence is always a real context label.
type citingLLM struct{}

func (citingLLM) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	start := strings.LastIndex(prompt, "[chunk:")
	if start < 0 {
		return "ANSWER: No relevant information was found in the documents.", nil
	}
	end := strings.Index(prompt[start:], "]")
	marker := prompt[start : start+end+1]
	return "ANSWER: The warranty period is 24 months " + marker + ".\nREASONING: The context states it directly.", nil
}

func newTestService(t *testing.T) (*Service, *vectorstore.MemoryIndex, *docstore.MemoryDocStore) {
	t.Helper()
	index := vectorstore.NewMemoryIndex()
	docs := docstore.NewMemoryDocStore()
	svc, err := New(testConfig(), bagEmbedder{}, citingLLM{}, index, docs, nil, logger.New("test"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return svc, index, docs
}

func TestAsk_AnswersFromIngestedDocument(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	report := svc.Ingest(ctx, []pipeline.UploadFile{
		{Filename: "manual.txt", MimeType: "text/plain", Data: []byte("The warranty period is 24 months.")},
		{Filename: "recipes.txt", MimeType: "text/plain", Data: []byte("Preheat the oven to 180 degrees.")},
	})
	if report.Succeeded() != 2 {
		t.Fatalf("ingest succeeded for %d of 2 files", report.Succeeded())
	}

	result, err := svc.Ask(ctx, "How long is the warranty?", 3, nil)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if result.Context.Empty() {
		t.Fatal("expected a non-empty retrieval context")
	}
	if len(result.Candidates) != 2 {
		t.Fatalf("expected 2 candidates for 2 configured temperatures, got %d", len(result.Candidates))
	}

	for i, c := range result.Candidates {
		if c.Failed() {
			t.Fatalf("candidate %d failed: %s", i, c.Error)
		}
		if !strings.Contains(c.Answer, "24 months") {
			t.Errorf("candidate %d answer misses the fact: %q", i, c.Answer)
		}
		if strings.Contains(c.Answer, "[chunk:") {
			t.Errorf("candidate %d answer still carries a raw marker: %q", i, c.Answer)
		}
		if !strings.Contains(c.Answer, "[1]") {
			t.Errorf("candidate %d answer has no footnote: %q", i, c.Answer)
		}
		if len(c.Citations) != 1 {
			t.Fatalf("candidate %d has %d citations, want 1", i, len(c.Citations))
		}
		if !result.Context.Contains(c.Citations[0].ChunkID) {
			t.Errorf("candidate %d cites chunk %q outside the retrieval context", i, c.Citations[0].ChunkID)
		}
		if len(c.Unverified) != 0 {
			t.Errorf("candidate %d has unverified citations: %+v", i, c.Unverified)
		}
	}
}

func TestAsk_EmptyIndexStillAnswers(t *testing.T) {
	svc, _, _ := newTestService(t)

	result, err := svc.Ask(context.Background(), "How long is the warranty?", 0, nil)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if !result.Context.Empty() {
		t.Error("expected an empty retrieval context")
	}
	for i, c := range result.Candidates {
		if c.Failed() {
			t.Errorf("candidate %d failed: %s", i, c.Error)
		}
		if len(c.Citations) != 0 {
			t.Errorf("candidate %d cites sources without any context", i)
		}
	}
}

func TestAsk_RejectsEmptyQuestion(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.Ask(context.Background(), "", 0, nil); err == nil {
		t.Fatal("expected error for empty question, got nil")
	}
}

func TestAsk_DefaultsKAndTemperatures(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	svc.Ingest(ctx, []pipeline.UploadFile{
		{Filename: "manual.txt", MimeType: "text/plain", Data: []byte("The warranty period is 24 months.")},
	})

	result, err := svc.Ask(ctx, "How long is the warranty?", 0, nil)
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if len(result.Candidates) != 2 {
		t.Errorf("expected the 2 configured default temperatures, got %d candidates", len(result.Candidates))
	}
}

func TestDocuments_ListsIngestedFiles(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	svc.Ingest(ctx, []pipeline.UploadFile{
		{Filename: "manual.txt", MimeType: "text/plain", Data: []byte("some text")},
	})

	docs, err := svc.Documents(ctx)
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	if len(docs) != 1 || docs[0].Filename != "manual.txt" {
		t.Errorf("unexpected document listing: %+v", docs)
	}
}

func TestNew_RejectsInvalidChunkConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Rag.ChunkSize = 100
	cfg.Rag.ChunkOverlap = 100

	_, err := New(cfg, bagEmbedder{}, citingLLM{}, vectorstore.NewMemoryIndex(), nil, nil, logger.New("test"))
	if err == nil {
		t.Fatal("expected error for invalid chunk config, got nil")
	}
}
