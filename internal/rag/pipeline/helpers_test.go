package pipeline

import (
	"context"
	"hash/fnv"
	"strings"
	"sync"
	"time"

	"docbot/pkg/logger"
	"docbot/pkg/retry"
)

// testPolicy keeps test retries fast.
var testPolicy = retry.Policy{MaxAttempts: 2, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}

func testLogger() *logger.Logger {
	return logger.New("test")
}

const fakeDim = 16

// hashVector embeds text as a deterministic bag-of-words histogram. Texts
// sharing words land close under cosine similarity, which is all the
// pipeline tests need from an embedding.
func hashVector(text string) []float32 {
	v := make([]float32, fakeDim)
	for _, word := range strings.Fields(strings.ToLower(text)) {
		h := fnv.New32a()
		h.Write([]byte(word))
		v[h.Sum32()%fakeDim]++
	}
	return v
}

// fakeEmbedder is a deterministic EmbeddingModel that can be scripted to
// fail its first failCalls invocations.
type fakeEmbedder struct {
	mu         sync.Mutex
	calls      int
	batchSizes []int
	failCalls  int
	failErr    error
}

func (f *fakeEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	f.mu.Lock()
	f.calls++
	call := f.calls
	f.batchSizes = append(f.batchSizes, len(texts))
	f.mu.Unlock()

	if call <= f.failCalls {
		return nil, f.failErr
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = hashVector(text)
	}
	return vectors, nil
}

func (f *fakeEmbedder) ModelID() string { return "fake-embedder" }

// fakeLLM answers with a scripted function per call.
type fakeLLM struct {
	mu      sync.Mutex
	prompts []string
	fn      func(prompt string, temperature float32) (string, error)
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, temperature float32) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	return f.fn(prompt, temperature)
}
