package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"docbot/internal/rag/interfaces"
	"docbot/internal/rag/schema"
	"docbot/pkg/logger"
)

// GenerationEngine produces one answer candidate per configured temperature
// by issuing independent generation calls against the LLM.
type GenerationEngine struct {
	llm         interfaces.LLM
	callTimeout time.Duration
	log         *logger.Logger
}

// NewGenerationEngine creates a generation engine.
func NewGenerationEngine(llm interfaces.LLM, callTimeout time.Duration, log *logger.Logger) *GenerationEngine {
	return &GenerationEngine{llm: llm, callTimeout: callTimeout, log: log}
}

// Generate runs one generation call per temperature, concurrently, and
// returns exactly len(temperatures) candidates in input order. A failed
// call marks only its own candidate; the others still complete. Generation
// is never retried here: a retried stochastic call would be a new
// candidate, not a repair. Cancelling ctx cancels every in-flight call.
func (e *GenerationEngine) Generate(ctx context.Context, queryText string, rc *schema.RetrievalContext, temperatures []float32) []schema.Candidate {
	prompt := BuildPrompt(queryText, rc)
	candidates := make([]schema.Candidate, len(temperatures))

	var wg sync.WaitGroup
	for i, temperature := range temperatures {
		wg.Add(1)
		go func() {
			defer wg.Done()

			callCtx, cancel := context.WithTimeout(ctx, e.callTimeout)
			defer cancel()

			output, err := e.llm.Generate(callCtx, prompt, temperature)
			if err != nil {
				genErr := &schema.GenerationError{Temperature: temperature, Err: err}
				e.log.WithError(genErr).Warn("Generation call failed")
				candidates[i] = schema.Candidate{Temperature: temperature, Error: genErr.Error()}
				return
			}

			answer, reasoning := splitAnswerReasoning(output)
			candidates[i] = schema.Candidate{
				Temperature: temperature,
				Answer:      answer,
				Reasoning:   reasoning,
			}
		}()
	}
	wg.Wait()

	return candidates
}

// BuildPrompt assembles the generation prompt: the grounding instruction,
// the retrieved chunks labelled with their ids, then the question. An empty
// context degrades the instruction to "state that nothing was found"
// instead of inviting an invented answer.
func BuildPrompt(queryText string, rc *schema.RetrievalContext) string {
	var sb strings.Builder

	if rc.Empty() {
		sb.WriteString("The user asked a question, but no relevant information was found in their uploaded documents.\n")
		sb.WriteString("State clearly that no relevant information was found in the documents. Do not invent an answer and do not cite any sources.\n\n")
	} else {
		sb.WriteString("You are an assistant that answers questions using only the context below, extracted from the user's uploaded documents.\n")
		sb.WriteString("Mark every factual claim in your answer with a citation of the form [chunk:<id>], where <id> is the id of the chunk the claim came from.\n")
		sb.WriteString("If the context does not contain the answer, say so instead of guessing.\n\n")
		sb.WriteString("Context:\n")
		for _, sc := range rc.Chunks {
			sb.WriteString("---\n")
			sb.WriteString(fmt.Sprintf("[chunk:%s] from %q", sc.Chunk.ID, sc.Chunk.Filename))
			if sc.Chunk.Provenance != "" {
				sb.WriteString(", " + sc.Chunk.Provenance)
			}
			sb.WriteString("\n")
			sb.WriteString(sc.Chunk.Text)
			sb.WriteString("\n")
		}
		sb.WriteString("---\n\n")
	}

	sb.WriteString(fmt.Sprintf("Question: %s\n\n", queryText))
	sb.WriteString("Reply in this layout:\n")
	sb.WriteString("ANSWER: <your answer>\n")
	sb.WriteString("REASONING: <how the context supports the answer, step by step>\n")

	return sb.String()
}

// splitAnswerReasoning parses the ANSWER/REASONING layout out of the raw
// model output. The generator is not contractually obligated to follow the
// layout, so parsing is best-effort: unparseable output is kept whole as
// the answer.
func splitAnswerReasoning(output string) (answer, reasoning string) {
	trimmed := strings.TrimSpace(output)

	answerIdx := strings.Index(trimmed, "ANSWER:")
	reasoningIdx := strings.Index(trimmed, "REASONING:")

	if answerIdx < 0 {
		if reasoningIdx >= 0 {
			return strings.TrimSpace(trimmed[:reasoningIdx]),
				strings.TrimSpace(trimmed[reasoningIdx+len("REASONING:"):])
		}
		return trimmed, ""
	}

	if reasoningIdx > answerIdx {
		answer = strings.TrimSpace(trimmed[answerIdx+len("ANSWER:") : reasoningIdx])
		reasoning = strings.TrimSpace(trimmed[reasoningIdx+len("REASONING:"):])
		return answer, reasoning
	}
	return strings.TrimSpace(trimmed[answerIdx+len("ANSWER:"):]), ""
}
