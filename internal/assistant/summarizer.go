package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"iss-assistant-backend/internal/llm"
	"iss-assistant-backend/internal/observability"
)

// SummarizeError is returned when the summary model call fails.
type SummarizeError struct {
	Endpoint string
	Err      error
}

func (e *SummarizeError) Error() string {
	return fmt.Sprintf("summarize %s: %v", e.Endpoint, e.Err)
}

func (e *SummarizeError) Unwrap() error { return e.Err }

// Summarizer turns a backend result into a user-facing answer.
type Summarizer struct {
	model   llm.Model
	prompts *Prompts
	log     zerolog.Logger
}

func NewSummarizer(model llm.Model, prompts *Prompts) *Summarizer {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	return &Summarizer{model: model, prompts: prompts, log: observability.Component("summarizer")}
}

// Summarize accepts any result value; the model output is returned as is.
func (s *Summarizer) Summarize(ctx context.Context, query string, result any, endpoint string) (string, error) {
	prompt := s.prompts.summarizePrompt(query, endpoint, renderResult(result))

	started := time.Now()
	text, err := s.model.Generate(ctx, s.prompts.Summarize.request(prompt))
	observability.RecordLLM("summarize", started, err)
	if err != nil {
		s.log.Error().Err(err).Str("endpoint", endpoint).Msg("summary call failed")
		return "", &SummarizeError{Endpoint: endpoint, Err: err}
	}
	return text, nil
}

func renderResult(result any) string {
	b, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", result)
	}
	return string(b)
}
