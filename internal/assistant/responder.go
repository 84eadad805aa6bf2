package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"iss-assistant-backend/internal/llm"
	"iss-assistant-backend/internal/observability"
)

// Responder answers utterances that need no backend data.
type Responder struct {
	model   llm.Model
	prompts *Prompts
	log     zerolog.Logger
}

func NewResponder(model llm.Model, prompts *Prompts) *Responder {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	return &Responder{model: model, prompts: prompts, log: observability.Component("responder")}
}

// Respond never fails; on a model error it returns the fixed fallback.
func (r *Responder) Respond(ctx context.Context, utterance string) string {
	started := time.Now()
	text, err := r.model.Generate(ctx, r.prompts.Respond.request(r.prompts.respondPrompt(utterance)))
	observability.RecordLLM("respond", started, err)
	if err != nil || strings.TrimSpace(text) == "" {
		r.log.Warn().Err(err).Msg("general answer failed, using fallback")
		return r.prompts.GeneralFallback
	}
	return text
}
