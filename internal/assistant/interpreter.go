package assistant

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"iss-assistant-backend/internal/action"
	"iss-assistant-backend/internal/llm"
	"iss-assistant-backend/internal/observability"
	"iss-assistant-backend/internal/stage"
)

// Interpreter maps a user utterance to an action descriptor.
type Interpreter struct {
	model   llm.Model
	prompts *Prompts
	log     zerolog.Logger
}

func NewInterpreter(model llm.Model, prompts *Prompts) *Interpreter {
	if prompts == nil {
		prompts = DefaultPrompts()
	}
	return &Interpreter{model: model, prompts: prompts, log: observability.Component("interpreter")}
}

// Interpret never fails: any model or parse failure yields the general query
// descriptor.
func (i *Interpreter) Interpret(ctx context.Context, utterance string) action.Descriptor {
	return i.InterpretResult(ctx, utterance).Value
}

// InterpretResult is Interpret with the outcome attached. A degraded answer
// is Recovered, never Fatal.
func (i *Interpreter) InterpretResult(ctx context.Context, utterance string) stage.Result[action.Descriptor] {
	started := time.Now()
	text, err := i.model.Generate(ctx, i.prompts.Interpret.request(i.prompts.interpretPrompt(utterance)))
	observability.RecordLLM("interpret", started, err)
	if err != nil {
		i.log.Warn().Err(err).Msg("interpretation call failed, treating as general query")
		return stage.Recover(action.General(), err)
	}

	d, err := action.Parse(text)
	if err != nil {
		i.log.Warn().Err(err).Str("raw", truncate(text, 200)).Msg("unparseable interpretation, treating as general query")
		return stage.Recover(action.General(), err)
	}
	if !d.IsGeneralQuery {
		if _, known := i.prompts.Actions.Lookup(d.Endpoint); !known {
			i.log.Warn().Str("endpoint", d.Endpoint).Msg("model chose an endpoint outside the catalog")
		}
	}
	return stage.OK(d)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
