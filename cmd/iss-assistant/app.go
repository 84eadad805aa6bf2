package main

import (
	"context"
	"fmt"
	"net/http"

	"iss-assistant-backend/internal/assistant"
	"iss-assistant-backend/internal/chat"
	"iss-assistant-backend/internal/config"
	"iss-assistant-backend/internal/inventory"
	"iss-assistant-backend/internal/llm"
	"iss-assistant-backend/internal/observability"
	"iss-assistant-backend/internal/store"
)

type app struct {
	sessions *chat.Sessions
	checks   map[string]observability.HealthCheckFunc
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := observability.Component("app")
	prompts, err := assistant.LoadPrompts(cfg.PromptsFile)
	if err != nil {
		return nil, err
	}

	httpClient := &http.Client{Timeout: cfg.LLMTimeout}
	model, err := llm.New(ctx, cfg.LLMProvider,
		llm.GeminiConfig{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel, BaseURL: cfg.GeminiBaseURL, HTTPClient: httpClient},
		llm.OpenAIConfig{APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL, HTTPClient: httpClient},
	)
	llmCheck := func(context.Context) error { return nil }
	if err != nil {
		// Keep serving: turns degrade to the fixed replies and readiness reports the cause.
		log.Warn().Err(err).Msg("language model unavailable")
		cause := err
		model = llm.ModelFunc(func(context.Context, llm.Request) (string, error) { return "", cause })
		llmCheck = func(context.Context) error { return cause }
	}

	policy, ok := chat.ParsePolicy(cfg.TurnPolicy)
	if !ok {
		return nil, fmt.Errorf("unknown turn policy %q", cfg.TurnPolicy)
	}
	if cfg.MockFallbackEnabled {
		log.Warn().Msg("synthetic data fallback is enabled; answers may use fabricated inventory data when the backend is down")
	}

	dispatcher := inventory.NewDispatcher(cfg.BackendBaseURL, cfg.BackendTimeout)
	pipeline := chat.Pipeline{
		Interpreter: assistant.NewInterpreter(model, prompts),
		Dispatcher:  dispatcher,
		Synthesizer: inventory.NewSynthesizer(cfg.MockSeed),
		Summarizer:  assistant.NewSummarizer(model, prompts),
		Responder:   assistant.NewResponder(model, prompts),
	}
	opts := chat.Options{
		Policy:       policy,
		MockFallback: cfg.MockFallbackEnabled,
		Greeting:     prompts.Greeting,
		ErrorReply:   prompts.ErrorReply,
	}

	return &app{
		sessions: chat.NewSessions(store.NewMemoryStore(cfg.ChatMaxMessages), pipeline, opts),
		checks: map[string]observability.HealthCheckFunc{
			"llm":     llmCheck,
			"backend": dispatcher.Ping,
		},
	}, nil
}
