package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/rs/zerolog/log"
)

type Config struct {
	Port          string `envconfig:"PORT" default:"8080"`
	AllowedOrigin string `envconfig:"ALLOWED_ORIGIN" default:"*"`

	// Language model
	LLMProvider   string        `envconfig:"LLM_PROVIDER" default:"gemini"` // gemini or openai
	GeminiAPIKey  string        `envconfig:"GEMINI_API_KEY"`
	GeminiModel   string        `envconfig:"GEMINI_MODEL" default:"gemini-2.0-flash"`
	GeminiBaseURL string        `envconfig:"GEMINI_BASE_URL"`
	OpenAIAPIKey  string        `envconfig:"OPENAI_API_KEY"`
	OpenAIModel   string        `envconfig:"OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIBaseURL string        `envconfig:"OPENAI_BASE_URL"`
	LLMTimeout    time.Duration `envconfig:"LLM_TIMEOUT" default:"60s"`
	PromptsFile   string        `envconfig:"PROMPTS_FILE"`

	// Inventory backend
	BackendBaseURL string        `envconfig:"BACKEND_BASE_URL" default:"http://localhost:8000"`
	BackendTimeout time.Duration `envconfig:"BACKEND_TIMEOUT" default:"30s"`

	// Conversation
	ChatMaxMessages     int    `envconfig:"CHAT_MAX_MESSAGES" default:"0"`
	TurnPolicy          string `envconfig:"TURN_POLICY" default:"overlap"` // overlap or serial
	MockFallbackEnabled bool   `envconfig:"MOCK_FALLBACK_ENABLED" default:"true"`
	MockSeed            int64  `envconfig:"MOCK_SEED" default:"0"`

	// Observability
	LogLevel       string `envconfig:"LOG_LEVEL" default:"info"`
	LogPretty      bool   `envconfig:"LOG_PRETTY" default:"false"`
	MetricsEnabled bool   `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load reads a .env file when present, then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return LoadFromEnv()
}

// LoadFromEnv reads only the process environment.
func LoadFromEnv() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.LLMProvider = strings.ToLower(strings.TrimSpace(cfg.LLMProvider))
	cfg.TurnPolicy = strings.ToLower(strings.TrimSpace(cfg.TurnPolicy))

	switch cfg.LLMProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Warn().Msg("GEMINI_API_KEY is not set; model calls will fail until provided")
		}
	case "openai":
		if cfg.OpenAIAPIKey == "" {
			log.Warn().Msg("OPENAI_API_KEY is not set; model calls will fail until provided")
		}
	default:
		return nil, fmt.Errorf("LLM_PROVIDER must be gemini or openai, got %q", cfg.LLMProvider)
	}
	if cfg.TurnPolicy != "overlap" && cfg.TurnPolicy != "serial" {
		return nil, fmt.Errorf("TURN_POLICY must be overlap or serial, got %q", cfg.TurnPolicy)
	}
	if cfg.ChatMaxMessages < 0 {
		return nil, fmt.Errorf("CHAT_MAX_MESSAGES must not be negative")
	}
	return &cfg, nil
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	if strings.Contains(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}
