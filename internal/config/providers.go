package config

import (
	"context"

	"github.com/caarlos0/env/v11"
	"github.com/polychat/polychat/pkg/log"
)

// ProvidersConfig carries process-level credentials and endpoint overrides
// for the built-in provider catalog. A key supplied here is the fallback for
// a provider whose descriptor carries no credential of its own.
type ProvidersConfig struct {
	OpenAIAPIKey    string `env:"OPENAI_API_KEY"`
	AnthropicAPIKey string `env:"ANTHROPIC_API_KEY"`
	MistralAPIKey   string `env:"MISTRAL_API_KEY"`
	OllamaBaseURL   string `env:"OLLAMA_BASE_URL" envDefault:"http://localhost:11434"`
	FreeEndpoint    string `env:"POLYCHAT_FREE_ENDPOINT" envDefault:"https://text.pollinations.ai"`
}

func NewProvidersConfig(ctx context.Context) *ProvidersConfig {
	c := &ProvidersConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse providers config")
	}
	return c
}
