package config

import (
	"context"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/polychat/polychat/pkg/log"
)

type AppConfig struct {
	RuntimePath string `env:"POLYCHAT_RUNTIME_PATH" envDefault:".polychat"`
	ListenAddr  string `env:"POLYCHAT_LISTEN_ADDR" envDefault:":8790"`

	// Context management
	ContextWindowSize  int    `env:"POLYCHAT_CONTEXT_WINDOW_SIZE" envDefault:"20"`
	ContextWindow      string `env:"POLYCHAT_CONTEXT_WINDOW" envDefault:"earliest"`
	ContextTokenBudget int    `env:"POLYCHAT_CONTEXT_TOKEN_BUDGET" envDefault:"0"`

	// Outbound provider call timeout, seconds
	RequestTimeout int `env:"POLYCHAT_REQUEST_TIMEOUT" envDefault:"120"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse app config")
	}
	return c
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "polychat.db")
}
