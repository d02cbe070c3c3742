package config

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/tuskrelay/pkg/log"
)

const (
	StoreMemory = "memory"
	StoreSQLite = "sqlite"
)

type AppConfig struct {
	RuntimePath string `env:"RELAY_RUNTIME_PATH" envDefault:".tuskrelay"`
	Port        int    `env:"PORT" envDefault:"8080"`

	// Session persistence backend: memory or sqlite
	SessionStore string `env:"SESSION_STORE" envDefault:"memory"`

	// Reply rendering: raw, text or html
	ReplyFormat string `env:"REPLY_FORMAT" envDefault:"raw"`

	// Used when SYSTEM.md is absent from the runtime directory
	SystemPrompt string `env:"SYSTEM_PROMPT"`
}

func ParseAppConfig() (*AppConfig, error) {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)

	switch c.SessionStore {
	case StoreMemory, StoreSQLite:
	default:
		return nil, fmt.Errorf("unknown session store: %s", c.SessionStore)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return nil, fmt.Errorf("invalid port: %d", c.Port)
	}
	return c, nil
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c, err := ParseAppConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetSystemPath() string {
	return filepath.Join(c.RuntimePath, "SYSTEM.md")
}

func (c AppConfig) GetSystemPrompt() string {
	return c.SystemPrompt
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "sessions.db")
}

func (c AppConfig) GetListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c AppConfig) IsSQLiteSelected() bool {
	return c.SessionStore == StoreSQLite
}
