package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sandevgo/tuskrelay/internal/config"
	"github.com/sandevgo/tuskrelay/internal/service/prompt"
	"github.com/sandevgo/tuskrelay/internal/service/ui"
	"github.com/sandevgo/tuskrelay/pkg/env"
	"github.com/sandevgo/tuskrelay/pkg/log"
	"github.com/spf13/cobra"
)

// runtimeEnv is the subset of settings written by `relay init`.
type runtimeEnv struct {
	Port           int           `env:"PORT"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS"`
	WidgetToken    string        `env:"WIDGET_TOKEN"`
	SessionStore   string        `env:"SESSION_STORE"`
	ReplyFormat    string        `env:"REPLY_FORMAT"`
	Provider       string        `env:"LLM_PROVIDER"`
	APIKey         string        `env:"LLM_API_KEY"`
	BaseURL        string        `env:"LLM_BASE_URL"`
	Model          string        `env:"LLM_MODEL"`
	Timeout        time.Duration `env:"LLM_TIMEOUT"`
}

var (
	initValues runtimeEnv
	initForce  bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the runtime .env and SYSTEM.md",
	Long: `Creates the runtime directory and writes a .env file from the given flags.
A widget token is generated when none is given. SYSTEM.md is seeded with the
default persona unless it already exists.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		var flushLog func()
		ctx, flushLog = setupLogger(ctx)
		defer flushLog()

		logger := log.FromCtx(ctx)

		runtimePath := config.GetRuntimePath()
		if err := os.MkdirAll(runtimePath, 0700); err != nil {
			return fmt.Errorf("failed to create runtime directory: %w", err)
		}

		envPath := filepath.Join(runtimePath, ".env")
		if _, err := os.Stat(envPath); err == nil && !initForce {
			return fmt.Errorf("%s already exists, use --force to overwrite", envPath)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}

		values := initValues
		if values.WidgetToken == "" {
			values.WidgetToken = strings.ReplaceAll(uuid.NewString(), "-", "")
			logger.Info().Msg("generated a new widget token")
		}

		content, err := env.MarshalEnv(&values)
		if err != nil {
			return fmt.Errorf("failed to marshal env: %w", err)
		}
		if err := os.WriteFile(envPath, []byte(content), 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", envPath, err)
		}
		logger.Info().Str("path", envPath).Msg("wrote runtime env")

		systemPath := filepath.Join(runtimePath, "SYSTEM.md")
		if _, err := os.Stat(systemPath); errors.Is(err, os.ErrNotExist) {
			if err := os.WriteFile(systemPath, []byte(prompt.DefaultSystemPrompt+"\n"), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", systemPath, err)
			}
			logger.Info().Str("path", systemPath).Msg("wrote default system prompt")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Runtime initialized at %s\nWidget token: %s\nRun 'relay serve' to start.\n",
			ui.PathStyle.Render(runtimePath), values.WidgetToken)
		return nil
	},
}

func init() {
	f := initCmd.Flags()
	f.IntVar(&initValues.Port, "port", 8080, "listening port")
	f.StringSliceVar(&initValues.AllowedOrigins, "origin", nil, "allowed widget origin (repeatable)")
	f.StringVar(&initValues.WidgetToken, "token", "", "shared widget token (generated when empty)")
	f.StringVar(&initValues.SessionStore, "store", config.StoreMemory, "session store: memory or sqlite")
	f.StringVar(&initValues.ReplyFormat, "format", "raw", "reply format: raw, text or html")
	f.StringVar(&initValues.Provider, "provider", "openai", "LLM provider: openai, anthropic, openrouter, ollama, custom")
	f.StringVar(&initValues.APIKey, "api-key", "", "LLM provider API key")
	f.StringVar(&initValues.BaseURL, "base-url", "", "LLM base URL for ollama or custom providers")
	f.StringVar(&initValues.Model, "model", "gpt-4o-mini", "LLM model id")
	f.DurationVar(&initValues.Timeout, "timeout", 60*time.Second, "LLM request timeout")
	f.BoolVar(&initForce, "force", false, "overwrite an existing .env")

	rootCmd.AddCommand(initCmd)
}
