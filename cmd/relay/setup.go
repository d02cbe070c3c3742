package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sandevgo/tuskrelay/internal/config"
	"github.com/sandevgo/tuskrelay/internal/core"
	"github.com/sandevgo/tuskrelay/internal/providers/llm"
	"github.com/sandevgo/tuskrelay/internal/service/chat"
	"github.com/sandevgo/tuskrelay/internal/service/guard"
	"github.com/sandevgo/tuskrelay/internal/service/prompt"
	"github.com/sandevgo/tuskrelay/internal/storage/memory"
	"github.com/sandevgo/tuskrelay/internal/storage/sqlite"
	"github.com/sandevgo/tuskrelay/internal/transport/web"
	"github.com/sandevgo/tuskrelay/pkg/conv"
	"github.com/sandevgo/tuskrelay/pkg/log"
	"github.com/sandevgo/tuskrelay/pkg/srv"
)

func NewServices(ctx context.Context) []srv.Service {
	logger := log.FromCtx(ctx)

	chatSvc, appCfg, services := newChat(ctx)
	guardCfg := config.NewGuardConfig(ctx)

	// Request guard
	limiter := guard.NewRateLimiter(guardCfg.RateLimitRequests, guardCfg.RateLimitWindow)
	services = append(services, limiter)
	if guardCfg.WidgetToken == "" {
		logger.Warn().Msg("WIDGET_TOKEN is not set, chat requests will fail until it is configured")
	}
	g := guard.NewGuard(guard.NewAllowList(guardCfg.AllowedOrigins), guardCfg.WidgetToken, limiter)

	// HTTP transport
	server, err := web.NewServer(ctx, web.Config{
		Addr:           appCfg.GetListenAddr(),
		TrustedProxies: guardCfg.TrustedProxies,
		Debug:          isDebug(),
	}, g, chatSvc)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize http server")
	}
	services = append(services, server)

	logger.Info().
		Strs("origins", g.Origins().Origins()).
		Str("addr", appCfg.GetListenAddr()).
		Msg("relay configured")

	return services
}

// newChat loads the runtime env and builds the chat service together with
// the background services it depends on.
func newChat(ctx context.Context) (*chat.Service, *config.AppConfig, []srv.Service) {
	logger := log.FromCtx(ctx)
	services := make([]srv.Service, 0)

	// init env
	err := initEnv(ctx, config.GetRuntimePath())
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init env")
	}

	// 1. Configuration
	appCfg := config.NewAppConfig(ctx)
	providerCfg := config.NewProviderConfig(ctx)

	// 2. Session storage
	store, cleanup, err := initStorage(ctx, appCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize session storage")
	}
	if cleanup != nil {
		services = append(services, cleanup)
	}

	// 3. System prompt, reloaded when SYSTEM.md changes
	system := prompt.NewSource(appCfg)
	services = append(services, system)

	// 4. Completion gateway
	provider, err := llm.NewProvider(ctx, providerCfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize LLM provider")
	}
	gateway := llm.NewGateway(provider, providerCfg)
	if providerCfg.GetAPIKey() == "" && providerCfg.GetProvider() != "ollama" {
		logger.Warn().Msg("LLM_API_KEY is not set, chat requests will fail until it is configured")
	}

	// 5. Chat service
	render, err := conv.NewRenderer(appCfg.ReplyFormat)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize reply renderer")
	}
	opts := []chat.Option{chat.WithRenderer(render)}
	if isDebug() {
		opts = append(opts, chat.WithTokenCounter(llm.CountTokens))
	}
	chatSvc := chat.NewService(store, prompt.NewAssembler(store, system), gateway, opts...)

	logger.Info().
		Str("store", appCfg.SessionStore).
		Str("provider", providerCfg.GetProvider()).
		Str("model", providerCfg.GetModel()).
		Msg("chat service configured")

	return chatSvc, appCfg, services
}

func initStorage(ctx context.Context, cfg *config.AppConfig) (core.SessionStore, srv.Service, error) {
	if !cfg.IsSQLiteSelected() {
		return memory.NewStore(), nil, nil
	}

	db, err := sqlite.NewDB(ctx, cfg.GetDatabasePath())
	if err != nil {
		return nil, nil, err
	}
	return sqlite.NewSessionsRepo(db), srv.NewCleanup(db.Close), nil
}

func initEnv(ctx context.Context, runtimePath string) error {
	logger := log.FromCtx(ctx)
	envFile := filepath.Join(runtimePath, ".env")

	if _, err := os.Stat(envFile); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warn().Err(err).Str("path", envFile).Msg("failed to load .env file")
		return err
	}

	logger.Debug().Str("path", envFile).Msg("loaded .env file")
	return nil
}
