// Package web exposes the relay over HTTP: GET /health and POST /api/chat.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sandevgo/tuskrelay/internal/service/chat"
	"github.com/sandevgo/tuskrelay/internal/service/guard"
	"github.com/sandevgo/tuskrelay/pkg/log"
)

const shutdownTimeout = 15 * time.Second

type ChatService interface {
	Reply(ctx context.Context, sessionID, message string) (chat.Reply, error)
}

type Config struct {
	Addr           string
	TrustedProxies []string
	Debug          bool
}

type Server struct {
	guard  *guard.Guard
	chat   ChatService
	engine *gin.Engine
	http   *http.Server
}

func NewServer(ctx context.Context, cfg Config, g *guard.Guard, chatSvc ChatService) (*Server, error) {
	if cfg.Debug {
		gin.SetMode(gin.DebugMode)
	} else if gin.Mode() != gin.TestMode {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.HandleMethodNotAllowed = true
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("invalid trusted proxies: %w", err)
	}

	s := &Server{
		guard:  g,
		chat:   chatSvc,
		engine: engine,
	}

	engine.Use(requestLogger(*log.FromCtx(ctx)), recovery())
	engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, errorResponse{Reply: "not found"})
	})
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, errorResponse{Reply: "method not allowed"})
	})

	engine.GET("/health", s.handleHealth)

	api := engine.Group("/api", cors(g.Origins()))
	api.POST("/chat", s.handleChat)
	api.OPTIONS("/chat", handlePreflight)

	s.http = &http.Server{
		Addr:              cfg.Addr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Start(ctx context.Context) error {
	log.FromCtx(ctx).Info().Str("addr", s.http.Addr).Msg("starting http server")
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown drains in-flight requests. The caller's context is usually
// already cancelled, so draining gets its own deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}
