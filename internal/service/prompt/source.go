package prompt

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/sandevgo/tuskrelay/internal/core"
	"github.com/sandevgo/tuskrelay/pkg/log"
)

// DefaultSystemPrompt is used when neither SYSTEM.md nor SYSTEM_PROMPT is set.
const DefaultSystemPrompt = `You are the virtual assistant on the company website.
Answer questions about the company's services, opening hours and how to get in touch.
Reply in the language the visitor writes in, keep answers short and friendly,
and never invent prices, dates or commitments. When you do not know something,
suggest contacting the team through the contact form.`

// Source holds the current system instructions. The file at the configured
// path wins over the configured text; it is re-read whenever it changes.
type Source struct {
	path     string
	fallback string

	mu      sync.RWMutex
	current string

	watcher *fsnotify.Watcher
}

func NewSource(cfg core.PromptConfig) *Source {
	fallback := strings.TrimSpace(cfg.GetSystemPrompt())
	if fallback == "" {
		fallback = DefaultSystemPrompt
	}

	s := &Source{
		path:     cfg.GetSystemPath(),
		fallback: fallback,
	}
	s.current = s.read()
	return s
}

// Text returns the system instructions currently in effect.
func (s *Source) Text() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Source) Reload() string {
	text := s.read()
	s.mu.Lock()
	s.current = text
	s.mu.Unlock()
	return text
}

func (s *Source) read() string {
	if s.path == "" {
		return s.fallback
	}
	content, err := os.ReadFile(s.path)
	if err != nil {
		return s.fallback
	}
	if text := strings.TrimSpace(string(content)); text != "" {
		return text
	}
	return s.fallback
}

// Start watches the directory of the prompt file so that creating,
// editing or removing it takes effect without a restart.
func (s *Source) Start(ctx context.Context) error {
	logger := log.FromCtx(ctx)
	if s.path == "" {
		return nil
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		logger.Warn().Err(err).Str("dir", dir).Msg("system prompt hot reload disabled")
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn().Err(err).Msg("system prompt hot reload disabled")
		return nil
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		logger.Warn().Err(err).Str("dir", dir).Msg("system prompt hot reload disabled")
		return nil
	}

	s.mu.Lock()
	s.watcher = watcher
	s.mu.Unlock()

	logger.Info().Str("path", s.path).Msg("watching system prompt")

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(s.path) {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				text := s.Reload()
				logger.Info().Int("length", len(text)).Msg("system prompt reloaded")
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Error().Err(err).Msg("system prompt watcher error")
		}
	}
}

func (s *Source) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.watcher == nil {
		return nil
	}
	err := s.watcher.Close()
	s.watcher = nil
	if errors.Is(err, fsnotify.ErrClosed) {
		return nil
	}
	return err
}
