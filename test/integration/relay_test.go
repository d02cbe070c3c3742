package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sandevgo/tuskrelay/internal/config"
	"github.com/sandevgo/tuskrelay/internal/core"
	"github.com/sandevgo/tuskrelay/internal/providers/llm"
	"github.com/sandevgo/tuskrelay/internal/service/chat"
	"github.com/sandevgo/tuskrelay/internal/service/guard"
	"github.com/sandevgo/tuskrelay/internal/service/prompt"
	"github.com/sandevgo/tuskrelay/internal/storage/sqlite"
	"github.com/sandevgo/tuskrelay/internal/transport/web"
	"github.com/sandevgo/tuskrelay/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	origin = "https://widget.example.com"
	token  = "integration-token"
)

type relay struct {
	url      string
	provider *test.FakeProvider
	store    core.SessionStore
}

type chatResponse struct {
	Reply     string `json:"reply"`
	SessionID string `json:"sessionId"`
}

// newRelay wires the full stack from environment configuration, the same
// way `relay serve` does, against a fake provider and a sqlite store.
func newRelay(t *testing.T, extraEnv map[string]string) *relay {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx := context.Background()
	provider := test.NewFakeProvider(t)
	runtime := t.TempDir()

	env := map[string]string{
		"RELAY_RUNTIME_PATH": runtime,
		"SESSION_STORE":      config.StoreSQLite,
		"ALLOWED_ORIGINS":    origin,
		"WIDGET_TOKEN":       token,
		"LLM_PROVIDER":       "custom",
		"LLM_BASE_URL":       provider.URL,
		"LLM_API_KEY":        "sk-test",
		"LLM_MODEL":          "test-model",
		"SYSTEM_PROMPT":      "You are the test assistant.",
	}
	for k, v := range extraEnv {
		env[k] = v
	}
	for k, v := range env {
		t.Setenv(k, v)
	}

	appCfg, err := config.ParseAppConfig()
	require.NoError(t, err)
	guardCfg, err := config.ParseGuardConfig()
	require.NoError(t, err)
	providerCfg, err := config.ParseProviderConfig()
	require.NoError(t, err)

	db, err := sqlite.NewDB(ctx, appCfg.GetDatabasePath())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	store := sqlite.NewSessionsRepo(db)

	aiProvider, err := llm.NewProvider(ctx, providerCfg)
	require.NoError(t, err)
	gateway := llm.NewGateway(aiProvider, providerCfg)

	system := prompt.NewSource(appCfg)
	svc := chat.NewService(store, prompt.NewAssembler(store, system), gateway)

	limiter := guard.NewRateLimiter(guardCfg.RateLimitRequests, guardCfg.RateLimitWindow)
	g := guard.NewGuard(guard.NewAllowList(guardCfg.AllowedOrigins), guardCfg.WidgetToken, limiter)

	server, err := web.NewServer(ctx, web.Config{TrustedProxies: guardCfg.TrustedProxies}, g, svc)
	require.NoError(t, err)

	ts := httptest.NewServer(server.Handler())
	t.Cleanup(ts.Close)

	return &relay{url: ts.URL, provider: provider, store: store}
}

func (r *relay) post(t *testing.T, body any) (*http.Response, chatResponse) {
	t.Helper()

	data, err := json.Marshal(body)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, r.url+"/api/chat", bytes.NewReader(data))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", origin)
	req.Header.Set(guard.WidgetTokenHeader, token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var out chatResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestRelay_Conversation(t *testing.T) {
	r := newRelay(t, nil)

	resp, first := r.post(t, map[string]string{"message": "Hi"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "reply 1", first.Reply)
	require.NotEmpty(t, first.SessionID)

	call := r.provider.Last()
	assert.Equal(t, "test-model", call.Model)
	assert.Equal(t, core.Temperature, call.Temperature)
	assert.False(t, call.Stream)
	assert.Equal(t, "Bearer sk-test", call.Auth)
	assert.Equal(t, []core.Message{
		{Role: core.RoleSystem, Content: "You are the test assistant."},
		{Role: core.RoleUser, Content: "Hi"},
	}, call.Messages)

	resp, second := r.post(t, map[string]string{"message": "And again", "sessionId": first.SessionID})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, first.SessionID, second.SessionID)

	assert.Equal(t, []core.Message{
		{Role: core.RoleSystem, Content: "You are the test assistant."},
		{Role: core.RoleUser, Content: "Hi"},
		{Role: core.RoleAssistant, Content: "reply 1"},
		{Role: core.RoleUser, Content: "And again"},
	}, r.provider.Last().Messages)
}

func TestRelay_HistoryWindow(t *testing.T) {
	r := newRelay(t, nil)
	const sessionID = "window-session"

	for i := 1; i <= 10; i++ {
		resp, _ := r.post(t, map[string]string{"message": fmt.Sprintf("m%d", i), "sessionId": sessionID})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	// 1 system + 12 history + 1 new user turn
	last := r.provider.Last().Messages
	require.Len(t, last, 1+core.MaxHistoryTurns+1)
	assert.Equal(t, core.RoleSystem, last[0].Role)
	assert.Equal(t, "m4", last[1].Content)
	assert.Equal(t, "m10", last[len(last)-1].Content)

	stored, err := r.store.Get(context.Background(), sessionID)
	require.NoError(t, err)
	require.Len(t, stored, core.MaxHistoryTurns)
	assert.Equal(t, "m5", stored[0].Content)
	assert.Equal(t, "reply 10", stored[len(stored)-1].Content)
}

func TestRelay_ProviderFailureKeepsHistory(t *testing.T) {
	r := newRelay(t, nil)
	const sessionID = "failing-session"

	resp, _ := r.post(t, map[string]string{"message": "first", "sessionId": sessionID})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	r.provider.FailWith(http.StatusBadGateway)
	resp, out := r.post(t, map[string]string{"message": "second", "sessionId": sessionID})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "the assistant is unavailable right now, please try again later", out.Reply)
	assert.NotContains(t, out.Reply, "exploded")

	stored, err := r.store.Get(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestRelay_EmptyCompletionFallsBack(t *testing.T) {
	r := newRelay(t, nil)
	r.provider.ReplyWith("   ")

	resp, out := r.post(t, map[string]string{"message": "hello?"})

	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, core.FallbackReply, out.Reply)
}

func TestRelay_SameSessionConcurrentRequests(t *testing.T) {
	r := newRelay(t, nil)
	const sessionID = "busy-session"

	var wg sync.WaitGroup
	for i := range 5 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, _ := r.post(t, map[string]string{"message": fmt.Sprintf("q%d", i), "sessionId": sessionID})
			assert.Equal(t, http.StatusOK, resp.StatusCode)
		}()
	}
	wg.Wait()

	stored, err := r.store.Get(context.Background(), sessionID)
	require.NoError(t, err)
	assert.Len(t, stored, 10)
}

func TestRelay_RateLimit(t *testing.T) {
	r := newRelay(t, map[string]string{"RATE_LIMIT_REQUESTS": "3", "RATE_LIMIT_WINDOW": "1m"})

	for range 3 {
		resp, _ := r.post(t, map[string]string{"message": "hi"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp, out := r.post(t, map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "too many requests, please slow down", out.Reply)
	assert.NotEmpty(t, resp.Header.Get("Retry-After"))
	assert.Len(t, r.provider.Requests(), 3)
}

func TestRelay_RateLimitWindowSlides(t *testing.T) {
	const window = 2 * time.Second
	r := newRelay(t, map[string]string{"RATE_LIMIT_REQUESTS": "3", "RATE_LIMIT_WINDOW": window.String()})

	resp, _ := r.post(t, map[string]string{"message": "hi"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	firstDone := time.Now()
	for range 2 {
		resp, _ := r.post(t, map[string]string{"message": "hi"})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	// halfway through the window the budget is still spent
	time.Sleep(window / 2)
	resp, _ = r.post(t, map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	// once the first request leaves the window one slot frees up
	time.Sleep(time.Until(firstDone.Add(window + 100*time.Millisecond)))
	resp, _ = r.post(t, map[string]string{"message": "hi"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, r.provider.Requests(), 4)
}

func TestRelay_SystemPromptFile(t *testing.T) {
	runtime := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(runtime, "SYSTEM.md"), []byte("From file."), 0644))

	r := newRelay(t, map[string]string{"RELAY_RUNTIME_PATH": runtime})
	resp, _ := r.post(t, map[string]string{"message": "hi"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "From file.", r.provider.Last().Messages[0].Content)
}

func TestRelay_Health(t *testing.T) {
	r := newRelay(t, nil)

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(r.url + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
