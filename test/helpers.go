// Package test holds fixtures shared by the integration suites.
package test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/sandevgo/tuskrelay/internal/core"
)

// CompletionRequest is what the fake provider saw for one call.
type CompletionRequest struct {
	Model       string         `json:"model"`
	Messages    []core.Message `json:"messages"`
	Temperature float64        `json:"temperature"`
	Stream      bool           `json:"stream"`
	Auth        string         `json:"-"`
}

// FakeProvider is an OpenAI-compatible completion endpoint backed by
// httptest. It answers "reply N" unless a failure status is set.
type FakeProvider struct {
	*httptest.Server

	mu       sync.Mutex
	requests []CompletionRequest
	status   int
	content  *string
}

func NewFakeProvider(t *testing.T) *FakeProvider {
	t.Helper()

	p := &FakeProvider{status: http.StatusOK}
	p.Server = httptest.NewServer(http.HandlerFunc(p.handle))
	t.Cleanup(p.Close)
	return p
}

func (p *FakeProvider) handle(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/v1/chat/completions" {
		http.NotFound(w, r)
		return
	}

	var req CompletionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	req.Auth = r.Header.Get("Authorization")

	p.mu.Lock()
	p.requests = append(p.requests, req)
	n := len(p.requests)
	status, content := p.status, p.content
	p.mu.Unlock()

	if status != http.StatusOK {
		http.Error(w, `{"error":{"message":"provider exploded"}}`, status)
		return
	}

	text := "reply " + strconv.Itoa(n)
	if content != nil {
		text = *content
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]any{"role": core.RoleAssistant, "content": text}},
		},
	})
}

// FailWith makes subsequent calls answer with status.
func (p *FakeProvider) FailWith(status int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = status
}

// ReplyWith fixes the content of subsequent answers.
func (p *FakeProvider) ReplyWith(content string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.content = &content
}

func (p *FakeProvider) Requests() []CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]CompletionRequest(nil), p.requests...)
}

func (p *FakeProvider) Last() CompletionRequest {
	reqs := p.Requests()
	if len(reqs) == 0 {
		return CompletionRequest{}
	}
	return reqs[len(reqs)-1]
}
