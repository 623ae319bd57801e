package sentiment

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"MarketPulse/internal/domain/errs"
	"MarketPulse/pkg/config"
)

type capturedRequest struct {
	method  string
	path    string
	query   string
	headers http.Header
	body    []byte
}

func newProviderServer(t *testing.T, status int, resp string) (*httptest.Server, *capturedRequest) {
	t.Helper()
	got := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.method = r.Method
		got.path = r.URL.Path
		got.query = r.URL.RawQuery
		got.headers = r.Header.Clone()
		got.body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(resp))
	}))
	t.Cleanup(srv.Close)
	return srv, got
}

func TestGeminiGenerateInsight(t *testing.T) {
	srv, got := newProviderServer(t, http.StatusOK,
		`{"candidates":[{"content":{"parts":[{"text":"{\"score\":0.4,\"summary\":\"Upbeat.\"}"}]}}]}`)

	p := NewGeminiProvider(srv.URL, "g-key", "", time.Second)
	text, err := p.GenerateInsight(context.Background(), "prompt body", map[string]any{"price": 42})
	if err != nil {
		t.Fatalf("GenerateInsight: %v", err)
	}
	if text != `{"score":0.4,"summary":"Upbeat."}` {
		t.Fatalf("text = %q", text)
	}
	if got.method != http.MethodPost {
		t.Fatalf("method = %s", got.method)
	}
	if got.path != "/v1beta/models/"+DefaultGeminiModel+":generateContent" {
		t.Fatalf("path = %s", got.path)
	}
	if got.query != "key=g-key" {
		t.Fatalf("query = %s", got.query)
	}

	var req geminiRequest
	if err := json.Unmarshal(got.body, &req); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 2 {
		t.Fatalf("unexpected request shape: %s", got.body)
	}
	if req.Contents[0].Parts[0].Text != "prompt body" {
		t.Fatalf("first part = %q", req.Contents[0].Parts[0].Text)
	}
	if !strings.HasPrefix(req.Contents[0].Parts[1].Text, "Context JSON:\n") ||
		!strings.Contains(req.Contents[0].Parts[1].Text, `"price":42`) {
		t.Fatalf("context part = %q", req.Contents[0].Parts[1].Text)
	}
}

func TestGeminiWithoutContextSendsOnePart(t *testing.T) {
	srv, got := newProviderServer(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`)

	p := NewGeminiProvider(srv.URL, "k", "gemini-pro", time.Second)
	if _, err := p.GenerateInsight(context.Background(), "hi", nil); err != nil {
		t.Fatalf("GenerateInsight: %v", err)
	}
	if !strings.Contains(got.path, "/models/gemini-pro:generateContent") {
		t.Fatalf("path = %s", got.path)
	}
	var req geminiRequest
	_ = json.Unmarshal(got.body, &req)
	if len(req.Contents[0].Parts) != 1 {
		t.Fatalf("expected 1 part, got %d", len(req.Contents[0].Parts))
	}
}

func TestGeminiErrors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		p := NewGeminiProvider("http://127.0.0.1:1", "", "", time.Second)
		_, err := p.GenerateInsight(context.Background(), "x", nil)
		if !errors.Is(err, errs.ErrProviderNotConfigured) {
			t.Fatalf("expected ErrProviderNotConfigured, got %v", err)
		}
	})

	t.Run("upstream status", func(t *testing.T) {
		srv, _ := newProviderServer(t, http.StatusTooManyRequests, `{"error":"quota"}`)
		p := NewGeminiProvider(srv.URL, "k", "", time.Second)
		_, err := p.GenerateInsight(context.Background(), "x", nil)
		var ue *errs.UpstreamError
		if !errors.As(err, &ue) {
			t.Fatalf("expected UpstreamError, got %v", err)
		}
		if ue.Status != http.StatusTooManyRequests || ue.Op != "gemini" {
			t.Fatalf("unexpected upstream error: %+v", ue)
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		srv, _ := newProviderServer(t, http.StatusOK, `{"candidates":[]}`)
		p := NewGeminiProvider(srv.URL, "k", "", time.Second)
		_, err := p.GenerateInsight(context.Background(), "x", nil)
		var pe *errs.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("expected ParseError, got %v", err)
		}
	})
}

func TestClaudeGenerateInsight(t *testing.T) {
	srv, got := newProviderServer(t, http.StatusOK,
		`{"content":[{"type":"text","text":"score: 0.2\nsummary: Calm."}]}`)

	p := NewClaudeProvider(srv.URL, "c-key", "", 0, time.Second)
	text, err := p.GenerateInsight(context.Background(), "prompt", map[string]any{"symbol": "BTCUSDT"})
	if err != nil {
		t.Fatalf("GenerateInsight: %v", err)
	}
	if text != "score: 0.2\nsummary: Calm." {
		t.Fatalf("text = %q", text)
	}
	if got.path != "/v1/messages" {
		t.Fatalf("path = %s", got.path)
	}
	if got.headers.Get("x-api-key") != "c-key" {
		t.Fatalf("x-api-key = %q", got.headers.Get("x-api-key"))
	}
	if got.headers.Get("anthropic-version") != "2023-06-01" {
		t.Fatalf("anthropic-version = %q", got.headers.Get("anthropic-version"))
	}

	var req claudeRequest
	if err := json.Unmarshal(got.body, &req); err != nil {
		t.Fatalf("request body: %v", err)
	}
	if req.Model != DefaultClaudeModel || req.MaxTokens != 512 {
		t.Fatalf("model/max_tokens = %s/%d", req.Model, req.MaxTokens)
	}
	if len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Fatalf("messages = %+v", req.Messages)
	}
	msg := req.Messages[0].Content[0].Text
	if !strings.HasPrefix(msg, "prompt\n\nContext JSON:\n") || !strings.Contains(msg, `"symbol":"BTCUSDT"`) {
		t.Fatalf("message text = %q", msg)
	}
}

func TestClaudeErrors(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		p := NewClaudeProvider("", "", "", 0, time.Second)
		_, err := p.GenerateInsight(context.Background(), "x", nil)
		if !errors.Is(err, errs.ErrProviderNotConfigured) {
			t.Fatalf("expected ErrProviderNotConfigured, got %v", err)
		}
	})

	t.Run("upstream status", func(t *testing.T) {
		srv, _ := newProviderServer(t, http.StatusUnauthorized, `{"type":"error"}`)
		p := NewClaudeProvider(srv.URL, "bad", "", 0, time.Second)
		_, err := p.GenerateInsight(context.Background(), "x", nil)
		var ue *errs.UpstreamError
		if !errors.As(err, &ue) || ue.Status != http.StatusUnauthorized || ue.Op != "claude" {
			t.Fatalf("expected claude UpstreamError 401, got %v", err)
		}
	})

	t.Run("empty content", func(t *testing.T) {
		srv, _ := newProviderServer(t, http.StatusOK, `{"content":[]}`)
		p := NewClaudeProvider(srv.URL, "k", "", 0, time.Second)
		_, err := p.GenerateInsight(context.Background(), "x", nil)
		var pe *errs.ParseError
		if !errors.As(err, &pe) {
			t.Fatalf("expected ParseError, got %v", err)
		}
	})
}

func TestNewProviderSelection(t *testing.T) {
	cfg := &config.Config{}
	cfg.Sentiment.Provider = "claude"
	if got := NewProvider(cfg).Name(); got != "claude" {
		t.Fatalf("provider = %s, want claude", got)
	}
	cfg.Sentiment.Provider = "gemini"
	if got := NewProvider(cfg).Name(); got != "gemini" {
		t.Fatalf("provider = %s, want gemini", got)
	}
}
