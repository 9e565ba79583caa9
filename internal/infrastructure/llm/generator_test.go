package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"ztechbot/internal/config"
	"ztechbot/internal/domain"
)

func TestGenerateReturnsCleanedText(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer key" {
			t.Errorf("missing bearer token")
		}
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" || len(req.Messages) != 2 {
			t.Errorf("unexpected request: %+v", req)
		}
		if !strings.Contains(req.Messages[1].Content, "the article body") {
			t.Errorf("article text missing from prompt")
		}
		w.Write([]byte(`{"choices": [{"message": {"content": "  \"Tuit: Un gran avance en chips.\"  "}}]}`))
	}))
	t.Cleanup(srv.Close)

	g := NewGenerator(config.GeneratorConfig{Endpoint: srv.URL, Model: "test-model", APIKey: "key"})
	text, err := g.Generate(context.Background(), domain.KindNews, "the article body")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if text != "Un gran avance en chips." {
		t.Fatalf("output not cleaned: %q", text)
	}
}

func TestGenerateMisconfiguredIsSilentFallback(t *testing.T) {
	t.Parallel()

	g := NewGenerator(config.GeneratorConfig{})
	text, err := g.Generate(context.Background(), domain.KindNews, "article")
	if err != nil {
		t.Fatalf("misconfigured generator must not error: %v", err)
	}
	if text != "" {
		t.Fatalf("expected empty fallback text, got %q", text)
	}
}

func TestGenerateEmptyChoices(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices": []}`))
	}))
	t.Cleanup(srv.Close)

	g := NewGenerator(config.GeneratorConfig{Endpoint: srv.URL, Model: "m", APIKey: "k"})
	text, err := g.Generate(context.Background(), domain.KindInsight, "article")
	if err != nil || text != "" {
		t.Fatalf("empty choices must fall back silently: %q %v", text, err)
	}
}

func TestGenerateAPIError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": "overloaded"}`, http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	g := NewGenerator(config.GeneratorConfig{Endpoint: srv.URL, Model: "m", APIKey: "k"})
	if _, err := g.Generate(context.Background(), domain.KindNews, "article"); err == nil {
		t.Fatal("expected an error from a 5xx response")
	}
}
