package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"ztechbot/internal/config"
	"ztechbot/internal/domain"
	"ztechbot/internal/ports"
)

// Generator implements ports.TextGenerator backed by OpenAI-compatible APIs.
type Generator struct {
	endpoint   string
	model      string
	apiKey     string
	httpClient *http.Client
}

var _ ports.TextGenerator = (*Generator)(nil)

// NewGenerator builds a generator from configuration.
func NewGenerator(cfg config.GeneratorConfig) *Generator {
	return &Generator{
		endpoint: cfg.Endpoint,
		model:    cfg.Model,
		apiKey:   cfg.APIKey,
		httpClient: &http.Client{
			Timeout: 20 * time.Second,
		},
	}
}

const systemPrompt = "Eres un community manager de tecnología. Escribes tuits en español, " +
	"concisos, informativos y con un tono cercano. Nunca superas los 280 caracteres " +
	"y nunca inventas datos que no estén en el artículo."

var kindPrompts = map[domain.PostKind]string{
	domain.KindNews:      "Redacta un tuit noticioso sobre este artículo:",
	domain.KindInsight:   "Redacta un tuit que destaque la idea más interesante de este artículo:",
	domain.KindQuestion:  "Redacta un tuit que resuma este artículo y termine con una pregunta a la audiencia:",
	domain.KindHighlight: "Redacta un tuit que resalte por qué este artículo importa:",
}

// Generate asks the model for post text. A misconfigured generator returns
// empty text with a nil error so the composer falls back to templates.
func (g *Generator) Generate(ctx context.Context, kind domain.PostKind, articleText string) (string, error) {
	if g == nil || g.apiKey == "" || g.endpoint == "" || g.model == "" {
		return "", nil
	}

	prompt, ok := kindPrompts[kind]
	if !ok {
		prompt = kindPrompts[domain.KindNews]
	}

	body, err := json.Marshal(map[string]any{
		"model":      g.model,
		"max_tokens": 120,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt + "\n\n" + articleText},
		},
	})
	if err != nil {
		return "", fmt.Errorf("marshal generation payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+g.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("generate text: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("generator error %s: %s", resp.Status, strings.TrimSpace(string(payload)))
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode generation response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", nil
	}

	return cleanOutput(parsed.Choices[0].Message.Content), nil
}

// cleanOutput strips the quote wrapping and label prefixes models like to add.
func cleanOutput(text string) string {
	text = strings.TrimSpace(text)
	text = strings.Trim(text, `"“”`)
	for _, prefix := range []string{"Tuit:", "Tweet:"} {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimSpace(strings.TrimPrefix(text, prefix))
		}
	}
	return text
}
