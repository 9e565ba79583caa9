package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"ztechbot/internal/domain"
	"ztechbot/internal/ports"
)

const newsAPIPageSize = 10

// NewsAPIAdapter queries the NewsAPI /everything endpoint.
type NewsAPIAdapter struct {
	endpoint string
	apiKey   string
	query    string
	client   *http.Client
}

var _ ports.SourceAdapter = (*NewsAPIAdapter)(nil)

// NewNewsAPIAdapter builds an adapter against the given API base URL.
func NewNewsAPIAdapter(endpoint, apiKey, query string) *NewsAPIAdapter {
	return &NewsAPIAdapter{
		endpoint: endpoint,
		apiKey:   apiKey,
		query:    query,
		client:   &http.Client{Timeout: 15 * time.Second},
	}
}

func (a *NewsAPIAdapter) Name() string { return "newsapi" }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Message  string `json:"message"`
	Articles []struct {
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// Fetch pulls the newest matching articles.
func (a *NewsAPIAdapter) Fetch(ctx context.Context) ([]domain.ContentRecord, error) {
	params := url.Values{}
	params.Set("q", a.query)
	params.Set("language", "en")
	params.Set("sortBy", "publishedAt")
	params.Set("pageSize", fmt.Sprint(newsAPIPageSize))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.endpoint+"/everything?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("X-Api-Key", a.apiKey)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("query newsapi: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("newsapi returned status %d", resp.StatusCode)
	}

	var payload newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if payload.Status != "ok" {
		return nil, fmt.Errorf("newsapi error: %s", payload.Message)
	}

	records := make([]domain.ContentRecord, 0, len(payload.Articles))
	for _, article := range payload.Articles {
		if article.Title == "" || article.URL == "" {
			continue
		}

		var published time.Time
		if ts, err := time.Parse(time.RFC3339, article.PublishedAt); err == nil {
			published = ts
		}

		records = append(records, domain.NewContentRecord(
			article.Title,
			article.Description,
			article.URL,
			article.Source.Name,
			a.endpoint,
			published,
		))
	}
	return records, nil
}
