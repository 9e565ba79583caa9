package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"ztechbot/internal/domain"
	"ztechbot/internal/ports"
)

// Publisher posts tweets through the v2 API.
type Publisher struct {
	baseURL     string
	accessToken string
	client      *http.Client
	now         func() time.Time
}

var _ ports.PublishTarget = (*Publisher)(nil)

// NewPublisher builds a publisher against the given API base URL.
func NewPublisher(baseURL, accessToken string) *Publisher {
	return &Publisher{
		baseURL:     baseURL,
		accessToken: accessToken,
		client:      &http.Client{Timeout: 15 * time.Second},
		now:         time.Now,
	}
}

type tweetRequest struct {
	Text string `json:"text"`
}

type tweetResponse struct {
	Data struct {
		ID            string         `json:"id"`
		PublicMetrics map[string]int `json:"public_metrics"`
	} `json:"data"`
}

// Publish posts the body as a tweet and returns the platform id. Failure
// kinds map to the sentinel errors so the orchestrator can match them:
// 429 is ErrRateLimited, 401 is ErrUnauthorized, 403 is ErrRejected.
func (p *Publisher) Publish(ctx context.Context, body string) (domain.PublishReceipt, error) {
	payload, err := json.Marshal(tweetRequest{Text: body})
	if err != nil {
		return domain.PublishReceipt{}, fmt.Errorf("encode tweet: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/2/tweets", bytes.NewReader(payload))
	if err != nil {
		return domain.PublishReceipt{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.accessToken)

	resp, err := p.client.Do(req)
	if err != nil {
		return domain.PublishReceipt{}, fmt.Errorf("post tweet: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusCreated, http.StatusOK:
	case http.StatusTooManyRequests:
		return domain.PublishReceipt{}, fmt.Errorf("post tweet: %w", ports.ErrRateLimited)
	case http.StatusUnauthorized:
		return domain.PublishReceipt{}, fmt.Errorf("post tweet: %w", ports.ErrUnauthorized)
	case http.StatusForbidden:
		return domain.PublishReceipt{}, fmt.Errorf("post tweet: %w", ports.ErrRejected)
	default:
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return domain.PublishReceipt{}, fmt.Errorf("post tweet: status %d: %s", resp.StatusCode, detail)
	}

	var parsed tweetResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.PublishReceipt{}, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Data.ID == "" {
		return domain.PublishReceipt{}, fmt.Errorf("response carried no tweet id")
	}

	return domain.PublishReceipt{
		ExternalID:  parsed.Data.ID,
		PublishedAt: p.now(),
		Engagement:  parsed.Data.PublicMetrics,
	}, nil
}
