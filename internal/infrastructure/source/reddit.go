package source

import (
	"context"
	"fmt"
	"time"

	"github.com/loganintech/go-reddit/v2/reddit"
	"golang.org/x/time/rate"

	"ztechbot/internal/domain"
	"ztechbot/internal/ports"
)

const (
	postsPerSubreddit = 10
	minRedditScore    = 50
)

// topicKeywords gate which Reddit posts are considered on-topic. Matched as
// whole words, so "rain" or "said" never counts as a hit.
var topicKeywords = []string{
	"ai", "artificial intelligence", "machine learning", "programming",
	"software", "developer", "developers", "startup", "startups",
	"tech", "technology", "cloud", "security", "data", "robot", "robots",
	"robotics", "chip", "chips", "quantum", "open source",
}

// RedditAdapter fetches hot posts from a set of subreddits through the
// authenticated API, throttled to stay inside the API rate limit.
type RedditAdapter struct {
	client     *reddit.Client
	limiter    *rate.Limiter
	subreddits []string
}

var _ ports.SourceAdapter = (*RedditAdapter)(nil)

// NewRedditAdapter authenticates against the Reddit API.
func NewRedditAdapter(id, secret, username, password, userAgent string, subreddits []string) (*RedditAdapter, error) {
	creds := reddit.Credentials{ID: id, Secret: secret, Username: username, Password: password}

	client, err := reddit.NewClient(creds, reddit.WithUserAgent(userAgent))
	if err != nil {
		return nil, fmt.Errorf("create reddit client: %w", err)
	}

	return &RedditAdapter{
		client: client,
		// API allows ~60 reqs/min
		limiter:    rate.NewLimiter(rate.Every(1*time.Second), 1),
		subreddits: subreddits,
	}, nil
}

func (a *RedditAdapter) Name() string { return "reddit" }

// Fetch walks the configured subreddits and keeps high-score on-topic posts.
// A failing subreddit aborts the whole fetch so the aggregator can log one
// failure per source.
func (a *RedditAdapter) Fetch(ctx context.Context) ([]domain.ContentRecord, error) {
	var records []domain.ContentRecord

	for _, sub := range a.subreddits {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		posts, _, err := a.client.Subreddit.HotPosts(ctx, sub, &reddit.ListOptions{Limit: postsPerSubreddit})
		if err != nil {
			return nil, fmt.Errorf("fetch r/%s: %w", sub, err)
		}

		for _, post := range posts {
			if post.Score < minRedditScore || !relevant(post.Title) {
				continue
			}

			var published time.Time
			if post.Created != nil {
				published = post.Created.Time
			}

			records = append(records, domain.NewContentRecord(
				post.Title,
				post.Body,
				"https://www.reddit.com"+post.Permalink,
				"reddit",
				"https://www.reddit.com/r/"+sub,
				published,
			))
		}
	}
	return records, nil
}

func relevant(title string) bool {
	return domain.HasAnyKeyword(title, topicKeywords)
}
