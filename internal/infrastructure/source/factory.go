package source

import (
	"log/slog"

	"ztechbot/internal/config"
	"ztechbot/internal/ports"
)

// Build assembles the source adapters enabled by configuration. Sources with
// missing credentials are skipped, not errors: the bot runs with whatever
// upstreams it can reach.
func Build(cfg config.SourcesConfig, logger *slog.Logger) []ports.SourceAdapter {
	var adapters []ports.SourceAdapter

	for _, feed := range cfg.RSSFeeds {
		if feed.URL == "" {
			continue
		}
		adapters = append(adapters, NewRSSAdapter(feed.Name, feed.URL))
	}

	if cfg.Reddit.ClientID != "" && cfg.Reddit.ClientSecret != "" && len(cfg.Reddit.Subreddits) > 0 {
		adapter, err := NewRedditAdapter(
			cfg.Reddit.ClientID,
			cfg.Reddit.ClientSecret,
			cfg.Reddit.Username,
			cfg.Reddit.Password,
			cfg.Reddit.UserAgent,
			cfg.Reddit.Subreddits,
		)
		if err != nil {
			logger.Warn("reddit adapter disabled", "error", err)
		} else {
			adapters = append(adapters, adapter)
		}
	} else {
		logger.Debug("reddit adapter disabled, credentials missing")
	}

	if cfg.NewsAPI.APIKey != "" {
		adapters = append(adapters, NewNewsAPIAdapter(cfg.NewsAPI.Endpoint, cfg.NewsAPI.APIKey, cfg.NewsAPI.Query))
	} else {
		logger.Debug("newsapi adapter disabled, api key missing")
	}

	logger.Info("source adapters ready", "count", len(adapters))
	return adapters
}
