package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "America/Mexico_City"

	configPathEnv     = "ZTECHBOT_CONFIG"
	databasePathEnv   = "DATABASE_PATH"
	newsAPIKeyEnv     = "NEWS_API_KEY"
	redditIDEnv       = "REDDIT_CLIENT_ID"
	redditSecretEnv   = "REDDIT_CLIENT_SECRET"
	redditUserEnv     = "REDDIT_USERNAME"
	redditPasswordEnv = "REDDIT_PASSWORD"
	twitterTokenEnv   = "TWITTER_ACCESS_TOKEN"
	generatorKeyEnv   = "OPENAI_API_KEY"
	logLevelEnv       = "LOG_LEVEL"
)

// Config holds high-level settings required across the application.
type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Content   ContentConfig   `yaml:"content"`
	Sources   SourcesConfig   `yaml:"sources"`
	Twitter   TwitterConfig   `yaml:"twitter"`
	Generator GeneratorConfig `yaml:"generator"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// DatabaseConfig describes the SQLite database location.
type DatabaseConfig struct {
	Path          string `yaml:"path"`
	RetentionDays int    `yaml:"retentionDays"`
}

// ScheduleConfig defines when publish runs fire.
type ScheduleConfig struct {
	// PostingTimes are local wall-clock HH:MM values, one run each.
	PostingTimes []string `yaml:"postingTimes"`
	// CuratedWeekday/CuratedTime schedule the weekly multi-article digest.
	CuratedWeekday string         `yaml:"curatedWeekday"`
	CuratedTime    string         `yaml:"curatedTime"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the schedule timezone string to a time.Location.
func (s ScheduleConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	tz := s.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ContentConfig bounds what the composer may produce.
type ContentConfig struct {
	FreshnessHours int      `yaml:"freshnessHours"`
	MaxPostLength  int      `yaml:"maxPostLength"`
	MinPostLength  int      `yaml:"minPostLength"`
	SummaryLimit   int      `yaml:"summaryLimit"`
	MaxHashtags    int      `yaml:"maxHashtags"`
	BaseHashtags   []string `yaml:"baseHashtags"`
	TopicHashtags  []string `yaml:"topicHashtags"`
}

// SourcesConfig groups upstream content providers.
type SourcesConfig struct {
	RSSFeeds []RSSFeedConfig `yaml:"rssFeeds"`
	Reddit   RedditConfig    `yaml:"reddit"`
	NewsAPI  NewsAPIConfig   `yaml:"newsApi"`
}

// RSSFeedConfig is a single RSS/Atom endpoint.
type RSSFeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// RedditConfig wires the Reddit API adapter. Empty credentials disable it.
type RedditConfig struct {
	ClientID     string   `yaml:"clientId"`
	ClientSecret string   `yaml:"clientSecret"`
	Username     string   `yaml:"username"`
	Password     string   `yaml:"password"`
	UserAgent    string   `yaml:"userAgent"`
	Subreddits   []string `yaml:"subreddits"`
}

// NewsAPIConfig wires the NewsAPI adapter. An empty key disables it.
type NewsAPIConfig struct {
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"apiKey"`
	Query    string `yaml:"query"`
}

// TwitterConfig holds credentials for the publish target.
type TwitterConfig struct {
	BaseURL     string `yaml:"baseUrl"`
	AccessToken string `yaml:"accessToken"`
}

// GeneratorConfig defines the optional LLM text generator.
type GeneratorConfig struct {
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
	APIKey   string `yaml:"apiKey"`
}

// LoggingConfig carries the log level string.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databasePathEnv); v != "" {
		c.Database.Path = v
	}
	if v := os.Getenv(newsAPIKeyEnv); v != "" {
		c.Sources.NewsAPI.APIKey = v
	}
	if v := os.Getenv(redditIDEnv); v != "" {
		c.Sources.Reddit.ClientID = v
	}
	if v := os.Getenv(redditSecretEnv); v != "" {
		c.Sources.Reddit.ClientSecret = v
	}
	if v := os.Getenv(redditUserEnv); v != "" {
		c.Sources.Reddit.Username = v
	}
	if v := os.Getenv(redditPasswordEnv); v != "" {
		c.Sources.Reddit.Password = v
	}
	if v := os.Getenv(twitterTokenEnv); v != "" {
		c.Twitter.AccessToken = v
	}
	if v := os.Getenv(generatorKeyEnv); v != "" {
		c.Generator.APIKey = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Schedule.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("config: unknown timezone %s, reverting to %s", tz, defaultTimezone)
		loc, err = time.LoadLocation(defaultTimezone)
		if err != nil {
			loc = time.UTC
		}
	}
	c.Schedule.location = loc
}

func mergeConfig(base, override Config) Config {
	if override.Database.Path != "" {
		base.Database.Path = override.Database.Path
	}
	if override.Database.RetentionDays > 0 {
		base.Database.RetentionDays = override.Database.RetentionDays
	}

	if len(override.Schedule.PostingTimes) > 0 {
		base.Schedule.PostingTimes = override.Schedule.PostingTimes
	}
	if override.Schedule.CuratedWeekday != "" {
		base.Schedule.CuratedWeekday = override.Schedule.CuratedWeekday
	}
	if override.Schedule.CuratedTime != "" {
		base.Schedule.CuratedTime = override.Schedule.CuratedTime
	}
	if override.Schedule.Timezone != "" {
		base.Schedule.Timezone = override.Schedule.Timezone
	}

	if override.Content.FreshnessHours > 0 {
		base.Content.FreshnessHours = override.Content.FreshnessHours
	}
	if override.Content.MaxPostLength > 0 {
		base.Content.MaxPostLength = override.Content.MaxPostLength
	}
	if override.Content.MinPostLength > 0 {
		base.Content.MinPostLength = override.Content.MinPostLength
	}
	if override.Content.SummaryLimit > 0 {
		base.Content.SummaryLimit = override.Content.SummaryLimit
	}
	if override.Content.MaxHashtags > 0 {
		base.Content.MaxHashtags = override.Content.MaxHashtags
	}
	if len(override.Content.BaseHashtags) > 0 {
		base.Content.BaseHashtags = override.Content.BaseHashtags
	}
	if len(override.Content.TopicHashtags) > 0 {
		base.Content.TopicHashtags = override.Content.TopicHashtags
	}

	if len(override.Sources.RSSFeeds) > 0 {
		base.Sources.RSSFeeds = override.Sources.RSSFeeds
	}
	if override.Sources.Reddit.ClientID != "" {
		base.Sources.Reddit = override.Sources.Reddit
	}
	if override.Sources.NewsAPI.APIKey != "" || override.Sources.NewsAPI.Endpoint != "" {
		if override.Sources.NewsAPI.Endpoint != "" {
			base.Sources.NewsAPI.Endpoint = override.Sources.NewsAPI.Endpoint
		}
		if override.Sources.NewsAPI.APIKey != "" {
			base.Sources.NewsAPI.APIKey = override.Sources.NewsAPI.APIKey
		}
		if override.Sources.NewsAPI.Query != "" {
			base.Sources.NewsAPI.Query = override.Sources.NewsAPI.Query
		}
	}

	if override.Twitter.BaseURL != "" {
		base.Twitter.BaseURL = override.Twitter.BaseURL
	}
	if override.Twitter.AccessToken != "" {
		base.Twitter.AccessToken = override.Twitter.AccessToken
	}

	if override.Generator.Endpoint != "" {
		base.Generator.Endpoint = override.Generator.Endpoint
	}
	if override.Generator.Model != "" {
		base.Generator.Model = override.Generator.Model
	}
	if override.Generator.APIKey != "" {
		base.Generator.APIKey = override.Generator.APIKey
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Database: DatabaseConfig{Path: "ztech_bot.db", RetentionDays: 30},
		Schedule: ScheduleConfig{
			PostingTimes:   []string{"09:00", "18:00"},
			CuratedWeekday: "Friday",
			CuratedTime:    "17:00",
			Timezone:       defaultTimezone,
		},
		Content: ContentConfig{
			FreshnessHours: 24,
			MaxPostLength:  280,
			MinPostLength:  50,
			SummaryLimit:   200,
			MaxHashtags:    5,
			BaseHashtags:   []string{"#tecnologia", "#innovacion"},
			TopicHashtags: []string{
				"#AI", "#programacion", "#desarrollo", "#startup", "#cybersecurity",
				"#datascience", "#machinelearning", "#blockchain", "#cloud", "#devops",
				"#webdev", "#mobile", "#gaming", "#fintech", "#edtech", "#healthtech",
			},
		},
		Sources: SourcesConfig{
			RSSFeeds: []RSSFeedConfig{
				{Name: "TechCrunch", URL: "https://techcrunch.com/feed/"},
				{Name: "Wired", URL: "https://www.wired.com/feed/rss"},
				{Name: "Ars Technica", URL: "https://feeds.arstechnica.com/arstechnica/index/"},
				{Name: "The Verge", URL: "https://www.theverge.com/rss/index.xml"},
				{Name: "Engadget", URL: "https://www.engadget.com/rss.xml"},
			},
			Reddit: RedditConfig{
				UserAgent: "ztechbot/1.0",
				Subreddits: []string{
					"technology", "programming", "MachineLearning", "artificial", "technews",
				},
			},
			NewsAPI: NewsAPIConfig{
				Endpoint: "https://newsapi.org/v2",
				Query:    "technology OR programming OR AI OR artificial intelligence",
			},
		},
		Twitter: TwitterConfig{BaseURL: "https://api.twitter.com"},
		Generator: GeneratorConfig{
			Endpoint: "https://api.openai.com/v1/chat/completions",
			Model:    "gpt-4o-mini",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
