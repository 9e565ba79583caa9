package compose

import (
	"fmt"
	"log/slog"
	"math/rand"
	"regexp"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"ztechbot/internal/domain"
)

// Config bounds what the composer may produce. A zero value is filled with
// the defaults the bot has always used.
type Config struct {
	MaxLength     int
	MinLength     int
	SummaryLimit  int
	MaxHashtags   int
	BaseHashtags  []string
	TopicHashtags []string
}

// DefaultConfig returns the standard single-post composer profile.
func DefaultConfig() Config {
	return Config{
		MaxLength:    280,
		MinLength:    50,
		SummaryLimit: 200,
		MaxHashtags:  5,
		BaseHashtags: []string{"#tecnologia", "#innovacion"},
		TopicHashtags: []string{
			"#AI", "#programacion", "#desarrollo", "#startup", "#cybersecurity",
			"#datascience", "#machinelearning", "#blockchain", "#cloud", "#devops",
			"#webdev", "#mobile", "#gaming", "#fintech", "#edtech", "#healthtech",
		},
	}
}

var (
	disallowedExpr  = regexp.MustCompile(`[^\p{L}\p{N}_\s.,!?@#:()/-]`)
	boilerplateExpr = regexp.MustCompile(`(?i)^(Breaking|News|Update|Latest|New):\s*`)
	whitespaceExpr  = regexp.MustCompile(`\s+`)
)

var leadIns = map[domain.PostKind][]string{
	domain.KindInsight: {
		"💡 Interesante perspectiva:",
		"🔍 Análisis destacado:",
		"⚡ Insight tecnológico:",
		"🚀 Innovación notable:",
		"🎯 Punto clave:",
	},
	domain.KindHighlight: {
		"⭐ Destacado:",
		"🔥 Trending:",
		"📈 Importante:",
		"🎯 Clave:",
		"💎 Joya tecnológica:",
	},
}

var engagementQuestions = []string{
	"¿Qué opinas sobre esto?",
	"¿Cómo crees que impactará esto?",
	"¿Has probado algo similar?",
	"¿Cuál es tu experiencia con esto?",
	"¿Qué te parece esta tendencia?",
}

// Composer turns content records into post drafts under the length ceiling.
type Composer struct {
	cfg    Config
	rng    *rand.Rand
	logger *slog.Logger
}

// NewComposer builds a composer. A nil rng gets a time-seeded one; tests
// inject a fixed seed.
func NewComposer(cfg Config, rng *rand.Rand, logger *slog.Logger) *Composer {
	def := DefaultConfig()
	if cfg.MaxLength == 0 {
		cfg.MaxLength = def.MaxLength
	}
	if cfg.MinLength == 0 {
		cfg.MinLength = def.MinLength
	}
	if cfg.SummaryLimit == 0 {
		cfg.SummaryLimit = def.SummaryLimit
	}
	if cfg.MaxHashtags == 0 {
		cfg.MaxHashtags = def.MaxHashtags
	}
	if len(cfg.BaseHashtags) == 0 {
		cfg.BaseHashtags = def.BaseHashtags
	}
	if len(cfg.TopicHashtags) == 0 {
		cfg.TopicHashtags = def.TopicHashtags
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Composer{cfg: cfg, rng: rng, logger: logger}
}

var (
	insightKeywords = []string{
		"ai", "inteligencia artificial", "machine learning", "neural",
	}
	highlightKeywords = []string{
		"launch", "launches", "release", "releases", "unveil", "unveils", "lanzamiento",
	}
)

// Classify picks the post kind used to prompt the text generator for a record.
// Keywords match whole words only, so "said" or "rain" never reads as AI.
func (c *Composer) Classify(record domain.ContentRecord) domain.PostKind {
	text := record.Title + " " + record.Summary
	switch {
	case domain.HasAnyKeyword(text, insightKeywords):
		return domain.KindInsight
	case domain.HasAnyKeyword(text, highlightKeywords):
		return domain.KindHighlight
	default:
		return domain.KindNews
	}
}

// Single composes one post from one record. A non-empty override (generated
// text) is used as the body when it fits the ceiling; otherwise the
// deterministic templates take over. Returns nil when no valid post can be
// produced from the record.
func (c *Composer) Single(record domain.ContentRecord, override string) *domain.PostDraft {
	title := c.CleanTitle(record.Title)
	link := strings.TrimSpace(record.Link)
	if title == "" || link == "" {
		c.warn("record rejected before composition", "title", record.Title, "link", record.Link)
		return nil
	}

	if override = strings.TrimSpace(override); override != "" {
		if runeLen(override) <= c.cfg.MaxLength {
			return &domain.PostDraft{
				Body:    override,
				Kind:    c.Classify(record),
				Records: []domain.ContentRecord{record},
			}
		}
		c.warn("generated text over budget, falling back to templates", "length", runeLen(override))
	}

	kind := c.randomKind()
	summary := c.CleanSummary(record.Summary)
	hashtags := c.hashtagBlock()

	body := c.lead(kind, title)
	// the original reserves 50 chars of slack before admitting the summary
	if summary != "" && runeLen(body)+runeLen(summary)+50 < c.cfg.MaxLength {
		body += "\n\n" + summary
	}
	body += "\n\n" + link + "\n\n" + hashtags

	if runeLen(body) > c.cfg.MaxLength {
		body = c.simpleBody(title, link, hashtags)
		if body == "" {
			return nil
		}
	}

	return &domain.PostDraft{Body: body, Kind: kind, Records: []domain.ContentRecord{record}}
}

// Curated composes a numbered digest of up to three records. If the digest
// would blow the ceiling it degrades to a single post from the first record.
func (c *Composer) Curated(records []domain.ContentRecord) *domain.PostDraft {
	type entry struct {
		record domain.ContentRecord
		title  string
		link   string
	}

	var usable []entry
	for _, record := range records {
		title := c.CleanTitle(record.Title)
		link := strings.TrimSpace(record.Link)
		if title == "" || link == "" {
			continue
		}
		usable = append(usable, entry{record: record, title: title, link: link})
		if len(usable) == 3 {
			break
		}
	}
	if len(usable) == 0 {
		return nil
	}

	var b strings.Builder
	b.WriteString("📚 Resumen tecnológico del día:\n\n")
	consumed := make([]domain.ContentRecord, 0, len(usable))
	for i, e := range usable {
		fmt.Fprintf(&b, "%d. %s\n%s\n\n", i+1, e.title, e.link)
		consumed = append(consumed, e.record)
	}
	b.WriteString(c.hashtagBlock())

	body := b.String()
	if runeLen(body) > c.cfg.MaxLength {
		return c.Single(usable[0].record, "")
	}

	return &domain.PostDraft{Body: body, Kind: domain.KindCurated, Records: consumed}
}

// CleanTitle strips markup, disallowed characters, and boilerplate prefixes,
// collapses whitespace, and upper-cases the first rune.
func (c *Composer) CleanTitle(title string) string {
	title = stripMarkup(title)
	title = disallowedExpr.ReplaceAllString(title, "")
	title = boilerplateExpr.ReplaceAllString(title, "")
	title = whitespaceExpr.ReplaceAllString(title, " ")
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	first, size := utf8.DecodeRuneInString(title)
	return string(unicode.ToUpper(first)) + title[size:]
}

// CleanSummary cleans like CleanTitle (without prefix stripping or casing)
// and truncates to the configured limit, rune-safe.
func (c *Composer) CleanSummary(summary string) string {
	summary = stripMarkup(summary)
	summary = disallowedExpr.ReplaceAllString(summary, "")
	summary = whitespaceExpr.ReplaceAllString(summary, " ")
	summary = strings.TrimSpace(summary)
	return truncateRunes(summary, c.cfg.SummaryLimit)
}

func (c *Composer) randomKind() domain.PostKind {
	kinds := []domain.PostKind{
		domain.KindNews, domain.KindInsight, domain.KindQuestion, domain.KindHighlight,
	}
	return kinds[c.rng.Intn(len(kinds))]
}

func (c *Composer) lead(kind domain.PostKind, title string) string {
	switch kind {
	case domain.KindInsight, domain.KindHighlight:
		options := leadIns[kind]
		return options[c.rng.Intn(len(options))] + "\n\n" + title
	case domain.KindQuestion:
		question := engagementQuestions[c.rng.Intn(len(engagementQuestions))]
		return "🤔 " + title + "\n\n" + question
	default:
		return "📰 " + title
	}
}

// simpleBody is the minimal fallback: lead + truncated title + link + hashtags.
func (c *Composer) simpleBody(title, link, hashtags string) string {
	// 10 covers the lead emoji plus the joining newlines
	base := runeLen(link) + runeLen(hashtags) + 10
	available := c.cfg.MaxLength - base
	if available < 4 {
		c.warn("no room left for a title", "available", available)
		return ""
	}
	title = truncateRunes(title, available)
	return "📰 " + title + "\n\n" + link + "\n\n" + hashtags
}

// hashtagBlock joins the base set with 1-3 extra topic tags drawn without
// replacement, capped at MaxHashtags total.
func (c *Composer) hashtagBlock() string {
	tags := append([]string(nil), c.cfg.BaseHashtags...)

	extra := 1 + c.rng.Intn(3)
	if room := c.cfg.MaxHashtags - len(tags); extra > room {
		extra = room
	}
	if extra > len(c.cfg.TopicHashtags) {
		extra = len(c.cfg.TopicHashtags)
	}
	if extra > 0 {
		for _, idx := range c.rng.Perm(len(c.cfg.TopicHashtags))[:extra] {
			tags = append(tags, c.cfg.TopicHashtags[idx])
		}
	}

	return strings.Join(tags, " ")
}

func (c *Composer) warn(msg string, args ...any) {
	if c.logger != nil {
		c.logger.Warn(msg, args...)
	}
}

func stripMarkup(s string) string {
	if !strings.ContainsAny(s, "<&") {
		return s
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return s
	}
	return doc.Text()
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
