package domain

import "time"

// ContentRecord is one unit of fetchable content produced by a source adapter.
// Records are immutable after creation.
type ContentRecord struct {
	Title       string
	Summary     string
	Link        string
	Source      string
	SourceURL   string
	PublishedAt time.Time // zero value means the publish time is unknown
	Fingerprint string
}

// NewContentRecord builds a record and derives its fingerprint from title+summary.
func NewContentRecord(title, summary, link, source, sourceURL string, publishedAt time.Time) ContentRecord {
	return ContentRecord{
		Title:       title,
		Summary:     summary,
		Link:        link,
		Source:      source,
		SourceURL:   sourceURL,
		PublishedAt: publishedAt,
		Fingerprint: Fingerprint(title, summary),
	}
}

// PostKind selects the template family used to compose a post.
type PostKind string

const (
	KindNews      PostKind = "news"
	KindInsight   PostKind = "insight"
	KindQuestion  PostKind = "question"
	KindHighlight PostKind = "highlight"
	KindCurated   PostKind = "curated"
)

// PostDraft is the in-memory output of the composer. Drafts are validated,
// published, and discarded; they are never persisted.
type PostDraft struct {
	Body string
	Kind PostKind
	// Records are the content items consumed to produce this draft.
	// Empty for synthetic posts that were not derived from fetched content.
	Records []ContentRecord
}

// PublishReceipt is what the publish target returns on a confirmed publish.
// Engagement holds the metrics snapshot the platform reported at publish
// time; nil when the platform sent none.
type PublishReceipt struct {
	ExternalID  string
	PublishedAt time.Time
	Engagement  map[string]int
}

// PublishedPost is the durable record of one successful publish.
type PublishedPost struct {
	ExternalID  string
	Body        string
	Source      string
	SourceURL   string
	PublishedAt time.Time
	Engagement  map[string]int
}

// ProcessedMark records that content with a given fingerprint has already
// been turned into a post. At most one mark exists per fingerprint.
type ProcessedMark struct {
	Fingerprint string
	Source      string
	SourceURL   string
	Title       string
	Summary     string
	ProcessedAt time.Time
}

// MarkFor derives the dedup marker for a consumed content record.
func MarkFor(record ContentRecord, at time.Time) ProcessedMark {
	return ProcessedMark{
		Fingerprint: record.Fingerprint,
		Source:      record.Source,
		SourceURL:   record.SourceURL,
		Title:       record.Title,
		Summary:     record.Summary,
		ProcessedAt: at,
	}
}

// DailyStat aggregates one calendar day of pipeline activity.
type DailyStat struct {
	Date             string // YYYY-MM-DD
	PostsPublished   int
	ContentProcessed int
	Errors           int
}

// DateKey formats a timestamp as the daily_stats primary key.
func DateKey(t time.Time) string {
	return t.Format("2006-01-02")
}
