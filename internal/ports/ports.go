package ports

import (
	"context"
	"errors"
	"time"

	"ztechbot/internal/domain"
)

// SourceAdapter pulls fresh content from one upstream provider. Implementations
// contain their own transient failures where possible; the aggregator treats a
// returned error as "this source contributed nothing this cycle".
type SourceAdapter interface {
	Name() string
	Fetch(ctx context.Context) ([]domain.ContentRecord, error)
}

// Publish failure kinds the orchestrator distinguishes. Implementations wrap
// these so callers can match with errors.Is.
var (
	// ErrRateLimited means the target throttled us; the next scheduled run
	// may retry, the current run must not.
	ErrRateLimited = errors.New("publish target rate limited")
	// ErrUnauthorized means credentials are broken. Fatal for the scheduler
	// loop, not just the current run.
	ErrUnauthorized = errors.New("publish target unauthorized")
	// ErrRejected means the target refused the content (duplicate policy,
	// spam heuristics). The content stays unmarked so a different
	// composition can be retried next run.
	ErrRejected = errors.New("publish target rejected post")
)

// PublishTarget posts a finished body to the external platform.
type PublishTarget interface {
	Publish(ctx context.Context, body string) (domain.PublishReceipt, error)
}

// TextGenerator optionally produces post text ahead of the deterministic
// composer. An empty result with a nil error means "fall back to templates".
type TextGenerator interface {
	Generate(ctx context.Context, kind domain.PostKind, articleText string) (string, error)
}

// ErrDuplicatePost is returned by RecordPublish when the external id is
// already in the ledger. Surfaced, never swallowed: an unexpected duplicate
// means something upstream double-published.
var ErrDuplicatePost = errors.New("external id already recorded")

// ContentStore is the persistence boundary: the dedup marker table plus the
// publish ledger and daily counters.
type ContentStore interface {
	IsProcessed(ctx context.Context, fingerprint string) (bool, error)
	MarkProcessed(ctx context.Context, mark domain.ProcessedMark) error
	FilterUnprocessed(ctx context.Context, records []domain.ContentRecord) ([]domain.ContentRecord, error)

	RecordPublish(ctx context.Context, post domain.PublishedPost) error
	HasPostedSince(ctx context.Context, cutoff time.Time) (bool, error)
	RecentPosts(ctx context.Context, limit int) ([]domain.PublishedPost, error)

	UpsertDailyStat(ctx context.Context, date string, postsDelta, contentDelta, errorsDelta int) error
	StatsForLast(ctx context.Context, days int) ([]domain.DailyStat, error)

	CleanupOlderThan(ctx context.Context, days int) (marksRemoved, statsRemoved int64, err error)
	Close() error
}

// Scheduler controls when publish runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
