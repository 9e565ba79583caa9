package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "modernc.org/sqlite"

	"ztechbot/internal/domain"
	"ztechbot/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS processed_content (
	fingerprint  TEXT PRIMARY KEY,
	source       TEXT NOT NULL,
	source_url   TEXT NOT NULL DEFAULT '',
	title        TEXT NOT NULL,
	summary      TEXT NOT NULL DEFAULT '',
	processed_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS published_posts (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	external_id  TEXT NOT NULL UNIQUE,
	body         TEXT NOT NULL,
	source       TEXT NOT NULL DEFAULT '',
	source_url   TEXT NOT NULL DEFAULT '',
	published_at INTEGER NOT NULL,
	engagement   TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS daily_stats (
	date              TEXT PRIMARY KEY,
	posts_published   INTEGER NOT NULL DEFAULT 0,
	content_processed INTEGER NOT NULL DEFAULT 0,
	errors            INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_published_posts_published_at
	ON published_posts (published_at);
`

// Repository is the SQLite-backed ContentStore.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

var _ ports.ContentStore = (*Repository)(nil)

// NewRepository opens (creating if needed) the database at path and ensures
// the schema exists.
func NewRepository(path string) (*Repository, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// modernc sqlite is not safe for concurrent writers on one connection pool
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Repository{db: db, now: time.Now}, nil
}

// IsProcessed reports whether a fingerprint already has a dedup marker.
func (r *Repository) IsProcessed(ctx context.Context, fingerprint string) (bool, error) {
	query, args, err := sq.Select("1").
		From("processed_content").
		Where(sq.Eq{"fingerprint": fingerprint}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query processed mark: %w", err)
	}
	return true, nil
}

// MarkProcessed stores a dedup marker. Re-marking an existing fingerprint is
// a no-op, not an error.
func (r *Repository) MarkProcessed(ctx context.Context, mark domain.ProcessedMark) error {
	query, args, err := sq.Insert("processed_content").
		Options("OR IGNORE").
		Columns("fingerprint", "source", "source_url", "title", "summary", "processed_at").
		Values(mark.Fingerprint, mark.Source, mark.SourceURL, mark.Title, mark.Summary, mark.ProcessedAt.Unix()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert processed mark: %w", err)
	}
	return nil
}

// FilterUnprocessed returns the records with no dedup marker, preserving the
// input order.
func (r *Repository) FilterUnprocessed(ctx context.Context, records []domain.ContentRecord) ([]domain.ContentRecord, error) {
	out := make([]domain.ContentRecord, 0, len(records))
	for _, record := range records {
		seen, err := r.IsProcessed(ctx, record.Fingerprint)
		if err != nil {
			return nil, err
		}
		if !seen {
			out = append(out, record)
		}
	}
	return out, nil
}

// RecordPublish appends a post to the publish ledger. A duplicate external id
// returns ports.ErrDuplicatePost.
func (r *Repository) RecordPublish(ctx context.Context, post domain.PublishedPost) error {
	engagement := post.Engagement
	if engagement == nil {
		engagement = map[string]int{}
	}
	raw, err := json.Marshal(engagement)
	if err != nil {
		return fmt.Errorf("encode engagement: %w", err)
	}

	query, args, err := sq.Insert("published_posts").
		Columns("external_id", "body", "source", "source_url", "published_at", "engagement").
		Values(post.ExternalID, post.Body, post.Source, post.SourceURL, post.PublishedAt.Unix(), string(raw)).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return fmt.Errorf("record publish %s: %w", post.ExternalID, ports.ErrDuplicatePost)
		}
		return fmt.Errorf("insert published post: %w", err)
	}
	return nil
}

// HasPostedSince reports whether any post landed at or after cutoff.
func (r *Repository) HasPostedSince(ctx context.Context, cutoff time.Time) (bool, error) {
	query, args, err := sq.Select("COUNT(*)").
		From("published_posts").
		Where(sq.GtOrEq{"published_at": cutoff.Unix()}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var count int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("count recent posts: %w", err)
	}
	return count > 0, nil
}

// RecentPosts returns the latest ledger entries, newest first.
func (r *Repository) RecentPosts(ctx context.Context, limit int) ([]domain.PublishedPost, error) {
	query, args, err := sq.Select("external_id", "body", "source", "source_url", "published_at", "engagement").
		From("published_posts").
		OrderBy("published_at DESC", "id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.PublishedPost
	for rows.Next() {
		var (
			post      domain.PublishedPost
			published int64
			rawEng    string
		)
		if err := rows.Scan(&post.ExternalID, &post.Body, &post.Source, &post.SourceURL, &published, &rawEng); err != nil {
			return nil, fmt.Errorf("scan published post: %w", err)
		}
		post.PublishedAt = time.Unix(published, 0).UTC()
		if err := json.Unmarshal([]byte(rawEng), &post.Engagement); err != nil {
			return nil, fmt.Errorf("decode engagement: %w", err)
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// UpsertDailyStat adds the deltas to the counters for a date, creating the row
// on first touch.
func (r *Repository) UpsertDailyStat(ctx context.Context, date string, postsDelta, contentDelta, errorsDelta int) error {
	query, args, err := sq.Insert("daily_stats").
		Columns("date", "posts_published", "content_processed", "errors").
		Values(date, postsDelta, contentDelta, errorsDelta).
		Suffix(`ON CONFLICT(date) DO UPDATE SET
			posts_published = posts_published + excluded.posts_published,
			content_processed = content_processed + excluded.content_processed,
			errors = errors + excluded.errors`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert daily stat: %w", err)
	}
	return nil
}

// StatsForLast returns the daily counters for the trailing window, newest
// first. Days with no activity have no row and are absent.
func (r *Repository) StatsForLast(ctx context.Context, days int) ([]domain.DailyStat, error) {
	since := domain.DateKey(r.now().AddDate(0, 0, -days))

	query, args, err := sq.Select("date", "posts_published", "content_processed", "errors").
		From("daily_stats").
		Where(sq.GtOrEq{"date": since}).
		OrderBy("date DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query daily stats: %w", err)
	}
	defer rows.Close()

	var stats []domain.DailyStat
	for rows.Next() {
		var stat domain.DailyStat
		if err := rows.Scan(&stat.Date, &stat.PostsPublished, &stat.ContentProcessed, &stat.Errors); err != nil {
			return nil, fmt.Errorf("scan daily stat: %w", err)
		}
		stats = append(stats, stat)
	}
	return stats, rows.Err()
}

// CleanupOlderThan removes dedup markers and daily counters older than the
// retention window. The publish ledger is permanent and is never touched.
func (r *Repository) CleanupOlderThan(ctx context.Context, days int) (marksRemoved, statsRemoved int64, err error) {
	cutoff := r.now().AddDate(0, 0, -days)

	query, args, err := sq.Delete("processed_content").
		Where(sq.Lt{"processed_at": cutoff.Unix()}).
		ToSql()
	if err != nil {
		return 0, 0, fmt.Errorf("build delete: %w", err)
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, 0, fmt.Errorf("delete processed marks: %w", err)
	}
	marksRemoved, _ = res.RowsAffected()

	query, args, err = sq.Delete("daily_stats").
		Where(sq.Lt{"date": domain.DateKey(cutoff)}).
		ToSql()
	if err != nil {
		return marksRemoved, 0, fmt.Errorf("build delete: %w", err)
	}
	res, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return marksRemoved, 0, fmt.Errorf("delete daily stats: %w", err)
	}
	statsRemoved, _ = res.RowsAffected()

	return marksRemoved, statsRemoved, nil
}

// Close releases the underlying database handle.
func (r *Repository) Close() error {
	return r.db.Close()
}
