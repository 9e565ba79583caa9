package aggregate

import (
	"context"
	"errors"
	"testing"
	"time"

	"ztechbot/internal/domain"
	"ztechbot/internal/ports"
)

type stubAdapter struct {
	name    string
	records []domain.ContentRecord
	err     error
}

func (s stubAdapter) Name() string { return s.name }

func (s stubAdapter) Fetch(ctx context.Context) ([]domain.ContentRecord, error) {
	return s.records, s.err
}

func record(title string, published time.Time) domain.ContentRecord {
	return domain.NewContentRecord(title, "", "https://x.test/"+title, "stub", "https://x.test", published)
}

func TestFetchAllSortsNewestFirst(t *testing.T) {
	t.Parallel()

	now := time.Now()
	adapters := []ports.SourceAdapter{
		stubAdapter{name: "a", records: []domain.ContentRecord{
			record("old", now.Add(-2*time.Hour)),
			record("new", now),
		}},
		stubAdapter{name: "b", records: []domain.ContentRecord{
			record("mid", now.Add(-time.Hour)),
		}},
	}

	out := New(adapters, nil).FetchAll(context.Background())
	if len(out) != 3 {
		t.Fatalf("expected 3 records, got %d", len(out))
	}
	if out[0].Title != "new" || out[1].Title != "mid" || out[2].Title != "old" {
		t.Fatalf("unexpected order: %s, %s, %s", out[0].Title, out[1].Title, out[2].Title)
	}
}

func TestFetchAllUnknownTimestampsSortLast(t *testing.T) {
	t.Parallel()

	now := time.Now()
	adapters := []ports.SourceAdapter{
		stubAdapter{name: "a", records: []domain.ContentRecord{
			record("unknown", time.Time{}),
			record("dated", now.Add(-48 * time.Hour)),
		}},
	}

	out := New(adapters, nil).FetchAll(context.Background())
	if len(out) != 2 {
		t.Fatalf("expected 2 records, got %d", len(out))
	}
	if out[0].Title != "dated" || out[1].Title != "unknown" {
		t.Fatalf("unknown timestamp should sort last, got %s then %s", out[0].Title, out[1].Title)
	}
}

func TestFetchAllContainsAdapterFailure(t *testing.T) {
	t.Parallel()

	now := time.Now()
	adapters := []ports.SourceAdapter{
		stubAdapter{name: "broken", err: errors.New("connection refused")},
		stubAdapter{name: "ok", records: []domain.ContentRecord{record("survivor", now)}},
	}

	out := New(adapters, nil).FetchAll(context.Background())
	if len(out) != 1 {
		t.Fatalf("expected failure to degrade, got %d records", len(out))
	}
	if out[0].Title != "survivor" {
		t.Fatalf("unexpected record: %s", out[0].Title)
	}
}

func TestFreshBoundary(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	adapters := []ports.SourceAdapter{
		stubAdapter{name: "a", records: []domain.ContentRecord{
			record("too-old", now.Add(-24*time.Hour-time.Second)),
			record("just-in", now.Add(-23*time.Hour-59*time.Minute-59*time.Second)),
			record("undated", time.Time{}),
		}},
	}

	agg := New(adapters, nil)
	agg.now = func() time.Time { return now }

	fresh := agg.Fresh(context.Background(), 24)
	if len(fresh) != 1 {
		t.Fatalf("expected exactly one fresh record, got %d", len(fresh))
	}
	if fresh[0].Title != "just-in" {
		t.Fatalf("wrong record survived the window: %s", fresh[0].Title)
	}
}

func TestFreshExactBoundaryIncluded(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	adapters := []ports.SourceAdapter{
		stubAdapter{name: "a", records: []domain.ContentRecord{
			record("exact", now.Add(-24 * time.Hour)),
		}},
	}

	agg := New(adapters, nil)
	agg.now = func() time.Time { return now }

	if fresh := agg.Fresh(context.Background(), 24); len(fresh) != 1 {
		t.Fatalf("record at exactly now-24h must be included, got %d", len(fresh))
	}
}
