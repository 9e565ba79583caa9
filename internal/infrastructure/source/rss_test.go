package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const feedTemplate = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
<title>Test Feed</title>
%s
</channel>
</rss>`

func serveFeed(t *testing.T, items string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, feedTemplate, items)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRSSFetchConvertsEntries(t *testing.T) {
	t.Parallel()

	srv := serveFeed(t, `
<item>
  <title>Go ships a new release</title>
  <link>https://example.com/go</link>
  <description>Faster builds.</description>
  <pubDate>Mon, 02 Jun 2025 10:00:00 GMT</pubDate>
</item>
<item>
  <title>No link here</title>
  <description>dropped</description>
</item>`)

	records, err := NewRSSAdapter("test", srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}

	got := records[0]
	if got.Title != "Go ships a new release" {
		t.Fatalf("wrong title: %s", got.Title)
	}
	if got.Link != "https://example.com/go" {
		t.Fatalf("wrong link: %s", got.Link)
	}
	if got.Source != "test" || got.SourceURL != srv.URL {
		t.Fatalf("wrong provenance: %s %s", got.Source, got.SourceURL)
	}
	if got.PublishedAt.IsZero() {
		t.Fatal("expected a parsed publish time")
	}
	if got.Fingerprint == "" {
		t.Fatal("record must carry a fingerprint")
	}
}

func TestRSSFetchUndatedEntryHasZeroTime(t *testing.T) {
	t.Parallel()

	srv := serveFeed(t, `
<item>
  <title>Undated story</title>
  <link>https://example.com/undated</link>
</item>`)

	records, err := NewRSSAdapter("test", srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if !records[0].PublishedAt.IsZero() {
		t.Fatalf("undated entry must have zero publish time, got %v", records[0].PublishedAt)
	}
}

func TestRSSFetchCapsItemCount(t *testing.T) {
	t.Parallel()

	var items string
	for i := 0; i < 25; i++ {
		items += fmt.Sprintf(`
<item>
  <title>Story %d</title>
  <link>https://example.com/%d</link>
</item>`, i, i)
	}
	srv := serveFeed(t, items)

	records, err := NewRSSAdapter("test", srv.URL).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != maxItemsPerFeed {
		t.Fatalf("expected %d records, got %d", maxItemsPerFeed, len(records))
	}
}

func TestRSSFetchPropagatesServerError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	if _, err := NewRSSAdapter("test", srv.URL).Fetch(context.Background()); err == nil {
		t.Fatal("expected an error from a failing feed")
	}
}
