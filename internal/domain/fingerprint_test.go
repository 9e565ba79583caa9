package domain

import (
	"fmt"
	"testing"
	"time"
)

func TestFingerprintDeterministic(t *testing.T) {
	t.Parallel()

	first := Fingerprint("New AI Chip Unveiled", "A company announced...")
	second := Fingerprint("New AI Chip Unveiled", "A company announced...")

	if first != second {
		t.Fatalf("same input produced different fingerprints: %s vs %s", first, second)
	}
	if len(first) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(first))
	}
}

func TestFingerprintEmptySummary(t *testing.T) {
	t.Parallel()

	fp := Fingerprint("Title only", "")
	if fp == "" {
		t.Fatal("empty summary must still produce a fingerprint")
	}
	if fp == Fingerprint("", "") {
		t.Fatal("title must participate in the fingerprint")
	}
}

func TestFingerprintNoCollisions(t *testing.T) {
	t.Parallel()

	seen := make(map[string]string, 10000)
	for i := 0; i < 10000; i++ {
		title := fmt.Sprintf("Article number %d about technology", i)
		summary := fmt.Sprintf("Summary body %d", i*7)
		fp := Fingerprint(title, summary)
		if prev, ok := seen[fp]; ok {
			t.Fatalf("collision between %q and %q", prev, title)
		}
		seen[fp] = title
	}
}

func TestNewContentRecordSetsFingerprint(t *testing.T) {
	t.Parallel()

	record := NewContentRecord("Title", "Summary", "https://x.test/1", "rss", "https://x.test", time.Now())
	if record.Fingerprint != Fingerprint("Title", "Summary") {
		t.Fatalf("record fingerprint mismatch: %s", record.Fingerprint)
	}
}

func TestMarkFor(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	record := NewContentRecord("Title", "Summary", "https://x.test/1", "rss", "https://x.test", now)
	mark := MarkFor(record, now)

	if mark.Fingerprint != record.Fingerprint {
		t.Fatalf("mark fingerprint mismatch: %s", mark.Fingerprint)
	}
	if mark.Title != "Title" || mark.Source != "rss" {
		t.Fatalf("mark metadata not copied: %+v", mark)
	}
	if !mark.ProcessedAt.Equal(now) {
		t.Fatalf("unexpected processed_at: %v", mark.ProcessedAt)
	}
}
