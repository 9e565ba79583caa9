package aggregate

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"ztechbot/internal/domain"
	"ztechbot/internal/ports"
)

// Aggregator merges content from all configured source adapters into one
// freshness-sorted list. A single failing adapter degrades the result to
// "fewer records"; it never aborts the aggregation.
type Aggregator struct {
	adapters []ports.SourceAdapter
	logger   *slog.Logger
	now      func() time.Time
}

// New wires the configured adapters.
func New(adapters []ports.SourceAdapter, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		adapters: adapters,
		logger:   logger,
		now:      time.Now,
	}
}

// FetchAll queries every adapter and returns the merged result sorted by
// publish time descending. Records with unknown publish time sort last.
func (a *Aggregator) FetchAll(ctx context.Context) []domain.ContentRecord {
	var merged []domain.ContentRecord

	for _, adapter := range a.adapters {
		records, err := adapter.Fetch(ctx)
		if err != nil {
			a.warn("source fetch failed", "source", adapter.Name(), "error", err)
			continue
		}
		a.debug("source fetched", "source", adapter.Name(), "records", len(records))
		merged = append(merged, records...)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		left, right := merged[i].PublishedAt, merged[j].PublishedAt
		if left.IsZero() {
			return false
		}
		if right.IsZero() {
			return true
		}
		return left.After(right)
	})

	a.debug("aggregation done", "total", len(merged))
	return merged
}

// Fresh returns records published within the trailing window. Records with an
// unknown publish time are dropped: they cannot be proven fresh.
func (a *Aggregator) Fresh(ctx context.Context, hours int) []domain.ContentRecord {
	cutoff := a.now().Add(-time.Duration(hours) * time.Hour)

	all := a.FetchAll(ctx)
	fresh := make([]domain.ContentRecord, 0, len(all))
	for _, record := range all {
		if record.PublishedAt.IsZero() {
			continue
		}
		if record.PublishedAt.Before(cutoff) {
			continue
		}
		fresh = append(fresh, record)
	}

	a.debug("freshness filter applied", "hours", hours, "fresh", len(fresh))
	return fresh
}

func (a *Aggregator) debug(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Debug(msg, args...)
	}
}

func (a *Aggregator) warn(msg string, args ...any) {
	if a.logger != nil {
		a.logger.Warn(msg, args...)
	}
}
