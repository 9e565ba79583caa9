package scheduler

import (
	"context"
	"testing"
	"time"
)

func mustScheduler(t *testing.T, times []string) *DailyScheduler {
	t.Helper()
	s, err := NewDailyScheduler(times, time.UTC)
	if err != nil {
		t.Fatalf("new scheduler: %v", err)
	}
	return s
}

func TestNextFirePicksUpcomingSlot(t *testing.T) {
	t.Parallel()

	s := mustScheduler(t, []string{"09:00", "18:00"})
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

	got := s.nextFire(now)
	want := time.Date(2025, 6, 10, 18, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNextFireRollsToNextDay(t *testing.T) {
	t.Parallel()

	s := mustScheduler(t, []string{"09:00", "18:00"})
	now := time.Date(2025, 6, 10, 19, 30, 0, 0, time.UTC)

	got := s.nextFire(now)
	want := time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestNextFireSkipsExactMatch(t *testing.T) {
	t.Parallel()

	s := mustScheduler(t, []string{"09:00"})
	now := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)

	got := s.nextFire(now)
	want := time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("a slot equal to now must not refire, expected %v, got %v", want, got)
	}
}

func TestNewDailySchedulerRejectsBadInput(t *testing.T) {
	t.Parallel()

	if _, err := NewDailyScheduler([]string{"25:99"}, time.UTC); err == nil {
		t.Fatal("expected an error for an invalid time")
	}
	if _, err := NewDailyScheduler(nil, time.UTC); err == nil {
		t.Fatal("expected an error for empty posting times")
	}
}

func TestStopIsIdempotent(t *testing.T) {
	t.Parallel()

	s := mustScheduler(t, []string{"09:00"})
	ctx := context.Background()

	if err := s.Start(ctx, func(time.Time) {}); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("first stop: %v", err)
	}
	if err := s.Stop(ctx); err != nil {
		t.Fatalf("second stop must be a no-op: %v", err)
	}
}

func TestStopBeforeStart(t *testing.T) {
	t.Parallel()

	s := mustScheduler(t, []string{"09:00"})
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop without start: %v", err)
	}
}

func TestNextFireSortsUnorderedTimes(t *testing.T) {
	t.Parallel()

	s := mustScheduler(t, []string{"18:00", "09:00"})
	now := time.Date(2025, 6, 10, 7, 0, 0, 0, time.UTC)

	got := s.nextFire(now)
	want := time.Date(2025, 6, 10, 9, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}
