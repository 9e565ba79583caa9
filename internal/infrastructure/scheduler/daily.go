package scheduler

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"ztechbot/internal/ports"
)

// DailyScheduler fires a job at fixed local wall-clock times every day.
type DailyScheduler struct {
	times    []wallClock
	location *time.Location
	now      func() time.Time

	mu      sync.Mutex
	stop    chan struct{}
	stopped bool
}

type wallClock struct {
	hour   int
	minute int
}

var _ ports.Scheduler = (*DailyScheduler)(nil)

// NewDailyScheduler parses HH:MM posting times evaluated in the given
// location.
func NewDailyScheduler(times []string, location *time.Location) (*DailyScheduler, error) {
	if location == nil {
		location = time.UTC
	}

	parsed := make([]wallClock, 0, len(times))
	for _, raw := range times {
		t, err := time.Parse("15:04", raw)
		if err != nil {
			return nil, fmt.Errorf("parse posting time %q: %w", raw, err)
		}
		parsed = append(parsed, wallClock{hour: t.Hour(), minute: t.Minute()})
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("no posting times configured")
	}
	sort.Slice(parsed, func(i, j int) bool {
		if parsed[i].hour != parsed[j].hour {
			return parsed[i].hour < parsed[j].hour
		}
		return parsed[i].minute < parsed[j].minute
	})

	return &DailyScheduler{times: parsed, location: location, now: time.Now}, nil
}

// Start launches the timer loop. The job runs once per configured time per
// day; it is never invoked concurrently with itself.
func (s *DailyScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}

	s.mu.Lock()
	if s.stop != nil {
		s.mu.Unlock()
		return nil
	}
	stop := make(chan struct{})
	s.stop = stop
	s.mu.Unlock()

	go func() {
		for {
			fireAt := s.nextFire(s.now())
			timer := time.NewTimer(time.Until(fireAt))
			select {
			case t := <-timer.C:
				job(t)
			case <-ctx.Done():
				timer.Stop()
				return
			case <-stop:
				timer.Stop()
				return
			}
		}
	}()

	return nil
}

// Stop halts the timer goroutine. Safe to call more than once; the channel
// stays closed so the goroutine can never miss the signal.
func (s *DailyScheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stop == nil || s.stopped {
		return nil
	}
	s.stopped = true
	close(s.stop)
	return nil
}

// nextFire returns the earliest configured wall-clock time strictly after now.
func (s *DailyScheduler) nextFire(now time.Time) time.Time {
	local := now.In(s.location)
	for _, wc := range s.times {
		candidate := time.Date(local.Year(), local.Month(), local.Day(), wc.hour, wc.minute, 0, 0, s.location)
		if candidate.After(local) {
			return candidate
		}
	}
	first := s.times[0]
	tomorrow := local.AddDate(0, 0, 1)
	return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), first.hour, first.minute, 0, 0, s.location)
}
