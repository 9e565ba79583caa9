package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ztechbot/internal/config"
	"ztechbot/internal/ports"
)

// Service runs the pipeline on the configured schedule. A run that fails with
// broken credentials halts the loop permanently; every other failure waits for
// the next slot.
type Service struct {
	runner    *Runner
	scheduler ports.Scheduler
	store     ports.ContentStore
	logger    *slog.Logger

	curatedWeekday time.Weekday
	curatedHour    int
	curatedMinute  int
	// curatedExtra is true when the curated time is not also a regular
	// posting slot; such a slot only fires on the curated weekday.
	curatedExtra bool
	location     *time.Location
	now          func() time.Time

	mu     sync.Mutex
	halted bool
}

// NewService wires the runner to the scheduler.
func NewService(
	runner *Runner,
	scheduler ports.Scheduler,
	store ports.ContentStore,
	schedule config.ScheduleConfig,
	logger *slog.Logger,
) (*Service, error) {
	weekday, err := parseWeekday(schedule.CuratedWeekday)
	if err != nil {
		return nil, err
	}
	curated, err := time.Parse("15:04", schedule.CuratedTime)
	if err != nil {
		return nil, fmt.Errorf("parse curated time %q: %w", schedule.CuratedTime, err)
	}

	curatedExtra := true
	for _, raw := range schedule.PostingTimes {
		if raw == schedule.CuratedTime {
			curatedExtra = false
		}
	}

	return &Service{
		runner:         runner,
		scheduler:      scheduler,
		store:          store,
		logger:         logger,
		curatedWeekday: weekday,
		curatedHour:    curated.Hour(),
		curatedMinute:  curated.Minute(),
		curatedExtra:   curatedExtra,
		location:       schedule.Location(),
		now:            time.Now,
	}, nil
}

// Start catches up on a missed first post of the day, then hands the loop to
// the scheduler.
func (s *Service) Start(ctx context.Context) error {
	local := s.now().In(s.location)
	startOfDay := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.location)

	posted, err := s.store.HasPostedSince(ctx, startOfDay)
	if err != nil {
		s.logger.Warn("cannot check today's posts, skipping catch-up", "error", err)
	} else if !posted {
		s.logger.Info("no post today yet, running catch-up")
		s.runOnce(ctx, s.now())
	}

	return s.scheduler.Start(ctx, func(t time.Time) { s.runOnce(ctx, t) })
}

// Stop halts the scheduler.
func (s *Service) Stop(ctx context.Context) error {
	return s.scheduler.Stop(ctx)
}

func (s *Service) runOnce(ctx context.Context, t time.Time) {
	if s.isHalted() {
		s.logger.Warn("loop is halted, slot skipped", "at", t)
		return
	}

	local := t.In(s.location)
	var (
		outcome Outcome
		err     error
	)
	switch {
	case s.isCuratedSlot(local):
		outcome, err = s.runner.RunCurated(ctx)
	case s.isCuratedTime(local) && s.curatedExtra:
		// the digest-only slot stays silent on other weekdays
		s.logger.Debug("curated slot outside its weekday, skipped", "at", local.Format("Mon 15:04"))
		return
	default:
		outcome, err = s.runner.RunSingle(ctx)
	}

	if errors.Is(err, ports.ErrUnauthorized) {
		s.halt()
		s.logger.Error("credentials rejected, halting the posting loop")
		return
	}
	if err != nil {
		s.logger.Warn("run failed, waiting for the next slot", "outcome", outcome, "error", err)
		return
	}
	s.logger.Info("run finished", "outcome", outcome, "at", local.Format("15:04"))
}

func (s *Service) isCuratedSlot(local time.Time) bool {
	return local.Weekday() == s.curatedWeekday && s.isCuratedTime(local)
}

func (s *Service) isCuratedTime(local time.Time) bool {
	return local.Hour() == s.curatedHour && local.Minute() == s.curatedMinute
}

func (s *Service) isHalted() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.halted
}

func (s *Service) halt() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.halted = true
}

func parseWeekday(name string) (time.Weekday, error) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if wd.String() == name {
			return wd, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", name)
}
