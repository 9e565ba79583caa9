package app

import (
	"context"
	"fmt"
	"log/slog"

	"ztechbot/internal/aggregate"
	"ztechbot/internal/compose"
	"ztechbot/internal/config"
	"ztechbot/internal/domain"
	"ztechbot/internal/infrastructure/llm"
	"ztechbot/internal/infrastructure/scheduler"
	"ztechbot/internal/infrastructure/source"
	"ztechbot/internal/infrastructure/storage"
	"ztechbot/internal/infrastructure/twitter"
	"ztechbot/internal/logging"
	"ztechbot/internal/ports"
	"ztechbot/internal/usecase"
)

// Application wires configuration to the pipeline and its lifecycle.
type Application struct {
	cfg    config.Config
	logger *slog.Logger
	store  ports.ContentStore
	runner *usecase.Runner
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	store, err := storage.NewRepository(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	adapters := source.Build(cfg.Sources, baseLogger.With("component", "source"))
	aggregator := aggregate.New(adapters, baseLogger.With("component", "aggregate"))

	composer := compose.NewComposer(compose.Config{
		MaxLength:     cfg.Content.MaxPostLength,
		MinLength:     cfg.Content.MinPostLength,
		SummaryLimit:  cfg.Content.SummaryLimit,
		MaxHashtags:   cfg.Content.MaxHashtags,
		BaseHashtags:  cfg.Content.BaseHashtags,
		TopicHashtags: cfg.Content.TopicHashtags,
	}, nil, baseLogger.With("component", "compose"))
	validator := compose.NewValidator(cfg.Content.MaxPostLength, cfg.Content.MinPostLength)

	target := twitter.NewPublisher(cfg.Twitter.BaseURL, cfg.Twitter.AccessToken)

	var generator ports.TextGenerator
	if cfg.Generator.APIKey != "" {
		generator = llm.NewGenerator(cfg.Generator)
	}

	runner := usecase.NewRunner(
		aggregator,
		store,
		composer,
		validator,
		target,
		generator,
		cfg.Content.FreshnessHours,
		baseLogger.With("component", "runner"),
	)

	return &Application{cfg: cfg, logger: baseLogger, store: store, runner: runner}, nil
}

// RunOnce executes one publish cycle and returns its outcome.
func (a *Application) RunOnce(ctx context.Context) (usecase.Outcome, error) {
	return a.runner.RunSingle(ctx)
}

// RunCurated executes one digest cycle and returns its outcome.
func (a *Application) RunCurated(ctx context.Context) (usecase.Outcome, error) {
	return a.runner.RunCurated(ctx)
}

// Serve runs the posting schedule until the context is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	times := append([]string(nil), a.cfg.Schedule.PostingTimes...)
	if a.cfg.Schedule.CuratedTime != "" {
		times = append(times, a.cfg.Schedule.CuratedTime)
	}

	daily, err := scheduler.NewDailyScheduler(times, a.cfg.Schedule.Location())
	if err != nil {
		return fmt.Errorf("build scheduler: %w", err)
	}

	service, err := usecase.NewService(a.runner, daily, a.store, a.cfg.Schedule, a.logger.With("component", "service"))
	if err != nil {
		return fmt.Errorf("build service: %w", err)
	}

	if err := service.Start(ctx); err != nil {
		return fmt.Errorf("start service: %w", err)
	}
	a.logger.Info("posting schedule active",
		"times", times,
		"timezone", a.cfg.Schedule.Timezone,
	)

	<-ctx.Done()
	return service.Stop(context.Background())
}

// Stats returns the daily counters for the trailing window.
func (a *Application) Stats(ctx context.Context, days int) ([]domain.DailyStat, error) {
	return a.runner.Stats(ctx, days)
}

// Cleanup applies the retention policy to dedup markers and daily counters.
func (a *Application) Cleanup(ctx context.Context, days int) (int64, int64, error) {
	return a.runner.Cleanup(ctx, days)
}

// Close releases held resources.
func (a *Application) Close() error {
	return a.store.Close()
}
