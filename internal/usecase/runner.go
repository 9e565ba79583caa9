package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ztechbot/internal/aggregate"
	"ztechbot/internal/compose"
	"ztechbot/internal/domain"
	"ztechbot/internal/ports"
)

// Outcome classifies how a publish run ended.
type Outcome string

const (
	// OutcomePublished means a post went out and was recorded.
	OutcomePublished Outcome = "published"
	// OutcomeSkipped means there was nothing publishable this run.
	OutcomeSkipped Outcome = "skipped"
	// OutcomeFailed means a post was attempted and the target refused it.
	OutcomeFailed Outcome = "failed"
)

// Runner drives one publish cycle end to end: aggregate, dedup, compose,
// validate, publish, record. Content is marked processed only after the
// target confirms the publish.
type Runner struct {
	aggregator *aggregate.Aggregator
	store      ports.ContentStore
	composer   *compose.Composer
	validator  compose.Validator
	target     ports.PublishTarget
	generator  ports.TextGenerator
	logger     *slog.Logger

	freshnessHours int
	now            func() time.Time
}

// NewRunner wires the pipeline. generator may be nil; the composer templates
// then carry every post.
func NewRunner(
	aggregator *aggregate.Aggregator,
	store ports.ContentStore,
	composer *compose.Composer,
	validator compose.Validator,
	target ports.PublishTarget,
	generator ports.TextGenerator,
	freshnessHours int,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		aggregator:     aggregator,
		store:          store,
		composer:       composer,
		validator:      validator,
		target:         target,
		generator:      generator,
		freshnessHours: freshnessHours,
		logger:         logger,
		now:            time.Now,
	}
}

// RunSingle publishes one post built from the most recent unprocessed fresh
// record. The selection is deterministic: index 0 of the freshness-sorted
// candidate list, never a later record. A record that cannot be composed or
// validated fails the run; the next scheduled run is the only retry.
func (r *Runner) RunSingle(ctx context.Context) (Outcome, error) {
	candidates, err := r.candidates(ctx)
	if err != nil {
		return OutcomeFailed, err
	}
	if len(candidates) == 0 {
		r.logger.Info("no unprocessed fresh content, skipping run")
		return OutcomeSkipped, nil
	}

	record := candidates[0]
	draft := r.composer.Single(record, r.generated(ctx, record))
	if draft == nil {
		r.countError(ctx)
		r.logger.Warn("selected record cannot be composed", "source", record.Source, "title", record.Title)
		return OutcomeFailed, fmt.Errorf("selected record cannot be composed into a post")
	}
	if !r.validator.Validate(draft.Body) {
		r.countError(ctx)
		r.logger.Warn("draft failed validation", "source", record.Source, "length", len(draft.Body))
		return OutcomeFailed, fmt.Errorf("draft failed validation")
	}
	return r.publish(ctx, draft)
}

// RunCurated publishes the weekly digest built from the top three unprocessed
// fresh records. With fewer than three on hand it degrades to a single post.
func (r *Runner) RunCurated(ctx context.Context) (Outcome, error) {
	candidates, err := r.candidates(ctx)
	if err != nil {
		return OutcomeFailed, err
	}
	if len(candidates) < 3 {
		r.logger.Info("not enough content for a digest, degrading to a single post", "candidates", len(candidates))
		return r.RunSingle(ctx)
	}

	draft := r.composer.Curated(candidates[:3])
	if draft == nil || !r.validator.Validate(draft.Body) {
		r.logger.Warn("digest draft unusable, degrading to a single post")
		return r.RunSingle(ctx)
	}
	return r.publish(ctx, draft)
}

// Stats returns the daily counters for the trailing window.
func (r *Runner) Stats(ctx context.Context, days int) ([]domain.DailyStat, error) {
	return r.store.StatsForLast(ctx, days)
}

// Cleanup drops dedup markers and daily counters past the retention window.
// The publish ledger is untouched.
func (r *Runner) Cleanup(ctx context.Context, days int) (int64, int64, error) {
	marks, stats, err := r.store.CleanupOlderThan(ctx, days)
	if err != nil {
		return 0, 0, fmt.Errorf("cleanup: %w", err)
	}
	r.logger.Info("retention cleanup done", "days", days, "marks_removed", marks, "stats_removed", stats)
	return marks, stats, nil
}

func (r *Runner) candidates(ctx context.Context) ([]domain.ContentRecord, error) {
	fresh := r.aggregator.Fresh(ctx, r.freshnessHours)
	candidates, err := r.store.FilterUnprocessed(ctx, fresh)
	if err != nil {
		return nil, fmt.Errorf("filter unprocessed: %w", err)
	}
	r.logger.Debug("candidates selected", "fresh", len(fresh), "unprocessed", len(candidates))
	return candidates, nil
}

// generated asks the text generator for a body. Any generator failure is
// downgraded to "use the templates".
func (r *Runner) generated(ctx context.Context, record domain.ContentRecord) string {
	if r.generator == nil {
		return ""
	}
	kind := r.composer.Classify(record)
	text, err := r.generator.Generate(ctx, kind, record.Title+"\n\n"+record.Summary)
	if err != nil {
		r.logger.Warn("text generation failed, using templates", "error", err)
		return ""
	}
	return text
}

// publish sends the draft and, only on a confirmed publish, records the
// ledger entry, the dedup marks, and the daily counters.
func (r *Runner) publish(ctx context.Context, draft *domain.PostDraft) (Outcome, error) {
	receipt, err := r.target.Publish(ctx, draft.Body)
	if err != nil {
		r.countError(ctx)
		switch {
		case errors.Is(err, ports.ErrUnauthorized):
			r.logger.Error("publish target rejected credentials", "error", err)
		case errors.Is(err, ports.ErrRateLimited):
			r.logger.Warn("publish target rate limited", "error", err)
		case errors.Is(err, ports.ErrRejected):
			r.logger.Warn("publish target rejected the post", "error", err)
		default:
			r.logger.Error("publish failed", "error", err)
		}
		return OutcomeFailed, err
	}

	post := domain.PublishedPost{
		ExternalID:  receipt.ExternalID,
		Body:        draft.Body,
		PublishedAt: receipt.PublishedAt,
		Engagement:  receipt.Engagement,
	}
	if len(draft.Records) > 0 {
		post.Source = draft.Records[0].Source
		post.SourceURL = draft.Records[0].SourceURL
	}

	var recordErr error
	if err := r.store.RecordPublish(ctx, post); err != nil {
		r.logger.Error("publish succeeded but the ledger write failed", "external_id", receipt.ExternalID, "error", err)
		recordErr = err
	}
	for _, record := range draft.Records {
		if err := r.store.MarkProcessed(ctx, domain.MarkFor(record, r.now())); err != nil {
			r.logger.Error("publish succeeded but a dedup mark failed", "fingerprint", record.Fingerprint, "error", err)
			recordErr = err
		}
	}
	if err := r.store.UpsertDailyStat(ctx, domain.DateKey(r.now()), 1, len(draft.Records), 0); err != nil {
		r.logger.Error("daily stat update failed", "error", err)
	}
	if recordErr != nil {
		r.countError(ctx)
	}

	r.logger.Info("post published",
		"external_id", receipt.ExternalID,
		"kind", draft.Kind,
		"records", len(draft.Records),
	)
	return OutcomePublished, recordErr
}

func (r *Runner) countError(ctx context.Context) {
	if err := r.store.UpsertDailyStat(ctx, domain.DateKey(r.now()), 0, 0, 1); err != nil {
		r.logger.Error("daily stat update failed", "error", err)
	}
}
