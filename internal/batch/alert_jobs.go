// Package batch holds the scheduled alert-generation jobs.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"arthastra/internal/domain/alert"
)

// ScoreChangeJob scans credit score histories and raises alerts for users
// whose score moved past the configured threshold since the previous entry.
type ScoreChangeJob struct {
	alerts alert.Service
	logger *slog.Logger
}

func NewScoreChangeJob(alerts alert.Service, logger *slog.Logger) *ScoreChangeJob {
	if alerts == nil || logger == nil {
		panic("ScoreChangeJob dependencies cannot be nil")
	}
	return &ScoreChangeJob{
		alerts: alerts,
		logger: logger.With("job", "ScoreChangeDetection"),
	}
}

func (j *ScoreChangeJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting credit score change detection job.")

	created, err := j.alerts.RunScoreChangeDetection(ctx)
	duration := time.Since(startTime)
	if err != nil {
		j.logger.ErrorContext(ctx, "Credit score change detection job failed.",
			slog.Duration("duration", duration), slog.Int("alerts_created", created), slog.Any("error", err))
		return fmt.Errorf("score change detection failed: %w", err)
	}

	j.logger.InfoContext(ctx, "Credit score change detection job finished.",
		slog.Duration("duration", duration), slog.Int("alerts_created", created))
	return nil
}

// DropOffJob alerts users who abandoned their application and have been
// inactive past the configured window.
type DropOffJob struct {
	alerts alert.Service
	logger *slog.Logger
}

func NewDropOffJob(alerts alert.Service, logger *slog.Logger) *DropOffJob {
	if alerts == nil || logger == nil {
		panic("DropOffJob dependencies cannot be nil")
	}
	return &DropOffJob{
		alerts: alerts,
		logger: logger.With("job", "DropOffDetection"),
	}
}

func (j *DropOffJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting drop-off detection job.")

	created, err := j.alerts.RunDropOffDetection(ctx)
	duration := time.Since(startTime)
	if err != nil {
		j.logger.ErrorContext(ctx, "Drop-off detection job failed.",
			slog.Duration("duration", duration), slog.Int("alerts_created", created), slog.Any("error", err))
		return fmt.Errorf("drop-off detection failed: %w", err)
	}

	j.logger.InfoContext(ctx, "Drop-off detection job finished.",
		slog.Duration("duration", duration), slog.Int("alerts_created", created))
	return nil
}
