package alert

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"arthastra/internal/domain/profile"
	"arthastra/internal/infrastructure/monitoring"
	"arthastra/internal/pkg/apperrors"
)

// ProfileSource is the slice of the profile layer the detection jobs need.
// Satisfied by profile.Repository.
type ProfileSource interface {
	ListUserIDs(ctx context.Context) ([]int64, error)
	FindByUserID(ctx context.Context, userID int64) (*profile.ApplicantProfile, error)
	LatestScores(ctx context.Context, userID int64, limit int) ([]profile.ScoreEntry, error)
}

// ActivitySource reports when a user was last seen. A zero time means never.
type ActivitySource interface {
	LastSeen(ctx context.Context, userID int64) (time.Time, error)
}

// Notifier sends an out-of-band message for critical alerts.
type Notifier interface {
	SendWhatsApp(ctx context.Context, to, body string) (string, error)
}

// Publisher emits alert.created events for downstream consumers.
type Publisher interface {
	PublishAlertCreated(ctx context.Context, a Alert) error
}

type Service interface {
	Create(ctx context.Context, a Alert) (*Alert, error)
	List(ctx context.Context, userID int64, unreadOnly bool) ([]Alert, error)
	MarkRead(ctx context.Context, id uuid.UUID) error

	// RunScoreChangeDetection scans score histories and alerts users whose
	// latest two entries differ by at least the configured threshold.
	RunScoreChangeDetection(ctx context.Context) (int, error)

	// RunDropOffDetection alerts users inactive longer than the configured
	// window.
	RunDropOffDetection(ctx context.Context) (int, error)
}

type service struct {
	repo      Repository
	profiles  ProfileSource
	activity  ActivitySource
	notifier  Notifier
	publisher Publisher
	logger    *slog.Logger

	scoreDeltaThreshold int
	dropOffAfter        time.Duration
}

type ServiceOptions struct {
	ScoreDeltaThreshold int
	DropOffAfterDays    int

	// Activity, Notifier and Publisher are optional; detection degrades
	// gracefully without them.
	Activity  ActivitySource
	Notifier  Notifier
	Publisher Publisher
}

func NewService(repo Repository, profiles ProfileSource, logger *slog.Logger, opts ServiceOptions) Service {
	if repo == nil {
		panic("alert repository cannot be nil")
	}
	if profiles == nil {
		panic("profile source cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	}
	if opts.ScoreDeltaThreshold <= 0 {
		opts.ScoreDeltaThreshold = 20
	}
	if opts.DropOffAfterDays <= 0 {
		opts.DropOffAfterDays = 7
	}
	return &service{
		repo:                repo,
		profiles:            profiles,
		activity:            opts.Activity,
		notifier:            opts.Notifier,
		publisher:           opts.Publisher,
		logger:              logger.With(slog.String("component", "alertService")),
		scoreDeltaThreshold: opts.ScoreDeltaThreshold,
		dropOffAfter:        time.Duration(opts.DropOffAfterDays) * 24 * time.Hour,
	}
}

// Create validates, deduplicates and persists an alert, then fans out side
// effects: an alert.created event, and a WhatsApp message when the severity
// is critical. Returns ErrAlreadyExists when the trigger was seen before.
func (s *service) Create(ctx context.Context, a Alert) (*Alert, error) {
	if !a.Type.Valid() {
		return nil, apperrors.NewValidationError("type", fmt.Sprintf("unknown alert type %q", a.Type))
	}
	if !a.Severity.Valid() {
		a.Severity = SeverityInfo
	}
	if a.Title == "" {
		return nil, apperrors.NewValidationError("title", "cannot be empty")
	}

	if a.DedupKey != "" {
		exists, err := s.repo.Exists(ctx, a.UserID, a.Type, a.DedupKey)
		if err != nil {
			return nil, fmt.Errorf("%w: dedup check failed: %v", apperrors.ErrInternalServer, err)
		}
		if exists {
			s.logger.InfoContext(ctx, "Alert suppressed by dedup",
				slog.Int64("userID", a.UserID), slog.String("type", string(a.Type)), slog.String("dedupKey", a.DedupKey))
			return nil, fmt.Errorf("%w: alert for this trigger already exists", apperrors.ErrAlreadyExists)
		}
	}

	a.ID = uuid.New()
	a.Read = false
	a.CreatedAt = time.Now()

	if err := s.repo.Create(ctx, &a); err != nil {
		s.logger.ErrorContext(ctx, "Failed to persist alert", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to persist alert: %v", apperrors.ErrInternalServer, err)
	}
	monitoring.AlertsCreated.WithLabelValues(string(a.Type)).Inc()
	s.logger.InfoContext(ctx, "Alert created",
		slog.String("alertID", a.ID.String()), slog.Int64("userID", a.UserID), slog.String("type", string(a.Type)))

	if s.publisher != nil {
		if err := s.publisher.PublishAlertCreated(ctx, a); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish alert event", slog.Any("error", err))
		}
	}

	if a.Severity == SeverityCritical && s.notifier != nil {
		s.sendCriticalMessage(ctx, a)
	}

	return &a, nil
}

func (s *service) sendCriticalMessage(ctx context.Context, a Alert) {
	p, err := s.profiles.FindByUserID(ctx, a.UserID)
	if err != nil || p.Phone == "" {
		s.logger.WarnContext(ctx, "Cannot deliver critical alert, no phone on file", slog.Int64("userID", a.UserID))
		return
	}

	body := a.Title + "\n" + a.Message
	sid, err := s.notifier.SendWhatsApp(ctx, p.Phone, body)
	if err != nil {
		if errors.Is(err, apperrors.ErrRecipientNotOptedIn) {
			s.logger.InfoContext(ctx, "Recipient not opted in to WhatsApp", slog.Int64("userID", a.UserID))
			return
		}
		s.logger.ErrorContext(ctx, "Failed to send WhatsApp alert", slog.Any("error", err))
		return
	}
	s.logger.InfoContext(ctx, "Critical alert delivered", slog.String("messageSID", sid))
}

func (s *service) List(ctx context.Context, userID int64, unreadOnly bool) ([]Alert, error) {
	alerts, err := s.repo.ListByUser(ctx, userID, unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list alerts: %v", apperrors.ErrInternalServer, err)
	}
	return alerts, nil
}

func (s *service) MarkRead(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.MarkRead(ctx, id); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return err
		}
		return fmt.Errorf("%w: failed to mark alert read: %v", apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *service) RunScoreChangeDetection(ctx context.Context) (int, error) {
	userIDs, err := s.profiles.ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to list users: %v", apperrors.ErrInternalServer, err)
	}

	created := 0
	for _, userID := range userIDs {
		select {
		case <-ctx.Done():
			return created, ctx.Err()
		default:
		}

		entries, err := s.profiles.LatestScores(ctx, userID, 2)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping user, score history unavailable",
				slog.Int64("userID", userID), slog.Any("error", err))
			continue
		}
		if len(entries) < 2 {
			continue
		}

		delta := entries[0].Score - entries[1].Score
		if delta > -s.scoreDeltaThreshold && delta < s.scoreDeltaThreshold {
			continue
		}

		if _, err := s.Create(ctx, scoreChangeAlert(userID, delta, entries[0])); err != nil {
			if errors.Is(err, apperrors.ErrAlreadyExists) {
				continue
			}
			s.logger.ErrorContext(ctx, "Failed to create score change alert",
				slog.Int64("userID", userID), slog.Any("error", err))
			continue
		}
		created++
	}
	return created, nil
}

// scoreChangeAlert keys dedup on the latest history entry's date, so one
// recorded change produces at most one alert. History entries carry full
// timestamps; the date truncation is deliberate, several same-day updates
// collapse into one alert.
func scoreChangeAlert(userID int64, delta int, latest profile.ScoreEntry) Alert {
	severity := SeverityInfo
	title := "Your credit score went up"
	if delta < 0 {
		severity = SeverityWarning
		title = "Your credit score dropped"
		if delta <= -50 {
			severity = SeverityCritical
		}
	}

	return Alert{
		UserID:   userID,
		Type:     TypeCreditScoreChange,
		Title:    title,
		Message:  fmt.Sprintf("Your credit score changed by %+d points to %d.", delta, latest.Score),
		Severity: severity,
		Metadata: map[string]any{
			"delta":    delta,
			"newScore": latest.Score,
		},
		DedupKey: latest.RecordedAt.Format("2006-01-02"),
	}
}

func (s *service) RunDropOffDetection(ctx context.Context) (int, error) {
	if s.activity == nil {
		s.logger.WarnContext(ctx, "Drop-off detection skipped, no activity source configured")
		return 0, nil
	}

	userIDs, err := s.profiles.ListUserIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to list users: %v", apperrors.ErrInternalServer, err)
	}

	created := 0
	for _, userID := range userIDs {
		select {
		case <-ctx.Done():
			return created, ctx.Err()
		default:
		}

		lastSeen, err := s.activity.LastSeen(ctx, userID)
		if err != nil {
			s.logger.WarnContext(ctx, "Skipping user, activity unavailable",
				slog.Int64("userID", userID), slog.Any("error", err))
			continue
		}
		if lastSeen.IsZero() || time.Since(lastSeen) < s.dropOffAfter {
			continue
		}

		a := Alert{
			UserID:   userID,
			Type:     TypeDropOff,
			Title:    "Pick up where you left off",
			Message:  "Your loan application is still waiting. Complete it to see your offers.",
			Severity: SeverityInfo,
			Metadata: map[string]any{"lastSeen": lastSeen.Format(time.RFC3339)},
			// One alert per inactivity stretch: keyed on the day activity
			// stopped.
			DedupKey: lastSeen.Format("2006-01-02"),
		}
		if _, err := s.Create(ctx, a); err != nil {
			if errors.Is(err, apperrors.ErrAlreadyExists) {
				continue
			}
			s.logger.ErrorContext(ctx, "Failed to create drop-off alert",
				slog.Int64("userID", userID), slog.Any("error", err))
			continue
		}
		created++
	}
	return created, nil
}
