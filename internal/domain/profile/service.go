package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"arthastra/internal/pkg/apperrors"
)

type Service interface {
	CreateProfile(ctx context.Context, p *ApplicantProfile) (*ApplicantProfile, error)
	GetProfile(ctx context.Context, userID int64) (*ApplicantProfile, error)
	UpdateProfile(ctx context.Context, p *ApplicantProfile) (*ApplicantProfile, error)
	DeleteProfile(ctx context.Context, userID int64) error
	ListUserIDs(ctx context.Context) ([]int64, error)
	RecordScore(ctx context.Context, userID int64, score int) error
	LatestScores(ctx context.Context, userID int64, limit int) ([]ScoreEntry, error)
}

// Publisher emits profile lifecycle events for downstream consumers
// (CRM sync, analytics). Optional; publishing failures never fail the
// originating request.
type Publisher interface {
	PublishProfileCreated(ctx context.Context, p ApplicantProfile) error
	PublishProfileUpdated(ctx context.Context, p ApplicantProfile) error
}

var _ Service = (*service)(nil)

type service struct {
	repo      Repository
	publisher Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, publisher Publisher, logger *slog.Logger) Service {
	if repo == nil {
		panic("profile repository cannot be nil")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to profile.NewService, using default stderr handler")
	}
	return &service{
		repo:      repo,
		publisher: publisher,
		logger:    logger.With(slog.String("component", "profileService")),
	}
}

func (s *service) CreateProfile(ctx context.Context, p *ApplicantProfile) (*ApplicantProfile, error) {
	s.logger.InfoContext(ctx, "Creating applicant profile")

	if p == nil {
		return nil, fmt.Errorf("%w: profile cannot be nil", apperrors.ErrInvalidArgument)
	}
	p.FullName = strings.TrimSpace(p.FullName)
	p.Phone = strings.TrimSpace(p.Phone)
	if p.FullName == "" {
		s.logger.WarnContext(ctx, "Validation failed: full name is empty")
		return nil, apperrors.NewValidationError("fullName", "cannot be empty")
	}

	p.Normalize()

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, apperrors.ErrAlreadyExists) {
			s.logger.WarnContext(ctx, "Profile already exists", slog.Int64("userID", p.UserID))
			return nil, err
		}
		s.logger.ErrorContext(ctx, "Failed to save profile", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to save profile: %v", apperrors.ErrInternalServer, err)
	}

	if p.CreditScore != nil {
		entry := ScoreEntry{UserID: p.UserID, Score: *p.CreditScore, RecordedAt: time.Now()}
		if err := s.repo.RecordScore(ctx, entry); err != nil {
			s.logger.WarnContext(ctx, "Failed to record initial credit score", slog.Any("error", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishProfileCreated(ctx, *p); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish profile created event", slog.Any("error", err))
		}
	}

	s.logger.InfoContext(ctx, "Profile created", slog.Int64("userID", p.UserID))
	return p, nil
}

func (s *service) GetProfile(ctx context.Context, userID int64) (*ApplicantProfile, error) {
	s.logger.InfoContext(ctx, "Fetching profile", slog.Int64("userID", userID))

	p, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.WarnContext(ctx, "Profile not found", slog.Int64("userID", userID))
			return nil, fmt.Errorf("%w: profile for user %d not found", apperrors.ErrNotFound, userID)
		}
		s.logger.ErrorContext(ctx, "Failed to fetch profile", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to fetch profile %d: %v", apperrors.ErrInternalServer, userID, err)
	}
	return p, nil
}

func (s *service) UpdateProfile(ctx context.Context, p *ApplicantProfile) (*ApplicantProfile, error) {
	s.logger.InfoContext(ctx, "Updating profile", slog.Int64("userID", p.UserID))

	existing, err := s.repo.FindByUserID(ctx, p.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: profile for user %d not found", apperrors.ErrNotFound, p.UserID)
		}
		return nil, fmt.Errorf("%w: failed to fetch profile %d: %v", apperrors.ErrInternalServer, p.UserID, err)
	}

	p.Normalize()
	p.CreatedAt = existing.CreatedAt

	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.ErrorContext(ctx, "Failed to update profile", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to update profile %d: %v", apperrors.ErrInternalServer, p.UserID, err)
	}

	// A changed score becomes a new history entry; the alert job reads the
	// history, not the profile row.
	if p.CreditScore != nil && (existing.CreditScore == nil || *existing.CreditScore != *p.CreditScore) {
		entry := ScoreEntry{UserID: p.UserID, Score: *p.CreditScore, RecordedAt: time.Now()}
		if err := s.repo.RecordScore(ctx, entry); err != nil {
			s.logger.WarnContext(ctx, "Failed to record credit score change", slog.Any("error", err))
		}
	}

	if s.publisher != nil {
		if err := s.publisher.PublishProfileUpdated(ctx, *p); err != nil {
			s.logger.WarnContext(ctx, "Failed to publish profile updated event", slog.Any("error", err))
		}
	}

	s.logger.InfoContext(ctx, "Profile updated", slog.Int64("userID", p.UserID))
	return p, nil
}

func (s *service) DeleteProfile(ctx context.Context, userID int64) error {
	s.logger.InfoContext(ctx, "Deleting profile", slog.Int64("userID", userID))

	if err := s.repo.Delete(ctx, userID); err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return fmt.Errorf("%w: profile for user %d not found", apperrors.ErrNotFound, userID)
		}
		s.logger.ErrorContext(ctx, "Failed to delete profile", slog.Any("error", err))
		return fmt.Errorf("%w: failed to delete profile %d: %v", apperrors.ErrInternalServer, userID, err)
	}
	return nil
}

func (s *service) ListUserIDs(ctx context.Context) ([]int64, error) {
	ids, err := s.repo.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list user IDs: %v", apperrors.ErrInternalServer, err)
	}
	return ids, nil
}

func (s *service) RecordScore(ctx context.Context, userID int64, score int) error {
	if score < MinCreditScore || score > MaxCreditScore {
		return apperrors.NewValidationError("score", "must lie in [300, 900]")
	}
	entry := ScoreEntry{UserID: userID, Score: score, RecordedAt: time.Now()}
	if err := s.repo.RecordScore(ctx, entry); err != nil {
		return fmt.Errorf("%w: failed to record score: %v", apperrors.ErrInternalServer, err)
	}
	return nil
}

func (s *service) LatestScores(ctx context.Context, userID int64, limit int) ([]ScoreEntry, error) {
	entries, err := s.repo.LatestScores(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to fetch score history: %v", apperrors.ErrInternalServer, err)
	}
	return entries, nil
}
