package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/jackc/pgx/v5"

	"arthastra/internal/domain/profile"
	"arthastra/internal/pkg/apperrors"
)

type ProfileRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ profile.Repository = (*ProfileRepository)(nil)

func NewProfileRepository(db DBPool, logger *slog.Logger) *ProfileRepository {
	if db == nil {
		panic("DBPool cannot be nil for ProfileRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewProfileRepository, using default stderr handler")
	}
	return &ProfileRepository{
		db:     db,
		logger: logger.With("component", "ProfileRepository"),
	}
}

const profileColumns = `user_id, full_name, phone, pan, aadhaar, monthly_income, existing_emi,
       monthly_expenses, credit_score, has_credit_history, employment_type,
       employment_tenure_months, loan_amount, tenure_years, co_borrower_income,
       created_at, updated_at`

func (r *ProfileRepository) Create(ctx context.Context, p *profile.ApplicantProfile) error {
	if p == nil {
		return fmt.Errorf("%w: profile cannot be nil", apperrors.ErrInvalidArgument)
	}

	r.logger.InfoContext(ctx, "Attempting to insert applicant profile", slog.Int64("userID", p.UserID))

	query := `
        INSERT INTO applicant_profiles (user_id, full_name, phone, pan, aadhaar, monthly_income,
            existing_emi, monthly_expenses, credit_score, has_credit_history, employment_type,
            employment_tenure_months, loan_amount, tenure_years, co_borrower_income, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, NOW(), NOW())
        RETURNING created_at, updated_at`

	err := r.db.QueryRow(ctx, query,
		p.UserID,
		p.FullName,
		p.Phone,
		p.PAN,
		p.Aadhaar,
		p.MonthlyIncome,
		p.ExistingEMI,
		p.MonthlyExpenses,
		p.CreditScore,
		p.HasCreditHistory,
		p.EmploymentType,
		p.EmploymentTenureMonths,
		p.LoanAmount,
		p.TenureYears,
		p.CoBorrowerIncome,
	).Scan(&p.CreatedAt, &p.UpdatedAt)

	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Profile already exists for user", slog.Int64("userID", p.UserID))
			return translatedErr
		}
		r.logger.ErrorContext(ctx, "Failed to insert profile", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert profile: %w", apperrors.ErrDatabase, err)
	}

	r.logger.InfoContext(ctx, "Profile inserted successfully", slog.Int64("userID", p.UserID))
	return nil
}

func (r *ProfileRepository) FindByUserID(ctx context.Context, userID int64) (*profile.ApplicantProfile, error) {
	r.logger.InfoContext(ctx, "Attempting to find profile by user ID")

	query := `SELECT ` + profileColumns + `
        FROM applicant_profiles
        WHERE user_id = $1`

	var p profile.ApplicantProfile
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&p.UserID,
		&p.FullName,
		&p.Phone,
		&p.PAN,
		&p.Aadhaar,
		&p.MonthlyIncome,
		&p.ExistingEMI,
		&p.MonthlyExpenses,
		&p.CreditScore,
		&p.HasCreditHistory,
		&p.EmploymentType,
		&p.EmploymentTenureMonths,
		&p.LoanAmount,
		&p.TenureYears,
		&p.CoBorrowerIncome,
		&p.CreatedAt,
		&p.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Profile not found", slog.Int64("userID", userID))
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan profile", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get profile by user ID: %w", apperrors.ErrDatabase, err)
	}

	return &p, nil
}

func (r *ProfileRepository) Update(ctx context.Context, p *profile.ApplicantProfile) error {
	if p == nil {
		return fmt.Errorf("%w: profile cannot be nil", apperrors.ErrInvalidArgument)
	}

	r.logger.InfoContext(ctx, "Attempting to update profile", slog.Int64("userID", p.UserID))

	query := `
        UPDATE applicant_profiles
        SET full_name = $1,
            phone = $2,
            pan = $3,
            aadhaar = $4,
            monthly_income = $5,
            existing_emi = $6,
            monthly_expenses = $7,
            credit_score = $8,
            has_credit_history = $9,
            employment_type = $10,
            employment_tenure_months = $11,
            loan_amount = $12,
            tenure_years = $13,
            co_borrower_income = $14,
            updated_at = NOW()
        WHERE user_id = $15`

	cmdTag, err := r.db.Exec(ctx, query,
		p.FullName,
		p.Phone,
		p.PAN,
		p.Aadhaar,
		p.MonthlyIncome,
		p.ExistingEMI,
		p.MonthlyExpenses,
		p.CreditScore,
		p.HasCreditHistory,
		p.EmploymentType,
		p.EmploymentTenureMonths,
		p.LoanAmount,
		p.TenureYears,
		p.CoBorrowerIncome,
		p.UserID,
	)

	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to update profile", slog.Any("error", err))
		return fmt.Errorf("%w: failed to update profile: %w", apperrors.ErrDatabase, err)
	}

	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Update affected zero rows, profile likely not found")
		return apperrors.ErrNotFound
	}

	r.logger.InfoContext(ctx, "Profile updated successfully", slog.Int64("userID", p.UserID))
	return nil
}

func (r *ProfileRepository) Delete(ctx context.Context, userID int64) error {
	r.logger.InfoContext(ctx, "Attempting to delete profile", slog.Int64("userID", userID))

	cmdTag, err := r.db.Exec(ctx, `DELETE FROM applicant_profiles WHERE user_id = $1`, userID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete profile", slog.Any("error", err))
		return fmt.Errorf("%w: failed to delete profile: %w", apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *ProfileRepository) ListUserIDs(ctx context.Context) ([]int64, error) {
	logCtx := r.logger.With(slog.String("operation", "ListUserIDs"))
	logCtx.DebugContext(ctx, "Attempting to list all profile user IDs")

	rows, err := r.db.Query(ctx, `SELECT user_id FROM applicant_profiles ORDER BY user_id`)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to query user IDs", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query user IDs: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			logCtx.ErrorContext(ctx, "Failed to scan user ID", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan user ID: %w", apperrors.ErrDatabase, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating user IDs: %w", apperrors.ErrDatabase, err)
	}
	return ids, nil
}

func (r *ProfileRepository) RecordScore(ctx context.Context, entry profile.ScoreEntry) error {
	r.logger.InfoContext(ctx, "Recording credit score entry", slog.Int64("userID", entry.UserID))

	_, err := r.db.Exec(ctx,
		`INSERT INTO credit_score_history (user_id, score, recorded_at) VALUES ($1, $2, $3)`,
		entry.UserID, entry.Score, entry.RecordedAt)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to record credit score", slog.Any("error", err))
		return fmt.Errorf("%w: failed to record credit score: %w", apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *ProfileRepository) LatestScores(ctx context.Context, userID int64, limit int) ([]profile.ScoreEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := r.db.Query(ctx,
		`SELECT user_id, score, recorded_at
         FROM credit_score_history
         WHERE user_id = $1
         ORDER BY recorded_at DESC
         LIMIT $2`,
		userID, limit)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query score history", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query score history: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	var entries []profile.ScoreEntry
	for rows.Next() {
		var e profile.ScoreEntry
		if err := rows.Scan(&e.UserID, &e.Score, &e.RecordedAt); err != nil {
			return nil, fmt.Errorf("%w: failed to scan score entry: %w", apperrors.ErrDatabase, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating score history: %w", apperrors.ErrDatabase, err)
	}
	return entries, nil
}
