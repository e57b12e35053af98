package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"arthastra/internal/domain/alert"
	"arthastra/internal/pkg/apperrors"
)

type AlertRepository struct {
	db     DBPool
	logger *slog.Logger
}

var _ alert.Repository = (*AlertRepository)(nil)

func NewAlertRepository(db DBPool, logger *slog.Logger) *AlertRepository {
	if db == nil {
		panic("DBPool cannot be nil for AlertRepository")
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		logger.Warn("Warning: No logger provided to NewAlertRepository, using default stderr handler")
	}
	return &AlertRepository{
		db:     db,
		logger: logger.With("component", "AlertRepository"),
	}
}

func (r *AlertRepository) Create(ctx context.Context, a *alert.Alert) error {
	if a == nil {
		return fmt.Errorf("%w: alert cannot be nil", apperrors.ErrInvalidArgument)
	}

	r.logger.InfoContext(ctx, "Attempting to insert alert",
		slog.Int64("userID", a.UserID), slog.String("type", string(a.Type)))

	query := `
        INSERT INTO alerts (id, user_id, type, title, message, severity, read, metadata, dedup_key, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.Exec(ctx, query,
		a.ID,
		a.UserID,
		a.Type,
		a.Title,
		a.Message,
		a.Severity,
		a.Read,
		a.Metadata,
		a.DedupKey,
		a.CreatedAt,
	)

	if err != nil {
		translatedErr := translateDBError(err, r.logger)
		if errors.Is(translatedErr, apperrors.ErrAlreadyExists) {
			r.logger.WarnContext(ctx, "Alert already exists for this trigger", slog.Int64("userID", a.UserID))
			return translatedErr
		}
		r.logger.ErrorContext(ctx, "Failed to insert alert", slog.Any("error", err))
		return fmt.Errorf("%w: failed to insert alert: %w", apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *AlertRepository) FindByID(ctx context.Context, id uuid.UUID) (*alert.Alert, error) {
	query := `
        SELECT id, user_id, type, title, message, severity, read, metadata, dedup_key, created_at
        FROM alerts
        WHERE id = $1`

	var a alert.Alert
	err := r.db.QueryRow(ctx, query, id).Scan(
		&a.ID,
		&a.UserID,
		&a.Type,
		&a.Title,
		&a.Message,
		&a.Severity,
		&a.Read,
		&a.Metadata,
		&a.DedupKey,
		&a.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to query/scan alert", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get alert by ID: %w", apperrors.ErrDatabase, err)
	}
	return &a, nil
}

func (r *AlertRepository) ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]alert.Alert, error) {
	logCtx := r.logger.With(slog.String("operation", "ListByUser"))

	query := `
        SELECT id, user_id, type, title, message, severity, read, metadata, dedup_key, created_at
        FROM alerts
        WHERE user_id = $1`
	if unreadOnly {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		logCtx.ErrorContext(ctx, "Failed to query alerts", slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to query alerts: %w", apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	var alerts []alert.Alert
	for rows.Next() {
		var a alert.Alert
		if err := rows.Scan(
			&a.ID, &a.UserID, &a.Type, &a.Title, &a.Message,
			&a.Severity, &a.Read, &a.Metadata, &a.DedupKey, &a.CreatedAt,
		); err != nil {
			logCtx.ErrorContext(ctx, "Failed to scan alert row", slog.Any("error", err))
			return nil, fmt.Errorf("%w: failed to scan alert: %w", apperrors.ErrDatabase, err)
		}
		alerts = append(alerts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: error iterating alerts: %w", apperrors.ErrDatabase, err)
	}
	return alerts, nil
}

func (r *AlertRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	cmdTag, err := r.db.Exec(ctx, `UPDATE alerts SET read = TRUE WHERE id = $1`, id)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to mark alert read", slog.Any("error", err))
		return fmt.Errorf("%w: failed to mark alert read: %w", apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *AlertRepository) Exists(ctx context.Context, userID int64, alertType alert.Type, dedupKey string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM alerts WHERE user_id = $1 AND type = $2 AND dedup_key = $3)`,
		userID, alertType, dedupKey,
	).Scan(&exists)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed dedup existence check", slog.Any("error", err))
		return false, fmt.Errorf("%w: failed dedup existence check: %w", apperrors.ErrDatabase, err)
	}
	return exists, nil
}
