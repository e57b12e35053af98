package postgres

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"

	"arthastra/internal/domain/alert"
	"arthastra/internal/pkg/apperrors"
)

func setupAlertRepo(t *testing.T) (context.Context, *AlertRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mockPool, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("failed to open a stub database connection: %v", err)
	}
	t.Cleanup(mockPool.Close)

	return context.Background(), NewAlertRepository(mockPool, testLogger), mockPool
}

func testAlert() *alert.Alert {
	return &alert.Alert{
		ID:        uuid.New(),
		UserID:    42,
		Type:      alert.TypeCreditScoreChange,
		Title:     "Your credit score dropped",
		Message:   "Your credit score changed by -30 points to 650.",
		Severity:  alert.SeverityWarning,
		Metadata:  map[string]any{"delta": -30},
		DedupKey:  "2026-03-01",
		CreatedAt: time.Now(),
	}
}

func TestAlertRepository_Create(t *testing.T) {
	ctx, repo, mockPool := setupAlertRepo(t)
	a := testAlert()

	mockPool.ExpectExec(regexp.QuoteMeta(`INSERT INTO alerts`)).
		WithArgs(a.ID, a.UserID, a.Type, a.Title, a.Message, a.Severity, a.Read, a.Metadata, a.DedupKey, a.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	assert.NoError(t, repo.Create(ctx, a))
	assert.NoError(t, mockPool.ExpectationsWereMet(), expectationsNotMetMsg)
}

func TestAlertRepository_CreateDuplicateTrigger(t *testing.T) {
	ctx, repo, mockPool := setupAlertRepo(t)
	a := testAlert()

	mockPool.ExpectExec(regexp.QuoteMeta(`INSERT INTO alerts`)).
		WithArgs(a.ID, a.UserID, a.Type, a.Title, a.Message, a.Severity, a.Read, a.Metadata, a.DedupKey, a.CreatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "alerts_user_type_dedup_key"})

	assert.ErrorIs(t, repo.Create(ctx, a), apperrors.ErrAlreadyExists)
	assert.NoError(t, mockPool.ExpectationsWereMet(), expectationsNotMetMsg)
}

func TestAlertRepository_FindByID(t *testing.T) {
	ctx, repo, mockPool := setupAlertRepo(t)
	a := testAlert()

	rows := pgxmock.NewRows([]string{
		"id", "user_id", "type", "title", "message", "severity", "read", "metadata", "dedup_key", "created_at",
	}).AddRow(a.ID, a.UserID, a.Type, a.Title, a.Message, a.Severity, a.Read, a.Metadata, a.DedupKey, a.CreatedAt)

	mockPool.ExpectQuery(`SELECT .+ FROM alerts`).WithArgs(a.ID).WillReturnRows(rows)

	got, err := repo.FindByID(ctx, a.ID)

	assert.NoError(t, err)
	assert.Equal(t, a.Title, got.Title)
	assert.NoError(t, mockPool.ExpectationsWereMet(), expectationsNotMetMsg)
}

func TestAlertRepository_FindByIDNotFound(t *testing.T) {
	ctx, repo, mockPool := setupAlertRepo(t)
	id := uuid.New()

	mockPool.ExpectQuery(`SELECT .+ FROM alerts`).WithArgs(id).WillReturnError(pgx.ErrNoRows)

	_, err := repo.FindByID(ctx, id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAlertRepository_ListByUser(t *testing.T) {
	ctx, repo, mockPool := setupAlertRepo(t)
	a := testAlert()

	t.Run("all alerts", func(t *testing.T) {
		rows := pgxmock.NewRows([]string{
			"id", "user_id", "type", "title", "message", "severity", "read", "metadata", "dedup_key", "created_at",
		}).AddRow(a.ID, a.UserID, a.Type, a.Title, a.Message, a.Severity, a.Read, a.Metadata, a.DedupKey, a.CreatedAt)

		mockPool.ExpectQuery(`SELECT .+ FROM alerts[\s\S]+ORDER BY created_at DESC`).
			WithArgs(a.UserID).
			WillReturnRows(rows)

		alerts, err := repo.ListByUser(ctx, a.UserID, false)

		assert.NoError(t, err)
		assert.Len(t, alerts, 1)
	})

	t.Run("unread only adds filter", func(t *testing.T) {
		mockPool.ExpectQuery(`SELECT .+ FROM alerts[\s\S]+read = FALSE[\s\S]+ORDER BY created_at DESC`).
			WithArgs(a.UserID).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "user_id", "type", "title", "message", "severity", "read", "metadata", "dedup_key", "created_at",
			}))

		alerts, err := repo.ListByUser(ctx, a.UserID, true)

		assert.NoError(t, err)
		assert.Empty(t, alerts)
	})

	assert.NoError(t, mockPool.ExpectationsWereMet(), expectationsNotMetMsg)
}

func TestAlertRepository_MarkRead(t *testing.T) {
	ctx, repo, mockPool := setupAlertRepo(t)
	id := uuid.New()

	t.Run("success", func(t *testing.T) {
		mockPool.ExpectExec(regexp.QuoteMeta(`UPDATE alerts SET read = TRUE WHERE id = $1`)).
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		assert.NoError(t, repo.MarkRead(ctx, id))
	})

	t.Run("not found", func(t *testing.T) {
		mockPool.ExpectExec(regexp.QuoteMeta(`UPDATE alerts SET read = TRUE WHERE id = $1`)).
			WithArgs(id).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		assert.ErrorIs(t, repo.MarkRead(ctx, id), apperrors.ErrNotFound)
	})

	assert.NoError(t, mockPool.ExpectationsWereMet(), expectationsNotMetMsg)
}

func TestAlertRepository_Exists(t *testing.T) {
	ctx, repo, mockPool := setupAlertRepo(t)

	mockPool.ExpectQuery(regexp.QuoteMeta(`SELECT EXISTS`)).
		WithArgs(int64(42), alert.TypeCreditScoreChange, "2026-03-01").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(ctx, 42, alert.TypeCreditScoreChange, "2026-03-01")

	assert.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mockPool.ExpectationsWereMet(), expectationsNotMetMsg)
}
