package alert

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, a *Alert) error

	FindByID(ctx context.Context, id uuid.UUID) (*Alert, error)

	// ListByUser returns alerts newest first.
	ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]Alert, error)

	MarkRead(ctx context.Context, id uuid.UUID) error

	// Exists reports whether an alert with the same (user, type, dedup key)
	// has already been created. The pre-insert check backs the
	// one-alert-per-trigger guarantee.
	Exists(ctx context.Context, userID int64, alertType Type, dedupKey string) (bool, error)
}
