package alert

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (_m *MockRepository) Create(ctx context.Context, a *Alert) error {
	ret := _m.Called(ctx, a)
	return ret.Error(0)
}

func (_m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*Alert, error) {
	ret := _m.Called(ctx, id)

	var r0 *Alert
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Alert)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) ListByUser(ctx context.Context, userID int64, unreadOnly bool) ([]Alert, error) {
	ret := _m.Called(ctx, userID, unreadOnly)

	var r0 []Alert
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Alert)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	ret := _m.Called(ctx, id)
	return ret.Error(0)
}

func (_m *MockRepository) Exists(ctx context.Context, userID int64, alertType Type, dedupKey string) (bool, error) {
	ret := _m.Called(ctx, userID, alertType, dedupKey)
	return ret.Bool(0), ret.Error(1)
}
