package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"arthastra/internal/api/handler/dto"
	"arthastra/internal/domain/profile"
	"arthastra/internal/pkg/apperrors"
)

type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) CreateProfile(ctx context.Context, p *profile.ApplicantProfile) (*profile.ApplicantProfile, error) {
	args := m.Called(ctx, p)
	if created, ok := args.Get(0).(*profile.ApplicantProfile); ok {
		return created, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileService) GetProfile(ctx context.Context, userID int64) (*profile.ApplicantProfile, error) {
	args := m.Called(ctx, userID)
	if p, ok := args.Get(0).(*profile.ApplicantProfile); ok {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileService) UpdateProfile(ctx context.Context, p *profile.ApplicantProfile) (*profile.ApplicantProfile, error) {
	args := m.Called(ctx, p)
	if updated, ok := args.Get(0).(*profile.ApplicantProfile); ok {
		return updated, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileService) DeleteProfile(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockProfileService) ListUserIDs(ctx context.Context) ([]int64, error) {
	args := m.Called(ctx)
	if ids, ok := args.Get(0).([]int64); ok {
		return ids, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProfileService) RecordScore(ctx context.Context, userID int64, score int) error {
	args := m.Called(ctx, userID, score)
	return args.Error(0)
}

func (m *MockProfileService) LatestScores(ctx context.Context, userID int64, limit int) ([]profile.ScoreEntry, error) {
	args := m.Called(ctx, userID, limit)
	if entries, ok := args.Get(0).([]profile.ScoreEntry); ok {
		return entries, args.Error(1)
	}
	return nil, args.Error(1)
}

func testHandlerLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
}

func withURLParam(req *http.Request, key, value string) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, &chi.Context{
		URLParams: chi.RouteParams{Keys: []string{key}, Values: []string{value}},
	}))
}

func TestProfileHandlerCreateProfile(t *testing.T) {
	t.Run("creates a profile", func(t *testing.T) {
		mockService := new(MockProfileService)
		handler := NewProfileHandler(mockService, testHandlerLogger())

		stored := &profile.ApplicantProfile{UserID: 42, FullName: "Asha Verma", CreatedAt: time.Now()}
		mockService.On("CreateProfile", mock.Anything, mock.MatchedBy(func(p *profile.ApplicantProfile) bool {
			return p.UserID == 42 && p.FullName == "Asha Verma"
		})).Return(stored, nil)

		body := bytes.NewBufferString(`{"userId":42,"fullName":"Asha Verma","monthlyIncome":45000}`)
		req := httptest.NewRequest(http.MethodPost, "/profiles", body)
		rec := httptest.NewRecorder()

		handler.CreateProfile(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		var resp dto.ProfileResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "42", resp.UserID)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects a profile without a user id", func(t *testing.T) {
		mockService := new(MockProfileService)
		handler := NewProfileHandler(mockService, testHandlerLogger())

		body := bytes.NewBufferString(`{"fullName":"Asha Verma"}`)
		req := httptest.NewRequest(http.MethodPost, "/profiles", body)
		rec := httptest.NewRecorder()

		handler.CreateProfile(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "CreateProfile")
	})

	t.Run("surfaces the offending field on validation errors", func(t *testing.T) {
		mockService := new(MockProfileService)
		handler := NewProfileHandler(mockService, testHandlerLogger())

		mockService.On("CreateProfile", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewValidationError("fullName", "cannot be empty"))

		body := bytes.NewBufferString(`{"userId":42,"fullName":"   "}`)
		req := httptest.NewRequest(http.MethodPost, "/profiles", body)
		rec := httptest.NewRecorder()

		handler.CreateProfile(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		var resp dto.ErrorResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "fullName", resp.Error.Field)
		assert.Equal(t, "cannot be empty", resp.Error.Message)
	})

	t.Run("maps duplicate profiles to 409", func(t *testing.T) {
		mockService := new(MockProfileService)
		handler := NewProfileHandler(mockService, testHandlerLogger())

		mockService.On("CreateProfile", mock.Anything, mock.Anything).
			Return(nil, fmt.Errorf("%w: profile for user 42", apperrors.ErrAlreadyExists))

		body := bytes.NewBufferString(`{"userId":42,"fullName":"Asha Verma"}`)
		req := httptest.NewRequest(http.MethodPost, "/profiles", body)
		rec := httptest.NewRecorder()

		handler.CreateProfile(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestProfileHandlerGetProfile(t *testing.T) {
	t.Run("retrieves a stored profile", func(t *testing.T) {
		mockService := new(MockProfileService)
		handler := NewProfileHandler(mockService, testHandlerLogger())

		mockService.On("GetProfile", mock.Anything, int64(42)).
			Return(&profile.ApplicantProfile{UserID: 42, FullName: "Asha Verma"}, nil)

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/profiles/42", nil), "userID", "42")
		rec := httptest.NewRecorder()

		handler.GetProfile(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		var resp dto.ProfileResponse
		assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		assert.Equal(t, "Asha Verma", resp.FullName)
	})

	t.Run("maps a missing profile to 404", func(t *testing.T) {
		mockService := new(MockProfileService)
		handler := NewProfileHandler(mockService, testHandlerLogger())

		mockService.On("GetProfile", mock.Anything, int64(99)).
			Return(nil, fmt.Errorf("%w: profile for user 99", apperrors.ErrNotFound))

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/profiles/99", nil), "userID", "99")
		rec := httptest.NewRecorder()

		handler.GetProfile(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("rejects a non numeric user id", func(t *testing.T) {
		mockService := new(MockProfileService)
		handler := NewProfileHandler(mockService, testHandlerLogger())

		req := withURLParam(httptest.NewRequest(http.MethodGet, "/profiles/abc", nil), "userID", "abc")
		rec := httptest.NewRecorder()

		handler.GetProfile(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "GetProfile")
	})
}

func TestProfileHandlerUpdateProfile(t *testing.T) {
	t.Run("updates with the URL user id", func(t *testing.T) {
		mockService := new(MockProfileService)
		handler := NewProfileHandler(mockService, testHandlerLogger())

		mockService.On("UpdateProfile", mock.Anything, mock.MatchedBy(func(p *profile.ApplicantProfile) bool {
			return p.UserID == 42
		})).Return(&profile.ApplicantProfile{UserID: 42, FullName: "Asha Verma"}, nil)

		body := bytes.NewBufferString(`{"fullName":"Asha Verma","monthlyIncome":55000}`)
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/profiles/42", body), "userID", "42")
		rec := httptest.NewRecorder()

		handler.UpdateProfile(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects a body id that disagrees with the URL", func(t *testing.T) {
		mockService := new(MockProfileService)
		handler := NewProfileHandler(mockService, testHandlerLogger())

		body := bytes.NewBufferString(`{"userId":7,"fullName":"Asha Verma"}`)
		req := withURLParam(httptest.NewRequest(http.MethodPut, "/profiles/42", body), "userID", "42")
		rec := httptest.NewRecorder()

		handler.UpdateProfile(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "UpdateProfile")
	})
}

func TestProfileHandlerDeleteProfile(t *testing.T) {
	mockService := new(MockProfileService)
	handler := NewProfileHandler(mockService, testHandlerLogger())

	mockService.On("DeleteProfile", mock.Anything, int64(42)).Return(nil)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/profiles/42", nil), "userID", "42")
	rec := httptest.NewRecorder()

	handler.DeleteProfile(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	mockService.AssertExpectations(t)
}

func TestProfileHandlerRecordScore(t *testing.T) {
	t.Run("records a score", func(t *testing.T) {
		mockService := new(MockProfileService)
		handler := NewProfileHandler(mockService, testHandlerLogger())

		mockService.On("RecordScore", mock.Anything, int64(42), 712).Return(nil)

		body := bytes.NewBufferString(`{"score":712}`)
		req := withURLParam(httptest.NewRequest(http.MethodPost, "/profiles/42/scores", body), "userID", "42")
		rec := httptest.NewRecorder()

		handler.RecordScore(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("rejects an out of range score", func(t *testing.T) {
		mockService := new(MockProfileService)
		handler := NewProfileHandler(mockService, testHandlerLogger())

		body := bytes.NewBufferString(`{"score":1000}`)
		req := withURLParam(httptest.NewRequest(http.MethodPost, "/profiles/42/scores", body), "userID", "42")
		rec := httptest.NewRecorder()

		handler.RecordScore(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		mockService.AssertNotCalled(t, "RecordScore")
	})
}

func TestProfileHandlerGetScoreHistory(t *testing.T) {
	mockService := new(MockProfileService)
	handler := NewProfileHandler(mockService, testHandlerLogger())

	entries := []profile.ScoreEntry{
		{UserID: 42, Score: 712, RecordedAt: time.Now()},
		{UserID: 42, Score: 698, RecordedAt: time.Now().AddDate(0, -1, 0)},
	}
	mockService.On("LatestScores", mock.Anything, int64(42), 5).Return(entries, nil)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/profiles/42/scores?limit=5", nil), "userID", "42")
	rec := httptest.NewRecorder()

	handler.GetScoreHistory(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	var resp dto.ScoreHistoryResponse
	assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Len(t, resp.Entries, 2)
	assert.Equal(t, 712, resp.Entries[0].Score)
	mockService.AssertExpectations(t)
}
