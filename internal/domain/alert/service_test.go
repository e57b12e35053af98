package alert

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"arthastra/internal/domain/profile"
	"arthastra/internal/pkg/apperrors"
)

type stubProfiles struct {
	ids     []int64
	byID    map[int64]*profile.ApplicantProfile
	history map[int64][]profile.ScoreEntry
}

func (s *stubProfiles) ListUserIDs(context.Context) ([]int64, error) { return s.ids, nil }

func (s *stubProfiles) FindByUserID(_ context.Context, userID int64) (*profile.ApplicantProfile, error) {
	p, ok := s.byID[userID]
	if !ok {
		return nil, apperrors.ErrNotFound
	}
	return p, nil
}

func (s *stubProfiles) LatestScores(_ context.Context, userID int64, _ int) ([]profile.ScoreEntry, error) {
	return s.history[userID], nil
}

type stubActivity struct {
	lastSeen map[int64]time.Time
}

func (s *stubActivity) LastSeen(_ context.Context, userID int64) (time.Time, error) {
	return s.lastSeen[userID], nil
}

type stubNotifier struct {
	sent []string
	err  error
}

func (s *stubNotifier) SendWhatsApp(_ context.Context, to, body string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, to)
	return "SM123", nil
}

type stubPublisher struct {
	published []Alert
}

func (s *stubPublisher) PublishAlertCreated(_ context.Context, a Alert) error {
	s.published = append(s.published, a)
	return nil
}

func serviceUnderTest(repo Repository, profiles ProfileSource, opts ServiceOptions) Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewService(repo, profiles, logger, opts)
}

func TestService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("persists and publishes", func(t *testing.T) {
		repo := new(MockRepository)
		pub := &stubPublisher{}
		svc := serviceUnderTest(repo, &stubProfiles{}, ServiceOptions{Publisher: pub})

		repo.On("Create", ctx, mock.MatchedBy(func(a *Alert) bool {
			return a.UserID == 1 && a.Type == TypeSystem && !a.Read && !a.CreatedAt.IsZero()
		})).Return(nil).Once()

		created, err := svc.Create(ctx, Alert{UserID: 1, Type: TypeSystem, Title: "Maintenance", Severity: SeverityInfo})

		require.NoError(t, err)
		assert.NotEqual(t, "00000000-0000-0000-0000-000000000000", created.ID.String())
		assert.Len(t, pub.published, 1)
		repo.AssertExpectations(t)
	})

	t.Run("dedup suppresses duplicate trigger", func(t *testing.T) {
		repo := new(MockRepository)
		svc := serviceUnderTest(repo, &stubProfiles{}, ServiceOptions{})

		repo.On("Exists", ctx, int64(1), TypeCreditScoreChange, "2026-03-01").Return(true, nil).Once()

		_, err := svc.Create(ctx, Alert{
			UserID: 1, Type: TypeCreditScoreChange, Title: "Score changed",
			Severity: SeverityInfo, DedupKey: "2026-03-01",
		})

		assert.ErrorIs(t, err, apperrors.ErrAlreadyExists)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		repo := new(MockRepository)
		svc := serviceUnderTest(repo, &stubProfiles{}, ServiceOptions{})

		_, err := svc.Create(ctx, Alert{UserID: 1, Type: "telegram", Title: "x"})
		assert.ErrorIs(t, err, apperrors.ErrValidation)
	})

	t.Run("critical severity sends WhatsApp", func(t *testing.T) {
		repo := new(MockRepository)
		notifier := &stubNotifier{}
		profiles := &stubProfiles{byID: map[int64]*profile.ApplicantProfile{
			1: {UserID: 1, Phone: "+919876543210"},
		}}
		svc := serviceUnderTest(repo, profiles, ServiceOptions{Notifier: notifier})

		repo.On("Create", ctx, mock.Anything).Return(nil).Once()

		_, err := svc.Create(ctx, Alert{UserID: 1, Type: TypeSystem, Title: "Account at risk", Severity: SeverityCritical})

		require.NoError(t, err)
		assert.Equal(t, []string{"+919876543210"}, notifier.sent)
	})

	t.Run("opted-out recipient does not fail creation", func(t *testing.T) {
		repo := new(MockRepository)
		notifier := &stubNotifier{err: apperrors.ErrRecipientNotOptedIn}
		profiles := &stubProfiles{byID: map[int64]*profile.ApplicantProfile{
			1: {UserID: 1, Phone: "+919876543210"},
		}}
		svc := serviceUnderTest(repo, profiles, ServiceOptions{Notifier: notifier})

		repo.On("Create", ctx, mock.Anything).Return(nil).Once()

		_, err := svc.Create(ctx, Alert{UserID: 1, Type: TypeSystem, Title: "Account at risk", Severity: SeverityCritical})
		assert.NoError(t, err)
	})
}

func TestService_RunScoreChangeDetection(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("alerts on large drops and rises only", func(t *testing.T) {
		repo := new(MockRepository)
		profiles := &stubProfiles{
			ids: []int64{1, 2, 3, 4},
			history: map[int64][]profile.ScoreEntry{
				1: {{UserID: 1, Score: 620, RecordedAt: now}, {UserID: 1, Score: 700, RecordedAt: now.AddDate(0, -1, 0)}},
				2: {{UserID: 2, Score: 705, RecordedAt: now}, {UserID: 2, Score: 700, RecordedAt: now.AddDate(0, -1, 0)}},
				3: {{UserID: 3, Score: 730, RecordedAt: now}, {UserID: 3, Score: 700, RecordedAt: now.AddDate(0, -1, 0)}},
				4: {{UserID: 4, Score: 700, RecordedAt: now}},
			},
		}
		svc := serviceUnderTest(repo, profiles, ServiceOptions{ScoreDeltaThreshold: 20})

		repo.On("Exists", ctx, mock.Anything, TypeCreditScoreChange, "2026-03-01").Return(false, nil).Twice()
		repo.On("Create", ctx, mock.MatchedBy(func(a *Alert) bool {
			return a.Type == TypeCreditScoreChange && a.DedupKey == "2026-03-01"
		})).Return(nil).Twice()

		created, err := svc.RunScoreChangeDetection(ctx)

		require.NoError(t, err)
		// User 1 dropped 80, user 3 rose 30; user 2 moved 5, user 4 has one entry.
		assert.Equal(t, 2, created)
		repo.AssertExpectations(t)
	})

	t.Run("already-alerted trigger is skipped quietly", func(t *testing.T) {
		repo := new(MockRepository)
		profiles := &stubProfiles{
			ids: []int64{1},
			history: map[int64][]profile.ScoreEntry{
				1: {{UserID: 1, Score: 620, RecordedAt: now}, {UserID: 1, Score: 700, RecordedAt: now.AddDate(0, -1, 0)}},
			},
		}
		svc := serviceUnderTest(repo, profiles, ServiceOptions{ScoreDeltaThreshold: 20})

		repo.On("Exists", ctx, int64(1), TypeCreditScoreChange, "2026-03-01").Return(true, nil).Once()

		created, err := svc.RunScoreChangeDetection(ctx)

		require.NoError(t, err)
		assert.Zero(t, created)
		repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestService_RunDropOffDetection(t *testing.T) {
	ctx := context.Background()

	t.Run("alerts users inactive past the window", func(t *testing.T) {
		repo := new(MockRepository)
		profiles := &stubProfiles{ids: []int64{1, 2, 3}}
		activity := &stubActivity{lastSeen: map[int64]time.Time{
			1: time.Now().Add(-10 * 24 * time.Hour),
			2: time.Now().Add(-2 * 24 * time.Hour),
			// user 3 never seen: zero value
		}}
		svc := serviceUnderTest(repo, profiles, ServiceOptions{DropOffAfterDays: 7, Activity: activity})

		repo.On("Exists", ctx, int64(1), TypeDropOff, mock.Anything).Return(false, nil).Once()
		repo.On("Create", ctx, mock.MatchedBy(func(a *Alert) bool {
			return a.UserID == 1 && a.Type == TypeDropOff
		})).Return(nil).Once()

		created, err := svc.RunDropOffDetection(ctx)

		require.NoError(t, err)
		assert.Equal(t, 1, created)
		repo.AssertExpectations(t)
	})

	t.Run("no activity source configured", func(t *testing.T) {
		repo := new(MockRepository)
		svc := serviceUnderTest(repo, &stubProfiles{ids: []int64{1}}, ServiceOptions{})

		created, err := svc.RunDropOffDetection(ctx)

		require.NoError(t, err)
		assert.Zero(t, created)
	})
}

func TestService_MarkRead(t *testing.T) {
	ctx := context.Background()
	repo := new(MockRepository)
	svc := serviceUnderTest(repo, &stubProfiles{}, ServiceOptions{})

	repo.On("MarkRead", ctx, mock.Anything).Return(errors.New("gone")).Once()

	err := svc.MarkRead(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrInternalServer)
}
