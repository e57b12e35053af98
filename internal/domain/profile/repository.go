package profile

import "context"

type Repository interface {
	Create(ctx context.Context, p *ApplicantProfile) error

	FindByUserID(ctx context.Context, userID int64) (*ApplicantProfile, error)

	Update(ctx context.Context, p *ApplicantProfile) error

	Delete(ctx context.Context, userID int64) error

	ListUserIDs(ctx context.Context) ([]int64, error)

	RecordScore(ctx context.Context, entry ScoreEntry) error

	// LatestScores returns up to limit history entries for the user, newest
	// first.
	LatestScores(ctx context.Context, userID int64, limit int) ([]ScoreEntry, error)
}
