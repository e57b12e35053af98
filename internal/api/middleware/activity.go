package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

// ActivityRecorder records that a user touched the API. Satisfied by the
// redis-backed activity store.
type ActivityRecorder interface {
	Touch(ctx context.Context, userID int64) error
}

// TrackActivity stamps the last-seen time for routes carrying a {userID}
// parameter. Best effort: a failed write never fails the request.
func TrackActivity(recorder ActivityRecorder, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)

			if recorder == nil {
				return
			}
			idStr := chi.URLParam(r, "userID")
			if idStr == "" {
				return
			}
			userID, err := strconv.ParseInt(idStr, 10, 64)
			if err != nil || userID <= 0 {
				return
			}

			ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), 2*time.Second)
			defer cancel()
			if err := recorder.Touch(ctx, userID); err != nil {
				logger.Warn("TrackActivity: failed to record user activity", "user_id", userID, "error", err)
			}
		})
	}
}
