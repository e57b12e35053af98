// Package activity tracks when a user was last seen, backed by Redis. The
// drop-off detection job reads it; the API middleware writes it on every
// authenticated request.
package activity

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"arthastra/internal/config"
)

// retention keeps last-seen keys from accumulating forever: anyone silent
// for 90 days is treated as never seen.
const retention = 90 * 24 * time.Hour

type Store struct {
	client *redis.Client
}

func NewStore(cfg config.RedisConfig) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	return &Store{client: rdb}
}

// NewStoreWithClient wires an existing client, used by tests.
func NewStoreWithClient(client *redis.Client) *Store {
	return &Store{client: client}
}

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	if s.client != nil {
		return s.client.Close()
	}
	return nil
}

// Touch records activity for the user at the current time.
func (s *Store) Touch(ctx context.Context, userID int64) error {
	return s.TouchAt(ctx, userID, time.Now())
}

func (s *Store) TouchAt(ctx context.Context, userID int64, at time.Time) error {
	key := lastSeenKey(userID)
	if err := s.client.Set(ctx, key, at.Unix(), retention).Err(); err != nil {
		return fmt.Errorf("failed to record activity for user %d: %w", userID, err)
	}
	return nil
}

// LastSeen returns the time of the user's latest activity. A user with no
// recorded activity returns the zero time and no error.
func (s *Store) LastSeen(ctx context.Context, userID int64) (time.Time, error) {
	val, err := s.client.Get(ctx, lastSeenKey(userID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to read activity for user %d: %w", userID, err)
	}

	unix, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("corrupt activity record for user %d: %w", userID, err)
	}
	return time.Unix(unix, 0), nil
}

func lastSeenKey(userID int64) string {
	return fmt.Sprintf("activity:lastseen:%d", userID)
}
