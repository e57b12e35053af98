// Package llm wraps the hosted generative-text provider behind a small
// completion interface with API-key rotation and model fallback.
package llm

import (
	"fmt"
	"sync"
	"time"

	"arthastra/internal/pkg/apperrors"
)

// KeyRing hands out API keys round-robin and tracks which keys hit their
// quota. Exhausted keys come back into rotation after the cooldown elapses.
// Safe for concurrent use.
type KeyRing struct {
	mu        sync.Mutex
	keys      []string
	cursor    int
	exhausted map[int]time.Time
	cooldown  time.Duration
	now       func() time.Time
}

func NewKeyRing(keys []string, cooldown time.Duration) (*KeyRing, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: at least one API key is required", apperrors.ErrInvalidArgument)
	}
	if cooldown <= 0 {
		cooldown = 60 * time.Second
	}
	return &KeyRing{
		keys:      keys,
		exhausted: make(map[int]time.Time),
		cooldown:  cooldown,
		now:       time.Now,
	}, nil
}

// Len returns the number of keys in the ring, exhausted or not.
func (r *KeyRing) Len() int {
	return len(r.keys)
}

// Next returns the next usable key and advances the cursor past it. When
// every key is cooling down it returns ErrRateLimited.
func (r *KeyRing) Next() (int, string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.evictLocked()

	for i := 0; i < len(r.keys); i++ {
		idx := (r.cursor + i) % len(r.keys)
		if _, down := r.exhausted[idx]; down {
			continue
		}
		r.cursor = (idx + 1) % len(r.keys)
		return idx, r.keys[idx], nil
	}
	return 0, "", fmt.Errorf("%w: all API keys are cooling down", apperrors.ErrRateLimited)
}

// MarkExhausted takes a key out of rotation for the cooldown window.
func (r *KeyRing) MarkExhausted(idx int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if idx < 0 || idx >= len(r.keys) {
		return
	}
	r.exhausted[idx] = r.now()
}

func (r *KeyRing) evictLocked() {
	cutoff := r.now().Add(-r.cooldown)
	for idx, at := range r.exhausted {
		if at.Before(cutoff) {
			delete(r.exhausted, idx)
		}
	}
}
