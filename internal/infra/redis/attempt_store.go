package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"osint-challenge-service/internal/app"
)

// AttemptStore is a Redis-aware implementation of app.AttemptRepository.
// Notes:
//   - Attempts live in a local map; their lock is what serializes submissions,
//     so the Attempt value itself is never shared across instances.
//   - Redis holds a liveness key per attempt with a sliding TTL. Once the key
//     expires the session is over and the attempt is dropped locally as well.
type AttemptStore struct {
	client   *redis.Client
	ttl      time.Duration
	mu       sync.RWMutex
	attempts map[string]*app.Attempt
}

func NewAttemptStore(client *redis.Client, ttl time.Duration) *AttemptStore {
	return &AttemptStore{
		client:   client,
		ttl:      ttl,
		attempts: make(map[string]*app.Attempt),
	}
}

func (s *AttemptStore) Save(attempt *app.Attempt) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.attempts[attempt.ID()] = attempt
	_ = s.client.Set(context.Background(), s.key(attempt.ID()), attempt.ChallengeID(), s.ttl).Err()
}

func (s *AttemptStore) Get(attemptID string) (*app.Attempt, bool) {
	s.mu.RLock()
	attempt, ok := s.attempts[attemptID]
	s.mu.RUnlock()
	if !ok {
		return nil, false
	}

	ctx := context.Background()
	alive, err := s.client.Exists(ctx, s.key(attemptID)).Result()
	if err == nil && alive == 0 {
		s.Delete(attemptID)
		return nil, false
	}
	if s.ttl > 0 {
		_ = s.client.Expire(ctx, s.key(attemptID), s.ttl).Err()
	}
	return attempt, true
}

func (s *AttemptStore) Delete(attemptID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.attempts, attemptID)
	_ = s.client.Del(context.Background(), s.key(attemptID)).Err()
}

func (s *AttemptStore) key(attemptID string) string {
	return "attempt:" + attemptID
}
