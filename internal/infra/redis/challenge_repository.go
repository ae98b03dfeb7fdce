package redis

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/sync/singleflight"
	"osint-challenge-service/internal/domain"
)

// ChallengeLoader fetches challenges from a backing store (YAML catalog, Postgres).
type ChallengeLoader interface {
	LoadChallenge(ctx context.Context, challengeID string) (domain.Challenge, error)
}

// ChallengeRepository caches whole challenges in Redis and falls back to a loader on miss.
// Entries are msgpack blobs stored as: SET challenge:{challengeID} <blob> EX ttl
type ChallengeRepository struct {
	client *redis.Client
	loader ChallengeLoader
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewChallengeRepository(client *redis.Client, loader ChallengeLoader, ttl time.Duration) *ChallengeRepository {
	return &ChallengeRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (r *ChallengeRepository) GetChallenge(ctx context.Context, challengeID string) (domain.Challenge, error) {
	if challenge, ok := r.fromCache(ctx, challengeID); ok {
		return challenge, nil
	}

	result, err, _ := r.sf.Do(challengeID, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if challenge, ok := r.fromCache(ctx, challengeID); ok {
			return challenge, nil
		}

		challenge, err := r.loader.LoadChallenge(ctx, challengeID)
		if err != nil {
			return domain.Challenge{}, err
		}

		blob, err := msgpack.Marshal(challenge)
		if err != nil {
			return domain.Challenge{}, fmt.Errorf("encode challenge: %w", err)
		}
		// Cache fill is best effort; the loaded challenge is still served.
		_ = r.client.Set(ctx, r.key(challengeID), blob, r.ttlWithJitter()).Err()
		return challenge, nil
	})
	if err != nil {
		return domain.Challenge{}, err
	}
	return result.(domain.Challenge), nil
}

// Invalidate drops a cached challenge so the next read goes to the loader.
func (r *ChallengeRepository) Invalidate(ctx context.Context, challengeID string) error {
	return r.client.Del(ctx, r.key(challengeID)).Err()
}

func (r *ChallengeRepository) fromCache(ctx context.Context, challengeID string) (domain.Challenge, bool) {
	blob, err := r.client.Get(ctx, r.key(challengeID)).Bytes()
	if err != nil {
		return domain.Challenge{}, false
	}
	var challenge domain.Challenge
	if err := msgpack.Unmarshal(blob, &challenge); err != nil {
		return domain.Challenge{}, false
	}
	return challenge, true
}

func (r *ChallengeRepository) key(challengeID string) string {
	return "challenge:" + challengeID
}

func (r *ChallengeRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
