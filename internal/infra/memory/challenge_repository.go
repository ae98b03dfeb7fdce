package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"osint-challenge-service/internal/domain"
)

// ChallengeLoader fetches challenges from a backing store (YAML catalog, Postgres).
type ChallengeLoader interface {
	LoadChallenge(ctx context.Context, challengeID string) (domain.Challenge, error)
}

// ChallengeRepository caches challenges with TTL to avoid repeated catalog hits.
type ChallengeRepository struct {
	loader ChallengeLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group

	mu    sync.RWMutex
	rnd   *rand.Rand
	cache map[string]cachedChallenge
}

type cachedChallenge struct {
	challenge domain.Challenge
	expiresAt time.Time
}

func NewChallengeRepository(loader ChallengeLoader, ttl time.Duration) *ChallengeRepository {
	return NewChallengeRepositoryWithClock(loader, ttl, time.Now)
}

// NewChallengeRepositoryWithClock lets tests control expiry.
func NewChallengeRepositoryWithClock(loader ChallengeLoader, ttl time.Duration, clock func() time.Time) *ChallengeRepository {
	return &ChallengeRepository{
		loader: loader,
		ttl:    ttl,
		clock:  clock,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedChallenge),
	}
}

func (r *ChallengeRepository) GetChallenge(ctx context.Context, challengeID string) (domain.Challenge, error) {
	if challenge, ok := r.cached(challengeID); ok {
		return challenge, nil
	}

	result, err, _ := r.sf.Do(challengeID, func() (interface{}, error) {
		if challenge, ok := r.cached(challengeID); ok {
			return challenge, nil
		}

		challenge, err := r.loader.LoadChallenge(ctx, challengeID)
		if err != nil {
			return domain.Challenge{}, err
		}

		r.mu.Lock()
		r.cache[challengeID] = cachedChallenge{
			challenge: challenge,
			expiresAt: r.clock().Add(r.ttlWithJitterLocked()),
		}
		r.mu.Unlock()
		return challenge, nil
	})
	if err != nil {
		return domain.Challenge{}, err
	}
	return result.(domain.Challenge), nil
}

func (r *ChallengeRepository) cached(challengeID string) (domain.Challenge, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[challengeID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.Challenge{}, false
	}
	return entry.challenge, true
}

// ttlWithJitterLocked adds up to 10% jitter to spread expirations.
func (r *ChallengeRepository) ttlWithJitterLocked() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticChallengeLoader is a loader backed by an in-memory map (tests, demos, YAML catalogs).
type StaticChallengeLoader struct {
	challenges map[string]domain.Challenge
}

func NewStaticChallengeLoader(challenges map[string]domain.Challenge) *StaticChallengeLoader {
	return &StaticChallengeLoader{challenges: challenges}
}

func (l *StaticChallengeLoader) LoadChallenge(_ context.Context, challengeID string) (domain.Challenge, error) {
	if challenge, ok := l.challenges[challengeID]; ok {
		return challenge, nil
	}
	return domain.Challenge{}, domain.ErrChallengeNotFound
}

func (l *StaticChallengeLoader) ListChallenges(_ context.Context) ([]domain.Challenge, error) {
	out := make([]domain.Challenge, 0, len(l.challenges))
	for _, challenge := range l.challenges {
		out = append(out, challenge)
	}
	return out, nil
}
