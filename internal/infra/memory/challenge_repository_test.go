package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"osint-challenge-service/internal/domain"
)

func TestChallengeRepositoryCaches(t *testing.T) {
	loader := &countingLoader{
		ChallengeLoader: NewStaticChallengeLoader(map[string]domain.Challenge{
			"c1": sampleChallenge(),
		}),
	}
	repo := NewChallengeRepository(loader, time.Minute)

	if _, err := repo.GetChallenge(context.Background(), "c1"); err != nil {
		t.Fatalf("get challenge: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls)
	}

	if _, err := repo.GetChallenge(context.Background(), "c1"); err != nil {
		t.Fatalf("get challenge 2: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls)
	}
}

func TestChallengeRepositoryExpires(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	loader := &countingLoader{
		ChallengeLoader: NewStaticChallengeLoader(map[string]domain.Challenge{"c1": sampleChallenge()}),
	}
	repo := NewChallengeRepositoryWithClock(loader, time.Minute, func() time.Time { return now })

	_, _ = repo.GetChallenge(context.Background(), "c1")
	now = now.Add(2 * time.Minute)
	_, _ = repo.GetChallenge(context.Background(), "c1")
	if loader.calls != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.calls)
	}
}

func TestChallengeRepositoryDoesNotCacheMisses(t *testing.T) {
	loader := &countingLoader{ChallengeLoader: NewStaticChallengeLoader(nil)}
	repo := NewChallengeRepository(loader, time.Minute)

	for i := 0; i < 2; i++ {
		if _, err := repo.GetChallenge(context.Background(), "nope"); !errors.Is(err, domain.ErrChallengeNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	}
	if loader.calls != 2 {
		t.Fatalf("expected misses to reach the loader, calls %d", loader.calls)
	}
}

type countingLoader struct {
	ChallengeLoader
	calls int
}

func (l *countingLoader) LoadChallenge(ctx context.Context, challengeID string) (domain.Challenge, error) {
	l.calls++
	return l.ChallengeLoader.LoadChallenge(ctx, challengeID)
}

func sampleChallenge() domain.Challenge {
	return domain.Challenge{
		ID:         "c1",
		Title:      "Find the server",
		Difficulty: domain.DifficultyEasy,
		Active:     true,
		Questions: []domain.Question{
			{ID: "q1", ChallengeID: "c1", Prompt: "Which port?", Points: 30, OrderIndex: 1, Answer: "80"},
		},
	}
}
