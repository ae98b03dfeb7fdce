package app

import (
	"context"
	"sort"

	"osint-challenge-service/internal/domain"
)

// ChallengeRepository loads a challenge and its question set (from cache/backing store).
type ChallengeRepository interface {
	GetChallenge(ctx context.Context, challengeID string) (domain.Challenge, error)
}

// QuestionBank is a read-only view over the challenge catalog. Expected answers
// stay inside the package; callers only ever see QuestionView.
type QuestionBank struct {
	challenges ChallengeRepository
}

func NewQuestionBank(challenges ChallengeRepository) *QuestionBank {
	return &QuestionBank{challenges: challenges}
}

// QuestionsFor returns the questions of an active challenge in display order.
func (b *QuestionBank) QuestionsFor(ctx context.Context, challengeID string) ([]domain.QuestionView, error) {
	set, err := b.resolve(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	views := make([]domain.QuestionView, 0, len(set.questions()))
	for _, q := range set.questions() {
		views = append(views, q.View())
	}
	return views, nil
}

func (b *QuestionBank) resolve(ctx context.Context, challengeID string) (questionSet, error) {
	challenge, err := b.challenges.GetChallenge(ctx, challengeID)
	if err != nil {
		return questionSet{}, err
	}
	if !challenge.Active {
		return questionSet{}, domain.ErrChallengeNotFound
	}
	return newQuestionSet(challenge), nil
}

// questionSet is one resolved challenge: its questions ordered by display index
// and an index by question ID.
type questionSet struct {
	challenge domain.Challenge
	index     map[string]int
}

func newQuestionSet(challenge domain.Challenge) questionSet {
	questions := make([]domain.Question, len(challenge.Questions))
	copy(questions, challenge.Questions)
	sort.SliceStable(questions, func(i, j int) bool {
		if questions[i].OrderIndex != questions[j].OrderIndex {
			return questions[i].OrderIndex < questions[j].OrderIndex
		}
		return questions[i].ID < questions[j].ID
	})
	challenge.Questions = questions

	index := make(map[string]int, len(questions))
	for i, q := range questions {
		index[q.ID] = i
	}
	return questionSet{challenge: challenge, index: index}
}

func (s questionSet) questions() []domain.Question {
	return s.challenge.Questions
}

func (s questionSet) has(questionID string) bool {
	_, ok := s.index[questionID]
	return ok
}

// expectedAnswer is the privileged accessor used only by evaluate.
func (s questionSet) expectedAnswer(questionID string) (string, bool) {
	i, ok := s.index[questionID]
	if !ok {
		return "", false
	}
	return s.challenge.Questions[i].Answer, true
}
