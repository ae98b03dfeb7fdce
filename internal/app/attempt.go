package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"osint-challenge-service/internal/domain"
)

// Attempt is one learner's pass through one challenge. The verdict map holds an
// entry only for attempted questions: true once solved (then frozen), false while
// the last submission was wrong.
type Attempt struct {
	id          string
	challengeID string
	learner     string
	startedAt   time.Time
	now         func() time.Time

	mu          sync.Mutex
	verdicts    map[string]bool
	ratio       float64
	certified   bool
	completedAt time.Time
}

// NewAttempt starts an attempt with a random ID.
func NewAttempt(challengeID, learner string) *Attempt {
	return NewAttemptWithClock(uuid.NewString(), challengeID, learner, time.Now)
}

// NewAttemptWithClock allows deterministic IDs and timestamps in tests.
func NewAttemptWithClock(id, challengeID, learner string, now func() time.Time) *Attempt {
	return &Attempt{
		id:          id,
		challengeID: challengeID,
		learner:     learner,
		startedAt:   now(),
		now:         now,
		verdicts:    make(map[string]bool),
	}
}

func (a *Attempt) ID() string          { return a.id }
func (a *Attempt) ChallengeID() string { return a.challengeID }
func (a *Attempt) Learner() string     { return a.learner }

// Snapshot copies the attempt's current progress.
func (a *Attempt) Snapshot() domain.AttemptSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshotLocked()
}

// submit runs evaluate -> record -> detect -> issue as one unit under the attempt
// lock, so two racing submissions for the same question cannot both be scored.
func (a *Attempt) submit(set questionSet, questionID, rawAnswer string) (domain.SubmissionResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !set.has(questionID) {
		return domain.SubmissionResult{}, domain.ErrUnknownQuestion
	}

	result := domain.SubmissionResult{QuestionID: questionID}
	if a.verdicts[questionID] {
		// Solved questions are frozen; answer with the cached state.
		result.Verdict = true
		result.Ratio = a.ratio
		result.Completed = a.certified
		return result, nil
	}

	verdict, err := set.evaluate(questionID, rawAnswer)
	if err != nil {
		return domain.SubmissionResult{}, err
	}
	result.Verdict = verdict
	result.Ratio = a.recordLocked(set, questionID, verdict)

	if a.detectCompletionLocked(set) {
		cert := IssueCertificate(a.snapshotLocked(), set.challenge, a.learner)
		result.Certificate = &cert
	}
	result.Completed = a.certified
	return result, nil
}

// recordLocked stores a verdict and returns the recomputed completion ratio.
// A question that already holds a true verdict is left untouched.
func (a *Attempt) recordLocked(set questionSet, questionID string, verdict bool) float64 {
	if !set.has(questionID) {
		panic(fmt.Sprintf("attempt %s: verdict for question %q outside challenge %s", a.id, questionID, a.challengeID))
	}
	if a.verdicts[questionID] {
		return a.ratio
	}
	a.verdicts[questionID] = verdict
	a.ratio = completionRatio(a.verdicts, set)
	return a.ratio
}

// detectCompletionLocked is the one-shot latch: it reports true only on the
// call where the attempt first becomes complete.
func (a *Attempt) detectCompletionLocked(set questionSet) bool {
	if a.certified || !isComplete(a.verdicts, set) {
		return false
	}
	a.certified = true
	a.completedAt = a.now()
	return true
}

func (a *Attempt) snapshotLocked() domain.AttemptSnapshot {
	verdicts := make(map[string]bool, len(a.verdicts))
	for id, v := range a.verdicts {
		verdicts[id] = v
	}
	snap := domain.AttemptSnapshot{
		ID:          a.id,
		ChallengeID: a.challengeID,
		Learner:     a.learner,
		Verdicts:    verdicts,
		Ratio:       a.ratio,
		Completed:   a.certified,
		StartedAt:   a.startedAt,
	}
	if a.certified {
		completedAt := a.completedAt
		snap.CompletedAt = &completedAt
	}
	return snap
}

// completionRatio is correct/total over the current question set; an empty set yields 0.
func completionRatio(verdicts map[string]bool, set questionSet) float64 {
	questions := set.questions()
	if len(questions) == 0 {
		return 0
	}
	correct := 0
	for _, q := range questions {
		if verdicts[q.ID] {
			correct++
		}
	}
	return float64(correct) / float64(len(questions))
}

// isComplete requires at least one question and every one of them solved.
func isComplete(verdicts map[string]bool, set questionSet) bool {
	questions := set.questions()
	if len(questions) == 0 {
		return false
	}
	for _, q := range questions {
		if !verdicts[q.ID] {
			return false
		}
	}
	return true
}
