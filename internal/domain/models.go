package domain

import "time"

// Difficulty grades a challenge.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Rank orders difficulties easy < medium < hard; unknown values sort last.
func (d Difficulty) Rank() int {
	switch d {
	case DifficultyEasy:
		return 0
	case DifficultyMedium:
		return 1
	case DifficultyHard:
		return 2
	default:
		return 3
	}
}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	return d.Rank() < 3
}

// Question is a single step of a challenge. Answer is the expected secret and
// must never leave the evaluation boundary; callers receive QuestionView instead.
type Question struct {
	ID          string `json:"id" yaml:"id" msgpack:"id"`
	ChallengeID string `json:"challengeId" yaml:"challengeId" msgpack:"challengeId"`
	Prompt      string `json:"prompt" yaml:"prompt" msgpack:"prompt"`
	Points      int    `json:"points" yaml:"points" msgpack:"points"`
	OrderIndex  int    `json:"orderIndex" yaml:"orderIndex" msgpack:"orderIndex"`
	Answer      string `json:"answer" yaml:"answer" msgpack:"answer"`
}

// View strips the expected answer.
func (q Question) View() QuestionView {
	return QuestionView{ID: q.ID, Prompt: q.Prompt, Points: q.Points}
}

// QuestionView is the caller-facing projection of a question.
type QuestionView struct {
	ID     string `json:"questionId"`
	Prompt string `json:"prompt"`
	Points int    `json:"points"`
}

// Challenge is a catalog entry together with its question set.
type Challenge struct {
	ID          string     `json:"id" yaml:"id" msgpack:"id"`
	Title       string     `json:"title" yaml:"title" msgpack:"title"`
	Description string     `json:"description" yaml:"description" msgpack:"description"`
	Difficulty  Difficulty `json:"difficulty" yaml:"difficulty" msgpack:"difficulty"`
	Category    string     `json:"category" yaml:"category" msgpack:"category"`
	Points      int        `json:"points" yaml:"points" msgpack:"points"`
	Active      bool       `json:"active" yaml:"active" msgpack:"active"`
	Questions   []Question `json:"questions" yaml:"questions" msgpack:"questions"`
}

// TotalPoints is the aggregate point value, falling back to the sum of question
// points when the challenge does not declare one.
func (c Challenge) TotalPoints() int {
	if c.Points > 0 {
		return c.Points
	}
	total := 0
	for _, q := range c.Questions {
		total += q.Points
	}
	return total
}

// Summary drops the question set.
func (c Challenge) Summary() ChallengeSummary {
	return ChallengeSummary{
		ID:          c.ID,
		Title:       c.Title,
		Description: c.Description,
		Difficulty:  c.Difficulty,
		Category:    c.Category,
		Points:      c.TotalPoints(),
	}
}

// ChallengeSummary is the catalog listing shape.
type ChallengeSummary struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Difficulty  Difficulty `json:"difficulty"`
	Category    string     `json:"category"`
	Points      int        `json:"points"`
}

// Certificate is issued once per attempt after every question is answered correctly.
type Certificate struct {
	ID             string     `json:"id"`
	Learner        string     `json:"learner"`
	ChallengeID    string     `json:"challengeId"`
	ChallengeTitle string     `json:"challengeTitle"`
	Category       string     `json:"category"`
	Difficulty     Difficulty `json:"difficulty"`
	Points         int        `json:"points"`
	IssuedAt       time.Time  `json:"issuedAt"`
}

// SubmissionResult summarizes the outcome of one answer submission.
type SubmissionResult struct {
	QuestionID  string       `json:"questionId"`
	Verdict     bool         `json:"verdict"`
	Ratio       float64      `json:"ratio"`
	Completed   bool         `json:"completed"`
	Certificate *Certificate `json:"certificate,omitempty"`
}

// AttemptSnapshot is a point-in-time copy of an attempt's progress.
type AttemptSnapshot struct {
	ID          string          `json:"attemptId"`
	ChallengeID string          `json:"challengeId"`
	Learner     string          `json:"learner"`
	Verdicts    map[string]bool `json:"verdicts"`
	Ratio       float64         `json:"ratio"`
	Completed   bool            `json:"completed"`
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt *time.Time      `json:"completedAt,omitempty"`
}
