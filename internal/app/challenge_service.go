package app

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"osint-challenge-service/internal/domain"
	"osint-challenge-service/internal/logger"
)

// AnonymousLearner labels certificates when no identity is available.
const AnonymousLearner = "Anonymous User"

// AttemptRepository abstracts where live attempts are kept (in-memory, Redis, etc).
type AttemptRepository interface {
	Save(attempt *Attempt)
	Get(attemptID string) (*Attempt, bool)
	Delete(attemptID string)
}

// ChallengeLister enumerates the catalog for browsing.
type ChallengeLister interface {
	ListChallenges(ctx context.Context) ([]domain.Challenge, error)
}

// Option configures a ChallengeService.
type Option func(*ChallengeService)

// WithCertificateSinks registers collaborators that receive issued certificates.
func WithCertificateSinks(sinks ...CertificateSink) Option {
	return func(s *ChallengeService) { s.sinks = append(s.sinks, sinks...) }
}

func WithCertificateArchive(archive CertificateArchive) Option {
	return func(s *ChallengeService) { s.archive = archive }
}

func WithChallengeLister(lister ChallengeLister) Option {
	return func(s *ChallengeService) { s.lister = lister }
}

func WithLogger(log *logger.Logger) Option {
	return func(s *ChallengeService) { s.log = log }
}

// WithClock is test-only for deterministic timestamps and attempt IDs.
func WithClock(now func() time.Time, newID func() string) Option {
	return func(s *ChallengeService) {
		s.now = now
		s.newID = newID
	}
}

// ChallengeService contains the challenge evaluation use cases.
type ChallengeService struct {
	attempts AttemptRepository
	bank     *QuestionBank
	lister   ChallengeLister
	archive  CertificateArchive
	sinks    []CertificateSink
	log      *logger.Logger
	now      func() time.Time
	newID    func() string
}

func NewChallengeService(attempts AttemptRepository, challenges ChallengeRepository, opts ...Option) *ChallengeService {
	s := &ChallengeService{
		attempts: attempts,
		bank:     NewQuestionBank(challenges),
		log:      logger.Nop(),
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListChallenges returns active challenges ordered by difficulty, then title.
func (s *ChallengeService) ListChallenges(ctx context.Context) ([]domain.ChallengeSummary, error) {
	summaries := []domain.ChallengeSummary{}
	if s.lister == nil {
		return summaries, nil
	}
	challenges, err := s.lister.ListChallenges(ctx)
	if err != nil {
		return nil, err
	}
	for _, c := range challenges {
		if c.Active {
			summaries = append(summaries, c.Summary())
		}
	}
	sort.SliceStable(summaries, func(i, j int) bool {
		if ri, rj := summaries[i].Difficulty.Rank(), summaries[j].Difficulty.Rank(); ri != rj {
			return ri < rj
		}
		if summaries[i].Title != summaries[j].Title {
			return summaries[i].Title < summaries[j].Title
		}
		return summaries[i].ID < summaries[j].ID
	})
	return summaries, nil
}

// Questions lists a challenge's questions without their expected answers.
func (s *ChallengeService) Questions(ctx context.Context, challengeID string) ([]domain.QuestionView, error) {
	return s.bank.QuestionsFor(ctx, challengeID)
}

// OpenAttempt starts a new attempt; learners cannot open unknown or inactive challenges.
func (s *ChallengeService) OpenAttempt(ctx context.Context, challengeID, learner string) (domain.AttemptSnapshot, error) {
	if _, err := s.bank.resolve(ctx, challengeID); err != nil {
		return domain.AttemptSnapshot{}, err
	}
	learner = strings.TrimSpace(learner)
	if learner == "" {
		learner = AnonymousLearner
	}

	attempt := NewAttemptWithClock(s.newID(), challengeID, learner, s.now)
	s.attempts.Save(attempt)
	s.log.Info("attempt opened", "attempt_id", attempt.ID(), "challenge_id", challengeID, "learner", learner)
	return attempt.Snapshot(), nil
}

// SubmitAnswer scores one answer and, on the submission that completes the
// challenge, issues and delivers the certificate.
func (s *ChallengeService) SubmitAnswer(ctx context.Context, attemptID, challengeID, questionID, rawAnswer string) (domain.SubmissionResult, error) {
	attempt, err := s.attemptFor(attemptID, challengeID)
	if err != nil {
		return domain.SubmissionResult{}, err
	}

	// The catalog read completes before the attempt is touched.
	set, err := s.bank.resolve(ctx, challengeID)
	if err != nil {
		return domain.SubmissionResult{}, err
	}
	if !set.has(questionID) {
		return domain.SubmissionResult{}, domain.ErrUnknownQuestion
	}
	if strings.TrimSpace(rawAnswer) == "" {
		return domain.SubmissionResult{}, domain.ErrInvalidInput
	}

	result, err := attempt.submit(set, questionID, rawAnswer)
	if err != nil {
		return domain.SubmissionResult{}, err
	}
	s.log.Debug("verdict recorded",
		"attempt_id", attemptID,
		"question_id", questionID,
		"verdict", result.Verdict,
		"ratio", result.Ratio,
	)

	if result.Certificate != nil {
		s.log.Info("challenge completed", "attempt_id", attemptID, "challenge_id", challengeID, "certificate_id", result.Certificate.ID)
		s.deliver(ctx, *result.Certificate)
	}
	return result, nil
}

// Progress returns the attempt's current verdicts and ratio.
func (s *ChallengeService) Progress(_ context.Context, attemptID, challengeID string) (domain.AttemptSnapshot, error) {
	attempt, err := s.attemptFor(attemptID, challengeID)
	if err != nil {
		return domain.AttemptSnapshot{}, err
	}
	return attempt.Snapshot(), nil
}

// DiscardAttempt ends the attempt's session. Issued certificates are unaffected.
func (s *ChallengeService) DiscardAttempt(_ context.Context, attemptID, challengeID string) error {
	if _, err := s.attemptFor(attemptID, challengeID); err != nil {
		return err
	}
	s.attempts.Delete(attemptID)
	return nil
}

// Certificates lists a learner's archived certificates, newest first.
func (s *ChallengeService) Certificates(ctx context.Context, learner string) ([]domain.Certificate, error) {
	if s.archive == nil {
		return []domain.Certificate{}, nil
	}
	certs, err := s.archive.ListCertificates(ctx, learner)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(certs, func(i, j int) bool {
		return certs[i].IssuedAt.After(certs[j].IssuedAt)
	})
	return certs, nil
}

func (s *ChallengeService) attemptFor(attemptID, challengeID string) (*Attempt, error) {
	attempt, ok := s.attempts.Get(attemptID)
	if !ok || attempt.ChallengeID() != challengeID {
		return nil, domain.ErrAttemptNotFound
	}
	return attempt, nil
}

// deliver hands the certificate to every sink. The attempt is already committed,
// so a failing sink is logged rather than surfaced to the learner.
func (s *ChallengeService) deliver(ctx context.Context, cert domain.Certificate) {
	ctx = context.WithoutCancel(ctx)
	for _, sink := range s.sinks {
		if err := sink.Deliver(ctx, cert); err != nil {
			s.log.Error("certificate delivery failed", "certificate_id", cert.ID, "error", err)
		}
	}
}
