package app

import (
	"context"
	"time"

	"github.com/google/uuid"
	"osint-challenge-service/internal/domain"
)

// certificateNamespace seeds name-based certificate IDs.
var certificateNamespace = uuid.MustParse("6f2c3a1e-93b4-4d0a-9a57-2f8e1c0b7d45")

// CertificateSink receives issued certificates (renderer, archive, event bus).
type CertificateSink interface {
	Deliver(ctx context.Context, cert domain.Certificate) error
}

// CertificateArchive lists certificates that outlived their attempts.
type CertificateArchive interface {
	ListCertificates(ctx context.Context, learner string) ([]domain.Certificate, error)
}

// IssueCertificate builds the certificate for a completed attempt. It depends only
// on its inputs, so issuing twice for the same attempt yields the same record.
func IssueCertificate(attempt domain.AttemptSnapshot, challenge domain.Challenge, learner string) domain.Certificate {
	var issuedAt time.Time
	if attempt.CompletedAt != nil {
		issuedAt = *attempt.CompletedAt
	}
	return domain.Certificate{
		ID:             uuid.NewSHA1(certificateNamespace, []byte(attempt.ID)).String(),
		Learner:        learner,
		ChallengeID:    challenge.ID,
		ChallengeTitle: challenge.Title,
		Category:       challenge.Category,
		Difficulty:     challenge.Difficulty,
		Points:         challenge.TotalPoints(),
		IssuedAt:       issuedAt,
	}
}
