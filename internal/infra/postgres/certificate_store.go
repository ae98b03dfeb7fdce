package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"osint-challenge-service/internal/domain"
)

type certificateRow struct {
	bun.BaseModel `bun:"table:certificates"`

	ID             string    `bun:"id,pk"`
	Learner        string    `bun:"learner,notnull"`
	ChallengeID    string    `bun:"challenge_id,notnull"`
	ChallengeTitle string    `bun:"challenge_title,notnull"`
	Category       string    `bun:"category,notnull"`
	Difficulty     string    `bun:"difficulty,notnull"`
	Points         int       `bun:"points,notnull"`
	IssuedAt       time.Time `bun:"issued_at,notnull"`
}

// CertificateStore archives issued certificates so they outlive their attempts.
type CertificateStore struct {
	db *bun.DB
}

func NewCertificateStore(db *bun.DB) *CertificateStore {
	return &CertificateStore{db: db}
}

// Deliver inserts the certificate. Certificate IDs are derived from the attempt,
// so a repeated delivery is a no-op.
func (s *CertificateStore) Deliver(ctx context.Context, cert domain.Certificate) error {
	row := certificateRow{
		ID:             cert.ID,
		Learner:        cert.Learner,
		ChallengeID:    cert.ChallengeID,
		ChallengeTitle: cert.ChallengeTitle,
		Category:       cert.Category,
		Difficulty:     string(cert.Difficulty),
		Points:         cert.Points,
		IssuedAt:       cert.IssuedAt,
	}
	if _, err := s.db.NewInsert().Model(&row).On("CONFLICT (id) DO NOTHING").Exec(ctx); err != nil {
		return fmt.Errorf("archive certificate: %w", err)
	}
	return nil
}

func (s *CertificateStore) ListCertificates(ctx context.Context, learner string) ([]domain.Certificate, error) {
	var rows []certificateRow
	err := s.db.NewSelect().
		Model(&rows).
		Where("learner = ?", learner).
		Order("issued_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list certificates: %w", err)
	}

	certs := make([]domain.Certificate, 0, len(rows))
	for _, row := range rows {
		certs = append(certs, domain.Certificate{
			ID:             row.ID,
			Learner:        row.Learner,
			ChallengeID:    row.ChallengeID,
			ChallengeTitle: row.ChallengeTitle,
			Category:       row.Category,
			Difficulty:     domain.Difficulty(row.Difficulty),
			Points:         row.Points,
			IssuedAt:       row.IssuedAt,
		})
	}
	return certs, nil
}
