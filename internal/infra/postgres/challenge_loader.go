package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"osint-challenge-service/internal/domain"
)

// ChallengeLoader loads challenges and their questions from Postgres.
type ChallengeLoader struct {
	pool *pgxpool.Pool
}

func NewChallengeLoader(pool *pgxpool.Pool) *ChallengeLoader {
	return &ChallengeLoader{pool: pool}
}

const challengeColumns = `id, title, description, difficulty, category, points, is_active`

func (l *ChallengeLoader) LoadChallenge(ctx context.Context, challengeID string) (domain.Challenge, error) {
	challenge, err := scanChallenge(l.pool.QueryRow(ctx, `SELECT `+challengeColumns+` FROM challenges WHERE id=$1`, challengeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Challenge{}, domain.ErrChallengeNotFound
	}
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("load challenge: %w", err)
	}

	rows, err := l.pool.Query(ctx, `
		SELECT id, challenge_id, prompt, points, order_index, answer
		FROM questions
		WHERE challenge_id=$1
		ORDER BY order_index, id`, challengeID)
	if err != nil {
		return domain.Challenge{}, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.ChallengeID, &q.Prompt, &q.Points, &q.OrderIndex, &q.Answer); err != nil {
			return domain.Challenge{}, fmt.Errorf("scan question: %w", err)
		}
		challenge.Questions = append(challenge.Questions, q)
	}
	if err := rows.Err(); err != nil {
		return domain.Challenge{}, fmt.Errorf("load questions: %w", err)
	}
	return challenge, nil
}

// ListChallenges returns catalog entries without their questions.
func (l *ChallengeLoader) ListChallenges(ctx context.Context) ([]domain.Challenge, error) {
	rows, err := l.pool.Query(ctx, `SELECT `+challengeColumns+` FROM challenges ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	defer rows.Close()

	var out []domain.Challenge
	for rows.Next() {
		c, err := scanChallenge(rows)
		if err != nil {
			return nil, fmt.Errorf("scan challenge: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanChallenge(row pgx.Row) (domain.Challenge, error) {
	var (
		c          domain.Challenge
		difficulty string
	)
	if err := row.Scan(&c.ID, &c.Title, &c.Description, &difficulty, &c.Category, &c.Points, &c.Active); err != nil {
		return domain.Challenge{}, err
	}
	c.Difficulty = domain.Difficulty(difficulty)
	return c, nil
}
