package domain

import "errors"

var (
	// ErrChallengeNotFound is returned when a challenge is unknown or inactive.
	ErrChallengeNotFound = errors.New("challenge not found")
	// ErrUnknownQuestion indicates a question ID outside the challenge's question set.
	ErrUnknownQuestion = errors.New("unknown question")
	// ErrInvalidInput indicates an empty or whitespace-only answer.
	ErrInvalidInput = errors.New("invalid input: answer is empty")
	// ErrAttemptNotFound is returned when an attempt is unknown, expired, or belongs to another challenge.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrUnauthorized indicates the learner identity could not be established.
	ErrUnauthorized = errors.New("unauthorized")
)
