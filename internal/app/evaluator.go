package app

import "osint-challenge-service/internal/domain"

// evaluate compares a submitted answer with the question's expected secret.
// There is no partial credit: the verdict is exact equality of the normalized forms.
func (s questionSet) evaluate(questionID, rawAnswer string) (bool, error) {
	expected, ok := s.expectedAnswer(questionID)
	if !ok {
		return false, domain.ErrUnknownQuestion
	}
	return Matches(expected, rawAnswer), nil
}

// Matches reports whether rawAnswer equals expected after normalization.
func Matches(expected, rawAnswer string) bool {
	return Normalize(rawAnswer) == Normalize(expected)
}
