package memory

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
	"osint-challenge-service/internal/domain"
)

type catalogFile struct {
	Challenges []domain.Challenge `yaml:"challenges"`
}

// LoadCatalogFile reads a YAML challenge catalog into a StaticChallengeLoader.
func LoadCatalogFile(path string) (*StaticChallengeLoader, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes and validates a YAML catalog.
func ParseCatalog(data []byte) (*StaticChallengeLoader, error) {
	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}

	challenges := make(map[string]domain.Challenge, len(file.Challenges))
	for _, challenge := range file.Challenges {
		if challenge.ID == "" {
			return nil, fmt.Errorf("catalog: challenge %q has no id", challenge.Title)
		}
		if _, dup := challenges[challenge.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate challenge %q", challenge.ID)
		}
		if !challenge.Difficulty.Valid() {
			return nil, fmt.Errorf("catalog: challenge %q has difficulty %q", challenge.ID, challenge.Difficulty)
		}

		questionIDs := make(map[string]struct{}, len(challenge.Questions))
		orders := make(map[int]string, len(challenge.Questions))
		for i := range challenge.Questions {
			q := &challenge.Questions[i]
			q.ChallengeID = challenge.ID
			if _, dup := questionIDs[q.ID]; dup || q.ID == "" {
				return nil, fmt.Errorf("catalog: challenge %q has missing or duplicate question id %q", challenge.ID, q.ID)
			}
			if other, dup := orders[q.OrderIndex]; dup {
				return nil, fmt.Errorf("catalog: questions %q and %q of challenge %q share order index %d", other, q.ID, challenge.ID, q.OrderIndex)
			}
			questionIDs[q.ID] = struct{}{}
			orders[q.OrderIndex] = q.ID
		}
		challenges[challenge.ID] = challenge
	}
	return NewStaticChallengeLoader(challenges), nil
}
