package posterior

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"sort"
)

// Samples are draws from a fitted model's posterior.
//
// Attack and Defence are indexed [sample][team] and are in log space, as is
// HomeAdvantage. Correlation is on its natural scale. Teams maps a team name
// to its column in Attack and Defence.
type Samples struct {
	Teams         map[string]int `json:"teams"`
	Attack        [][]float64    `json:"attack"`
	Defence       [][]float64    `json:"defence"`
	HomeAdvantage []float64      `json:"home_advantage"`
	Correlation   []float64      `json:"correlation"`
}

// Decode reads a JSON posterior document
func Decode(r io.Reader) (*Samples, error) {
	var s Samples
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("failed to decode posterior samples: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Validate checks the shapes line up: at least one sample of everything,
// rectangular attack/defence tables and team columns in range
func (s *Samples) Validate() error {
	if len(s.Teams) == 0 {
		return fmt.Errorf("%w: no teams", ErrMalformedSamples)
	}
	if len(s.Attack) == 0 || len(s.Defence) == 0 {
		return fmt.Errorf("%w: attack and defence need at least one sample", ErrMalformedSamples)
	}
	if len(s.HomeAdvantage) == 0 || len(s.Correlation) == 0 {
		return fmt.Errorf("%w: home advantage and correlation need at least one sample", ErrMalformedSamples)
	}

	columns := len(s.Attack[0])
	for name, table := range map[string][][]float64{"attack": s.Attack, "defence": s.Defence} {
		for i, row := range table {
			if len(row) != columns {
				return fmt.Errorf("%w: %s sample %d has %d teams, expected %d", ErrMalformedSamples, name, i, len(row), columns)
			}
		}
	}
	for team, idx := range s.Teams {
		if idx < 0 || idx >= columns {
			return fmt.Errorf("%w: team %s has column %d, only %d columns", ErrMalformedSamples, team, idx, columns)
		}
	}
	return nil
}

// TeamNames returns the indexed team names in alphabetical order
func (s *Samples) TeamNames() []string {
	names := make([]string, 0, len(s.Teams))
	for name := range s.Teams {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Fingerprint is a content hash of the samples, stored with cached copies
// to tell a changed refit from an unchanged one
func (s *Samples) Fingerprint() (string, error) {
	// encoding/json writes map keys sorted, so equal samples hash equal
	data, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal samples: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
