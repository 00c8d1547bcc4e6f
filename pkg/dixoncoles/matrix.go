package dixoncoles

import (
	"fmt"
)

// ScoreMatrix holds the probability of every scoreline up to MaxGoals a side.
// Cells[h][a] is the probability of the home side scoring h and the away side a.
//
// The support of the joint Poisson is infinite, so the matrix is a truncation
// and its total is below 1. It is never renormalised.
type ScoreMatrix struct {
	MaxGoals int         `json:"maxGoals"`
	Cells    [][]float64 `json:"cells"`
}

// NewScoreMatrix allocates an all-zero matrix
func NewScoreMatrix(maxGoals int) *ScoreMatrix {
	cells := make([][]float64, maxGoals+1)
	for i := range cells {
		cells[i] = make([]float64, maxGoals+1)
	}
	return &ScoreMatrix{MaxGoals: maxGoals, Cells: cells}
}

// BuildScoreMatrix fills a (maxGoals+1)x(maxGoals+1) matrix with Dixon-Coles
// scoreline probabilities for the given rates
func BuildScoreMatrix(muHome, muAway, rho float64, maxGoals int) (*ScoreMatrix, error) {
	if maxGoals < 0 {
		return nil, fmt.Errorf("%w, got: %d", ErrInvalidMaxGoals, maxGoals)
	}
	if err := ValidateRates(muHome, muAway); err != nil {
		return nil, err
	}

	m := NewScoreMatrix(maxGoals)
	for homeGoals := 0; homeGoals <= maxGoals; homeGoals++ {
		for awayGoals := 0; awayGoals <= maxGoals; awayGoals++ {
			m.Cells[homeGoals][awayGoals] = PMF(homeGoals, awayGoals, muHome, muAway, rho)
		}
	}
	return m, nil
}

// At returns the probability of a scoreline, 0 outside the matrix
func (m *ScoreMatrix) At(homeGoals, awayGoals int) float64 {
	if homeGoals < 0 || awayGoals < 0 || homeGoals > m.MaxGoals || awayGoals > m.MaxGoals {
		return 0
	}
	return m.Cells[homeGoals][awayGoals]
}

// Clone returns a deep copy
func (m *ScoreMatrix) Clone() *ScoreMatrix {
	c := NewScoreMatrix(m.MaxGoals)
	for i := range m.Cells {
		copy(c.Cells[i], m.Cells[i])
	}
	return c
}

// Total returns the sum of all cells.
// Anything short of 1 is mass lost to truncation.
func (m *ScoreMatrix) Total() float64 {
	total := 0.0
	for _, row := range m.Cells {
		for _, p := range row {
			total += p
		}
	}
	return total
}

// HasNegative reports whether any cell is below zero, which only happens
// with an out-of-range correlation
func (m *ScoreMatrix) HasNegative() bool {
	for _, row := range m.Cells {
		for _, p := range row {
			if p < 0 {
				return true
			}
		}
	}
	return false
}

// CheckTruncation returns a TruncationWarning when the matrix total is
// below threshold, nil otherwise
func (m *ScoreMatrix) CheckTruncation(threshold float64) *TruncationWarning {
	total := m.Total()
	if total >= threshold {
		return nil
	}
	return &TruncationWarning{MaxGoals: m.MaxGoals, Total: total, Threshold: threshold}
}

// Lines renders one "h-a: p%" line per scoreline, home goals outermost
func (m *ScoreMatrix) Lines() []string {
	lines := make([]string, 0, (m.MaxGoals+1)*(m.MaxGoals+1))
	for h := 0; h <= m.MaxGoals; h++ {
		for a := 0; a <= m.MaxGoals; a++ {
			lines = append(lines, fmt.Sprintf("%d-%d: %.1f%%", h, a, 100.0*m.Cells[h][a]))
		}
	}
	return lines
}
