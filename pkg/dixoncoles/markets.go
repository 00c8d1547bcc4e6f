package dixoncoles

// Outcome probabilities derived from a ScoreMatrix.
// All of them inherit the matrix truncation, so e.g. Home+Draw+Away < 1.

// MatchOdds holds home win / draw / away win probabilities
type MatchOdds struct {
	Home float64 `json:"home"`
	Draw float64 `json:"draw"`
	Away float64 `json:"away"`
}

// MatchOdds sums the lower triangle, diagonal and upper triangle
func (m *ScoreMatrix) MatchOdds() MatchOdds {
	var odds MatchOdds
	for homeGoals, row := range m.Cells {
		for awayGoals, prob := range row {
			switch {
			case homeGoals > awayGoals:
				odds.Home += prob
			case homeGoals == awayGoals:
				odds.Draw += prob
			default:
				odds.Away += prob
			}
		}
	}
	return odds
}

// OverUnder returns probability of total goals over/under a threshold
func (m *ScoreMatrix) OverUnder(threshold float64) (over, under float64) {
	for homeGoals, row := range m.Cells {
		for awayGoals, prob := range row {
			if float64(homeGoals+awayGoals) > threshold {
				over += prob
			} else {
				under += prob
			}
		}
	}
	return over, under
}

// BothTeamsToScore returns probability of both teams scoring vs not
func (m *ScoreMatrix) BothTeamsToScore() (both, notBoth float64) {
	for homeGoals, row := range m.Cells {
		for awayGoals, prob := range row {
			if homeGoals > 0 && awayGoals > 0 {
				both += prob
			} else {
				notBoth += prob
			}
		}
	}
	return both, notBoth
}

// ExpectedGoals returns expected home and away goals over the truncated support
func (m *ScoreMatrix) ExpectedGoals() (homeExpected, awayExpected float64) {
	for homeGoals, row := range m.Cells {
		for awayGoals, prob := range row {
			homeExpected += float64(homeGoals) * prob
			awayExpected += float64(awayGoals) * prob
		}
	}
	return homeExpected, awayExpected
}

// MostLikely returns the single most probable scoreline.
// Ties go to the first in row-major order.
func (m *ScoreMatrix) MostLikely() (homeGoals, awayGoals int, prob float64) {
	prob = -1
	for h, row := range m.Cells {
		for a, p := range row {
			if p > prob {
				homeGoals, awayGoals, prob = h, a, p
			}
		}
	}
	return homeGoals, awayGoals, prob
}
