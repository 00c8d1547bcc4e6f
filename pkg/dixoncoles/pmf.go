package dixoncoles

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// scoreline is an ordered (home, away) pair of goal counts
type scoreline struct {
	home int
	away int
}

// The four low scorelines the Dixon-Coles correction touches
var (
	nilNil = scoreline{0, 0}
	nilOne = scoreline{0, 1}
	oneNil = scoreline{1, 0}
	oneOne = scoreline{1, 1}
)

// Tau returns the Dixon-Coles correction factor for a scoreline.
// Only 0-0, 0-1, 1-0 and 1-1 are adjusted, every other score gets 1.
func Tau(homeGoals, awayGoals int, muHome, muAway, rho float64) float64 {
	switch (scoreline{homeGoals, awayGoals}) {
	case nilNil:
		return 1 - rho*muHome*muAway
	case nilOne:
		return 1 + rho*muHome
	case oneNil:
		return 1 + rho*muAway
	case oneOne:
		return 1 - rho
	default:
		return 1
	}
}

// PoissonPMF calculates P(X = k) where X ~ Poisson(mu).
// A non-positive mu is the degenerate distribution at 0.
func PoissonPMF(k int, mu float64) float64 {
	if k < 0 {
		return 0
	}
	if mu <= 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	return distuv.Poisson{Lambda: mu}.Prob(float64(k))
}

// PMF is the Dixon-Coles probability of the exact scoreline homeGoals-awayGoals.
//
// The result is not clamped: a correlation large enough to make tau negative
// produces a negative "probability". Use CheckedPMF or a Config with
// RhoPolicyValidate when the inputs are untrusted.
func PMF(homeGoals, awayGoals int, muHome, muAway, rho float64) float64 {
	return Tau(homeGoals, awayGoals, muHome, muAway, rho) *
		PoissonPMF(homeGoals, muHome) *
		PoissonPMF(awayGoals, muAway)
}

// CheckedPMF is PMF with its preconditions enforced
func CheckedPMF(homeGoals, awayGoals int, muHome, muAway, rho float64) (float64, error) {
	if homeGoals < 0 || awayGoals < 0 {
		return 0, &InvalidScorelineError{HomeGoals: homeGoals, AwayGoals: awayGoals}
	}
	if err := ValidateRates(muHome, muAway); err != nil {
		return 0, err
	}
	return PMF(homeGoals, awayGoals, muHome, muAway, rho), nil
}

// ValidateRates fails fast on rates that would make the PMF meaningless.
// The product is checked too, the 0-0 correction multiplies the two rates.
func ValidateRates(muHome, muAway float64) error {
	if !validRate(muHome) {
		return &InvalidRateError{Side: "home", Rate: muHome}
	}
	if !validRate(muAway) {
		return &InvalidRateError{Side: "away", Rate: muAway}
	}
	if product := muHome * muAway; math.IsInf(product, 0) {
		return &InvalidRateError{Side: "home x away", Rate: product}
	}
	return nil
}

func validRate(mu float64) bool {
	return mu > 0 && !math.IsInf(mu, 0) && !math.IsNaN(mu)
}
