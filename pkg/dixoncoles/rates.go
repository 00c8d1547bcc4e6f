package dixoncoles

// TeamStrength is a team's multiplicative contribution to its own (attack)
// and its opponent's (defence) expected goals
type TeamStrength struct {
	Attack  float64 `json:"attack"`
	Defence float64 `json:"defence"`
}

// MatchContext carries the match-wide parameters
type MatchContext struct {
	HomeAdvantage float64 `json:"homeAdvantage"` // Multiplier on the home rate, ignored at a neutral venue
	Rho           float64 `json:"rho"`           // Dixon-Coles correlation
	Neutral       bool    `json:"neutral"`
}

// ScoringRates are the expected goals of each side over 90 minutes
type ScoringRates struct {
	Home float64 `json:"home"`
	Away float64 `json:"away"`
}

// Rates combines two team strengths into expected goals.
// Home = attack(home) * defence(away) * home advantage (1 when neutral)
// Away = attack(away) * defence(home)
func Rates(home, away TeamStrength, ctx MatchContext) ScoringRates {
	hfa := 1.0
	if !ctx.Neutral {
		hfa = ctx.HomeAdvantage
	}
	return ScoringRates{
		Home: home.Attack * away.Defence * hfa,
		Away: away.Attack * home.Defence,
	}
}

// Scaled returns the rates multiplied by factor
func (r ScoringRates) Scaled(factor float64) ScoringRates {
	return ScoringRates{Home: r.Home * factor, Away: r.Away * factor}
}
