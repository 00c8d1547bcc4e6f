package posterior

import (
	"math"

	"github.com/richard-senior/knockouts/pkg/dixoncoles"
	"gonum.org/v1/gonum/stat"
)

// Adapter reduces posterior samples to the point estimates the engine needs.
// Log-space parameters are averaged after exponentiating, so the estimate is
// the posterior mean of the multiplier rather than exp of the mean.
type Adapter struct {
	samples *Samples
}

// NewAdapter validates the samples and wraps them
func NewAdapter(samples *Samples) (*Adapter, error) {
	if samples == nil {
		return nil, ErrMalformedSamples
	}
	if err := samples.Validate(); err != nil {
		return nil, err
	}
	return &Adapter{samples: samples}, nil
}

// Samples returns the wrapped samples
func (a *Adapter) Samples() *Samples {
	return a.samples
}

// Strength returns a team's attack and defence rates
func (a *Adapter) Strength(team string) (dixoncoles.TeamStrength, error) {
	idx, ok := a.samples.Teams[team]
	if !ok {
		return dixoncoles.TeamStrength{}, &UnknownTeamError{Team: team}
	}
	return dixoncoles.TeamStrength{
		Attack:  meanExpColumn(a.samples.Attack, idx),
		Defence: meanExpColumn(a.samples.Defence, idx),
	}, nil
}

// HomeAdvantage returns the home advantage multiplier
func (a *Adapter) HomeAdvantage() float64 {
	return meanExp(a.samples.HomeAdvantage)
}

// Correlation returns the Dixon-Coles rho
func (a *Adapter) Correlation() float64 {
	return stat.Mean(a.samples.Correlation, nil)
}

// TeamRating pairs a team name with its strength
type TeamRating struct {
	Team string `json:"team"`
	dixoncoles.TeamStrength
}

// Strengths returns every team's rating in name order
func (a *Adapter) Strengths() []TeamRating {
	names := a.samples.TeamNames()
	ratings := make([]TeamRating, 0, len(names))
	for _, name := range names {
		strength, _ := a.Strength(name)
		ratings = append(ratings, TeamRating{Team: name, TeamStrength: strength})
	}
	return ratings
}

// Match builds a prediction request for home v away. Both teams must be
// in the index.
func (a *Adapter) Match(home, away string, neutral bool) (dixoncoles.PredictRequest, error) {
	homeStrength, err := a.Strength(home)
	if err != nil {
		return dixoncoles.PredictRequest{}, err
	}
	awayStrength, err := a.Strength(away)
	if err != nil {
		return dixoncoles.PredictRequest{}, err
	}
	return dixoncoles.PredictRequest{
		HomeTeam: home,
		AwayTeam: away,
		Home:     homeStrength,
		Away:     awayStrength,
		Context: dixoncoles.MatchContext{
			HomeAdvantage: a.HomeAdvantage(),
			Rho:           a.Correlation(),
			Neutral:       neutral,
		},
	}, nil
}

// meanExpColumn is the mean of exp over one team's column
func meanExpColumn(table [][]float64, column int) float64 {
	values := make([]float64, len(table))
	for i, row := range table {
		values[i] = row[column]
	}
	return meanExp(values)
}

func meanExp(values []float64) float64 {
	exps := make([]float64, len(values))
	for i, v := range values {
		exps[i] = math.Exp(v)
	}
	return stat.Mean(exps, nil)
}
