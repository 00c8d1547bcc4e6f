package dixoncoles

import (
	"context"
	"fmt"

	"github.com/richard-senior/knockouts/internal/logger"
	"golang.org/x/sync/errgroup"
)

// PredictRequest describes one match to predict
type PredictRequest struct {
	HomeTeam  string       `json:"homeTeam,omitempty"`
	AwayTeam  string       `json:"awayTeam,omitempty"`
	Home      TeamStrength `json:"home"`
	Away      TeamStrength `json:"away"`
	Context   MatchContext `json:"context"`
	ExtraTime bool         `json:"extraTime"`          // Knockout match, draws go to extra time
	MaxGoals  *int         `json:"maxGoals,omitempty"` // nil uses Config.MaxGoals
}

// Prediction is the full result for one match
type Prediction struct {
	HomeTeam string       `json:"homeTeam,omitempty"`
	AwayTeam string       `json:"awayTeam,omitempty"`
	Rates    ScoringRates `json:"rates"`

	// Regulation is the 90 minute matrix, Final the matrix that is reported
	// (equal to Regulation unless extra time was requested)
	Regulation *ScoreMatrix     `json:"regulation"`
	Final      *ScoreMatrix     `json:"final"`
	ExtraTime  *ExtraTimeResult `json:"extraTime,omitempty"`

	Odds              MatchOdds `json:"odds"`
	Over1p5Goals      float64   `json:"over1p5Goals"`
	Over2p5Goals      float64   `json:"over2p5Goals"`
	BothTeamsToScore  float64   `json:"bothTeamsToScore"`
	HomeExpectedGoals float64   `json:"homeExpectedGoals"`
	AwayExpectedGoals float64   `json:"awayExpectedGoals"`
	MostLikelyHome    int       `json:"mostLikelyHome"`
	MostLikelyAway    int       `json:"mostLikelyAway"`
	MostLikelyProb    float64   `json:"mostLikelyProb"`

	HasNegative bool                 `json:"hasNegative"`
	Warnings    []*TruncationWarning `json:"warnings,omitempty"`
}

// Predictor runs the rates -> matrix -> extra time pipeline with a fixed Config
type Predictor struct {
	config *Config
}

// NewPredictor validates the config and returns a Predictor.
// A nil config means DefaultConfig.
func NewPredictor(config *Config) (*Predictor, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}
	return &Predictor{config: config}, nil
}

// Config returns the predictor's configuration
func (p *Predictor) Config() *Config {
	return p.config
}

// Predict calculates the scoreline distribution for a single match
func (p *Predictor) Predict(req PredictRequest) (*Prediction, error) {
	maxGoals := p.config.MaxGoals
	if req.MaxGoals != nil {
		maxGoals = *req.MaxGoals
	}
	if maxGoals < 0 {
		return nil, fmt.Errorf("%w, got: %d", ErrInvalidMaxGoals, maxGoals)
	}
	if maxGoals < p.config.MinSafeMaxGoals {
		logger.Warn("Max goals is small enough to lose probability mass:", maxGoals)
	}

	rates := Rates(req.Home, req.Away, req.Context)
	rho := req.Context.Rho
	if p.config.RhoPolicy == RhoPolicyValidate {
		if err := ValidateRho(rates.Home, rates.Away, rho); err != nil {
			return nil, err
		}
	}

	regulation, err := BuildScoreMatrix(rates.Home, rates.Away, rho, maxGoals)
	if err != nil {
		return nil, fmt.Errorf("failed to build regulation matrix for %s v %s: %w", req.HomeTeam, req.AwayTeam, err)
	}

	prediction := &Prediction{
		HomeTeam:   req.HomeTeam,
		AwayTeam:   req.AwayTeam,
		Rates:      rates,
		Regulation: regulation,
		Final:      regulation,
	}

	if w := regulation.CheckTruncation(p.config.TruncationThreshold); w != nil {
		logger.Warn("Regulation matrix truncation:", w.Error())
		prediction.Warnings = append(prediction.Warnings, w)
	}

	if req.ExtraTime {
		et, err := RedistributeExtraTimeWith(regulation, rates.Home, rates.Away, rho, ExtraTimeOptions{
			Factor:   p.config.ExtraTimeFactor,
			Overflow: p.config.Overflow,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to add extra time for %s v %s: %w", req.HomeTeam, req.AwayTeam, err)
		}
		prediction.ExtraTime = et
		prediction.Final = et.Matrix
		if et.Dropped > 0 {
			logger.Debug("Extra time mass dropped beyond max goals:", et.Dropped)
		}
	}

	final := prediction.Final
	prediction.Odds = final.MatchOdds()
	prediction.Over1p5Goals, _ = final.OverUnder(p.config.Over1p5GoalsThreshold)
	prediction.Over2p5Goals, _ = final.OverUnder(p.config.Over2p5GoalsThreshold)
	prediction.BothTeamsToScore, _ = final.BothTeamsToScore()
	prediction.HomeExpectedGoals, prediction.AwayExpectedGoals = final.ExpectedGoals()
	prediction.MostLikelyHome, prediction.MostLikelyAway, prediction.MostLikelyProb = final.MostLikely()
	prediction.HasNegative = final.HasNegative()
	if prediction.HasNegative {
		logger.Warn("Score matrix contains negative cells, rho is out of range:", rho)
	}

	return prediction, nil
}

// PredictAll predicts independent matches concurrently.
// Results are in request order; the first error cancels the rest.
func (p *Predictor) PredictAll(ctx context.Context, reqs []PredictRequest) ([]*Prediction, error) {
	results := make([]*Prediction, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	for i := range reqs {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			prediction, err := p.Predict(reqs[i])
			if err != nil {
				return fmt.Errorf("match %d: %w", i, err)
			}
			results[i] = prediction
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
