package dixoncoles

import (
	"errors"
	"fmt"
)

// Sentinel errors, match with errors.Is
var (
	ErrInvalidRate        = errors.New("invalid scoring rate")
	ErrInvalidScoreline   = errors.New("invalid scoreline")
	ErrInvalidMaxGoals    = errors.New("max goals must be >= 0")
	ErrInvalidCorrelation = errors.New("correlation produces negative probabilities")
	ErrTruncation         = errors.New("score matrix truncates probability mass")
)

// InvalidRateError is returned when a non-positive or non-finite scoring rate
// reaches the engine
type InvalidRateError struct {
	Side string
	Rate float64
}

func (e *InvalidRateError) Error() string {
	return fmt.Sprintf("invalid %s scoring rate %v: must be a positive finite number", e.Side, e.Rate)
}

func (e *InvalidRateError) Unwrap() error {
	return ErrInvalidRate
}

// InvalidScorelineError is returned for negative goal counts
type InvalidScorelineError struct {
	HomeGoals int
	AwayGoals int
}

func (e *InvalidScorelineError) Error() string {
	return fmt.Sprintf("invalid scoreline %d-%d: goal counts must be >= 0", e.HomeGoals, e.AwayGoals)
}

func (e *InvalidScorelineError) Unwrap() error {
	return ErrInvalidScoreline
}

// InvalidCorrelationError reports the first corrected scoreline whose tau
// factor goes negative for the given rates
type InvalidCorrelationError struct {
	Rho       float64
	HomeGoals int
	AwayGoals int
	Tau       float64
}

func (e *InvalidCorrelationError) Error() string {
	return fmt.Sprintf("rho %v gives tau %.4f at %d-%d", e.Rho, e.Tau, e.HomeGoals, e.AwayGoals)
}

func (e *InvalidCorrelationError) Unwrap() error {
	return ErrInvalidCorrelation
}

// TruncationWarning is advisory. It is attached to a Prediction when the
// matrix holds less mass than the configured threshold, which means
// MaxGoals is too small for the rates involved.
type TruncationWarning struct {
	MaxGoals  int     `json:"maxGoals"`
	Total     float64 `json:"total"`
	Threshold float64 `json:"threshold"`
}

func (w *TruncationWarning) Error() string {
	return fmt.Sprintf("score matrix up to %d goals holds %.4f of the probability mass (threshold %.4f)",
		w.MaxGoals, w.Total, w.Threshold)
}

func (w *TruncationWarning) Unwrap() error {
	return ErrTruncation
}
