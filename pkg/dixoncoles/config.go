package dixoncoles

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RhoPolicy decides what happens to a correlation coefficient that would make
// one of the corrected scorelines negative
type RhoPolicy string

const (
	// RhoPolicyPreserve passes rho through untouched. Negative cells survive
	// into the matrix so they can be detected downstream.
	RhoPolicyPreserve RhoPolicy = "preserve"
	// RhoPolicyValidate rejects such a rho with an InvalidCorrelationError
	RhoPolicyValidate RhoPolicy = "validate"
)

// OverflowPolicy decides what extra time does with contributions that land
// beyond MaxGoals
type OverflowPolicy string

const (
	// OverflowDrop discards them. Matches the published numbers exactly.
	OverflowDrop OverflowPolicy = "drop"
	// OverflowBoundary folds them into the last row/column, which then reads
	// as "MaxGoals or more"
	OverflowBoundary OverflowPolicy = "boundary"
)

// Config contains every tunable that influences a prediction.
// It is passed explicitly; the engine keeps no package-level configuration.
type Config struct {
	// === MATRIX ===
	MaxGoals        int `yaml:"max_goals"`          // Largest goal count per side in the matrix (default: 4)
	MinSafeMaxGoals int `yaml:"min_safe_max_goals"` // Below this a warning is logged (default: 4)

	// === EXTRA TIME ===
	ExtraTimeFactor float64        `yaml:"extra_time_factor"` // Rate scaling for 30 minutes of extra time (default: 0.33)
	Overflow        OverflowPolicy `yaml:"overflow"`          // Out-of-bounds extra time mass (default: drop)

	// === CORRELATION ===
	RhoPolicy RhoPolicy `yaml:"rho_policy"` // default: preserve

	// === WARNINGS ===
	TruncationThreshold float64 `yaml:"truncation_threshold"` // Matrix mass below this raises a TruncationWarning (default: 0.999)

	// === OVER/UNDER GOALS THRESHOLDS ===
	Over1p5GoalsThreshold float64 `yaml:"over_1p5_goals_threshold"` // default: 1.5
	Over2p5GoalsThreshold float64 `yaml:"over_2p5_goals_threshold"` // default: 2.5
}

// DefaultConfig returns the configuration the published predictions were made with
func DefaultConfig() *Config {
	return &Config{
		MaxGoals:        4,
		MinSafeMaxGoals: 4,

		ExtraTimeFactor: 0.33,
		Overflow:        OverflowDrop,

		RhoPolicy: RhoPolicyPreserve,

		TruncationThreshold: 0.999,

		Over1p5GoalsThreshold: 1.5,
		Over2p5GoalsThreshold: 2.5,
	}
}

// LoadConfig reads a YAML file over the defaults. Keys missing from the file
// keep their default value.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config %s: %w", path, err)
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := ValidateConfig(config); err != nil {
		return nil, err
	}
	return config, nil
}

// === CONFIGURATION VALIDATION ===

// ValidateConfig ensures all configuration values are usable
func ValidateConfig(config *Config) error {
	if config == nil {
		return fmt.Errorf("config must not be nil")
	}
	if config.MaxGoals < 0 {
		return fmt.Errorf("MaxGoals: %w, got: %d", ErrInvalidMaxGoals, config.MaxGoals)
	}
	if config.ExtraTimeFactor <= 0 || config.ExtraTimeFactor > 1 {
		return fmt.Errorf("ExtraTimeFactor must be in (0, 1], got: %f", config.ExtraTimeFactor)
	}
	if config.TruncationThreshold < 0 || config.TruncationThreshold > 1 {
		return fmt.Errorf("TruncationThreshold must be between 0.0 and 1.0, got: %f", config.TruncationThreshold)
	}
	switch config.RhoPolicy {
	case RhoPolicyPreserve, RhoPolicyValidate:
	default:
		return fmt.Errorf("unknown RhoPolicy: %q", config.RhoPolicy)
	}
	switch config.Overflow {
	case OverflowDrop, OverflowBoundary:
	default:
		return fmt.Errorf("unknown Overflow policy: %q", config.Overflow)
	}
	return nil
}

// ValidateRho checks that rho keeps the four corrected scorelines
// non-negative for the given rates
func ValidateRho(muHome, muAway, rho float64) error {
	for _, s := range []scoreline{nilNil, nilOne, oneNil, oneOne} {
		tau := Tau(s.home, s.away, muHome, muAway, rho)
		if tau < 0 {
			return &InvalidCorrelationError{Rho: rho, HomeGoals: s.home, AwayGoals: s.away, Tau: tau}
		}
	}
	return nil
}
