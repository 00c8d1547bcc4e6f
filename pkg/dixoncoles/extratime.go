package dixoncoles

import (
	"fmt"
)

// DefaultExtraTimeFactor scales 90 minute rates down to 30 minutes of extra time
const DefaultExtraTimeFactor = 0.33

// ExtraTimeOptions tunes RedistributeExtraTimeWith
type ExtraTimeOptions struct {
	Factor   float64        // Rate scaling for extra time, 0 means DefaultExtraTimeFactor
	Overflow OverflowPolicy // "" means OverflowDrop
}

// ExtraTimeResult is the combined regulation + extra time distribution
type ExtraTimeResult struct {
	Matrix *ScoreMatrix `json:"matrix"`
	// Extra is the extra time scoreline matrix on its own
	Extra *ScoreMatrix `json:"extra"`
	// DrawMass is the regulation draw probability sent to extra time
	DrawMass float64 `json:"drawMass"`
	// Dropped is the redistributed mass that fell outside MaxGoals and was
	// discarded. Always 0 with OverflowBoundary.
	Dropped float64 `json:"dropped"`
}

// RedistributeExtraTime turns a regulation time matrix into a "full time or
// after extra time" matrix, extra time being played only after a draw.
//
// Every draw cell g-g is emptied and its probability spread over
// (g+h)-(g+a) using an extra time Dixon-Coles matrix built from rates scaled
// by DefaultExtraTimeFactor and the same rho. Contributions beyond maxGoals
// are dropped, so the result holds slightly less mass than the input.
// The regulation matrix is not modified.
func RedistributeExtraTime(regulation *ScoreMatrix, muHome, muAway, rho float64, maxGoals int) (*ScoreMatrix, error) {
	if regulation != nil && regulation.MaxGoals != maxGoals {
		return nil, fmt.Errorf("regulation matrix has max goals %d, expected %d", regulation.MaxGoals, maxGoals)
	}
	result, err := RedistributeExtraTimeWith(regulation, muHome, muAway, rho, ExtraTimeOptions{})
	if err != nil {
		return nil, err
	}
	return result.Matrix, nil
}

// RedistributeExtraTimeWith is RedistributeExtraTime with a configurable
// factor and overflow policy. MaxGoals is taken from the regulation matrix.
func RedistributeExtraTimeWith(regulation *ScoreMatrix, muHome, muAway, rho float64, opts ExtraTimeOptions) (*ExtraTimeResult, error) {
	if regulation == nil {
		return nil, fmt.Errorf("regulation matrix must not be nil")
	}
	factor := opts.Factor
	if factor == 0 {
		factor = DefaultExtraTimeFactor
	}
	overflow := opts.Overflow
	if overflow == "" {
		overflow = OverflowDrop
	}
	if factor < 0 {
		return nil, fmt.Errorf("extra time factor must be positive, got: %f", factor)
	}

	maxGoals := regulation.MaxGoals
	extra, err := BuildScoreMatrix(factor*muHome, factor*muAway, rho, maxGoals)
	if err != nil {
		return nil, fmt.Errorf("failed to build extra time matrix: %w", err)
	}

	// Draws are no longer terminal, the match goes on
	combined := regulation.Clone()
	base := make([]float64, maxGoals+1)
	drawMass := 0.0
	for g := 0; g <= maxGoals; g++ {
		base[g] = combined.Cells[g][g]
		drawMass += base[g]
		combined.Cells[g][g] = 0
	}

	dropped := 0.0
	for g := 0; g <= maxGoals; g++ {
		for h := 0; h <= maxGoals; h++ {
			for a := 0; a <= maxGoals; a++ {
				contribution := base[g] * extra.Cells[h][a]
				home, away := g+h, g+a
				if home <= maxGoals && away <= maxGoals {
					combined.Cells[home][away] += contribution
					continue
				}
				if overflow == OverflowBoundary {
					combined.Cells[min(home, maxGoals)][min(away, maxGoals)] += contribution
					continue
				}
				dropped += contribution
			}
		}
	}

	return &ExtraTimeResult{
		Matrix:   combined,
		Extra:    extra,
		DrawMass: drawMass,
		Dropped:  dropped,
	}, nil
}
