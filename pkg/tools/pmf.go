package tools

import (
	"github.com/richard-senior/knockouts/internal/logger"
	"github.com/richard-senior/knockouts/pkg/dixoncoles"
	"github.com/richard-senior/knockouts/pkg/protocol"
)

// PMFTool returns the dixoncoles_pmf tool definition
func PMFTool() protocol.Tool {
	return protocol.Tool{
		Name:        "dixoncoles_pmf",
		Description: "The Dixon-Coles probability of a single exact scoreline given both sides' expected goals",
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"home_goals": {Type: "integer", Description: "Goals scored by the home side"},
				"away_goals": {Type: "integer", Description: "Goals scored by the away side"},
				"home_rate":  {Type: "number", Description: "Expected goals of the home side, must be positive"},
				"away_rate":  {Type: "number", Description: "Expected goals of the away side, must be positive"},
				"rho":        {Type: "number", Description: "Low score correlation, usually slightly negative. Defaults to 0"},
			},
			Required: []string{"home_goals", "away_goals", "home_rate", "away_rate"},
		},
	}
}

// HandlePMF handles the dixoncoles_pmf tool invocation
func HandlePMF(params any) (any, error) {
	logger.Info("Handling dixoncoles_pmf tool invocation")

	m, err := paramsMap(params)
	if err != nil {
		return nil, err
	}
	homeGoals, err := requiredInt(m, "home_goals")
	if err != nil {
		return nil, err
	}
	awayGoals, err := requiredInt(m, "away_goals")
	if err != nil {
		return nil, err
	}
	homeRate, err := requiredNumber(m, "home_rate")
	if err != nil {
		return nil, err
	}
	awayRate, err := requiredNumber(m, "away_rate")
	if err != nil {
		return nil, err
	}
	rho, err := optionalNumber(m, "rho", 0)
	if err != nil {
		return nil, err
	}

	prob, err := dixoncoles.CheckedPMF(homeGoals, awayGoals, homeRate, awayRate, rho)
	if err != nil {
		return nil, err
	}

	return map[string]any{
		"home_goals":  homeGoals,
		"away_goals":  awayGoals,
		"probability": prob,
		"tau":         dixoncoles.Tau(homeGoals, awayGoals, homeRate, awayRate, rho),
	}, nil
}
