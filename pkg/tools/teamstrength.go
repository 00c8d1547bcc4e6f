package tools

import (
	"context"

	"github.com/richard-senior/knockouts/internal/logger"
	"github.com/richard-senior/knockouts/pkg/posterior"
	"github.com/richard-senior/knockouts/pkg/protocol"
)

// TeamStrengthTool returns the team_strength tool definition
func TeamStrengthTool() protocol.Tool {
	return protocol.Tool{
		Name:        "team_strength",
		Description: "Attack and defence multipliers of one team, or of every team when none is named",
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"team": {Type: "string", Description: "Team name. Omit to list all teams"},
			},
			Required: []string{},
		},
	}
}

// HandleTeamStrength handles the team_strength tool invocation
func (b *Toolbox) HandleTeamStrength(params any) (any, error) {
	logger.Info("Handling team_strength tool invocation")

	m, err := paramsMap(params)
	if err != nil {
		return nil, err
	}
	adapter, err := b.Adapter(context.Background())
	if err != nil {
		return nil, err
	}

	team, _ := m["team"].(string)
	if team == "" {
		return map[string]any{
			"teams":         adapter.Strengths(),
			"homeAdvantage": adapter.HomeAdvantage(),
			"rho":           adapter.Correlation(),
		}, nil
	}

	strength, err := adapter.Strength(team)
	if err != nil {
		return nil, err
	}
	return posterior.TeamRating{Team: team, TeamStrength: strength}, nil
}
