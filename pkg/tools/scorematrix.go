package tools

import (
	"github.com/richard-senior/knockouts/internal/logger"
	"github.com/richard-senior/knockouts/pkg/dixoncoles"
	"github.com/richard-senior/knockouts/pkg/protocol"
)

// ScoreMatrixTool returns the score_matrix tool definition
func ScoreMatrixTool() protocol.Tool {
	return protocol.Tool{
		Name: "score_matrix",
		Description: `
		Builds the matrix of scoreline probabilities for two expected goal rates.
		With extra_time set, draws are played on for 30 minutes and the result is the
		"after extra time" distribution of a knockout match. Penalties are not modelled.
		`,
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"home_rate":  {Type: "number", Description: "Expected goals of the home side over 90 minutes"},
				"away_rate":  {Type: "number", Description: "Expected goals of the away side over 90 minutes"},
				"rho":        {Type: "number", Description: "Low score correlation. Defaults to 0"},
				"max_goals":  {Type: "integer", Description: "Largest goal count per side. Defaults to the server configuration"},
				"extra_time": {Type: "boolean", Description: "Send regulation draws to extra time. Defaults to false"},
			},
			Required: []string{"home_rate", "away_rate"},
		},
	}
}

// HandleScoreMatrix handles the score_matrix tool invocation
func (b *Toolbox) HandleScoreMatrix(params any) (any, error) {
	logger.Info("Handling score_matrix tool invocation")

	m, err := paramsMap(params)
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
	maxGoals, err := optionalInt(m, "max_goals")
	if err != nil {
		return nil, err
	}
	extraTime, err := optionalBool(m, "extra_time", false)
	if err != nil {
		return nil, err
	}

	// unit defences at a neutral venue make the rates pass straight through
	prediction, err := b.predictor.Predict(dixoncoles.PredictRequest{
		Home:      dixoncoles.TeamStrength{Attack: homeRate, Defence: 1},
		Away:      dixoncoles.TeamStrength{Attack: awayRate, Defence: 1},
		Context:   dixoncoles.MatchContext{Rho: rho, Neutral: true},
		ExtraTime: extraTime,
		MaxGoals:  maxGoals,
	})
	if err != nil {
		return nil, err
	}

	result := map[string]any{
		"maxGoals": prediction.Final.MaxGoals,
		"cells":    prediction.Final.Cells,
		"lines":    prediction.Final.Lines(),
		"total":    prediction.Final.Total(),
	}
	if prediction.ExtraTime != nil {
		result["drawMass"] = prediction.ExtraTime.DrawMass
		result["dropped"] = prediction.ExtraTime.Dropped
	}
	if len(prediction.Warnings) > 0 {
		result["warnings"] = warningMessages(prediction.Warnings)
	}
	if prediction.HasNegative {
		result["hasNegative"] = true
	}
	return result, nil
}

func warningMessages(warnings []*dixoncoles.TruncationWarning) []string {
	messages := make([]string, 0, len(warnings))
	for _, w := range warnings {
		messages = append(messages, w.Error())
	}
	return messages
}
