package tools

import (
	"context"

	"github.com/richard-senior/knockouts/internal/logger"
	"github.com/richard-senior/knockouts/pkg/protocol"
)

// PredictMatchTool returns the predict_match tool definition
func PredictMatchTool() protocol.Tool {
	return protocol.Tool{
		Name: "predict_match",
		Description: `
		Predicts a match between two teams known to the loaded model.
		Returns the scoreline matrix, match odds, goal markets and the most likely score.
		Knockout matches (extra_time, the default) report the result after extra time.
		`,
		InputSchema: protocol.InputSchema{
			Type: "object",
			Properties: map[string]protocol.ToolProperty{
				"home":       {Type: "string", Description: "The home (or first named) team"},
				"away":       {Type: "string", Description: "The away (or second named) team"},
				"neutral":    {Type: "boolean", Description: "Played at a neutral venue, no home advantage. Defaults to true"},
				"extra_time": {Type: "boolean", Description: "Knockout match, draws go to extra time. Defaults to true"},
				"max_goals":  {Type: "integer", Description: "Largest goal count per side. Defaults to the server configuration"},
			},
			Required: []string{"home", "away"},
		},
	}
}

// HandlePredictMatch handles the predict_match tool invocation
func (b *Toolbox) HandlePredictMatch(params any) (any, error) {
	logger.Info("Handling predict_match tool invocation")

	m, err := paramsMap(params)
	if err != nil {
		return nil, err
	}
	home, err := requiredString(m, "home")
	if err != nil {
		return nil, err
	}
	away, err := requiredString(m, "away")
	if err != nil {
		return nil, err
	}
	neutral, err := optionalBool(m, "neutral", true)
	if err != nil {
		return nil, err
	}
	extraTime, err := optionalBool(m, "extra_time", true)
	if err != nil {
		return nil, err
	}
	maxGoals, err := optionalInt(m, "max_goals")
	if err != nil {
		return nil, err
	}

	adapter, err := b.Adapter(context.Background())
	if err != nil {
		return nil, err
	}
	req, err := adapter.Match(home, away, neutral)
	if err != nil {
		return nil, err
	}
	req.ExtraTime = extraTime
	req.MaxGoals = maxGoals

	prediction, err := b.predictor.Predict(req)
	if err != nil {
		return nil, err
	}
	logger.Info("Predicted", home, "v", away, prediction.Odds)
	return prediction, nil
}
