// Package processor answers one-shot JSON prediction requests, for use
// outside the MCP server (batch files, pipes, scripts).
package processor

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/richard-senior/knockouts/internal/logger"
	"github.com/richard-senior/knockouts/pkg/cache"
	"github.com/richard-senior/knockouts/pkg/dixoncoles"
	"github.com/richard-senior/knockouts/pkg/posterior"
)

// Fixture is one match in a Request
type Fixture struct {
	Home      string `json:"home"`
	Away      string `json:"away"`
	Neutral   *bool  `json:"neutral,omitempty"`   // default true
	ExtraTime *bool  `json:"extraTime,omitempty"` // default true
	MaxGoals  *int   `json:"maxGoals,omitempty"`  // default from config
}

// Request is a batch of fixtures predicted from one posterior
type Request struct {
	RequestID string    `json:"requestId,omitempty"`
	Posterior string    `json:"posterior"`        // File path or http(s) URL
	Config    string    `json:"config,omitempty"` // Optional YAML config file
	Fixtures  []Fixture `json:"fixtures"`
	Refresh   bool      `json:"refresh,omitempty"` // Reload the posterior even when a cached copy looks current
}

// Response carries one Prediction per fixture, in request order
type Response struct {
	RequestID   string                   `json:"requestId,omitempty"`
	Predictions []*dixoncoles.Prediction `json:"predictions"`
	Metadata    map[string]any           `json:"metadata,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	RequestID string `json:"requestId,omitempty"`
	Error     struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Processor turns Requests into Responses
type Processor struct {
	// Cache, when set, keeps posterior samples between requests
	Cache cache.Cache
}

func createErrorResponse(code, message, requestID string) ([]byte, error) {
	var response ErrorResponse
	response.RequestID = requestID
	response.Error.Code = code
	response.Error.Message = message

	return json.MarshalIndent(response, "", "  ")
}

// ProcessRequest processes a JSON Request and returns a JSON Response.
// Failures of the request itself are reported as an ErrorResponse; the
// returned error is reserved for failing to produce any output.
func (p *Processor) ProcessRequest(ctx context.Context, input []byte) ([]byte, error) {
	var request Request
	if err := json.Unmarshal(input, &request); err != nil {
		logger.Error("Failed to parse input JSON", err)
		return createErrorResponse("invalid_request", fmt.Sprintf("Invalid JSON: %v", err), "")
	}
	if request.Posterior == "" {
		return createErrorResponse("invalid_request", "posterior is required", request.RequestID)
	}
	if len(request.Fixtures) == 0 {
		return createErrorResponse("invalid_request", "at least one fixture is required", request.RequestID)
	}

	logger.Info("Processing request", request.RequestID, len(request.Fixtures))

	config := dixoncoles.DefaultConfig()
	if request.Config != "" {
		var err error
		if config, err = dixoncoles.LoadConfig(request.Config); err != nil {
			return createErrorResponse("invalid_config", err.Error(), request.RequestID)
		}
	}
	predictor, err := dixoncoles.NewPredictor(config)
	if err != nil {
		return createErrorResponse("invalid_config", err.Error(), request.RequestID)
	}

	var source posterior.Source = posterior.NewSource(request.Posterior)
	if p.Cache != nil {
		source = cache.NewCachedSource(source, p.Cache).WithRefresh(request.Refresh)
	}
	samples, err := source.Load(ctx)
	if err != nil {
		return createErrorResponse("posterior_unavailable", err.Error(), request.RequestID)
	}
	adapter, err := posterior.NewAdapter(samples)
	if err != nil {
		return createErrorResponse("posterior_unavailable", err.Error(), request.RequestID)
	}

	reqs := make([]dixoncoles.PredictRequest, 0, len(request.Fixtures))
	for _, fixture := range request.Fixtures {
		req, err := adapter.Match(fixture.Home, fixture.Away, boolOr(fixture.Neutral, true))
		if err != nil {
			return createErrorResponse("unknown_team", err.Error(), request.RequestID)
		}
		req.ExtraTime = boolOr(fixture.ExtraTime, true)
		req.MaxGoals = fixture.MaxGoals
		reqs = append(reqs, req)
	}

	predictions, err := predictor.PredictAll(ctx, reqs)
	if err != nil {
		logger.Error("Prediction failed", err)
		return createErrorResponse("prediction_error", err.Error(), request.RequestID)
	}

	response := Response{
		RequestID:   request.RequestID,
		Predictions: predictions,
		Metadata: map[string]any{
			"posterior": source.Name(),
			"maxGoals":  config.MaxGoals,
		},
	}

	jsonResult, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		logger.Error("Failed to marshal response to JSON", err)
		return createErrorResponse("internal_error", "Failed to create response", request.RequestID)
	}
	return jsonResult, nil
}

func boolOr(v *bool, def bool) bool {
	if v == nil {
		return def
	}
	return *v
}
