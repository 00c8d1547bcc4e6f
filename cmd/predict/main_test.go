package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"testing"

	"github.com/richard-senior/knockouts/internal/processor"
	"github.com/richard-senior/knockouts/pkg/dixoncoles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintSummary(t *testing.T) {
	predictor, err := dixoncoles.NewPredictor(nil)
	require.NoError(t, err)
	prediction, err := predictor.Predict(dixoncoles.PredictRequest{
		HomeTeam: "Brazil",
		AwayTeam: "Mexico",
		Home:     dixoncoles.TeamStrength{Attack: 1.5, Defence: 1},
		Away:     dixoncoles.TeamStrength{Attack: 1.0, Defence: 1},
		Context:  dixoncoles.MatchContext{Rho: -0.05, Neutral: true},
	})
	require.NoError(t, err)

	result, err := json.Marshal(processor.Response{Predictions: []*dixoncoles.Prediction{prediction}})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, printSummary(&out, result))
	assert.Contains(t, out.String(), "Brazil v Mexico\n0-0: 8.8%\n")
	assert.Contains(t, out.String(), "most likely 1-1")
	assert.Contains(t, out.String(), "warning:")
}

func TestPrintSummaryError(t *testing.T) {
	err := printSummary(&bytes.Buffer{}, []byte(`{"error":{"code":"unknown_team","message":"unknown team: \"Wimbledon\""}}`))
	assert.ErrorContains(t, err, "unknown_team")
}

func TestSetInt(t *testing.T) {
	fs := flag.NewFlagSet("predict", flag.ContinueOnError)
	maxGoals := fs.Int("max-goals", 0, "")
	require.NoError(t, fs.Parse(nil))
	assert.Nil(t, setInt(fs, "max-goals", *maxGoals))

	fs = flag.NewFlagSet("predict", flag.ContinueOnError)
	maxGoals = fs.Int("max-goals", 0, "")
	require.NoError(t, fs.Parse([]string{"-max-goals", "0"}))
	got := setInt(fs, "max-goals", *maxGoals)
	require.NotNil(t, got)
	assert.Equal(t, 0, *got)
}
