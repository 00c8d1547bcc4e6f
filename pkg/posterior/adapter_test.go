package posterior

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tolerance = 1e-9

func TestAdapterStrength(t *testing.T) {
	adapter, err := NewAdapter(loadTestSamples(t))
	require.NoError(t, err)

	arsenal, err := adapter.Strength("Arsenal")
	require.NoError(t, err)
	assert.InDelta(t, (math.Exp(0.2)+math.Exp(0.4))/2, arsenal.Attack, tolerance)
	assert.InDelta(t, (math.Exp(-0.1)+math.Exp(-0.3))/2, arsenal.Defence, tolerance)

	chelsea, err := adapter.Strength("Chelsea")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, chelsea.Attack, tolerance)
	assert.InDelta(t, math.Exp(0.1), chelsea.Defence, tolerance)

	assert.InDelta(t, (math.Exp(0.1)+math.Exp(0.3))/2, adapter.HomeAdvantage(), tolerance)
	assert.InDelta(t, -0.075, adapter.Correlation(), tolerance)
}

func TestAdapterUnknownTeam(t *testing.T) {
	adapter, err := NewAdapter(loadTestSamples(t))
	require.NoError(t, err)

	_, err = adapter.Strength("Wimbledon")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownTeam)

	var unknown *UnknownTeamError
	require.ErrorAs(t, err, &unknown)
	assert.Equal(t, "Wimbledon", unknown.Team)

	_, err = adapter.Match("Arsenal", "Wimbledon", true)
	assert.ErrorIs(t, err, ErrUnknownTeam)
}

func TestAdapterRejectsBadSamples(t *testing.T) {
	_, err := NewAdapter(nil)
	assert.ErrorIs(t, err, ErrMalformedSamples)

	_, err = NewAdapter(&Samples{})
	assert.ErrorIs(t, err, ErrMalformedSamples)
}

func TestAdapterMatch(t *testing.T) {
	adapter, err := NewAdapter(loadTestSamples(t))
	require.NoError(t, err)

	req, err := adapter.Match("Arsenal", "Spurs", false)
	require.NoError(t, err)
	assert.Equal(t, "Arsenal", req.HomeTeam)
	assert.Equal(t, "Spurs", req.AwayTeam)
	assert.False(t, req.Context.Neutral)
	assert.InDelta(t, adapter.HomeAdvantage(), req.Context.HomeAdvantage, tolerance)
	assert.InDelta(t, -0.075, req.Context.Rho, tolerance)

	spurs, _ := adapter.Strength("Spurs")
	assert.Equal(t, spurs, req.Away)
}

func TestAdapterStrengths(t *testing.T) {
	adapter, err := NewAdapter(loadTestSamples(t))
	require.NoError(t, err)

	ratings := adapter.Strengths()
	require.Len(t, ratings, 3)
	assert.Equal(t, "Arsenal", ratings[0].Team)
	assert.Equal(t, "Spurs", ratings[2].Team)
	assert.InDelta(t, 1.0, ratings[1].Attack, tolerance)
}
