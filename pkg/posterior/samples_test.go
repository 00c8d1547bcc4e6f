package posterior

import (
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestSamples(t *testing.T) *Samples {
	t.Helper()
	file, err := os.Open("testdata/samples.json")
	require.NoError(t, err)
	defer file.Close()
	samples, err := Decode(file)
	require.NoError(t, err)
	return samples
}

func TestDecode(t *testing.T) {
	samples := loadTestSamples(t)
	assert.Len(t, samples.Attack, 2)
	assert.Equal(t, []string{"Arsenal", "Chelsea", "Spurs"}, samples.TeamNames())
	assert.Equal(t, 2, samples.Teams["Spurs"])
}

func TestDecodeRejectsMalformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"not json", `{"teams":`},
		{"no teams", `{"teams":{},"attack":[[0]],"defence":[[0]],"home_advantage":[0],"correlation":[0]}`},
		{"no samples", `{"teams":{"A":0},"attack":[],"defence":[[0]],"home_advantage":[0],"correlation":[0]}`},
		{"no correlation", `{"teams":{"A":0},"attack":[[0]],"defence":[[0]],"home_advantage":[0],"correlation":[]}`},
		{"ragged", `{"teams":{"A":0},"attack":[[0,1],[0]],"defence":[[0,1],[0,1]],"home_advantage":[0],"correlation":[0]}`},
		{"index out of range", `{"teams":{"A":0,"B":2},"attack":[[0,1]],"defence":[[0,1]],"home_advantage":[0],"correlation":[0]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.doc))
			assert.Error(t, err)
		})
	}

	_, err := Decode(strings.NewReader(`{"teams":{"A":0,"B":2},"attack":[[0,1]],"defence":[[0,1]],"home_advantage":[0],"correlation":[0]}`))
	assert.ErrorIs(t, err, ErrMalformedSamples)
}

func TestFingerprint(t *testing.T) {
	a := loadTestSamples(t)
	b := loadTestSamples(t)

	fa, err := a.Fingerprint()
	require.NoError(t, err)
	fb, err := b.Fingerprint()
	require.NoError(t, err)
	assert.Equal(t, fa, fb)
	assert.Len(t, fa, 64)

	b.Correlation[0] = 0.5
	fb, err = b.Fingerprint()
	require.NoError(t, err)
	assert.NotEqual(t, fa, fb)
}
