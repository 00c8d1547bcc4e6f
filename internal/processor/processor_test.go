package processor

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/richard-senior/knockouts/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func process(t *testing.T, p *Processor, input string) map[string]any {
	t.Helper()
	output, err := p.ProcessRequest(context.Background(), []byte(input))
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(output, &decoded))
	return decoded
}

func TestProcessRequest(t *testing.T) {
	out := process(t, &Processor{}, `{
		"requestId": "r1",
		"posterior": "testdata/samples.json",
		"fixtures": [
			{"home": "Arsenal", "away": "Spurs"},
			{"home": "Chelsea", "away": "Arsenal", "neutral": false, "extraTime": false, "maxGoals": 8}
		]
	}`)

	assert.Equal(t, "r1", out["requestId"])
	assert.NotContains(t, out, "error")

	predictions := out["predictions"].([]any)
	require.Len(t, predictions, 2)

	first := predictions[0].(map[string]any)
	assert.Equal(t, "Arsenal", first["homeTeam"])
	assert.Contains(t, first, "extraTime")

	second := predictions[1].(map[string]any)
	assert.NotContains(t, second, "extraTime")
	assert.EqualValues(t, 8, second["final"].(map[string]any)["maxGoals"])
}

func TestProcessRequestErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		code  string
	}{
		{"bad json", `{"fixtures":`, "invalid_request"},
		{"no posterior", `{"fixtures":[{"home":"Arsenal","away":"Spurs"}]}`, "invalid_request"},
		{"no fixtures", `{"posterior":"testdata/samples.json"}`, "invalid_request"},
		{"missing posterior", `{"posterior":"testdata/nope.json","fixtures":[{"home":"Arsenal","away":"Spurs"}]}`, "posterior_unavailable"},
		{"unknown team", `{"posterior":"testdata/samples.json","fixtures":[{"home":"Arsenal","away":"Wimbledon"}]}`, "unknown_team"},
		{"negative max goals", `{"posterior":"testdata/samples.json","fixtures":[{"home":"Arsenal","away":"Spurs","maxGoals":-1}]}`, "prediction_error"},
		{"missing config", `{"posterior":"testdata/samples.json","config":"testdata/nope.yaml","fixtures":[{"home":"Arsenal","away":"Spurs"}]}`, "invalid_config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := process(t, &Processor{}, tt.input)
			require.Contains(t, out, "error")
			assert.Equal(t, tt.code, out["error"].(map[string]any)["code"])
		})
	}
}

func TestProcessRequestWithConfig(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "knockouts.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("max_goals: 6\noverflow: boundary\n"), 0644))

	out := process(t, &Processor{}, `{
		"posterior": "testdata/samples.json",
		"config": "`+configPath+`",
		"fixtures": [{"home": "Arsenal", "away": "Spurs"}]
	}`)
	require.NotContains(t, out, "error")

	prediction := out["predictions"].([]any)[0].(map[string]any)
	assert.EqualValues(t, 6, prediction["final"].(map[string]any)["maxGoals"])
	assert.EqualValues(t, 0, prediction["extraTime"].(map[string]any)["dropped"])
}

func TestProcessRequestUsesCache(t *testing.T) {
	c := cache.NewMemoryCache()
	p := &Processor{Cache: c}

	process(t, p, `{"posterior":"testdata/samples.json","fixtures":[{"home":"Arsenal","away":"Spurs"}]}`)
	entry, ok, err := c.Get("file:testdata/samples.json")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEmpty(t, entry.Version)
	assert.NotEmpty(t, entry.Fingerprint)
}

func TestProcessRequestRefresh(t *testing.T) {
	doc, err := os.ReadFile("testdata/samples.json")
	require.NoError(t, err)
	dir := t.TempDir()
	posteriorPath := filepath.Join(dir, "posterior.json")
	require.NoError(t, os.WriteFile(posteriorPath, doc, 0644))

	c, err := cache.OpenSQLite(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	defer c.Close()
	p := &Processor{Cache: c}

	request := func(refresh bool) string {
		encoded, err := json.Marshal(Request{
			Posterior: posteriorPath,
			Fixtures:  []Fixture{{Home: "Arsenal", Away: "Spurs"}},
			Refresh:   refresh,
		})
		require.NoError(t, err)
		return string(encoded)
	}
	process(t, p, request(false))

	// a cached entry that no longer matches what a fresh load gives
	stale, ok, err := c.Get("file:" + posteriorPath)
	require.NoError(t, err)
	require.True(t, ok)
	stale.Samples.Teams["Wimbledon"] = stale.Samples.Teams["Arsenal"]
	require.NoError(t, c.Put("file:"+posteriorPath, stale))

	out := process(t, p, `{"posterior":"`+posteriorPath+`","fixtures":[{"home":"Wimbledon","away":"Spurs"}]}`)
	assert.NotContains(t, out, "error")

	out = process(t, p, request(true))
	assert.NotContains(t, out, "error")
	entry, ok, err := c.Get("file:" + posteriorPath)
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotContains(t, entry.Samples.Teams, "Wimbledon")
}

func TestProcessRequestZeroMaxGoals(t *testing.T) {
	out := process(t, &Processor{}, `{"posterior":"testdata/samples.json","fixtures":[
		{"home":"Arsenal","away":"Spurs","maxGoals":0},
		{"home":"Arsenal","away":"Spurs"}
	]}`)
	predictions := out["predictions"].([]any)
	require.Len(t, predictions, 2)
	assert.EqualValues(t, 0, predictions[0].(map[string]any)["final"].(map[string]any)["maxGoals"])
	assert.EqualValues(t, 4, predictions[1].(map[string]any)["final"].(map[string]any)["maxGoals"])
}
