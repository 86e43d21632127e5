package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/surveysync/internal/settings"
)

func TestCheckSettings(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantCode string
	}{
		{
			name: "choices accepted",
			args: []string{"--type", "single", "--settings", `{"choices":[{"value":"a","label":"A"}]}`},
		},
		{
			name: "nps without settings",
			args: []string{"--type", "nps_0_10"},
		},
		{
			name:     "missing choices",
			args:     []string{"--type", "single", "--settings", `{"choices":[]}`},
			wantCode: settings.ErrNoChoices,
		},
		{
			name:     "malformed",
			args:     []string{"--type", "text", "--settings", `{"a":`},
			wantCode: settings.ErrMalformedJSON,
		},
		{
			name:     "image without url",
			args:     []string{"--type", "image", "--settings", `{}`},
			wantCode: settings.ErrMissingImageURL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := execute(t, append([]string{"check-settings"}, tt.args...)...)

			if tt.wantCode == "" {
				require.NoError(t, res.err)
				assert.Contains(t, res.stdout, "✓ Settings valid for type")
				return
			}
			require.Error(t, res.err)
			assert.Equal(t, ExitFailure, GetExitCode(res.err))
			assert.Contains(t, res.stdout, "Error ["+tt.wantCode+"]")
		})
	}
}

func TestCheckSettings_JSONDetails(t *testing.T) {
	res := execute(t, "--format", "json", "check-settings", "--type", "text", "--settings", "not json")
	require.Error(t, res.err)

	var resp CLIResponse
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, settings.ErrMalformedJSON, resp.Error.Code)

	details, ok := resp.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, details["malformed"])
	assert.Equal(t, "text", details["type"])
}

func TestCheckSettings_TypeRequired(t *testing.T) {
	res := execute(t, "check-settings")

	require.Error(t, res.err)
	assert.Contains(t, res.err.Error(), "type")
}
