package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/surveysync/internal/validate"
)

func TestOutputFormatter_JSONEnvelope(t *testing.T) {
	tests := []struct {
		name       string
		write      func(f *OutputFormatter) error
		wantStatus string
		wantCode   string
		wantData   bool
	}{
		{
			name:       "success",
			write:      func(f *OutputFormatter) error { return f.Success(SurveySummary{Code: "lobby"}) },
			wantStatus: "ok",
			wantData:   true,
		},
		{
			name:       "error",
			write:      func(f *OutputFormatter) error { return f.Error(ErrCodeStore, "database locked", nil) },
			wantStatus: "error",
			wantCode:   ErrCodeStore,
		},
		{
			name: "error with details",
			write: func(f *OutputFormatter) error {
				return f.Error(ErrCodeSurveyNotFound, "survey lobby not found", map[string]string{"code": "lobby"})
			},
			wantStatus: "error",
			wantCode:   ErrCodeSurveyNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			require.NoError(t, tt.write(&OutputFormatter{Format: "json", Writer: buf}))

			var resp CLIResponse
			require.NoError(t, json.Unmarshal(buf.Bytes(), &resp))
			assert.Equal(t, tt.wantStatus, resp.Status)
			assert.Equal(t, tt.wantData, resp.Data != nil)
			if tt.wantCode == "" {
				assert.Nil(t, resp.Error)
				return
			}
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestOutputFormatter_TextError(t *testing.T) {
	details := map[string]string{"file": "lobby.cue"}

	quiet := &bytes.Buffer{}
	require.NoError(t, (&OutputFormatter{Format: "text", Writer: quiet}).Error("E004", "unexpected EOF", details))
	assert.Equal(t, "Error [E004]: unexpected EOF\n", quiet.String())

	verbose := &bytes.Buffer{}
	require.NoError(t, (&OutputFormatter{Format: "text", Writer: verbose, Verbose: true}).Error("E004", "unexpected EOF", details))
	assert.Contains(t, verbose.String(), "Details: map[file:lobby.cue]")
}

func TestOutputFormatter_VerboseLogGoesToErrWriter(t *testing.T) {
	out, diag := &bytes.Buffer{}, &bytes.Buffer{}
	f := &OutputFormatter{Format: "json", Writer: out, ErrWriter: diag, Verbose: true}

	f.VerboseLog("Merging %s", "lobby.json")

	assert.Empty(t, out.String())
	assert.Equal(t, "Merging lobby.json\n", diag.String())

	f.Verbose = false
	f.VerboseLog("dropped")
	assert.Equal(t, "Merging lobby.json\n", diag.String())
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(errors.New("plain")))
	assert.Equal(t, ExitCommandError, GetExitCode(NewExitError(ExitCommandError, "bad path")))

	wrapped := fmt.Errorf("outer: %w", WrapExitError(ExitFailure, "rejected", errors.New("inner")))
	assert.Equal(t, ExitFailure, GetExitCode(wrapped))
	assert.Equal(t, "outer: rejected: inner", wrapped.Error())
}

func TestCommandError(t *testing.T) {
	buf := &bytes.Buffer{}

	err := commandError(&OutputFormatter{Format: "text", Writer: buf}, ErrCodeStore, "disk full", nil)

	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Equal(t, "E010: disk full", err.Error())
	assert.Equal(t, "Error [E010]: disk full\n", buf.String())
}

func TestValidationErrors_Text(t *testing.T) {
	buf := &bytes.Buffer{}
	formatter := &OutputFormatter{Format: "text", Writer: buf}

	err := validationErrors(formatter, []validate.ValidationError{
		{Field: "code", Message: "survey code is required", Code: validate.ErrCodeBlank},
		{Field: "title", Message: "survey title is required", Code: validate.ErrTitleBlank},
	})

	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "2 error(s)")
	assert.Equal(t, "✗ Validation failed\n\n"+
		"  E101 code: survey code is required\n"+
		"  E102 title: survey title is required\n", buf.String())
}
