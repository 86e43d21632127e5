package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/surveysync/internal/settings"
)

// SettingsResult is the JSON payload of check-settings.
type SettingsResult struct {
	Type    string `json:"type"`
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

// NewCheckSettingsCommand creates the check-settings command.
func NewCheckSettingsCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		questionType string
		settingsJSON string
	)

	cmd := &cobra.Command{
		Use:   "check-settings",
		Short: "Validate one question's settings against its type",
		Long: `Validate a settings JSON object for a question type.

Example:
  surveysync check-settings --type single --settings '{"choices":[{"value":"a","label":"A"}]}'
  surveysync check-settings --type nps_0_10`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var raw *string
			if cmd.Flags().Changed("settings") {
				raw = &settingsJSON
			}
			return runCheckSettings(rootOpts, questionType, raw, cmd)
		},
	}

	cmd.Flags().StringVar(&questionType, "type", "", "question type (required)")
	cmd.Flags().StringVar(&settingsJSON, "settings", "", "settings JSON object (omit for none)")
	_ = cmd.MarkFlagRequired("type")

	return cmd
}

func runCheckSettings(opts *RootOptions, questionType string, raw *string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	res := settings.ValidateString(questionType, raw)
	if !res.Valid {
		_ = formatter.Error(res.Code, res.Message, map[string]any{"type": questionType, "malformed": res.Malformed})
		return NewExitError(ExitFailure, fmt.Sprintf("%s: %s", res.Code, res.Message))
	}

	if formatter.Format == "json" {
		return formatter.Success(SettingsResult{Type: questionType, Valid: true})
	}
	fmt.Fprintf(formatter.Writer, "✓ Settings valid for type %s\n", questionType)
	return nil
}
