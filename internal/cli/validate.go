package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/surveysync/internal/loader"
	"github.com/roach88/surveysync/internal/survey"
	"github.com/roach88/surveysync/internal/validate"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var surveyID string

	cmd := &cobra.Command{
		Use:   "validate <definition-file>",
		Short: "Validate a survey definition without syncing it",
		Long: `Validate a survey definition file (.json, .yaml, .yml or .cue).

Every violation is reported, not only the first. With --settings-check
(the default) each question's settings are checked against its type too.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], surveyID, cmd)
		},
	}

	cmd.Flags().StringVar(&surveyID, "survey-id", "", "id of the survey the definition is addressed to")

	return cmd
}

func runValidate(opts *RootOptions, path, surveyID string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	def, err := loadDefinition(formatter, path)
	if err != nil {
		return err
	}
	formatter.VerboseLog("Loaded definition %q from %s", def.Code, path)

	errs := validate.Validate(def, surveyID)
	if opts.SettingsCheck {
		errs = append(errs, validate.ValidateSettings(def)...)
	}
	if len(errs) > 0 {
		return validationErrors(formatter, errs)
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true})
	}
	fmt.Fprintf(formatter.Writer, "✓ Definition %s valid\n", def.Code)
	return nil
}

// loadDefinition reads a definition file, reporting load failures as
// command errors.
func loadDefinition(formatter *OutputFormatter, path string) (*survey.Definition, error) {
	def, err := loader.LoadFile(path)
	if err == nil {
		return def, nil
	}
	if le, ok := loader.AsLoadError(err); ok {
		var details interface{}
		if le.Pos.IsValid() {
			details = map[string]any{"file": le.Pos.Filename(), "line": le.Pos.Line(), "column": le.Pos.Column()}
		}
		return nil, commandError(formatter, le.Code, le.Message, details)
	}
	return nil, commandError(formatter, loader.ErrCodeGeneric, err.Error(), nil)
}
