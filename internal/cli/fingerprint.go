package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/surveysync/internal/loader"
	"github.com/roach88/surveysync/internal/survey"
)

// FingerprintResult is the JSON payload of fingerprint.
type FingerprintResult struct {
	Code        string `json:"code"`
	Fingerprint string `json:"fingerprint"`
}

// NewFingerprintCommand creates the fingerprint command.
func NewFingerprintCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "fingerprint <definition-file>",
		Short: "Print the content fingerprint of a definition",
		Long: `Print a SHA-256 fingerprint of the definition's canonical JSON form.

Key order, whitespace and file format do not affect the fingerprint, so the
same definition in JSON, YAML or CUE hashes identically.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := newFormatter(rootOpts, cmd)

			def, err := loadDefinition(formatter, args[0])
			if err != nil {
				return err
			}
			sum, err := survey.Fingerprint(def)
			if err != nil {
				return commandError(formatter, loader.ErrCodeGeneric, err.Error(), nil)
			}

			if formatter.Format == "json" {
				return formatter.Success(FingerprintResult{Code: def.Code, Fingerprint: sum})
			}
			fmt.Fprintln(formatter.Writer, sum)
			return nil
		},
	}
}
