package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/surveysync/internal/log"
	"github.com/roach88/surveysync/internal/projector"
	"github.com/roach88/surveysync/internal/store"
)

// ErrCodeWriteFailed reports an output file that could not be written.
const ErrCodeWriteFailed = "E007"

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <survey-code>",
		Short: "Write the stored survey as a definition",
		Long: `Project a stored survey back into its JSON definition.

Output is deterministic: sections, questions and options are sorted by
order, rules keep their stored order. Rules whose source question no longer
exists are exported with a null sourceQuestionKey.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), rootOpts, args[0], output, cmd)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the definition to this file instead of stdout")

	return cmd
}

func runExport(ctx context.Context, opts *RootOptions, code, output string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts, cmd)

	st, err := openStore(formatter, opts.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	graph, err := st.LoadGraph(ctx, code)
	if errors.Is(err, store.ErrSurveyNotFound) {
		return commandError(formatter, ErrCodeSurveyNotFound, fmt.Sprintf("survey %s not found", code), nil)
	}
	if err != nil {
		return storeError(formatter, "load survey", err)
	}

	for _, r := range projector.DanglingRules(graph) {
		log.WithFields(log.Fields{"rule": r.ID, "source": r.SourceQuestionID}).Warn("rule references a missing question")
	}

	def := projector.ToDefinition(graph)

	if output == "" {
		if formatter.Format == "json" {
			return formatter.Success(def)
		}
		data, err := json.MarshalIndent(def, "", "  ")
		if err != nil {
			return commandError(formatter, ErrCodeStore, fmt.Sprintf("encode definition: %v", err), nil)
		}
		_, err = fmt.Fprintln(formatter.Writer, string(data))
		return err
	}

	data, err := json.MarshalIndent(def, "", "  ")
	if err != nil {
		return commandError(formatter, ErrCodeStore, fmt.Sprintf("encode definition: %v", err), nil)
	}
	if err := os.WriteFile(output, append(data, '\n'), 0o644); err != nil {
		return commandError(formatter, ErrCodeWriteFailed, fmt.Sprintf("write %s: %v", output, err), nil)
	}
	log.Infof("exported survey %s to %s", code, output)

	if formatter.Format == "json" {
		return formatter.Success(map[string]string{"code": code, "output": output})
	}
	fmt.Fprintf(formatter.Writer, "✓ Exported %s to %s\n", code, output)
	return nil
}
