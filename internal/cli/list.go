package cli

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/surveysync/internal/survey"
)

// SurveySummary is one row of list output.
type SurveySummary struct {
	ID      string `json:"id"`
	Code    string `json:"code"`
	Title   string `json:"title"`
	Status  string `json:"status"`
	Version int    `json:"version"`
}

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List stored surveys",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runList(ctx, rootOpts, cmd)
		},
	}
}

func runList(ctx context.Context, opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	st, err := openStore(formatter, opts.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	surveys, err := st.Surveys(ctx)
	if err != nil {
		return storeError(formatter, "list surveys", err)
	}

	summaries := make([]SurveySummary, 0, len(surveys))
	for _, s := range surveys {
		summaries = append(summaries, SurveySummary{
			ID:      s.ID,
			Code:    s.Code,
			Title:   s.Title,
			Status:  survey.StatusString(s.IsActive),
			Version: s.Version,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(summaries)
	}
	if len(summaries) == 0 {
		fmt.Fprintln(formatter.Writer, "No surveys stored")
		return nil
	}

	tw := tabwriter.NewWriter(formatter.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CODE\tSTATUS\tVERSION\tID\tTITLE")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", s.Code, s.Status, s.Version, s.ID, s.Title)
	}
	return tw.Flush()
}
