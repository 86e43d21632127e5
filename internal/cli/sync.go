package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/surveysync/internal/log"
	"github.com/roach88/surveysync/internal/store"
	"github.com/roach88/surveysync/internal/survey"
	"github.com/roach88/surveysync/internal/syncer"
)

// Store error codes.
const (
	ErrCodeStore          = "E010" // Database open/read/write failure
	ErrCodeSurveyNotFound = "E011" // No stored survey matches
	ErrCodeMerge          = "E012" // Merge failed after validation
)

// SyncOptions holds flags for the sync command.
type SyncOptions struct {
	*RootOptions
	SurveyID string
	DryRun   bool
}

// SyncResult is the JSON payload of a successful sync.
type SyncResult struct {
	Code   string             `json:"code"`
	DryRun bool               `json:"dry_run"`
	Report syncer.MergeReport `json:"report"`
}

// NewSyncCommand creates the sync command.
func NewSyncCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SyncOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sync <definition-file>",
		Short: "Merge a definition into the stored survey",
		Long: `Merge a survey definition into the SQLite store.

The stored survey is found by --survey-id, then by the definition's id, then
by its code. A definition that fails validation changes nothing. Otherwise
the merged graph is written in one transaction.

Example:
  surveysync sync --db ./surveys.db lobby.yaml
  surveysync sync --survey-id 0190a5c2-... --dry-run lobby.json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSync(cmd.Context(), opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SurveyID, "survey-id", "", "id of the stored survey to update")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "merge and report without saving")

	return cmd
}

func runSync(ctx context.Context, opts *SyncOptions, path string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := newFormatter(opts.RootOptions, cmd)

	def, err := loadDefinition(formatter, path)
	if err != nil {
		return err
	}

	st, err := openStore(formatter, opts.DB)
	if err != nil {
		return err
	}
	defer st.Close()

	graph, err := loadTargetGraph(ctx, st, opts.SurveyID, def)
	if errors.Is(err, store.ErrSurveyNotFound) {
		return commandError(formatter, ErrCodeSurveyNotFound, fmt.Sprintf("survey %s not found", opts.SurveyID), nil)
	}
	if err != nil {
		return storeError(formatter, "load survey", err)
	}
	formatter.VerboseLog("Merging %s into survey %q", path, graph.Survey.ID)

	engineOpts := []syncer.Option{syncer.WithSettingsCheck(opts.SettingsCheck)}
	if opts.IDs != nil {
		engineOpts = append(engineOpts, syncer.WithIDGenerator(opts.IDs))
	}
	engine := syncer.New(engineOpts...)

	graph, report, err := engine.Merge(def, graph)
	if vf, ok := syncer.AsValidationFailure(err); ok {
		log.WithFields(log.Fields{"code": def.Code, "violations": len(vf.Errors)}).Warn("definition rejected")
		return validationErrors(formatter, vf.Errors)
	}
	if err != nil {
		return commandError(formatter, ErrCodeMerge, err.Error(), nil)
	}

	if !opts.DryRun {
		if err := st.SaveGraph(ctx, graph); err != nil {
			return storeError(formatter, "save survey", err)
		}
	}

	log.WithFields(log.Fields{
		"survey":  report.SurveyID,
		"code":    def.Code,
		"changed": report.Changed(),
		"dry_run": opts.DryRun,
	}).Info("survey synced")

	if formatter.Format == "json" {
		return formatter.Success(SyncResult{Code: def.Code, DryRun: opts.DryRun, Report: report})
	}

	verb := "Synced"
	if opts.DryRun {
		verb = "Dry run for"
	}
	fmt.Fprintf(formatter.Writer, "✓ %s survey %s (%s)\n", verb, def.Code, report.SurveyID)
	fmt.Fprintf(formatter.Writer, "  sections  %s\n", report.Sections)
	fmt.Fprintf(formatter.Writer, "  questions %s\n", report.Questions)
	fmt.Fprintf(formatter.Writer, "  options   %s\n", report.Options)
	fmt.Fprintf(formatter.Writer, "  rules     %s\n", report.Rules)
	return nil
}

// loadTargetGraph finds the stored graph a definition applies to. An explicit
// survey id must exist. Otherwise the definition's own id and then its code
// are tried, and an unknown survey yields an empty graph.
func loadTargetGraph(ctx context.Context, st *store.Store, surveyID string, def *survey.Definition) (*survey.EntityGraph, error) {
	if surveyID != "" {
		return st.LoadGraphByID(ctx, surveyID)
	}

	if def.ID != "" {
		g, err := st.LoadGraphByID(ctx, def.ID)
		if !errors.Is(err, store.ErrSurveyNotFound) {
			return g, err
		}
		log.Warnf("survey id %s is not stored, matching by code %q", def.ID, def.Code)
	}

	g, err := st.LoadGraph(ctx, def.Code)
	if errors.Is(err, store.ErrSurveyNotFound) {
		return g, nil
	}
	return g, err
}

// openStore opens the database, reporting failure as a store error.
func openStore(formatter *OutputFormatter, path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, storeError(formatter, "open database "+path, err)
	}
	return st, nil
}

// storeError logs a database failure and reports it as E010.
func storeError(formatter *OutputFormatter, op string, err error) error {
	log.WithError(err).Error(op)
	return commandError(formatter, ErrCodeStore, fmt.Sprintf("%s: %v", op, err), nil)
}
