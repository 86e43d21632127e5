package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/surveysync/internal/config"
	"github.com/roach88/surveysync/internal/log"
	"github.com/roach88/surveysync/internal/syncer"
)

// RootOptions holds global flags for all commands.
//
// PersistentPreRunE replaces the flag values with the resolved configuration
// (defaults, config file, environment, flags), so subcommands only read
// these fields.
type RootOptions struct {
	Verbose       bool
	Format        string // "json" | "text"
	ConfigFile    string
	DB            string
	LogLevel      string
	LogFormat     string // "text" | "json"
	SettingsCheck bool

	// IDs overrides the row id generator (for testing).
	// If nil, sync uses syncer.UUIDv7Generator.
	IDs syncer.IDGenerator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the surveysync CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "surveysync",
		Short: "surveysync - survey definition synchronization",
		Long: `Validate survey definitions and synchronize them into a SQLite store.

A sync reconciles the incoming definition with the stored survey graph:
matched rows keep their ids, new items are created and rows the definition
no longer mentions are deleted together with their dependents.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return resolveConfig(opts, cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", config.DefaultFormat, "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default: ./surveysync.yaml or <user config dir>/surveysync/surveysync.yaml)")
	cmd.PersistentFlags().StringVar(&opts.DB, "db", config.DefaultDB, "path to SQLite database")
	cmd.PersistentFlags().StringVar(&opts.LogLevel, "log-level", config.DefaultLogLevel, "log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", config.DefaultLogFormat, "log line format on stderr (text|json)")
	cmd.PersistentFlags().BoolVar(&opts.SettingsCheck, "settings-check", true, "reject definitions whose question settings are invalid")

	// Add subcommands
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewCheckSettingsCommand(opts))
	cmd.AddCommand(NewSyncCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewFingerprintCommand(opts))
	cmd.AddCommand(NewListCommand(opts))

	return cmd
}

func resolveConfig(opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := config.Load(config.Options{
		File:        opts.ConfigFile,
		SearchPaths: configSearchPaths(),
		Flags:       cmd.Flags(),
	})
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	opts.Format = cfg.Format
	opts.DB = cfg.DB
	opts.SettingsCheck = cfg.SettingsCheck
	opts.LogFormat = cfg.LogFormat

	log.SetOutput(cmd.ErrOrStderr())
	if cfg.LogFormat == "json" {
		log.UseJSON()
	} else {
		log.UseText()
	}
	log.SetLevel(cfg.LogLevel)
	// --verbose raises the level to debug but never lowers trace
	if opts.Verbose && log.GetLevel() < log.DebugLevel {
		log.SetLevel(log.DebugLevel)
	}
	if cfg.File != "" {
		log.Debugf("using config file %s", cfg.File)
	}
	return nil
}

func configSearchPaths() []string {
	paths := []string{"."}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, "surveysync"))
	}
	return paths
}

// newFormatter builds the formatter every command writes through.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}
