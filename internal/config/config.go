// Package config resolves surveysync settings from, in increasing priority,
// built-in defaults, an optional YAML config file, SURVEYSYNC_* environment
// variables and command-line flags.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/roach88/surveysync/internal/log"
)

const (
	configFileName = "surveysync"
	configFileType = "yaml"
	envPrefix      = "SURVEYSYNC"

	KeyDB            = "db"
	KeyFormat        = "format"
	KeyLogLevel      = "log_level"
	KeyLogFormat     = "log_format"
	KeySettingsCheck = "settings_check"

	DefaultDB        = "surveysync.db"
	DefaultFormat    = "text"
	DefaultLogLevel  = "warn"
	DefaultLogFormat = "text"
)

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"db":             KeyDB,
	"format":         KeyFormat,
	"log-level":      KeyLogLevel,
	"log-format":     KeyLogFormat,
	"settings-check": KeySettingsCheck,
}

// Config is the resolved configuration.
type Config struct {
	DB            string
	Format        string
	LogLevel      log.Level
	LogFormat     string // "text" | "json"
	SettingsCheck bool

	// File is the config file that was read, "" when none was found.
	File string
}

// Options controls where configuration is looked up.
type Options struct {
	// File is an explicit config file. When set it must exist.
	File string
	// SearchPaths are directories searched for surveysync.yaml when File is empty.
	SearchPaths []string
	// Flags are bound on top of file and environment values. Only flags
	// the user actually set override lower layers.
	Flags *pflag.FlagSet
}

// Load resolves the configuration.
func Load(opts Options) (*Config, error) {
	v := viper.New()
	v.SetDefault(KeyDB, DefaultDB)
	v.SetDefault(KeyFormat, DefaultFormat)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
	v.SetDefault(KeySettingsCheck, true)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", opts.File, err)
		}
	} else if len(opts.SearchPaths) > 0 {
		v.SetConfigName(configFileName)
		v.SetConfigType(configFileType)
		for _, dir := range opts.SearchPaths {
			v.AddConfigPath(dir)
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			if f := opts.Flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag --%s: %w", name, err)
				}
			}
		}
	}

	cfg := &Config{
		DB:            v.GetString(KeyDB),
		Format:        v.GetString(KeyFormat),
		LogFormat:     v.GetString(KeyLogFormat),
		SettingsCheck: v.GetBool(KeySettingsCheck),
		File:          v.ConfigFileUsed(),
	}

	if cfg.Format != "text" && cfg.Format != "json" {
		return nil, fmt.Errorf("invalid format %q: must be one of [text json]", cfg.Format)
	}
	if cfg.LogFormat != "text" && cfg.LogFormat != "json" {
		return nil, fmt.Errorf("invalid log format %q: must be one of [text json]", cfg.LogFormat)
	}
	level, err := log.ParseLevel(v.GetString(KeyLogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	cfg.LogLevel = level

	return cfg, nil
}
