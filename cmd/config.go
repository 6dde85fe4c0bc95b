// Package cmd implements the command-line interface for fader.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/Norgate-AV/fader/internal/logger"
	"github.com/Norgate-AV/fader/internal/timing"
)

// envPrefix is the prefix of environment variables overriding flags,
// e.g. FADER_CONFIG or FADER_LOG_DIR
const envPrefix = "FADER"

// defaultConfigName is the file looked up in the user config directory
const defaultConfigName = "fader.toml"

// Config holds all application configuration
type Config struct {
	Verbose      bool
	ShowLogs     bool
	ConfigPath   string
	LogDir       string
	TickInterval time.Duration
}

// NewConfigFromFlags creates a Config from parsed command flags. Every flag
// can also be set from the environment with the FADER_ prefix.
func NewConfigFromFlags(cmd *cobra.Command) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault("tick-interval", timing.DefaultTickInterval)

	for _, name := range []string{"verbose", "logs", "config", "log-dir", "tick-interval"} {
		if f := lookupFlag(cmd, name); f != nil {
			if err := v.BindPFlag(name, f); err != nil {
				return nil, fmt.Errorf("bind flag %s: %w", name, err)
			}
		}
	}

	configPath, err := expandPath(v.GetString("config"))
	if err != nil {
		return nil, err
	}
	if configPath == "" {
		configPath = DefaultConfigPath()
	}

	logDir, err := expandPath(v.GetString("log-dir"))
	if err != nil {
		return nil, err
	}

	return &Config{
		Verbose:      v.GetBool("verbose"),
		ShowLogs:     v.GetBool("logs"),
		ConfigPath:   configPath,
		LogDir:       logDir,
		TickInterval: timing.ClampTickInterval(v.GetDuration("tick-interval")),
	}, nil
}

// LoggerOptions returns the logger options for this configuration
func (c *Config) LoggerOptions() logger.LoggerOptions {
	return logger.LoggerOptions{
		Verbose:  c.Verbose,
		Compress: true,
		LogDir:   c.LogDir,
	}
}

// DefaultConfigPath returns the settings file used when --config is not given
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		if home, herr := homedir.Dir(); herr == nil {
			dir = filepath.Join(home, ".config")
		} else {
			dir = os.TempDir()
		}
	}

	return filepath.Join(dir, logger.AppName, defaultConfigName)
}

// lookupFlag finds a flag in the local flags, falling back to persistent flags
func lookupFlag(cmd *cobra.Command, name string) *pflag.Flag {
	if f := cmd.Flags().Lookup(name); f != nil {
		return f
	}

	return cmd.PersistentFlags().Lookup(name)
}

func expandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}

	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("expand path %q: %w", p, err)
	}

	return expanded, nil
}
