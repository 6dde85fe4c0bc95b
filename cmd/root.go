package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/fader/internal/config"
	"github.com/Norgate-AV/fader/internal/logger"
	"github.com/Norgate-AV/fader/internal/settings"
	"github.com/Norgate-AV/fader/internal/timing"
	"github.com/Norgate-AV/fader/internal/version"
)

// RootCmd is the root command for the fader CLI application.
var RootCmd = &cobra.Command{
	Use:   "fader",
	Short: "fader - Show and hide HUD elements based on what you are doing",
	Long: `fader resolves game conditions (combat, duty, crafting, targets, ...) into a
single state, then shows or hides every HUD element according to a rule matrix.`,
	Version:      version.GetVersion(),
	Args:         cobra.NoArgs,
	RunE:         Execute,
	SilenceUsage: true, // Don't show usage on runtime errors
}

func init() {
	// Set custom version template to show full version info
	RootCmd.SetVersionTemplate(`{{printf "%s\n" .Version}}`)

	// Add flags
	RootCmd.PersistentFlags().BoolP("verbose", "V", false, "enable verbose output")
	RootCmd.PersistentFlags().BoolP("logs", "l", false, "print the current log file to stdout and exit")
	RootCmd.PersistentFlags().StringP("config", "c", "", "settings file (default "+DefaultConfigPath()+")")
	RootCmd.PersistentFlags().String("log-dir", "", "directory for the log file")
	RootCmd.PersistentFlags().Duration("tick-interval", timing.DefaultTickInterval, "interval between ticks when running live")

	RootCmd.AddCommand(runCmd, simulateCmd, matrixCmd, ruleCmd, configCmd)
}

// handleLogsFlag processes the --logs flag and exits if needed
func handleLogsFlag(cfg *Config, w io.Writer, exitFunc func(int)) error {
	if !cfg.ShowLogs {
		return nil
	}

	if err := logger.PrintLogFile(w, cfg.LoggerOptions()); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logPath := logger.GetLogPath(cfg.LoggerOptions())
			fmt.Fprintf(os.Stderr, "Log file does not exist: %s\n", logPath)
			exitFunc(1)
			return nil
		}

		fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
		exitFunc(1)
		return nil
	}

	exitFunc(0)
	return nil
}

// initializeLogger creates a logger writing to the file and to w
func initializeLogger(cfg *Config, w io.Writer) (logger.LoggerInterface, error) {
	opts := cfg.LoggerOptions()
	opts.Console = w

	log, err := logger.NewLogger(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return log, nil
}

// recoverPanic logs a panic with its stack; deferred by every command
func recoverPanic(log logger.LoggerInterface) {
	if r := recover(); r != nil {
		log.Error("PANIC RECOVERED",
			slog.Any("panic", r),
			slog.String("stack", string(debug.Stack())),
		)

		fmt.Fprintf(os.Stderr, "\n*** PANIC: %v ***\n", r)
		fmt.Fprintf(os.Stderr, "Check log file for details\n")
	}
}

// session bundles what every subcommand needs
type session struct {
	cfg   *Config
	log   logger.LoggerInterface
	store *settings.Store
}

// openSession parses flags, starts logging and loads the settings file. The
// caller must call close.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := NewConfigFromFlags(cmd)
	if err != nil {
		return nil, err
	}

	if err := handleLogsFlag(cfg, cmd.OutOrStdout(), os.Exit); err != nil {
		return nil, err
	}

	log, err := initializeLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return nil, err
	}

	log.Debug("Starting fader",
		slog.String("command", cmd.CommandPath()),
		slog.String("version", version.GetFullVersion()),
	)
	log.Debug("Flags set",
		slog.Bool("verbose", cfg.Verbose),
		slog.String("config", cfg.ConfigPath),
		slog.Duration("tickInterval", cfg.TickInterval),
	)

	store, err := loadStore(cfg.ConfigPath, log)
	if err != nil {
		log.Close()
		return nil, err
	}

	return &session{cfg: cfg, log: log, store: store}, nil
}

func (s *session) close() {
	s.log.Close()
}

// loadStore reads the settings file into a store that saves back to it
func loadStore(path string, log logger.LoggerInterface) (*settings.Store, error) {
	file, err := config.Load(path)
	if err != nil {
		log.Error("Failed to load settings", slog.String("path", path), slog.Any("error", err))
		return nil, err
	}

	store := settings.New(log, config.FilePersister{Path: path})
	store.Apply(file)

	log.Debug("Settings loaded", slog.String("path", path))
	return store, nil
}

// Execute runs the root command: it only handles --logs and otherwise shows help.
func Execute(cmd *cobra.Command, args []string) error {
	cfg, err := NewConfigFromFlags(cmd)
	if err != nil {
		return err
	}

	if err := handleLogsFlag(cfg, cmd.OutOrStdout(), os.Exit); err != nil {
		return err
	}

	return cmd.Help()
}
