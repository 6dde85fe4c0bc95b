package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/fader/internal/config"
	"github.com/Norgate-AV/fader/internal/driver"
	"github.com/Norgate-AV/fader/internal/engine"
	"github.com/Norgate-AV/fader/internal/logger"
	"github.com/Norgate-AV/fader/internal/override"
	"github.com/Norgate-AV/fader/internal/scenario"
	"github.com/Norgate-AV/fader/internal/windows"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the engine live against a conditions snapshot file",
	Long: `run ticks the engine until interrupted. Each tick reads the conditions file
(rewritten by the game integration), polls the override key and prints every
visibility change. The settings file is reloaded whenever it changes.`,
	Args: cobra.NoArgs,
	RunE: runLive,
}

func init() {
	runCmd.Flags().String("conditions", "", "conditions snapshot file (.toml, .json or .yaml)")
	runCmd.Flags().Bool("no-watch", false, "do not reload the settings file when it changes")
	_ = runCmd.MarkFlagRequired("conditions")
}

func runLive(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()
	defer recoverPanic(s.log)

	conditionsPath, err := expandPath(mustString(cmd, "conditions"))
	if err != nil {
		return err
	}
	if _, err := os.Stat(conditionsPath); err != nil {
		return fmt.Errorf("conditions file: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Catch console window close as well as Ctrl+C
	if err := windows.HandleConsoleEvents(func(ev windows.ConsoleEvent) bool {
		s.log.Debug("Console event, stopping", slog.String("event", ev.String()))
		stop()
		return true
	}); err != nil {
		s.log.Warn("Console close will not stop cleanly", slog.Any("error", err))
	}

	if noWatch, _ := cmd.Flags().GetBool("no-watch"); !noWatch {
		w, err := watchSettings(ctx, s.cfg.ConfigPath, s)
		if err != nil {
			s.log.Warn("Settings will not be reloaded", slog.Any("error", err))
		} else {
			defer w.Close()
		}
	}

	input := override.NewInput(s.store.GetOverrideKey(), windows.NewKeyStatePoller(s.log))
	s.store.OnOverrideKeyChange(input.SetKey)

	eng := engine.New(s.log, s.store, driver.NewConsole(cmd.OutOrStdout()))

	s.log.Info("Running",
		slog.String("conditions", conditionsPath),
		slog.String("overrideKey", input.Key().String()),
	)

	return eng.Run(ctx, scenario.NewSnapshotFile(conditionsPath), input, s.cfg.TickInterval)
}

// watchSettings hot-reloads the settings file into the session store
func watchSettings(ctx context.Context, path string, s *session) (*config.Watcher, error) {
	w := config.NewWatcher(path)
	w.OnChange(func(cfg *config.Config) {
		s.log.Info("Settings file changed, reloading", slog.String("path", path))
		s.store.Apply(cfg)
	})

	if err := w.Start(ctx); err != nil {
		return nil, err
	}

	go logWatchErrors(ctx, w, s.log)
	return w, nil
}

func logWatchErrors(ctx context.Context, w *config.Watcher, log logger.LoggerInterface) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-w.Errors():
			log.Warn("Keeping previous settings", slog.Any("error", err))
		}
	}
}

func mustString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}
