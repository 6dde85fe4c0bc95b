package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/fader/internal/driver"
	"github.com/Norgate-AV/fader/internal/engine"
	"github.com/Norgate-AV/fader/internal/hud"
	"github.com/Norgate-AV/fader/internal/scenario"
	"github.com/Norgate-AV/fader/internal/settings"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <scenario-file>",
	Short: "Replay a scripted scenario and print the resolved states",
	Long: `simulate replays every step of a scenario file through the engine using the
current settings, with any settings in the scenario layered on top. The settings
file is never modified. A step with an expect field fails the command when the
resolved state differs.`,
	Args: cobra.ExactArgs(1),
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().Bool("calls", false, "print every visibility call as it happens")
	simulateCmd.Flags().Bool("layout", false, "print the final element visibility")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()
	defer recoverPanic(s.log)

	path, err := expandPath(args[0])
	if err != nil {
		return err
	}

	sc, err := scenario.Load(path)
	if err != nil {
		s.log.Error("Failed to load scenario", slog.Any("error", err))
		return err
	}

	// Scenario settings stay in memory
	store := settings.New(s.log, nil)
	store.Apply(sc.Overlay(s.store.Config()))

	out := cmd.OutOrStdout()
	callsOut := io.Discard
	if showCalls, _ := cmd.Flags().GetBool("calls"); showCalls {
		callsOut = out
	}

	console := driver.NewConsole(callsOut)
	obs, replayErr := scenario.Replay(engine.New(s.log, store, console), sc)

	if sc.Name != "" {
		fmt.Fprintln(out, color.New(color.Bold).Sprint(sc.Name))
	}
	printObservations(out, obs)

	if showLayout, _ := cmd.Flags().GetBool("layout"); showLayout {
		fmt.Fprintln(out)
		printLayout(out, console.Layout())
	}

	s.log.Debug("Scenario replayed",
		slog.String("path", path),
		slog.Int("steps", len(obs)),
		slog.Int("calls", console.Calls()),
	)

	return replayErr
}

func printObservations(w io.Writer, obs []scenario.Observation) {
	bold := color.New(color.Bold)
	fail := color.New(color.FgRed)

	tbl := uitable.New()
	tbl.Separator = "  "
	tbl.AddRow(bold.Sprint("Step"), bold.Sprint("State"), bold.Sprint("Expected"), bold.Sprint("Applied"), bold.Sprint("Note"))

	for _, o := range obs {
		expected := ""
		if o.Expected != hud.None {
			expected = o.Expected.String()
			if !o.Matched() {
				expected = fail.Sprint(expected)
			}
		}

		applied := fmt.Sprint(o.Applied)
		if o.Failed > 0 {
			applied = fmt.Sprintf("%d (%s)", o.Applied, fail.Sprintf("%d failed", o.Failed))
		}

		tbl.AddRow(o.Step, o.State, expected, applied, o.Note)
	}

	tbl.RightAlign(0)
	fmt.Fprintln(w, tbl)
}

func printLayout(w io.Writer, layout []driver.ElementVisibility) {
	tbl := uitable.New()
	tbl.Separator = "  "

	for _, e := range layout {
		v := color.New(color.FgHiBlack).Sprint("hidden")
		if e.Visible {
			v = color.New(color.FgGreen).Sprint("shown")
		}
		tbl.AddRow(e.Element, v)
	}

	fmt.Fprintln(w, tbl)
}
