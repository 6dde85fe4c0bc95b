package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/gosuri/uitable"
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/fader/internal/hud"
	"github.com/Norgate-AV/fader/internal/matrix"
)

var matrixCmd = &cobra.Command{
	Use:   "matrix",
	Short: "Print the rule matrix",
	Long: `matrix prints one row per tracked element and one column per state. Cells
show hide, show or - for skip (leave the element alone).`,
	Args: cobra.NoArgs,
	RunE: runMatrix,
}

func init() {
	matrixCmd.Flags().StringP("state", "s", "", "only print the column for this state")
	matrixCmd.Flags().Bool("tooltips", false, "append the element description to each row")
}

func runMatrix(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()
	defer recoverPanic(s.log)

	states := hud.ResolvableStates()
	if name := mustString(cmd, "state"); name != "" {
		state, err := hud.ParseState(name)
		if err != nil {
			return err
		}
		states = []hud.State{state}
	}

	tooltips, _ := cmd.Flags().GetBool("tooltips")
	printMatrix(cmd.OutOrStdout(), s.store.Rules(), states, tooltips)

	return nil
}

func printMatrix(w io.Writer, rules matrix.Lookup, states []hud.State, tooltips bool) {
	bold := color.New(color.Bold)

	tbl := uitable.New()
	tbl.Separator = "  "

	header := []any{bold.Sprint("Element")}
	for _, st := range states {
		header = append(header, bold.Sprint(st))
	}
	if tooltips {
		header = append(header, bold.Sprint("Description"))
	}
	tbl.AddRow(header...)

	for _, e := range hud.TrackedElements() {
		row := []any{e}
		for _, st := range states {
			row = append(row, ruleCell(rules.Get(e, st)))
		}
		if tooltips {
			row = append(row, e.Tooltip())
		}
		tbl.AddRow(row...)
	}

	fmt.Fprintln(w, tbl)
}

func ruleCell(r hud.Rule) string {
	switch r {
	case hud.Hide:
		return color.New(color.FgYellow).Sprint(r)
	case hud.Show:
		return color.New(color.FgGreen).Sprint(r)
	}

	return "-"
}
