package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/fader/internal/hud"
)

var ruleCmd = &cobra.Command{
	Use:   "rule",
	Short: "Read or change one cell of the rule matrix",
}

var ruleGetCmd = &cobra.Command{
	Use:   "get <element> <state>",
	Short: "Print the rule for an element in a state",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCell(cmd, args, func(s *session, e hud.ElementID, st hud.State) error {
			fmt.Fprintln(cmd.OutOrStdout(), s.store.GetRule(e, st))
			return nil
		})
	},
}

var ruleSetCmd = &cobra.Command{
	Use:   "set <element> <state> <skip|hide|show>",
	Short: "Set the rule for an element in a state",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		rule, err := hud.ParseRule(args[2])
		if err != nil {
			return err
		}

		return withCell(cmd, args[:2], func(s *session, e hud.ElementID, st hud.State) error {
			if err := s.store.SetRule(e, st, rule); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s / %s: %s\n", e, st, rule)
			return nil
		})
	},
}

var ruleCycleCmd = &cobra.Command{
	Use:   "cycle <element> <state>",
	Short: "Advance the rule for an element in a state (skip, hide, show, skip)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCell(cmd, args, func(s *session, e hud.ElementID, st hud.State) error {
			rule, err := s.store.CycleRule(e, st)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s / %s: %s\n", e, st, rule)
			return nil
		})
	},
}

func init() {
	ruleCmd.AddCommand(ruleGetCmd, ruleSetCmd, ruleCycleCmd)
}

// withCell parses the element and state arguments and runs fn in a session
func withCell(cmd *cobra.Command, args []string, fn func(*session, hud.ElementID, hud.State) error) error {
	element, err := hud.ParseElement(args[0])
	if err != nil {
		return err
	}

	state, err := hud.ParseState(args[1])
	if err != nil {
		return err
	}

	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()
	defer recoverPanic(s.log)

	return fn(s, element, state)
}
