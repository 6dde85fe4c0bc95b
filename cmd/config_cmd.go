package cmd

import (
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/fader/internal/config"
	"github.com/Norgate-AV/fader/internal/override"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or change the settings file",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		format := config.Format(mustString(cmd, "format"))
		switch format {
		case config.FormatTOML, config.FormatJSON, config.FormatYAML:
		default:
			return fmt.Errorf("unknown format %q (expected toml, json or yaml)", format)
		}

		data, err := config.Encode(s.store.Config(), format)
		if err != nil {
			return err
		}

		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the settings file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := NewConfigFromFlags(cmd)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), cfg.ConfigPath)
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate [file]",
	Short: "Check a settings file against the schema",
	Long: `validate reports every value that does not match the settings schema. Loading
never fails on such values: they are corrected or dropped and the rest is used.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := NewConfigFromFlags(cmd)
		if err != nil {
			return err
		}

		path := cfg.ConfigPath
		if len(args) == 1 {
			if path, err = expandPath(args[0]); err != nil {
				return err
			}
		}

		if err := config.ValidateFile(path); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%s is valid\n", path)
		return nil
	},
}

var configSetKeyCmd = &cobra.Command{
	Use:   "set-key <alt|ctrl|shift>",
	Short: "Set the key that forces the UserFocus state while held",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := override.ParseKey(args[0])
		if err != nil {
			return err
		}

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		if err := s.store.SetOverrideKey(key); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "override key: %s\n", key)
		return nil
	},
}

var configSetDelayCmd = &cobra.Command{
	Use:   "set-delay <ms|duration>",
	Short: "Set how long no condition must hold before switching to Idle",
	Example: `  fader config set-delay 1500
  fader config set-delay 2.5s`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := parseDelay(args[0])
		if err != nil {
			return err
		}

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		stored := s.store.SetIdleDelay(d)
		if stored != d {
			s.log.Warn("Delay clamped", "requested", d, "stored", stored)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "idle transition delay: %dms\n", stored.Milliseconds())
		return nil
	},
}

var configSetHotbarFocusCmd = &cobra.Command{
	Use:   "set-hotbar-focus <true|false>",
	Short: "Force the UserFocus state while hotbars are unlocked",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enabled, err := strconv.ParseBool(args[0])
		if err != nil {
			return fmt.Errorf("expected true or false: %w", err)
		}

		s, err := openSession(cmd)
		if err != nil {
			return err
		}
		defer s.close()

		s.store.SetFocusOnHotbarsUnlock(enabled)

		fmt.Fprintf(cmd.OutOrStdout(), "focus on hotbars unlock: %t\n", enabled)
		return nil
	},
}

func init() {
	configShowCmd.Flags().StringP("format", "f", string(config.FormatTOML), "output format: toml, json or yaml")

	configCmd.AddCommand(
		configShowCmd,
		configPathCmd,
		configValidateCmd,
		configSetKeyCmd,
		configSetDelayCmd,
		configSetHotbarFocusCmd,
	)
}

// parseDelay accepts plain milliseconds or a Go duration string
func parseDelay(s string) (time.Duration, error) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		ms = min(max(ms, 0), math.MaxInt64/int64(time.Millisecond))
		return time.Duration(ms) * time.Millisecond, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid delay %q: expected milliseconds or a duration like 1.5s", s)
	}

	return d, nil
}
