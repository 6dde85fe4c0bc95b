package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Norgate-AV/fader/internal/config"
	"github.com/Norgate-AV/fader/internal/logger"
	"github.com/Norgate-AV/fader/internal/timing"
	"github.com/Norgate-AV/fader/internal/version"
)

func init() {
	color.NoColor = true
}

// resetFlags resets every flag of c and its subcommands to its default value
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}

	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)

	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// testEnv is a settings file and log directory inside a temp dir
type testEnv struct {
	dir        string
	configPath string
	logDir     string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dir := t.TempDir()
	return &testEnv{
		dir:        dir,
		configPath: filepath.Join(dir, "fader.toml"),
		logDir:     filepath.Join(dir, "logs"),
	}
}

// run executes the root command with the env's config and log dir
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return e.runContext(t, context.Background(), args...)
}

func (e *testEnv) runContext(t *testing.T, ctx context.Context, args ...string) (string, error) {
	t.Helper()

	resetFlags(RootCmd)
	t.Cleanup(func() { resetFlags(RootCmd) })

	var out, errOut bytes.Buffer
	RootCmd.SetOut(&out)
	RootCmd.SetErr(&errOut)
	RootCmd.SetArgs(append([]string{"--config", e.configPath, "--log-dir", e.logDir}, args...))

	err := RootCmd.ExecuteContext(ctx)
	return out.String(), err
}

func (e *testEnv) load(t *testing.T) *config.Config {
	t.Helper()

	cfg, err := config.Load(e.configPath)
	require.NoError(t, err)
	return cfg
}

// TestRootCmd_Version tests --version flag
func TestRootCmd_Version(t *testing.T) {
	out, err := newTestEnv(t).run(t, "--version")
	require.NoError(t, err)

	assert.Contains(t, out, version.GetVersion(), "Should print version information")
}

// TestRootCmd_Help tests --help flag
func TestRootCmd_Help(t *testing.T) {
	out, err := newTestEnv(t).run(t, "--help")
	require.NoError(t, err)

	for _, want := range []string{"fader", "--verbose", "--logs", "--config", "run", "simulate", "matrix", "rule", "config"} {
		assert.Contains(t, out, want)
	}
}

// TestRootCmd_NoArgsShowsHelp tests that the bare command prints usage
func TestRootCmd_NoArgsShowsHelp(t *testing.T) {
	out, err := newTestEnv(t).run(t)
	require.NoError(t, err)

	assert.Contains(t, out, "Available Commands")
}

// TestRootCmd_InvalidFlag tests that unknown flags fail
func TestRootCmd_InvalidFlag(t *testing.T) {
	_, err := newTestEnv(t).run(t, "--nope")
	assert.Error(t, err)
}

func TestRuleCommands_PersistToFile(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "rule", "set", "chat", "combat", "hide")
	require.NoError(t, err)
	assert.Equal(t, "Chat / Combat: hide\n", out)
	assert.Equal(t, "hide", env.load(t).Rules["Chat"]["Combat"])

	out, err = env.run(t, "rule", "get", "Chat", "Combat")
	require.NoError(t, err)
	assert.Equal(t, "hide\n", out)

	out, err = env.run(t, "rule", "cycle", "Chat", "Combat")
	require.NoError(t, err)
	assert.Equal(t, "Chat / Combat: show\n", out)

	out, err = env.run(t, "rule", "cycle", "Chat", "Combat")
	require.NoError(t, err)
	assert.Equal(t, "Chat / Combat: skip\n", out)
	assert.Empty(t, env.load(t).Rules)
}

func TestRuleCommands_Errors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "rule", "set", "Chatt", "Combat", "hide")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `did you mean "Chat"`)

	_, err = env.run(t, "rule", "set", "QuestLog", "Combat", "hide")
	assert.Error(t, err)

	_, err = env.run(t, "rule", "get", "Chat", "None")
	assert.Error(t, err)

	_, err = env.run(t, "rule", "set", "Chat", "Combat", "maybe")
	assert.Error(t, err)

	_, err = os.Stat(env.configPath)
	assert.True(t, os.IsNotExist(err), "failed edits must not create the settings file")
}

func TestConfigCommands(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "config", "set-delay", "99999")
	require.NoError(t, err)
	assert.Equal(t, "idle transition delay: 15000ms\n", out)

	out, err = env.run(t, "config", "set-delay", "250ms")
	require.NoError(t, err)
	assert.Equal(t, "idle transition delay: 250ms\n", out)

	out, err = env.run(t, "config", "set-key", "ctrl")
	require.NoError(t, err)
	assert.Equal(t, "override key: Ctrl\n", out)

	out, err = env.run(t, "config", "set-hotbar-focus", "true")
	require.NoError(t, err)
	assert.Equal(t, "focus on hotbars unlock: true\n", out)

	cfg := env.load(t)
	assert.Equal(t, int64(250), cfg.IdleTransitionDelayMs)
	assert.Equal(t, 0x11, cfg.OverrideKey)
	assert.True(t, cfg.FocusOnHotbarsUnlock)

	out, err = env.run(t, "config", "show", "--format", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"override_key": 17`)
	assert.Contains(t, out, `"idle_transition_delay_ms": 250`)

	out, err = env.run(t, "config", "path")
	require.NoError(t, err)
	assert.Equal(t, env.configPath+"\n", out)

	out, err = env.run(t, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, out, "is valid")
}

func TestConfigCommands_Errors(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "config", "set-key", "F12")
	assert.Error(t, err)

	_, err = env.run(t, "config", "set-delay", "soon")
	assert.Error(t, err)

	_, err = env.run(t, "config", "set-hotbar-focus", "maybe")
	assert.Error(t, err)

	_, err = env.run(t, "config", "show", "--format", "xml")
	assert.Error(t, err)

	bad := filepath.Join(env.dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"override_key": 65}`), 0o644))
	_, err = env.run(t, "config", "validate", bad)
	assert.Error(t, err)
}

func TestMatrixCommand(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "rule", "set", "Minimap", "Duty", "hide")
	require.NoError(t, err)

	out, err := env.run(t, "matrix")
	require.NoError(t, err)
	assert.Contains(t, out, "Minimap")
	assert.Contains(t, out, "hide")
	assert.NotContains(t, out, "QuestLog")
	assert.NotContains(t, out, "Nameplates")

	out, err = env.run(t, "matrix", "--state", "Idle", "--tooltips")
	require.NoError(t, err)
	assert.NotContains(t, out, "hide")
	assert.Contains(t, out, "Job-specific UI")

	_, err = env.run(t, "matrix", "--state", "Sleeping")
	assert.Error(t, err)
}

const simulateScenario = `
name: demo
idle_transition_delay_ms: 500
rules:
  Chat:
    Combat: hide
    Idle: show
steps:
  - conditions: {in_combat: true}
    elapsed_ms: 16
    expect: Combat
  - elapsed_ms: 500
    expect: Idle
`

func TestSimulateCommand(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.dir, "demo.yaml")
	require.NoError(t, os.WriteFile(path, []byte(simulateScenario), 0o644))

	out, err := env.run(t, "simulate", path, "--calls", "--layout")
	require.NoError(t, err)

	assert.Contains(t, out, "demo")
	assert.Contains(t, out, "hide Chat")
	assert.Contains(t, out, "show Chat")
	assert.Contains(t, out, "Combat")
	assert.Contains(t, out, "shown")

	_, err = os.Stat(env.configPath)
	assert.True(t, os.IsNotExist(err), "simulate must not write the settings file")
}

func TestSimulateCommand_FailedExpectation(t *testing.T) {
	env := newTestEnv(t)
	path := filepath.Join(env.dir, "fail.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"steps": [{"elapsed_ms": 16, "expect": "Combat"}]}`), 0o644))

	_, err := env.run(t, "simulate", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected Combat")
}

func TestRunCommand_StopsWhenCancelled(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, config.Save(env.configPath, &config.Config{
		Version:               config.Version,
		OverrideKey:           0x12,
		IdleTransitionDelayMs: 2000,
		Rules:                 map[string]map[string]string{"Chat": {"Combat": "hide"}},
	}))

	conditions := filepath.Join(env.dir, "conditions.json")
	require.NoError(t, os.WriteFile(conditions, []byte(`{"in_combat": true}`), 0o644))

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	out, err := env.runContext(t, ctx, "run", "--conditions", conditions, "--no-watch", "--tick-interval", "10ms")
	require.NoError(t, err)
	assert.Equal(t, "  hide Chat\n", out)
}

func TestRunCommand_MissingConditionsFile(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "run", "--conditions", filepath.Join(env.dir, "missing.json"))
	assert.Error(t, err)
}

func TestNewConfigFromFlags_EnvOverrides(t *testing.T) {
	resetFlags(RootCmd)
	t.Setenv("FADER_TICK_INTERVAL", "200ms")
	t.Setenv("FADER_VERBOSE", "true")
	t.Setenv("FADER_CONFIG", "/tmp/from-env.toml")

	cfg, err := NewConfigFromFlags(RootCmd)
	require.NoError(t, err)

	assert.Equal(t, 200*time.Millisecond, cfg.TickInterval)
	assert.True(t, cfg.Verbose)
	assert.Equal(t, "/tmp/from-env.toml", cfg.ConfigPath)
}

func TestNewConfigFromFlags_Defaults(t *testing.T) {
	resetFlags(RootCmd)

	cfg, err := NewConfigFromFlags(RootCmd)
	require.NoError(t, err)

	assert.Equal(t, DefaultConfigPath(), cfg.ConfigPath)
	assert.Equal(t, timing.DefaultTickInterval, cfg.TickInterval)
	assert.False(t, cfg.Verbose)
	assert.False(t, cfg.ShowLogs)
}

func TestExpandPath(t *testing.T) {
	t.Parallel()

	home, err := homedir.Dir()
	require.NoError(t, err)

	got, err := expandPath("~/fader/fader.toml")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "fader", "fader.toml"), got)

	got, err = expandPath("")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestParseDelay(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"1500", 1500 * time.Millisecond, false},
		{"2.5s", 2500 * time.Millisecond, false},
		{"-10", 0, false},
		{"later", 0, true},
	}

	for _, tt := range tests {
		got, err := parseDelay(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}

		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

// TestHandleLogsFlag prints the log file and exits with 0
func TestHandleLogsFlag(t *testing.T) {
	env := newTestEnv(t)
	cfg := &Config{ShowLogs: true, LogDir: env.logDir}

	logPath := logger.GetLogPath(cfg.LoggerOptions())
	require.NoError(t, os.MkdirAll(filepath.Dir(logPath), 0o755))
	require.NoError(t, os.WriteFile(logPath, []byte("Test log content\nLine 2\n"), 0o644))

	exitCode := -1
	var buf bytes.Buffer
	err := handleLogsFlag(cfg, &buf, func(code int) { exitCode = code })

	require.NoError(t, err)
	assert.Equal(t, 0, exitCode)
	assert.Contains(t, buf.String(), "Test log content")
}

// TestHandleLogsFlag_NoLogFile exits with 1 when there is nothing to print
func TestHandleLogsFlag_NoLogFile(t *testing.T) {
	env := newTestEnv(t)
	cfg := &Config{ShowLogs: true, LogDir: env.logDir}

	exitCode := -1
	err := handleLogsFlag(cfg, &bytes.Buffer{}, func(code int) { exitCode = code })

	require.NoError(t, err)
	assert.Equal(t, 1, exitCode)
}

// TestHandleLogsFlag_Disabled does nothing without --logs
func TestHandleLogsFlag_Disabled(t *testing.T) {
	t.Parallel()

	called := false
	err := handleLogsFlag(&Config{}, &bytes.Buffer{}, func(int) { called = true })

	require.NoError(t, err)
	assert.False(t, called)
}
