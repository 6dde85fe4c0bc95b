// Package config handles the persisted fader configuration: the override key,
// the idle transition delay, the hotbar focus flag and the rule matrix.
package config

import (
	"math"
	"time"

	"github.com/Norgate-AV/fader/internal/override"
	"github.com/Norgate-AV/fader/internal/timing"
)

// Version is the current configuration schema version
const Version = 1

// Config is the serialisable configuration record. Rules are keyed by element
// name, then state name; absent pairs mean Skip.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// OverrideKey is the Windows virtual-key code of the user focus key.
	OverrideKey int `toml:"override_key" json:"override_key" yaml:"override_key"`

	// FocusOnHotbarsUnlock forces UserFocus while hotbars are unlocked.
	FocusOnHotbarsUnlock bool `toml:"focus_on_hotbars_unlock" json:"focus_on_hotbars_unlock" yaml:"focus_on_hotbars_unlock"`

	// IdleTransitionDelayMs is how long no condition must hold before Idle.
	IdleTransitionDelayMs int64 `toml:"idle_transition_delay_ms" json:"idle_transition_delay_ms" yaml:"idle_transition_delay_ms"`

	// Rules maps element -> state -> rule name.
	Rules map[string]map[string]string `toml:"rules" json:"rules" yaml:"rules"`
}

// DefaultConfig returns the configuration used when no file exists
func DefaultConfig() *Config {
	return &Config{
		Version:               Version,
		OverrideKey:           int(override.DefaultKey),
		IdleTransitionDelayMs: timing.DefaultIdleTransitionDelay.Milliseconds(),
		Rules:                 map[string]map[string]string{},
	}
}

// IdleTransitionDelay returns the configured delay as a duration
func (c *Config) IdleTransitionDelay() time.Duration {
	const limit = math.MaxInt64 / int64(time.Millisecond)
	switch {
	case c.IdleTransitionDelayMs > limit:
		return time.Duration(math.MaxInt64)
	case c.IdleTransitionDelayMs < -limit:
		return time.Duration(math.MinInt64)
	}

	return time.Duration(c.IdleTransitionDelayMs) * time.Millisecond
}

// Clone returns a deep copy of the configuration
func (c *Config) Clone() *Config {
	out := *c
	out.Rules = make(map[string]map[string]string, len(c.Rules))
	for element, states := range c.Rules {
		inner := make(map[string]string, len(states))
		for state, rule := range states {
			inner[state] = rule
		}
		out.Rules[element] = inner
	}

	return &out
}
