package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Norgate-AV/fader/internal/hud"
	"github.com/Norgate-AV/fader/internal/matrix"
	"github.com/Norgate-AV/fader/internal/override"
	"github.com/Norgate-AV/fader/internal/timing"
)

// Issue describes one value that was corrected or dropped while resolving a config
type Issue struct {
	Field   string
	Message string
}

func (i Issue) String() string {
	return fmt.Sprintf("config: %s: %s", i.Field, i.Message)
}

// Issues is a collection of resolution issues
type Issues []Issue

func (is Issues) Error() string {
	msgs := make([]string, 0, len(is))
	for _, i := range is {
		msgs = append(msgs, i.String())
	}

	return strings.Join(msgs, "; ")
}

// Settings is the typed form of a Config, ready for the engine
type Settings struct {
	OverrideKey          override.Key
	FocusOnHotbarsUnlock bool
	IdleTransitionDelay  time.Duration
	Rules                []matrix.Entry
}

// Resolve converts the record into typed settings. Out of range or unknown
// values never fail: the delay is clamped, an unknown key falls back to
// fallbackKey, and unknown or ignored rule entries are dropped. Every
// correction is reported as an Issue.
func (c *Config) Resolve(fallbackKey override.Key) (Settings, Issues) {
	var issues Issues

	if !fallbackKey.Valid() {
		fallbackKey = override.DefaultKey
	}

	key := override.Key(c.OverrideKey)
	if !key.Valid() {
		issues = append(issues, Issue{
			Field:   "override_key",
			Message: fmt.Sprintf("unrecognised key code %d, using %s", c.OverrideKey, fallbackKey),
		})
		key = fallbackKey
	}

	delay := c.IdleTransitionDelay()
	if clamped := timing.ClampIdleDelay(delay); clamped != delay {
		issues = append(issues, Issue{
			Field:   "idle_transition_delay_ms",
			Message: fmt.Sprintf("%dms outside 0-%dms, clamped to %dms", c.IdleTransitionDelayMs, timing.MaxIdleTransitionDelay.Milliseconds(), clamped.Milliseconds()),
		})
		delay = clamped
	}

	rules, ruleIssues := c.entries()
	issues = append(issues, ruleIssues...)

	return Settings{
		OverrideKey:          key,
		FocusOnHotbarsUnlock: c.FocusOnHotbarsUnlock,
		IdleTransitionDelay:  delay,
		Rules:                rules,
	}, issues
}

func (c *Config) entries() ([]matrix.Entry, Issues) {
	var issues Issues
	var out []matrix.Entry
	seen := make(map[matrix.Key]string)

	for _, elementName := range sortedKeys(c.Rules) {
		field := "rules." + elementName

		element, err := hud.ParseElement(elementName)
		if err != nil {
			issues = append(issues, Issue{Field: field, Message: err.Error()})
			continue
		}

		if element.Ignored() {
			issues = append(issues, Issue{Field: field, Message: "element is ignored"})
			continue
		}

		states := c.Rules[elementName]
		for _, stateName := range sortedKeys(states) {
			field := field + "." + stateName

			state, err := hud.ParseState(stateName)
			if err != nil {
				issues = append(issues, Issue{Field: field, Message: err.Error()})
				continue
			}

			rule, err := hud.ParseRule(states[stateName])
			if err != nil {
				issues = append(issues, Issue{Field: field, Message: err.Error()})
				continue
			}

			key := matrix.Key{Element: element, State: state}
			if first, dup := seen[key]; dup {
				issues = append(issues, Issue{Field: field, Message: fmt.Sprintf("duplicate of %s", first)})
				continue
			}
			seen[key] = field

			if rule != hud.Skip {
				out = append(out, matrix.Entry{Key: key, Rule: rule})
			}
		}
	}

	return out, issues
}

// FromSettings builds the record for typed settings. Skip rules are omitted.
func FromSettings(s Settings) *Config {
	cfg := DefaultConfig()
	cfg.OverrideKey = int(s.OverrideKey)
	cfg.FocusOnHotbarsUnlock = s.FocusOnHotbarsUnlock
	cfg.IdleTransitionDelayMs = s.IdleTransitionDelay.Milliseconds()

	for _, e := range s.Rules {
		if e.Rule == hud.Skip {
			continue
		}

		states, ok := cfg.Rules[e.Element.String()]
		if !ok {
			states = map[string]string{}
			cfg.Rules[e.Element.String()] = states
		}
		states[e.State.String()] = e.Rule.String()
	}

	return cfg
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
