// Package scenario loads scripted condition sequences and replays them
// through an engine, tick by tick.
package scenario

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Norgate-AV/fader/internal/config"
	"github.com/Norgate-AV/fader/internal/engine"
	"github.com/Norgate-AV/fader/internal/hud"
)

// ErrExpectationFailed is wrapped by Replay when a step resolves to a state
// other than the one it expects
var ErrExpectationFailed = errors.New("scenario expectation failed")

// Step is one or more identical ticks
type Step struct {
	Conditions hud.Conditions `json:"conditions" yaml:"conditions" toml:"conditions"`
	Override   bool           `json:"override" yaml:"override" toml:"override"`
	ElapsedMs  int64          `json:"elapsed_ms" yaml:"elapsed_ms" toml:"elapsed_ms"`
	// Repeat runs the step this many times; zero means once.
	Repeat int `json:"repeat,omitempty" yaml:"repeat,omitempty" toml:"repeat,omitempty"`
	// Expect is the state name the last tick of the step must resolve to.
	Expect string `json:"expect,omitempty" yaml:"expect,omitempty" toml:"expect,omitempty"`
	Note   string `json:"note,omitempty" yaml:"note,omitempty" toml:"note,omitempty"`
}

// Elapsed returns the step's frame time
func (s Step) Elapsed() time.Duration {
	return time.Duration(s.ElapsedMs) * time.Millisecond
}

// Ticks returns how many times the step runs
func (s Step) Ticks() int {
	return max(1, s.Repeat)
}

// Scenario is a named sequence of steps. The optional settings override the
// configuration the scenario is replayed with.
type Scenario struct {
	Name                  string                       `json:"name" yaml:"name" toml:"name"`
	IdleTransitionDelayMs *int64                       `json:"idle_transition_delay_ms,omitempty" yaml:"idle_transition_delay_ms,omitempty" toml:"idle_transition_delay_ms,omitempty"`
	FocusOnHotbarsUnlock  *bool                        `json:"focus_on_hotbars_unlock,omitempty" yaml:"focus_on_hotbars_unlock,omitempty" toml:"focus_on_hotbars_unlock,omitempty"`
	Rules                 map[string]map[string]string `json:"rules,omitempty" yaml:"rules,omitempty" toml:"rules,omitempty"`
	Steps                 []Step                       `json:"steps" yaml:"steps" toml:"steps"`
}

// Overlay returns a copy of base with the scenario's settings applied on top.
// Scenario rules are merged cell by cell.
func (s *Scenario) Overlay(base *config.Config) *config.Config {
	out := base.Clone()

	if s.IdleTransitionDelayMs != nil {
		out.IdleTransitionDelayMs = *s.IdleTransitionDelayMs
	}

	if s.FocusOnHotbarsUnlock != nil {
		out.FocusOnHotbarsUnlock = *s.FocusOnHotbarsUnlock
	}

	for element, states := range s.Rules {
		if out.Rules[element] == nil {
			out.Rules[element] = map[string]string{}
		}
		for state, rule := range states {
			out.Rules[element][state] = rule
		}
	}

	return out
}

// Load reads a scenario file. The encoding follows the extension, as for
// configuration files.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}

	s, err := Decode(data, config.FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}

// Decode parses a scenario and checks every expectation names a state
func Decode(data []byte, format config.Format) (*Scenario, error) {
	var s Scenario

	switch format {
	case config.FormatJSON:
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decode JSON: %w", err)
		}
	case config.FormatYAML:
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("decode YAML: %w", err)
		}
	default:
		if _, err := toml.Decode(string(data), &s); err != nil {
			return nil, fmt.Errorf("decode TOML: %w", err)
		}
	}

	if len(s.Steps) == 0 {
		return nil, errors.New("scenario has no steps")
	}

	for i, step := range s.Steps {
		if step.Expect == "" {
			continue
		}
		if _, err := hud.ParseState(step.Expect); err != nil {
			return nil, fmt.Errorf("step %d: %w", i+1, err)
		}
	}

	return &s, nil
}

// Observation is the outcome of one step
type Observation struct {
	Step     int
	Note     string
	State    hud.State
	Expected hud.State
	Applied  int
	Failed   int
}

// Matched reports whether the step met its expectation, if any
func (o Observation) Matched() bool {
	return o.Expected == hud.None || o.Expected == o.State
}

// Replay runs every step through e in order and returns one observation per
// step. Failed expectations do not stop the replay; they are joined into the
// returned error.
func Replay(e *engine.Engine, s *Scenario) ([]Observation, error) {
	out := make([]Observation, 0, len(s.Steps))
	var errs []error

	for i, step := range s.Steps {
		obs := Observation{Step: i + 1, Note: step.Note}
		if step.Expect != "" {
			obs.Expected, _ = hud.ParseState(step.Expect)
		}

		for range step.Ticks() {
			obs.State = e.ResolveAndApply(step.Conditions, step.Override, step.Elapsed())
			res := e.LastResult()
			obs.Applied += res.Applied
			obs.Failed += res.Failed()
		}

		if !obs.Matched() {
			errs = append(errs, fmt.Errorf("%w: step %d resolved %s, expected %s", ErrExpectationFailed, obs.Step, obs.State, obs.Expected))
		}

		out = append(out, obs)
	}

	return out, errors.Join(errs...)
}
