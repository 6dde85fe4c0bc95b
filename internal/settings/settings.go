// Package settings is the editor-facing store for the rule matrix and the
// engine knobs. Every mutation is persisted best-effort: a failed save is
// logged and the in-memory value is kept.
package settings

import (
	"fmt"
	"sync"
	"time"

	"github.com/Norgate-AV/fader/internal/config"
	"github.com/Norgate-AV/fader/internal/hud"
	"github.com/Norgate-AV/fader/internal/logger"
	"github.com/Norgate-AV/fader/internal/matrix"
	"github.com/Norgate-AV/fader/internal/override"
	"github.com/Norgate-AV/fader/internal/resolver"
	"github.com/Norgate-AV/fader/internal/timing"
)

// Persister receives a full configuration snapshot after every edit
type Persister interface {
	Save(cfg *config.Config) error
}

// Store holds the live settings shared between the editor and the tick
type Store struct {
	log       logger.LoggerInterface
	persister Persister
	rules     *matrix.Matrix

	// reload is held for writing while Apply swaps everything and for reading
	// while a tick runs against the settings.
	reload sync.RWMutex

	mu                   sync.RWMutex
	overrideKey          override.Key
	focusOnHotbarsUnlock bool
	idleDelay            time.Duration
	onKeyChange          []func(override.Key)
}

// New creates a store with default settings. A nil persister disables saving.
func New(log logger.LoggerInterface, persister Persister) *Store {
	s := &Store{
		log:         log,
		persister:   persister,
		rules:       matrix.New(),
		overrideKey: override.DefaultKey,
		idleDelay:   timing.DefaultIdleTransitionDelay,
	}

	s.rules.OnChange(func(e matrix.Entry) {
		s.log.Debug("Rule changed", "element", e.Element, "state", e.State, "rule", e.Rule)
		s.persist()
	})

	return s
}

// Rules returns the live matrix. Writes through it are persisted.
func (s *Store) Rules() *matrix.Matrix {
	return s.rules
}

// GetRule returns the rule for the pair
func (s *Store) GetRule(element hud.ElementID, state hud.State) hud.Rule {
	return s.rules.Get(element, state)
}

// SetRule stores the rule for the pair
func (s *Store) SetRule(element hud.ElementID, state hud.State, rule hud.Rule) error {
	return s.rules.Set(element, state, rule)
}

// CycleRule advances the pair to its next rule and returns it
func (s *Store) CycleRule(element hud.ElementID, state hud.State) (hud.Rule, error) {
	return s.rules.Cycle(element, state)
}

// GetOverrideKey returns the user focus key
func (s *Store) GetOverrideKey() override.Key {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.overrideKey
}

// SetOverrideKey rebinds the user focus key
func (s *Store) SetOverrideKey(key override.Key) error {
	if !key.Valid() {
		return fmt.Errorf("%w: %d", override.ErrUnknownKey, int(key))
	}

	s.mu.Lock()
	s.overrideKey = key
	listeners := s.onKeyChange
	s.mu.Unlock()
	s.reload.Unlock()

	s.log.Debug("Override key changed", "key", key)
	for _, fn := range listeners {
		fn(key)
	}

	s.persist()
	return nil
}

// OnOverrideKeyChange registers a callback invoked whenever the key changes,
// including on Apply
func (s *Store) OnOverrideKeyChange(fn func(override.Key)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.onKeyChange = append(s.onKeyChange, fn)
}

// GetIdleDelay returns the idle transition delay
func (s *Store) GetIdleDelay() time.Duration {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.idleDelay
}

// SetIdleDelay stores the idle transition delay clamped to the editing range
// and returns the value stored
func (s *Store) SetIdleDelay(d time.Duration) time.Duration {
	d = max(timing.MinIdleTransitionDelay, timing.ClampIdleDelay(d))

	s.mu.Lock()
	s.idleDelay = d
	s.mu.Unlock()

	s.log.Debug("Idle transition delay changed", "delay", d)
	s.persist()

	return d
}

// GetFocusOnHotbarsUnlock reports whether unlocked hotbars force UserFocus
func (s *Store) GetFocusOnHotbarsUnlock() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.focusOnHotbarsUnlock
}

// SetFocusOnHotbarsUnlock toggles whether unlocked hotbars force UserFocus
func (s *Store) SetFocusOnHotbarsUnlock(enabled bool) {
	s.mu.Lock()
	s.focusOnHotbarsUnlock = enabled
	s.mu.Unlock()

	s.log.Debug("Hotbar focus changed", "enabled", enabled)
	s.persist()
}

// ResolverOptions returns the options the resolver should run with
func (s *Store) ResolverOptions() resolver.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return resolver.Options{
		IdleTransitionDelay:  s.idleDelay,
		FocusOnHotbarsUnlock: s.focusOnHotbarsUnlock,
	}
}

// View runs fn with the resolver options and rules of one settings version.
// A concurrent Apply waits for fn to return.
func (s *Store) View(fn func(opts resolver.Options, rules matrix.Lookup)) {
	s.reload.RLock()
	defer s.reload.RUnlock()

	fn(s.ResolverOptions(), s.rules)
}

// Apply replaces every setting with the values in cfg without persisting.
// Invalid values are corrected against the current settings and reported.
// The swap is a single step for any tick running through View.
func (s *Store) Apply(cfg *config.Config) config.Issues {
	s.reload.Lock()
	resolved, issues := cfg.Resolve(s.GetOverrideKey())

	for _, e := range s.rules.Replace(resolved.Rules) {
		issues = append(issues, config.Issue{
			Field:   fmt.Sprintf("rules.%s.%s", e.Element, e.State),
			Message: "rejected by matrix",
		})
	}

	s.mu.Lock()
	changed := s.overrideKey != resolved.OverrideKey
	s.overrideKey = resolved.OverrideKey
	s.focusOnHotbarsUnlock = resolved.FocusOnHotbarsUnlock
	s.idleDelay = resolved.IdleTransitionDelay
	listeners := s.onKeyChange
	s.mu.Unlock()
	s.reload.Unlock()

	if changed {
		for _, fn := range listeners {
			fn(resolved.OverrideKey)
		}
	}

	for _, issue := range issues {
		s.log.Warn("Config value corrected", "field", issue.Field, "issue", issue.Message)
	}

	s.log.Debug("Settings applied",
		"key", resolved.OverrideKey,
		"delay", resolved.IdleTransitionDelay,
		"hotbarFocus", resolved.FocusOnHotbarsUnlock,
		"rules", len(resolved.Rules),
	)

	return issues
}

// Config returns a snapshot of the current settings as a config record
func (s *Store) Config() *config.Config {
	s.mu.RLock()
	settings := config.Settings{
		OverrideKey:          s.overrideKey,
		FocusOnHotbarsUnlock: s.focusOnHotbarsUnlock,
		IdleTransitionDelay:  s.idleDelay,
	}
	s.mu.RUnlock()

	settings.Rules = s.rules.Entries()

	return config.FromSettings(settings)
}

func (s *Store) persist() {
	if s.persister == nil {
		return
	}

	if err := s.persister.Save(s.Config()); err != nil {
		s.log.Warn("Failed to save settings", "error", err)
	}
}
