// Package resolver turns raw condition snapshots into the single resolved state.
//
// Resolution runs three steps in order: the override check, the priority scan
// and the idle hysteresis gate. Each step is a pure function; Resolver only
// carries the previous state and the idle-pending timer between ticks.
package resolver

import (
	"time"

	"github.com/Norgate-AV/fader/internal/hud"
	"github.com/Norgate-AV/fader/internal/timing"
)

// Options are the settings the resolver reads on every tick
type Options struct {
	IdleTransitionDelay  time.Duration
	FocusOnHotbarsUnlock bool
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{IdleTransitionDelay: timing.DefaultIdleTransitionDelay}
}

// Tick is the input of one resolution cycle
type Tick struct {
	Conditions hud.Conditions
	// Override is UserFocus while the override key is held and None otherwise
	Override hud.State
	Elapsed  time.Duration
}

// Resolver owns the idle-pending timer. It must not be shared between
// goroutines or between engines.
type Resolver struct {
	opts    Options
	current hud.State
	pending time.Duration
}

// New creates a resolver whose initial state is Idle
func New(opts Options) *Resolver {
	r := &Resolver{current: hud.Idle}
	r.Configure(opts)
	return r
}

// Configure replaces the options. An idle transition already in progress keeps
// its accumulated time and is compared against the new delay on the next tick.
func (r *Resolver) Configure(opts Options) {
	opts.IdleTransitionDelay = timing.ClampIdleDelay(opts.IdleTransitionDelay)
	r.opts = opts
}

// Options returns the options currently in effect
func (r *Resolver) Options() Options {
	return r.opts
}

// State returns the last resolved state
func (r *Resolver) State() hud.State {
	return r.current
}

// Pending returns the time accumulated towards the idle transition
func (r *Resolver) Pending() time.Duration {
	return r.pending
}

// Resolve runs one resolution cycle and returns the new state
func (r *Resolver) Resolve(t Tick) hud.State {
	if overrideStep(t.Conditions, t.Override, r.opts.FocusOnHotbarsUnlock) {
		r.current, r.pending = hud.UserFocus, 0
		return r.current
	}

	candidate := priorityStep(t.Conditions)
	r.current, r.pending = hysteresisStep(r.current, candidate, r.pending, t.Elapsed, r.opts.IdleTransitionDelay)

	return r.current
}

// overrideStep reports whether UserFocus is asserted by the held key, the
// focus flag reported by the game, or unlocked hotbars when that is enabled
func overrideStep(c hud.Conditions, override hud.State, focusOnHotbarsUnlock bool) bool {
	if override == hud.UserFocus || c.UserFocusPressed {
		return true
	}

	return focusOnHotbarsUnlock && c.HotbarsUnlocked
}

// priorityRule pairs a condition predicate with the state it selects
type priorityRule struct {
	state  hud.State
	active func(hud.Conditions) bool
}

// priority is scanned top to bottom; the first active rule wins. UserFocus is
// absent because only overrideStep can produce it.
var priority = []priorityRule{
	{hud.Combat, func(c hud.Conditions) bool { return c.InCombat }},
	{hud.Duty, func(c hud.Conditions) bool { return c.InDuty }},
	{hud.Crafting, func(c hud.Conditions) bool { return c.IsCrafting }},
	{hud.Gathering, func(c hud.Conditions) bool { return c.IsGathering }},
	{hud.ChatFocus, func(c hud.Conditions) bool { return c.ChatHasFocus }},
	{hud.HasEnemyTarget, func(c hud.Conditions) bool { return c.Target == hud.EnemyTarget }},
	{hud.HasPlayerTarget, func(c hud.Conditions) bool { return c.Target == hud.PlayerTarget }},
	{hud.HasNPCTarget, func(c hud.Conditions) bool { return c.Target == hud.NPCTarget }},
}

// PriorityOrder returns the states the priority scan can select, in scan order
func PriorityOrder() []hud.State {
	out := make([]hud.State, len(priority))
	for i, p := range priority {
		out[i] = p.state
	}

	return out
}

// priorityStep returns the highest-priority active state, or Idle
func priorityStep(c hud.Conditions) hud.State {
	for _, p := range priority {
		if p.active(c) {
			return p.state
		}
	}

	return hud.Idle
}

// hysteresisStep holds the previous state until Idle has been the candidate for
// at least delay. Any other candidate is adopted at once and clears the timer.
func hysteresisStep(prev, candidate hud.State, pending, elapsed, delay time.Duration) (hud.State, time.Duration) {
	if candidate != hud.Idle {
		return candidate, 0
	}

	if prev == hud.Idle {
		return hud.Idle, 0
	}

	if elapsed > 0 {
		pending += elapsed
	}

	if pending >= delay {
		return hud.Idle, 0
	}

	return prev, pending
}
