// Package engine runs the per-tick resolve-and-apply cycle.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Norgate-AV/fader/internal/applier"
	"github.com/Norgate-AV/fader/internal/hud"
	"github.com/Norgate-AV/fader/internal/interfaces"
	"github.com/Norgate-AV/fader/internal/logger"
	"github.com/Norgate-AV/fader/internal/matrix"
	"github.com/Norgate-AV/fader/internal/override"
	"github.com/Norgate-AV/fader/internal/resolver"
	"github.com/Norgate-AV/fader/internal/settings"
	"github.com/Norgate-AV/fader/internal/timing"
)

// Engine owns one resolver and one applier. It is driven from a single
// goroutine; only the settings store is shared with other goroutines.
type Engine struct {
	log      logger.LoggerInterface
	settings *settings.Store
	resolver *resolver.Resolver
	applier  *applier.Applier
	now      func() time.Time

	last       hud.State
	lastResult applier.Result
	ticks      uint64
}

// New creates an engine that applies rules from store through driver
func New(log logger.LoggerInterface, store *settings.Store, driver interfaces.VisibilityDriver) *Engine {
	return NewEngineWithDeps(
		log,
		store,
		resolver.New(store.ResolverOptions()),
		applier.New(log, driver),
	)
}

// NewEngineWithDeps creates an engine with explicit collaborators (for testing)
func NewEngineWithDeps(log logger.LoggerInterface, store *settings.Store, res *resolver.Resolver, app *applier.Applier) *Engine {
	return &Engine{
		log:      log,
		settings: store,
		resolver: res,
		applier:  app,
		now:      time.Now,
		last:     res.State(),
	}
}

// WithClock replaces the clock used by Run to measure elapsed time
func (e *Engine) WithClock(now func() time.Time) *Engine {
	e.now = now
	return e
}

// State returns the state resolved by the last tick
func (e *Engine) State() hud.State {
	return e.last
}

// LastResult returns the outcome of the last apply pass
func (e *Engine) LastResult() applier.Result {
	return e.lastResult
}

// ResolveAndApply runs one tick: it resolves the conditions into a state and
// applies that state's rules to every tracked element. It never panics and
// never fails; problems are logged and the previous state is kept.
func (e *Engine) ResolveAndApply(c hud.Conditions, overrideHeld bool, elapsed time.Duration) (state hud.State) {
	state = e.last

	defer func() {
		if r := recover(); r != nil {
			e.log.Error("Tick panicked", slog.Any("panic", r), slog.Uint64("tick", e.ticks))
		}
	}()

	e.ticks++

	e.settings.View(func(opts resolver.Options, rules matrix.Lookup) {
		e.resolver.Configure(opts)

		state = e.resolver.Resolve(resolver.Tick{
			Conditions: c,
			Override:   override.Translate(overrideHeld),
			Elapsed:    elapsed,
		})

		if state != e.last {
			e.log.Debug("State changed", slog.String("from", e.last.String()), slog.String("to", state.String()))
		}
		e.last = state

		e.lastResult = e.applier.Apply(rules, state)
	})

	e.log.Trace("Tick",
		slog.Uint64("tick", e.ticks),
		slog.String("state", state.String()),
		slog.Duration("elapsed", elapsed),
		slog.Duration("pending", e.resolver.Pending()),
		slog.Int("applied", e.lastResult.Applied),
		slog.Int("failed", e.lastResult.Failed()),
	)

	return state
}

// Run ticks every interval until ctx is cancelled. Each tick reads the
// conditions from src and the override key from input, which may be nil.
// When src fails the last good conditions are reused.
func (e *Engine) Run(ctx context.Context, src interfaces.ConditionSource, input *override.Input, interval time.Duration) error {
	if src == nil {
		return errors.New("condition source is required")
	}

	interval = timing.ClampTickInterval(interval)
	e.log.Info("Engine started", slog.Duration("interval", interval), slog.String("state", e.last.String()))

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var conditions hud.Conditions
	prev := e.now()

	for {
		select {
		case <-ctx.Done():
			e.log.Info("Engine stopped", slog.Uint64("ticks", e.ticks), slog.String("state", e.last.String()))
			return nil

		case <-ticker.C:
			now := e.now()
			elapsed := now.Sub(prev)
			prev = now

			if c, err := src.Conditions(); err != nil {
				e.log.Warn("Failed to read conditions", slog.Any("error", err))
			} else {
				conditions = c
			}

			held := input != nil && input.Held()
			e.ResolveAndApply(conditions, held, elapsed)
		}
	}
}
