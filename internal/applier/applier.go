// Package applier pushes the rule for each tracked element to the visibility driver.
package applier

import (
	"fmt"
	"log/slog"

	"github.com/Norgate-AV/fader/internal/hud"
	"github.com/Norgate-AV/fader/internal/interfaces"
	"github.com/Norgate-AV/fader/internal/logger"
	"github.com/Norgate-AV/fader/internal/matrix"
)

// ElementError records a driver failure for one element
type ElementError struct {
	Element hud.ElementID
	Err     error
}

func (e *ElementError) Error() string {
	return fmt.Sprintf("apply %s: %v", e.Element, e.Err)
}

func (e *ElementError) Unwrap() error {
	return e.Err
}

// Result summarises one Apply pass
type Result struct {
	Applied   int // driver calls that succeeded
	Unchanged int // elements whose rule had not changed since the last pass
	Skipped   int // elements whose rule is Skip
	Failures  []ElementError
}

// Failed returns the number of driver calls that failed
func (r Result) Failed() int {
	return len(r.Failures)
}

// Applier remembers the last rule handed to the driver for every element and
// only calls the driver again when that rule changes, so it does not fight
// other systems that toggle the same elements every frame.
type Applier struct {
	log    logger.LoggerInterface
	driver interfaces.VisibilityDriver
	last   map[hud.ElementID]hud.Rule
}

// New creates an applier with empty change tracking
func New(log logger.LoggerInterface, driver interfaces.VisibilityDriver) *Applier {
	return &Applier{
		log:    log,
		driver: driver,
		last:   make(map[hud.ElementID]hud.Rule),
	}
}

// Apply looks up the rule for every tracked element under state and issues at
// most one driver call per element. A failing element does not stop the pass.
func (a *Applier) Apply(rules matrix.Lookup, state hud.State) Result {
	var res Result

	for _, element := range hud.TrackedElements() {
		switch a.apply(element, rules.Get(element, state), &res) {
		case outcomeApplied:
			res.Applied++
		case outcomeUnchanged:
			res.Unchanged++
		case outcomeSkipped:
			res.Skipped++
		}
	}

	return res
}

// ApplyElement applies a single element. Ignored and unknown elements are a no-op.
func (a *Applier) ApplyElement(rules matrix.Lookup, element hud.ElementID, state hud.State) error {
	if element.Ignored() {
		return nil
	}

	var res Result
	a.apply(element, rules.Get(element, state), &res)
	if len(res.Failures) > 0 {
		return &res.Failures[0]
	}

	return nil
}

// Forget clears change tracking so the next pass re-issues every forced rule
func (a *Applier) Forget() {
	a.last = make(map[hud.ElementID]hud.Rule)
}

// LastApplied returns the last rule recorded for element
func (a *Applier) LastApplied(element hud.ElementID) (hud.Rule, bool) {
	r, ok := a.last[element]
	return r, ok
}

type outcome int

const (
	outcomeUnchanged outcome = iota
	outcomeApplied
	outcomeSkipped
	outcomeFailed
)

func (a *Applier) apply(element hud.ElementID, rule hud.Rule, res *Result) outcome {
	visible, forced := rule.Visible()
	if !forced {
		a.last[element] = rule
		return outcomeSkipped
	}

	if prev, ok := a.last[element]; ok && prev == rule {
		return outcomeUnchanged
	}

	if err := a.callDriver(element, visible); err != nil {
		// Not recorded, so the next pass retries
		a.log.Warn("Visibility driver call failed",
			slog.String("element", element.String()),
			slog.Bool("visible", visible),
			slog.Any("error", err),
		)
		res.Failures = append(res.Failures, ElementError{Element: element, Err: err})
		return outcomeFailed
	}

	a.last[element] = rule
	a.log.Trace("Applied rule",
		slog.String("element", element.String()),
		slog.String("rule", rule.String()),
	)

	return outcomeApplied
}

// callDriver converts a driver panic into an error so one element cannot abort the pass
func (a *Applier) callDriver(element hud.ElementID, visible bool) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("driver panic: %v", r)
		}
	}()

	return a.driver.SetVisible(element, visible)
}
