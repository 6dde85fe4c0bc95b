// Package matrix stores the (element, state) to rule mapping edited by the user.
package matrix

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Norgate-AV/fader/internal/hud"
)

var (
	// ErrInvalidKey is returned for ignored elements and non-resolvable states
	ErrInvalidKey = errors.New("invalid matrix key")

	// ErrInvalidRule is returned for rules outside Skip, Hide and Show
	ErrInvalidRule = errors.New("invalid rule")
)

// Key addresses one cell of the matrix
type Key struct {
	Element hud.ElementID
	State   hud.State
}

// Entry is one explicitly configured cell
type Entry struct {
	Key
	Rule hud.Rule
}

// Lookup is the read side of the matrix used on the tick path
type Lookup interface {
	Get(element hud.ElementID, state hud.State) hud.Rule
}

// Matrix is safe for concurrent use. Cells that were never set, or were set
// back to Skip, are not stored.
type Matrix struct {
	mu       sync.RWMutex
	rules    map[Key]hud.Rule
	onChange []func(Entry)
}

// New creates an empty matrix where every cell resolves to Skip
func New() *Matrix {
	return &Matrix{rules: make(map[Key]hud.Rule)}
}

// ValidKey reports whether the pair can hold a rule
func ValidKey(element hud.ElementID, state hud.State) bool {
	return !element.Ignored() && state.Resolvable()
}

// Get returns the rule for the pair, or Skip when it is unset or not a valid key
func (m *Matrix) Get(element hud.ElementID, state hud.State) hud.Rule {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.rules[Key{element, state}]
}

// Set overwrites the rule for the pair and notifies change listeners
func (m *Matrix) Set(element hud.ElementID, state hud.State, rule hud.Rule) error {
	if !ValidKey(element, state) {
		return fmt.Errorf("%w: %s/%s", ErrInvalidKey, element, state)
	}

	if !rule.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidRule, int(rule))
	}

	m.mu.Lock()
	m.store(Key{element, state}, rule)
	listeners := m.onChange
	m.mu.Unlock()

	entry := Entry{Key: Key{element, state}, Rule: rule}
	for _, fn := range listeners {
		fn(entry)
	}

	return nil
}

// Cycle advances the pair to the next rule (Skip, Hide, Show, Skip) and returns it
func (m *Matrix) Cycle(element hud.ElementID, state hud.State) (hud.Rule, error) {
	if !ValidKey(element, state) {
		return hud.Skip, fmt.Errorf("%w: %s/%s", ErrInvalidKey, element, state)
	}

	m.mu.Lock()
	k := Key{element, state}
	next := m.rules[k].Next()
	m.store(k, next)
	listeners := m.onChange
	m.mu.Unlock()

	entry := Entry{Key: k, Rule: next}
	for _, fn := range listeners {
		fn(entry)
	}

	return next, nil
}

// store must be called with the write lock held
func (m *Matrix) store(k Key, rule hud.Rule) {
	if rule == hud.Skip {
		delete(m.rules, k)
		return
	}

	m.rules[k] = rule
}

// Entries returns every non-Skip cell, ordered by element then state
func (m *Matrix) Entries() []Entry {
	m.mu.RLock()
	out := make([]Entry, 0, len(m.rules))
	for k, r := range m.rules {
		out = append(out, Entry{Key: k, Rule: r})
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Element != out[j].Element {
			return out[i].Element < out[j].Element
		}
		return out[i].State < out[j].State
	})

	return out
}

// Replace swaps the whole matrix for the given entries in one step. Entries with
// invalid keys or rules are dropped and returned. Listeners are not notified.
func (m *Matrix) Replace(entries []Entry) (rejected []Entry) {
	next := make(map[Key]hud.Rule, len(entries))
	for _, e := range entries {
		if !ValidKey(e.Element, e.State) || !e.Rule.Valid() {
			rejected = append(rejected, e)
			continue
		}

		if e.Rule != hud.Skip {
			next[e.Key] = e.Rule
		}
	}

	m.mu.Lock()
	m.rules = next
	m.mu.Unlock()

	return rejected
}

// OnChange registers a callback invoked after every Set or Cycle
func (m *Matrix) OnChange(fn func(Entry)) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.onChange = append(m.onChange, fn)
}
