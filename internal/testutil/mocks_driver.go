package testutil

import (
	"fmt"
	"sync"

	"github.com/Norgate-AV/fader/internal/hud"
)

// MockVisibilityDriver records all calls for verification
type MockVisibilityDriver struct {
	mu             sync.Mutex
	SetVisibleCall []SetVisibleCall
	Failures       map[hud.ElementID]error
	PanicOn        map[hud.ElementID]bool
}

type SetVisibleCall struct {
	Element hud.ElementID
	Visible bool
}

func NewMockVisibilityDriver() *MockVisibilityDriver {
	return &MockVisibilityDriver{
		SetVisibleCall: []SetVisibleCall{},
		Failures:       make(map[hud.ElementID]error),
		PanicOn:        make(map[hud.ElementID]bool),
	}
}

func (m *MockVisibilityDriver) SetVisible(element hud.ElementID, visible bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetVisibleCall = append(m.SetVisibleCall, SetVisibleCall{element, visible})

	if m.PanicOn[element] {
		panic(fmt.Sprintf("driver exploded on %s", element))
	}

	return m.Failures[element]
}

// Calls returns a copy of the recorded calls
func (m *MockVisibilityDriver) Calls() []SetVisibleCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]SetVisibleCall, len(m.SetVisibleCall))
	copy(out, m.SetVisibleCall)
	return out
}

// CallsFor returns the recorded calls for one element
func (m *MockVisibilityDriver) CallsFor(element hud.ElementID) []SetVisibleCall {
	var out []SetVisibleCall
	for _, c := range m.Calls() {
		if c.Element == element {
			out = append(out, c)
		}
	}

	return out
}

// Reset forgets all recorded calls
func (m *MockVisibilityDriver) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SetVisibleCall = []SetVisibleCall{}
}

// Helper methods for fluent configuration
func (m *MockVisibilityDriver) WithFailure(element hud.ElementID, err error) *MockVisibilityDriver {
	m.Failures[element] = err
	return m
}

func (m *MockVisibilityDriver) WithPanic(element hud.ElementID) *MockVisibilityDriver {
	m.PanicOn[element] = true
	return m
}
