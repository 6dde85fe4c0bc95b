// Package driver provides visibility drivers that run without the game: a
// console driver that prints every change and keeps the resulting layout.
package driver

import (
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"

	"github.com/Norgate-AV/fader/internal/hud"
)

// Console prints every SetVisible call and remembers the visibility of each
// element it has been told about
type Console struct {
	mu      sync.Mutex
	writer  io.Writer
	visible map[hud.ElementID]bool
	calls   int
	shown   *color.Color
	hidden  *color.Color
}

// NewConsole creates a driver writing to w
func NewConsole(w io.Writer) *Console {
	return &Console{
		writer:  w,
		visible: make(map[hud.ElementID]bool),
		shown:   color.New(color.FgGreen),
		hidden:  color.New(color.FgHiBlack),
	}
}

// SetVisible prints the new visibility of element and records it once the
// line is written
func (c *Console) SetVisible(element hud.ElementID, visible bool) error {
	if !element.Valid() || element.Ignored() {
		return fmt.Errorf("element %d cannot be driven", int(element))
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	word, col := "hide", c.hidden
	if visible {
		word, col = "show", c.shown
	}

	if _, err := col.Fprintf(c.writer, "  %s %s\n", word, element); err != nil {
		return fmt.Errorf("print %s %s: %w", word, element, err)
	}

	c.visible[element] = visible
	c.calls++

	return nil
}

// Visible reports the last visibility set for element and whether one was set
func (c *Console) Visible(element hud.ElementID) (visible, known bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	visible, known = c.visible[element]
	return visible, known
}

// Calls returns the number of SetVisible calls that succeeded
func (c *Console) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.calls
}

// Layout returns the visibility of every element that has been set, in
// tracked element order
func (c *Console) Layout() []ElementVisibility {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]ElementVisibility, 0, len(c.visible))
	for _, e := range hud.TrackedElements() {
		if v, ok := c.visible[e]; ok {
			out = append(out, ElementVisibility{Element: e, Visible: v})
		}
	}

	return out
}

// ElementVisibility is one row of a layout
type ElementVisibility struct {
	Element hud.ElementID
	Visible bool
}
