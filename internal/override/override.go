// Package override maps the configured user-focus hotkey onto the override state.
package override

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Norgate-AV/fader/internal/hud"
	"github.com/Norgate-AV/fader/internal/interfaces"
)

// ErrUnknownKey is returned for keys outside Alt, Ctrl and Shift
var ErrUnknownKey = errors.New("unknown override key")

// Key is a modifier key identified by its Windows virtual-key code
type Key int

const (
	Shift Key = 0x10 // VK_SHIFT
	Ctrl  Key = 0x11 // VK_CONTROL
	Alt   Key = 0x12 // VK_MENU

	// DefaultKey is used when no valid key is configured
	DefaultKey = Alt
)

// Keys returns the selectable keys in the order the editor lists them
func Keys() []Key {
	return []Key{Alt, Ctrl, Shift}
}

func (k Key) String() string {
	switch k {
	case Alt:
		return "Alt"
	case Ctrl:
		return "Ctrl"
	case Shift:
		return "Shift"
	}

	return fmt.Sprintf("Key(0x%02X)", int(k))
}

// Valid reports whether k is one of the selectable keys
func (k Key) Valid() bool {
	switch k {
	case Alt, Ctrl, Shift:
		return true
	}

	return false
}

// ParseKey accepts a key name (case-insensitive) or a virtual-key code in
// decimal or 0x-prefixed hex
func ParseKey(s string) (Key, error) {
	s = strings.TrimSpace(s)
	for _, k := range Keys() {
		if strings.EqualFold(k.String(), s) {
			return k, nil
		}
	}

	switch strings.ToLower(s) {
	case "control":
		return Ctrl, nil
	case "menu":
		return Alt, nil
	}

	if code, err := strconv.ParseInt(s, 0, 32); err == nil {
		if k := Key(code); k.Valid() {
			return k, nil
		}
	}

	return DefaultKey, fmt.Errorf("%w: %q (expected Alt, Ctrl or Shift)", ErrUnknownKey, s)
}

// Translate maps the held state of the override key onto UserFocus, or None
// when the key is released
func Translate(held bool) hud.State {
	if held {
		return hud.UserFocus
	}

	return hud.None
}

// Input binds a key to a key state poller. The key may be rebound from another
// goroutine while the tick polls it.
type Input struct {
	mu     sync.RWMutex
	key    Key
	poller interfaces.KeyStatePoller
}

// NewInput creates an input for key. A nil poller never reports the key as held.
func NewInput(key Key, poller interfaces.KeyStatePoller) *Input {
	return &Input{key: key, poller: poller}
}

// Key returns the bound key
func (i *Input) Key() Key {
	i.mu.RLock()
	defer i.mu.RUnlock()

	return i.key
}

// SetKey rebinds the input
func (i *Input) SetKey(key Key) {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.key = key
}

// Held polls the bound key
func (i *Input) Held() bool {
	key := i.Key()
	if i.poller == nil || !key.Valid() {
		return false
	}

	return i.poller.IsKeyDown(int(key))
}

// Poll returns the override state for the current key state
func (i *Input) Poll() hud.State {
	return Translate(i.Held())
}
