// Package interfaces defines the external collaborators of the engine for
// dependency injection and testing.
package interfaces

import "github.com/Norgate-AV/fader/internal/hud"

// VisibilityDriver shows or hides a native HUD element
type VisibilityDriver interface {
	SetVisible(element hud.ElementID, visible bool) error
}

// KeyStatePoller reports whether a virtual key is currently held down
type KeyStatePoller interface {
	IsKeyDown(vk int) bool
}

// ConditionSource reads the current snapshot of raw game conditions
type ConditionSource interface {
	Conditions() (hud.Conditions, error)
}
