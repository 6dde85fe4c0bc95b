// Package timing defines the delay bounds and intervals used by the engine.
package timing

import "time"

const (
	// Idle Transition Delay

	// DefaultIdleTransitionDelay is how long no condition must be observed
	// before the resolved state falls back to Idle when nothing is configured.
	DefaultIdleTransitionDelay = 2 * time.Second

	// MinIdleTransitionDelay is the lowest delay offered by the settings editor.
	MinIdleTransitionDelay = 100 * time.Millisecond

	// MaxIdleTransitionDelay is the highest delay accepted anywhere. Persisted
	// values above it are clamped on load.
	MaxIdleTransitionDelay = 15 * time.Second

	// Tick Driver

	// DefaultTickInterval is the interval between resolve-and-apply cycles when
	// the engine is driven by its own ticker rather than by a render loop.
	DefaultTickInterval = 50 * time.Millisecond

	// MinTickInterval keeps a misconfigured ticker from spinning.
	MinTickInterval = 5 * time.Millisecond

	// Configuration Reload

	// ConfigReloadDebounce collapses bursts of file system events caused by a
	// single save into one reload.
	ConfigReloadDebounce = 100 * time.Millisecond
)

// ClampIdleDelay limits d to the accepted range [0, MaxIdleTransitionDelay]
func ClampIdleDelay(d time.Duration) time.Duration {
	if d < 0 {
		return 0
	}

	if d > MaxIdleTransitionDelay {
		return MaxIdleTransitionDelay
	}

	return d
}

// ClampTickInterval limits d to at least MinTickInterval
func ClampTickInterval(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTickInterval
	}

	if d < MinTickInterval {
		return MinTickInterval
	}

	return d
}
