//go:build !windows

package windows

import (
	"sync"

	"github.com/Norgate-AV/fader/internal/logger"
)

// KeyStatePoller never reports a key as held outside Windows
type KeyStatePoller struct {
	log      logger.LoggerInterface
	warnOnce sync.Once
}

// NewKeyStatePoller creates a poller that always reports keys as released
func NewKeyStatePoller(log logger.LoggerInterface) *KeyStatePoller {
	return &KeyStatePoller{log: log}
}

// IsKeyDown always returns false
func (p *KeyStatePoller) IsKeyDown(int) bool {
	p.warnOnce.Do(func() {
		p.log.Debug("Key polling is only available on Windows")
	})

	return false
}

// HandleConsoleEvents is a no-op outside Windows; signals cover these events
func HandleConsoleEvents(ConsoleEventHandler) error {
	return nil
}
