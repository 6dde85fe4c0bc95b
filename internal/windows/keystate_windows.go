//go:build windows

package windows

import (
	"fmt"
	"log/slog"
	"sync"

	xwin "golang.org/x/sys/windows"

	"github.com/Norgate-AV/fader/internal/logger"
)

var (
	user32                    = xwin.NewLazySystemDLL("user32.dll")
	procGetAsyncKeyState      = user32.NewProc("GetAsyncKeyState")
	kernel32                  = xwin.NewLazySystemDLL("kernel32.dll")
	procSetConsoleCtrlHandler = kernel32.NewProc("SetConsoleCtrlHandler")
)

// keyDownMask is the high bit of the GetAsyncKeyState result
const keyDownMask = 0x8000

// KeyStatePoller reads the asynchronous key state of the whole desktop
type KeyStatePoller struct {
	log      logger.LoggerInterface
	failOnce sync.Once
}

// NewKeyStatePoller creates a poller backed by GetAsyncKeyState
func NewKeyStatePoller(log logger.LoggerInterface) *KeyStatePoller {
	return &KeyStatePoller{log: log}
}

// IsKeyDown reports whether the virtual key is currently held
func (p *KeyStatePoller) IsKeyDown(vk int) bool {
	if err := procGetAsyncKeyState.Find(); err != nil {
		p.failOnce.Do(func() {
			p.log.Error("GetAsyncKeyState unavailable", slog.Any("error", err))
		})
		return false
	}

	ret, _, _ := procGetAsyncKeyState.Call(uintptr(vk))
	return ret&keyDownMask != 0
}

var (
	handlerMu sync.RWMutex
	handler   ConsoleEventHandler
)

// HandleConsoleEvents routes console control events to h. Only the most
// recent handler receives events.
func HandleConsoleEvents(h ConsoleEventHandler) error {
	handlerMu.Lock()
	first := handler == nil
	handler = h
	handlerMu.Unlock()

	if !first {
		return nil
	}

	ret, _, err := procSetConsoleCtrlHandler.Call(xwin.NewCallback(dispatchConsoleEvent), 1)
	if ret == 0 {
		return fmt.Errorf("SetConsoleCtrlHandler: %w", err)
	}

	return nil
}

func dispatchConsoleEvent(code uint32) uintptr {
	handlerMu.RLock()
	h := handler
	handlerMu.RUnlock()

	if h != nil && h(ConsoleEvent(code)) {
		return 1
	}

	return 0
}
