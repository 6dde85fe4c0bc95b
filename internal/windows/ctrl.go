// Package windows wraps the Win32 calls fader needs: polling the override key
// and catching console close events. On other platforms the poller never
// reports a key as held and console events are not delivered.
package windows

import "fmt"

// ConsoleEvent is a console control event code
type ConsoleEvent uint32

// Events delivered to a console event handler. Codes 3 and 4 are reserved.
const (
	CtrlC        ConsoleEvent = 0
	CtrlBreak    ConsoleEvent = 1
	ConsoleClose ConsoleEvent = 2
	UserLogoff   ConsoleEvent = 5
	Shutdown     ConsoleEvent = 6
)

var consoleEventNames = map[ConsoleEvent]string{
	CtrlC:        "ctrl-c",
	CtrlBreak:    "ctrl-break",
	ConsoleClose: "close",
	UserLogoff:   "logoff",
	Shutdown:     "shutdown",
}

func (e ConsoleEvent) String() string {
	if name, ok := consoleEventNames[e]; ok {
		return name
	}

	return fmt.Sprintf("event(%d)", uint32(e))
}

// ConsoleEventHandler is called on the console handler thread. Returning true
// marks the event handled; false passes it on to the next handler.
type ConsoleEventHandler func(ConsoleEvent) bool
