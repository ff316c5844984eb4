package app

import (
	"sync"

	"go.aimuz.me/loudbuzz/internal/types"
)

// EventControls mirrors the trigger's UI surface to the webview and the tray
// menu. Every change is pushed as a full types.Status.
type EventControls struct {
	mu           sync.Mutex
	text         string
	startEnabled bool
	stopEnabled  bool

	emit     func(name string, data any)
	status   func() types.Status
	onEnable func(start, stop bool)
}

// NewEventControls creates controls in the idle layout. status builds the
// payload pushed after each change.
func NewEventControls(emit func(name string, data any), status func() types.Status) *EventControls {
	return &EventControls{
		startEnabled: true,
		emit:         emit,
		status:       status,
	}
}

// OnEnable registers a callback for start/stop enablement changes.
func (c *EventControls) OnEnable(fn func(start, stop bool)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onEnable = fn
}

// SetStatus implements trigger.Controls.
func (c *EventControls) SetStatus(text string) {
	c.mu.Lock()
	c.text = text
	c.mu.Unlock()
	c.push(false)
}

// SetStartEnabled implements trigger.Controls.
func (c *EventControls) SetStartEnabled(enabled bool) {
	c.mu.Lock()
	c.startEnabled = enabled
	c.mu.Unlock()
	c.push(true)
}

// SetStopEnabled implements trigger.Controls.
func (c *EventControls) SetStopEnabled(enabled bool) {
	c.mu.Lock()
	c.stopEnabled = enabled
	c.mu.Unlock()
	c.push(true)
}

// Current returns the status text and control enablement.
func (c *EventControls) Current() (text string, start, stop bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, c.startEnabled, c.stopEnabled
}

func (c *EventControls) push(enablement bool) {
	c.mu.Lock()
	start, stop, fn := c.startEnabled, c.stopEnabled, c.onEnable
	c.mu.Unlock()

	if enablement && fn != nil {
		fn(start, stop)
	}
	c.emit(EventStatus, c.status())
}
