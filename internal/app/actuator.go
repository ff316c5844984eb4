package app

import (
	"sync/atomic"
	"time"

	"go.aimuz.me/loudbuzz/internal/types"
)

// WebviewActuator vibrates through the page's navigator.vibrate. It is
// supported once the frontend reports the capability.
type WebviewActuator struct {
	emit    func(name string, data any)
	vibrate atomic.Bool
}

// NewWebviewActuator creates an actuator emitting pulse events through emit.
func NewWebviewActuator(emit func(name string, data any)) *WebviewActuator {
	return &WebviewActuator{emit: emit}
}

// SetVibrate records whether the page can vibrate.
func (w *WebviewActuator) SetVibrate(ok bool) {
	w.vibrate.Store(ok)
}

// Supported implements trigger.Actuator.
func (w *WebviewActuator) Supported() bool {
	return w.vibrate.Load()
}

// Pulse implements trigger.Actuator. Delivery is fire-and-forget, like
// navigator.vibrate itself.
func (w *WebviewActuator) Pulse(d time.Duration) error {
	w.emit(EventHapticPulse, types.HapticPulse{DurationMs: d.Milliseconds()})
	return nil
}
