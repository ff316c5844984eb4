// Package app provides the core application service for Wails bindings.
package app

// Event names for frontend communication.
const (
	EventStatus      = "trigger-status"
	EventHapticPulse = "haptic-pulse"
)
