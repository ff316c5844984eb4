// Package types provides shared type definitions for the application.
package types

// Status is the UI state pushed to the frontend with every change.
type Status struct {
	State        string  `json:"state"` // "idle", "requesting", "listening"
	Text         string  `json:"text"`
	StartEnabled bool    `json:"startEnabled"`
	StopEnabled  bool    `json:"stopEnabled"`
	Actuator     string  `json:"actuator"`
	Loudness     float64 `json:"loudness"`
	Pulses       int     `json:"pulses"`
	Session      string  `json:"session,omitempty"`
}

// Capabilities are reported by the frontend once the page has loaded.
type Capabilities struct {
	Vibrate bool `json:"vibrate"` // navigator.vibrate is available
}

// HapticPulse asks the frontend to vibrate.
type HapticPulse struct {
	DurationMs int64 `json:"durationMs"`
}
