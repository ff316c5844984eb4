package trigger

// Status message keys. They double as the English text; see internal/i18n
// for translations.
const (
	MsgUnsupported   = "Your device does not support the Vibration API."
	MsgRequesting    = "Requesting microphone permission..."
	MsgListening     = "Microphone access granted. Listening..."
	MsgAcquireFailed = "Error: %s. Please allow microphone access."
	MsgStopped       = "Stopped."
)
