// Package hotkey registers a global keyboard shortcut.
package hotkey

import (
	"errors"
	"log/slog"
	"strings"
	"sync"

	hook "github.com/robotn/gohook"
)

// ErrNoKeys is returned when starting a manager without a key combination.
var ErrNoKeys = errors.New("hotkey: no keys configured")

// aliases maps common spellings to gohook key names.
var aliases = map[string]string{
	"control": "ctrl",
	"option":  "alt",
	"opt":     "alt",
	"command": "cmd",
	"super":   "cmd",
	"meta":    "cmd",
}

// Normalize lower-cases key names, resolves aliases and drops blanks and
// duplicates. gohook expects the non-modifier key first, so modifiers are
// moved to the end.
func Normalize(keys []string) []string {
	seen := make(map[string]bool, len(keys))
	var main, mods []string
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if a, ok := aliases[k]; ok {
			k = a
		}
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		switch k {
		case "ctrl", "shift", "alt", "cmd":
			mods = append(mods, k)
		default:
			main = append(main, k)
		}
	}
	return append(main, mods...)
}

// Manager runs the global hook loop and calls onToggle for each press.
type Manager struct {
	keys     []string
	onToggle func()

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

// NewManager creates a Manager for the given combination, e.g. ctrl+shift+l.
func NewManager(keys []string, onToggle func()) *Manager {
	return &Manager{keys: Normalize(keys), onToggle: onToggle}
}

// Start registers the hotkey and processes events in the background.
func (m *Manager) Start() error {
	if len(m.keys) == 0 {
		return ErrNoKeys
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return nil
	}

	hook.Register(hook.KeyDown, m.keys, func(hook.Event) {
		slog.Debug("hotkey pressed", "keys", strings.Join(m.keys, "+"))
		if m.onToggle != nil {
			m.onToggle()
		}
	})

	events := hook.Start()
	m.done = make(chan struct{})
	m.running = true

	go func(done chan struct{}) {
		defer close(done)
		<-hook.Process(events)
	}(m.done)

	slog.Info("hotkey registered", "keys", strings.Join(m.keys, "+"))
	return nil
}

// Stop ends the hook loop and waits for it to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	done := m.done
	m.mu.Unlock()

	hook.End()
	<-done
}
