// Package app provides the core application service for Wails bindings.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/wailsapp/wails/v3/pkg/application"

	"go.aimuz.me/loudbuzz/audiocapture"
	"go.aimuz.me/loudbuzz/config"
	"go.aimuz.me/loudbuzz/haptic"
	"go.aimuz.me/loudbuzz/hotkey"
	"go.aimuz.me/loudbuzz/internal/i18n"
	"go.aimuz.me/loudbuzz/internal/types"
	"go.aimuz.me/loudbuzz/trigger"
)

// Service provides application functionality bound to Wails.
// This struct focuses on orchestration; the loop lives in package trigger.
type Service struct {
	cfg    *config.Config
	hotkey *hotkey.Manager

	// UI references - set via Init
	app     *application.App
	window  application.Window
	emitter func(name string, data any)

	// Components
	trig     *trigger.Trigger
	webview  *WebviewActuator
	controls *EventControls

	closeOnce sync.Once

	// Version info (set by caller)
	version string
}

// New creates a new Service. Call Init() after Wails app is created.
func New(version string) *Service {
	return &Service{version: version}
}

// GetVersion returns the application version.
func (s *Service) GetVersion() string {
	return s.version
}

// Init initializes the service with app and window references.
// Must be called after Wails application is created.
func (s *Service) Init(app *application.App, window application.Window) {
	s.app = app
	s.window = window
	s.emitter = func(name string, data any) {
		s.app.Event.Emit(name, data)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		cfg = config.Default()
	}
	s.cfg = cfg

	acq := audiocapture.Acquirer{Backend: cfg.CaptureBackend}
	if err := s.setupTrigger(acq, trigger.NewFrameScheduler(cfg.FrameRate)); err != nil {
		slog.Error("init trigger", "error", err)
		return
	}

	s.setupHotkey()
}

// Shutdown releases the microphone and the hotkey hook.
func (s *Service) Shutdown() {
	s.closeOnce.Do(func() {
		if s.hotkey != nil {
			s.hotkey.Stop()
		}
		if s.trig != nil {
			s.trig.Stop()
		}
	})
}

// emit is a safe wrapper around app.Event.Emit
func (s *Service) emit(name string, data any) {
	if s.emitter != nil {
		s.emitter(name, data)
	}
}

func (s *Service) setupTrigger(acq trigger.Acquirer, sched trigger.Scheduler) error {
	s.webview = NewWebviewActuator(s.emit)
	s.controls = NewEventControls(s.emit, s.Status)

	var act trigger.Actuator = s.webview
	if s.cfg.Actuator == config.ActuatorTone {
		act = haptic.NewTone()
	}

	trig, err := trigger.New(trigger.Config{
		Actuator:      act,
		Acquirer:      acq,
		Scheduler:     sched,
		Controls:      s.controls,
		Threshold:     s.cfg.Threshold,
		PulseDuration: s.cfg.PulseDuration.Std(),
		SampleRate:    s.cfg.SampleRate,
		BufferSize:    s.cfg.BufferSize,
		Printer:       i18n.Printer(s.cfg.Language),
	})
	if err != nil {
		return fmt.Errorf("create trigger: %w", err)
	}
	s.trig = trig

	slog.Info("trigger ready",
		"actuator", s.cfg.Actuator,
		"backend", s.cfg.CaptureBackend,
		"threshold", s.cfg.Threshold,
		"pulse", s.cfg.PulseDuration.Std(),
	)
	return nil
}

func (s *Service) setupHotkey() {
	if len(s.cfg.Hotkey) == 0 {
		return
	}
	s.hotkey = hotkey.NewManager(s.cfg.Hotkey, func() {
		go func() {
			if err := s.Toggle(); err != nil {
				slog.Warn("toggle from hotkey", "error", err)
			}
		}()
	})
	if err := s.hotkey.Start(); err != nil {
		slog.Error("start hotkey", "error", err)
		s.hotkey = nil
	}
}

// OnControls registers a callback for start/stop enablement, used by the tray menu.
func (s *Service) OnControls(fn func(start, stop bool)) {
	if s.controls != nil {
		s.controls.OnEnable(fn)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Bound methods
// ─────────────────────────────────────────────────────────────────────────────

// Start requests the microphone and begins listening.
func (s *Service) Start() error {
	if s.trig == nil {
		return errors.New("trigger not initialized")
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.AcquireTimeout.Std())
	defer cancel()
	return s.trig.Start(ctx)
}

// Stop stops listening. It always succeeds.
func (s *Service) Stop() {
	if s.trig != nil {
		s.trig.Stop()
	}
}

// Toggle starts when idle and stops otherwise.
func (s *Service) Toggle() error {
	if s.trig == nil {
		return errors.New("trigger not initialized")
	}
	if s.trig.State() == trigger.StateIdle {
		return s.Start()
	}
	s.Stop()
	return nil
}

// Status returns the current UI state.
func (s *Service) Status() types.Status {
	if s.trig == nil || s.controls == nil {
		return types.Status{State: trigger.StateIdle.String(), StartEnabled: true}
	}

	snap := s.trig.Snapshot()
	text, start, stop := s.controls.Current()
	return types.Status{
		State:        snap.State.String(),
		Text:         text,
		StartEnabled: start,
		StopEnabled:  stop,
		Actuator:     s.cfg.Actuator,
		Loudness:     snap.Loudness,
		Pulses:       snap.Pulses,
		Session:      snap.Session,
	}
}

// ReportCapabilities is called by the page after load.
func (s *Service) ReportCapabilities(caps types.Capabilities) {
	if s.webview == nil {
		return
	}
	s.webview.SetVibrate(caps.Vibrate)
	slog.Info("frontend capabilities", "vibrate", caps.Vibrate)
}
