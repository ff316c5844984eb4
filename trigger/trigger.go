// Package trigger turns a live microphone stream into haptic pulses.
//
// A Trigger samples a fixed-size waveform buffer once per frame, estimates
// loudness as the RMS amplitude of the buffer and fires its Actuator on the
// rising edge of the loudness crossing a threshold.
package trigger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/message"
)

var (
	// ErrAlreadyRunning is returned by Start while a session is requesting or listening.
	ErrAlreadyRunning = errors.New("trigger already running")

	// ErrCapabilityUnavailable is returned by Start when the actuator is not supported.
	ErrCapabilityUnavailable = errors.New("actuator not supported")

	// ErrCanceled is returned by Start when Stop was called while acquiring audio.
	ErrCanceled = errors.New("start canceled")
)

// AcquisitionError reports a failure to acquire the audio source.
type AcquisitionError struct {
	Err error
}

func (e *AcquisitionError) Error() string {
	return fmt.Sprintf("acquire audio: %v", e.Err)
}

func (e *AcquisitionError) Unwrap() error {
	return e.Err
}

// Actuator fires a physical (or audible) pulse.
type Actuator interface {
	Supported() bool
	Pulse(d time.Duration) error
}

// Constraints describe the audio source requested from an Acquirer.
type Constraints struct {
	Audio      bool
	SampleRate int
	BufferSize int
}

// Source is an acquired live sample stream.
type Source interface {
	// BufferSize is the fixed number of samples ReadInto fills.
	BufferSize() int
	// ReadInto fills buf with the most recent waveform as 128-centred bytes.
	ReadInto(buf []byte)
	// Close halts capture and releases processing resources. It is idempotent.
	Close() error
}

// Acquirer opens the audio source. It may block on permission prompts.
type Acquirer interface {
	Acquire(ctx context.Context, c Constraints) (Source, error)
}

// Scheduler runs callbacks once per frame.
type Scheduler interface {
	ScheduleNext(cb func())
}

// Controls is the UI surface driven by the trigger.
type Controls interface {
	SetStatus(text string)
	SetStartEnabled(enabled bool)
	SetStopEnabled(enabled bool)
}

// State is the lifecycle state of a Trigger.
type State int

const (
	StateIdle State = iota
	StateRequesting
	StateListening
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRequesting:
		return "requesting"
	case StateListening:
		return "listening"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Defaults.
const (
	DefaultThreshold     = 20.0
	DefaultPulseDuration = 200 * time.Millisecond
	DefaultBufferSize    = 2048
	DefaultSampleRate    = 48000
)

// Config holds the collaborators and tuning of a Trigger.
type Config struct {
	Actuator  Actuator
	Acquirer  Acquirer
	Scheduler Scheduler
	Controls  Controls

	Threshold     float64
	PulseDuration time.Duration
	SampleRate    int
	BufferSize    int

	// Printer formats status messages. Defaults to English.
	Printer *message.Printer
}

// Snapshot is a point-in-time view of a Trigger.
type Snapshot struct {
	State     State
	Running   bool
	Actuating bool
	Loudness  float64
	Pulses    int
	Session   string
}

// Trigger is a loudness-triggered actuator session. The zero value is not
// usable; create one with New.
type Trigger struct {
	actuator  Actuator
	acquirer  Acquirer
	scheduler Scheduler
	controls  Controls
	printer   *message.Printer

	threshold     float64
	pulseDuration time.Duration
	sampleRate    int
	bufferSize    int

	// pulseMu is held by tick from the firing decision until Pulse returns,
	// and by Stop while it ends the session.
	pulseMu sync.Mutex

	mu        sync.Mutex
	state     State
	attempt   uint64
	running   bool
	actuating bool
	session   uuid.UUID
	source    Source
	buf       []byte
	scratch   []float64
	loudness  float64
	pulses    int
}

// New creates a Trigger. Actuator, Acquirer, Scheduler and Controls are required.
func New(cfg Config) (*Trigger, error) {
	if cfg.Actuator == nil {
		return nil, errors.New("trigger: nil actuator")
	}
	if cfg.Acquirer == nil {
		return nil, errors.New("trigger: nil acquirer")
	}
	if cfg.Scheduler == nil {
		return nil, errors.New("trigger: nil scheduler")
	}
	if cfg.Controls == nil {
		return nil, errors.New("trigger: nil controls")
	}

	if cfg.Threshold <= 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.PulseDuration <= 0 {
		cfg.PulseDuration = DefaultPulseDuration
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = DefaultSampleRate
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = DefaultBufferSize
	}
	if cfg.Printer == nil {
		cfg.Printer = message.NewPrinter(message.MatchLanguage("en"))
	}

	return &Trigger{
		actuator:      cfg.Actuator,
		acquirer:      cfg.Acquirer,
		scheduler:     cfg.Scheduler,
		controls:      cfg.Controls,
		printer:       cfg.Printer,
		threshold:     cfg.Threshold,
		pulseDuration: cfg.PulseDuration,
		sampleRate:    cfg.SampleRate,
		bufferSize:    cfg.BufferSize,
	}, nil
}

// Start requests the audio source and begins listening.
//
// Failures are reported through Controls and returned; the trigger stays idle
// and may be started again.
func (t *Trigger) Start(ctx context.Context) error {
	t.mu.Lock()
	if t.state != StateIdle {
		t.mu.Unlock()
		return ErrAlreadyRunning
	}

	if !t.actuator.Supported() {
		t.mu.Unlock()
		t.controls.SetStatus(t.printer.Sprintf(MsgUnsupported))
		return ErrCapabilityUnavailable
	}

	t.state = StateRequesting
	t.attempt++
	attempt := t.attempt
	t.mu.Unlock()

	t.controls.SetStatus(t.printer.Sprintf(MsgRequesting))

	src, err := t.acquirer.Acquire(ctx, Constraints{
		Audio:      true,
		SampleRate: t.sampleRate,
		BufferSize: t.bufferSize,
	})

	t.mu.Lock()
	if t.state != StateRequesting || t.attempt != attempt {
		// Stop ran while we were waiting on the host.
		t.mu.Unlock()
		if err == nil {
			_ = src.Close()
		}
		return ErrCanceled
	}

	if err != nil {
		t.state = StateIdle
		t.mu.Unlock()

		slog.Error("microphone access denied", "error", err)
		t.controls.SetStatus(t.printer.Sprintf(MsgAcquireFailed, err.Error()))
		return &AcquisitionError{Err: err}
	}

	n := src.BufferSize()
	if n <= 0 {
		n = t.bufferSize
	}

	t.session = uuid.New()
	t.source = src
	t.buf = make([]byte, n)
	t.scratch = make([]float64, n)
	t.running = true
	t.actuating = false
	t.loudness = 0
	t.pulses = 0
	t.state = StateListening
	session := t.session
	t.mu.Unlock()

	slog.Info("listening", "session", session, "buffer", n, "threshold", t.threshold)

	t.controls.SetStatus(t.printer.Sprintf(MsgListening))
	t.controls.SetStartEnabled(false)
	t.controls.SetStopEnabled(true)

	t.scheduler.ScheduleNext(func() { t.tick(session) })
	return nil
}

// Stop ends the session and releases the audio source. It is safe to call
// from any state, but not from within Actuator.Pulse. No pulse starts after
// Stop returns.
func (t *Trigger) Stop() {
	t.pulseMu.Lock()
	t.mu.Lock()
	src := t.source
	session := t.session
	wasRunning := t.running

	t.running = false
	t.actuating = false
	t.source = nil
	t.buf = nil
	t.scratch = nil
	t.state = StateIdle
	t.mu.Unlock()
	t.pulseMu.Unlock()

	if src != nil {
		if err := src.Close(); err != nil {
			slog.Warn("close audio source", "error", err)
		}
	}
	if wasRunning {
		slog.Info("stopped", "session", session)
	}

	t.controls.SetStatus(t.printer.Sprintf(MsgStopped))
	t.controls.SetStartEnabled(true)
	t.controls.SetStopEnabled(false)
}

// Close stops the trigger. It never fails.
func (t *Trigger) Close() error {
	t.Stop()
	return nil
}

// State returns the current lifecycle state.
func (t *Trigger) State() State {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Snapshot returns the current session state.
func (t *Trigger) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Snapshot{
		State:     t.state,
		Running:   t.running,
		Actuating: t.actuating,
		Loudness:  t.loudness,
		Pulses:    t.pulses,
	}
	if t.running {
		s.Session = t.session.String()
	}
	return s
}

// tick is one iteration of the sampling loop. A callback left over from an
// earlier session is dropped by its session id.
func (t *Trigger) tick(session uuid.UUID) {
	t.pulseMu.Lock()
	t.mu.Lock()
	if !t.running || t.session != session {
		t.mu.Unlock()
		t.pulseMu.Unlock()
		return
	}

	t.source.ReadInto(t.buf)
	t.loudness = loudness(t.buf, t.scratch)

	fire := false
	if t.loudness > t.threshold {
		if !t.actuating {
			fire = true
			t.actuating = true
			t.pulses++
		}
	} else {
		t.actuating = false
	}
	level := t.loudness
	t.mu.Unlock()

	if fire {
		slog.Debug("vibrating", "session", session, "loudness", level)
		if err := t.actuator.Pulse(t.pulseDuration); err != nil {
			slog.Warn("pulse actuator", "error", err)
		}
	}
	t.pulseMu.Unlock()

	t.scheduler.ScheduleNext(func() { t.tick(session) })
}
