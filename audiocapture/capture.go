// Package audiocapture provides live microphone capture for the loudness trigger.
//
// Platform audio is delivered by a Backend as mono float32 samples in [-1, 1].
// A Capture keeps the most recent samples in a ring buffer and exposes them
// as a fixed-size analyser window of 128-centred bytes.
package audiocapture

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/bits"
	"sort"
	"sync"
	"time"

	"go.aimuz.me/loudbuzz/trigger"
)

var (
	// ErrUnsupported is returned when a backend is not available on this platform.
	ErrUnsupported = errors.New("audio capture not supported on this platform")

	// ErrRunning is returned when starting a backend that is already capturing.
	ErrRunning = errors.New("already capturing audio")

	// ErrUnknownBackend is returned for backend names nobody registered.
	ErrUnknownBackend = errors.New("unknown capture backend")
)

// AudioHandler receives captured mono samples. The slice is only valid for
// the duration of the call.
type AudioHandler func(samples []float32)

// Backend is a platform capture implementation.
type Backend interface {
	Start(sampleRate int, handler AudioHandler) error
	Stop() error
}

// Factory creates a Backend.
type Factory func() (Backend, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a backend available under name.
func Register(name string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = f
}

// Backends returns the registered backend names, sorted.
func Backends() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func newBackend(name string) (Backend, error) {
	registryMu.RLock()
	f, ok := registry[name]
	registryMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return f()
}

// DefaultBackend is used when Config.Backend is empty.
const DefaultBackend = "portaudio"

// Config holds configuration for audio capture.
type Config struct {
	Backend    string // Registered backend name, default "portaudio"
	SampleRate int    // Sample rate, default 48000 Hz
	BufferSize int    // Analyser window in samples, default 2048
}

// Capture is a running microphone capture. It implements trigger.Source.
type Capture struct {
	mu sync.Mutex

	// State
	capturing  bool
	startTime  time.Time
	sampleRate int
	backend    string

	// Analyser window
	buffer     *RingBuffer
	bufferSize int
	window     []float32

	impl Backend
}

// New creates a capture instance. Call Start to begin capturing.
func New(cfg Config) (*Capture, error) {
	if cfg.Backend == "" {
		cfg.Backend = DefaultBackend
	}
	if cfg.SampleRate == 0 {
		cfg.SampleRate = trigger.DefaultSampleRate
	}
	if cfg.BufferSize == 0 {
		cfg.BufferSize = trigger.DefaultBufferSize
	}
	if cfg.BufferSize < 0 || bits.OnesCount(uint(cfg.BufferSize)) != 1 {
		return nil, fmt.Errorf("buffer size %d is not a power of two", cfg.BufferSize)
	}

	impl, err := newBackend(cfg.Backend)
	if err != nil {
		return nil, err
	}

	return &Capture{
		sampleRate: cfg.SampleRate,
		backend:    cfg.Backend,
		bufferSize: cfg.BufferSize,
		buffer:     NewRingBuffer(cfg.BufferSize),
		window:     make([]float32, cfg.BufferSize),
		impl:       impl,
	}, nil
}

// Start begins capturing.
func (c *Capture) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.capturing {
		return ErrRunning
	}

	if err := c.impl.Start(c.sampleRate, c.buffer.Write); err != nil {
		return err
	}

	c.capturing = true
	c.startTime = time.Now()
	slog.Info("audio capture started", "backend", c.backend, "sample_rate", c.sampleRate)
	return nil
}

// Stop stops capturing audio.
func (c *Capture) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.capturing {
		return nil
	}

	err := c.impl.Stop()
	c.capturing = false
	slog.Info("audio capture stopped", "backend", c.backend, "duration", time.Since(c.startTime))
	return err
}

// Close halts capture and drops buffered audio. It is idempotent.
func (c *Capture) Close() error {
	err := c.Stop()
	c.buffer.Clear()
	return err
}

// BufferSize returns the analyser window length.
func (c *Capture) BufferSize() int {
	return c.bufferSize
}

// ReadInto fills buf with the most recent samples as analyser bytes. Slots
// not yet covered by captured audio read as silence (128).
func (c *Capture) ReadInto(buf []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cap(c.window) < len(buf) {
		c.window = make([]float32, len(buf))
	}
	w := c.window[:len(buf)]
	n := c.buffer.ReadInto(w)

	pad := len(buf) - n
	for i := 0; i < pad; i++ {
		buf[i] = 128
	}
	for i, s := range w[:n] {
		buf[pad+i] = ToByte(s)
	}
}

// ToByte converts a [-1, 1] sample to an unsigned analyser byte centred on 128.
func ToByte(s float32) byte {
	v := 128 * (float64(s) + 1)
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return byte(v)
}

// Acquirer opens a Capture for the trigger.
type Acquirer struct {
	Backend string
}

// Acquire implements trigger.Acquirer. A context that ends while the backend
// is still opening abandons the attempt and releases the device once it opens.
func (a Acquirer) Acquire(ctx context.Context, c trigger.Constraints) (trigger.Source, error) {
	if !c.Audio {
		return nil, errors.New("audiocapture: audio not requested")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	capture, err := New(Config{
		Backend:    a.Backend,
		SampleRate: c.SampleRate,
		BufferSize: c.BufferSize,
	})
	if err != nil {
		return nil, fmt.Errorf("create audio capture: %w", err)
	}

	done := make(chan error, 1)
	go func() {
		done <- capture.Start()
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("start audio capture: %w", err)
		}
		return capture, nil
	case <-ctx.Done():
		go func() {
			if err := <-done; err == nil {
				_ = capture.Close()
			}
		}()
		return nil, ctx.Err()
	}
}
