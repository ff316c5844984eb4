package audiocapture

import (
	"context"
	"errors"
	"runtime"
	"slices"
	"sync"
	"testing"
	"time"

	"go.aimuz.me/loudbuzz/trigger"
)

// fakeBackend captures nothing until Feed is called.
type fakeBackend struct {
	mu       sync.Mutex
	handler  AudioHandler
	rate     int
	startErr error
	stops    int
	gate     chan struct{}
}

func (b *fakeBackend) Start(sampleRate int, handler AudioHandler) error {
	if b.gate != nil {
		<-b.gate
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.startErr != nil {
		return b.startErr
	}
	b.handler = handler
	b.rate = sampleRate
	return nil
}

func (b *fakeBackend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stops++
	b.handler = nil
	return nil
}

func (b *fakeBackend) Feed(samples []float32) {
	b.mu.Lock()
	h := b.handler
	b.mu.Unlock()
	if h != nil {
		h(samples)
	}
}

func (b *fakeBackend) Stops() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stops
}

// registerFake registers b under a test-unique backend name.
func registerFake(t *testing.T, b *fakeBackend) string {
	t.Helper()
	name := "fake-" + t.Name()
	Register(name, func() (Backend, error) { return b, nil })
	return name
}

func TestToByte(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want byte
	}{
		{"zero", 0, 128},
		{"full_negative", -1, 0},
		{"below_range", -2, 0},
		{"full_positive", 1, 255},
		{"above_range", 3, 255},
		{"half", 0.5, 192},
		{"truncates", 0.0078125 * 1.5, 129},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ToByte(tt.in); got != tt.want {
				t.Errorf("ToByte(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestRingBuffer(t *testing.T) {
	rb := NewRingBuffer(4)

	read := func(n int) []float32 {
		dst := make([]float32, n)
		return dst[:rb.ReadInto(dst)]
	}

	if got := read(2); len(got) != 0 {
		t.Errorf("read on empty buffer = %v, want none", got)
	}

	rb.Write([]float32{1, 2, 3})
	if got := read(8); !slices.Equal(got, []float32{1, 2, 3}) {
		t.Errorf("read(8) = %v, want [1 2 3]", got)
	}

	rb.Write([]float32{4, 5})
	if got := read(4); !slices.Equal(got, []float32{2, 3, 4, 5}) {
		t.Errorf("read(4) after wrap = %v, want [2 3 4 5]", got)
	}
	if got := read(2); !slices.Equal(got, []float32{4, 5}) {
		t.Errorf("read(2) = %v, want [4 5]", got)
	}

	rb.Write([]float32{6, 7, 8, 9, 10, 11})
	if got := read(8); !slices.Equal(got, []float32{8, 9, 10, 11}) {
		t.Errorf("read(8) after long write = %v, want [8 9 10 11]", got)
	}

	rb.Clear()
	if got := read(4); len(got) != 0 {
		t.Errorf("read after Clear = %v, want none", got)
	}
}

func TestNew(t *testing.T) {
	name := registerFake(t, &fakeBackend{})

	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{"defaults_size", Config{Backend: name}, nil},
		{"power_of_two", Config{Backend: name, BufferSize: 1024}, nil},
		{"not_power_of_two", Config{Backend: name, BufferSize: 1000}, errAny},
		{"unknown_backend", Config{Backend: "nope"}, ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			switch {
			case tt.wantErr == nil && err != nil:
				t.Fatalf("unexpected error: %v", err)
			case tt.wantErr == errAny && err == nil:
				t.Fatal("expected error")
			case tt.wantErr != nil && tt.wantErr != errAny && !errors.Is(err, tt.wantErr):
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && c.BufferSize() == 0 {
				t.Error("expected non-zero buffer size")
			}
		})
	}
}

// errAny matches any non-nil error in table tests.
var errAny = errors.New("any error")

func TestReadInto(t *testing.T) {
	b := &fakeBackend{}
	c, err := New(Config{Backend: registerFake(t, b), BufferSize: 4})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer c.Close()

	buf := make([]byte, 4)

	c.ReadInto(buf)
	if !slices.Equal(buf, []byte{128, 128, 128, 128}) {
		t.Errorf("ReadInto before audio = %v, want silence", buf)
	}

	b.Feed([]float32{-1, 1})
	c.ReadInto(buf)
	if !slices.Equal(buf, []byte{128, 128, 0, 255}) {
		t.Errorf("ReadInto partial = %v, want [128 128 0 255]", buf)
	}

	b.Feed([]float32{0.5, 0, -1, 1})
	c.ReadInto(buf)
	if !slices.Equal(buf, []byte{192, 128, 0, 255}) {
		t.Errorf("ReadInto full = %v, want [192 128 0 255]", buf)
	}
}

func TestStartStop(t *testing.T) {
	b := &fakeBackend{}
	c, err := New(Config{Backend: registerFake(t, b)})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := c.Start(); err != nil {
		t.Fatalf("first Start: %v", err)
	}
	if err := c.Start(); !errors.Is(err, ErrRunning) {
		t.Fatalf("second Start = %v, want ErrRunning", err)
	}

	// Close is idempotent and stops the backend once.
	if err := c.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	if b.Stops() != 1 {
		t.Errorf("backend stops = %d, want 1", b.Stops())
	}

	// A closed capture can be started again.
	if err := c.Start(); err != nil {
		t.Fatalf("restart: %v", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close after restart: %v", err)
	}
	if b.Stops() != 2 {
		t.Errorf("backend stops = %d, want 2", b.Stops())
	}
}

func TestAcquire(t *testing.T) {
	b := &fakeBackend{}
	a := Acquirer{Backend: registerFake(t, b)}

	src, err := a.Acquire(context.Background(), trigger.Constraints{Audio: true, SampleRate: 16000, BufferSize: 256})
	if err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	defer src.Close()

	if src.BufferSize() != 256 {
		t.Errorf("BufferSize() = %d, want 256", src.BufferSize())
	}
	if b.rate != 16000 {
		t.Errorf("backend sample rate = %d, want 16000", b.rate)
	}
}

func TestAcquire_Errors(t *testing.T) {
	denied := errors.New("permission denied")
	failing := Acquirer{Backend: registerFake(t, &fakeBackend{startErr: denied})}

	tests := []struct {
		name    string
		a       Acquirer
		c       trigger.Constraints
		wantErr error
	}{
		{"audio_not_requested", failing, trigger.Constraints{}, errAny},
		{"backend_denied", failing, trigger.Constraints{Audio: true}, denied},
		{"unknown_backend", Acquirer{Backend: "missing"}, trigger.Constraints{Audio: true}, ErrUnknownBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.a.Acquire(context.Background(), tt.c)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.wantErr != errAny && !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAcquire_ContextCanceled(t *testing.T) {
	b := &fakeBackend{gate: make(chan struct{})}
	a := Acquirer{Backend: registerFake(t, b)}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if _, err := a.Acquire(ctx, trigger.Constraints{Audio: true}); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("Acquire = %v, want DeadlineExceeded", err)
	}

	// The device opens late and is released on its own.
	close(b.gate)
	deadline := time.Now().Add(time.Second)
	for b.Stops() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if b.Stops() != 1 {
		t.Errorf("backend stops = %d, want 1", b.Stops())
	}
}

func TestPlatformBackends(t *testing.T) {
	names := Backends()
	for _, want := range []string{"portaudio", "pulse"} {
		if !slices.Contains(names, want) {
			t.Errorf("backend %q not registered", want)
		}
	}

	if runtime.GOOS != "linux" {
		if _, err := New(Config{Backend: "pulse"}); !errors.Is(err, ErrUnsupported) {
			t.Errorf("pulse on %s: expected ErrUnsupported, got %v", runtime.GOOS, err)
		}
	}
}
