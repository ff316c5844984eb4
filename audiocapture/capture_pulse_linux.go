//go:build linux

package audiocapture

import (
	"errors"
	"fmt"
	"sync"

	"github.com/jfreymuth/pulse"
)

// pulseLatency is the requested record latency in seconds.
const pulseLatency = 0.02

func init() {
	Register("pulse", func() (Backend, error) {
		return &pulseBackend{}, nil
	})
}

// pulseBackend records the default PulseAudio source without cgo.
type pulseBackend struct {
	mu     sync.Mutex
	client *pulse.Client
	stream *pulse.RecordStream
}

func (b *pulseBackend) Start(sampleRate int, handler AudioHandler) error {
	if handler == nil {
		return errors.New("audiocapture: nil handler")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stream != nil {
		return ErrRunning
	}

	client, err := pulse.NewClient(pulse.ClientApplicationName("loudbuzz"))
	if err != nil {
		return fmt.Errorf("connect pulseaudio: %w", err)
	}

	writer := pulse.Float32Writer(func(p []float32) (int, error) {
		handler(p)
		return len(p), nil
	})
	stream, err := client.NewRecord(writer,
		pulse.RecordMono,
		pulse.RecordSampleRate(sampleRate),
		pulse.RecordLatency(pulseLatency),
	)
	if err != nil {
		client.Close()
		return fmt.Errorf("create record stream: %w", err)
	}

	stream.Start()
	b.client = client
	b.stream = stream
	return nil
}

func (b *pulseBackend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stream == nil {
		return nil
	}

	b.stream.Stop()
	b.stream.Close()
	b.client.Close()
	b.stream = nil
	b.client = nil
	return nil
}
