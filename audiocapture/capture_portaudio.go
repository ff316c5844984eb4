//go:build cgo

package audiocapture

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// framesPerBuffer is the PortAudio callback block size. It is independent of
// the analyser window, which is refilled from the ring buffer.
const framesPerBuffer = 512

func init() {
	Register("portaudio", func() (Backend, error) {
		return &portaudioBackend{}, nil
	})
}

// portaudioBackend captures the default input device through PortAudio.
type portaudioBackend struct {
	mu     sync.Mutex
	stream *portaudio.Stream
}

func (b *portaudioBackend) Start(sampleRate int, handler AudioHandler) error {
	if handler == nil {
		return errors.New("audiocapture: nil handler")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stream != nil {
		return ErrRunning
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialize portaudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(sampleRate), framesPerBuffer, func(in []float32) {
		handler(in)
	})
	if err != nil {
		_ = portaudio.Terminate()
		return fmt.Errorf("open default input: %w", err)
	}

	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return fmt.Errorf("start input stream: %w", err)
	}

	b.stream = stream
	return nil
}

func (b *portaudioBackend) Stop() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.stream == nil {
		return nil
	}

	err := errors.Join(
		b.stream.Stop(),
		b.stream.Close(),
		portaudio.Terminate(),
	)
	b.stream = nil
	return err
}
