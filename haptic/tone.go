// Package haptic provides actuators for hosts without a vibration motor.
package haptic

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

const (
	toneSampleRate = 44100
	toneFreq       = 150.0 // Hz, low enough to feel like a buzz on laptop speakers
	toneVolume     = 0.6
	toneDecay      = 8.0
)

// Tone is an audible stand-in for a vibration pulse. The audio device is
// opened on first use.
type Tone struct {
	once  sync.Once
	ctx   *oto.Context
	err   error
	Freq  float64
	Decay float64
}

// NewTone returns a Tone actuator with the default buzz.
func NewTone() *Tone {
	return &Tone{Freq: toneFreq, Decay: toneDecay}
}

func (t *Tone) init() {
	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   toneSampleRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   50 * time.Millisecond,
	})
	if err != nil {
		t.err = fmt.Errorf("create oto context: %w", err)
		slog.Warn("tone actuator unavailable", "error", err)
		return
	}
	<-ready
	t.ctx = ctx
}

// Supported reports whether an audio output device could be opened.
func (t *Tone) Supported() bool {
	t.once.Do(t.init)
	return t.ctx != nil
}

// Pulse plays a buzz of duration d and returns without waiting for it.
func (t *Tone) Pulse(d time.Duration) error {
	t.once.Do(t.init)
	if t.ctx == nil {
		return t.err
	}

	player := t.ctx.NewPlayer(bytes.NewReader(GenerateTone(toneSampleRate, t.Freq, d, toneVolume, t.Decay)))
	player.Play()
	go func() {
		for player.IsPlaying() {
			time.Sleep(10 * time.Millisecond)
		}
		if err := player.Close(); err != nil {
			slog.Debug("close tone player", "error", err)
		}
	}()
	return nil
}

// GenerateTone renders a decaying sine as mono signed 16-bit little-endian PCM.
func GenerateTone(sampleRate int, freq float64, d time.Duration, volume, decay float64) []byte {
	n := int(float64(sampleRate) * d.Seconds())
	buf := make([]byte, n*2)
	for i := 0; i < n; i++ {
		t := float64(i) / float64(sampleRate)
		envelope := math.Exp(-t * decay)
		sample := int16(math.Sin(2*math.Pi*freq*t) * 32767 * volume * envelope)
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(sample))
	}
	return buf
}
