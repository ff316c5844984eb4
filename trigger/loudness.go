package trigger

import (
	"math"

	"github.com/viterin/vek"
)

// center is the analyser byte value of a zero sample.
const center = 128

// Loudness returns the RMS amplitude of a 128-centred waveform buffer, on a
// 0..127.5 scale. An empty buffer is silent.
func Loudness(buf []byte) float64 {
	return loudness(buf, make([]float64, len(buf)))
}

// loudness is Loudness with a caller-owned scratch slice of at least len(buf).
func loudness(buf []byte, scratch []float64) float64 {
	if len(buf) == 0 {
		return 0
	}
	x := scratch[:len(buf)]
	for i, v := range buf {
		x[i] = float64(int(v) - center)
	}
	return math.Sqrt(vek.Dot(x, x) / float64(len(x)))
}
