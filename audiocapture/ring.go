package audiocapture

import "sync"

// RingBuffer is a thread-safe circular buffer for audio samples.
type RingBuffer struct {
	mu       sync.RWMutex
	data     []float32
	writePos int
	size     int
	filled   int // How many samples have been written (up to size)
}

// NewRingBuffer creates a new ring buffer with the given capacity.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{
		data: make([]float32, size),
		size: size,
	}
}

// Write adds samples to the buffer, overwriting the oldest ones.
func (rb *RingBuffer) Write(samples []float32) {
	rb.mu.Lock()
	defer rb.mu.Unlock()

	if rb.size == 0 {
		return
	}
	// Only the tail can survive a write longer than the buffer.
	if len(samples) > rb.size {
		samples = samples[len(samples)-rb.size:]
	}
	for _, s := range samples {
		rb.data[rb.writePos] = s
		rb.writePos = (rb.writePos + 1) % rb.size
	}
	rb.filled = min(rb.filled+len(samples), rb.size)
}

// ReadInto copies the most recent samples into dst, oldest first, and returns
// how many were copied. When fewer than len(dst) samples are buffered only
// dst[:n] is written.
func (rb *RingBuffer) ReadInto(dst []float32) int {
	rb.mu.RLock()
	defer rb.mu.RUnlock()

	n := min(len(dst), rb.filled)
	if n == 0 {
		return 0
	}

	startPos := (rb.writePos - n + rb.size) % rb.size
	for i := 0; i < n; i++ {
		dst[i] = rb.data[(startPos+i)%rb.size]
	}
	return n
}

// Clear empties the buffer.
func (rb *RingBuffer) Clear() {
	rb.mu.Lock()
	defer rb.mu.Unlock()
	rb.writePos = 0
	rb.filled = 0
}
