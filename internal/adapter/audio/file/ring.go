package file

import "sync"

// Ring is a thread-safe circular sample buffer. The decode goroutine writes
// into it at playback pace and the analyzer reads the most recent window out
// of it, so neither side ever blocks the other.
type Ring struct {
	mu   sync.Mutex
	buf  []float64
	w    int
	fill int
}

// NewRing creates a ring holding size samples.
func NewRing(size int) *Ring {
	return &Ring{buf: make([]float64, size)}
}

// Write appends samples, overwriting the oldest when full.
func (r *Ring) Write(samples []float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range samples {
		r.buf[r.w] = s
		r.w = (r.w + 1) % len(r.buf)
	}
	r.fill += len(samples)
	if r.fill > len(r.buf) {
		r.fill = len(r.buf)
	}
}

// ReadLatest copies the most recent len(dst) samples into dst in
// chronological order and returns how many were written. With fewer samples
// buffered than requested only the head of dst is filled.
func (r *Ring) ReadLatest(dst []float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(dst)
	if n > r.fill {
		n = r.fill
	}
	if n == 0 {
		return 0
	}

	start := (r.w - n + len(r.buf)) % len(r.buf)
	for i := 0; i < n; i++ {
		dst[i] = r.buf[(start+i)%len(r.buf)]
	}
	return n
}

// Clear resets the ring.
func (r *Ring) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.w = 0
	r.fill = 0
}
