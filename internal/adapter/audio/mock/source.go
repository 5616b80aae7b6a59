// Package mock provides a mock implementation of the AudioSource interface.
// This is used for testing the analyzer and application wiring without
// decoding real audio files.
package mock

import (
	"math"
	"sync"

	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/domain"
	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/ports"
)

// Source is a mock AudioSource producing a continuous sine wave.
//
// Thread-safety: this implementation is thread-safe.
type Source struct {
	mu sync.Mutex

	rate   int
	freq   float64
	gain   float64
	phase  float64
	closed bool

	// Behavior configuration (for testing error scenarios)
	failReads  bool
	zeroRate   bool
	readsCount int
}

// NewSource creates a mock source at 44100 Hz emitting a 440 Hz tone.
func NewSource() *Source {
	return &Source{rate: 44100, freq: 440, gain: 0.5}
}

// SetTone reconfigures the emitted sine wave.
func (s *Source) SetTone(freq, gain float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.freq = freq
	s.gain = gain
}

// SetFailReads configures the mock to fail ReadWaveform (for testing).
func (s *Source) SetFailReads(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failReads = fail
}

// SetZeroRate configures the mock to report no sample rate, which makes it
// look unavailable to the analyzer (for testing).
func (s *Source) SetZeroRate(zero bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zeroRate = zero
}

// ReadCount returns how many ReadWaveform calls have been made.
func (s *Source) ReadCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readsCount
}

// SampleRate returns the mock sample rate.
func (s *Source) SampleRate() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.zeroRate {
		return 0
	}
	return s.rate
}

// ReadWaveform fills dst with the next window of the sine wave.
func (s *Source) ReadWaveform(dst []float64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return 0, domain.ErrSourceClosed
	}
	s.readsCount++
	if s.failReads {
		return 0, domain.NewSourceError("read", "", domain.ErrNotInitialized)
	}

	step := 2 * math.Pi * s.freq / float64(s.rate)
	for i := range dst {
		dst[i] = s.gain * math.Sin(s.phase+step*float64(i))
	}
	s.phase = math.Mod(s.phase+step*float64(len(dst)), 2*math.Pi)
	return len(dst), nil
}

// Close marks the source closed. Idempotent.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Verify interface implementation at compile time.
var _ ports.AudioSource = (*Source)(nil)
