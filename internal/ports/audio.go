// Package ports define interfaces for dependency inversion.
// These interfaces allow the engine core to remain independent of the audio
// and UI frameworks that feed it.
package ports

// AudioSource is the interface for the audio analysis collaborator.
// It yields fixed-length time-domain sample windows on demand; the spectral
// analyzer wraps one and derives everything else (magnitudes, bands, peak,
// RMS) from what it reads here.
//
// Implementations must be safe for use from the single frame-driven caller
// plus whatever internal goroutines they own for decoding.
type AudioSource interface {
	// SampleRate returns the source sample rate in Hz.
	// A source that reports 0 is considered unavailable.
	SampleRate() int

	// ReadWaveform fills dst with the most recent time-domain samples in the
	// -1..1 range and returns the number of samples written. It never blocks:
	// when fewer samples than len(dst) are available the remainder is left
	// zeroed.
	ReadWaveform(dst []float64) (int, error)

	// Close releases the source. Reads after Close return ErrSourceClosed.
	Close() error
}
