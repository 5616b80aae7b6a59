// Package domain contains the core models of the visualization engine with no
// external dependencies: audio analysis snapshots, visualizer registry data
// and beat state.
package domain

import (
	"time"
)

// BandEnergies holds the average normalized magnitude of the seven named
// frequency bands. All values are in the 0..1 range.
type BandEnergies struct {
	// Sub covers 20-60 Hz
	Sub float64

	// Bass covers 60-250 Hz
	Bass float64

	// LowMid covers 250-500 Hz
	LowMid float64

	// Mid covers 500-2000 Hz
	Mid float64

	// HighMid covers 2000-4000 Hz
	HighMid float64

	// Treble covers 4000-8000 Hz
	Treble float64

	// Air covers 8000-20000 Hz
	Air float64
}

// Band frequency edges in Hz, shared by the analyzer and the effects.
const (
	BandSubLow     = 20.0
	BandSubHigh    = 60.0
	BandBassHigh   = 250.0
	BandLowMidHigh = 500.0
	BandMidHigh    = 2000.0
	BandHighMid    = 4000.0
	BandTrebleHigh = 8000.0
	BandAirHigh    = 20000.0
)

// AudioSnapshot is one immutable frame of audio analysis data.
// The spectral analyzer produces exactly one per tick; consumers must treat
// it as read-only and copy anything they want to keep across frames.
//
// For a fixed analyzer configuration the slice lengths never change:
// FrequencyMagnitudes has FFTSize/2 entries and WaveformSamples has FFTSize
// entries.
type AudioSnapshot struct {
	// FrequencyMagnitudes are normalized magnitude bins (0..1), low to high.
	FrequencyMagnitudes []float64

	// WaveformSamples are time-domain samples in the -1..1 range.
	WaveformSamples []float64

	// SampleRate is the source sample rate in Hz.
	SampleRate int

	// FFTSize is the analysis window size that produced this snapshot.
	FFTSize int

	// Bands are the derived per-band energies.
	Bands BandEnergies

	// Peak is the maximum normalized magnitude (0..1).
	Peak float64

	// RMS is the root mean square of the normalized magnitudes (0..1).
	RMS float64

	// Timestamp is when the snapshot was taken.
	Timestamp time.Time
}

// IsSilent reports whether the snapshot carries no signal at all.
func (s AudioSnapshot) IsSilent() bool {
	return s.Peak == 0 && s.RMS == 0
}

// BinCount returns the number of frequency magnitude bins.
func (s AudioSnapshot) BinCount() int {
	return len(s.FrequencyMagnitudes)
}

// BeatState is the output of a beat detector for one frame.
// Each effect that opts into beat detection owns its own detector and state;
// beat state is never shared globally.
type BeatState struct {
	// Intensity is the current beat intensity (0..1). It is set on the
	// triggering frame and decays every frame afterwards.
	Intensity float64

	// IsBeat is true only on the frame that triggered the beat.
	IsBeat bool

	// LastBeat is when the most recent beat fired.
	LastBeat time.Time
}
