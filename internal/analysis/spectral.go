package analysis

import (
	"log/slog"
	"math"
	"time"

	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/domain"
	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/ports"
)

// SpectralConfig holds the fixed analysis window configuration.
type SpectralConfig struct {
	// FFTSize is the analysis window size. Must be a power of two.
	FFTSize int

	// Smoothing is the temporal smoothing constant (0..1). Each magnitude bin
	// is blended as smoothed = prev*Smoothing + current*(1-Smoothing).
	Smoothing float64

	// DBFloor and DBCeiling bound the decibel window that magnitudes are
	// normalized into.
	DBFloor   float64
	DBCeiling float64
}

// DefaultSpectralConfig returns the default analyzer configuration.
func DefaultSpectralConfig() SpectralConfig {
	return SpectralConfig{
		FFTSize:   2048,
		Smoothing: 0.8,
		DBFloor:   -90,
		DBCeiling: -10,
	}
}

// demoOscillator is one voice of the deterministic demo signal.
type demoOscillator struct {
	freq  float64
	gain  float64
	phase float64
}

// SpectralAnalyzer wraps an AudioSource and produces one AudioSnapshot per
// tick: normalized frequency magnitudes, the raw waveform window, per-band
// energies, peak and RMS.
//
// The analyzer keeps no snapshot history; any history a consumer needs is the
// consumer's responsibility. All getters degrade to zero-filled data rather
// than returning errors once Init has succeeded.
type SpectralAnalyzer struct {
	logger *slog.Logger
	cfg    SpectralConfig

	source      ports.AudioSource
	sampleRate  int
	initialized bool
	demoMode    bool

	oscillators []demoOscillator

	// Scratch buffers, allocated once. Slice lengths are fixed for the life
	// of the analyzer so snapshot array lengths never change.
	window   []float64
	waveform []float64
	re, im   []float64
	smoothed []float64
}

// NewSpectralAnalyzer creates an analyzer with the given configuration.
// Invalid FFT sizes fall back to the default 2048.
func NewSpectralAnalyzer(logger *slog.Logger, cfg SpectralConfig) *SpectralAnalyzer {
	if !isPowerOfTwo(cfg.FFTSize) {
		cfg.FFTSize = DefaultSpectralConfig().FFTSize
	}
	if cfg.Smoothing < 0 || cfg.Smoothing >= 1 {
		cfg.Smoothing = DefaultSpectralConfig().Smoothing
	}

	a := &SpectralAnalyzer{
		logger:     logger,
		cfg:        cfg,
		sampleRate: 44100,
		window:     make([]float64, cfg.FFTSize),
		waveform:   make([]float64, cfg.FFTSize),
		re:         make([]float64, cfg.FFTSize),
		im:         make([]float64, cfg.FFTSize),
		smoothed:   make([]float64, cfg.FFTSize/2),
		oscillators: []demoOscillator{
			{freq: 110, gain: 0.5},
			{freq: 220, gain: 0.3},
			{freq: 440, gain: 0.2},
			{freq: 880, gain: 0.1},
		},
	}
	hannWindow(a.window)

	return a
}

// Init attaches the analyzer to an audio source.
// Returns domain.ErrPlatformUnsupported when the analysis primitive is
// unavailable (nil source or one that reports no sample rate). The failure is
// fatal to this analyzer; demo mode remains usable.
func (a *SpectralAnalyzer) Init(source ports.AudioSource) error {
	if a.initialized {
		return domain.ErrAlreadyInitialized
	}
	if source == nil || source.SampleRate() <= 0 {
		a.logger.Error("audio analysis primitive unavailable")
		return domain.ErrPlatformUnsupported
	}

	a.source = source
	a.sampleRate = source.SampleRate()
	a.initialized = true

	a.logger.Debug("spectral analyzer initialized",
		slog.Int("fft_size", a.cfg.FFTSize),
		slog.Int("sample_rate", a.sampleRate))

	return nil
}

// SetDemoMode toggles the deterministic 4-oscillator demo signal.
// With demo mode on, snapshots are produced without a live source.
func (a *SpectralAnalyzer) SetDemoMode(enabled bool) {
	a.demoMode = enabled
}

// DemoMode reports whether demo mode is enabled.
func (a *SpectralAnalyzer) DemoMode() bool {
	return a.demoMode
}

// SampleRate returns the sample rate snapshots are produced at.
func (a *SpectralAnalyzer) SampleRate() int {
	return a.sampleRate
}

// Snapshot returns an AudioSnapshot reflecting the current instant.
// It is synchronous and never fails: source read errors degrade to
// zero-filled data so effects must tolerate all-zero snapshots.
func (a *SpectralAnalyzer) Snapshot() domain.AudioSnapshot {
	a.fillWaveform()

	// Windowed copy into the FFT scratch buffers.
	for i := range a.waveform {
		a.re[i] = a.waveform[i] * a.window[i]
		a.im[i] = 0
	}
	fft(a.re, a.im)

	bins := a.cfg.FFTSize / 2
	mags := make([]float64, bins)
	dbRange := a.cfg.DBCeiling - a.cfg.DBFloor

	for i := 0; i < bins; i++ {
		// Amplitude normalized for window size, then mapped through the
		// dB floor/ceiling window into 0..1.
		amp := 2 * math.Hypot(a.re[i], a.im[i]) / float64(a.cfg.FFTSize)
		db := a.cfg.DBFloor
		if amp > 0 {
			db = 20 * math.Log10(amp)
		}
		norm := (db - a.cfg.DBFloor) / dbRange
		norm = clamp01(norm)

		a.smoothed[i] = a.smoothed[i]*a.cfg.Smoothing + norm*(1-a.cfg.Smoothing)
		mags[i] = a.smoothed[i]
	}

	waveform := make([]float64, len(a.waveform))
	copy(waveform, a.waveform)

	return domain.AudioSnapshot{
		FrequencyMagnitudes: mags,
		WaveformSamples:     waveform,
		SampleRate:          a.sampleRate,
		FFTSize:             a.cfg.FFTSize,
		Bands:               ExtractBands(mags, a.sampleRate),
		Peak:                ComputePeak(mags),
		RMS:                 ComputeRMS(mags),
		Timestamp:           time.Now(),
	}
}

// fillWaveform fills the waveform scratch buffer from the demo generator,
// the source, or zeros.
func (a *SpectralAnalyzer) fillWaveform() {
	if a.demoMode {
		a.generateDemoWaveform()
		return
	}

	for i := range a.waveform {
		a.waveform[i] = 0
	}
	if !a.initialized {
		return
	}

	if _, err := a.source.ReadWaveform(a.waveform); err != nil {
		// Degrade to silence, never propagate.
		a.logger.Debug("waveform read failed", slog.Any("error", err))
		for i := range a.waveform {
			a.waveform[i] = 0
		}
	}
}

// generateDemoWaveform advances the 4-oscillator demo signal by one window.
// Phases accumulate across calls so the signal is continuous and the output
// deterministic for a given call sequence.
func (a *SpectralAnalyzer) generateDemoWaveform() {
	step := 2 * math.Pi / float64(a.sampleRate)
	for i := range a.waveform {
		var sample float64
		for o := range a.oscillators {
			osc := &a.oscillators[o]
			sample += osc.gain * math.Sin(osc.phase+osc.freq*step*float64(i))
		}
		// The gains sum above unity, so hard-limit the mix to the waveform
		// contract of ±1.
		if sample > 1 {
			sample = 1
		} else if sample < -1 {
			sample = -1
		}
		a.waveform[i] = sample
	}
	// Advance phases by one window length.
	for o := range a.oscillators {
		osc := &a.oscillators[o]
		osc.phase = math.Mod(osc.phase+osc.freq*step*float64(len(a.waveform)), 2*math.Pi)
	}
}

// ExtractBands maps magnitude bins to the seven named bands by linear
// frequency-to-bin conversion, averaging magnitude over each band's bin
// range. A band whose range spans no bins reads 0.
func ExtractBands(mags []float64, sampleRate int) domain.BandEnergies {
	return domain.BandEnergies{
		Sub:     BandAverage(mags, sampleRate, domain.BandSubLow, domain.BandSubHigh),
		Bass:    BandAverage(mags, sampleRate, domain.BandSubHigh, domain.BandBassHigh),
		LowMid:  BandAverage(mags, sampleRate, domain.BandBassHigh, domain.BandLowMidHigh),
		Mid:     BandAverage(mags, sampleRate, domain.BandLowMidHigh, domain.BandMidHigh),
		HighMid: BandAverage(mags, sampleRate, domain.BandMidHigh, domain.BandHighMid),
		Treble:  BandAverage(mags, sampleRate, domain.BandHighMid, domain.BandTrebleHigh),
		Air:     BandAverage(mags, sampleRate, domain.BandTrebleHigh, domain.BandAirHigh),
	}
}

// BandAverage returns the mean magnitude over [lowHz, highHz).
// Bin index conversion is linear: bin = freq/(sampleRate/2) * binCount.
func BandAverage(mags []float64, sampleRate int, lowHz, highHz float64) float64 {
	if len(mags) == 0 || sampleRate <= 0 {
		return 0
	}

	nyquist := float64(sampleRate) / 2
	lo := int(lowHz / nyquist * float64(len(mags)))
	hi := int(highHz / nyquist * float64(len(mags)))

	if lo < 0 {
		lo = 0
	}
	if hi > len(mags) {
		hi = len(mags)
	}
	if hi <= lo {
		return 0
	}

	var sum float64
	for i := lo; i < hi; i++ {
		sum += mags[i]
	}
	return sum / float64(hi-lo)
}

// ComputePeak returns the maximum normalized magnitude.
func ComputePeak(mags []float64) float64 {
	var peak float64
	for _, m := range mags {
		if m > peak {
			peak = m
		}
	}
	return peak
}

// ComputeRMS returns the root mean square of the normalized magnitudes.
func ComputeRMS(mags []float64) float64 {
	if len(mags) == 0 {
		return 0
	}
	var sum float64
	for _, m := range mags {
		sum += m * m
	}
	return math.Sqrt(sum / float64(len(mags)))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
