package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/domain"
	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/logger"
)

// stubSource is a minimal AudioSource for analyzer tests.
type stubSource struct {
	rate    int
	fill    func(dst []float64)
	readErr error
	closed  bool
}

func (s *stubSource) SampleRate() int { return s.rate }

func (s *stubSource) ReadWaveform(dst []float64) (int, error) {
	if s.readErr != nil {
		return 0, s.readErr
	}
	if s.fill != nil {
		s.fill(dst)
	}
	return len(dst), nil
}

func (s *stubSource) Close() error {
	s.closed = true
	return nil
}

func TestComputeRMS(t *testing.T) {
	assert.Zero(t, ComputeRMS(nil))
	assert.Zero(t, ComputeRMS(make([]float64, 16)))

	ones := make([]float64, 16)
	for i := range ones {
		ones[i] = 1
	}
	assert.InDelta(t, 1.0, ComputeRMS(ones), 1e-12)
}

func TestComputePeak(t *testing.T) {
	assert.Zero(t, ComputePeak(nil))

	mags := []float64{0.1, 0.7, 0.3}
	assert.InDelta(t, 0.7, ComputePeak(mags), 1e-12)
}

func TestBandAverage(t *testing.T) {
	const sampleRate = 44100
	mags := make([]float64, 1024)

	// Light up exactly the bins covering 60-250 Hz.
	nyquist := float64(sampleRate) / 2
	lo := int(60.0 / nyquist * 1024)
	hi := int(250.0 / nyquist * 1024)
	for i := lo; i < hi; i++ {
		mags[i] = 0.8
	}

	assert.InDelta(t, 0.8, BandAverage(mags, sampleRate, 60, 250), 1e-12)
	assert.Zero(t, BandAverage(mags, sampleRate, 4000, 8000))

	// A range spanning no bins reads 0, not NaN.
	assert.Zero(t, BandAverage(mags, sampleRate, 100, 100))
	assert.Zero(t, BandAverage(nil, sampleRate, 60, 250))
}

func TestExtractBandsSilence(t *testing.T) {
	bands := ExtractBands(make([]float64, 1024), 44100)
	assert.Zero(t, bands.Sub)
	assert.Zero(t, bands.Bass)
	assert.Zero(t, bands.Mid)
	assert.Zero(t, bands.Air)
}

func TestAnalyzerInit(t *testing.T) {
	a := NewSpectralAnalyzer(logger.NewTestLogger(), DefaultSpectralConfig())

	require.NoError(t, a.Init(&stubSource{rate: 48000}))
	assert.Equal(t, 48000, a.SampleRate())

	err := a.Init(&stubSource{rate: 48000})
	assert.ErrorIs(t, err, domain.ErrAlreadyInitialized)
}

func TestAnalyzerInitUnavailable(t *testing.T) {
	a := NewSpectralAnalyzer(logger.NewTestLogger(), DefaultSpectralConfig())
	assert.ErrorIs(t, a.Init(nil), domain.ErrPlatformUnsupported)

	b := NewSpectralAnalyzer(logger.NewTestLogger(), DefaultSpectralConfig())
	assert.ErrorIs(t, b.Init(&stubSource{rate: 0}), domain.ErrPlatformUnsupported)
}

func TestSnapshotLengths(t *testing.T) {
	cfg := DefaultSpectralConfig()
	a := NewSpectralAnalyzer(logger.NewTestLogger(), cfg)
	a.SetDemoMode(true)

	snap := a.Snapshot()
	assert.Len(t, snap.FrequencyMagnitudes, cfg.FFTSize/2)
	assert.Len(t, snap.WaveformSamples, cfg.FFTSize)
	assert.Equal(t, cfg.FFTSize, snap.FFTSize)
	assert.Equal(t, 44100, snap.SampleRate)
}

func TestSnapshotDegradesToSilence(t *testing.T) {
	a := NewSpectralAnalyzer(logger.NewTestLogger(), DefaultSpectralConfig())
	require.NoError(t, a.Init(&stubSource{
		rate:    44100,
		readErr: errors.New("decoder stalled"),
	}))

	snap := a.Snapshot()
	assert.True(t, snap.IsSilent())
	for _, s := range snap.WaveformSamples {
		assert.Zero(t, s)
	}
}

func TestDemoSignalDeterministic(t *testing.T) {
	a := NewSpectralAnalyzer(logger.NewTestLogger(), DefaultSpectralConfig())
	b := NewSpectralAnalyzer(logger.NewTestLogger(), DefaultSpectralConfig())
	a.SetDemoMode(true)
	b.SetDemoMode(true)

	sa := a.Snapshot()
	sb := b.Snapshot()

	for i := range sa.FrequencyMagnitudes {
		assert.InDelta(t, sb.FrequencyMagnitudes[i], sa.FrequencyMagnitudes[i], 1e-12)
	}
	assert.False(t, sa.IsSilent())
}

func TestDemoWaveformWithinRange(t *testing.T) {
	a := NewSpectralAnalyzer(logger.NewTestLogger(), DefaultSpectralConfig())
	a.SetDemoMode(true)

	// The oscillator gains sum above unity; the mix must still honor the
	// ±1 waveform contract as phases drift across windows.
	var lo, hi float64
	for i := 0; i < 50; i++ {
		for _, s := range a.Snapshot().WaveformSamples {
			lo = math.Min(lo, s)
			hi = math.Max(hi, s)
		}
	}
	assert.GreaterOrEqual(t, lo, -1.0)
	assert.LessOrEqual(t, hi, 1.0)
}

func TestDemoSignalSpectrum(t *testing.T) {
	a := NewSpectralAnalyzer(logger.NewTestLogger(), DefaultSpectralConfig())
	a.SetDemoMode(true)

	// Let smoothing settle, then the four oscillator bands should dominate.
	var snap struct{ bands domain.BandEnergies }
	for i := 0; i < 30; i++ {
		snap.bands = a.Snapshot().Bands
	}

	// 110 and 220 Hz fall in the bass band, 440 and 880 Hz in mid bands.
	assert.Greater(t, snap.bands.Bass, snap.bands.Air)
	assert.Greater(t, snap.bands.Mid+snap.bands.LowMid, snap.bands.Treble)
}

func TestFFTSineAtBin(t *testing.T) {
	// A pure sine at an exact bin frequency should concentrate its energy in
	// that bin after the FFT.
	const n = 512
	const bin = 32

	re := make([]float64, n)
	im := make([]float64, n)
	for i := range re {
		re[i] = math.Sin(2 * math.Pi * bin * float64(i) / n)
	}
	fft(re, im)

	mag := make([]float64, n/2)
	peakIdx := 0
	for i := range mag {
		mag[i] = math.Hypot(re[i], im[i])
		if mag[i] > mag[peakIdx] {
			peakIdx = i
		}
	}
	assert.Equal(t, bin, peakIdx)
}
