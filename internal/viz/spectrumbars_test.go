package viz

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/domain"
)

func uniformSnapshot(level float64) domain.AudioSnapshot {
	mags := make([]float64, 1024)
	for i := range mags {
		mags[i] = level
	}
	return domain.AudioSnapshot{
		FrequencyMagnitudes: mags,
		WaveformSamples:     make([]float64, 2048),
		SampleRate:          44100,
		FFTSize:             2048,
	}
}

func TestSpectrumBarsCountClamped(t *testing.T) {
	cfg := DefaultSpectrumBarsConfig()

	cfg.BarCount = 7
	assert.Len(t, NewSpectrumBars(cfg).targets, barCountMin)

	cfg.BarCount = 9999
	assert.Len(t, NewSpectrumBars(cfg).targets, barCountMax)
}

func TestSpectrumBarsLifecycle(t *testing.T) {
	v := NewSpectrumBars(DefaultSpectrumBarsConfig())
	fb := NewFrameBuffer(320, 240)

	require.NoError(t, v.Initialize(context.Background(), fb))
	assert.ErrorIs(t, v.Initialize(context.Background(), fb), domain.ErrAlreadyInitialized)

	v.Dispose()
	v.Dispose()
	assert.ErrorIs(t, v.Initialize(context.Background(), fb), domain.ErrVisualizerDisposed)
}

func TestSpectrumBarsTargetsFromUniformSpectrum(t *testing.T) {
	v := NewSpectrumBars(DefaultSpectrumBarsConfig())
	require.NoError(t, v.Initialize(context.Background(), NewFrameBuffer(320, 240)))

	v.Update(uniformSnapshot(0.5))

	// Every bar whose frequency range spans at least one bin averages to the
	// uniform level; empty low-frequency ranges read zero.
	nonZero := 0
	for _, target := range v.targets {
		if target > 0 {
			assert.InDelta(t, 0.5, target, 1e-12)
			nonZero++
		}
	}
	assert.Greater(t, nonZero, len(v.targets)/2)
}

func TestSpectrumBarsTargetsMonotonicInLevel(t *testing.T) {
	v := NewSpectrumBars(DefaultSpectrumBarsConfig())
	require.NoError(t, v.Initialize(context.Background(), NewFrameBuffer(320, 240)))

	// Raising a uniform spectrum never lowers any bar's target.
	levels := []float64{0, 0.25, 0.5, 0.75, 1}
	prev := make([]float64, v.cfg.BarCount)
	for _, level := range levels {
		v.Update(uniformSnapshot(level))
		for i, target := range v.targets {
			assert.GreaterOrEqual(t, target, prev[i])
		}
		copy(prev, v.targets)
	}
}

func TestSpectrumBarsSmoothingConvergence(t *testing.T) {
	cfg := DefaultSpectrumBarsConfig()
	v := NewSpectrumBars(cfg)
	require.NoError(t, v.Initialize(context.Background(), NewFrameBuffer(320, 240)))

	v.Update(uniformSnapshot(1.0))

	// Pick a bar with a non-zero target and verify the exponential law
	// height_k = target - target*smoothing^k across renders.
	bar := -1
	for i, target := range v.targets {
		if target > 0 {
			bar = i
			break
		}
	}
	require.GreaterOrEqual(t, bar, 0)
	target := v.targets[bar]

	for k := 1; k <= 20; k++ {
		v.Render()
		expected := target - target*math.Pow(cfg.Smoothing, float64(k))
		assert.InDelta(t, expected, v.heights[bar], 1e-9)
	}
	assert.InDelta(t, target, v.heights[bar], 1e-6)
}

func TestSpectrumBarsBinEdgesMonotonic(t *testing.T) {
	v := NewSpectrumBars(DefaultSpectrumBarsConfig())
	require.NoError(t, v.Initialize(context.Background(), NewFrameBuffer(320, 240)))
	v.Update(uniformSnapshot(0.5))

	require.Len(t, v.binEdges, v.cfg.BarCount+1)
	for i := 1; i < len(v.binEdges); i++ {
		assert.GreaterOrEqual(t, v.binEdges[i], v.binEdges[i-1])
	}
	assert.LessOrEqual(t, v.binEdges[len(v.binEdges)-1], 1024)
}

func TestSpectrumBarsSetFrequencyRange(t *testing.T) {
	v := NewSpectrumBars(DefaultSpectrumBarsConfig())
	require.NoError(t, v.Initialize(context.Background(), NewFrameBuffer(320, 240)))
	v.Update(uniformSnapshot(0.5))

	before := make([]int, len(v.binEdges))
	copy(before, v.binEdges)

	v.SetFrequencyRange(100, 5000)
	assert.NotEqual(t, before, v.binEdges)

	// Invalid ranges are ignored.
	v.SetFrequencyRange(5000, 100)
	assert.InDelta(t, 100, v.cfg.MinFrequency, 1e-12)
	assert.InDelta(t, 5000, v.cfg.MaxFrequency, 1e-12)
}

func TestSpectrumBarsLEDRender(t *testing.T) {
	cfg := DefaultSpectrumBarsConfig()
	cfg.Style = BarStyleLED
	v := NewSpectrumBars(cfg)
	fb := NewFrameBuffer(320, 240)
	require.NoError(t, v.Initialize(context.Background(), fb))

	v.Update(uniformSnapshot(0.8))
	for i := 0; i < 10; i++ {
		v.Render()
	}

	// Something must have been lit above the background.
	img := fb.Image()
	lit := false
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 30 || img.Pix[i+1] > 30 {
			lit = true
			break
		}
	}
	assert.True(t, lit)
}

func TestSpectrumBarsLEDLitCount(t *testing.T) {
	// lit = ceil(height * segments): a tiny non-zero height lights one
	// segment, full height lights all of them.
	segs := 20
	assert.Equal(t, 1, int(math.Ceil(0.01*float64(segs))))
	assert.Equal(t, segs, int(math.Ceil(1.0*float64(segs))))
	assert.Equal(t, 10, int(math.Ceil(0.5*float64(segs))))
	assert.Equal(t, 0, int(math.Ceil(0.0*float64(segs))))
}

func TestSpectrumBarsUpdateIgnoredBeforeInit(t *testing.T) {
	v := NewSpectrumBars(DefaultSpectrumBarsConfig())
	assert.NotPanics(t, func() {
		v.Update(uniformSnapshot(0.5))
		v.Render()
		v.Resize(100, 100)
	})
}
