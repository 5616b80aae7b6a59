package viz

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/domain"
)

// rampCrossingAt builds a waveform that crosses zero upward at exactly the
// given sample index.
func rampCrossingAt(n, crossing int) []float64 {
	w := make([]float64, n)
	for i := range w {
		w[i] = float64(i-crossing) / float64(n)
	}
	return w
}

func TestOscilloscopeTriggerRising(t *testing.T) {
	v := NewOscilloscope(DefaultOscilloscopeConfig())

	// w[199] < 0 and w[200] >= 0: the sweep starts 10 samples before the
	// crossing.
	samples := rampCrossingAt(512, 200)
	idx := v.findTrigger(samples, time.Now())
	assert.Equal(t, 190, idx)
}

func TestOscilloscopeTriggerFalling(t *testing.T) {
	cfg := DefaultOscilloscopeConfig()
	cfg.Trigger = TriggerFalling
	v := NewOscilloscope(cfg)

	samples := rampCrossingAt(512, 200)
	for i := range samples {
		samples[i] = -samples[i]
	}
	idx := v.findTrigger(samples, time.Now())
	assert.Equal(t, 190, idx)
}

func TestOscilloscopeTriggerOff(t *testing.T) {
	cfg := DefaultOscilloscopeConfig()
	cfg.Trigger = TriggerOff
	v := NewOscilloscope(cfg)

	idx := v.findTrigger(rampCrossingAt(512, 200), time.Now())
	assert.Equal(t, 0, idx)
}

func TestOscilloscopeTriggerFallback(t *testing.T) {
	v := NewOscilloscope(DefaultOscilloscopeConfig())

	// No crossing in the first half: the sweep starts at the buffer head.
	flat := make([]float64, 512)
	for i := range flat {
		flat[i] = 0.5
	}
	assert.Equal(t, 0, v.findTrigger(flat, time.Now()))
}

func TestOscilloscopeTriggerNearStart(t *testing.T) {
	v := NewOscilloscope(DefaultOscilloscopeConfig())

	// Crossing closer to the head than the pre-trigger offset clamps at 0.
	samples := rampCrossingAt(512, 5)
	assert.Equal(t, 0, v.findTrigger(samples, time.Now()))
}

func TestOscilloscopeTriggerHoldoff(t *testing.T) {
	v := NewOscilloscope(DefaultOscilloscopeConfig())
	now := time.Now()

	samples := rampCrossingAt(512, 200)
	require.Equal(t, 190, v.findTrigger(samples, now))

	// Within the holdoff the previous lock is reused even though the signal
	// now crosses elsewhere.
	moved := rampCrossingAt(512, 100)
	assert.Equal(t, 190, v.findTrigger(moved, now.Add(5*time.Millisecond)))

	// After the holdoff the new crossing wins.
	assert.Equal(t, 90, v.findTrigger(moved, now.Add(20*time.Millisecond)))
}

func TestOscilloscopeRingWraps(t *testing.T) {
	v := NewOscilloscope(DefaultOscilloscopeConfig())
	require.NoError(t, v.Initialize(context.Background(), NewFrameBuffer(320, 240)))

	// Two updates of 300 samples overflow the 512-slot ring; linearize must
	// return the most recent 512 in order.
	first := make([]float64, 300)
	second := make([]float64, 300)
	for i := range first {
		first[i] = 1
		second[i] = 2
	}
	v.Update(domain.AudioSnapshot{WaveformSamples: first, SampleRate: 44100})
	v.Update(domain.AudioSnapshot{WaveformSamples: second, SampleRate: 44100})

	lin := v.linearize()
	require.Len(t, lin, 512)
	assert.InDelta(t, 1, lin[0], 1e-12)
	assert.InDelta(t, 2, lin[511], 1e-12)
}

func TestOscilloscopeWindowClamped(t *testing.T) {
	v := NewOscilloscope(DefaultOscilloscopeConfig())
	require.NoError(t, v.Initialize(context.Background(), NewFrameBuffer(320, 240)))

	// 512 samples at 44.1kHz is ~11.6ms, inside the clamp range.
	v.Update(domain.AudioSnapshot{WaveformSamples: make([]float64, 512), SampleRate: 44100})
	assert.InDelta(t, 11.6, v.WindowMillis(), 0.1)

	// A very low rate would read as seconds; it clamps at 500ms.
	v.sampleRate = 100
	assert.InDelta(t, 500, v.WindowMillis(), 1e-9)

	// No rate yet reads the minimum.
	v.sampleRate = 0
	assert.InDelta(t, 10, v.WindowMillis(), 1e-9)
}

func TestOscilloscopeDisplayLimitFollowsWindow(t *testing.T) {
	v := NewOscilloscope(DefaultOscilloscopeConfig())

	// At 44.1kHz the full 512-sample sweep fits inside the window.
	v.sampleRate = 44100
	assert.Equal(t, 512, v.displayLimit(512))

	// At 100Hz the 500ms window cap allows only 50 samples on screen.
	v.sampleRate = 100
	assert.Equal(t, 50, v.displayLimit(512))

	// No rate yet leaves the sweep untouched.
	v.sampleRate = 0
	assert.Equal(t, 512, v.displayLimit(512))
}

func TestOscilloscopeRenderSweepBoundedByWindow(t *testing.T) {
	v := NewOscilloscope(DefaultOscilloscopeConfig())
	require.NoError(t, v.Initialize(context.Background(), NewFrameBuffer(64, 64)))

	wave := make([]float64, 512)
	for i := range wave {
		wave[i] = 0.5
	}
	v.Update(domain.AudioSnapshot{WaveformSamples: wave, SampleRate: 100})
	v.Render()

	// The recorded sweep is trimmed to the clamped time window.
	require.Len(t, v.history, 1)
	assert.Len(t, v.history[0].samples, 50)
}

func TestOscilloscopeRenderDrawsTrace(t *testing.T) {
	v := NewOscilloscope(DefaultOscilloscopeConfig())
	fb := NewFrameBuffer(320, 240)
	require.NoError(t, v.Initialize(context.Background(), fb))

	wave := make([]float64, 512)
	for i := range wave {
		wave[i] = 0.8
	}
	v.Update(domain.AudioSnapshot{WaveformSamples: wave, SampleRate: 44100})
	v.Render()

	img := fb.Image()
	lit := false
	for i := 1; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 0 {
			lit = true
			break
		}
	}
	assert.True(t, lit, "render must draw the trace")
	assert.Len(t, v.history, 1)
}

func TestOscilloscopeHistoryBounded(t *testing.T) {
	v := NewOscilloscope(DefaultOscilloscopeConfig())
	require.NoError(t, v.Initialize(context.Background(), NewFrameBuffer(64, 64)))

	v.Update(domain.AudioSnapshot{WaveformSamples: make([]float64, 512), SampleRate: 44100})
	for i := 0; i < 10; i++ {
		v.Render()
	}
	assert.LessOrEqual(t, len(v.history), scopeHistoryDepth)
}

func TestOscilloscopeDisposeIdempotent(t *testing.T) {
	v := NewOscilloscope(DefaultOscilloscopeConfig())
	require.NoError(t, v.Initialize(context.Background(), NewFrameBuffer(64, 64)))

	v.Dispose()
	v.Dispose()
	assert.NotPanics(t, func() { v.Render() })
}
