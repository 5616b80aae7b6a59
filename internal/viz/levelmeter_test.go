package viz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/domain"
)

func TestLinearToDB(t *testing.T) {
	assert.InDelta(t, 0, linearToDB(1.0), 1e-12)
	assert.InDelta(t, -20, linearToDB(0.1), 1e-9)

	// Silence and negative input pin at the floor, never -Inf.
	assert.InDelta(t, meterDBFloor, linearToDB(0), 1e-12)
	assert.InDelta(t, meterDBFloor, linearToDB(-0.5), 1e-12)
	assert.InDelta(t, meterDBFloor, linearToDB(1e-9), 1e-12)
}

func TestNormalizeDB(t *testing.T) {
	// The display window runs -20dB..+3dB.
	assert.InDelta(t, 0, normalizeDB(-20), 1e-12)
	assert.InDelta(t, 1, normalizeDB(3), 1e-12)
	assert.InDelta(t, 0, normalizeDB(-60), 1e-12, "below-window levels pin at zero")
	assert.InDelta(t, 1, normalizeDB(10), 1e-12, "above-window levels pin at one")
}

func TestRMSOfStrides(t *testing.T) {
	// Interleaved stereo: left channel silent, right at full scale.
	samples := []float64{0, 1, 0, -1, 0, 1, 0, -1}
	assert.InDelta(t, 0, rmsOf(samples, 0, 2), 1e-12)
	assert.InDelta(t, 1, rmsOf(samples, 1, 2), 1e-12)
	assert.Zero(t, rmsOf(nil, 0, 1))
}

func TestLevelMeterChannels(t *testing.T) {
	cfg := DefaultLevelMeterConfig()
	assert.Equal(t, 2, cfg.Channels)

	mono := cfg
	mono.Channels = 1
	v := NewLevelMeter(mono)
	assert.Len(t, v.channels, 1)

	v.SetChannels(2)
	assert.Len(t, v.channels, 2)

	// Invalid channel counts are ignored.
	v.SetChannels(5)
	assert.Len(t, v.channels, 2)
}

func TestLevelMeterStereoSplit(t *testing.T) {
	v := NewLevelMeter(DefaultLevelMeterConfig())
	require.NoError(t, v.Initialize(context.Background(), NewFrameBuffer(200, 200)))

	// Even samples (left) loud, odd samples (right) silent.
	samples := make([]float64, 2048)
	for i := 0; i < len(samples); i += 2 {
		samples[i] = 0.9
	}
	v.Update(domain.AudioSnapshot{WaveformSamples: samples, SampleRate: 44100})

	assert.Greater(t, v.channels[0].target, 0.5)
	assert.Zero(t, v.channels[1].target)
}

func TestLevelMeterNeedleStaysBounded(t *testing.T) {
	v := NewLevelMeter(DefaultLevelMeterConfig())
	fb := NewFrameBuffer(200, 200)
	require.NoError(t, v.Initialize(context.Background(), fb))

	// Hammer the meter with clipping input; the needle must hold [0,1].
	loud := make([]float64, 2048)
	for i := range loud {
		loud[i] = 2.5
	}
	for frame := 0; frame < 120; frame++ {
		v.Update(domain.AudioSnapshot{WaveformSamples: loud, SampleRate: 44100})
		v.Render()
		for i := range v.channels {
			val := v.channels[i].needle.Value()
			assert.GreaterOrEqual(t, val, 0.0)
			assert.LessOrEqual(t, val, 1.0)
		}
	}

	// And with silence it falls back toward zero without undershooting.
	for frame := 0; frame < 120; frame++ {
		v.Update(domain.AudioSnapshot{WaveformSamples: make([]float64, 2048), SampleRate: 44100})
		v.Render()
		for i := range v.channels {
			assert.GreaterOrEqual(t, v.channels[i].needle.Value(), 0.0)
		}
	}
}

func TestLevelMeterSegmentThresholds(t *testing.T) {
	// A segment lights when its normalized position is below the needle.
	lit := func(value float64) int {
		count := 0
		for i := 0; i < meterSegments; i++ {
			if float64(i)/meterSegments < value {
				count++
			}
		}
		return count
	}

	assert.Equal(t, 0, lit(0))
	assert.Equal(t, meterSegments, lit(1))
	assert.Equal(t, meterSegments/2, lit(0.5))
}

func TestLevelMeterZoneColors(t *testing.T) {
	// Green below 60%, yellow between 60% and 80%, red above.
	green := zoneColor(0.3)
	yellow := zoneColor(0.7)
	red := zoneColor(0.9)

	assert.Equal(t, uint8(255), green.G)
	assert.Zero(t, green.R)
	assert.Equal(t, uint8(255), yellow.R)
	assert.Equal(t, uint8(255), red.R)
	assert.Less(t, red.G, yellow.G)
}

func TestLevelMeterOrientation(t *testing.T) {
	v := NewLevelMeter(DefaultLevelMeterConfig())
	fb := NewFrameBuffer(300, 200)
	require.NoError(t, v.Initialize(context.Background(), fb))

	v.Update(domain.AudioSnapshot{WaveformSamples: []float64{0.5, 0.5}, SampleRate: 44100})
	v.Render()
	require.Len(t, v.lanes, 2)
	vertical := v.lanes[0]
	assert.Greater(t, vertical.Dy(), vertical.Dx())

	v.SetOrientation(MeterHorizontal)
	v.Render()
	horizontal := v.lanes[0]
	assert.Greater(t, horizontal.Dx(), horizontal.Dy())
}

func TestLevelMeterRenderPaints(t *testing.T) {
	v := NewLevelMeter(DefaultLevelMeterConfig())
	fb := NewFrameBuffer(200, 200)
	require.NoError(t, v.Initialize(context.Background(), fb))

	loud := make([]float64, 2048)
	for i := range loud {
		loud[i] = 0.9
	}
	for frame := 0; frame < 10; frame++ {
		v.Update(domain.AudioSnapshot{WaveformSamples: loud, SampleRate: 44100})
		v.Render()
	}

	img := fb.Image()
	lit := false
	for i := 0; i < len(img.Pix); i += 4 {
		if img.Pix[i+1] > 100 {
			lit = true
			break
		}
	}
	assert.True(t, lit, "loud input must light segments")
}
