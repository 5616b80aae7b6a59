package analysis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBeatFiresOnEnergySpike(t *testing.T) {
	d := NewBeatDetector(DefaultBeatConfig())
	now := time.Now()

	// Establish a quiet baseline.
	for i := 0; i < 20; i++ {
		state := d.Process(0.2, now)
		now = now.Add(16 * time.Millisecond)
		if i > 0 {
			assert.False(t, state.IsBeat, "no beat expected on steady energy")
		}
	}

	state := d.Process(0.9, now)
	assert.True(t, state.IsBeat)
	assert.Greater(t, state.Intensity, 0.0)
	assert.LessOrEqual(t, state.Intensity, 1.0)
	assert.Equal(t, now, state.LastBeat)
}

func TestBeatHoldoff(t *testing.T) {
	d := NewBeatDetector(DefaultBeatConfig())
	now := time.Now()

	for i := 0; i < 20; i++ {
		d.Process(0.2, now)
		now = now.Add(16 * time.Millisecond)
	}

	first := d.Process(0.9, now)
	assert.True(t, first.IsBeat)

	// A second spike inside the 150ms holdoff must not fire.
	now = now.Add(50 * time.Millisecond)
	second := d.Process(0.9, now)
	assert.False(t, second.IsBeat)

	// After the holdoff it may fire again.
	now = now.Add(200 * time.Millisecond)
	third := d.Process(2.0, now)
	assert.True(t, third.IsBeat)
}

func TestBeatFloor(t *testing.T) {
	d := NewBeatDetector(DefaultBeatConfig())
	now := time.Now()

	// Energy above the relative threshold but below the absolute floor.
	for i := 0; i < 10; i++ {
		d.Process(0.01, now)
		now = now.Add(16 * time.Millisecond)
	}
	state := d.Process(0.1, now)
	assert.False(t, state.IsBeat, "energy below floor must not fire")
}

func TestBeatIntensityDecay(t *testing.T) {
	cfg := DefaultBeatConfig()
	d := NewBeatDetector(cfg)
	now := time.Now()

	for i := 0; i < 20; i++ {
		d.Process(0.2, now)
		now = now.Add(16 * time.Millisecond)
	}

	state := d.Process(0.9, now)
	assert.True(t, state.IsBeat)
	peak := state.Intensity

	now = now.Add(16 * time.Millisecond)
	state = d.Process(0.2, now)
	assert.False(t, state.IsBeat)
	assert.InDelta(t, peak*cfg.IntensityDecay, state.Intensity, 1e-12)
}

func TestBeatReset(t *testing.T) {
	d := NewBeatDetector(DefaultBeatConfig())
	now := time.Now()

	for i := 0; i < 20; i++ {
		d.Process(0.5, now)
		now = now.Add(16 * time.Millisecond)
	}
	d.Reset()

	state := d.State()
	assert.Zero(t, state.Intensity)
	assert.False(t, state.IsBeat)
	assert.True(t, state.LastBeat.IsZero())
}
