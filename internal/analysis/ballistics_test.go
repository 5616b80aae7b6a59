package analysis

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSmoothConvergence(t *testing.T) {
	const smoothing = 0.3
	const target = 1.0

	// height_k = target - (target-height_0) * smoothing^k
	value := 0.0
	for k := 1; k <= 20; k++ {
		value = Smooth(value, target, smoothing)
		expected := target - (target-0)*math.Pow(smoothing, float64(k))
		assert.InDelta(t, expected, value, 1e-12)
	}

	// At 0.3 smoothing the response settles within ~20 frames.
	assert.InDelta(t, target, value, 1e-9)
}

func TestDecayExponential(t *testing.T) {
	// One full persistence interval multiplies by exactly the exponent.
	got := DecayExponential(1.0, 50*time.Millisecond, 50*time.Millisecond, 0.92)
	assert.InDelta(t, 0.92, got, 1e-12)

	// Zero persistence collapses immediately.
	assert.Zero(t, DecayExponential(1.0, time.Millisecond, 0, 0.92))
}

func TestPhosphorPresetsOrdering(t *testing.T) {
	elapsed := 30 * time.Millisecond
	fast := PhosphorFast.Decay(1, elapsed)
	std := PhosphorStandard.Decay(1, elapsed)
	slow := PhosphorSlow.Decay(1, elapsed)

	assert.Less(t, fast, std)
	assert.Less(t, std, slow)
	assert.Less(t, slow, 1.0)
}

func TestNeedleRiseAndRelease(t *testing.T) {
	n := NewNeedle(DefaultNeedleConfig())
	dt := 16 * time.Millisecond

	// Attack: the needle climbs toward a high target.
	prev := 0.0
	for i := 0; i < 10; i++ {
		v := n.Update(0.9, dt)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
		prev = v
	}
	assert.Greater(t, prev, 0.3, "needle should respond quickly on attack")

	// Release: the fall is exponential and slower than the attack.
	afterOne := n.Update(0, dt)
	assert.Less(t, afterOne, prev)
	assert.Greater(t, afterOne, prev*0.9, "release must be gradual")

	for i := 0; i < 300; i++ {
		n.Update(0, dt)
	}
	assert.InDelta(t, 0, n.Value(), 0.01)
}

func TestNeedleBounds(t *testing.T) {
	n := NewNeedle(DefaultNeedleConfig())
	dt := 16 * time.Millisecond

	// Out-of-range targets are clamped; the value never escapes [0,1].
	for i := 0; i < 100; i++ {
		v := n.Update(5.0, dt)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
	for i := 0; i < 100; i++ {
		v := n.Update(-3.0, dt)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 1.0)
	}
}

func TestNeedleReset(t *testing.T) {
	n := NewNeedle(DefaultNeedleConfig())
	n.Update(1, 16*time.Millisecond)
	n.Reset()
	assert.Zero(t, n.Value())
}

func TestPeakHold(t *testing.T) {
	p := NewPeakHold(time.Second, 0.99)
	now := time.Now()

	assert.InDelta(t, 0.8, p.Update(0.8, now), 1e-12)

	// Held flat for the hold duration.
	now = now.Add(500 * time.Millisecond)
	assert.InDelta(t, 0.8, p.Update(0.1, now), 1e-12)

	// After the hold expires it decays per frame.
	now = now.Add(600 * time.Millisecond)
	first := p.Update(0.1, now)
	assert.InDelta(t, 0.8*0.99, first, 1e-12)

	second := p.Update(0.1, now.Add(16*time.Millisecond))
	assert.Less(t, second, first)

	// A louder value re-arms the hold immediately.
	assert.InDelta(t, 0.95, p.Update(0.95, now.Add(32*time.Millisecond)), 1e-12)
}

func TestPeakHoldNeverBelowLive(t *testing.T) {
	p := NewPeakHold(10*time.Millisecond, 0.5)
	now := time.Now()

	p.Update(0.9, now)
	// Aggressive decay would drop below the live value; it must clamp there.
	v := p.Update(0.6, now.Add(time.Second))
	assert.GreaterOrEqual(t, v, 0.6)
}
