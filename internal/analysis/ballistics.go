package analysis

import (
	"math"
	"time"
)

// Phosphor describes a persistence/decay curve for trail rendering.
// Persistence is how long the afterglow nominally lasts; Exponent shapes the
// falloff per persistence interval.
type Phosphor struct {
	Persistence time.Duration
	Exponent    float64
}

// Phosphor presets, fast to slow.
var (
	PhosphorFast     = Phosphor{Persistence: 20 * time.Millisecond, Exponent: 0.85}
	PhosphorStandard = Phosphor{Persistence: 50 * time.Millisecond, Exponent: 0.92}
	PhosphorSlow     = Phosphor{Persistence: 100 * time.Millisecond, Exponent: 0.97}
)

// DecayExponential decays value by exponent^(elapsed/persistence).
// This drives phosphor-style persistence: a value decayed every frame with a
// frame-length elapsed time fades smoothly regardless of frame rate.
func DecayExponential(value float64, elapsed, persistence time.Duration, exponent float64) float64 {
	if persistence <= 0 {
		return 0
	}
	ratio := float64(elapsed) / float64(persistence)
	return value * math.Pow(exponent, ratio)
}

// Decay applies the phosphor's curve to value over elapsed time.
func (p Phosphor) Decay(value float64, elapsed time.Duration) float64 {
	return DecayExponential(value, elapsed, p.Persistence, p.Exponent)
}

// NeedleConfig tunes the spring-damped needle model.
type NeedleConfig struct {
	// Stiffness is the spring constant applied while rising.
	Stiffness float64

	// Damping is the per-step velocity damping while rising.
	Damping float64

	// ReleaseTime keys the exponential fall when the target drops below the
	// current value. The rise-fast/fall-slow asymmetry is intentional; it is
	// what makes the needle feel like an analog meter.
	ReleaseTime time.Duration
}

// DefaultNeedleConfig returns the default needle tuning.
func DefaultNeedleConfig() NeedleConfig {
	return NeedleConfig{
		Stiffness:   0.3,
		Damping:     0.85,
		ReleaseTime: 300 * time.Millisecond,
	}
}

// Needle models an analog meter needle: spring-like attack toward rising
// targets, exponential release when the target falls away. The value is
// always within [0,1].
type Needle struct {
	cfg      NeedleConfig
	value    float64
	velocity float64
}

// NewNeedle creates a needle with the given tuning.
// Zero-valued fields fall back to the defaults.
func NewNeedle(cfg NeedleConfig) *Needle {
	def := DefaultNeedleConfig()
	if cfg.Stiffness <= 0 {
		cfg.Stiffness = def.Stiffness
	}
	if cfg.Damping <= 0 {
		cfg.Damping = def.Damping
	}
	if cfg.ReleaseTime <= 0 {
		cfg.ReleaseTime = def.ReleaseTime
	}
	return &Needle{cfg: cfg}
}

// Update advances the needle toward target over dt and returns the new value.
func (n *Needle) Update(target float64, dt time.Duration) float64 {
	target = clamp01(target)
	dtSec := dt.Seconds()

	if target >= n.value {
		// Spring attack. dt is expressed in 60Hz frame units so the feel is
		// stable across refresh rates.
		frames := dtSec * 60
		n.velocity += (target - n.value) * n.cfg.Stiffness * frames
		n.velocity *= n.cfg.Damping
		n.value += n.velocity
	} else {
		// Exponential release toward the lower target.
		n.velocity = 0
		k := 1 - math.Exp(-dtSec/n.cfg.ReleaseTime.Seconds())
		n.value += (target - n.value) * k
	}

	n.value = clamp01(n.value)
	return n.value
}

// Value returns the current needle position.
func (n *Needle) Value() float64 {
	return n.value
}

// Reset snaps the needle back to zero.
func (n *Needle) Reset() {
	n.value = 0
	n.velocity = 0
}

// PeakHold remembers a recent maximum, holds it for a fixed duration, then
// decays it by a per-frame factor. It is the shared model behind bar caps
// and the meter's peak marker.
type PeakHold struct {
	// Hold is how long a new peak is held before decaying.
	Hold time.Duration

	// DecayFactor is applied once per frame after the hold expires.
	DecayFactor float64

	value   float64
	heldAt  time.Time
	holding bool
}

// NewPeakHold creates a peak-hold with the given hold time and decay factor.
func NewPeakHold(hold time.Duration, decayFactor float64) *PeakHold {
	return &PeakHold{
		Hold:        hold,
		DecayFactor: decayFactor,
	}
}

// Update feeds the current live value and returns the held peak.
func (p *PeakHold) Update(value float64, now time.Time) float64 {
	if value >= p.value {
		p.value = value
		p.heldAt = now
		p.holding = true
		return p.value
	}

	if p.holding && now.Sub(p.heldAt) < p.Hold {
		return p.value
	}

	p.holding = false
	p.value *= p.DecayFactor
	if p.value < value {
		p.value = value
	}
	return p.value
}

// Value returns the current held peak.
func (p *PeakHold) Value() float64 {
	return p.value
}

// Reset clears the held peak.
func (p *PeakHold) Reset() {
	p.value = 0
	p.holding = false
}

// Smooth applies one step of exponential smoothing toward target:
// current + (target-current)*(1-smoothing).
func Smooth(current, target, smoothing float64) float64 {
	return current + (target-current)*(1-smoothing)
}
