package viz

import (
	"context"
	"image"
	"image/color"
	"math"
	"time"

	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/analysis"
	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/domain"
)

// Scope geometry and trigger tuning.
const (
	scopeRingSize      = 512
	scopeTriggerOffset = 10
	scopeMinWindowMs   = 10
	scopeMaxWindowMs   = 500
	scopeHistoryDepth  = 3
)

// scopeTriggerHoldoff keeps the trace from re-locking faster than the eye
// can follow.
const scopeTriggerHoldoff = 10 * time.Millisecond

// TriggerMode selects how the oscilloscope stabilizes the trace.
type TriggerMode string

// Available trigger modes. Off starts every sweep at the buffer head.
const (
	TriggerRising  TriggerMode = "rising"
	TriggerFalling TriggerMode = "falling"
	TriggerOff     TriggerMode = "off"
)

// OscilloscopeConfig tunes the oscilloscope effect.
type OscilloscopeConfig struct {
	// DisplaySamples is the sweep length in samples.
	DisplaySamples int

	// Trigger selects edge locking for the sweep start.
	Trigger TriggerMode

	// XYMode plots the waveform against a delayed copy of itself instead of
	// against time.
	XYMode bool

	// XYDelay is the sample delay between the two axes in XY mode.
	XYDelay int

	// Phosphor drives the afterglow of previous sweeps.
	Phosphor analysis.Phosphor

	// Thickness is the trace line width in pixels.
	Thickness int
}

// DefaultOscilloscopeConfig returns the default oscilloscope configuration.
func DefaultOscilloscopeConfig() OscilloscopeConfig {
	return OscilloscopeConfig{
		DisplaySamples: scopeRingSize,
		Trigger:        TriggerRising,
		XYDelay:        64,
		Phosphor:       analysis.PhosphorStandard,
		Thickness:      2,
	}
}

// scopeTrace is one captured sweep kept for afterglow rendering.
type scopeTrace struct {
	samples    []float64
	capturedAt time.Time
}

// Oscilloscope draws the time-domain waveform as a continuous trace with
// edge triggering, optional XY (Lissajous) plotting and phosphor-style
// persistence of recent sweeps.
type Oscilloscope struct {
	cfg   OscilloscopeConfig
	state State

	surface Surface

	ring       []float64
	ringPos    int
	ringFilled bool
	sampleRate int

	lastTrigger    time.Time
	lastTriggerIdx int

	history []scopeTrace
}

// NewOscilloscope creates the effect with the given configuration.
func NewOscilloscope(cfg OscilloscopeConfig) *Oscilloscope {
	def := DefaultOscilloscopeConfig()
	if cfg.DisplaySamples <= 0 {
		cfg.DisplaySamples = def.DisplaySamples
	}
	if cfg.Trigger == "" {
		cfg.Trigger = def.Trigger
	}
	if cfg.XYDelay <= 0 {
		cfg.XYDelay = def.XYDelay
	}
	if cfg.Phosphor.Persistence <= 0 {
		cfg.Phosphor = def.Phosphor
	}
	if cfg.Thickness <= 0 {
		cfg.Thickness = def.Thickness
	}

	return &Oscilloscope{
		cfg:  cfg,
		ring: make([]float64, cfg.DisplaySamples),
	}
}

// Initialize binds the effect to its surface.
func (v *Oscilloscope) Initialize(_ context.Context, surface Surface) error {
	if v.state == StateDisposed {
		return domain.ErrVisualizerDisposed
	}
	if v.state == StateReady {
		return domain.ErrAlreadyInitialized
	}
	v.state = StateInitializing
	v.surface = surface
	v.state = StateReady
	return nil
}

// Update feeds waveform samples into the ring buffer, overwriting the oldest
// samples when the snapshot is larger than the ring.
func (v *Oscilloscope) Update(snapshot domain.AudioSnapshot) {
	if v.state != StateReady {
		return
	}
	v.sampleRate = snapshot.SampleRate

	for _, s := range snapshot.WaveformSamples {
		v.ring[v.ringPos] = s
		v.ringPos++
		if v.ringPos == len(v.ring) {
			v.ringPos = 0
			v.ringFilled = true
		}
	}
}

// WindowMillis returns the time span the sweep is allowed to cover, clamped
// to a readable range. Render trims the sweep to this window.
func (v *Oscilloscope) WindowMillis() float64 {
	if v.sampleRate <= 0 {
		return scopeMinWindowMs
	}
	ms := float64(v.cfg.DisplaySamples) / float64(v.sampleRate) * 1000
	if ms < scopeMinWindowMs {
		return scopeMinWindowMs
	}
	if ms > scopeMaxWindowMs {
		return scopeMaxWindowMs
	}
	return ms
}

// displayLimit converts the clamped time window back into a sample count,
// bounding a sweep of n samples. At low sample rates the window cap keeps
// the trace from compressing seconds of audio into one screen.
func (v *Oscilloscope) displayLimit(n int) int {
	if v.sampleRate <= 0 {
		return n
	}
	limit := int(math.Round(v.WindowMillis() * float64(v.sampleRate) / 1000))
	if limit > 0 && limit < n {
		return limit
	}
	return n
}

// linearize copies the ring into chronological order, oldest sample first.
func (v *Oscilloscope) linearize() []float64 {
	out := make([]float64, len(v.ring))
	if !v.ringFilled {
		copy(out, v.ring[:v.ringPos])
		return out
	}
	n := copy(out, v.ring[v.ringPos:])
	copy(out[n:], v.ring[:v.ringPos])
	return out
}

// findTrigger locates the sweep start in the linearized buffer. Only the
// first half is scanned so a full sweep always fits after the trigger point.
// Within the holdoff window the previous lock is reused; with no edge found
// the sweep starts at the buffer head.
func (v *Oscilloscope) findTrigger(samples []float64, now time.Time) int {
	if v.cfg.Trigger == TriggerOff || len(samples) < 2 {
		return 0
	}

	if !v.lastTrigger.IsZero() && now.Sub(v.lastTrigger) < scopeTriggerHoldoff {
		if v.lastTriggerIdx < len(samples)/2 {
			return v.lastTriggerIdx
		}
		return 0
	}

	half := len(samples) / 2
	for i := 1; i < half; i++ {
		var crossed bool
		switch v.cfg.Trigger {
		case TriggerRising:
			crossed = samples[i-1] < 0 && samples[i] >= 0
		case TriggerFalling:
			crossed = samples[i-1] > 0 && samples[i] <= 0
		}
		if crossed {
			idx := max(i-scopeTriggerOffset, 0)
			v.lastTrigger = now
			v.lastTriggerIdx = idx
			return idx
		}
	}
	return 0
}

// Render draws one sweep, layering decayed copies of recent sweeps under the
// live trace.
func (v *Oscilloscope) Render() {
	if v.state != StateReady {
		return
	}

	img := v.surface.Image()
	w, h := v.surface.Size()
	fillBackground(img, color.Black)
	if w < 2 || h < 2 {
		return
	}

	now := time.Now()
	samples := v.linearize()
	start := v.findTrigger(samples, now)
	sweep := samples[start:]
	sweep = sweep[:v.displayLimit(len(sweep))]

	// Afterglow first, oldest underneath.
	base := color.RGBA{R: 0, G: 255, B: 70, A: 255}
	for _, tr := range v.history {
		brightness := v.cfg.Phosphor.Decay(1, now.Sub(tr.capturedAt))
		if brightness < 0.05 {
			continue
		}
		v.drawSweep(img, w, h, tr.samples, scaleColor(base, brightness*0.6))
	}

	v.drawSweep(img, w, h, sweep, base)
	v.pushHistory(sweep, now)
}

// drawSweep renders one sweep in the current plotting mode.
func (v *Oscilloscope) drawSweep(img *image.RGBA, w, h int, sweep []float64, col color.RGBA) {
	if v.cfg.XYMode {
		v.drawXY(img, w, h, sweep, col)
		return
	}
	v.drawTimeDomain(img, w, h, sweep, col)
}

// drawTimeDomain plots amplitude against time, centered vertically.
func (v *Oscilloscope) drawTimeDomain(img *image.RGBA, w, h int, sweep []float64, col color.RGBA) {
	if len(sweep) < 2 {
		return
	}
	midY := float64(h) / 2
	amp := float64(h) / 2 * 0.9

	prevX := 0.0
	prevY := midY - clampSample(sweep[0])*amp
	for i := 1; i < len(sweep); i++ {
		x := float64(i) / float64(len(sweep)-1) * float64(w-1)
		y := midY - clampSample(sweep[i])*amp
		drawThickLine(img, prevX, prevY, x, y, v.cfg.Thickness, col)
		prevX, prevY = x, y
	}
}

// drawXY plots the waveform against a delayed copy of itself, producing
// Lissajous-style figures for periodic signals.
func (v *Oscilloscope) drawXY(img *image.RGBA, w, h int, sweep []float64, col color.RGBA) {
	delay := v.cfg.XYDelay
	if len(sweep) <= delay+1 {
		return
	}
	cx := float64(w) / 2
	cy := float64(h) / 2
	scale := min(cx, cy) * 0.9

	prevX := cx + clampSample(sweep[0])*scale
	prevY := cy - clampSample(sweep[delay])*scale
	for i := 1; i < len(sweep)-delay; i++ {
		x := cx + clampSample(sweep[i])*scale
		y := cy - clampSample(sweep[i+delay])*scale
		drawThickLine(img, prevX, prevY, x, y, v.cfg.Thickness, col)
		prevX, prevY = x, y
	}
}

// pushHistory records the sweep for afterglow, bounding the history depth.
func (v *Oscilloscope) pushHistory(sweep []float64, now time.Time) {
	cp := make([]float64, len(sweep))
	copy(cp, sweep)
	v.history = append(v.history, scopeTrace{samples: cp, capturedAt: now})
	if len(v.history) > scopeHistoryDepth {
		v.history = v.history[len(v.history)-scopeHistoryDepth:]
	}
}

// Resize needs no bookkeeping; geometry is derived from the surface each
// frame.
func (v *Oscilloscope) Resize(width, height int) {}

// SetTrigger changes the trigger mode and drops the current lock.
func (v *Oscilloscope) SetTrigger(mode TriggerMode) {
	v.cfg.Trigger = mode
	v.lastTrigger = time.Time{}
	v.lastTriggerIdx = 0
}

// SetXYMode toggles XY plotting.
func (v *Oscilloscope) SetXYMode(enabled bool) {
	v.cfg.XYMode = enabled
	v.history = nil
}

// SetDemoMode is a no-op: the scope draws whatever waveform arrives.
func (v *Oscilloscope) SetDemoMode(bool) {}

// Dispose releases the surface reference and drops buffered sweeps.
// Idempotent.
func (v *Oscilloscope) Dispose() {
	if v.state == StateDisposed {
		return
	}
	v.state = StateDisposed
	v.surface = nil
	v.history = nil
}

// clampSample bounds a waveform sample to [-1,1] before plotting.
func clampSample(s float64) float64 {
	if s < -1 {
		return -1
	}
	if s > 1 {
		return 1
	}
	return s
}

// Verify interface implementation at compile time.
var _ Visualizer = (*Oscilloscope)(nil)
