package analysis

import (
	"time"

	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/domain"
)

// BeatConfig holds beat detector tuning.
// The defaults are deliberately kept as configurable values rather than
// hard-wired constants; callers pick the floor that suits their band.
type BeatConfig struct {
	// HistorySize is the rolling energy history length (~1s at 60Hz).
	HistorySize int

	// Multiplier is how far above the trailing average the current energy
	// must rise to count as a beat.
	Multiplier float64

	// Holdoff is the minimum spacing between beats.
	Holdoff time.Duration

	// Floor is the absolute energy below which no beat fires.
	// Sensible values are 0.1 to 0.3 depending on the driving band.
	Floor float64

	// IntensityDecay is the per-frame intensity decay factor (0.9 to 0.95).
	IntensityDecay float64
}

// DefaultBeatConfig returns the default beat detector tuning.
func DefaultBeatConfig() BeatConfig {
	return BeatConfig{
		HistorySize:    43,
		Multiplier:     1.3,
		Holdoff:        150 * time.Millisecond,
		Floor:          0.15,
		IntensityDecay: 0.92,
	}
}

// BeatDetector turns a band-energy series into discrete beat events with
// intensity. Each effect that wants beat reaction owns its own detector;
// state is never shared across effects.
type BeatDetector struct {
	cfg BeatConfig

	history []float64
	head    int
	filled  int

	state domain.BeatState
}

// NewBeatDetector creates a detector with the given tuning.
// Zero-valued fields fall back to the defaults.
func NewBeatDetector(cfg BeatConfig) *BeatDetector {
	def := DefaultBeatConfig()
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = def.HistorySize
	}
	if cfg.Multiplier <= 0 {
		cfg.Multiplier = def.Multiplier
	}
	if cfg.Holdoff <= 0 {
		cfg.Holdoff = def.Holdoff
	}
	if cfg.IntensityDecay <= 0 {
		cfg.IntensityDecay = def.IntensityDecay
	}

	return &BeatDetector{
		cfg:     cfg,
		history: make([]float64, cfg.HistorySize),
	}
}

// Process feeds one energy sample and returns the beat state for this frame.
// A beat fires when the energy exceeds the trailing average by the
// multiplier, the holdoff has elapsed, and the energy clears the floor.
func (d *BeatDetector) Process(energy float64, now time.Time) domain.BeatState {
	avg := d.average()
	d.push(energy)

	d.state.IsBeat = false

	fires := energy > avg*d.cfg.Multiplier &&
		energy > d.cfg.Floor &&
		(d.state.LastBeat.IsZero() || now.Sub(d.state.LastBeat) > d.cfg.Holdoff)

	if fires {
		intensity := 1.0
		if avg > 0 {
			intensity = energy / avg
			if intensity > 1 {
				intensity = 1
			}
		}
		d.state.Intensity = intensity
		d.state.IsBeat = true
		d.state.LastBeat = now
	} else {
		d.state.Intensity *= d.cfg.IntensityDecay
	}

	return d.state
}

// State returns the detector state without feeding a sample.
func (d *BeatDetector) State() domain.BeatState {
	return d.state
}

// Reset clears the history and beat state.
func (d *BeatDetector) Reset() {
	for i := range d.history {
		d.history[i] = 0
	}
	d.head = 0
	d.filled = 0
	d.state = domain.BeatState{}
}

func (d *BeatDetector) push(energy float64) {
	d.history[d.head] = energy
	d.head = (d.head + 1) % len(d.history)
	if d.filled < len(d.history) {
		d.filled++
	}
}

func (d *BeatDetector) average() float64 {
	if d.filled == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < d.filled; i++ {
		sum += d.history[i]
	}
	return sum / float64(d.filled)
}
