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

// Meter scale and geometry. The display window spans -20dB to +3dB; levels
// below the window pin the needle at zero.
const (
	meterDBFloor     = -60.0
	meterWindowLowDB = -20.0
	meterWindowHiDB  = 3.0
	meterSegments    = 24
	meterPadding     = 12
	meterSegGap      = 2
)

// MeterOrientation selects the ladder direction.
type MeterOrientation string

// Available orientations.
const (
	MeterVertical   MeterOrientation = "vertical"
	MeterHorizontal MeterOrientation = "horizontal"
)

// LevelMeterConfig tunes the level meter effect.
type LevelMeterConfig struct {
	// Channels is 1 (mono) or 2 (stereo, even/odd sample split).
	Channels int

	// Orientation selects the ladder direction.
	Orientation MeterOrientation

	// Needle tunes the per-channel ballistics.
	Needle analysis.NeedleConfig

	// PeakHoldTime and PeakDecay drive the per-channel peak markers.
	PeakHoldTime time.Duration
	PeakDecay    float64
}

// DefaultLevelMeterConfig returns the default meter configuration.
func DefaultLevelMeterConfig() LevelMeterConfig {
	return LevelMeterConfig{
		Channels:     2,
		Orientation:  MeterVertical,
		Needle:       analysis.DefaultNeedleConfig(),
		PeakHoldTime: time.Second,
		PeakDecay:    0.99,
	}
}

// meterChannel is the ballistics state for one displayed channel.
type meterChannel struct {
	needle *analysis.Needle
	peak   *analysis.PeakHold
	target float64
}

// LevelMeter displays per-channel signal level as a segmented ladder with
// analog needle ballistics and decaying peak markers.
type LevelMeter struct {
	cfg   LevelMeterConfig
	state State

	surface Surface

	channels []meterChannel

	lastFrame time.Time

	// Geometry cache, rebuilt when size or channel layout changes.
	lastWidth  int
	lastHeight int
	lanes      []image.Rectangle
}

// NewLevelMeter creates the effect with the given configuration.
func NewLevelMeter(cfg LevelMeterConfig) *LevelMeter {
	def := DefaultLevelMeterConfig()
	if cfg.Channels != 1 && cfg.Channels != 2 {
		cfg.Channels = def.Channels
	}
	if cfg.Orientation == "" {
		cfg.Orientation = def.Orientation
	}
	if cfg.PeakHoldTime <= 0 {
		cfg.PeakHoldTime = def.PeakHoldTime
	}
	if cfg.PeakDecay <= 0 || cfg.PeakDecay >= 1 {
		cfg.PeakDecay = def.PeakDecay
	}

	v := &LevelMeter{cfg: cfg}
	v.buildChannels()
	return v
}

func (v *LevelMeter) buildChannels() {
	v.channels = make([]meterChannel, v.cfg.Channels)
	for i := range v.channels {
		v.channels[i] = meterChannel{
			needle: analysis.NewNeedle(v.cfg.Needle),
			peak:   analysis.NewPeakHold(v.cfg.PeakHoldTime, v.cfg.PeakDecay),
		}
	}
	v.lastWidth = 0
	v.lastHeight = 0
}

// Initialize binds the effect to its surface.
func (v *LevelMeter) Initialize(_ context.Context, surface Surface) error {
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

// Update derives the per-channel needle targets from the waveform.
// In stereo mode even samples feed the left channel and odd samples the
// right; the source interleaving convention makes that the channel split.
func (v *LevelMeter) Update(snapshot domain.AudioSnapshot) {
	if v.state != StateReady {
		return
	}

	samples := snapshot.WaveformSamples
	if len(v.channels) == 1 {
		v.channels[0].target = normalizeDB(linearToDB(rmsOf(samples, 0, 1)))
		return
	}
	v.channels[0].target = normalizeDB(linearToDB(rmsOf(samples, 0, 2)))
	v.channels[1].target = normalizeDB(linearToDB(rmsOf(samples, 1, 2)))
}

// rmsOf computes the RMS of every stride-th sample starting at offset.
func rmsOf(samples []float64, offset, stride int) float64 {
	var sum float64
	var n int
	for i := offset; i < len(samples); i += stride {
		sum += samples[i] * samples[i]
		n++
	}
	if n == 0 {
		return 0
	}
	return math.Sqrt(sum / float64(n))
}

// linearToDB converts a linear level to decibels, floored at -60dB.
// Zero and negative input map to the floor rather than -Inf.
func linearToDB(level float64) float64 {
	if level <= 0 {
		return meterDBFloor
	}
	db := 20 * math.Log10(level)
	if db < meterDBFloor {
		return meterDBFloor
	}
	return db
}

// normalizeDB maps decibels into the -20..+3dB display window as 0..1.
func normalizeDB(db float64) float64 {
	return clamp01((db - meterWindowLowDB) / (meterWindowHiDB - meterWindowLowDB))
}

// Render advances the needles and draws the segment ladders.
func (v *LevelMeter) Render() {
	if v.state != StateReady {
		return
	}

	img := v.surface.Image()
	w, h := v.surface.Size()
	fillBackground(img, color.Black)
	if w < 2*meterPadding || h < 2*meterPadding {
		return
	}

	if v.lastWidth != w || v.lastHeight != h {
		v.rebuildGeometry(w, h)
	}

	now := time.Now()
	dt := time.Second / 60
	if !v.lastFrame.IsZero() {
		dt = now.Sub(v.lastFrame)
	}
	v.lastFrame = now

	for i := range v.channels {
		ch := &v.channels[i]
		value := ch.needle.Update(ch.target, dt)
		peak := ch.peak.Update(value, now)
		v.drawLane(img, v.lanes[i], value, peak)
	}
}

// rebuildGeometry splits the surface into one lane rectangle per channel.
func (v *LevelMeter) rebuildGeometry(w, h int) {
	v.lastWidth = w
	v.lastHeight = h
	v.lanes = make([]image.Rectangle, len(v.channels))

	n := len(v.channels)
	if v.cfg.Orientation == MeterHorizontal {
		laneH := (h - 2*meterPadding - (n-1)*meterPadding) / n
		for i := range v.lanes {
			y := meterPadding + i*(laneH+meterPadding)
			v.lanes[i] = image.Rect(meterPadding, y, w-meterPadding, y+laneH)
		}
		return
	}

	laneW := (w - 2*meterPadding - (n-1)*meterPadding) / n
	for i := range v.lanes {
		x := meterPadding + i*(laneW+meterPadding)
		v.lanes[i] = image.Rect(x, meterPadding, x+laneW, h-meterPadding)
	}
}

// drawLane renders one channel's ladder. A segment is lit when its
// normalized position is below the needle value; the segment nearest the
// held peak is drawn brightened.
func (v *LevelMeter) drawLane(img *image.RGBA, lane image.Rectangle, value, peak float64) {
	peakSeg := int(peak * meterSegments)
	if peakSeg >= meterSegments {
		peakSeg = meterSegments - 1
	}

	for i := 0; i < meterSegments; i++ {
		pos := float64(i) / meterSegments
		lit := pos < value

		col := color.RGBA{R: 22, G: 22, B: 22, A: 255}
		if lit {
			col = zoneColor(pos)
		}
		if i == peakSeg && peak > 0 {
			col = brighten(zoneColor(pos), 60)
		}

		r := v.segmentRect(lane, i)
		fillRect(img, r.Min.X, r.Min.Y, r.Dx(), r.Dy(), col)
	}
}

// segmentRect returns the rectangle of ladder segment i within a lane.
// Segment 0 sits at the low end: bottom for vertical lanes, left for
// horizontal ones.
func (v *LevelMeter) segmentRect(lane image.Rectangle, i int) image.Rectangle {
	if v.cfg.Orientation == MeterHorizontal {
		segW := float64(lane.Dx()) / meterSegments
		x0 := lane.Min.X + int(float64(i)*segW)
		x1 := lane.Min.X + int(float64(i+1)*segW) - meterSegGap
		if x1 <= x0 {
			x1 = x0 + 1
		}
		return image.Rect(x0, lane.Min.Y, x1, lane.Max.Y)
	}

	segH := float64(lane.Dy()) / meterSegments
	y1 := lane.Max.Y - int(float64(i)*segH)
	y0 := lane.Max.Y - int(float64(i+1)*segH) + meterSegGap
	if y0 >= y1 {
		y0 = y1 - 1
	}
	return image.Rect(lane.Min.X, y0, lane.Max.X, y1)
}

// brighten lifts a color's channels by a fixed amount, saturating at 255.
func brighten(col color.RGBA, by uint8) color.RGBA {
	add := func(c, b uint8) uint8 {
		s := uint16(c) + uint16(b)
		if s > 255 {
			return 255
		}
		return uint8(s)
	}
	return color.RGBA{R: add(col.R, by), G: add(col.G, by), B: add(col.B, by), A: col.A}
}

// Resize invalidates the geometry cache.
func (v *LevelMeter) Resize(width, height int) {
	v.lastWidth = 0
	v.lastHeight = 0
}

// SetChannels switches between mono and stereo, resetting the ballistics.
func (v *LevelMeter) SetChannels(n int) {
	if n != 1 && n != 2 {
		return
	}
	if n == v.cfg.Channels {
		return
	}
	v.cfg.Channels = n
	v.buildChannels()
}

// SetOrientation flips the ladder direction.
func (v *LevelMeter) SetOrientation(o MeterOrientation) {
	if o != MeterVertical && o != MeterHorizontal {
		return
	}
	v.cfg.Orientation = o
	v.lastWidth = 0
	v.lastHeight = 0
}

// SetDemoMode is a no-op: the meter reacts to whatever snapshots arrive.
func (v *LevelMeter) SetDemoMode(bool) {}

// Dispose releases the surface reference. Idempotent.
func (v *LevelMeter) Dispose() {
	if v.state == StateDisposed {
		return
	}
	v.state = StateDisposed
	v.surface = nil
}

// Verify interface implementation at compile time.
var _ Visualizer = (*LevelMeter)(nil)
