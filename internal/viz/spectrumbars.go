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

// Bar count bounds and layout constants.
const (
	barCountMin    = 32
	barCountMax    = 256
	barMinGap      = 1
	barPaddingTop  = 10
	barPaddingSide = 10
)

// BarStyle selects how the spectrum bars are rendered.
type BarStyle string

// Available bar styles.
const (
	BarStyleContinuous BarStyle = "continuous"
	BarStyleLED        BarStyle = "led"
)

// SpectrumBarsConfig tunes the spectrum bars effect.
type SpectrumBarsConfig struct {
	// BarCount is clamped to 32..256.
	BarCount int

	// MinFrequency and MaxFrequency bound the displayed range in Hz.
	// Bin edges are spaced logarithmically between them.
	MinFrequency float64
	MaxFrequency float64

	// Smoothing controls the displayed height response:
	// height += (target-height)*(1-Smoothing).
	Smoothing float64

	// Style selects continuous bars or the LED segment ladder.
	Style BarStyle

	// LEDSegments is the ladder resolution in LED style.
	LEDSegments int

	// PeakHoldTime and PeakDecay drive the per-bar peak caps.
	PeakHoldTime time.Duration
	PeakDecay    float64
}

// DefaultSpectrumBarsConfig returns the default bars configuration.
func DefaultSpectrumBarsConfig() SpectrumBarsConfig {
	return SpectrumBarsConfig{
		BarCount:     64,
		MinFrequency: 20,
		MaxFrequency: 20000,
		Smoothing:    0.3,
		Style:        BarStyleContinuous,
		LEDSegments:  20,
		PeakHoldTime: 500 * time.Millisecond,
		PeakDecay:    0.95,
	}
}

// SpectrumBars displays the magnitude spectrum as vertical bars with
// logarithmic frequency spacing, exponential height smoothing and per-bar
// peak caps.
type SpectrumBars struct {
	cfg   SpectrumBarsConfig
	state State

	surface Surface

	// Bin mapping, recomputed when the snapshot geometry or the frequency
	// range changes.
	binEdges   []int
	sampleRate int
	binCount   int

	targets []float64
	heights []float64
	peaks   []*analysis.PeakHold

	// Layout cache (recalculated only when size changes)
	lastWidth        int
	lastHeight       int
	cachedBarWidth   int
	cachedGap        int
	cachedStartX     int
	cachedEffectiveH int
}

// NewSpectrumBars creates the effect with the given configuration.
// Out-of-range values are clamped to sane defaults.
func NewSpectrumBars(cfg SpectrumBarsConfig) *SpectrumBars {
	def := DefaultSpectrumBarsConfig()
	cfg.BarCount = clampInt(cfg.BarCount, barCountMin, barCountMax)
	if cfg.MinFrequency <= 0 {
		cfg.MinFrequency = def.MinFrequency
	}
	if cfg.MaxFrequency <= cfg.MinFrequency {
		cfg.MaxFrequency = def.MaxFrequency
	}
	if cfg.Smoothing < 0 || cfg.Smoothing >= 1 {
		cfg.Smoothing = def.Smoothing
	}
	if cfg.Style == "" {
		cfg.Style = def.Style
	}
	if cfg.LEDSegments <= 0 {
		cfg.LEDSegments = def.LEDSegments
	}
	if cfg.PeakHoldTime <= 0 {
		cfg.PeakHoldTime = def.PeakHoldTime
	}
	if cfg.PeakDecay <= 0 || cfg.PeakDecay >= 1 {
		cfg.PeakDecay = def.PeakDecay
	}

	v := &SpectrumBars{
		cfg:     cfg,
		targets: make([]float64, cfg.BarCount),
		heights: make([]float64, cfg.BarCount),
		peaks:   make([]*analysis.PeakHold, cfg.BarCount),
	}
	for i := range v.peaks {
		v.peaks[i] = analysis.NewPeakHold(cfg.PeakHoldTime, cfg.PeakDecay)
	}
	return v
}

// Initialize binds the effect to its surface.
func (v *SpectrumBars) Initialize(_ context.Context, surface Surface) error {
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

// Update computes per-bar target energies from the snapshot.
func (v *SpectrumBars) Update(snapshot domain.AudioSnapshot) {
	if v.state != StateReady {
		return
	}

	if snapshot.SampleRate != v.sampleRate || snapshot.BinCount() != v.binCount {
		v.sampleRate = snapshot.SampleRate
		v.binCount = snapshot.BinCount()
		v.recomputeBinEdges()
	}

	for i := 0; i < v.cfg.BarCount; i++ {
		v.targets[i] = v.barTarget(snapshot.FrequencyMagnitudes, i)
	}
}

// recomputeBinEdges spaces the bar edges logarithmically between the
// configured frequency bounds and converts them to bin indices.
func (v *SpectrumBars) recomputeBinEdges() {
	v.binEdges = make([]int, v.cfg.BarCount+1)
	if v.sampleRate <= 0 || v.binCount == 0 {
		return
	}

	logMin := math.Log10(v.cfg.MinFrequency)
	logMax := math.Log10(v.cfg.MaxFrequency)
	nyquist := float64(v.sampleRate) / 2

	for i := 0; i <= v.cfg.BarCount; i++ {
		freq := math.Pow(10, logMin+(logMax-logMin)*float64(i)/float64(v.cfg.BarCount))
		bin := int(freq / nyquist * float64(v.binCount))
		if bin > v.binCount {
			bin = v.binCount
		}
		v.binEdges[i] = bin
	}
}

// barTarget is the mean magnitude over the bar's bin range, 0 when the
// range spans no bins.
func (v *SpectrumBars) barTarget(mags []float64, bar int) float64 {
	if len(v.binEdges) == 0 {
		return 0
	}
	lo := v.binEdges[bar]
	hi := v.binEdges[bar+1]
	if hi > len(mags) {
		hi = len(mags)
	}
	if hi <= lo {
		return 0
	}
	var sum float64
	for b := lo; b < hi; b++ {
		sum += mags[b]
	}
	return sum / float64(hi-lo)
}

// Render advances the bar heights toward their targets and draws one frame.
func (v *SpectrumBars) Render() {
	if v.state != StateReady {
		return
	}

	img := v.surface.Image()
	w, h := v.surface.Size()
	fillBackground(img, color.Black)

	if w == 0 || h == 0 {
		return
	}
	if v.lastWidth != w || v.lastHeight != h {
		v.recalculateLayout(w, h)
	}
	if v.cachedBarWidth == 0 {
		return
	}

	now := time.Now()
	for i := 0; i < v.cfg.BarCount; i++ {
		v.heights[i] = analysis.Smooth(v.heights[i], v.targets[i], v.cfg.Smoothing)
		v.peaks[i].Update(v.heights[i], now)
	}

	switch v.cfg.Style {
	case BarStyleLED:
		v.drawLEDBars(img, h)
	default:
		v.drawContinuousBars(img, h)
	}
}

// recalculateLayout computes and caches size-dependent layout values.
func (v *SpectrumBars) recalculateLayout(w, h int) {
	v.lastWidth = w
	v.lastHeight = h

	effectiveW := w - 2*barPaddingSide
	v.cachedEffectiveH = h - barPaddingTop

	if effectiveW <= 0 || v.cachedEffectiveH <= 0 {
		v.cachedBarWidth = 0
		return
	}

	totalGapWidth := (v.cfg.BarCount - 1) * barMinGap
	v.cachedBarWidth = max((effectiveW-totalGapWidth)/v.cfg.BarCount, 1)

	v.cachedGap = barMinGap
	if v.cfg.BarCount > 1 {
		remaining := effectiveW - v.cachedBarWidth*v.cfg.BarCount
		v.cachedGap = max(remaining/(v.cfg.BarCount-1), barMinGap)
	}

	usedWidth := v.cfg.BarCount*v.cachedBarWidth + (v.cfg.BarCount-1)*v.cachedGap
	v.cachedStartX = barPaddingSide + (effectiveW-usedWidth)/2
}

// drawContinuousBars renders gradient bars plus white peak caps.
func (v *SpectrumBars) drawContinuousBars(img *image.RGBA, h int) {
	step := v.cachedBarWidth + v.cachedGap
	for i := 0; i < v.cfg.BarCount; i++ {
		barX := v.cachedStartX + i*step
		barH := int(v.heights[i] * float64(v.cachedEffectiveH))

		for y := 0; y < barH && y < v.cachedEffectiveH; y++ {
			col := gradientColor(float64(y) / float64(v.cachedEffectiveH))
			fillRect(img, barX, h-1-y, v.cachedBarWidth, 1, col)
		}

		capY := int(v.peaks[i].Value() * float64(v.cachedEffectiveH))
		if capY > 0 && capY < v.cachedEffectiveH {
			fillRect(img, barX, h-1-capY, v.cachedBarWidth, 2, color.RGBA{R: 255, G: 255, B: 255, A: 255})
		}
	}
}

// drawLEDBars renders the segment ladder: lit count is ceil(height*segments),
// colors assigned by segment position.
func (v *SpectrumBars) drawLEDBars(img *image.RGBA, h int) {
	segs := v.cfg.LEDSegments
	segStep := float64(v.cachedEffectiveH) / float64(segs)
	segHeight := max(int(segStep)-1, 1)
	step := v.cachedBarWidth + v.cachedGap

	for i := 0; i < v.cfg.BarCount; i++ {
		barX := v.cachedStartX + i*step
		lit := int(math.Ceil(v.heights[i] * float64(segs)))
		capSeg := int(v.peaks[i].Value() * float64(segs))

		for seg := 0; seg < segs; seg++ {
			segY := h - 1 - int(float64(seg+1)*segStep)
			pos := float64(seg) / float64(segs)

			switch {
			case seg < lit:
				fillRect(img, barX, segY, v.cachedBarWidth, segHeight, zoneColor(pos))
			case seg == capSeg && capSeg > 0:
				fillRect(img, barX, segY, v.cachedBarWidth, segHeight, color.RGBA{R: 255, G: 255, B: 255, A: 255})
			default:
				fillRect(img, barX, segY, v.cachedBarWidth, segHeight, color.RGBA{R: 26, G: 26, B: 26, A: 255})
			}
		}
	}
}

// Resize invalidates the layout cache; geometry is fully recomputed on the
// next frame.
func (v *SpectrumBars) Resize(width, height int) {
	if v.state != StateReady {
		return
	}
	v.lastWidth = 0
	v.lastHeight = 0
}

// SetFrequencyRange changes the displayed range and forces bin-edge and
// geometry recomputation.
func (v *SpectrumBars) SetFrequencyRange(minHz, maxHz float64) {
	if minHz <= 0 || maxHz <= minHz {
		return
	}
	v.cfg.MinFrequency = minHz
	v.cfg.MaxFrequency = maxHz
	v.recomputeBinEdges()
}

// SetStyle switches between continuous and LED rendering.
func (v *SpectrumBars) SetStyle(style BarStyle) {
	v.cfg.Style = style
}

// SetDemoMode is a no-op: bars react to whatever snapshots arrive.
func (v *SpectrumBars) SetDemoMode(bool) {}

// Dispose releases the surface reference. Idempotent.
func (v *SpectrumBars) Dispose() {
	if v.state == StateDisposed {
		return
	}
	v.state = StateDisposed
	v.surface = nil
}

// Verify interface implementation at compile time.
var _ Visualizer = (*SpectrumBars)(nil)
