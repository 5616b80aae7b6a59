package viz

import (
	"context"
	"image"
	"image/color"
	"math"
	"math/rand" //nolint:gosec // visual jitter, not security-sensitive
	"time"

	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/analysis"
	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/domain"
)

// particlePoolMax bounds the pool. The pool is allocated once at
// construction and never grows; presets only vary how much of it is alive.
const particlePoolMax = 5000

// feedback tuning: previous-frame fade and the zoom warp per frame.
const (
	particleFeedbackFade = 0.88
	particleFeedbackZoom = 1.012
)

// ParticleMotion selects the motion model driving the pool.
type ParticleMotion string

// Available motion models.
const (
	MotionOrbit   ParticleMotion = "orbit"
	MotionExplode ParticleMotion = "explode"
	MotionWave    ParticleMotion = "wave"
	MotionSwirl   ParticleMotion = "swirl"
)

// ParticlePreset names a pool size and motion model combination.
type ParticlePreset struct {
	Name   string
	Count  int
	Motion ParticleMotion
}

// ParticlePresets are the built-in presets in display order.
var ParticlePresets = []ParticlePreset{
	{Name: "Orbit", Count: 900, Motion: MotionOrbit},
	{Name: "Explode", Count: 1400, Motion: MotionExplode},
	{Name: "Wave", Count: 1100, Motion: MotionWave},
	{Name: "Swirl", Count: 1000, Motion: MotionSwirl},
}

// particle is one pool entry. Orbit fields double as wave phase state.
type particle struct {
	x, y    float64
	vx, vy  float64
	life    float64
	maxLife float64
	size    float64
	hue     float64

	angle      float64
	radius     float64
	angularVel float64
	phase      float64
}

// ParticleField drives a fixed pool of particles with the selected motion
// model, pulsing velocity and size on detected beats and smearing previous
// frames with a fading zoom warp.
type ParticleField struct {
	preset ParticlePreset
	state  State

	surface Surface

	pool  []particle
	alive int

	beat      *analysis.BeatDetector
	beatState domain.BeatState
	energy    float64

	lastFrame time.Time
	seeded    bool

	warpBuf []uint8
}

// NewParticleField creates the effect with the given preset.
// Unknown presets fall back to the first built-in.
func NewParticleField(preset ParticlePreset) *ParticleField {
	if preset.Count <= 0 || preset.Motion == "" {
		preset = ParticlePresets[0]
	}
	if preset.Count > particlePoolMax {
		preset.Count = particlePoolMax
	}

	return &ParticleField{
		preset: preset,
		pool:   make([]particle, particlePoolMax),
		alive:  preset.Count,
		beat:   analysis.NewBeatDetector(analysis.BeatConfig{Floor: 0.12}),
	}
}

// Initialize binds the effect to its surface.
func (v *ParticleField) Initialize(_ context.Context, surface Surface) error {
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

// Update feeds the bass band into the beat detector and caches the frame's
// overall energy.
func (v *ParticleField) Update(snapshot domain.AudioSnapshot) {
	if v.state != StateReady {
		return
	}
	v.energy = snapshot.RMS
	v.beatState = v.beat.Process(snapshot.Bands.Bass, time.Now())
}

// Render advances the pool one step and draws it over the warped previous
// frame.
func (v *ParticleField) Render() {
	if v.state != StateReady {
		return
	}

	img := v.surface.Image()
	w, h := v.surface.Size()
	if w < 2 || h < 2 {
		return
	}

	if !v.seeded {
		v.respawnAll(w, h)
		v.seeded = true
		fillBackground(img, color.Black)
	}

	now := time.Now()
	dt := 1.0 / 60.0
	if !v.lastFrame.IsZero() {
		dt = now.Sub(v.lastFrame).Seconds()
		if dt > 0.1 {
			dt = 0.1
		}
	}
	v.lastFrame = now

	v.warpFeedback(img, w, h)
	fadeImage(img, particleFeedbackFade)

	pulse := 1 + 2*v.beatState.Intensity

	for i := 0; i < v.alive; i++ {
		p := &v.pool[i]
		v.advance(p, w, h, dt, pulse)

		p.life -= dt
		if p.life <= 0 {
			v.respawnInPlace(p, w, h)
		}

		v.drawParticle(img, p, pulse)
	}
}

// advance moves one particle under the preset's motion model.
func (v *ParticleField) advance(p *particle, w, h int, dt, pulse float64) {
	cx := float64(w) / 2
	cy := float64(h) / 2
	speed := dt * pulse * (0.5 + v.energy*2)

	switch v.preset.Motion {
	case MotionOrbit:
		p.angle += p.angularVel * speed
		breathe := 1 + 0.2*v.energy
		p.x = cx + math.Cos(p.angle)*p.radius*breathe
		p.y = cy + math.Sin(p.angle)*p.radius*breathe

	case MotionExplode:
		p.x += p.vx * speed * 60
		p.y += p.vy * speed * 60
		if p.x < 0 || p.x >= float64(w) || p.y < 0 || p.y >= float64(h) {
			v.respawnAtCenter(p, w, h)
		}

	case MotionWave:
		p.phase += speed * 3
		p.x += p.vx * speed * 60
		p.y = p.radius + math.Sin(p.phase+p.x*0.02)*float64(h)*0.1*(1+v.energy)
		if p.x >= float64(w) {
			p.x = 0
		}
		if p.x < 0 {
			p.x = float64(w) - 1
		}

	case MotionSwirl:
		dx := p.x - cx
		dy := p.y - cy
		dist := math.Hypot(dx, dy)
		if dist < 1 {
			dist = 1
		}
		// Tangential pull plus an inward drift that strengthens as the
		// particle ages, so the path tightens into a spiral; respawn handles
		// the particles that reach the center.
		age := 1 - p.life/p.maxLife
		tang := p.angularVel * 40 / dist
		inward := 12 * age
		p.vx = -dy/dist*tang*40 - dx/dist*inward
		p.vy = dx/dist*tang*40 - dy/dist*inward
		p.x += p.vx * speed
		p.y += p.vy * speed
		if dist < 4 {
			v.respawnInPlace(p, w, h)
			p.x = cx + (rand.Float64()-0.5)*float64(w)*0.9
			p.y = cy + (rand.Float64()-0.5)*float64(h)*0.9
		}
	}
}

// drawParticle renders one particle, brightness keyed to remaining life.
func (v *ParticleField) drawParticle(img *image.RGBA, p *particle, pulse float64) {
	frac := p.life / p.maxLife
	col := scaleColor(hslToRGB(p.hue, 0.9, 0.6), 0.3+0.7*frac)

	size := p.size * pulse
	if size <= 1.2 {
		px, py := int(p.x), int(p.y)
		if image.Pt(px, py).In(img.Bounds()) {
			img.SetRGBA(px, py, col)
		}
		return
	}
	drawFilledCircle(img, int(p.x), int(p.y), size, col)
}

// warpFeedback re-samples the previous frame slightly zoomed toward the
// center, giving trails an outward smear.
func (v *ParticleField) warpFeedback(img *image.RGBA, w, h int) {
	need := len(img.Pix)
	if cap(v.warpBuf) < need {
		v.warpBuf = make([]uint8, need)
	}
	src := v.warpBuf[:need]
	copy(src, img.Pix)

	cx := float64(w) / 2
	cy := float64(h) / 2
	inv := 1 / particleFeedbackZoom

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sx := int(cx + (float64(x)-cx)*inv)
			sy := int(cy + (float64(y)-cy)*inv)
			if sx < 0 || sx >= w || sy < 0 || sy >= h {
				continue
			}
			di := img.PixOffset(x, y)
			si := img.PixOffset(sx, sy)
			img.Pix[di] = src[si]
			img.Pix[di+1] = src[si+1]
			img.Pix[di+2] = src[si+2]
			img.Pix[di+3] = 255
		}
	}
}

// respawnAll re-seeds every live particle for the current preset.
func (v *ParticleField) respawnAll(w, h int) {
	for i := 0; i < v.alive; i++ {
		p := &v.pool[i]
		p.x = rand.Float64() * float64(w)
		p.y = rand.Float64() * float64(h)
		v.respawnInPlace(p, w, h)
		if v.preset.Motion == MotionExplode {
			v.respawnAtCenter(p, w, h)
		}
	}
}

// respawnInPlace gives a particle fresh life and motion state without moving
// it, so expiry never reads as a visual pop.
func (v *ParticleField) respawnInPlace(p *particle, w, h int) {
	p.maxLife = 2 + rand.Float64()*4
	p.life = p.maxLife
	p.size = 1 + rand.Float64()*2
	p.hue = rand.Float64()

	cx := float64(w) / 2
	cy := float64(h) / 2

	switch v.preset.Motion {
	case MotionOrbit:
		p.angle = math.Atan2(p.y-cy, p.x-cx)
		p.radius = math.Hypot(p.x-cx, p.y-cy)
		if p.radius < 10 {
			p.radius = 10 + rand.Float64()*min(cx, cy)*0.8
		}
		p.angularVel = 0.5 + rand.Float64()*1.5
		if rand.Float64() < 0.5 {
			p.angularVel = -p.angularVel
		}
	case MotionExplode:
		angle := rand.Float64() * 2 * math.Pi
		mag := 0.5 + rand.Float64()*2
		p.vx = math.Cos(angle) * mag
		p.vy = math.Sin(angle) * mag
	case MotionWave:
		p.radius = p.y
		p.phase = rand.Float64() * 2 * math.Pi
		p.vx = 0.3 + rand.Float64()*1.2
	case MotionSwirl:
		p.angularVel = 0.5 + rand.Float64()*2
	}
}

// respawnAtCenter restarts an explode particle from the origin burst point.
func (v *ParticleField) respawnAtCenter(p *particle, w, h int) {
	p.x = float64(w) / 2
	p.y = float64(h) / 2
	v.respawnInPlace(p, w, h)
	p.x = float64(w) / 2
	p.y = float64(h) / 2
}

// Preset returns the active preset.
func (v *ParticleField) Preset() ParticlePreset {
	return v.preset
}

// SetPreset switches the motion model and re-seeds the pool. The pool
// backing array is reused; only the live count changes.
func (v *ParticleField) SetPreset(preset ParticlePreset) {
	if preset.Count <= 0 || preset.Motion == "" {
		return
	}
	if preset.Count > particlePoolMax {
		preset.Count = particlePoolMax
	}
	v.preset = preset
	v.alive = preset.Count
	v.seeded = false
}

// AliveCount returns the number of live particles.
func (v *ParticleField) AliveCount() int {
	return v.alive
}

// Resize drops the seed flag so the pool is redistributed for the new
// geometry on the next frame.
func (v *ParticleField) Resize(width, height int) {
	v.seeded = false
}

// SetDemoMode is a no-op: the field reacts to whatever snapshots arrive.
func (v *ParticleField) SetDemoMode(bool) {}

// Dispose releases the surface reference and the warp buffer. Idempotent.
func (v *ParticleField) Dispose() {
	if v.state == StateDisposed {
		return
	}
	v.state = StateDisposed
	v.surface = nil
	v.warpBuf = nil
}

// Verify interface implementation at compile time.
var _ Visualizer = (*ParticleField)(nil)
