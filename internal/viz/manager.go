package viz

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/domain"
	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/ports"
)

// maxInitFailures is how many times a visualizer may fail Initialize before
// it is permanently deregistered.
const maxInitFailures = 3

// registration pairs a visualizer's registry data with its factory.
type registration struct {
	info    domain.VisualizerInfo
	factory Factory
}

// Manager is the visualizer registry and switching state machine.
// It owns the single active effect instance and the shared framebuffer,
// forwards Update/Render/Resize to the active effect, and bounds repeatedly
// failing effects.
//
// The manager is designed for a single-threaded, frame-driven caller: one
// update+render pass per display refresh, with Switch issued from the same
// goroutine between frames.
type Manager struct {
	logger *slog.Logger
	bus    ports.EventBus

	registry []registration
	disabled map[string]bool
	failures map[string]int

	surface Surface
	tracker *FPSTracker

	active        Visualizer
	activeID      string
	transitioning bool
	demoMode      bool
	disposed      bool
}

// NewManager creates a manager rendering into a framebuffer of the given
// initial size.
func NewManager(logger *slog.Logger, bus ports.EventBus, width, height int) *Manager {
	return &Manager{
		logger:   logger,
		bus:      bus,
		disabled: make(map[string]bool),
		failures: make(map[string]int),
		surface:  NewFrameBuffer(width, height),
		tracker:  NewFPSTracker(),
	}
}

// Register adds a visualizer to the registry. Registration order is
// preserved in List. Re-registering an id replaces its factory.
func (m *Manager) Register(info domain.VisualizerInfo, factory Factory) {
	for i := range m.registry {
		if m.registry[i].info.ID == info.ID {
			m.registry[i] = registration{info: info, factory: factory}
			return
		}
	}
	m.registry = append(m.registry, registration{info: info, factory: factory})
	m.logger.Debug("visualizer registered", slog.String("id", info.ID))
}

// List returns the registered visualizers in registration order,
// excluding permanently disabled ones.
func (m *Manager) List() []domain.VisualizerInfo {
	infos := make([]domain.VisualizerInfo, 0, len(m.registry))
	for _, reg := range m.registry {
		if m.disabled[reg.info.ID] {
			continue
		}
		infos = append(infos, reg.info)
	}
	return infos
}

// ActiveID returns the id of the active visualizer, or empty when none.
func (m *Manager) ActiveID() string {
	return m.activeID
}

// Surface returns the framebuffer the active effect draws into.
func (m *Manager) Surface() Surface {
	return m.surface
}

// Switch disposes the active visualizer and activates the one registered
// under id. A switch requested while another is in flight is dropped with
// ErrTransitionInProgress; callers must reissue. Initialization failures are
// counted per id; the third failure permanently deregisters the visualizer
// so later switches to it return ErrUnknownVisualizer.
func (m *Manager) Switch(ctx context.Context, id string) error {
	if m.transitioning {
		return domain.ErrTransitionInProgress
	}

	reg, ok := m.lookup(id)
	if !ok {
		return fmt.Errorf("switch to %q: %w", id, domain.ErrUnknownVisualizer)
	}

	m.transitioning = true
	defer func() { m.transitioning = false }()

	// The old instance is always fully disposed before the new one is
	// constructed; at most one effect instance exists at any time.
	previousID := m.activeID
	if m.active != nil {
		m.active.Dispose()
		m.active = nil
		m.activeID = ""
	}

	inst := reg.factory()
	if err := m.initialize(ctx, inst); err != nil {
		m.recordFailure(id, err)
		return domain.NewInitializationError(id, m.failures[id], err)
	}

	inst.SetDemoMode(m.demoMode)
	m.active = inst
	m.activeID = id
	m.failures[id] = 0

	m.logger.Info("visualizer switched",
		slog.String("id", id),
		slog.String("previous", previousID))
	m.bus.Publish(domain.NewVisualizerSwitchedEvent(reg.info, previousID))

	return nil
}

// initialize runs an effect's Initialize, converting panics into errors.
func (m *Manager) initialize(ctx context.Context, inst Visualizer) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("initialize panicked: %v", r)
		}
	}()
	return inst.Initialize(ctx, m.surface)
}

// recordFailure counts an initialization failure and deregisters the
// visualizer permanently after the limit is reached.
func (m *Manager) recordFailure(id string, err error) {
	m.failures[id]++
	attempt := m.failures[id]

	m.logger.Warn("visualizer failed to initialize",
		slog.String("id", id),
		slog.Int("attempt", attempt),
		slog.Any("error", err))
	m.bus.Publish(domain.NewVisualizerSwitchFailedEvent(id, attempt, err))

	if attempt >= maxInitFailures {
		m.disabled[id] = true
		m.logger.Warn("visualizer permanently disabled",
			slog.String("id", id),
			slog.Int("failures", attempt))
		m.bus.Publish(domain.NewVisualizerDisabledEvent(id, attempt))
	}
}

// Update forwards a snapshot to the active effect. With no Ready effect this
// is a silent no-op; a panicking effect skips the frame instead of crashing
// the loop.
func (m *Manager) Update(snapshot domain.AudioSnapshot) {
	if m.active == nil {
		return
	}
	defer m.recoverFrame("update")
	m.active.Update(snapshot)
}

// Render asks the active effect to draw one frame and records it for FPS
// accounting. No active effect means a skipped frame, not an error.
func (m *Manager) Render() {
	if m.active == nil {
		return
	}
	defer m.recoverFrame("render")

	start := time.Now()
	m.active.Render()
	m.tracker.Record(time.Since(start))
}

// recoverFrame converts a per-frame panic into a skipped frame.
func (m *Manager) recoverFrame(op string) {
	if r := recover(); r != nil {
		m.logger.Debug("frame skipped",
			slog.String("op", op),
			slog.String("id", m.activeID),
			slog.Any("panic", r))
	}
}

// Resize rebuilds the framebuffer and forwards the new geometry to the
// active effect. Resizes are synchronous and uncoalesced.
func (m *Manager) Resize(width, height int) {
	m.surface.Resize(width, height)
	if m.active != nil {
		m.active.Resize(width, height)
	}
	m.bus.Publish(domain.NewSurfaceResizedEvent(width, height))
}

// Metrics returns the render frame rate and last frame time in milliseconds.
func (m *Manager) Metrics() (fps float64, frameTimeMs float64) {
	return m.tracker.FPS(), float64(m.tracker.FrameTime().Microseconds()) / 1000.0
}

// SetDemoMode toggles demo mode on the active effect and remembers the flag
// for effects activated later. Dispatch is uniform through the Visualizer
// interface.
func (m *Manager) SetDemoMode(enabled bool) {
	if m.demoMode == enabled {
		return
	}
	m.demoMode = enabled
	if m.active != nil {
		m.active.SetDemoMode(enabled)
	}
	m.bus.Publish(domain.NewDemoModeChangedEvent(enabled))
}

// Dispose disposes the active effect and makes the manager inert.
// Idempotent.
func (m *Manager) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	if m.active != nil {
		m.active.Dispose()
		m.active = nil
		m.activeID = ""
	}
	m.logger.Debug("visualizer manager disposed")
}

func (m *Manager) lookup(id string) (registration, bool) {
	if m.disabled[id] {
		return registration{}, false
	}
	for _, reg := range m.registry {
		if reg.info.ID == id {
			return reg, true
		}
	}
	return registration{}, false
}
