// Package fyne provides the Fyne UI adapter: the window chrome, the canvas
// widget that blits engine frames, and the presenter driving the frame loop.
package fyne

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"sync"
	"time"

	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/analysis"
	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/domain"
	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/ports"
	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/viz"
)

// frameInterval targets ~60 frames per second.
const frameInterval = time.Second / 60

// metricsEveryNFrames is how often the metrics label is refreshed.
const metricsEveryNFrames = 30

// UIView defines the interface for UI updates.
// The actual UI implementation (MainWindow) must implement this interface.
type UIView interface {
	SetVisualizers(infos []domain.VisualizerInfo)
	SetActiveVisualizer(id string)
	SetDemoState(enabled bool)
	SetTrackInfo(title, artist string)
	SetMetrics(fps, frameTimeMs float64)
	SetFrame(frame *image.RGBA)
	StartCrossfade()
}

// Presenter implements the Presenter pattern (MVP architecture).
// It owns the frame loop goroutine: every tick it takes one snapshot from
// the analyzer, feeds the manager, and hands the rendered frame to the view.
//
// The manager expects a single frame-driven caller, so UI commands (switch,
// demo toggle, resize) are queued and executed on the loop goroutine between
// frames rather than invoked from Fyne callbacks directly.
type Presenter struct {
	logger   *slog.Logger
	analyzer *analysis.SpectralAnalyzer
	manager  *viz.Manager
	bus      ports.EventBus
	view     UIView

	commands chan func()
	stop     chan struct{}
	wg       sync.WaitGroup

	subscriptions []domain.SubscriptionID
	shutdownOnce  sync.Once
}

// NewPresenter creates a presenter and starts its frame loop.
func NewPresenter(
	logger *slog.Logger,
	analyzer *analysis.SpectralAnalyzer,
	manager *viz.Manager,
	bus ports.EventBus,
	view UIView,
) *Presenter {
	p := &Presenter{
		logger:   logger,
		analyzer: analyzer,
		manager:  manager,
		bus:      bus,
		view:     view,
		commands: make(chan func(), 16),
		stop:     make(chan struct{}),
	}

	p.subscribeToEvents()
	p.view.SetVisualizers(p.manager.List())

	p.wg.Add(1)
	go p.frameLoop()

	return p
}

// subscribeToEvents maps engine events to view updates. The bus is
// synchronous and the manager publishes from the loop goroutine, so handlers
// run there too.
func (p *Presenter) subscribeToEvents() {
	p.subscriptions = append(p.subscriptions,
		p.bus.Subscribe(domain.EventVisualizerSwitched, func(event domain.Event) {
			e := event.(domain.VisualizerSwitchedEvent)
			p.view.StartCrossfade()
			p.view.SetActiveVisualizer(e.Info.ID)
		}),
		p.bus.Subscribe(domain.EventVisualizerDisabled, func(event domain.Event) {
			e := event.(domain.VisualizerDisabledEvent)
			p.logger.Warn("visualizer removed from selection",
				slog.String("id", e.ID))
			p.view.SetVisualizers(p.manager.List())
		}),
		p.bus.Subscribe(domain.EventDemoModeChanged, func(event domain.Event) {
			e := event.(domain.DemoModeChangedEvent)
			p.view.SetDemoState(e.Enabled)
		}),
	)
}

// frameLoop is the single engine-driving goroutine.
func (p *Presenter) frameLoop() {
	defer p.wg.Done()

	ticker := time.NewTicker(frameInterval)
	defer ticker.Stop()

	frames := 0
	for {
		select {
		case <-p.stop:
			return
		case cmd := <-p.commands:
			cmd()
		case <-ticker.C:
			p.drainCommands()

			snapshot := p.analyzer.Snapshot()
			p.manager.Update(snapshot)
			p.manager.Render()
			p.view.SetFrame(p.manager.Surface().Image())

			frames++
			if frames%metricsEveryNFrames == 0 {
				fps, frameTimeMs := p.manager.Metrics()
				p.view.SetMetrics(fps, frameTimeMs)
			}
		}
	}
}

func (p *Presenter) drainCommands() {
	for {
		select {
		case cmd := <-p.commands:
			cmd()
		default:
			return
		}
	}
}

// enqueue schedules fn on the loop goroutine. Dropped when the presenter is
// shutting down.
func (p *Presenter) enqueue(fn func()) {
	select {
	case p.commands <- fn:
	case <-p.stop:
	}
}

// SwitchVisualizer requests a switch to the given effect id.
func (p *Presenter) SwitchVisualizer(id string) {
	p.enqueue(func() {
		err := p.manager.Switch(context.Background(), id)
		switch {
		case err == nil:
		case errors.Is(err, domain.ErrTransitionInProgress):
			p.logger.Debug("switch dropped, transition in progress",
				slog.String("id", id))
		default:
			p.logger.Warn("switch failed",
				slog.String("id", id),
				slog.Any("error", err))
			// Snap the selector back to whatever is actually active.
			p.view.SetActiveVisualizer(p.manager.ActiveID())
		}
	})
}

// SetDemoMode toggles the deterministic demo signal end to end: the analyzer
// generates it, the manager tells the effects.
func (p *Presenter) SetDemoMode(enabled bool) {
	p.enqueue(func() {
		p.analyzer.SetDemoMode(enabled)
		p.manager.SetDemoMode(enabled)
	})
}

// RequestResize forwards a surface resize to the engine.
func (p *Presenter) RequestResize(width, height int) {
	p.enqueue(func() {
		p.manager.Resize(width, height)
	})
}

// Shutdown stops the frame loop and detaches from the event bus. Idempotent.
func (p *Presenter) Shutdown() {
	p.shutdownOnce.Do(func() {
		close(p.stop)
		p.wg.Wait()

		for _, id := range p.subscriptions {
			p.bus.Unsubscribe(id)
		}
		p.manager.Dispose()
		p.logger.Debug("presenter shut down")
	})
}
