// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"fmt"
	"log/slog"
	"sync"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"

	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/adapter/audio/file"
	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/adapter/audio/mock"
	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/adapter/eventbus"
	fyneui "github.com/BowmanStephen/app-winamp-viz-sub000/internal/adapter/ui/fyne"
	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/analysis"
	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/domain"
	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/logger"
	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/ports"
	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/viz"
)

// Initial framebuffer size before the first widget resize arrives.
const (
	initialSurfaceWidth  = 640
	initialSurfaceHeight = 480
)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based
// injection: every component receives its collaborators explicitly, nothing
// reaches for globals.
type Application struct {
	// Core dependencies
	logger  *slog.Logger
	fyneApp fyne.App

	// Infrastructure
	eventBus ports.EventBus
	source   ports.AudioSource

	// Engine
	analyzer *analysis.SpectralAnalyzer
	manager  *viz.Manager

	// UI
	presenter  *fyneui.Presenter
	mainWindow *fyneui.MainWindow

	shutdownOnce sync.Once
}

// Config holds application configuration.
type Config struct {
	// AppID is the unique application identifier
	AppID string

	// AppName is the display name
	AppName string

	// SourcePath is the audio file to visualize. Empty means no file source;
	// the demo signal is the only input then.
	SourcePath string

	// DemoMode starts the engine on the deterministic demo signal
	DemoMode bool

	// FFTSize is the analysis window size (power of two)
	FFTSize int

	// LogLevel controls logging verbosity
	LogLevel slog.Level

	// UseMockSource replaces the file source with a sine generator (for testing)
	UseMockSource bool

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() Config {
	loggerCfg := logger.DefaultConfig()
	return Config{
		AppID:    "com.ampviz.app",
		AppName:  "AmpViz",
		FFTSize:  analysis.DefaultSpectralConfig().FFTSize,
		LogLevel: loggerCfg.Level,
	}
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(config Config) (*Application, error) {
	app := &Application{}

	// Step 1: Create Fyne application
	if config.TestFyneApp != nil {
		app.fyneApp = config.TestFyneApp
	} else {
		app.fyneApp = fyneapp.NewWithID(config.AppID)
	}

	// Step 2: Create logger
	app.logger = logger.NewLogger(logger.Config{
		Level:  config.LogLevel,
		Format: "text",
	})
	app.logger.Info("initializing application",
		slog.String("app_id", config.AppID),
		slog.String("app_name", config.AppName),
		slog.String("version", GetVersionInfo().Version))

	// Step 3: Create an event bus
	syncBus := eventbus.NewSyncEventBus()
	syncBus.SetLogger(app.logger.With(slog.String("component", "eventbus")))
	app.eventBus = syncBus

	// Step 4: Create the audio source
	if err := app.openSource(config); err != nil {
		return nil, err
	}

	// Step 5: Create the spectral analyzer
	spectralCfg := analysis.DefaultSpectralConfig()
	if config.FFTSize > 0 {
		spectralCfg.FFTSize = config.FFTSize
	}
	app.analyzer = analysis.NewSpectralAnalyzer(
		app.logger.With(slog.String("component", "analyzer")),
		spectralCfg,
	)

	if app.source != nil {
		if err := app.analyzer.Init(app.source); err != nil {
			// Not fatal: the demo signal still works without a source.
			app.logger.Warn("audio analysis unavailable, demo signal only",
				slog.Any("error", err))
			config.DemoMode = true
		}
	} else if !config.DemoMode {
		app.logger.Info("no audio source configured, enabling demo signal")
		config.DemoMode = true
	}

	// Step 6: Create the visualizer manager and register the effects
	app.manager = viz.NewManager(
		app.logger.With(slog.String("component", "manager")),
		app.eventBus,
		initialSurfaceWidth,
		initialSurfaceHeight,
	)
	registerVisualizers(app.manager)

	// Step 7: Create UI and presenter
	var presenter *fyneui.Presenter
	vizWidget := fyneui.NewVizWidget(func(w, h int) {
		if presenter != nil {
			presenter.RequestResize(w, h)
		}
	})
	app.mainWindow = fyneui.NewMainWindow(app.fyneApp, config.AppName, vizWidget)

	presenter = fyneui.NewPresenter(
		app.logger.With(slog.String("component", "presenter")),
		app.analyzer,
		app.manager,
		app.eventBus,
		app.mainWindow,
	)
	app.presenter = presenter
	app.mainWindow.SetPresenter(presenter)
	app.mainWindow.SetOnBeforeClose(app.Shutdown)

	// Step 8: Initial state
	if fileSource, ok := app.source.(*file.Source); ok {
		meta := fileSource.Metadata()
		app.mainWindow.SetTrackInfo(meta.Title, meta.Artist)
	}
	if config.DemoMode {
		app.presenter.SetDemoMode(true)
	}
	app.presenter.SwitchVisualizer(string(domain.KindSpectrumBars))

	return app, nil
}

// openSource creates the configured audio source, if any.
func (a *Application) openSource(config Config) error {
	switch {
	case config.UseMockSource:
		a.source = mock.NewSource()
	case config.SourcePath != "":
		src, err := file.Open(
			a.logger.With(slog.String("component", "source")),
			config.SourcePath,
		)
		if err != nil {
			return fmt.Errorf("failed to open audio source: %w", err)
		}
		a.source = src
	}
	return nil
}

// registerVisualizers adds the built-in effects to the manager's registry.
func registerVisualizers(m *viz.Manager) {
	m.Register(domain.VisualizerInfo{
		ID:          string(domain.KindSpectrumBars),
		Name:        "Spectrum Bars",
		Description: "Log-spaced frequency bars with peak caps",
		Kind:        domain.KindSpectrumBars,
	}, func() viz.Visualizer {
		return viz.NewSpectrumBars(viz.DefaultSpectrumBarsConfig())
	})

	m.Register(domain.VisualizerInfo{
		ID:          string(domain.KindOscilloscope),
		Name:        "Oscilloscope",
		Description: "Triggered waveform trace with phosphor persistence",
		Kind:        domain.KindOscilloscope,
	}, func() viz.Visualizer {
		return viz.NewOscilloscope(viz.DefaultOscilloscopeConfig())
	})

	m.Register(domain.VisualizerInfo{
		ID:          string(domain.KindParticles),
		Name:        "Particle Field",
		Description: "Beat-reactive particle system with feedback trails",
		Kind:        domain.KindParticles,
	}, func() viz.Visualizer {
		return viz.NewParticleField(viz.ParticlePresets[0])
	})

	m.Register(domain.VisualizerInfo{
		ID:          string(domain.KindLevelMeter),
		Name:        "Level Meter",
		Description: "Segmented VU ladder with analog needle ballistics",
		Kind:        domain.KindLevelMeter,
	}, func() viz.Visualizer {
		return viz.NewLevelMeter(viz.DefaultLevelMeterConfig())
	})
}

// Run starts the application.
// This is called from main.go after the application is created. Blocks until
// the window is closed.
func (a *Application) Run() {
	a.logger.Info("AmpViz started")
	a.mainWindow.ShowAndRun()
}

// Shutdown gracefully shuts down the application. Idempotent: it is invoked
// both from the window close callback and from main's deferred call.
func (a *Application) Shutdown() {
	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down application")

		if a.presenter != nil {
			a.presenter.Shutdown()
		}

		if a.source != nil {
			if err := a.source.Close(); err != nil {
				a.logger.Warn("failed to close audio source", slog.Any("error", err))
			}
		}

		if a.eventBus != nil {
			if err := a.eventBus.Close(); err != nil {
				a.logger.Warn("failed to close event bus", slog.Any("error", err))
			}
		}

		a.logger.Info("application shutdown complete")
	})
}
