package fyne

import (
	"fmt"
	"image"
	"sync"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/BowmanStephen/app-winamp-viz-sub000/internal/domain"
)

// Default window geometry.
const (
	windowWidth  = 800
	windowHeight = 520
)

// MainWindow is the main UI window implementing the UIView interface.
//
// It follows the MVP pattern: a dumb view that displays engine output and
// forwards user interactions to the Presenter.
type MainWindow struct {
	app    fyneapp.App
	window fyneapp.Window

	vizWidget    *VizWidget
	vizSelect    *widget.Select
	demoCheck    *widget.Check
	trackLabel   *widget.Label
	metricsLabel *widget.Label

	infos []domain.VisualizerInfo

	closeOnce sync.Once

	// Presenter (set after construction)
	presenter *Presenter
}

// NewMainWindow creates the main window around the given viz widget.
func NewMainWindow(app fyneapp.App, title string, vizWidget *VizWidget) *MainWindow {
	w := &MainWindow{
		app:       app,
		vizWidget: vizWidget,
	}

	w.window = app.NewWindow(title)
	w.buildUI()
	w.window.Resize(fyneapp.NewSize(windowWidth, windowHeight))

	return w
}

// SetPresenter connects the presenter to this view.
// This must be called before showing the window.
func (w *MainWindow) SetPresenter(presenter *Presenter) {
	w.presenter = presenter

	w.vizSelect.OnChanged = func(name string) {
		for _, info := range w.infos {
			if info.Name == name {
				w.presenter.SwitchVisualizer(info.ID)
				return
			}
		}
	}
	w.demoCheck.OnChanged = func(enabled bool) {
		w.presenter.SetDemoMode(enabled)
	}
}

// buildUI constructs the UI components.
func (w *MainWindow) buildUI() {
	w.vizSelect = widget.NewSelect(nil, nil)
	w.vizSelect.PlaceHolder = "Visualizer"

	w.demoCheck = widget.NewCheck("Demo signal", nil)

	w.trackLabel = widget.NewLabel("")
	w.trackLabel.Truncation = fyneapp.TextTruncateClip

	w.metricsLabel = widget.NewLabel("")

	controls := container.NewBorder(nil, nil,
		container.NewHBox(w.vizSelect, w.demoCheck),
		w.metricsLabel,
		w.trackLabel,
	)

	w.window.SetContent(container.NewBorder(nil, controls, nil, nil, w.vizWidget))
}

// SetVisualizers populates the selector with the switchable effects.
func (w *MainWindow) SetVisualizers(infos []domain.VisualizerInfo) {
	w.infos = infos
	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	w.vizSelect.Options = names
	w.vizSelect.Refresh()
}

// SetActiveVisualizer reflects the active effect in the selector without
// re-triggering a switch.
func (w *MainWindow) SetActiveVisualizer(id string) {
	for _, info := range w.infos {
		if info.ID == id {
			w.vizSelect.SetSelectedIndex(w.indexOf(info.Name))
			return
		}
	}
}

func (w *MainWindow) indexOf(name string) int {
	for i, opt := range w.vizSelect.Options {
		if opt == name {
			return i
		}
	}
	return -1
}

// SetDemoState reflects the demo mode flag in the checkbox.
func (w *MainWindow) SetDemoState(enabled bool) {
	w.demoCheck.SetChecked(enabled)
}

// SetTrackInfo shows the source file's display tags.
func (w *MainWindow) SetTrackInfo(title, artist string) {
	switch {
	case title == "" && artist == "":
		w.trackLabel.SetText("")
	case artist == "":
		w.trackLabel.SetText(title)
	default:
		w.trackLabel.SetText(fmt.Sprintf("%s - %s", artist, title))
	}
}

// SetMetrics shows the render frame rate and frame time.
func (w *MainWindow) SetMetrics(fps, frameTimeMs float64) {
	w.metricsLabel.SetText(fmt.Sprintf("%.0f fps  %.1f ms", fps, frameTimeMs))
}

// SetFrame forwards the rendered frame to the viz widget.
func (w *MainWindow) SetFrame(frame *image.RGBA) {
	w.vizWidget.SetFrame(frame)
}

// StartCrossfade forwards to the viz widget.
func (w *MainWindow) StartCrossfade() {
	w.vizWidget.StartCrossfade()
}

// SetOnBeforeClose registers a callback invoked once when the window closes.
func (w *MainWindow) SetOnBeforeClose(fn func()) {
	w.window.SetOnClosed(func() {
		w.closeOnce.Do(fn)
	})
}

// ShowAndRun shows the window and runs the Fyne event loop. Blocks until the
// window is closed.
func (w *MainWindow) ShowAndRun() {
	w.window.ShowAndRun()
}

// Close closes the window programmatically.
func (w *MainWindow) Close() {
	w.window.Close()
}

// Verify interface implementation at compile time.
var _ UIView = (*MainWindow)(nil)
