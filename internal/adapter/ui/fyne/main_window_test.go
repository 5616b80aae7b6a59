package fyne

import (
	"testing"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
)

func newTestWindow() *MainWindow {
	return NewMainWindow(test.NewApp(), "test", NewVizWidget(nil))
}

func TestMainWindowTrackInfo(t *testing.T) {
	w := newTestWindow()

	w.SetTrackInfo("Thunderstruck", "AC/DC")
	assert.Equal(t, "AC/DC - Thunderstruck", w.trackLabel.Text)

	w.SetTrackInfo("Untitled", "")
	assert.Equal(t, "Untitled", w.trackLabel.Text)

	w.SetTrackInfo("", "")
	assert.Equal(t, "", w.trackLabel.Text)
}

func TestMainWindowMetricsLabel(t *testing.T) {
	w := newTestWindow()

	w.SetMetrics(60, 2.5)
	assert.Equal(t, "60 fps  2.5 ms", w.metricsLabel.Text)
}
