package fyne

import (
	"image"
	"sync"

	fyneapp "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/harmonica"
)

// crossfade spring tuning: settles in roughly a quarter second at 60Hz.
const (
	crossfadeFPS       = 60
	crossfadeFrequency = 6.0
	crossfadeDamping   = 0.9
)

// VizWidget is the canvas widget that displays the engine framebuffer.
// It owns no rendering logic; it blits whatever the active effect drew and
// runs a spring-driven brightness crossfade when the effect changes.
//
// The widget never shares pixel memory across goroutines: SetFrame copies
// the engine frame into frame (written only under mu), and draw blits into
// display, which only the paint goroutine ever touches.
type VizWidget struct {
	widget.BaseWidget

	raster *canvas.Raster

	mu      sync.Mutex
	frame   *image.RGBA
	display *image.RGBA

	onResize func(w, h int)

	spring  harmonica.Spring
	fadePos float64
	fadeVel float64
	lastW   int
	lastH   int
}

// NewVizWidget creates the widget. onResize is invoked from the draw path
// whenever the raster size changes, so the engine framebuffer can follow.
func NewVizWidget(onResize func(w, h int)) *VizWidget {
	v := &VizWidget{
		onResize: onResize,
		spring:   harmonica.NewSpring(harmonica.FPS(crossfadeFPS), crossfadeFrequency, crossfadeDamping),
		fadePos:  1,
	}
	v.raster = canvas.NewRaster(v.draw)
	v.ExtendBaseWidget(v)
	return v
}

// CreateRenderer implements fyne.Widget.
func (v *VizWidget) CreateRenderer() fyneapp.WidgetRenderer {
	return widget.NewSimpleRenderer(v.raster)
}

// MinSize returns a minimal size so the widget expands to fill available
// space.
func (v *VizWidget) MinSize() fyneapp.Size {
	return fyneapp.NewSize(320, 240)
}

// SetFrame snapshots the latest rendered frame and requests a redraw.
// The pixels are copied under the lock so the engine can keep drawing into
// the same framebuffer while the paint goroutine reads ours.
func (v *VizWidget) SetFrame(frame *image.RGBA) {
	if frame == nil {
		return
	}
	v.mu.Lock()
	if v.frame == nil || v.frame.Bounds() != frame.Bounds() {
		v.frame = image.NewRGBA(frame.Bounds())
	}
	copy(v.frame.Pix, frame.Pix)
	v.mu.Unlock()
	v.raster.Refresh()
}

// StartCrossfade restarts the brightness ramp, used when the active effect
// changes so the new effect springs in instead of popping.
func (v *VizWidget) StartCrossfade() {
	v.mu.Lock()
	v.fadePos = 0
	v.fadeVel = 0
	v.mu.Unlock()
}

// draw blits the engine frame at the spring-driven brightness.
func (v *VizWidget) draw(w, h int) image.Image {
	if v.lastW != w || v.lastH != h {
		v.lastW = w
		v.lastH = h
		if v.onResize != nil {
			v.onResize(w, h)
		}
	}

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.frame == nil {
		return image.NewRGBA(image.Rect(0, 0, w, h))
	}

	v.fadePos, v.fadeVel = v.spring.Update(v.fadePos, v.fadeVel, 1)
	if v.fadePos < 0 {
		v.fadePos = 0
	}

	if v.display == nil || v.display.Bounds() != v.frame.Bounds() {
		v.display = image.NewRGBA(v.frame.Bounds())
	}
	out := v.display

	if v.fadePos >= 0.999 {
		v.fadePos = 1
		copy(out.Pix, v.frame.Pix)
		return out
	}

	for i := 0; i < len(v.frame.Pix); i += 4 {
		out.Pix[i] = uint8(float64(v.frame.Pix[i]) * v.fadePos)
		out.Pix[i+1] = uint8(float64(v.frame.Pix[i+1]) * v.fadePos)
		out.Pix[i+2] = uint8(float64(v.frame.Pix[i+2]) * v.fadePos)
		out.Pix[i+3] = 255
	}
	return out
}
