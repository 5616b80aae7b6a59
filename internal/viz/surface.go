package viz

import (
	"image"
)

// Surface is the render target handed to an effect at initialization.
// Effects draw into Image() during Render; the UI shell blits the same
// framebuffer into whatever widget toolkit it uses.
type Surface interface {
	// Size returns the current surface dimensions in pixels.
	Size() (width, height int)

	// Image returns the backing framebuffer. The pointer changes after
	// Resize, so effects must re-fetch it every frame.
	Image() *image.RGBA

	// Resize reallocates the framebuffer to the new dimensions.
	Resize(width, height int)
}

// FrameBuffer is an offscreen Surface backed by an image.RGBA.
type FrameBuffer struct {
	img *image.RGBA
}

// NewFrameBuffer creates a framebuffer with the given initial size.
// Non-positive dimensions are clamped to 1 so the buffer is always drawable.
func NewFrameBuffer(width, height int) *FrameBuffer {
	fb := &FrameBuffer{}
	fb.Resize(width, height)
	return fb
}

// Size returns the framebuffer dimensions.
func (fb *FrameBuffer) Size() (int, int) {
	b := fb.img.Bounds()
	return b.Dx(), b.Dy()
}

// Image returns the backing image.
func (fb *FrameBuffer) Image() *image.RGBA {
	return fb.img
}

// Resize reallocates the backing image. No-op when the size is unchanged.
func (fb *FrameBuffer) Resize(width, height int) {
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	if fb.img != nil {
		b := fb.img.Bounds()
		if b.Dx() == width && b.Dy() == height {
			return
		}
	}
	fb.img = image.NewRGBA(image.Rect(0, 0, width, height))
}

// Verify interface implementation at compile time.
var _ Surface = (*FrameBuffer)(nil)
