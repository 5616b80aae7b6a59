package viz

import (
	"image"
	"image/color"
	"math"
)

// fillBackground fills the image with a solid color.
func fillBackground(img *image.RGBA, col color.Color) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			img.Set(x, y, col)
		}
	}
}

// fadeImage multiplies every pixel by factor (0..1), leaving alpha opaque.
// Used for cheap persistence/feedback emulation.
func fadeImage(img *image.RGBA, factor float64) {
	if factor >= 1 {
		return
	}
	pix := img.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i] = uint8(float64(pix[i]) * factor)
		pix[i+1] = uint8(float64(pix[i+1]) * factor)
		pix[i+2] = uint8(float64(pix[i+2]) * factor)
		pix[i+3] = 255
	}
}

// drawLine draws a straight line between two points.
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	bounds := img.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	steps := int(math.Max(math.Abs(float64(dx)), math.Abs(float64(dy))))

	if steps == 0 {
		if image.Pt(x1, y1).In(bounds) {
			img.SetRGBA(x1, y1, col)
		}
		return
	}

	xInc := float64(dx) / float64(steps)
	yInc := float64(dy) / float64(steps)

	x := float64(x1)
	y := float64(y1)

	for i := 0; i <= steps; i++ {
		px, py := int(x), int(y)
		if image.Pt(px, py).In(bounds) {
			img.SetRGBA(px, py, col)
		}
		x += xInc
		y += yInc
	}
}

// drawThickLine draws a line with the specified thickness.
func drawThickLine(img *image.RGBA, x1, y1, x2, y2 float64, thickness int, col color.RGBA) {
	bounds := img.Bounds()

	dx := x2 - x1
	dy := y2 - y1
	length := math.Sqrt(dx*dx + dy*dy)

	if length == 0 {
		return
	}

	// Perpendicular unit vector for thickness
	perpX := -dy / length
	perpY := dx / length

	steps := int(length) + 1

	for t := -thickness / 2; t <= thickness/2; t++ {
		offsetX := float64(t) * perpX
		offsetY := float64(t) * perpY

		for i := 0; i <= steps; i++ {
			progress := float64(i) / float64(steps)
			px := int(x1 + dx*progress + offsetX)
			py := int(y1 + dy*progress + offsetY)

			if image.Pt(px, py).In(bounds) {
				img.SetRGBA(px, py, col)
			}
		}
	}
}

// fillRect fills an axis-aligned rectangle, clipped to the image bounds.
func fillRect(img *image.RGBA, x, y, w, h int, col color.RGBA) {
	bounds := img.Bounds()
	for py := y; py < y+h; py++ {
		for px := x; px < x+w; px++ {
			if image.Pt(px, py).In(bounds) {
				img.SetRGBA(px, py, col)
			}
		}
	}
}

// drawFilledCircle draws a filled circle.
func drawFilledCircle(img *image.RGBA, cx, cy int, radius float64, col color.RGBA) {
	bounds := img.Bounds()
	r := int(radius)

	for dy := -r; dy <= r; dy++ {
		for dx := -r; dx <= r; dx++ {
			if dx*dx+dy*dy <= r*r {
				px, py := cx+dx, cy+dy
				if image.Pt(px, py).In(bounds) {
					img.SetRGBA(px, py, col)
				}
			}
		}
	}
}

// zoneColor returns the ladder color for a normalized position:
// green below 0.6, yellow from 0.6 to 0.8, red above.
func zoneColor(pos float64) color.RGBA {
	switch {
	case pos < 0.6:
		return color.RGBA{R: 0, G: 255, B: 0, A: 255}
	case pos < 0.8:
		return color.RGBA{R: 255, G: 220, B: 0, A: 255}
	default:
		return color.RGBA{R: 255, G: 40, B: 0, A: 255}
	}
}

// gradientColor returns a smooth green-to-yellow-to-red gradient color for a
// normalized position (0 bottom, 1 top).
func gradientColor(pos float64) color.RGBA {
	if pos < 0 {
		pos = 0
	}
	if pos > 1 {
		pos = 1
	}

	var r, g uint8
	if pos < 0.5 {
		r = uint8(pos * 2 * 255)
		g = 255
	} else {
		r = 255
		g = uint8((1 - (pos-0.5)*2) * 255)
	}

	return color.RGBA{R: r, G: g, B: 0, A: 255}
}

// scaleColor multiplies a color's channels by factor (0..1).
func scaleColor(col color.RGBA, factor float64) color.RGBA {
	if factor < 0 {
		factor = 0
	}
	if factor > 1 {
		factor = 1
	}
	return color.RGBA{
		R: uint8(float64(col.R) * factor),
		G: uint8(float64(col.G) * factor),
		B: uint8(float64(col.B) * factor),
		A: col.A,
	}
}

// hslToRGB converts HSL to an RGBA color (h, s, l in 0-1 range).
func hslToRGB(h, s, l float64) color.RGBA {
	var r, g, b float64
	if s == 0 {
		r, g, b = l, l, l
	} else {
		var q float64
		if l < 0.5 {
			q = l * (1 + s)
		} else {
			q = l + s - l*s
		}
		p := 2*l - q

		r = hueToRGB(p, q, h+1.0/3.0)
		g = hueToRGB(p, q, h)
		b = hueToRGB(p, q, h-1.0/3.0)
	}

	return color.RGBA{
		R: uint8(r * 255),
		G: uint8(g * 255),
		B: uint8(b * 255),
		A: 255,
	}
}

// hueToRGB is a helper for HSL to RGB conversion.
func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t += 1
	}
	if t > 1 {
		t -= 1
	}
	if t < 1.0/6.0 {
		return p + (q-p)*6*t
	}
	if t < 0.5 {
		return q
	}
	if t < 2.0/3.0 {
		return p + (q-p)*(2.0/3.0-t)*6
	}
	return p
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
