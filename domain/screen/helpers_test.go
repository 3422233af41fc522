package screen

import (
	"image"
	"image/color"
)

// synthFrame creates a uniform RGBA image and applies an optional mutate func.
func synthFrame(w, h int, base byte, mutate func(px []byte, w, h int)) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = base, base, base, 255
	}
	if mutate != nil {
		mutate(img.Pix, w, h)
	}
	return img
}

// applyRegion sets RGB values to lum inside the given rectangle.
func applyRegion(px []byte, w, h int, x0, y0, x1, y1 int, lum byte) {
	for y := max(y0, 0); y < min(y1, h); y++ {
		for x := max(x0, 0); x < min(x1, w); x++ {
			i := (y*w + x) * 4
			px[i], px[i+1], px[i+2] = lum, lum, lum
		}
	}
}

// grayFrame builds a Gray image from row-major samples.
func grayFrame(w, h int, samples ...byte) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	copy(g.Pix, samples)
	return g
}

func uniformGray(w, h int, v byte) *image.Gray {
	g := image.NewGray(image.Rect(0, 0, w, h))
	for i := range g.Pix {
		g.Pix[i] = v
	}
	return g
}

var (
	red   = color.RGBA{R: 255, A: 255}
	green = color.RGBA{G: 255, A: 255}
	blue  = color.RGBA{B: 255, A: 255}
)
