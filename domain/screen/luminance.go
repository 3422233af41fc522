package screen

import "image"

// MeanLuminance returns the arithmetic mean of all samples in g.
// An empty frame yields 0.
func MeanLuminance(g *image.Gray) float64 {
	if g == nil {
		return 0
	}
	b := g.Bounds()
	w, h := b.Dx(), b.Dy()
	n := w * h
	if n <= 0 {
		return 0
	}
	var sum uint64
	for y := 0; y < h; y++ {
		off := g.PixOffset(b.Min.X, b.Min.Y+y)
		for _, v := range g.Pix[off : off+w] {
			sum += uint64(v)
		}
	}
	return float64(sum) / float64(n)
}

// IsBlack reports whether luminance falls strictly below threshold.
func IsBlack(luminance, threshold float64) bool {
	return luminance < threshold
}
