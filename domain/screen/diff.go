package screen

import (
	"fmt"
	"image"
)

// ChangeScore returns the mean absolute per-pixel difference between a and b.
// Both frames must have the same width and height, otherwise the error wraps
// ErrShapeMismatch. The score is symmetric and zero for identical frames.
func ChangeScore(a, b *image.Gray) (float64, error) {
	if a == nil || b == nil {
		return 0, ErrInvalidFrame
	}
	ab, bb := a.Bounds(), b.Bounds()
	if !SameShape(a, b) {
		return 0, fmt.Errorf("%w: %dx%d vs %dx%d", ErrShapeMismatch, ab.Dx(), ab.Dy(), bb.Dx(), bb.Dy())
	}
	w, h := ab.Dx(), ab.Dy()
	n := w * h
	if n <= 0 {
		return 0, ErrInvalidFrame
	}
	var sum uint64
	for y := 0; y < h; y++ {
		ra := a.Pix[a.PixOffset(ab.Min.X, ab.Min.Y+y):]
		rb := b.Pix[b.PixOffset(bb.Min.X, bb.Min.Y+y):]
		for x := 0; x < w; x++ {
			d := int(ra[x]) - int(rb[x])
			if d < 0 {
				d = -d
			}
			sum += uint64(d)
		}
	}
	return float64(sum) / float64(n), nil
}

// SameShape reports whether a and b have identical width and height.
func SameShape(a, b *image.Gray) bool {
	ab, bb := a.Bounds(), b.Bounds()
	return ab.Dx() == bb.Dx() && ab.Dy() == bb.Dy()
}

// IsFrozen reports whether score is strictly below threshold: the screen did
// not change enough between two consecutive frames.
func IsFrozen(score, threshold float64) bool {
	return score < threshold
}

// TouchSucceeded reports whether score is strictly above threshold: the input
// produced a visible change.
func TouchSucceeded(score, threshold float64) bool {
	return score > threshold
}
