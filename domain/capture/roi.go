package capture

import (
	"image"
	"image/draw"
)

// Crop returns the part of frame inside sel, clamped to the frame bounds.
// An empty sel, or one that misses the frame entirely, returns frame as is.
// The result shares pixels with frame when the image type supports SubImage.
func Crop(frame image.Image, sel image.Rectangle) image.Image {
	if frame == nil || sel.Empty() {
		return frame
	}
	b := frame.Bounds()
	roi := sel.Add(b.Min).Intersect(b)
	if roi.Empty() {
		return frame
	}
	if s, ok := frame.(interface {
		SubImage(image.Rectangle) image.Image
	}); ok {
		return s.SubImage(roi)
	}
	out := image.NewRGBA(image.Rect(0, 0, roi.Dx(), roi.Dy()))
	draw.Draw(out, out.Bounds(), frame, roi.Min, draw.Src)
	return out
}

// Selection builds a rectangle from an origin and size; a non-positive size
// yields the empty rectangle.
func Selection(x, y, w, h int) image.Rectangle {
	if w <= 0 || h <= 0 {
		return image.Rectangle{}
	}
	return image.Rect(x, y, x+w, y+h)
}
