package screen

import (
	"fmt"
	"image"
	"reflect"
)

// ToGrayscale reduces frame to a single luma channel of identical size.
// Luma uses the BT.601 weights in 8.8 fixed point (77, 150, 29).
func ToGrayscale(frame image.Image) (*image.Gray, error) {
	if isNilFrame(frame) {
		return nil, ErrInvalidFrame
	}
	b := frame.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: empty bounds %v", ErrInvalidFrame, b)
	}
	out := image.NewGray(image.Rect(0, 0, w, h))
	switch src := frame.(type) {
	case *image.Gray:
		for y := 0; y < h; y++ {
			off := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pix[y*out.Stride:y*out.Stride+w], src.Pix[off:off+w])
		}
	case *image.RGBA:
		for y := 0; y < h; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			dst := out.Pix[y*out.Stride:]
			for x := 0; x < w; x++ {
				i := x * 4
				dst[x] = luma8(row[i], row[i+1], row[i+2])
			}
		}
	case *image.NRGBA:
		for y := 0; y < h; y++ {
			row := src.Pix[src.PixOffset(b.Min.X, b.Min.Y+y):]
			dst := out.Pix[y*out.Stride:]
			for x := 0; x < w; x++ {
				i := x * 4
				dst[x] = luma8(row[i], row[i+1], row[i+2])
			}
		}
	default:
		for y := 0; y < h; y++ {
			dst := out.Pix[y*out.Stride:]
			for x := 0; x < w; x++ {
				r, g, bb, _ := frame.At(b.Min.X+x, b.Min.Y+y).RGBA()
				dst[x] = luma8(uint8(r>>8), uint8(g>>8), uint8(bb>>8))
			}
		}
	}
	return out, nil
}

func luma8(r, g, b uint8) uint8 {
	return uint8((77*uint32(r) + 150*uint32(g) + 29*uint32(b)) >> 8)
}

// isNilFrame catches both a nil interface and a typed nil pointer of any
// image type, whose Bounds method would panic.
func isNilFrame(frame image.Image) bool {
	if frame == nil {
		return true
	}
	v := reflect.ValueOf(frame)
	return v.Kind() == reflect.Pointer && v.IsNil()
}
