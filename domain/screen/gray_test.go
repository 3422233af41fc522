package screen

import (
	"errors"
	"image"
	"image/color"
	"testing"
)

func TestToGrayscale_InvalidFrames(t *testing.T) {
	var nilRGBA *image.RGBA
	cases := map[string]image.Image{
		"nil interface": nil,
		"typed nil":     nilRGBA,
		"nil Gray16":    (*image.Gray16)(nil),
		"nil CMYK":      (*image.CMYK)(nil),
		"nil RGBA64":    (*image.RGBA64)(nil),
		"nil NYCbCrA":   (*image.NYCbCrA)(nil),
		"nil NRGBA64":   (*image.NRGBA64)(nil),
		"nil Alpha":     (*image.Alpha)(nil),
		"empty":         image.NewRGBA(image.Rect(0, 0, 0, 0)),
		"zero width":    image.NewRGBA(image.Rect(0, 0, 0, 10)),
	}
	for name, f := range cases {
		if _, err := ToGrayscale(f); !errors.Is(err, ErrInvalidFrame) {
			t.Fatalf("%s: expected ErrInvalidFrame, got %v", name, err)
		}
	}
}

func TestToGrayscale_KeepsSize(t *testing.T) {
	g, err := ToGrayscale(synthFrame(17, 9, 40, nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Bounds().Dx() != 17 || g.Bounds().Dy() != 9 {
		t.Fatalf("expected 17x9, got %v", g.Bounds())
	}
}

func TestToGrayscale_LumaWeights(t *testing.T) {
	tests := []struct {
		c    color.RGBA
		want uint8
	}{
		{color.RGBA{0, 0, 0, 255}, 0},
		{color.RGBA{255, 255, 255, 255}, 255},
		{red, 76},
		{green, 149},
		{blue, 28},
		{color.RGBA{10, 10, 10, 255}, 10},
	}
	for _, tt := range tests {
		img := image.NewRGBA(image.Rect(0, 0, 1, 1))
		img.SetRGBA(0, 0, tt.c)
		g, err := ToGrayscale(img)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := g.Pix[0]; got != tt.want {
			t.Errorf("luma(%v) = %d, want %d", tt.c, got, tt.want)
		}
	}
}

func TestToGrayscale_GenericPathMatchesRGBA(t *testing.T) {
	rgba := synthFrame(8, 8, 0, func(px []byte, w, h int) {
		for i := 0; i < len(px); i += 4 {
			px[i], px[i+1], px[i+2] = byte(i), byte(i*3), byte(255-i)
		}
	})
	// NRGBA64 has no fast path and goes through At().
	generic := image.NewNRGBA64(rgba.Bounds())
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			generic.Set(x, y, rgba.At(x, y))
		}
	}
	a, _ := ToGrayscale(rgba)
	b, _ := ToGrayscale(generic)
	for i := range a.Pix {
		if a.Pix[i] != b.Pix[i] {
			t.Fatalf("pixel %d: rgba path %d, generic path %d", i, a.Pix[i], b.Pix[i])
		}
	}
}

func TestToGrayscale_SubImageOffset(t *testing.T) {
	frame := synthFrame(20, 20, 0, func(px []byte, w, h int) { applyRegion(px, w, h, 10, 10, 20, 20, 200) })
	sub := frame.SubImage(image.Rect(10, 10, 20, 20))
	g, err := ToGrayscale(sub)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lum := MeanLuminance(g); lum != 200 {
		t.Fatalf("expected sub-image luminance 200, got %.2f", lum)
	}
}

func TestToGrayscale_GrayCopied(t *testing.T) {
	src := grayFrame(2, 2, 1, 2, 3, 4)
	g, err := ToGrayscale(src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	src.Pix[0] = 99
	if g.Pix[0] != 1 {
		t.Fatalf("grayscale output must not alias the input")
	}
}
