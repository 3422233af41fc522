package capture

import (
	"context"
	"fmt"
	"image"
	"time"

	"github.com/vova616/screenshot"
)

// ScreenSource grabs the live screen, or a selection of it, on every Next.
type ScreenSource struct {
	counters
	selection image.Rectangle
}

// NewScreenSource returns a source capturing selection, or the whole active
// monitor when selection is empty.
func NewScreenSource(selection image.Rectangle) *ScreenSource {
	return &ScreenSource{selection: selection}
}

// Grab returns a screen capture of the current active monitor.
func Grab() (*image.RGBA, error) {
	return screenshot.CaptureScreen()
}

// GrabSelection returns a capture of the given screen rectangle.
func GrabSelection(area image.Rectangle) (*image.RGBA, error) {
	return screenshot.CaptureRect(area)
}

func (s *ScreenSource) Next(ctx context.Context) (FrameSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return FrameSnapshot{}, err
	}
	start := time.Now()
	var (
		img *image.RGBA
		err error
	)
	if !s.selection.Empty() {
		img, err = GrabSelection(s.selection)
	} else {
		img, err = Grab()
	}
	if err != nil {
		return s.fail("screen", fmt.Errorf("capture screen: %w", err)), nil
	}
	return s.record(img, "screen", start), nil
}

func (s *ScreenSource) Close() error { return nil }
