package capture

import (
	"context"
	"image"
	"time"
)

// FrameSnapshot carries one captured frame and its metadata. Image is nil when
// the frame could not be acquired or decoded; Err then says why.
type FrameSnapshot struct {
	Image      image.Image
	CapturedAt time.Time
	Sequence   uint64
	ID         string // file name, video frame index or "screen"
	Err        error
}

// Source yields frames one at a time. Next returns io.EOF once a finite source
// is exhausted. A frame that fails to decode is returned as a snapshot with a
// nil Image rather than as an error, so callers can skip it and continue.
type Source interface {
	Next(ctx context.Context) (FrameSnapshot, error)
	Stats() CaptureStats
	Close() error
}
