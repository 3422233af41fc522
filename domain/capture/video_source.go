package capture

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"log/slog"
	"strconv"
	"time"

	ffmpeg "github.com/u2takey/ffmpeg-go"
)

// VideoSource decodes frames from a recorded video through an ffmpeg process
// that streams PNG images on its stdout.
type VideoSource struct {
	counters
	reader    *bufio.Reader
	pipe      *io.PipeReader
	cancel    context.CancelFunc
	done      chan struct{}
	selection image.Rectangle
	index     int
}

// NewVideoSource starts ffmpeg sampling path at fps frames per second, scaled
// down to at most maxWidth pixels wide.
func NewVideoSource(path string, fps, maxWidth int, selection image.Rectangle, logger *slog.Logger) *VideoSource {
	if fps <= 0 {
		fps = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	r, w := io.Pipe()
	stream := ffmpeg.Input(path).
		Output("pipe:1", ffmpeg.KwArgs{
			"format": "image2pipe",
			"vcodec": "png",
			"r":      strconv.Itoa(fps),
			"vf":     fmt.Sprintf("scale='min(%d,iw)':-2", maxWidth),
		}).
		WithOutput(w).
		WithErrorOutput(io.Discard)
	stream.Context = ctx

	v := &VideoSource{
		reader:    bufio.NewReaderSize(r, 1<<20),
		pipe:      r,
		cancel:    cancel,
		done:      make(chan struct{}),
		selection: selection,
	}
	go func() {
		defer close(v.done)
		err := stream.Run()
		if err != nil && ctx.Err() == nil && logger != nil {
			logger.Error("ffmpeg", "path", path, "error", err)
		}
		w.CloseWithError(err)
	}()
	return v
}

func (v *VideoSource) Next(ctx context.Context) (FrameSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return FrameSnapshot{}, err
	}
	start := time.Now()
	if _, err := v.reader.Peek(1); err != nil {
		if errors.Is(err, io.EOF) {
			return FrameSnapshot{}, io.EOF
		}
		return FrameSnapshot{}, fmt.Errorf("video stream: %w", err)
	}
	id := "frame-" + strconv.Itoa(v.index)
	v.index++
	img, err := png.Decode(v.reader)
	if err != nil {
		// A torn PNG leaves the stream misaligned; nothing after it is usable.
		return FrameSnapshot{}, fmt.Errorf("decode %s: %w", id, err)
	}
	return v.record(Crop(img, v.selection), id, start), nil
}

// Close stops ffmpeg and waits for it to exit.
func (v *VideoSource) Close() error {
	v.cancel()
	_ = v.pipe.Close()
	<-v.done
	return nil
}
