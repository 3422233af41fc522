package app

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"log/slog"
	"time"

	"github.com/soocke/screenprobe/domain/action"
	"github.com/soocke/screenprobe/domain/capture"
	"github.com/soocke/screenprobe/domain/lux"
	"github.com/soocke/screenprobe/domain/screen"
	"github.com/soocke/screenprobe/report"
)

const statsLogInterval = 5 * time.Second

// TapFunc injects a touch at screen coordinates (x, y).
type TapFunc func(x, y int) error

// WindowFunc returns the title of the window that would receive a tap.
type WindowFunc func() (string, error)

// Probe pulls frames from a source, classifies them with a Monitor and emits a
// record per frame. Not safe for concurrent use: Run and VerifyTouch share the
// Monitor and the source and must not overlap.
type Probe struct {
	Source     capture.Source
	SourceName string
	Monitor    screen.MonitorContract
	Sink       report.Sink
	Logger     *slog.Logger

	Interval  time.Duration // pause between frames; 0 runs as fast as the source delivers
	StopAfter int           // frames to inspect before Run returns; 0 means unbounded

	Tap         TapFunc
	TouchX      int
	TouchY      int
	TouchSettle time.Duration
	Selection   image.Rectangle // applied to VerifyTouchFiles inputs
	// Window is consulted before each tap; a missing foreground window aborts
	// the touch. Nil or an unsupported platform skips the lookup.
	Window WindowFunc

	// Lux, when set, is read alongside black frames to tell a dark backlight
	// from a lit panel showing black.
	Lux       *lux.Meter
	LuxMaxAge time.Duration
	DarkLux   float64

	closers []io.Closer
}

// Run inspects frames until the source is exhausted, StopAfter frames were
// seen or ctx is cancelled. Unreadable frames are reported and skipped.
func (p *Probe) Run(ctx context.Context) error {
	var tick <-chan time.Time
	if p.Interval > 0 {
		t := time.NewTicker(p.Interval)
		defer t.Stop()
		tick = t.C
	}
	statsTicker := time.NewTicker(statsLogInterval)
	defer statsTicker.Stop()
	if p.Lux != nil {
		luxCtx, stopLux := context.WithCancel(ctx)
		defer stopLux()
		go func() {
			if err := p.Lux.Run(luxCtx); err != nil && p.Logger != nil {
				p.Logger.Error("lux stream", "error", err)
			}
		}()
	}

	frames := 0
	for {
		snap, err := p.Source.Next(ctx)
		if errors.Is(err, io.EOF) {
			p.logStats()
			return nil
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("next frame: %w", err)
		}
		p.inspect(snap)
		frames++
		if p.StopAfter > 0 && frames >= p.StopAfter {
			p.logStats()
			return nil
		}

		select {
		case <-statsTicker.C:
			p.logStats()
		default:
		}
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		}
	}
}

func (p *Probe) inspect(snap capture.FrameSnapshot) {
	in, err := p.Monitor.Inspect(snap.Image)
	var rec report.Record
	if err != nil {
		rec = report.Record{Kind: report.KindInvalid, Error: frameError(err, snap.Err)}
	} else {
		rec = report.FromInspection(in)
		rec.Image = snap.Image
		rec.Fingerprint = report.Fingerprint(snap.Image)
		p.attachLux(&rec)
	}
	p.emit(rec, snap)
}

// attachLux adds the current light reading to black frames.
func (p *Probe) attachLux(rec *report.Record) {
	if p.Lux == nil || !rec.IsBlack() {
		return
	}
	r, ok := p.Lux.Latest(p.LuxMaxAge)
	if !ok {
		rec.Backlight = lux.BacklightUnknown
		return
	}
	rec.Lux = &r
	rec.Backlight = lux.Backlight(r, p.DarkLux)
}

func (p *Probe) foregroundWindow() (string, error) {
	if p.Window == nil {
		return "", nil
	}
	title, err := p.Window()
	if errors.Is(err, action.ErrUnsupported) {
		return "", nil
	}
	return title, err
}

// VerifyTouch captures a frame, taps at the configured point, waits for the
// screen to settle and compares the frame captured afterwards.
func (p *Probe) VerifyTouch(ctx context.Context) (screen.Result, error) {
	if p.Tap == nil {
		return screen.Result{}, errors.New("no tap function configured")
	}
	before, err := p.Source.Next(ctx)
	if err != nil {
		return screen.Result{}, fmt.Errorf("capture before touch: %w", err)
	}
	if before.Image == nil {
		// No point touching the device without a reference frame.
		return p.compareTouch(before, before, "")
	}
	window, err := p.foregroundWindow()
	if err != nil {
		return screen.Result{}, fmt.Errorf("tap (%d,%d): %w", p.TouchX, p.TouchY, err)
	}
	if err := p.Tap(p.TouchX, p.TouchY); err != nil {
		return screen.Result{}, fmt.Errorf("tap (%d,%d): %w", p.TouchX, p.TouchY, err)
	}
	if p.TouchSettle > 0 {
		t := time.NewTimer(p.TouchSettle)
		select {
		case <-ctx.Done():
			t.Stop()
			return screen.Result{}, ctx.Err()
		case <-t.C:
		}
	}
	after, err := p.Source.Next(ctx)
	if err != nil {
		return screen.Result{}, fmt.Errorf("capture after touch: %w", err)
	}
	return p.compareTouch(before, after, window)
}

// VerifyTouchFiles compares two saved captures taken before and after a touch.
func (p *Probe) VerifyTouchFiles(beforePath, afterPath string) (screen.Result, error) {
	src := capture.NewFileSource(beforePath, afterPath)
	defer src.Close()
	return p.compareCaptured(context.Background(), src)
}

// compareCaptured takes the next two frames of src as the before and after
// captures of a touch.
func (p *Probe) compareCaptured(ctx context.Context, src capture.Source) (screen.Result, error) {
	before, err := src.Next(ctx)
	if err != nil {
		return screen.Result{}, fmt.Errorf("read before capture: %w", err)
	}
	after, err := src.Next(ctx)
	if err != nil {
		return screen.Result{}, fmt.Errorf("read after capture: %w", err)
	}
	before.Image = capture.Crop(before.Image, p.Selection)
	after.Image = capture.Crop(after.Image, p.Selection)
	return p.compareTouch(before, after, "")
}

func (p *Probe) compareTouch(before, after capture.FrameSnapshot, window string) (screen.Result, error) {
	res, err := p.Monitor.VerifyTouch(before.Image, after.Image)
	if err != nil {
		cause := before.Err
		if cause == nil {
			cause = after.Err
		}
		p.emit(report.Record{Kind: report.KindInvalid, Error: frameError(err, cause)}, after)
		return screen.Result{}, err
	}
	p.emit(report.Record{
		Kind:        report.KindTouch,
		Touch:       &res,
		Image:       after.Image,
		Fingerprint: report.Fingerprint(after.Image),
		Window:      window,
	}, after)
	return res, nil
}

func (p *Probe) emit(rec report.Record, snap capture.FrameSnapshot) {
	rec.Sequence = snap.Sequence
	rec.Time = snap.CapturedAt
	rec.Source = p.SourceName
	rec.Frame = snap.ID
	if p.Sink == nil {
		return
	}
	if err := p.Sink.Emit(rec); err != nil && p.Logger != nil {
		p.Logger.Error("report emit", "seq", rec.Sequence, "error", err)
	}
}

func (p *Probe) logStats() {
	if p.Logger == nil || p.Source == nil {
		return
	}
	stats := p.Source.Stats()
	p.Logger.Debug("capture.stats",
		"captures", stats.Captures,
		"skipped", stats.Skipped,
		"avg_capture", stats.AvgCapture,
		"sequence", stats.Sequence,
	)
}

func frameError(err, cause error) string {
	if cause != nil {
		return fmt.Sprintf("%v: %v", err, cause)
	}
	return err.Error()
}
