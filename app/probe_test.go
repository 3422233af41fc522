package app

import (
	"context"
	"errors"
	"image"
	"image/color"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/disintegration/imaging"

	"github.com/soocke/screenprobe/config"
	"github.com/soocke/screenprobe/domain/action"
	"github.com/soocke/screenprobe/domain/capture"
	"github.com/soocke/screenprobe/domain/lux"
	"github.com/soocke/screenprobe/domain/screen"
	"github.com/soocke/screenprobe/report"
)

// synthFrame creates a uniform RGBA image.
func synthFrame(w, h int, base byte) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{base, base, base, 255})
		}
	}
	return img
}

type fakeSource struct {
	frames []image.Image
	next   int
	closed bool
}

func (f *fakeSource) Next(ctx context.Context) (capture.FrameSnapshot, error) {
	if err := ctx.Err(); err != nil {
		return capture.FrameSnapshot{}, err
	}
	if f.next >= len(f.frames) {
		return capture.FrameSnapshot{}, io.EOF
	}
	img := f.frames[f.next]
	f.next++
	snap := capture.FrameSnapshot{Image: img, Sequence: uint64(f.next), CapturedAt: time.Now(), ID: "f"}
	if img == nil {
		snap.Err = errors.New("decode failed")
	}
	return snap, nil
}

func (f *fakeSource) Stats() capture.CaptureStats { return capture.CaptureStats{} }
func (f *fakeSource) Close() error                { f.closed = true; return nil }

type recordingSink struct{ records []report.Record }

func (r *recordingSink) Emit(rec report.Record) error { r.records = append(r.records, rec); return nil }
func (r *recordingSink) Close() error                 { return nil }

func newTestProbe(frames ...image.Image) (*Probe, *recordingSink) {
	sink := &recordingSink{}
	return &Probe{
		Source:     &fakeSource{frames: frames},
		SourceName: "test",
		Monitor:    screen.NewMonitor(screen.DefaultThresholds(), nil),
		Sink:       sink,
	}, sink
}

func TestProbeRun_Sequence(t *testing.T) {
	black := synthFrame(16, 16, 0)
	grey := synthFrame(16, 16, 100)
	white := synthFrame(16, 16, 255)
	p, sink := newTestProbe(black, grey, grey, nil, white)

	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	want := []string{"black", "initializing", "frozen", "invalid", "running"}
	if len(sink.records) != len(want) {
		t.Fatalf("expected %d records, got %d", len(want), len(sink.records))
	}
	for i, w := range want {
		if got := sink.records[i].Status(); got != w {
			t.Errorf("record %d: status %q, want %q", i, got, w)
		}
		if sink.records[i].Source != "test" || sink.records[i].Sequence != uint64(i+1) {
			t.Errorf("record %d: metadata not filled: %+v", i, sink.records[i])
		}
	}
	if sink.records[3].Error == "" {
		t.Fatalf("invalid record should carry the error")
	}
	if sink.records[4].Freeze.Value != 155 {
		t.Fatalf("expected score 155 against the last non-black frame, got %.2f", sink.records[4].Freeze.Value)
	}
	if sink.records[1].Fingerprint == "" {
		t.Fatalf("inspected frames should be fingerprinted")
	}
}

func TestProbeRun_StopAfter(t *testing.T) {
	f := synthFrame(8, 8, 50)
	p, sink := newTestProbe(f, f, f, f)
	p.StopAfter = 2
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sink.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(sink.records))
	}
}

func TestProbeRun_CancelledContext(t *testing.T) {
	f := synthFrame(8, 8, 50)
	p, sink := newTestProbe(f, f, f)
	p.Interval = time.Hour
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	time.Sleep(20 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("cancel should end Run cleanly, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not stop after cancel")
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected one record before the first tick, got %d", len(sink.records))
	}
}

func TestProbeVerifyTouch(t *testing.T) {
	before := synthFrame(20, 20, 10)
	after := synthFrame(20, 20, 90)
	p, sink := newTestProbe(before, after, before, before)
	var taps [][2]int
	p.Tap = func(x, y int) error { taps = append(taps, [2]int{x, y}); return nil }
	p.TouchX, p.TouchY = 5, 6

	res, err := p.VerifyTouch(context.Background())
	if err != nil {
		t.Fatalf("verify touch: %v", err)
	}
	if !res.Positive || res.Status != screen.StatusTouchSucceeded {
		t.Fatalf("expected touch success: %+v", res)
	}
	res, _ = p.VerifyTouch(context.Background())
	if res.Positive {
		t.Fatalf("unchanged screen should fail touch: %+v", res)
	}
	if len(taps) != 2 || taps[0] != [2]int{5, 6} {
		t.Fatalf("unexpected taps %v", taps)
	}
	if len(sink.records) != 2 || sink.records[1].Status() != "touch_failed" {
		t.Fatalf("unexpected records %+v", sink.records)
	}
}

func TestProbeVerifyTouch_TapError(t *testing.T) {
	f := synthFrame(4, 4, 0)
	p, _ := newTestProbe(f, f)
	p.Tap = func(int, int) error { return errors.New("no input") }
	if _, err := p.VerifyTouch(context.Background()); err == nil {
		t.Fatalf("expected tap error")
	}
}

func TestVerifyTouch_RecordsWindow(t *testing.T) {
	p, sink := newTestProbe(synthFrame(8, 8, 0), synthFrame(8, 8, 200))
	p.Tap = func(int, int) error { return nil }
	p.Window = func() (string, error) { return "scrcpy - DUT", nil }
	if _, err := p.VerifyTouch(context.Background()); err != nil {
		t.Fatalf("verify touch: %v", err)
	}
	if len(sink.records) != 1 || sink.records[0].Window != "scrcpy - DUT" {
		t.Fatalf("touch record should carry the window title: %+v", sink.records)
	}
}

func TestVerifyTouch_NoForegroundWindow(t *testing.T) {
	f := synthFrame(8, 8, 0)
	p, sink := newTestProbe(f, f)
	tapped := false
	p.Tap = func(int, int) error { tapped = true; return nil }
	p.Window = func() (string, error) { return "", action.ErrNoForegroundWindow }
	if _, err := p.VerifyTouch(context.Background()); !errors.Is(err, action.ErrNoForegroundWindow) {
		t.Fatalf("expected ErrNoForegroundWindow, got %v", err)
	}
	if tapped || len(sink.records) != 0 {
		t.Fatalf("no tap or record expected without a foreground window")
	}

	// Platforms without a window lookup still tap.
	p, _ = newTestProbe(f, f)
	p.Tap = func(int, int) error { tapped = true; return nil }
	p.Window = func() (string, error) { return "", action.ErrUnsupported }
	if _, err := p.VerifyTouch(context.Background()); err != nil || !tapped {
		t.Fatalf("unsupported lookup should not block the tap: err=%v tapped=%v", err, tapped)
	}
}

func TestCompareCaptured_SourceErrors(t *testing.T) {
	p, sink := newTestProbe()
	if _, err := p.compareCaptured(context.Background(), &fakeSource{frames: []image.Image{synthFrame(4, 4, 0)}}); !errors.Is(err, io.EOF) {
		t.Fatalf("missing after capture: expected io.EOF, got %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := p.compareCaptured(ctx, &fakeSource{frames: []image.Image{synthFrame(4, 4, 0)}}); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled read: expected context.Canceled, got %v", err)
	}
	if len(sink.records) != 0 {
		t.Fatalf("failed reads must not emit records")
	}
}

func TestRun_BacklightOnBlackFrames(t *testing.T) {
	meter := lux.NewMeter(strings.NewReader("当前光照强度：120.00 lux（正常）\r\n"), nil)
	if err := meter.Run(context.Background()); err != nil {
		t.Fatalf("meter: %v", err)
	}
	p, sink := newTestProbe(synthFrame(8, 8, 0), synthFrame(8, 8, 100))
	p.Lux = meter
	p.DarkLux = 5
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(sink.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(sink.records))
	}
	black := sink.records[0]
	if black.Backlight != lux.BacklightOn || black.Lux == nil || black.Lux.Lux != 120 {
		t.Fatalf("black frame should carry the lit backlight reading: %+v", black)
	}
	if sink.records[1].Lux != nil || sink.records[1].Backlight != "" {
		t.Fatalf("lit frame needs no lux cross-check: %+v", sink.records[1])
	}
}

func TestRun_BacklightUnknownWithoutReading(t *testing.T) {
	p, sink := newTestProbe(synthFrame(8, 8, 0))
	p.Lux = lux.NewMeter(strings.NewReader(""), nil)
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if sink.records[0].Backlight != lux.BacklightUnknown || sink.records[0].Lux != nil {
		t.Fatalf("expected unknown backlight: %+v", sink.records[0])
	}
}

func TestProbeVerifyTouchFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "before.png")
	b := filepath.Join(dir, "after.png")
	if err := imaging.Save(synthFrame(10, 10, 0), a); err != nil {
		t.Fatal(err)
	}
	if err := imaging.Save(synthFrame(10, 10, 255), b); err != nil {
		t.Fatal(err)
	}
	p, _ := newTestProbe()
	res, err := p.VerifyTouchFiles(a, b)
	if err != nil {
		t.Fatalf("verify files: %v", err)
	}
	if !res.Positive || res.Value != 255 {
		t.Fatalf("expected touch success with score 255: %+v", res)
	}
	if _, err := p.VerifyTouchFiles(a, filepath.Join(dir, "missing.png")); !errors.Is(err, screen.ErrInvalidFrame) {
		t.Fatalf("expected ErrInvalidFrame for missing file, got %v", err)
	}
}

func TestBuildProbe_DirSource(t *testing.T) {
	dir := t.TempDir()
	if err := imaging.Save(synthFrame(10, 10, 100), filepath.Join(dir, "1.png")); err != nil {
		t.Fatal(err)
	}
	cfg := config.DefaultConfig()
	cfg.Source = config.SourceDir
	cfg.SourcePath = dir
	cfg.PollIntervalMillis = 0
	cfg.EvidenceDir = filepath.Join(dir, "evidence")
	cfg.ReportPath = filepath.Join(dir, "report.jsonl")
	p, err := BuildProbe(cfg, nil)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer p.Close()
	if err := p.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if p.Source.Stats().Captures != 1 {
		t.Fatalf("expected one capture, got %+v", p.Source.Stats())
	}
}

func TestBuildProbe_VideoNeedsPath(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Source = config.SourceVideo
	if _, err := BuildProbe(cfg, nil); err == nil {
		t.Fatalf("expected error for video source without path")
	}
}
