package screen

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
)

// Monitor classifies frames as black, frozen or responsive. It keeps exactly
// one previously seen frame for freeze comparison.
// Not safe for concurrent use; feed frames from a single goroutine.
type Monitor struct {
	thresholds Thresholds
	logger     *slog.Logger
	last       *image.Gray // grayscale of the stored frame; nil until the first CheckFreeze
}

// NewMonitor returns a Monitor with the given thresholds. Logger may be nil.
func NewMonitor(t Thresholds, logger *slog.Logger) *Monitor {
	return &Monitor{thresholds: t, logger: logger}
}

// Thresholds returns the values the Monitor was built with.
func (m *Monitor) Thresholds() Thresholds { return m.thresholds }

// Tracking reports whether a baseline frame is stored.
func (m *Monitor) Tracking() bool { return m.last != nil }

// Reset drops the stored frame; the next CheckFreeze initializes again.
func (m *Monitor) Reset() { m.last = nil }

// CheckBlackScreen reports whether frame's mean luminance is below the black
// threshold. It does not touch the stored frame.
func (m *Monitor) CheckBlackScreen(frame image.Image) (Result, error) {
	g, err := ToGrayscale(frame)
	if err != nil {
		return Result{}, err
	}
	lum := MeanLuminance(g)
	if IsBlack(lum, m.thresholds.Black) {
		return Result{
			Status:   StatusBlack,
			Positive: true,
			Value:    lum,
			Detail:   fmt.Sprintf("black screen detected (luminance: %.2f)", lum),
		}, nil
	}
	return Result{
		Status: StatusNormal,
		Value:  lum,
		Detail: fmt.Sprintf("screen normal (luminance: %.2f)", lum),
	}, nil
}

// CheckFreeze compares frame with the stored one and replaces the stored frame
// with frame. The first call only stores the frame. A size change resets the
// baseline instead of failing.
func (m *Monitor) CheckFreeze(frame image.Image) (Result, error) {
	g, err := ToGrayscale(frame)
	if err != nil {
		return Result{}, err
	}
	if m.last == nil {
		m.last = g
		return Result{Status: StatusInitializing, Detail: "initializing, no comparison"}, nil
	}
	score, err := ChangeScore(m.last, g)
	if errors.Is(err, ErrShapeMismatch) {
		if m.logger != nil {
			m.logger.Info("baseline reset", "from", m.last.Bounds().Size(), "to", g.Bounds().Size())
		}
		m.last = g
		return Result{Status: StatusBaselineReset, Detail: "resolution changed, baseline reset"}, nil
	}
	if err != nil {
		return Result{}, err
	}
	m.last = g
	if IsFrozen(score, m.thresholds.Change) {
		return Result{
			Status:   StatusFrozen,
			Positive: true,
			Value:    score,
			Detail:   fmt.Sprintf("screen frozen (change score: %.4f)", score),
		}, nil
	}
	return Result{
		Status: StatusRunning,
		Value:  score,
		Detail: fmt.Sprintf("screen running (change score: %.4f)", score),
	}, nil
}

// VerifyTouch reports whether after differs from before by more than the
// change threshold. It neither reads nor writes the stored frame. Frames of
// different size yield a negative result, not an error.
func (m *Monitor) VerifyTouch(before, after image.Image) (Result, error) {
	gb, err := ToGrayscale(before)
	if err != nil {
		return Result{}, fmt.Errorf("before: %w", err)
	}
	ga, err := ToGrayscale(after)
	if err != nil {
		return Result{}, fmt.Errorf("after: %w", err)
	}
	if !SameShape(gb, ga) {
		return Result{Status: StatusSizeMismatch, Detail: "size mismatch"}, nil
	}
	score, err := ChangeScore(gb, ga)
	if err != nil {
		return Result{}, err
	}
	if TouchSucceeded(score, m.thresholds.Change) {
		return Result{
			Status:   StatusTouchSucceeded,
			Positive: true,
			Value:    score,
			Detail:   fmt.Sprintf("touch succeeded (change score: %.4f)", score),
		}, nil
	}
	return Result{
		Status: StatusTouchFailed,
		Value:  score,
		Detail: fmt.Sprintf("touch had no effect (change score: %.4f)", score),
	}, nil
}

// Inspect runs the black-screen check and, only when the frame is not black,
// the freeze check. A black frame leaves the stored frame untouched, so the
// next non-black frame is compared with the last non-black one.
func (m *Monitor) Inspect(frame image.Image) (Inspection, error) {
	black, err := m.CheckBlackScreen(frame)
	if err != nil {
		return Inspection{}, err
	}
	if black.Positive {
		return Inspection{Black: black}, nil
	}
	freeze, err := m.CheckFreeze(frame)
	if err != nil {
		return Inspection{}, err
	}
	return Inspection{Black: black, Freeze: &freeze}, nil
}

// compile-time check that Monitor implements MonitorContract.
var _ MonitorContract = (*Monitor)(nil)
