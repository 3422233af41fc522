package screen

import "image"

// Status enumerates the outcomes a Monitor check can report.
type Status int

const (
	StatusNormal Status = iota
	StatusBlack
	StatusFrozen
	StatusRunning
	StatusInitializing
	StatusBaselineReset
	StatusTouchSucceeded
	StatusTouchFailed
	StatusSizeMismatch
)

func (s Status) String() string {
	switch s {
	case StatusNormal:
		return "normal"
	case StatusBlack:
		return "black"
	case StatusFrozen:
		return "frozen"
	case StatusRunning:
		return "running"
	case StatusInitializing:
		return "initializing"
	case StatusBaselineReset:
		return "baseline_reset"
	case StatusTouchSucceeded:
		return "touch_succeeded"
	case StatusTouchFailed:
		return "touch_failed"
	case StatusSizeMismatch:
		return "size_mismatch"
	default:
		return "unknown"
	}
}

// MarshalText lets Status serialize as its name.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Result is the outcome of a single check. Positive is the yes/no answer to
// the question the check asks (black? frozen? touch took effect?). Value holds
// the luminance or change score that decided it, when one was computed.
type Result struct {
	Status   Status  `json:"status"`
	Positive bool    `json:"positive"`
	Value    float64 `json:"value"`
	Detail   string  `json:"detail"`
}

// Inspection combines the black-screen and freeze checks for one frame.
// Freeze is nil when the frame was black and the freeze check was skipped.
type Inspection struct {
	Black  Result  `json:"black"`
	Freeze *Result `json:"freeze,omitempty"`
}

// Healthy reports whether the frame was neither black nor frozen.
func (i Inspection) Healthy() bool {
	if i.Black.Positive {
		return false
	}
	return i.Freeze == nil || !i.Freeze.Positive
}

// Thresholds configures a Monitor. Values are fixed for its lifetime.
type Thresholds struct {
	Black  float64 // luminance strictly below this is black
	Change float64 // score below this is frozen, above it a touch took effect
}

// DefaultThresholds returns Black 10.0 and Change 1.0.
func DefaultThresholds() Thresholds {
	return Thresholds{Black: 10.0, Change: 1.0}
}

// MonitorContract is the subset of Monitor used by the probe loop.
type MonitorContract interface {
	CheckBlackScreen(image.Image) (Result, error)
	CheckFreeze(image.Image) (Result, error)
	VerifyTouch(before, after image.Image) (Result, error)
	Inspect(image.Image) (Inspection, error)
	Reset()
}
