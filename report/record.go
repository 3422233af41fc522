// Package report turns probe results into records and delivers them to sinks.
package report

import (
	"image"
	"time"

	"github.com/soocke/screenprobe/domain/lux"
	"github.com/soocke/screenprobe/domain/screen"
)

// Kinds of Record.
const (
	KindInspection = "inspection"
	KindTouch      = "touch"
	KindInvalid    = "invalid"
)

// Record is one line of probe output.
type Record struct {
	Sequence    uint64         `json:"seq"`
	Time        time.Time      `json:"time"`
	Source      string         `json:"source"`
	Frame       string         `json:"frame,omitempty"`
	Kind        string         `json:"kind"`
	Black       *screen.Result `json:"black,omitempty"`
	Freeze      *screen.Result `json:"freeze,omitempty"`
	Touch       *screen.Result `json:"touch,omitempty"`
	Error       string         `json:"error,omitempty"`
	Fingerprint string         `json:"fingerprint,omitempty"`
	Window      string         `json:"window,omitempty"`
	Lux         *lux.Reading   `json:"lux,omitempty"`
	Backlight   string         `json:"backlight,omitempty"`

	// Image is the frame the record describes, kept for evidence sinks.
	Image image.Image `json:"-"`
}

// FromInspection builds an inspection record.
func FromInspection(in screen.Inspection) Record {
	black := in.Black
	return Record{Kind: KindInspection, Black: &black, Freeze: in.Freeze}
}

// IsBlack reports whether the record classified its frame as black.
func (r Record) IsBlack() bool { return r.Black != nil && r.Black.Positive }

// Fault reports whether the record describes a black, frozen or unresponsive
// screen, or a frame that could not be read.
func (r Record) Fault() bool {
	switch {
	case r.Kind == KindInvalid:
		return true
	case r.Black != nil && r.Black.Positive:
		return true
	case r.Freeze != nil && r.Freeze.Positive:
		return true
	case r.Touch != nil && !r.Touch.Positive:
		return true
	}
	return false
}

// Status names the deciding outcome of the record.
func (r Record) Status() string {
	switch {
	case r.Kind == KindInvalid:
		return KindInvalid
	case r.Touch != nil:
		return r.Touch.Status.String()
	case r.Black != nil && r.Black.Positive:
		return r.Black.Status.String()
	case r.Freeze != nil:
		return r.Freeze.Status.String()
	case r.Black != nil:
		return r.Black.Status.String()
	}
	return "unknown"
}
