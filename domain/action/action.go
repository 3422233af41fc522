// Package action injects input into the host so a mirrored device-under-test
// receives a touch.
package action

import "errors"

var (
	// ErrUnsupported is returned where no input backend exists for the platform.
	ErrUnsupported = errors.New("input injection not supported on this platform")
	// ErrNoForegroundWindow reports that the OS has no foreground window.
	ErrNoForegroundWindow = errors.New("no foreground window")
)
