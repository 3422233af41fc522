//go:build !windows

package action

// MoveCursor is not implemented on this platform.
func MoveCursor(x, y int) error { return ErrUnsupported }

// ClickLeft is not implemented on this platform.
func ClickLeft() error { return ErrUnsupported }

// Tap is not implemented on this platform.
func Tap(x, y int) error { return ErrUnsupported }

// ForegroundWindowTitle is not implemented on this platform.
func ForegroundWindowTitle() (string, error) { return "", ErrUnsupported }
