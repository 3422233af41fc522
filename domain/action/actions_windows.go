//go:build windows

package action

import (
	"fmt"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32          = windows.NewLazySystemDLL("user32.dll")
	procMouseEvent  = user32.NewProc("mouse_event")
	procSetCursor   = user32.NewProc("SetCursorPos")
	procGetForeWnd  = user32.NewProc("GetForegroundWindow")
	procGetWndTextW = user32.NewProc("GetWindowTextW")
)

const (
	mouseeventfLeftDown = 0x0002
	mouseeventfLeftUp   = 0x0004
	pressDuration       = 30 * time.Millisecond
)

// MoveCursor moves the OS mouse pointer to (x, y).
func MoveCursor(x, y int) error {
	if err := procSetCursor.Find(); err != nil {
		return fmt.Errorf("SetCursorPos: %w", err)
	}
	if r, _, callErr := procSetCursor.Call(uintptr(x), uintptr(y)); r == 0 {
		return fmt.Errorf("SetCursorPos(%d,%d): %w", x, y, callErr)
	}
	return nil
}

// ClickLeft sends a left mouse button press (down then up).
func ClickLeft() error {
	if err := procMouseEvent.Find(); err != nil {
		return fmt.Errorf("mouse_event: %w", err)
	}
	_, _, _ = procMouseEvent.Call(mouseeventfLeftDown, 0, 0, 0, 0)
	time.Sleep(pressDuration)
	_, _, _ = procMouseEvent.Call(mouseeventfLeftUp, 0, 0, 0, 0)
	return nil
}

// Tap moves the pointer to (x, y) and clicks, standing in for a touch on the
// device mirrored at that position.
func Tap(x, y int) error {
	if err := MoveCursor(x, y); err != nil {
		return err
	}
	return ClickLeft()
}

// ForegroundWindowTitle returns the title of the current foreground window,
// or "" when it has none.
func ForegroundWindowTitle() (string, error) {
	hwnd, _, _ := procGetForeWnd.Call()
	if hwnd == 0 {
		return "", ErrNoForegroundWindow
	}
	buf := make([]uint16, 256)
	r, _, _ := procGetWndTextW.Call(hwnd, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
	if r == 0 {
		return "", nil
	}
	return windows.UTF16ToString(buf[:r]), nil
}
