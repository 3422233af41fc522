package screen

import "errors"

// ErrInvalidFrame reports a nil, unreadable or empty frame.
var ErrInvalidFrame = errors.New("invalid frame")

// ErrShapeMismatch reports two frames whose width or height differ.
var ErrShapeMismatch = errors.New("frame shape mismatch")
