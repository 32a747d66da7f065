package wpilog

import (
	"errors"
)

var (
	// ErrIncomplete signals that the buffer ends before the current field.
	// It is recoverable: feed more bytes and retry. Everything else is not.
	ErrIncomplete = errors.New("incomplete input")

	ErrBadMagic           = errors.New("bad magic")
	ErrInvalidVersion     = errors.New("invalid version")
	ErrInvalidString      = errors.New("invalid string")
	ErrUnknownControlType = errors.New("unknown control record type")
	ErrCorrupted          = errors.New("corrupted")
	ErrHalted             = errors.New("framing halted by earlier record failure")
)
