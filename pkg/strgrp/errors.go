package strgrp

import "errors"

var (
	// ErrInvalidThreshold is returned when an engine threshold lies outside [0, 1].
	ErrInvalidThreshold = errors.New("strgrp: threshold must be within [0, 1]")

	// ErrCapacity is returned when an insert would exceed the group or item budget.
	// The engine is left exactly as it was before the call.
	ErrCapacity = errors.New("strgrp: capacity exhausted")

	// ErrKeyTooLong is returned when a key exceeds the configured rune limit.
	ErrKeyTooLong = errors.New("strgrp: key too long")

	// ErrForeignGroup is returned when a group is passed to an engine that does not own it.
	ErrForeignGroup = errors.New("strgrp: group not owned by engine")
)
