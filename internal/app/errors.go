package service

import "errors"

// Sentinel error kinds for this package.
var (
	ErrAlreadyStarted = errors.New("service already started")
	errNotStarted     = errors.New("model not loaded yet")
	errStopped        = errors.New("service stopped")
)
