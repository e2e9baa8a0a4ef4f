package artifact

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotFound = errors.New("model file not found")
	ErrDecode   = errors.New("model deserialization failed")
	ErrEncode   = errors.New("model serialization failed")
)
