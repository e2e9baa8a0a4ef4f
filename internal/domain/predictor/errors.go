package predictor

import "errors"

// Sentinel error kinds for this package. These allow errors.Is from callers.
var (
	ErrUnavailable      = errors.New("model not loaded")
	ErrPredictionFailed = errors.New("prediction failed")
	ErrShapeMismatch    = errors.New("feature width mismatch")
)

// Error carries a kind and the human readable reason behind it.
type Error struct {
	Kind   error
	Detail string
}

func (e *Error) Error() string {
	return e.Kind.Error() + ": " + e.Detail
}

func (e *Error) Unwrap() error { return e.Kind }

func unavailable(reason string) error {
	return &Error{Kind: ErrUnavailable, Detail: reason}
}

func failed(reason string) error {
	return &Error{Kind: ErrPredictionFailed, Detail: reason}
}
