package service

import "errors"

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotStarted       = errors.New("service not started")
	ErrUnknownCondition = errors.New("unknown condition")
	ErrModelContract    = errors.New("model does not match its endpoint")
	ErrInference        = errors.New("inference failed")
)
