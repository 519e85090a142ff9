package repository

import "errors"

// Sentinel kinds for artifact loading errors.
var (
	ErrLoadArtifact    = errors.New("load model artifact failed")
	ErrInvalidArtifact = errors.New("model artifact failed validation")
)
