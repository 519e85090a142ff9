package config

import "errors"

// Sentinel kinds wrapped by Load and Validate; match them with errors.Is.
var (
	// ErrInvalidConfig marks a setting that loaded but failed validation.
	ErrInvalidConfig = errors.New("invalid enhealth config")
	// ErrLoadConfig marks a failure reading .env, the YAML file or the environment.
	ErrLoadConfig = errors.New("load enhealth config failed")
)
