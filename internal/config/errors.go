package config

import (
	"errors"
)

// Sentinel errors for configuration loading, matched by callers with
// errors.Is.
var (
	// ErrLoadConfig wraps a configuration source that could not be read
	// or parsed (config file or environment).
	ErrLoadConfig = errors.New("load configuration")

	// ErrInvalidConfig marks a merged configuration the node cannot
	// start with, such as a missing species dataset path or a
	// non-positive interval.
	ErrInvalidConfig = errors.New("invalid configuration")
)
