package rollup

import "errors"

// Sentinel kinds for transport errors.
var (
	ErrEmit = errors.New("emit failed")
)
