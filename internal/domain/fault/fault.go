// Package fault defines the error taxonomy shared by the domain packages.
// Every error raised while handling an input wraps one of these sentinels
// so the dispatcher boundary can classify failures with errors.Is.
package fault

import "errors"

// Sentinel kinds for domain errors.
var (
	// ErrNotFound marks a referenced bird, duel, ornithologist or asset
	// that does not exist in the registry.
	ErrNotFound = errors.New("not found")

	// ErrNotAuthorized marks a sender that is not the required party for
	// the attempted operation.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInvalidState marks an operation attempted outside its legal
	// state, e.g. cancelling a duel after the responder bird was chosen.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidInput marks a missing or malformed field, an unrecognized
	// trait, or a self-duel attempt.
	ErrInvalidInput = errors.New("invalid input")

	// ErrPreconditionUnmet marks an operation that needs configuration
	// not yet in place, e.g. withdrawing before the asset contract
	// identity is pinned.
	ErrPreconditionUnmet = errors.New("precondition unmet")

	// ErrInvalidBootstrap marks a bootstrap attempt with the wrong
	// payload shape.
	ErrInvalidBootstrap = errors.New("invalid bootstrap")
)
