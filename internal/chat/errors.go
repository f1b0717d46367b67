package chat

import "errors"

var (
	// ErrGenerationUnavailable means the generation collaborator failed
	// before any answer text was produced.
	ErrGenerationUnavailable = errors.New("generation unavailable")

	// ErrGenerationInterrupted means the answer stream broke after partial
	// text was already delivered. Delivered chunks are not retracted.
	ErrGenerationInterrupted = errors.New("generation interrupted")
)
