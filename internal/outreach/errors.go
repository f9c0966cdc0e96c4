package outreach

import "github.com/rotisserie/eris"

// ErrProfileNotConfigured means the singleton creator profile is missing.
// It is a fatal precondition: pitch generation and the batch pipeline both
// refuse to start without it.
var ErrProfileNotConfigured = eris.New("outreach: creator profile not configured")

// GenerationError wraps a failure from the AI generation collaborator
// (network error or unparsable output). Retryable by the caller; no partial
// pitch is persisted when it occurs.
type GenerationError struct {
	Err error
}

func (e *GenerationError) Error() string {
	return "pitch generation failed: " + e.Err.Error()
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// DeliveryError wraps a failure from the email transport. Retryable by the
// caller; the pitch stays in draft when it occurs.
type DeliveryError struct {
	Err error
}

func (e *DeliveryError) Error() string {
	return "pitch delivery failed: " + e.Err.Error()
}

func (e *DeliveryError) Unwrap() error {
	return e.Err
}
