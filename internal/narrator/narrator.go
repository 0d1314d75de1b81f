// Package narrator defines the shared error taxonomy for the text
// generation providers. The concrete clients live in the claude, openai
// and noop subpackages; narratorobs wraps any of them with logging and
// tracing.
package narrator

import "errors"

var (
	// ErrAuth indicates a missing or rejected API key.
	ErrAuth = errors.New("narrator: missing or rejected API key")
	// ErrUnavailable indicates the text-generation service failed or
	// timed out. Callers substitute the deterministic fallback template.
	ErrUnavailable = errors.New("narrator: service unavailable")
)
