package quizforge

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig marks incomplete store or client configuration. Operations
	// fail with it before any network call so operators know to fix the
	// environment rather than retry.
	ErrConfig = errors.New("configuration incomplete")

	// ErrSuperseded is returned by a generation attempt that was cancelled
	// because a newer attempt started. Callers treat it as a no-op.
	ErrSuperseded = errors.New("generation superseded by a newer request")

	// ErrUnrecognizedShape means the extractor found no question array in the
	// response. Message is user-facing.
	ErrUnrecognizedShape = errors.New("Could not extract valid question data from response format")

	// ErrNoQuestions means extraction succeeded but normalization produced
	// nothing usable. Message is user-facing.
	ErrNoQuestions = errors.New("No valid questions found in the response data")

	// ErrEmptyText rejects generation requests with no input text.
	ErrEmptyText = errors.New("text is required")

	// ErrUserIDRequired rejects user-scoped store queries without a user id.
	ErrUserIDRequired = errors.New("user id is required")

	// ErrQuizNotFound is returned by stores when a quiz id does not exist.
	ErrQuizNotFound = errors.New("quiz not found")

	// ErrTransport marks network-level failures (dial errors, resets). These
	// are the only failures the HTTP client retries.
	ErrTransport = errors.New("transport error")
)

// HTTPError is a non-2xx response from a collaborator API. These fail fast and
// are never retried; Message carries the server-provided text when present.
type HTTPError struct {
	Status  int
	Message string
}

func (e *HTTPError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error (%d)", e.Status)
}

// IsUnauthorized reports whether err is an HTTP 401 from a collaborator.
func IsUnauthorized(err error) bool {
	var httpErr *HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == 401
}
