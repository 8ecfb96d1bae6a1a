package llm

import "errors"

var (
	// ErrBackendUnavailable indicates the completion backend is unreachable.
	ErrBackendUnavailable = errors.New("completion backend unavailable")

	// ErrTimeout indicates the request exceeded its deadline or was cancelled.
	ErrTimeout = errors.New("completion request timed out")

	// ErrInvalidOutput indicates the model response could not be parsed
	// into the expected structured format.
	ErrInvalidOutput = errors.New("invalid llm output format")

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = errors.New("llm retry attempts exhausted")
)
