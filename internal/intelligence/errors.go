package intelligence

import "errors"

var (
	// ErrInvalidPrompt indicates a goal or chat message failed the
	// heuristic validity check.
	ErrInvalidPrompt = errors.New("invalid prompt")

	// ErrMissingRoadmap indicates a refine or continue request without a
	// current roadmap.
	ErrMissingRoadmap = errors.New("current roadmap is missing")
)

// ValidationError carries the user-facing reason a prompt was rejected.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalidPrompt }
