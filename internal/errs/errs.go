package errs

import "errors"

var (
	// ErrBackendUnavailable marks a failed call to the document store or the
	// reasoning service. Nothing is retried.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrNoMatch is returned when a search succeeds but matches no documents.
	ErrNoMatch = errors.New("no logs found for this filter")

	// ErrReasoningEmpty is returned when the reasoning service answers without
	// any usable text.
	ErrReasoningEmpty = errors.New("reasoning service returned no answer")
)
