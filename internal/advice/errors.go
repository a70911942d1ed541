package advice

import "errors"

var (
	// ErrAdvisorUnavailable means an advisor call failed or timed out;
	// the generate operation aborts with no advice created and no retry here.
	ErrAdvisorUnavailable = errors.New("advisor unavailable")
	// ErrInvalidStateTransition means accept was called on rejected advice or
	// reject on accepted advice. A hard failure, never silently swallowed.
	ErrInvalidStateTransition = errors.New("invalid advice state transition")
	// ErrValidationFailure means the validator produced an empty or invalid
	// snapshot; no advice is persisted without a non-empty snapshot.
	ErrValidationFailure = errors.New("advice validation failure")
)
