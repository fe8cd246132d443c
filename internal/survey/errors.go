package survey

import "errors"

var (
	// ErrNotFound means a referenced instance, run or person does not exist.
	ErrNotFound = errors.New("not found")

	// ErrImmutableVersion means the caller tried to mutate a frozen prior
	// version. Prior versions reject every change before the state machine
	// is even consulted.
	ErrImmutableVersion = errors.New("prior versions are immutable")

	// ErrPermissionDenied means the capability snapshot lacks the right the
	// requested action requires.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrIllegalTransition means the action is not valid from the current
	// status. Callers are expected to consult NextPossibleActions first.
	ErrIllegalTransition = errors.New("illegal transition")
)
