package coupling

import "errors"

// Domain errors for coupling operations. None of these are retried: the
// adapter relies on precondition checks catching misuse immediately, and
// coupling steps are not idempotent once committed.
var (
	// ErrConfiguration indicates invalid setup, e.g. a dimension mismatch
	// at mesh registration or registering a mesh twice.
	ErrConfiguration = errors.New("coupling: invalid configuration")

	// ErrProtocolViolation indicates an operation called outside its valid
	// lifecycle window. It signals adapter misuse, never peer behavior.
	ErrProtocolViolation = errors.New("coupling: protocol violation")

	// ErrIndexRange indicates a marshalling buffer or index mismatch. It
	// points at an internal bookkeeping bug and must propagate.
	ErrIndexRange = errors.New("coupling: index out of range")

	// ErrCoordinatorFailure indicates the coordinator session reported an
	// unrecoverable state, e.g. a peer disconnect.
	ErrCoordinatorFailure = errors.New("coupling: coordinator failure")
)
