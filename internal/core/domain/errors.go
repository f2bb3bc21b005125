package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Session Errors.

	// ErrNotAdmitted indicates the caller has not passed the session gate.
	ErrNotAdmitted = errors.New("session not admitted")

	// ErrInvalidSecret indicates the supplied access secret did not match.
	ErrInvalidSecret = errors.New("invalid access secret")

	// ErrSessionExpired indicates the session outlived its TTL.
	ErrSessionExpired = errors.New("session expired")

	// Process Errors.

	// ErrRegistryFrozen indicates the plugin registry no longer accepts plugins.
	// Discovery runs once per process lifetime.
	ErrRegistryFrozen = errors.New("plugin registry frozen")

	// ErrRecoverable marks a process failure the operator may retry.
	// Plugins wrap it to signal that partial deliverables are still useful.
	ErrRecoverable = errors.New("recoverable failure")

	// ErrTimeout indicates a process ran past its configured time budget.
	ErrTimeout = errors.New("process timed out")

	// ErrStillRunning indicates an earlier plugin run ignored cancellation
	// and has not exited yet.
	ErrStillRunning = errors.New("earlier run still running")
)
