package domain

import (
	"io"
	"time"
)

// InvocationRequest asks for one process run against one uploaded document.
type InvocationRequest struct {
	// Process is the registered process name.
	Process string
	// Filename is the original name of the uploaded document.
	Filename string
	// Content is the uploaded document.
	Content io.Reader
	// User identifies the operator in the ledger. Defaults to the session user.
	User string
}

// InvocationReport is everything one invocation produced.
type InvocationReport struct {
	ID       string
	Process  string
	Filename string
	User     string

	// InputPath is where the upload was staged.
	InputPath string
	// OutputDir is the process's output root.
	OutputDir string

	Result InvocationResult

	// Archive is nil when packaging was skipped.
	Archive *Archive

	// Err is the staging, execution or packaging failure, if any.
	Err error

	// LedgerErr is set when the outcome could not be recorded.
	LedgerErr error

	// Outcome is the value recorded (or meant to be recorded) in the ledger.
	Outcome string

	Started time.Time
	Ended   time.Time
}

// Succeeded returns true if the invocation completed without failure.
func (r *InvocationReport) Succeeded() bool {
	return r != nil && r.Err == nil
}

// Message returns the user-visible outcome text.
func (r *InvocationReport) Message() string {
	if r == nil {
		return ""
	}
	if r.Err != nil {
		return "Error: " + r.Err.Error()
	}
	return "Proceso completado correctamente."
}

// Duration returns how long the invocation took.
func (r *InvocationReport) Duration() time.Duration {
	if r == nil || r.Ended.IsZero() {
		return 0
	}
	return r.Ended.Sub(r.Started)
}
