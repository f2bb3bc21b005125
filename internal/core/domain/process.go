package domain

import (
	"errors"
	"fmt"
	"sort"
)

// Output tree layout shared by every process.
// Plugins write deliverables here; the packager reads only these paths.
const (
	// DeliverablesDir is the folder under a process's output root holding deliverables.
	DeliverablesDir = "comprobantes_refinado"

	// TabularFile is the tabular deliverable inside DeliverablesDir.
	TabularFile = "operaciones.csv"

	// DocumentsDir is the document deliverables folder inside DeliverablesDir.
	DocumentsDir = "pdfs"

	// DocumentPattern selects document deliverables inside DocumentsDir.
	DocumentPattern = "*.pdf"

	// ArchivePrefix is the archive-internal prefix for document deliverables.
	ArchivePrefix = "pdfs/"
)

// ArchiveName returns the download name of a process's result archive.
func ArchiveName(process string) string {
	return "resultados_" + process + ".zip"
}

// ProcessInfo describes a registered process plugin.
type ProcessInfo struct {
	// Name is the registered, session-stable identifier.
	Name string

	// Description is the plugin's static description text.
	Description string

	// Source names where the plugin came from (builtin, external).
	Source string
}

// Summary is the label to value mapping a process returns.
// No keys are required and an empty summary is valid.
type Summary map[string]any

// Keys returns the summary labels in sorted order for stable display.
func (s Summary) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ResultStatus classifies how a process run ended.
type ResultStatus int

const (
	// StatusSuccess means the process completed and returned a summary.
	StatusSuccess ResultStatus = iota
	// StatusRecoverable means the process failed but may be retried;
	// deliverables written so far are still packaged.
	StatusRecoverable
	// StatusFatal means the process failed outright.
	StatusFatal
)

// String returns the string representation of the status.
func (s ResultStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusRecoverable:
		return "recoverable"
	case StatusFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// InvocationResult is what the runner observed for one process run.
type InvocationResult struct {
	Status  ResultStatus
	Summary Summary
	// Reason carries the failure text for non-success statuses.
	Reason string
}

// ExecutionError wraps a failure raised by a process during Run.
// Its message is the cause's message so it can be shown verbatim.
type ExecutionError struct {
	Process     string
	Cause       error
	Recoverable bool
}

func (e *ExecutionError) Error() string {
	if e.Cause == nil {
		return "process failed"
	}
	return e.Cause.Error()
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// StagingError indicates the uploaded input could not be saved.
type StagingError struct {
	Filename string
	Cause    error
}

func (e *StagingError) Error() string {
	return fmt.Sprintf("staging %s: %v", e.Filename, e.Cause)
}

func (e *StagingError) Unwrap() error {
	return e.Cause
}

// PackagingError indicates the result archive could not be built.
type PackagingError struct {
	Cause error
}

func (e *PackagingError) Error() string {
	return fmt.Sprintf("packaging results: %v", e.Cause)
}

func (e *PackagingError) Unwrap() error {
	return e.Cause
}

// IsRecoverable reports whether err is a failure the operator may retry.
func IsRecoverable(err error) bool {
	var execErr *ExecutionError
	if errors.As(err, &execErr) {
		return execErr.Recoverable
	}
	return errors.Is(err, ErrRecoverable) || errors.Is(err, ErrTimeout)
}

// Archive is the in-memory bundle of a process's deliverables.
type Archive struct {
	// Name is the download file name.
	Name string

	// Data is the zip-encoded content.
	Data []byte

	// Entries lists archive entry names in write order.
	Entries []string

	// Warnings aggregates deliverables that existed but could not be read.
	Warnings error
}

// Empty returns true if the archive has no entries.
func (a *Archive) Empty() bool {
	return a == nil || len(a.Entries) == 0
}
