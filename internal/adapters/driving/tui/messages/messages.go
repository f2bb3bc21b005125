// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/procdesk/internal/core/domain"
)

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewLogin asks for the access key.
	ViewLogin ViewType = iota
	// ViewMenu is the main navigation menu.
	ViewMenu
	// ViewRun selects a process and a document and runs it.
	ViewRun
	// ViewLedger shows the usage ledger.
	ViewLedger
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewLogin:
		return "login"
	case ViewMenu:
		return "menu"
	case ViewRun:
		return "run"
	case ViewLedger:
		return "ledger"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// Quit signals the application should exit.
type Quit struct{}

// LoginCompleted carries the result of an admission attempt.
type LoginCompleted struct {
	Session *domain.Session
	Err     error
}

// LoggedOut signals the operator ended the session.
type LoggedOut struct{}

// ProcessesLoaded carries the registered processes.
type ProcessesLoaded struct {
	Processes []domain.ProcessInfo
	Err       error
}

// InvocationCompleted carries the outcome of a process run.
// Err is set only when the invocation was rejected or the archive could
// not be saved; failures inside the run are in Report.
type InvocationCompleted struct {
	Report      *domain.InvocationReport
	ArchivePath string
	Err         error
}

// LedgerLoaded carries the usage ledger records.
type LedgerLoaded struct {
	Records []domain.LedgerRecord
	Err     error
}

// LedgerCleared signals the ledger was cleared.
type LedgerCleared struct {
	Err error
}
