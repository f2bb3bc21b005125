// Package tui provides the interactive terminal panel for procdesk.
// It implements a driving adapter following hexagonal architecture principles:
// the operator logs in with the access key, picks a process, runs it on a PDF
// and can review or clear the usage ledger.
package tui

import (
	"github.com/custodia-labs/procdesk/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Process lists and runs processes.
	Process driving.ProcessService

	// Ledger exposes the usage ledger.
	Ledger driving.LedgerService

	// Sessions admits the operator.
	Sessions driving.SessionGate

	// User is the operator name recorded in the ledger.
	User string

	// ArchiveDir is where result archives are saved. Defaults to the
	// current directory.
	ArchiveDir string
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Process == nil {
		return ErrMissingProcessService
	}
	if p.Ledger == nil {
		return ErrMissingLedgerService
	}
	if p.Sessions == nil {
		return ErrMissingSessionGate
	}
	return nil
}
