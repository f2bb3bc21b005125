package mcp

import (
	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Process lists and runs processes.
	Process driving.ProcessService

	// Ledger exposes the usage ledger.
	Ledger driving.LedgerService

	// Session is the admitted session every call runs under.
	// The server is started by an operator who has already passed the gate.
	Session *domain.Session

	// ArchiveDir is where run_process writes result archives.
	// Defaults to the current directory.
	ArchiveDir string
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Process == nil {
		return ErrMissingProcessService
	}
	if p.Session == nil {
		return ErrMissingSession
	}
	// Ledger is optional; ledger tools report it as unavailable.
	return nil
}
