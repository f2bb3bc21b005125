package driven

import (
	"context"

	"github.com/custodia-labs/procdesk/internal/core/domain"
)

// ProcessPlugin is a pluggable transformation routine.
// Plugins are registered once at startup and are immutable afterwards.
type ProcessPlugin interface {
	// Name returns the registered name. It must be unique and stable.
	Name() string

	// Describe returns the static description shown to operators.
	Describe() string

	// Run processes the document at inputPath and writes deliverables
	// below outputDir. The returned summary is displayed as-is.
	// Wrap domain.ErrRecoverable to signal a retryable failure.
	Run(ctx context.Context, inputPath, outputDir string) (domain.Summary, error)
}

// PluginSource supplies plugin candidates at discovery time.
type PluginSource interface {
	// Name identifies the source in logs and listings.
	Name() string

	// Discover returns all well-formed candidates.
	// Candidates lacking a required capability are skipped; a candidate
	// that fails to load aborts discovery with an error naming it.
	Discover(ctx context.Context) ([]ProcessPlugin, error)
}
