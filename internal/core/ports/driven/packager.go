package driven

import (
	"context"

	"github.com/custodia-labs/procdesk/internal/core/domain"
)

// ResultPackager builds the downloadable archive of a process's deliverables.
type ResultPackager interface {
	// Package collects the fixed deliverable paths below outputDir.
	// Missing deliverables yield an empty archive, not an error.
	Package(ctx context.Context, outputDir, process string) (*domain.Archive, error)
}
