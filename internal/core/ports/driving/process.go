package driving

import (
	"context"

	"github.com/custodia-labs/procdesk/internal/core/domain"
)

// ProcessService lists processes and runs invocations.
type ProcessService interface {
	// List returns all registered processes sorted by name.
	List(ctx context.Context, session *domain.Session) ([]domain.ProcessInfo, error)

	// Describe returns the description of a process.
	Describe(ctx context.Context, session *domain.Session, name string) (string, error)

	// Invoke runs one process against one uploaded document.
	// A returned error means no invocation took place (gate, unknown process,
	// incomplete request). Failures during the invocation itself are carried
	// in the report and always recorded once in the ledger.
	Invoke(ctx context.Context, session *domain.Session, req domain.InvocationRequest) (*domain.InvocationReport, error)
}
