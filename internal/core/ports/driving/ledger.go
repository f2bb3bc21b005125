package driving

import (
	"context"
	"io"

	"github.com/custodia-labs/procdesk/internal/core/domain"
)

// LedgerService exposes the usage ledger to operators.
type LedgerService interface {
	// List returns all records in chronological order.
	List(ctx context.Context, session *domain.Session) ([]domain.LedgerRecord, error)

	// Clear deletes the whole ledger. Irreversible.
	Clear(ctx context.Context, session *domain.Session) error

	// Export writes the ledger as CSV with the fixed header.
	Export(ctx context.Context, session *domain.Session, w io.Writer) error
}
