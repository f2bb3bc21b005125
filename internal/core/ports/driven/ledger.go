package driven

import (
	"context"

	"github.com/custodia-labs/procdesk/internal/core/domain"
)

// UsageLedger persists the append-only audit trail of invocations.
type UsageLedger interface {
	// Append adds one record after all existing records.
	Append(ctx context.Context, record domain.LedgerRecord) error

	// ReadAll returns every record in append order.
	// Returns an empty slice if nothing was recorded.
	ReadAll(ctx context.Context) ([]domain.LedgerRecord, error)

	// Clear removes every record. Clearing an empty ledger is not an error.
	Clear(ctx context.Context) error
}
