package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driven"
)

// Ensure Ledger implements the interface.
var _ driven.UsageLedger = (*Ledger)(nil)

// Ledger is an in-memory implementation of driven.UsageLedger.
type Ledger struct {
	mu      sync.RWMutex
	records []domain.LedgerRecord
}

// NewLedger creates a new in-memory ledger.
func NewLedger() *Ledger {
	return &Ledger{}
}

// Append adds a record after all existing records.
func (l *Ledger) Append(ctx context.Context, record domain.LedgerRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append(l.records, record)
	return nil
}

// ReadAll returns a copy of every record in append order.
func (l *Ledger) ReadAll(_ context.Context) ([]domain.LedgerRecord, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]domain.LedgerRecord, len(l.records))
	copy(out, l.records)
	return out, nil
}

// Clear removes every record.
func (l *Ledger) Clear(_ context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = nil
	return nil
}
