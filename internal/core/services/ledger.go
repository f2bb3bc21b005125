package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driven"
	"github.com/custodia-labs/procdesk/internal/core/ports/driving"
	"github.com/custodia-labs/procdesk/internal/logger"
)

// Ensure LedgerService implements the interface.
var _ driving.LedgerService = (*LedgerService)(nil)

// LedgerService exposes the usage ledger behind the session gate.
type LedgerService struct {
	ledger driven.UsageLedger
	gate   driving.SessionGate
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(ledger driven.UsageLedger, gate driving.SessionGate) *LedgerService {
	return &LedgerService{
		ledger: ledger,
		gate:   gate,
	}
}

// List returns all records in chronological order.
func (s *LedgerService) List(ctx context.Context, session *domain.Session) ([]domain.LedgerRecord, error) {
	if err := s.gate.Validate(session); err != nil {
		return nil, err
	}
	return s.ledger.ReadAll(ctx)
}

// Clear deletes the whole ledger.
func (s *LedgerService) Clear(ctx context.Context, session *domain.Session) error {
	if err := s.gate.Validate(session); err != nil {
		return err
	}
	if err := s.ledger.Clear(ctx); err != nil {
		return fmt.Errorf("clearing ledger: %w", err)
	}
	logger.Info("ledger cleared by %s", session.User)
	return nil
}

// Export writes the ledger as CSV with the fixed header, whatever the backend.
func (s *LedgerService) Export(ctx context.Context, session *domain.Session, w io.Writer) error {
	records, err := s.List(ctx, session)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(domain.LedgerColumns); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i := range records {
		if err := cw.Write(records[i].Row()); err != nil {
			return fmt.Errorf("writing record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
