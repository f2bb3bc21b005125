package mcp

import (
	"context"
	"io"
	"strings"

	"github.com/custodia-labs/procdesk/internal/core/domain"
)

// mockProcessService is a mock implementation of driving.ProcessService.
type mockProcessService struct {
	processes []domain.ProcessInfo
	report    *domain.InvocationReport
	err       error

	lastRequest domain.InvocationRequest
	lastContent string
}

func (m *mockProcessService) List(_ context.Context, _ *domain.Session) ([]domain.ProcessInfo, error) {
	return m.processes, m.err
}

func (m *mockProcessService) Describe(_ context.Context, _ *domain.Session, name string) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	for _, p := range m.processes {
		if p.Name == name {
			return p.Description, nil
		}
	}
	return "", domain.ErrNotFound
}

func (m *mockProcessService) Invoke(
	_ context.Context,
	_ *domain.Session,
	req domain.InvocationRequest,
) (*domain.InvocationReport, error) {
	m.lastRequest = req
	if req.Content != nil {
		data, _ := io.ReadAll(req.Content)
		m.lastContent = string(data)
	}
	return m.report, m.err
}

// mockLedgerService is a mock implementation of driving.LedgerService.
type mockLedgerService struct {
	records []domain.LedgerRecord
	err     error
}

func (m *mockLedgerService) List(_ context.Context, _ *domain.Session) ([]domain.LedgerRecord, error) {
	return m.records, m.err
}

func (m *mockLedgerService) Clear(_ context.Context, _ *domain.Session) error {
	return m.err
}

func (m *mockLedgerService) Export(_ context.Context, _ *domain.Session, w io.Writer) error {
	if m.err != nil {
		return m.err
	}
	var b strings.Builder
	b.WriteString(strings.Join(domain.LedgerColumns, ",") + "\n")
	for _, rec := range m.records {
		b.WriteString(strings.Join(rec.Row(), ",") + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func testSession() *domain.Session {
	return &domain.Session{ID: "s-1", User: "ana", Admitted: true}
}
