package mcp

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/procdesk/internal/core/domain"
)

func TestExtractProcessName(t *testing.T) {
	tests := []struct {
		name     string
		uri      string
		expected string
	}{
		{name: "valid process URI", uri: "procdesk://processes/copia", expected: "copia"},
		{name: "invalid prefix", uri: "file://processes/copia", expected: ""},
		{name: "nested path", uri: "procdesk://processes/copia/extra", expected: ""},
		{name: "empty URI", uri: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractProcessName(tt.uri))
		})
	}
}

// Helper to create a ReadResourceRequest with the given URI.
func makeReadResourceRequest(uri string) *mcp.ReadResourceRequest {
	return &mcp.ReadResourceRequest{
		Params: &mcp.ReadResourceParams{
			URI: uri,
		},
	}
}

func TestServer_handleLedgerResource(t *testing.T) {
	ctx := context.Background()

	t.Run("returns csv export", func(t *testing.T) {
		at := time.Date(2025, 3, 14, 9, 30, 0, 0, time.Local)
		server := newTestServer(t, &Ports{
			Process: &mockProcessService{},
			Ledger: &mockLedgerService{records: []domain.LedgerRecord{
				{Timestamp: at, User: "ana", Process: "copia", Filename: "a.pdf", Outcome: domain.OutcomeSuccess},
			}},
		})

		result, err := server.handleLedgerResource(ctx, makeReadResourceRequest("procdesk://ledger"))

		require.NoError(t, err)
		require.Len(t, result.Contents, 1)
		assert.Equal(t, "text/csv", result.Contents[0].MIMEType)
		assert.Equal(t,
			"Fecha,Usuario,Proceso,Archivo,Resultado\n2025-03-14 09:30:00,ana,copia,a.pdf,Éxito\n",
			result.Contents[0].Text)
	})

	t.Run("export error", func(t *testing.T) {
		server := newTestServer(t, &Ports{
			Process: &mockProcessService{},
			Ledger:  &mockLedgerService{err: domain.ErrNotAdmitted},
		})

		_, err := server.handleLedgerResource(ctx, makeReadResourceRequest("procdesk://ledger"))
		assert.ErrorIs(t, err, domain.ErrNotAdmitted)
	})

	t.Run("no ledger", func(t *testing.T) {
		server := newTestServer(t, &Ports{Process: &mockProcessService{}})

		_, err := server.handleLedgerResource(ctx, makeReadResourceRequest("procdesk://ledger"))
		assert.Error(t, err)
	})
}

func TestServer_handleProcessesResource(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t, &Ports{Process: &mockProcessService{
		processes: []domain.ProcessInfo{{Name: "copia", Description: "Copia", Source: "builtin"}},
	}})

	result, err := server.handleProcessesResource(ctx, makeReadResourceRequest("procdesk://processes"))

	require.NoError(t, err)
	require.Len(t, result.Contents, 1)

	var decoded []map[string]string
	require.NoError(t, json.Unmarshal([]byte(result.Contents[0].Text), &decoded))
	assert.Equal(t, []map[string]string{{"name": "copia", "description": "Copia", "source": "builtin"}}, decoded)
}

func TestServer_handleProcessResource(t *testing.T) {
	ctx := context.Background()
	server := newTestServer(t, &Ports{Process: &mockProcessService{
		processes: []domain.ProcessInfo{{Name: "copia", Description: "Copia el documento"}},
	}})

	t.Run("known process", func(t *testing.T) {
		result, err := server.handleProcessResource(ctx, makeReadResourceRequest("procdesk://processes/copia"))
		require.NoError(t, err)
		assert.Equal(t, "Copia el documento", result.Contents[0].Text)
	})

	t.Run("unknown process", func(t *testing.T) {
		_, err := server.handleProcessResource(ctx, makeReadResourceRequest("procdesk://processes/nope"))
		assert.Error(t, err)
	})

	t.Run("malformed uri", func(t *testing.T) {
		_, err := server.handleProcessResource(ctx, makeReadResourceRequest("procdesk://processes/"))
		assert.Error(t, err)
	})
}
