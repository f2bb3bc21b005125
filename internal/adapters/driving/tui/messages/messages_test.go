package messages

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/procdesk/internal/core/domain"
)

func TestViewType_String(t *testing.T) {
	tests := []struct {
		view     ViewType
		expected string
	}{
		{ViewLogin, "login"},
		{ViewMenu, "menu"},
		{ViewRun, "run"},
		{ViewLedger, "ledger"},
		{ViewHelp, "help"},
		{ViewType(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.view.String())
		})
	}
}

func TestViewType_LoginIsZeroValue(t *testing.T) {
	var v ViewType
	assert.Equal(t, ViewLogin, v)
}

func TestInvocationCompleted_CarriesReport(t *testing.T) {
	report := &domain.InvocationReport{Outcome: domain.OutcomeSuccess}
	msg := InvocationCompleted{Report: report, ArchivePath: "/tmp/resultados_copia.zip"}

	assert.Same(t, report, msg.Report)
	assert.NoError(t, msg.Err)
}

func TestLoginCompleted_Error(t *testing.T) {
	msg := LoginCompleted{Err: errors.New("bad key")}

	assert.Nil(t, msg.Session)
	assert.EqualError(t, msg.Err, "bad key")
}
