package cli

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/procdesk/internal/core/domain"
)

func TestRequireSession_FromFlag(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, _, err := execute("process", "list", "--access-key", testSecret, "--user", "ana")

	require.NoError(t, err)
	assert.Equal(t, 1, ts.gate.admitCalls)
	assert.Equal(t, "ana", ts.gate.lastUser)
	require.NotNil(t, ts.process.lastSession)
	assert.Equal(t, "s-1", ts.process.lastSession.ID)
}

func TestRequireSession_FromEnv(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	t.Setenv(EnvAccessKey, testSecret)

	_, stderr, err := execute("process", "list")

	require.NoError(t, err)
	assert.Equal(t, 1, ts.gate.admitCalls)
	assert.NotContains(t, stderr, "Clave de acceso")
}

func TestRequireSession_Prompt(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	t.Setenv(EnvAccessKey, "")
	readSecret = func() string { return testSecret }

	_, stderr, err := execute("process", "list")

	require.NoError(t, err)
	assert.Contains(t, stderr, "Clave de acceso: ")
	assert.Equal(t, 1, ts.gate.admitCalls)
}

func TestRequireSession_WrongKey(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()

	_, _, err := execute("process", "list", "--access-key", "otra")

	require.Error(t, err)
	assert.Equal(t, "clave incorrecta", err.Error())
	assert.Nil(t, ts.process.lastSession)
}

func TestRequireSession_DefaultSecretWarning(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	ts.gate.defaultSecret = true

	_, stderr, err := execute("process", "list", "--access-key", testSecret)

	require.NoError(t, err)
	assert.Contains(t, stderr, "clave por defecto")
}

func TestRequireSession_ReusesValidSession(t *testing.T) {
	ts, cleanup := setupTestServices()
	defer cleanup()
	session = &domain.Session{ID: "previa", User: "ana", Admitted: true}

	_, _, err := execute("process", "list")

	require.NoError(t, err)
	assert.Equal(t, 0, ts.gate.admitCalls)
	assert.Equal(t, "previa", ts.process.lastSession.ID)
}

func TestRequireSession_NoGate(t *testing.T) {
	defer resetServices()()
	SetServices(&Services{Process: &mockProcessService{}})

	_, _, err := execute("process", "list", "--access-key", testSecret)

	assert.EqualError(t, err, "session gate not configured")
}

func TestPreRun_Bootstrap(t *testing.T) {
	defer resetServices()()

	gate := &mockSessionGate{secret: testSecret}
	var gotDir string
	SetBootstrap(func(_ context.Context, dir string) (*Services, error) {
		gotDir = dir
		return &Services{
			Process:  &mockProcessService{},
			Ledger:   &mockLedgerService{},
			Sessions: gate,
		}, nil
	})

	_, _, err := execute("process", "list", "--config", "/tmp/cfg", "--access-key", testSecret)

	require.NoError(t, err)
	assert.Equal(t, "/tmp/cfg", gotDir)
	assert.Equal(t, 1, gate.admitCalls)
}

func TestPreRun_BootstrapError(t *testing.T) {
	defer resetServices()()
	SetBootstrap(func(_ context.Context, _ string) (*Services, error) {
		return nil, errors.New("config broken")
	})

	_, _, err := execute("process", "list")

	assert.EqualError(t, err, "config broken")
}

func TestExecute_ReleasesServices(t *testing.T) {
	defer resetServices()()

	gate := &mockSessionGate{secret: testSecret}
	closed := false
	SetServices(&Services{
		Process:  &mockProcessService{},
		Sessions: gate,
		Close: func() error {
			closed = true
			return nil
		},
	})
	rootCmd.SetArgs([]string{"process", "list", "--access-key", testSecret})

	require.NoError(t, Execute(context.Background()))
	assert.True(t, closed)
	assert.Equal(t, 1, gate.logoutCalls)
	assert.Nil(t, session)
}

func TestExecute_CloseError(t *testing.T) {
	defer resetServices()()
	SetServices(&Services{Close: func() error { return errors.New("flush failed") }})
	rootCmd.SetArgs([]string{"version"})

	assert.EqualError(t, Execute(context.Background()), "flush failed")
}

func TestOperatorName(t *testing.T) {
	defer resetServices()()

	t.Setenv("USER", "luis")
	assert.Equal(t, "luis", operatorName())

	userName = "ana"
	assert.Equal(t, "ana", operatorName())

	userName = ""
	t.Setenv("USER", "")
	assert.Equal(t, defaultUser, operatorName())
}

func TestSetServices_Nil(t *testing.T) {
	defer resetServices()()
	session = &domain.Session{ID: "x"}

	SetServices(nil)

	assert.Nil(t, processService)
	assert.Nil(t, sessionGate)
	assert.Nil(t, session)
}
