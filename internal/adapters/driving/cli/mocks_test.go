package cli

import (
	"bytes"
	"context"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driving"
)

const testSecret = "secreto-de-prueba"

// mockProcessService implements driving.ProcessService for testing.
type mockProcessService struct {
	processes    []domain.ProcessInfo
	descriptions map[string]string
	report       *domain.InvocationReport
	invokeErr    error
	lastRequest  domain.InvocationRequest
	lastContent  string
	lastSession  *domain.Session
}

func (m *mockProcessService) List(_ context.Context, s *domain.Session) ([]domain.ProcessInfo, error) {
	m.lastSession = s
	return m.processes, nil
}

func (m *mockProcessService) Describe(_ context.Context, s *domain.Session, name string) (string, error) {
	m.lastSession = s
	desc, ok := m.descriptions[name]
	if !ok {
		return "", domain.ErrNotFound
	}
	return desc, nil
}

func (m *mockProcessService) Invoke(
	_ context.Context, s *domain.Session, req domain.InvocationRequest,
) (*domain.InvocationReport, error) {
	m.lastSession = s
	m.lastRequest = req
	if req.Content != nil {
		data, _ := io.ReadAll(req.Content)
		m.lastContent = string(data)
	}
	if m.invokeErr != nil {
		return nil, m.invokeErr
	}
	return m.report, nil
}

// mockLedgerService implements driving.LedgerService for testing.
type mockLedgerService struct {
	records    []domain.LedgerRecord
	clearCalls int
}

func (m *mockLedgerService) List(_ context.Context, _ *domain.Session) ([]domain.LedgerRecord, error) {
	return m.records, nil
}

func (m *mockLedgerService) Clear(_ context.Context, _ *domain.Session) error {
	m.clearCalls++
	m.records = nil
	return nil
}

func (m *mockLedgerService) Export(_ context.Context, _ *domain.Session, w io.Writer) error {
	var b strings.Builder
	b.WriteString(strings.Join(domain.LedgerColumns, ","))
	b.WriteString("\n")
	for _, rec := range m.records {
		b.WriteString(strings.Join(rec.Row(), ","))
		b.WriteString("\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// mockSessionGate implements driving.SessionGate for testing.
type mockSessionGate struct {
	secret        string
	defaultSecret bool
	admitCalls    int
	logoutCalls   int
	lastUser      string
}

func (m *mockSessionGate) Admit(_ context.Context, secret, user string) (*domain.Session, error) {
	m.admitCalls++
	m.lastUser = user
	if secret != m.secret {
		return nil, domain.ErrInvalidSecret
	}
	return &domain.Session{ID: "s-1", User: user, Admitted: true}, nil
}

func (m *mockSessionGate) Validate(s *domain.Session) error {
	if s == nil || !s.Admitted {
		return domain.ErrNotAdmitted
	}
	return nil
}

func (m *mockSessionGate) Logout(s *domain.Session) {
	m.logoutCalls++
	if s != nil {
		s.Admitted = false
	}
}

func (m *mockSessionGate) UsingDefaultSecret() bool {
	return m.defaultSecret
}

// mockSettingsService implements driving.SettingsService for testing.
type mockSettingsService struct {
	settings domain.Settings
	setErr   error
	stored   map[string]any
}

func newMockSettingsService() *mockSettingsService {
	return &mockSettingsService{settings: domain.DefaultSettings(), stored: map[string]any{}}
}

func (m *mockSettingsService) Get() (*domain.Settings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Set(key string, value any) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.stored[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string {
	return []string{"access.secret", "ledger.backend", "watch.max_per_second"}
}

func (m *mockSettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

func (m *mockSettingsService) ConfigPath() string {
	return "/tmp/procdesk/config.toml"
}

var (
	_ driving.ProcessService  = (*mockProcessService)(nil)
	_ driving.LedgerService   = (*mockLedgerService)(nil)
	_ driving.SessionGate     = (*mockSessionGate)(nil)
	_ driving.SettingsService = (*mockSettingsService)(nil)
)

// testServices holds the mocks installed by setupTestServices.
type testServices struct {
	process  *mockProcessService
	ledger   *mockLedgerService
	gate     *mockSessionGate
	settings *mockSettingsService
}

// setupTestServices installs mocks and an access key flag value that admits.
func setupTestServices() (*testServices, func()) {
	cleanup := resetServices()
	ts := &testServices{
		process:  &mockProcessService{descriptions: map[string]string{}},
		ledger:   &mockLedgerService{},
		gate:     &mockSessionGate{secret: testSecret},
		settings: newMockSettingsService(),
	}
	SetServices(&Services{
		Process:  ts.process,
		Ledger:   ts.ledger,
		Sessions: ts.gate,
		Settings: ts.settings,
	})
	return ts, cleanup
}

// resetServices clears installed services, the session and every flag, and
// returns a func restoring the previous services.
func resetServices() func() {
	prevProcess, prevLedger := processService, ledgerService
	prevGate, prevSettings := sessionGate, settingsService
	prevClose, prevBootstrap := closeServices, bootstrap
	prevSession, prevReadSecret := session, readSecret

	wipe := func() {
		SetServices(nil)
		bootstrap = nil
		readSecret = func() string { return "" }
		resetFlags(rootCmd)
	}
	wipe()

	return func() {
		wipe()
		processService, ledgerService = prevProcess, prevLedger
		sessionGate, settingsService = prevGate, prevSettings
		closeServices, bootstrap = prevClose, prevBootstrap
		session, readSecret = prevSession, prevReadSecret
		rootCmd.SetArgs(nil)
		rootCmd.SetIn(nil)
	}
}

// resetFlags restores every flag under cmd to its default value.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns stdout and stderr.
func execute(args ...string) (string, string, error) {
	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
