package services

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driven"
)

// --- Mock implementations shared by service tests ---

// mockPlugin implements driven.ProcessPlugin with a configurable run function.
type mockPlugin struct {
	name  string
	desc  string
	run   func(ctx context.Context, inputPath, outputDir string) (domain.Summary, error)
	mu    sync.Mutex
	calls int
}

func (m *mockPlugin) Name() string     { return m.name }
func (m *mockPlugin) Describe() string { return m.desc }

func (m *mockPlugin) Run(ctx context.Context, inputPath, outputDir string) (domain.Summary, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.run == nil {
		return domain.Summary{}, nil
	}
	return m.run(ctx, inputPath, outputDir)
}

func (m *mockPlugin) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockSource implements driven.PluginSource.
type mockSource struct {
	name    string
	plugins []driven.ProcessPlugin
	err     error
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Discover(_ context.Context) ([]driven.ProcessPlugin, error) {
	return m.plugins, m.err
}

// mockLedger implements driven.UsageLedger in memory.
type mockLedger struct {
	mu        sync.Mutex
	records   []domain.LedgerRecord
	appendErr error
	clearErr  error
}

func (m *mockLedger) Append(_ context.Context, rec domain.LedgerRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.appendErr != nil {
		return m.appendErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *mockLedger) ReadAll(_ context.Context) ([]domain.LedgerRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.LedgerRecord, len(m.records))
	copy(out, m.records)
	return out, nil
}

func (m *mockLedger) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.clearErr != nil {
		return m.clearErr
	}
	m.records = nil
	return nil
}

// mockArtifactStore stages into a temp directory.
type mockArtifactStore struct {
	root     string
	stageErr error
	dirErr   error
}

func (m *mockArtifactStore) Stage(_ context.Context, filename string, content io.Reader) (string, error) {
	if m.stageErr != nil {
		return "", m.stageErr
	}
	path := filepath.Join(m.root, "uploads", filepath.Base(filename))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", err
	}
	data, err := io.ReadAll(content)
	if err != nil {
		return "", err
	}
	return path, os.WriteFile(path, data, 0o644)
}

func (m *mockArtifactStore) EnsureOutputDir(_ context.Context, process string) (string, error) {
	if m.dirErr != nil {
		return "", m.dirErr
	}
	dir := m.OutputDir(process)
	return dir, os.MkdirAll(dir, 0o755)
}

func (m *mockArtifactStore) OutputDir(process string) string {
	return filepath.Join(m.root, "outputs", process)
}

// mockPackager records calls and returns a fixed archive.
type mockPackager struct {
	mu      sync.Mutex
	calls   int
	entries []string
	err     error
}

func (m *mockPackager) Package(_ context.Context, _, process string) (*domain.Archive, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	return &domain.Archive{Name: domain.ArchiveName(process), Data: []byte("PK"), Entries: m.entries}, nil
}

func (m *mockPackager) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var errBoom = errors.New("boom")
