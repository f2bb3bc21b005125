package domain

import (
	"fmt"
	"path/filepath"
	"time"
)

const unknownDescription = "Unknown"

// DefaultAccessSecret is the fallback shared secret used when none is configured.
// It is public knowledge and therefore insecure; front-ends warn when it is active.
const DefaultAccessSecret = "1234segura"

// LedgerBackend identifies where the usage ledger is persisted.
type LedgerBackend string

// Available ledger backends.
const (
	// LedgerBackendCSV stores the ledger as a CSV file (compatible with existing logs).
	LedgerBackendCSV LedgerBackend = "csv"

	// LedgerBackendSQLite stores the ledger in a SQLite database.
	LedgerBackendSQLite LedgerBackend = "sqlite"

	// LedgerBackendMemory keeps the ledger in memory only.
	LedgerBackendMemory LedgerBackend = "memory"
)

// IsValid returns true if the backend is recognised.
func (b LedgerBackend) IsValid() bool {
	switch b {
	case LedgerBackendCSV, LedgerBackendSQLite, LedgerBackendMemory:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (b LedgerBackend) String() string {
	return string(b)
}

// Description returns a human-readable description of the backend.
func (b LedgerBackend) Description() string {
	switch b {
	case LedgerBackendCSV:
		return "CSV file"
	case LedgerBackendSQLite:
		return "SQLite database"
	case LedgerBackendMemory:
		return "In-memory (not persisted)"
	default:
		return unknownDescription
	}
}

// AccessSettings configures the session gate.
type AccessSettings struct {
	// Secret is the shared access secret.
	Secret string
	// SessionTTL bounds how long an admitted session stays valid. Zero means no expiry.
	SessionTTL time.Duration
}

// PathSettings locates the working tree.
type PathSettings struct {
	// WorkDir is the working root; relative paths below resolve against it.
	WorkDir string
	// Outputs is the root of the per-process output trees.
	Outputs string
	// Uploads is where uploaded inputs are staged.
	Uploads string
	// Plugins is the directory scanned for external process manifests.
	Plugins string
}

// Resolve returns p relative to WorkDir unless p is absolute.
func (p PathSettings) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(p.WorkDir, path)
}

// LedgerSettings configures the usage ledger.
type LedgerSettings struct {
	Backend LedgerBackend
	// Path is the CSV file or SQLite directory, depending on Backend.
	Path string
}

// RunnerSettings configures process execution.
type RunnerSettings struct {
	// Timeout bounds a single process run. Zero disables the limit.
	Timeout time.Duration
}

// WatchSettings configures the folder watch mode.
type WatchSettings struct {
	// MaxPerSecond throttles invocations triggered by new files.
	MaxPerSecond float64
}

// ToolSettings locates external tools used by built-in processes.
type ToolSettings struct {
	PDFToText string
}

// Settings holds all application configuration.
type Settings struct {
	Access AccessSettings
	Paths  PathSettings
	Ledger LedgerSettings
	Runner RunnerSettings
	Watch  WatchSettings
	Tools  ToolSettings
}

// DefaultSettings returns settings with sensible defaults.
func DefaultSettings() Settings {
	return Settings{
		Access: AccessSettings{
			Secret:     DefaultAccessSecret,
			SessionTTL: 8 * time.Hour,
		},
		Paths: PathSettings{
			WorkDir: ".",
			Outputs: "outputs",
			Uploads: "uploads",
			Plugins: "procesos",
		},
		Ledger: LedgerSettings{
			Backend: LedgerBackendCSV,
			Path:    "logs/registros.csv",
		},
		Runner: RunnerSettings{
			Timeout: 10 * time.Minute,
		},
		Watch: WatchSettings{
			MaxPerSecond: 1,
		},
		Tools: ToolSettings{
			PDFToText: "pdftotext",
		},
	}
}

// Validate checks the settings for values the application cannot run with.
func (s Settings) Validate() error {
	if s.Access.Secret == "" {
		return fmt.Errorf("%w: access secret is empty", ErrInvalidInput)
	}
	if s.Access.SessionTTL < 0 {
		return fmt.Errorf("%w: session ttl must not be negative", ErrInvalidInput)
	}
	if !s.Ledger.Backend.IsValid() {
		return fmt.Errorf("%w: unknown ledger backend %q", ErrInvalidInput, s.Ledger.Backend)
	}
	if s.Ledger.Backend != LedgerBackendMemory && s.Ledger.Path == "" {
		return fmt.Errorf("%w: ledger path is empty", ErrInvalidInput)
	}
	if s.Paths.Outputs == "" || s.Paths.Uploads == "" {
		return fmt.Errorf("%w: outputs and uploads paths are required", ErrInvalidInput)
	}
	if s.Runner.Timeout < 0 {
		return fmt.Errorf("%w: runner timeout must not be negative", ErrInvalidInput)
	}
	if s.Watch.MaxPerSecond <= 0 {
		return fmt.Errorf("%w: watch rate must be positive", ErrInvalidInput)
	}
	return nil
}

// UsingDefaultSecret returns true if the insecure default secret is in effect.
func (s Settings) UsingDefaultSecret() bool {
	return s.Access.Secret == DefaultAccessSecret
}

// AllLedgerBackends returns all available ledger backends.
func AllLedgerBackends() []LedgerBackend {
	return []LedgerBackend{LedgerBackendCSV, LedgerBackendSQLite, LedgerBackendMemory}
}
