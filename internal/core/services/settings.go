package services

import (
	"fmt"
	"slices"
	"time"

	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driven"
	"github.com/custodia-labs/procdesk/internal/core/ports/driving"
	"github.com/custodia-labs/procdesk/internal/logger"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// EnvAccessSecret names the environment variable holding the shared secret.
const EnvAccessSecret = "APP_PASS"

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	KeyAccessSecret   = "access.secret"
	KeySessionTTL     = "session.ttl_minutes"
	KeyWorkDir        = "paths.work_dir"
	KeyOutputs        = "paths.outputs"
	KeyUploads        = "paths.uploads"
	KeyPlugins        = "paths.plugins"
	KeyLedgerBackend  = "ledger.backend"
	KeyLedgerPath     = "ledger.path"
	KeyRunnerTimeout  = "runner.timeout_seconds"
	KeyWatchRate      = "watch.max_per_second"
	KeyToolsPDFToText = "tools.pdftotext"
)

var settingsKeys = []string{
	KeyAccessSecret,
	KeySessionTTL,
	KeyWorkDir,
	KeyOutputs,
	KeyUploads,
	KeyPlugins,
	KeyLedgerBackend,
	KeyLedgerPath,
	KeyRunnerTimeout,
	KeyWatchRate,
	KeyToolsPDFToText,
}

// SettingsService manages application settings.
// Values come from the config store, with the access secret overridable
// from the environment; anything unset falls back to domain.DefaultSettings.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// NewSettingsService creates a new settings service.
// getenv is usually os.Getenv; nil disables environment overrides.
func NewSettingsService(configStore driven.ConfigStore, getenv func(string) string) *SettingsService {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	return &SettingsService{
		configStore: configStore,
		getenv:      getenv,
	}
}

// Get retrieves the effective settings and validates them.
func (s *SettingsService) Get() (*domain.Settings, error) {
	defaults := domain.DefaultSettings()

	settings := &domain.Settings{
		Access: domain.AccessSettings{
			Secret:     s.getSecret(defaults.Access.Secret),
			SessionTTL: s.getMinutes(KeySessionTTL, defaults.Access.SessionTTL),
		},
		Paths: domain.PathSettings{
			WorkDir: s.getString(KeyWorkDir, defaults.Paths.WorkDir),
			Outputs: s.getString(KeyOutputs, defaults.Paths.Outputs),
			Uploads: s.getString(KeyUploads, defaults.Paths.Uploads),
			Plugins: s.getString(KeyPlugins, defaults.Paths.Plugins),
		},
		Ledger: domain.LedgerSettings{
			Backend: domain.LedgerBackend(s.getString(KeyLedgerBackend, defaults.Ledger.Backend.String())),
			Path:    s.getString(KeyLedgerPath, defaults.Ledger.Path),
		},
		Runner: domain.RunnerSettings{
			Timeout: s.getSeconds(KeyRunnerTimeout, defaults.Runner.Timeout),
		},
		Watch: domain.WatchSettings{
			MaxPerSecond: s.getFloat(KeyWatchRate, defaults.Watch.MaxPerSecond),
		},
		Tools: domain.ToolSettings{
			PDFToText: s.getString(KeyToolsPDFToText, defaults.Tools.PDFToText),
		},
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", s.configStore.Path(), err)
	}
	if settings.UsingDefaultSecret() {
		logger.With("settings").Warn("insecure default access secret in use; set " + EnvAccessSecret + " or " + KeyAccessSecret)
	}
	return settings, nil
}

// Set stores a single configuration key in the config file.
// Unknown keys are rejected.
func (s *SettingsService) Set(key string, value any) error {
	if !slices.Contains(settingsKeys, key) {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}
	return s.configStore.Set(key, value)
}

// Keys returns every configurable key.
func (s *SettingsService) Keys() []string {
	return slices.Clone(settingsKeys)
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.Settings {
	return domain.DefaultSettings()
}

// ConfigPath returns the configuration file path.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

func (s *SettingsService) getSecret(defaultVal string) string {
	if env := s.getenv(EnvAccessSecret); env != "" {
		return env
	}
	return s.getString(KeyAccessSecret, defaultVal)
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val, ok := s.configStore.String(key); ok && val != "" {
		return val
	}
	return defaultVal
}

// getSeconds reads a whole number of seconds. An explicit 0 is kept.
func (s *SettingsService) getSeconds(key string, defaultVal time.Duration) time.Duration {
	if n, ok := s.configStore.Int(key); ok {
		return time.Duration(n) * time.Second
	}
	return defaultVal
}

// getMinutes reads a whole number of minutes. An explicit 0 is kept.
func (s *SettingsService) getMinutes(key string, defaultVal time.Duration) time.Duration {
	if n, ok := s.configStore.Int(key); ok {
		return time.Duration(n) * time.Minute
	}
	return defaultVal
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if f, ok := s.configStore.Float(key); ok {
		return f
	}
	return defaultVal
}
