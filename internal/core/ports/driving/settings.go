package driving

import "github.com/custodia-labs/procdesk/internal/core/domain"

// SettingsService manages application settings.
type SettingsService interface {
	// Get retrieves the effective settings (file values, environment overrides, defaults).
	Get() (*domain.Settings, error)

	// Set stores a single configuration key in the config file.
	// Unknown keys are rejected with domain.ErrInvalidInput.
	Set(key string, value any) error

	// Keys returns every configurable key.
	Keys() []string

	// GetDefaults returns default settings.
	GetDefaults() domain.Settings

	// ConfigPath returns the configuration file path.
	ConfigPath() string
}
