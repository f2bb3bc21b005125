package app

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-multierror"

	"github.com/custodia-labs/procdesk/internal/adapters/driven/archive"
	"github.com/custodia-labs/procdesk/internal/adapters/driven/config/file"
	"github.com/custodia-labs/procdesk/internal/adapters/driven/storage/csv"
	"github.com/custodia-labs/procdesk/internal/adapters/driven/storage/filesystem"
	"github.com/custodia-labs/procdesk/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/procdesk/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driven"
	"github.com/custodia-labs/procdesk/internal/core/services"
	"github.com/custodia-labs/procdesk/internal/logger"
	"github.com/custodia-labs/procdesk/internal/processes"
)

// Options configures container construction.
type Options struct {
	// ConfigDir overrides the configuration directory (~/.procdesk).
	ConfigDir string

	// Getenv reads environment overrides. Nil disables them.
	Getenv func(string) string

	// Plugins are registered before discovery, next to the built-ins.
	Plugins []driven.ProcessPlugin
}

// Container holds the wired services.
type Container struct {
	Settings domain.Settings

	SettingsService *services.SettingsService
	Registry        *services.PluginRegistry
	Sessions        *services.SessionService
	Processes       *services.ProcessService
	Ledger          *services.LedgerService
	Artifacts       *filesystem.Store

	closers []func() error
}

// New loads settings from the config directory and wires every service.
func New(ctx context.Context, opts Options) (*Container, error) {
	configStore, err := file.NewConfigStore(opts.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	settingsService := services.NewSettingsService(configStore, opts.Getenv)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, err
	}

	c, err := NewWithSettings(ctx, *settings, opts.Plugins...)
	if err != nil {
		return nil, err
	}
	c.SettingsService = settingsService
	return c, nil
}

// NewWithSettings wires every service from already loaded settings.
// Plugin discovery runs here, so a broken plugin fails startup.
func NewWithSettings(ctx context.Context, settings domain.Settings, plugins ...driven.ProcessPlugin) (*Container, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}

	c := &Container{Settings: settings}

	ledger, closeLedger, err := newLedger(settings)
	if err != nil {
		return nil, err
	}
	if closeLedger != nil {
		c.closers = append(c.closers, closeLedger)
	}

	c.Registry = services.NewPluginRegistry()
	for _, p := range plugins {
		if err := c.Registry.Register(p); err != nil {
			c.Close()
			return nil, fmt.Errorf("registering %s: %w", p.Name(), err)
		}
	}
	if err := c.Registry.Discover(ctx, processes.Sources(settings)...); err != nil {
		c.Close()
		return nil, err
	}

	paths := settings.Paths
	c.Artifacts = filesystem.NewStore(paths.Resolve(paths.Uploads), paths.Resolve(paths.Outputs))
	c.Sessions = services.NewSessionService(settings.Access)
	c.Processes = services.NewProcessService(
		c.Registry,
		c.Sessions,
		c.Artifacts,
		services.NewRunner(settings.Runner.Timeout),
		archive.NewPackager(),
		ledger,
	)
	c.Ledger = services.NewLedgerService(ledger, c.Sessions)

	logger.Debug("container ready: ledger=%s outputs=%s", settings.Ledger.Backend, paths.Resolve(paths.Outputs))
	return c, nil
}

// Close releases resources held by the adapters.
func (c *Container) Close() error {
	var result *multierror.Error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			result = multierror.Append(result, err)
		}
	}
	c.closers = nil
	return result.ErrorOrNil()
}

// newLedger opens the configured ledger backend.
func newLedger(settings domain.Settings) (driven.UsageLedger, func() error, error) {
	path := settings.Paths.Resolve(settings.Ledger.Path)

	switch settings.Ledger.Backend {
	case domain.LedgerBackendCSV:
		return csv.NewLedger(path), nil, nil

	case domain.LedgerBackendSQLite:
		store, err := sqlite.NewStore(sqlitePath(path))
		if err != nil {
			return nil, nil, fmt.Errorf("opening sqlite ledger: %w", err)
		}
		return store.Ledger(), store.Close, nil

	case domain.LedgerBackendMemory:
		return memory.NewLedger(), nil, nil

	default:
		return nil, nil, fmt.Errorf("%w: unknown ledger backend %q", domain.ErrInvalidInput, settings.Ledger.Backend)
	}
}

// sqlitePath maps a ledger path to a database file. The default CSV path
// becomes a .db file next to it; a path without extension is a directory.
func sqlitePath(path string) string {
	switch ext := filepath.Ext(path); {
	case strings.EqualFold(ext, ".csv"):
		return strings.TrimSuffix(path, ext) + ".db"
	case ext == "":
		return filepath.Join(path, sqlite.DefaultFileName)
	default:
		return path
	}
}
