package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driven"
	"github.com/custodia-labs/procdesk/internal/logger"
)

// sourceExplicit labels plugins registered directly rather than discovered.
const sourceExplicit = "builtin"

type registeredPlugin struct {
	plugin driven.ProcessPlugin
	source string
}

// PluginRegistry maps process names to plugins.
// Plugins are registered explicitly or through Discover, which runs once
// and freezes the registry. After that the mapping is immutable.
type PluginRegistry struct {
	mu      sync.RWMutex
	plugins map[string]registeredPlugin
	frozen  bool
}

// NewPluginRegistry creates an empty, unfrozen registry.
func NewPluginRegistry() *PluginRegistry {
	return &PluginRegistry{
		plugins: make(map[string]registeredPlugin),
	}
}

// Register adds a plugin under its own name.
func (r *PluginRegistry) Register(p driven.ProcessPlugin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.register(p, sourceExplicit)
}

// register adds a plugin (caller must hold lock).
func (r *PluginRegistry) register(p driven.ProcessPlugin, source string) error {
	if r.frozen {
		return domain.ErrRegistryFrozen
	}
	if p == nil {
		return fmt.Errorf("%w: nil plugin", domain.ErrInvalidInput)
	}
	name := p.Name()
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: plugin from %s has no name", domain.ErrInvalidInput, source)
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("%w: plugin name %q is not a valid folder name", domain.ErrInvalidInput, name)
	}
	if existing, ok := r.plugins[name]; ok {
		return fmt.Errorf("%w: process %q (from %s, already registered from %s)",
			domain.ErrAlreadyExists, name, source, existing.source)
	}
	r.plugins[name] = registeredPlugin{plugin: p, source: source}
	return nil
}

// Discover registers every candidate of every source, then freezes the registry.
// It may run only once. A source error aborts discovery and leaves the
// registry frozen with whatever was registered before, so a partial registry
// is never silently used: callers must treat the error as fatal.
func (r *PluginRegistry) Discover(ctx context.Context, sources ...driven.PluginSource) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return domain.ErrRegistryFrozen
	}
	defer func() { r.frozen = true }()

	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			return err
		}
		candidates, err := src.Discover(ctx)
		if err != nil {
			return fmt.Errorf("discovering processes from %s: %w", src.Name(), err)
		}
		for _, p := range candidates {
			if err := r.register(p, src.Name()); err != nil {
				return fmt.Errorf("registering process from %s: %w", src.Name(), err)
			}
			logger.Debug("registered process %s from %s", p.Name(), src.Name())
		}
	}

	logger.Info("process registry ready with %d processes", len(r.plugins))
	return nil
}

// Freeze stops further registration without discovering anything.
func (r *PluginRegistry) Freeze() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frozen = true
}

// Frozen returns true once discovery has run or Freeze was called.
func (r *PluginRegistry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// Get returns the plugin registered under name.
func (r *PluginRegistry) Get(name string) (driven.ProcessPlugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	entry, ok := r.plugins[name]
	if !ok {
		return nil, fmt.Errorf("process %q: %w", name, domain.ErrNotFound)
	}
	return entry.plugin, nil
}

// Has returns true if a plugin with the given name is registered.
func (r *PluginRegistry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.plugins[name]
	return ok
}

// Names returns all registered process names, sorted.
func (r *PluginRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// List returns info for every registered process, sorted by name.
func (r *PluginRegistry) List() []domain.ProcessInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	infos := make([]domain.ProcessInfo, 0, len(r.plugins))
	for name, entry := range r.plugins {
		infos = append(infos, domain.ProcessInfo{
			Name:        name,
			Description: entry.plugin.Describe(),
			Source:      entry.source,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Name < infos[j].Name
	})
	return infos
}
