package external

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/procdesk/internal/core/ports/driven"
	"github.com/custodia-labs/procdesk/internal/logger"
)

// SourceName identifies external plugins in listings.
const SourceName = "external"

// maxConcurrentLoads bounds parallel manifest reads.
const maxConcurrentLoads = 8

// Ensure Source implements the interface.
var _ driven.PluginSource = (*Source)(nil)

// Source discovers plugins from manifest folders below a directory.
type Source struct {
	dir    string
	logger *slog.Logger
}

// NewSource creates a source scanning dir.
func NewSource(dir string) *Source {
	return &Source{dir: dir, logger: logger.With("external")}
}

// Name returns the source name.
func (s *Source) Name() string {
	return SourceName
}

// Dir returns the scanned directory.
func (s *Source) Dir() string {
	return s.dir
}

// Discover loads every plugin folder. A missing plugins directory yields no
// plugins. Folders without a manifest and incomplete manifests are skipped;
// a manifest that cannot be parsed fails discovery.
func (s *Source) Discover(ctx context.Context) ([]driven.ProcessPlugin, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("plugins directory %s does not exist", s.dir)
			return nil, nil
		}
		return nil, fmt.Errorf("reading plugins directory: %w", err)
	}

	var dirs []string
	for _, entry := range entries {
		if entry.IsDir() {
			dirs = append(dirs, filepath.Join(s.dir, entry.Name()))
		}
	}

	loaded := make([]*Plugin, len(dirs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLoads)
	for i, dir := range dirs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			m, err := loadManifest(dir)
			switch {
			case errors.Is(err, os.ErrNotExist):
				logger.Debug("skipping %s: no %s", dir, ManifestFile)
				return nil
			case errors.Is(err, errIncomplete):
				logger.Debug("skipping %s: %v", dir, err)
				return nil
			case err != nil:
				return err
			}
			loaded[i] = &Plugin{manifest: *m, dir: dir, logger: s.logger}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Keep directory order for deterministic registration.
	plugins := make([]driven.ProcessPlugin, 0, len(loaded))
	for _, p := range loaded {
		if p != nil {
			plugins = append(plugins, p)
		}
	}
	return plugins, nil
}
