// Package results saves result archives handed back by an invocation.
package results

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/procdesk/internal/core/domain"
)

// Save writes archive to dir under its own name. See SaveAs.
func Save(dir string, archive *domain.Archive) (string, error) {
	if archive == nil {
		return "", errors.New("no archive to save")
	}
	return SaveAs(dir, archive.Name, archive)
}

// SaveAs writes archive to dir/name, creating dir if needed, and returns
// the absolute path. An empty dir means the working directory. An existing
// file with the same name is replaced.
func SaveAs(dir, name string, archive *domain.Archive) (string, error) {
	if archive == nil {
		return "", errors.New("no archive to save")
	}
	if name == "" || name != filepath.Base(name) {
		return "", fmt.Errorf("%w: archive name %q", domain.ErrInvalidInput, name)
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, archive.Data, 0644); err != nil {
		return "", fmt.Errorf("saving archive: %w", err)
	}
	if abs, err := filepath.Abs(path); err == nil {
		path = abs
	}
	return path, nil
}
