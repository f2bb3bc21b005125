package filesystem

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.ArtifactStore = (*Store)(nil)

// Store is a filesystem implementation of driven.ArtifactStore.
type Store struct {
	uploads string
	outputs string
}

// NewStore creates an artifact store staging uploads under uploadsDir and
// writing process outputs under outputsDir.
func NewStore(uploadsDir, outputsDir string) *Store {
	return &Store{uploads: uploadsDir, outputs: outputsDir}
}

// UploadsDir returns the staging root.
func (s *Store) UploadsDir() string {
	return s.uploads
}

// Stage writes content to <uploads>/<base(filename)> and returns the path.
func (s *Store) Stage(ctx context.Context, filename string, content io.Reader) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	name, err := baseName(filename)
	if err != nil {
		return "", err
	}
	if content == nil {
		return "", fmt.Errorf("%w: no content for %q", domain.ErrInvalidInput, filename)
	}

	if err := os.MkdirAll(s.uploads, 0755); err != nil {
		return "", fmt.Errorf("creating uploads directory: %w", err)
	}

	// content may be the staged file itself, so the old copy stays
	// readable until the new one replaces it.
	f, err := os.CreateTemp(s.uploads, "."+name+".*")
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", name, err)
	}
	tmp := f.Name()

	if _, err := io.Copy(f, content); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Chmod(tmp, 0644); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("writing %s: %w", name, err)
	}

	path := filepath.Join(s.uploads, name)
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("writing %s: %w", name, err)
	}
	return path, nil
}

// EnsureOutputDir creates <outputs>/<process> if missing.
func (s *Store) EnsureOutputDir(ctx context.Context, process string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := validateProcessName(process); err != nil {
		return "", err
	}

	dir := s.OutputDir(process)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	return dir, nil
}

// OutputDir returns <outputs>/<process>.
func (s *Store) OutputDir(process string) string {
	return filepath.Join(s.outputs, process)
}

// baseName strips any directory part from an uploaded filename.
// Both separators are stripped since browsers on Windows send full paths.
func baseName(filename string) (string, error) {
	name := filename
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "", fmt.Errorf("%w: invalid filename %q", domain.ErrInvalidInput, filename)
	}
	return name, nil
}

func validateProcessName(process string) error {
	if process == "" || process == "." || process == ".." || strings.ContainsAny(process, `/\`) {
		return fmt.Errorf("%w: invalid process name %q", domain.ErrInvalidInput, process)
	}
	return nil
}
