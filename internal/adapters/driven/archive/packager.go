package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-multierror"

	"github.com/custodia-labs/procdesk/internal/core/domain"
	"github.com/custodia-labs/procdesk/internal/core/ports/driven"
)

// Ensure Packager implements the interface.
var _ driven.ResultPackager = (*Packager)(nil)

// Packager builds in-memory zip archives from a process output tree.
type Packager struct{}

// NewPackager creates a new packager.
func NewPackager() *Packager {
	return &Packager{}
}

// Package zips the deliverables found under outputDir.
// Missing deliverables yield a valid empty archive. Deliverables that exist
// but cannot be read are skipped and reported in Archive.Warnings.
func (p *Packager) Package(ctx context.Context, outputDir, process string) (*domain.Archive, error) {
	deliverables := filepath.Join(outputDir, domain.DeliverablesDir)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	archive := &domain.Archive{Name: domain.ArchiveName(process)}
	var warnings *multierror.Error

	add := func(path, entry string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			warnings = multierror.Append(warnings, fmt.Errorf("%s: %w", entry, err))
			return nil
		}
		defer f.Close()

		// Read fully first so a failed read leaves no partial entry behind.
		data, err := io.ReadAll(f)
		if err != nil {
			warnings = multierror.Append(warnings, fmt.Errorf("%s: %w", entry, err))
			return nil
		}

		w, err := zw.CreateHeader(&zip.FileHeader{Name: entry, Method: zip.Deflate})
		if err != nil {
			return fmt.Errorf("adding %s: %w", entry, err)
		}
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("writing %s: %w", entry, err)
		}
		archive.Entries = append(archive.Entries, entry)
		return nil
	}

	tabular := filepath.Join(deliverables, domain.TabularFile)
	if isRegular(tabular) {
		if err := add(tabular, domain.TabularFile); err != nil {
			return nil, err
		}
	}

	docs, err := documents(filepath.Join(deliverables, domain.DocumentsDir))
	if err != nil {
		warnings = multierror.Append(warnings, err)
	}
	for _, name := range docs {
		path := filepath.Join(deliverables, domain.DocumentsDir, name)
		if err := add(path, domain.ArchivePrefix+name); err != nil {
			return nil, err
		}
	}

	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("finalizing archive: %w", err)
	}

	archive.Data = buf.Bytes()
	archive.Warnings = warnings.ErrorOrNil()
	return archive, nil
}

// documents lists regular files matching DocumentPattern directly inside dir,
// sorted by name. A missing dir yields no documents.
func documents(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing %s: %w", domain.DocumentsDir, err)
	}

	var names []string
	for _, entry := range entries {
		ok, _ := filepath.Match(domain.DocumentPattern, entry.Name())
		if ok && isRegular(filepath.Join(dir, entry.Name())) {
			names = append(names, entry.Name())
		}
	}
	return names, nil
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
