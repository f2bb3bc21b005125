package external

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// ManifestFile is the manifest name looked up in every plugin folder.
const ManifestFile = "manifest.toml"

// Placeholders substituted in manifest args.
const (
	InputPlaceholder  = "{input}"
	OutputPlaceholder = "{output}"
)

// errIncomplete marks a manifest lacking a required capability.
var errIncomplete = errors.New("incomplete manifest")

// Manifest describes an external plugin.
type Manifest struct {
	Name        string   `toml:"name"`
	Description string   `toml:"description"`
	Command     string   `toml:"command"`
	Args        []string `toml:"args"`
}

// loadManifest reads and parses the manifest in dir.
// Parse failures are returned as errors; a missing description or command
// yields errIncomplete.
func loadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Join(filepath.Base(dir), ManifestFile), err)
	}

	m.Name = strings.TrimSpace(m.Name)
	if m.Name == "" {
		m.Name = filepath.Base(dir)
	}
	if strings.TrimSpace(m.Description) == "" {
		return nil, fmt.Errorf("%w: %s has no description", errIncomplete, m.Name)
	}
	if strings.TrimSpace(m.Command) == "" {
		return nil, fmt.Errorf("%w: %s has no command", errIncomplete, m.Name)
	}
	return &m, nil
}

// expandArgs substitutes the input and output placeholders.
func (m *Manifest) expandArgs(inputPath, outputDir string) []string {
	r := strings.NewReplacer(InputPlaceholder, inputPath, OutputPlaceholder, outputDir)
	args := make([]string, len(m.Args))
	for i, a := range m.Args {
		args[i] = r.Replace(a)
	}
	return args
}

// resolveCommand prefers an executable shipped in the plugin folder over PATH.
// A local executable is returned as an absolute path so it does not get
// resolved a second time against the command's working directory.
func (m *Manifest) resolveCommand(dir string) string {
	if filepath.IsAbs(m.Command) {
		return m.Command
	}
	local := filepath.Join(dir, m.Command)
	if info, err := os.Stat(local); err == nil && info.Mode().IsRegular() {
		return absPath(local)
	}
	return m.Command
}
