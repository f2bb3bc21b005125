package file

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"

	"github.com/custodia-labs/procdesk/internal/core/ports/driven"
)

var _ driven.ConfigStore = (*ConfigStore)(nil)

// ConfigFileName is the settings file inside the config directory.
const ConfigFileName = "config.toml"

// ConfigStore keeps settings in a TOML file. Dotted keys map to tables,
// so "ledger.backend" is written as:
//
//	[ledger]
//	backend = "sqlite"
type ConfigStore struct {
	mu     sync.RWMutex
	path   string
	values map[string]any
}

// NewConfigStore opens config.toml in configDir, or in ~/.procdesk when
// configDir is empty. A missing file yields an empty store.
func NewConfigStore(configDir string) (*ConfigStore, error) {
	if configDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		configDir = filepath.Join(home, ".procdesk")
	}

	// The file may hold the access secret.
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return nil, err
	}

	s := &ConfigStore{
		path:   filepath.Join(configDir, ConfigFileName),
		values: make(map[string]any),
	}
	if err := s.reload(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ConfigStore) Lookup(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok
}

func (s *ConfigStore) String(key string) (string, bool) {
	v, _ := s.Lookup(key)
	str, ok := v.(string)
	return str, ok
}

func (s *ConfigStore) Int(key string) (int64, bool) {
	v, _ := s.Lookup(key)
	switch n := v.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) {
			return int64(n), true
		}
	}
	return 0, false
}

func (s *ConfigStore) Float(key string) (float64, bool) {
	v, _ := s.Lookup(key)
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// Keys lists every stored key, sorted.
func (s *ConfigStore) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *ConfigStore) Set(key string, value any) error {
	if key == "" || strings.HasPrefix(key, ".") || strings.HasSuffix(key, ".") {
		return fmt.Errorf("invalid config key %q", key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// A key cannot be both a value and a table.
	for existing := range s.values {
		if strings.HasPrefix(existing, key+".") || strings.HasPrefix(key, existing+".") {
			return fmt.Errorf("config key %q conflicts with %q", key, existing)
		}
	}
	s.values[key] = value
	return s.write()
}

// Unset removes key and rewrites the file.
func (s *ConfigStore) Unset(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return s.write()
}

func (s *ConfigStore) Path() string {
	return s.path
}

// write must be called with mu held.
func (s *ConfigStore) write() error {
	raw, err := toml.Marshal(nestKeys(s.values))
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, raw, 0600)
}

func (s *ConfigStore) reload() error {
	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	var tree map[string]any
	if err := toml.Unmarshal(raw, &tree); err != nil {
		return fmt.Errorf("parsing %s: %w", s.path, err)
	}

	s.mu.Lock()
	s.values = flattenKeys(tree, "")
	s.mu.Unlock()
	return nil
}

// flattenKeys turns {"a": {"b": 1}} into {"a.b": 1}.
func flattenKeys(tree map[string]any, prefix string) map[string]any {
	out := make(map[string]any)
	for k, v := range tree {
		if prefix != "" {
			k = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			for sk, sv := range flattenKeys(sub, k) {
				out[sk] = sv
			}
			continue
		}
		out[k] = v
	}
	return out
}

// nestKeys is the inverse of flattenKeys.
func nestKeys(flat map[string]any) map[string]any {
	root := make(map[string]any)
	for key, v := range flat {
		parts := strings.Split(key, ".")
		node := root
		for _, p := range parts[:len(parts)-1] {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = make(map[string]any)
				node[p] = child
			}
			node = child
		}
		node[parts[len(parts)-1]] = v
	}
	return root
}
