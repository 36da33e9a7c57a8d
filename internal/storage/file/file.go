// Package file persists plugin settings in a single YAML document on disk.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/travel/internal/plugin"
)

// Store maps keys to settings documents inside one YAML file. Each value
// is kept as a nested YAML node so the file stays human-editable.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore returns a Store backed by path. The file and its parent
// directory are created on the first Save.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load returns the YAML encoding of the value under key, or
// plugin.ErrNotFound when the file or the key is absent.
func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	node, ok := doc[key]
	if !ok {
		return nil, plugin.ErrNotFound
	}
	out, err := yaml.Marshal(&node)
	if err != nil {
		return nil, fmt.Errorf("encoding %q from %s: %w", key, s.path, err)
	}
	return out, nil
}

// Save replaces the value under key. value must be a YAML document. The
// file is rewritten through a temporary file and rename.
func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	var node yaml.Node
	if err := yaml.Unmarshal(value, &node); err != nil {
		return fmt.Errorf("value for %q is not YAML: %w", key, err)
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
		node = *node.Content[0]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc[key] = node

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", s.path, err)
	}
	return s.write(data)
}

func (s *Store) read() (map[string]yaml.Node, error) {
	doc := make(map[string]yaml.Node)
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return doc, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", s.path, err)
	}
	if doc == nil {
		doc = make(map[string]yaml.Node)
	}
	return doc, nil
}

func (s *Store) write(data []byte) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file in %s: %w", dir, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("writing %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replacing %s: %w", s.path, err)
	}
	return nil
}
