package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/ogulcanaydogan/slotwatch/pkg/model"
)

// FileStore persists the observation as a single human-readable file. The
// encoding follows the file extension: .yaml/.yml, .toml, anything else JSON.
type FileStore struct {
	path  string
	codec codec
	mu    sync.Mutex
}

// NewFileStore creates a store that reads/writes the file at path.
func NewFileStore(path string) *FileStore {
	path = filepath.Clean(path)
	return &FileStore{
		path:  path,
		codec: codecFor(path),
	}
}

// Path returns the location of the state file.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load(_ context.Context) (*model.Observation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	contents, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	if len(bytes.TrimSpace(contents)) == 0 {
		return nil, fmt.Errorf("%w: %s is empty", ErrCorrupt, f.path)
	}

	var obs model.Observation
	if err := f.codec.unmarshal(contents, &obs); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrCorrupt, f.codec.name, err)
	}
	return &obs, nil
}

func (f *FileStore) Save(_ context.Context, obs model.Observation) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.codec.marshal(obs)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state directory: %w", err)
		}
	}

	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}

func (f *FileStore) Close() error { return nil }

type codec struct {
	name      string
	marshal   func(any) ([]byte, error)
	unmarshal func([]byte, any) error
}

func codecFor(path string) codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return codec{name: "yaml", marshal: yaml.Marshal, unmarshal: yaml.Unmarshal}
	case ".toml":
		return codec{name: "toml", marshal: toml.Marshal, unmarshal: toml.Unmarshal}
	default:
		return codec{
			name: "json",
			marshal: func(v any) ([]byte, error) {
				data, err := json.MarshalIndent(v, "", "  ")
				if err != nil {
					return nil, err
				}
				return append(data, '\n'), nil
			},
			unmarshal: json.Unmarshal,
		}
	}
}
