// Package store loads the contract portfolio from a file, a Postgres table
// or a remote JSON export. Every backend decodes on top of contracts.Defaults().
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/wonny/billflow/backend/internal/contracts"
)

// ErrUnsupportedFormat 확장자가 .json/.yaml/.yml 이 아닐 때
var ErrUnsupportedFormat = errors.New("unsupported contract file format")

// FileStore reads a JSON or YAML list of contracts from disk.
// A missing or empty file loads as an empty portfolio.
type FileStore struct {
	path string
}

// NewFileStore creates a file-backed store
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Name implements contracts.Store
func (s *FileStore) Name() string {
	return "file:" + s.path
}

// Load implements contracts.Store
func (s *FileStore) Load(ctx context.Context) (contracts.Portfolio, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return contracts.Portfolio{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	p, err := Decode(filepath.Ext(s.path), data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return p, nil
}

// Decode parses a contract list by file extension and validates unique ids
func Decode(ext string, data []byte) (contracts.Portfolio, error) {
	p := contracts.Portfolio{}
	if len(bytes.TrimSpace(data)) == 0 {
		return p, nil
	}

	switch strings.ToLower(ext) {
	case ".json":
		if err := json.Unmarshal(data, &p); err != nil {
			return nil, err
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	if p == nil {
		p = contracts.Portfolio{}
	}
	if err := p.ValidateUnique(); err != nil {
		return nil, err
	}
	return p, nil
}
