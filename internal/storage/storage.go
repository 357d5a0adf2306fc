// Package storage owns the on-disk representation of models. Writes go
// through a temp file plus atomic rename, so a crash or failure mid-save
// can never leave a torn model file behind.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/haskel/2b2q/internal/nn"
)

var (
	ErrAlreadyExists = errors.New("model file already exists")
	ErrNotFound      = errors.New("model file not found")
	ErrCorrupt       = errors.New("model file is corrupt")
)

// Model is a network bound to its storage path. The path is fixed at
// create/load time; Save always rewrites the same file.
type Model struct {
	Net  *nn.Network
	Path string
}

// FileName derives the directory-mode filename from a topology: layer
// widths joined with dashes plus the .json extension, e.g. 10-6-2-4-1.json.
// Deterministic so repeated `new --dir` calls target the same file.
func FileName(topology []int) string {
	parts := make([]string, len(topology))
	for i, w := range topology {
		parts[i] = strconv.Itoa(w)
	}
	return strings.Join(parts, "-") + ".json"
}

// DerivedPath resolves directory-mode targeting: the model file for the
// given topology inside dir.
func DerivedPath(dir string, topology []int) string {
	return filepath.Join(dir, FileName(topology))
}

// Create initializes a fresh model at path and persists it. An existing
// file fails with ErrAlreadyExists unless force is set, in which case it
// is overwritten. Parent directories are created as needed.
func Create(topology []int, path string, force bool) (*Model, error) {
	if _, err := os.Stat(path); err == nil {
		if !force {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyExists, path)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create model directory: %w", err)
		}
	}

	net, err := nn.New(topology)
	if err != nil {
		return nil, err
	}

	m := &Model{Net: net, Path: path}
	if err := m.Save(); err != nil {
		return nil, err
	}
	return m, nil
}

// Load reads a model from path. A missing file is ErrNotFound; a file that
// cannot be decoded into a consistent network is ErrCorrupt.
func Load(path string) (*Model, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("failed to open model file: %w", err)
	}
	defer f.Close()

	net, err := nn.LoadNetwork(f)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	return &Model{Net: net, Path: path}, nil
}

// Save persists the model to its path, atomically.
func (m *Model) Save() error {
	return writeAtomic(m.Path, m.Net.Save)
}

// writeAtomic writes via a temp file in the target's directory and renames
// it over the target, so the previous file stays intact until the new one
// is fully on disk. The temp file is removed on any failure.
func writeAtomic(path string, write func(io.Writer) error) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write model: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
