package jsonstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// FileBackend keeps one <name>.json file per collection under a directory.
// Files are replaced through a temp file and rename so readers never observe
// a half-written array. Multi-collection commits are applied file by file.
type FileBackend struct {
	dir string
}

// NewFileBackend ensures the directory exists and returns a backend rooted there.
func NewFileBackend(dir string) (*FileBackend, error) {
	if dir == "" {
		dir = "./data"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

// Load reads the collection file; a missing file yields nil.
func (b *FileBackend) Load(ctx context.Context, name string) ([]byte, error) {
	data, err := os.ReadFile(b.path(name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	return data, nil
}

// Commit writes each collection file in turn.
func (b *FileBackend) Commit(ctx context.Context, writes []Write) error {
	for _, w := range writes {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := b.writeFile(w.Name, w.Data); err != nil {
			return err
		}
	}
	return nil
}

func (b *FileBackend) writeFile(name string, data []byte) error {
	tmp, err := os.CreateTemp(b.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", name, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmpName, b.path(name)); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}

func (b *FileBackend) path(name string) string {
	return filepath.Join(b.dir, name+".json")
}
