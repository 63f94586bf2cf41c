package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const fileExt = ".json"

// File stores each key as <dir>/<key>.json. Writes go to a temp file that
// is renamed into place, so a reader never sees a torn value.
type File struct {
	dir string
}

// NewFile creates the directory if needed and returns a file gateway.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || key != filepath.Clean(key) || key == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(f.dir, key+fileExt), nil
}

func (f *File) Write(_ context.Context, entries map[string][]byte) error {
	defer observe(BackendFile, "write", time.Now())
	for k, v := range entries {
		p, err := f.path(k)
		if err != nil {
			return err
		}
		if err := writeAtomic(p, v); err != nil {
			return backendErr(BackendFile, "write", err)
		}
	}
	return nil
}

func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	name := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(name)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(name)
		return err
	}
	return os.Rename(name, path)
}

func (f *File) Read(_ context.Context, keys []string) (map[string][]byte, error) {
	defer observe(BackendFile, "read", time.Now())
	out := make(map[string][]byte, len(keys))
	for _, k := range keys {
		p, err := f.path(k)
		if err != nil {
			return nil, err
		}
		b, err := os.ReadFile(p)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, backendErr(BackendFile, "read", err)
		}
		out[k] = b
	}
	return out, nil
}

func (f *File) Delete(_ context.Context, keys []string) error {
	defer observe(BackendFile, "delete", time.Now())
	for _, k := range keys {
		p, err := f.path(k)
		if err != nil {
			return err
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return backendErr(BackendFile, "delete", err)
		}
	}
	return nil
}
