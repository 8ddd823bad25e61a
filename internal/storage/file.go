package storage

import (
	"context"
	"net/url"
	"os"
	"path/filepath"

	"gitlab.com/tozd/go/errors"
)

// File stores each key as a file in a directory. Writes go to a temp file
// that is renamed over the target, so a reader never sees a partial value.
type File struct {
	dir string
}

// NewFile creates the directory if needed.
func NewFile(dir string) (*File, error) {
	if dir == "" {
		return nil, errors.New("file storage needs a directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Errorf("creating storage directory: %w", err)
	}
	return &File{dir: dir}, nil
}

func (f *File) path(key string) string {
	return filepath.Join(f.dir, url.PathEscape(key)+".json")
}

// Get implements Storage.
func (f *File) Get(ctx context.Context, key string) (string, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Errorf("reading %s: %w", key, err)
	}
	return string(data), true, nil
}

// Set implements Storage.
func (f *File) Set(ctx context.Context, key, value string) error {
	tmp, err := os.CreateTemp(f.dir, ".tmp-*")
	if err != nil {
		return errors.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(value); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Errorf("writing %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Errorf("closing %s: %w", key, err)
	}
	if err := os.Rename(tmpName, f.path(key)); err != nil {
		os.Remove(tmpName)
		return errors.Errorf("replacing %s: %w", key, err)
	}
	return nil
}

// Remove implements Storage.
func (f *File) Remove(ctx context.Context, key string) error {
	err := os.Remove(f.path(key))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Errorf("removing %s: %w", key, err)
	}
	return nil
}

// Close implements Storage.
func (f *File) Close() error { return nil }
