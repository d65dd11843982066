// Package filestore keeps one JSON document on disk with write-then-rename
// replacement, so readers only ever see a complete previous or new version.
package filestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// File is a single JSON document on disk. It is not safe for concurrent
// writers; one process is expected to own the file.
type File struct {
	path   string
	perm   os.FileMode
	rename  func(oldpath, newpath string) error
	syncDir func(dir string) error
}

func New(path string, perm os.FileMode) *File {
	return &File{
		path:   path,
		perm:   perm,
		rename:  os.Rename,
		syncDir: syncDir,
	}
}

// Path returns the location of the document
func (f *File) Path() string {
	return f.path
}

// Read decodes the document into v. It reports false when the file does not exist.
func (f *File) Read(v interface{}) (bool, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	if len(data) == 0 {
		return false, nil
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", f.path, err)
	}
	return true, nil
}

// Write encodes v into a temporary file next to the document, syncs it,
// renames it over the document and syncs the directory so the rename itself
// survives a power loss.
func (f *File) Write(v interface{}) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, f.perm); err != nil {
		os.Remove(tmpPath)
		return err
	}

	if err := f.rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := f.syncDir(dir); err != nil {
		return fmt.Errorf("sync %s: %w", dir, err)
	}
	return nil
}

func syncDir(dir string) error {
	d, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Sync()
}
