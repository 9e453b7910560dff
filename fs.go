package kvs

import (
	"errors"
	"io/fs"
	"os"
)

// Filesystem is the narrow interface the store uses to touch its backing
// medium. The default is the host filesystem; package kvsbolt provides a
// single-file medium backed by bbolt, and tests substitute fakes.
//
// Rename must report a missing source as an error matching fs.ErrNotExist
// (via errors.Is), since snapshot rotation tolerates exactly that case and
// nothing else.
type Filesystem interface {
	Exists(path string) (bool, error)
	MkdirAll(path string) error
	Rename(oldPath, newPath string) error
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, data []byte) error
}

// OSFilesystem implements Filesystem over package os.
type OSFilesystem struct{}

func (OSFilesystem) Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (OSFilesystem) MkdirAll(path string) error {
	return os.MkdirAll(path, 0o755)
}

func (OSFilesystem) Rename(oldPath, newPath string) error {
	return os.Rename(oldPath, newPath)
}

func (OSFilesystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

func (OSFilesystem) WriteFile(path string, data []byte) error {
	return os.WriteFile(path, data, 0o644)
}
