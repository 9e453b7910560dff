// Package kvsbolt stores a whole kvs generation ring inside a single bbolt
// database file.
//
// FS implements kvs.Filesystem: every path the engine would put on disk
// becomes a key in one bucket, so the data files, hash files and all
// snapshot generations travel together in one file. Records are
// msgpack-encoded to carry the payload plus a little metadata.
package kvsbolt

import (
	"fmt"
	"io/fs"
	"time"

	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
)

var filesBucket = []byte("files")

type fileRecord struct {
	Data    []byte `msgpack:"d"`
	ModTime int64  `msgpack:"m"`
}

// FS is a kvs.Filesystem over a bbolt database. Safe for concurrent use.
type FS struct {
	db *bbolt.DB
}

// Open creates or opens the database at path.
func Open(path string) (*FS, error) {
	db, err := bbolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("kvsbolt: %w", err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(filesBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kvsbolt: %w", err)
	}
	return &FS{db: db}, nil
}

func (f *FS) Close() error {
	return f.db.Close()
}

func (f *FS) Exists(path string) (bool, error) {
	var found bool
	err := f.db.View(func(tx *bbolt.Tx) error {
		found = tx.Bucket(filesBucket).Get([]byte(path)) != nil
		return nil
	})
	return found, err
}

// MkdirAll is a no-op: bolt keys have no directory structure.
func (f *FS) MkdirAll(path string) error {
	return nil
}

func (f *FS) ReadFile(path string) ([]byte, error) {
	var data []byte
	err := f.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(filesBucket).Get([]byte(path))
		if raw == nil {
			return &fs.PathError{Op: "read", Path: path, Err: fs.ErrNotExist}
		}
		var rec fileRecord
		if err := msgpack.Unmarshal(raw, &rec); err != nil {
			return fmt.Errorf("kvsbolt: decoding %s: %w", path, err)
		}
		data = rec.Data
		return nil
	})
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (f *FS) WriteFile(path string, data []byte) error {
	raw, err := msgpack.Marshal(&fileRecord{Data: data, ModTime: time.Now().Unix()})
	if err != nil {
		return fmt.Errorf("kvsbolt: encoding %s: %w", path, err)
	}
	return f.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(filesBucket).Put([]byte(path), raw)
	})
}

// Rename moves a record as copy+delete within one transaction. A missing
// source reports fs.ErrNotExist, which rotation treats as benign.
func (f *FS) Rename(oldPath, newPath string) error {
	return f.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(filesBucket)
		src := b.Get([]byte(oldPath))
		if src == nil {
			return &fs.PathError{Op: "rename", Path: oldPath, Err: fs.ErrNotExist}
		}
		if err := b.Put([]byte(newPath), src); err != nil {
			return err
		}
		return b.Delete([]byte(oldPath))
	})
}
