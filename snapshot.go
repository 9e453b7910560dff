package kvs

import (
	"errors"
	"fmt"
	"io/fs"
)

// MaxSnapshots is the depth of the generation ring: generation 0 is the
// live store, generations 1..MaxSnapshots are progressively older copies.
const MaxSnapshots = 3

func (s *Store) kvsPath(gen int) string {
	return fmt.Sprintf("%s_%d.json", s.prefix, gen)
}

func (s *Store) hashPath(gen int) string {
	return fmt.Sprintf("%s_%d.hash", s.prefix, gen)
}

// snapshotRotate shifts every generation up by one, hash before data per
// pair, freeing generation 0 for the next write. A missing source file is
// tolerated (not every generation need exist yet); any other rename failure
// aborts immediately. Whatever sat at generation MaxSnapshots is renamed
// over and thereby discarded.
func (s *Store) snapshotRotate() error {
	if !s.mu.TryLock() {
		return ErrMutexLockFailed
	}
	defer s.mu.Unlock()
	for gen := MaxSnapshots; gen >= 1; gen-- {
		if err := s.rotateFile(s.hashPath(gen-1), s.hashPath(gen)); err != nil {
			return err
		}
		if err := s.rotateFile(s.kvsPath(gen-1), s.kvsPath(gen)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) rotateFile(oldPath, newPath string) error {
	err := s.fs.Rename(oldPath, newPath)
	if err == nil {
		s.logger.Debug("rotated", "from", oldPath, "to", newPath)
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	s.logger.Error("rotating snapshot failed", "from", oldPath, "to", newPath, "err", err)
	return ErrPhysicalStorageFailure
}

// SnapshotCount returns how many restorable snapshots exist, scanning
// generations 1..MaxSnapshots in order and stopping at the first gap.
func (s *Store) SnapshotCount() (int, error) {
	count := 0
	for gen := 1; gen <= MaxSnapshots; gen++ {
		ok, err := s.fs.Exists(s.kvsPath(gen))
		if err != nil {
			return 0, ErrPhysicalStorageFailure
		}
		if !ok {
			break
		}
		count = gen
	}
	return count, nil
}

// SnapshotMaxCount returns the fixed depth of the snapshot ring.
func (s *Store) SnapshotMaxCount() int {
	return MaxSnapshots
}

// SnapshotRestore replaces the entire written map with the contents of
// generation id. Generation 0 is the live store, not a restorable snapshot,
// so it is rejected, as is any id beyond the current SnapshotCount. The
// defaults map is untouched.
func (s *Store) SnapshotRestore(id int) error {
	if !s.mu.TryLock() {
		return ErrMutexLockFailed
	}
	defer s.mu.Unlock()

	if id <= 0 {
		return ErrInvalidSnapshotID
	}
	count, err := s.SnapshotCount()
	if err != nil {
		return err
	}
	if id > count {
		return ErrInvalidSnapshotID
	}

	restored, err := loadPair(s.fs, fmt.Sprintf("%s_%d", s.prefix, id), Required, s.logger)
	if err != nil {
		return err
	}
	s.kvs = restored
	s.logger.Info("restored snapshot", "snapshot", id, "keys", len(restored))
	return nil
}

// KvsFilename returns the data file path for generation id, failing with
// ErrFileNotFound if the file does not exist.
func (s *Store) KvsFilename(id int) (string, error) {
	return s.existingPath(s.kvsPath(id))
}

// HashFilename returns the hash file path for generation id, failing with
// ErrFileNotFound if the file does not exist.
func (s *Store) HashFilename(id int) (string, error) {
	return s.existingPath(s.hashPath(id))
}

func (s *Store) existingPath(path string) (string, error) {
	ok, err := s.fs.Exists(path)
	if err != nil {
		return "", fmt.Errorf("kvs: querying %s: %w", path, err)
	}
	if !ok {
		return "", ErrFileNotFound
	}
	return path, nil
}
