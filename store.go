package kvs

import (
	"log/slog"
	"path/filepath"
	"sync"
	"sync/atomic"

	"github.com/andreyvit/kvs/kvjson"
)

// Need is the load policy for a persisted file pair.
type Need int

const (
	// Optional loads the pair if present and starts empty otherwise.
	Optional Need = iota
	// Required fails the open if the pair cannot be loaded.
	Required
)

// Options configure Open. The zero value loads both pairs optionally from
// the current directory using the host filesystem.
type Options struct {
	NeedDefaults Need
	NeedKVS      Need
	Dir          string
	FS           Filesystem
	Logger       *slog.Logger
}

// Store is an in-memory key-value store persisted as a checksummed JSON
// generation ring. It is a single-owner resource: use it through the one
// *Store returned by Open and finish with Close.
//
// Every operation on the written-keys map acquires the guard without
// blocking and returns ErrMutexLockFailed on contention. The defaults map
// is immutable after open and read without locking.
type Store struct {
	fs     Filesystem
	logger *slog.Logger
	prefix string // <dir>/kvs_<instance>, generation files add _<g>.json/.hash

	mu  sync.Mutex
	kvs map[string]Value

	defaults    map[string]Value
	flushOnExit atomic.Bool
}

// Open loads the defaults pair and the current (generation 0) pair for the
// given instance and returns a ready Store with flush-on-exit enabled.
// Either load failing fails the open with that load's error.
func Open(instanceID string, opt Options) (*Store, error) {
	if opt.FS == nil {
		opt.FS = OSFilesystem{}
	}
	if opt.Logger == nil {
		opt.Logger = slog.Default()
	}
	logger := opt.Logger.With("kvs", instanceID)

	prefix := filepath.Join(opt.Dir, "kvs_"+instanceID)

	defaults, err := loadPair(opt.FS, prefix+"_default", opt.NeedDefaults, logger)
	if err != nil {
		return nil, err
	}
	kvs, err := loadPair(opt.FS, prefix+"_0", opt.NeedKVS, logger)
	if err != nil {
		return nil, err
	}

	logger.Info("opened", "keys", len(kvs), "defaults", len(defaults), "max_snapshots", MaxSnapshots)

	s := &Store{
		fs:       opt.FS,
		logger:   logger,
		prefix:   prefix,
		kvs:      kvs,
		defaults: defaults,
	}
	s.flushOnExit.Store(true)
	return s, nil
}

// loadPair reads <prefix>.json guarded by <prefix>.hash and decodes it into
// a map. A missing data file is an empty map when need is Optional (the
// hash and parse steps are skipped entirely) and ErrKvsFileRead otherwise.
func loadPair(fsys Filesystem, prefix string, need Need, logger *slog.Logger) (map[string]Value, error) {
	dataPath := prefix + ".json"
	hashPath := prefix + ".hash"

	data, err := fsys.ReadFile(dataPath)
	if err != nil {
		if need == Required {
			logger.Error("store file unreadable", "file", dataPath, "err", err)
			return nil, ErrKvsFileRead
		}
		logger.Info("store file missing, starting empty", "file", dataPath)
		return map[string]Value{}, nil
	}

	hash, err := fsys.ReadFile(hashPath)
	if err != nil {
		logger.Error("hash file unreadable", "file", hashPath, "err", err)
		return nil, ErrKvsHashFileRead
	}
	if !VerifyChecksum(data, hash) {
		logger.Error("store data corrupted", "file", dataPath, "hash_file", hashPath)
		return nil, ErrValidationFailed
	}

	doc, err := kvjson.Parse(data)
	if err != nil {
		logger.Error("store file unparsable", "file", dataPath, "err", err)
		return nil, ErrJSONParser
	}
	root, ok := doc.Object()
	if !ok {
		logger.Error("store file root is not an object", "file", dataPath)
		return nil, ErrJSONParser
	}

	result := make(map[string]Value, len(root))
	for key, member := range root {
		value, err := DecodeValue(member)
		if err != nil {
			logger.Error("store member undecodable", "file", dataPath, "key", key)
			return nil, err
		}
		result[key] = value
	}
	return result, nil
}

// SetFlushOnExit controls whether Close flushes.
func (s *Store) SetFlushOnExit(flush bool) {
	s.flushOnExit.Store(flush)
}

// Close flushes the store iff flush-on-exit is still set, clearing the flag
// first so a second Close is a no-op. It never double-writes generation 0.
func (s *Store) Close() error {
	if s.flushOnExit.Swap(false) {
		return s.Flush()
	}
	return nil
}

// GetAllKeys returns the written keys in arbitrary order. Defaults never
// count.
func (s *Store) GetAllKeys() ([]string, error) {
	if !s.mu.TryLock() {
		return nil, ErrMutexLockFailed
	}
	defer s.mu.Unlock()
	keys := make([]string, 0, len(s.kvs))
	for key := range s.kvs {
		keys = append(keys, key)
	}
	return keys, nil
}

// KeyExists reports whether key has a written entry. Defaults never count.
func (s *Store) KeyExists(key string) (bool, error) {
	if !s.mu.TryLock() {
		return false, ErrMutexLockFailed
	}
	defer s.mu.Unlock()
	_, ok := s.kvs[key]
	return ok, nil
}

// GetValue returns the written value for key, falling back to its default.
func (s *Store) GetValue(key string) (Value, error) {
	if !s.mu.TryLock() {
		return Value{}, ErrMutexLockFailed
	}
	defer s.mu.Unlock()
	if value, ok := s.kvs[key]; ok {
		return value.Clone(), nil
	}
	if value, ok := s.defaults[key]; ok {
		return value.Clone(), nil
	}
	return Value{}, ErrKeyNotFound
}

// GetDefaultValue returns the default for key. Lock-free: the defaults map
// never changes after open.
func (s *Store) GetDefaultValue(key string) (Value, error) {
	if value, ok := s.defaults[key]; ok {
		return value.Clone(), nil
	}
	return Value{}, ErrKeyNotFound
}

// HasDefaultValue reports whether key has a default. Lock-free.
func (s *Store) HasDefaultValue(key string) (bool, error) {
	_, ok := s.defaults[key]
	return ok, nil
}

// IsValueDefault reports whether key currently resolves to its default:
// true when it has a default and no written entry, false when written, and
// ErrKeyNotFound when it has neither.
func (s *Store) IsValueDefault(key string) (bool, error) {
	if !s.mu.TryLock() {
		return false, ErrMutexLockFailed
	}
	defer s.mu.Unlock()
	if _, ok := s.kvs[key]; ok {
		return false, nil
	}
	if _, ok := s.defaults[key]; ok {
		return true, nil
	}
	return false, ErrKeyNotFound
}

// SetValue inserts or overwrites the written entry for key.
func (s *Store) SetValue(key string, value Value) error {
	if !s.mu.TryLock() {
		return ErrMutexLockFailed
	}
	defer s.mu.Unlock()
	s.kvs[key] = value.Clone()
	return nil
}

// RemoveKey deletes the written entry for key, failing if it is absent.
func (s *Store) RemoveKey(key string) error {
	if !s.mu.TryLock() {
		return ErrMutexLockFailed
	}
	defer s.mu.Unlock()
	if _, ok := s.kvs[key]; !ok {
		return ErrKeyNotFound
	}
	delete(s.kvs, key)
	return nil
}

// ResetKey makes key resolve to its default again by erasing any written
// entry. Fails with ErrKeyDefaultNotFound if key has no default, whether or
// not it was written; erasing an absent entry is a no-op success.
func (s *Store) ResetKey(key string) error {
	if !s.mu.TryLock() {
		return ErrMutexLockFailed
	}
	defer s.mu.Unlock()
	if _, ok := s.defaults[key]; !ok {
		return ErrKeyDefaultNotFound
	}
	delete(s.kvs, key)
	return nil
}

// Reset clears the entire written map. Defaults are untouched.
func (s *Store) Reset() error {
	if !s.mu.TryLock() {
		return ErrMutexLockFailed
	}
	defer s.mu.Unlock()
	clear(s.kvs)
	return nil
}

// Flush persists the written map as a new generation 0, rotating older
// generations up first. Encode failures abort before anything touches disk.
func (s *Store) Flush() error {
	if !s.mu.TryLock() {
		return ErrMutexLockFailed
	}
	root := make(map[string]kvjson.Doc, len(s.kvs))
	for key, value := range s.kvs {
		member, err := EncodeValue(value)
		if err != nil {
			s.mu.Unlock()
			return err
		}
		root[key] = member
	}
	s.mu.Unlock()

	data, err := kvjson.Serialize(kvjson.NewObject(root))
	if err != nil {
		s.logger.Error("serializing store failed", "err", err)
		return ErrJSONGenerator
	}

	if err := s.snapshotRotate(); err != nil {
		return err
	}

	dir := filepath.Dir(s.prefix)
	if err := s.fs.MkdirAll(dir); err != nil {
		s.logger.Error("creating store directory failed", "dir", dir, "err", err)
		return ErrPhysicalStorageFailure
	}
	if err := s.fs.WriteFile(s.kvsPath(0), data); err != nil {
		s.logger.Error("writing store file failed", "file", s.kvsPath(0), "err", err)
		return ErrPhysicalStorageFailure
	}
	hash := HashBytes(ChecksumAdler32(data))
	if err := s.fs.WriteFile(s.hashPath(0), hash[:]); err != nil {
		s.logger.Error("writing hash file failed", "file", s.hashPath(0), "err", err)
		return ErrPhysicalStorageFailure
	}
	s.logger.Debug("flushed", "bytes", len(data), "keys", len(root))
	return nil
}
