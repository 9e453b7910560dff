package kvs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func flushWith(t *testing.T, s *Store, key string, value Value) {
	t.Helper()
	if err := s.SetValue(key, value); err != nil {
		t.Fatal(err)
	}
	if err := s.Flush(); err != nil {
		t.Fatal(err)
	}
}

func TestSnapshotRingCapsAtMax(t *testing.T) {
	dir := t.TempDir()
	s := testOpen(t, dir, Optional, Optional)

	// Flush well past the ring depth.
	for i := 0; i < MaxSnapshots+3; i++ {
		flushWith(t, s, "n", I32(int32(i)))
	}

	count, err := s.SnapshotCount()
	if err != nil {
		t.Fatal(err)
	}
	if count != MaxSnapshots {
		t.Fatalf("SnapshotCount = %d, wanted %d", count, MaxSnapshots)
	}
	if got := s.SnapshotMaxCount(); got != MaxSnapshots {
		t.Fatalf("SnapshotMaxCount = %d, wanted %d", got, MaxSnapshots)
	}

	// Nothing beyond generation MaxSnapshots may exist.
	beyond := filepath.Join(dir, fmt.Sprintf("kvs_1_%d.json", MaxSnapshots+1))
	if _, err := os.Stat(beyond); err == nil {
		t.Fatalf("generation %d exists, ring did not cap", MaxSnapshots+1)
	}
}

func TestSnapshotCountGrowsPerFlush(t *testing.T) {
	s := testOpen(t, t.TempDir(), Optional, Optional)

	// The first flush only creates generation 0, so after n flushes there
	// are n-1 snapshots, capped at the ring depth.
	for i := 0; i < MaxSnapshots+3; i++ {
		count, err := s.SnapshotCount()
		if err != nil {
			t.Fatal(err)
		}
		want := min(max(i-1, 0), MaxSnapshots)
		if count != want {
			t.Fatalf("SnapshotCount after %d flushes = %d, wanted %d", i, count, want)
		}
		flushWith(t, s, "n", I32(int32(i)))
	}
}

func TestSnapshotGenerationsShift(t *testing.T) {
	dir := t.TempDir()
	s := testOpen(t, dir, Optional, Optional)

	flushWith(t, s, "n", I32(1))
	flushWith(t, s, "n", I32(2))
	flushWith(t, s, "n", I32(3))

	// Oldest state sits highest: gen 2 holds the first flush, gen 0 the
	// latest.
	for gen, want := range map[int]int32{0: 3, 1: 2, 2: 1} {
		values, err := loadPair(OSFilesystem{}, filepath.Join(dir, fmt.Sprintf("kvs_1_%d", gen)), Required, testLogger())
		if err != nil {
			t.Fatalf("loading generation %d: %v", gen, err)
		}
		got, ok := values["n"].AsI32()
		if !ok || got != want {
			t.Fatalf("generation %d n = %v, wanted %d", gen, values["n"], want)
		}
	}
}

func TestSnapshotRestoreReplacesState(t *testing.T) {
	s := testOpen(t, t.TempDir(), Optional, Optional)

	flushWith(t, s, "a", I32(1))
	if err := s.SetValue("b", I32(2)); err != nil {
		t.Fatal(err)
	}
	flushWith(t, s, "c", I32(3))

	// Generation 1 predates b and c.
	if err := s.SnapshotRestore(1); err != nil {
		t.Fatal(err)
	}
	keys, err := s.GetAllKeys()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || keys[0] != "a" {
		t.Fatalf("keys after restore = %v, wanted [a]", keys)
	}
}

func TestSnapshotRestoreInvalidID(t *testing.T) {
	s := testOpen(t, t.TempDir(), Optional, Optional)
	flushWith(t, s, "a", I32(1))
	flushWith(t, s, "a", I32(2))

	for _, id := range []int{0, -1, 2, MaxSnapshots + 1} {
		if err := s.SnapshotRestore(id); !errors.Is(err, ErrInvalidSnapshotID) {
			t.Errorf("SnapshotRestore(%d) err = %v, wanted ErrInvalidSnapshotID", id, err)
		}
	}
	if err := s.SnapshotRestore(1); err != nil {
		t.Fatalf("SnapshotRestore(1) err = %v", err)
	}
}

func TestSnapshotFilenames(t *testing.T) {
	dir := t.TempDir()
	s := testOpen(t, dir, Optional, Optional)

	if _, err := s.KvsFilename(0); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("KvsFilename before flush err = %v, wanted ErrFileNotFound", err)
	}
	if _, err := s.HashFilename(0); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("HashFilename before flush err = %v, wanted ErrFileNotFound", err)
	}

	flushWith(t, s, "a", I32(1))

	kvsPath, err := s.KvsFilename(0)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "kvs_1_0.json"); kvsPath != want {
		t.Fatalf("KvsFilename = %q, wanted %q", kvsPath, want)
	}
	hashPath, err := s.HashFilename(0)
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "kvs_1_0.hash"); hashPath != want {
		t.Fatalf("HashFilename = %q, wanted %q", hashPath, want)
	}
	if _, err := s.KvsFilename(1); !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("KvsFilename(1) after one flush err = %v, wanted ErrFileNotFound", err)
	}
}
