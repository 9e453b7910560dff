/*
Package kvs implements an embedded, crash-tolerant key-value store for a
single process.

Values are held in memory and mutated through a typed API; Flush writes them
to a versioned on-disk JSON representation guarded by an Adler-32 checksum.
Older generations are kept as a fixed-depth snapshot ring and can be restored
at any time.

We implement:

1. A closed tagged value model ([Value]) covering signed/unsigned 32/64-bit
integers, 64-bit floats, booleans, strings, null, arrays and objects, with
deep-copy semantics throughout (no aliasing of children).

2. A durable write path: every flush rotates the generation ring (0 = live,
1..[MaxSnapshots] = progressively older), then writes the serialized store
plus a 4-byte big-endian Adler-32 of the exact file bytes. A load only
succeeds if the checksum matches.

3. A fail-fast concurrency contract: every operation on the written-keys map
acquires the guard with TryLock and returns [ErrMutexLockFailed] instead of
blocking. Lock contention is an observable, recoverable error, never a stall.

4. A defaults layer: a read-only map of fallback values loaded once at open
and consulted by [Store.GetValue] when a key has no written entry.

# On-disk format

Per generation g under prefix P (P = <dir>/kvs_<instance>):

  - P_g.json — UTF-8 JSON object; every member is a {"t": tag, "v": payload}
    envelope with tags i32, u32, i64, u64, f64, bool, str, null, arr, obj.
  - P_g.hash — exactly 4 raw bytes, big-endian Adler-32 of P_g.json.
  - P_default.json / P_default.hash — same pair format, loaded once at open,
    never rotated or rewritten.

The filesystem is consumed through the [Filesystem] interface; see package
kvsbolt for a single-file medium backed by bbolt.
*/
package kvs
