package kvs

// Adler-32 over the persisted file bytes gates every load. The checksum is
// stored as 4 raw big-endian bytes in the companion .hash file.

const (
	adlerBase = 65521
	// Largest n such that 255*n*(n+1)/2 + (n+1)*(adlerBase-1) fits in
	// uint32, i.e. the running sums cannot overflow within a block.
	adlerNMax = 5552
)

// ChecksumAdler32 computes the Adler-32 checksum of data, processing it in
// bounded blocks so the running sums only need one modulo reduction per
// block. ChecksumAdler32(nil) == 1.
func ChecksumAdler32(data []byte) uint32 {
	a, b := uint32(1), uint32(0)
	for len(data) > 0 {
		block := data
		if len(block) > adlerNMax {
			block = block[:adlerNMax]
		}
		data = data[len(block):]
		for _, c := range block {
			a += uint32(c)
			b += a
		}
		a %= adlerBase
		b %= adlerBase
	}
	return b<<16 | a
}

// HashBytes encodes a checksum as 4 big-endian bytes.
func HashBytes(hash uint32) [4]byte {
	return [4]byte{
		byte(hash >> 24),
		byte(hash >> 16),
		byte(hash >> 8),
		byte(hash),
	}
}

// HashFromBytes decodes a big-endian checksum from up to 4 bytes. Shorter
// input is treated as if zero-padded; the verification gate then fails
// unless the stored hash genuinely matched.
func HashFromBytes(b []byte) uint32 {
	var buf [4]byte
	copy(buf[:], b)
	return uint32(buf[0])<<24 | uint32(buf[1])<<16 | uint32(buf[2])<<8 | uint32(buf[3])
}

// VerifyChecksum reports whether storedHash is the big-endian Adler-32 of
// data. This is the sole trust gate for persisted files.
func VerifyChecksum(data []byte, storedHash []byte) bool {
	return ChecksumAdler32(data) == HashFromBytes(storedHash)
}
