package kvs

import "errors"

// ErrorCode identifies a failure class. Codes are stable across releases and
// survive round-tripping through an integer, so rendering falls through to a
// fixed string for values outside the known range instead of failing.
type ErrorCode int

const (
	// ErrUnmapped is a placeholder for failures not yet assigned a code.
	// No operation in this package returns it.
	ErrUnmapped ErrorCode = iota
	ErrFileNotFound
	ErrKvsFileRead
	ErrKvsHashFileRead
	ErrJSONParser
	ErrJSONGenerator
	ErrPhysicalStorageFailure
	ErrIntegrityCorrupted
	ErrValidationFailed
	ErrEncryptionFailed
	ErrResourceBusy
	ErrOutOfStorageSpace
	ErrQuotaExceeded
	ErrAuthenticationFailed
	ErrKeyNotFound
	ErrKeyDefaultNotFound
	ErrSerializationFailed
	ErrInvalidSnapshotID
	ErrConversionFailed
	ErrMutexLockFailed
	ErrInvalidValueType
)

var errorMessages = map[ErrorCode]string{
	ErrUnmapped:               "Error that was not yet mapped",
	ErrFileNotFound:           "File not found",
	ErrKvsFileRead:            "KVS file read error",
	ErrKvsHashFileRead:        "KVS hash file read error",
	ErrJSONParser:             "JSON parser error",
	ErrJSONGenerator:          "JSON generator error",
	ErrPhysicalStorageFailure: "Physical storage failure",
	ErrIntegrityCorrupted:     "Integrity corrupted",
	ErrValidationFailed:       "Validation failed",
	ErrEncryptionFailed:       "Encryption failed",
	ErrResourceBusy:           "Resource is busy",
	ErrOutOfStorageSpace:      "Out of storage space",
	ErrQuotaExceeded:          "Quota exceeded",
	ErrAuthenticationFailed:   "Authentication failed",
	ErrKeyNotFound:            "Key not found",
	ErrKeyDefaultNotFound:     "Key default value not found",
	ErrSerializationFailed:    "Serialization failed",
	ErrInvalidSnapshotID:      "Invalid snapshot ID",
	ErrConversionFailed:       "Conversion failed",
	ErrMutexLockFailed:        "Mutex failed",
	ErrInvalidValueType:       "Invalid value type",
}

func (c ErrorCode) Error() string {
	if msg, ok := errorMessages[c]; ok {
		return msg
	}
	return "Unknown Error!"
}

// CodeOf extracts the ErrorCode from err, unwrapping as needed.
// Returns ErrUnmapped, false if err carries no code.
func CodeOf(err error) (ErrorCode, bool) {
	var c ErrorCode
	if errors.As(err, &c) {
		return c, true
	}
	return ErrUnmapped, false
}
