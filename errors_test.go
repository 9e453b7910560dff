package kvs

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorMessages(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want string
	}{
		{ErrUnmapped, "Error that was not yet mapped"},
		{ErrFileNotFound, "File not found"},
		{ErrKvsFileRead, "KVS file read error"},
		{ErrKvsHashFileRead, "KVS hash file read error"},
		{ErrJSONParser, "JSON parser error"},
		{ErrJSONGenerator, "JSON generator error"},
		{ErrPhysicalStorageFailure, "Physical storage failure"},
		{ErrIntegrityCorrupted, "Integrity corrupted"},
		{ErrValidationFailed, "Validation failed"},
		{ErrEncryptionFailed, "Encryption failed"},
		{ErrResourceBusy, "Resource is busy"},
		{ErrOutOfStorageSpace, "Out of storage space"},
		{ErrQuotaExceeded, "Quota exceeded"},
		{ErrAuthenticationFailed, "Authentication failed"},
		{ErrKeyNotFound, "Key not found"},
		{ErrKeyDefaultNotFound, "Key default value not found"},
		{ErrSerializationFailed, "Serialization failed"},
		{ErrInvalidSnapshotID, "Invalid snapshot ID"},
		{ErrConversionFailed, "Conversion failed"},
		{ErrMutexLockFailed, "Mutex failed"},
		{ErrInvalidValueType, "Invalid value type"},
	}
	for _, tt := range tests {
		if got := tt.code.Error(); got != tt.want {
			t.Errorf("ErrorCode(%d).Error() = %q, wanted %q", int(tt.code), got, tt.want)
		}
	}
}

func TestErrorCodeUnknown(t *testing.T) {
	for _, code := range []ErrorCode{-1, 999} {
		if got := code.Error(); got != "Unknown Error!" {
			t.Errorf("ErrorCode(%d).Error() = %q, wanted fallback", int(code), got)
		}
	}
}

func TestErrorCodeWrapping(t *testing.T) {
	wrapped := fmt.Errorf("loading store: %w", ErrValidationFailed)
	if !errors.Is(wrapped, ErrValidationFailed) {
		t.Fatalf("errors.Is fails through a wrap")
	}
	if errors.Is(wrapped, ErrKeyNotFound) {
		t.Fatalf("errors.Is matches a different code")
	}

	code, ok := CodeOf(wrapped)
	if !ok || code != ErrValidationFailed {
		t.Fatalf("CodeOf(wrapped) = (%v, %v), wanted (ErrValidationFailed, true)", code, ok)
	}
	if code, ok := CodeOf(errors.New("plain")); ok || code != ErrUnmapped {
		t.Fatalf("CodeOf(plain) = (%v, %v), wanted (ErrUnmapped, false)", code, ok)
	}
	if code, ok := CodeOf(nil); ok || code != ErrUnmapped {
		t.Fatalf("CodeOf(nil) = (%v, %v), wanted (ErrUnmapped, false)", code, ok)
	}
}
