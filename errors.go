package fieldseal

import (
	"errors"
	"fmt"
)

// ErrorCode classifies every failure the SDK can return. The set is closed:
// every failure path terminates in exactly one of these codes, never a raw
// untyped error.
type ErrorCode string

const (
	// CodeLibraryUnavailable indicates the KEM library binding could not be
	// loaded, or an operation was attempted before initialization succeeded.
	CodeLibraryUnavailable ErrorCode = "library_unavailable"

	// CodeAlgorithmUnsupported indicates a required algorithm is absent from
	// the KEM library's advertised list.
	CodeAlgorithmUnsupported ErrorCode = "algorithm_unsupported"

	// CodeKeyPairGenerationFailed indicates keypair generation failed.
	CodeKeyPairGenerationFailed ErrorCode = "keypair_generation_failed"

	// CodeEncapsulationFailed indicates KEM encapsulation failed.
	CodeEncapsulationFailed ErrorCode = "encapsulation_failed"

	// CodeDecapsulationFailed indicates KEM decapsulation failed.
	CodeDecapsulationFailed ErrorCode = "decapsulation_failed"

	// CodeEncryptionFailed indicates the symmetric seal step failed.
	CodeEncryptionFailed ErrorCode = "encryption_failed"

	// CodeDecryptionFailed indicates decryption failed. The code is
	// deliberately coarse: tampering, a wrong key, and an authentication
	// failure are indistinguishable to the caller.
	CodeDecryptionFailed ErrorCode = "decryption_failed"

	// CodeInvalidInput indicates caller-supplied data violated an input
	// constraint. Never retried; retrying cannot fix bad data.
	CodeInvalidInput ErrorCode = "invalid_input"

	// CodeInvalidKey indicates a key was not valid base64 or had the wrong
	// structure for the requested algorithm.
	CodeInvalidKey ErrorCode = "invalid_key"

	// CodeInvalidEnvelope indicates a serialized envelope was missing fields,
	// malformed, or of an unrecognized version.
	CodeInvalidEnvelope ErrorCode = "invalid_envelope"
)

// FieldSealError is implemented by all SDK errors.
type FieldSealError interface {
	error
	FieldSealError() // marker method
}

// Error is the typed failure returned by every public operation. Messages
// never contain key material, shared secrets, or library stack detail;
// underlying causes are preserved only on the wrapped chain.
type Error struct {
	// Code is the taxonomy classification.
	Code ErrorCode
	// Stage names the pipeline stage that failed: "init", "input", "kem",
	// "kdf", "aead", "codec", "fallback".
	Stage string
	// Message is the human-readable description.
	Message string
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("%s (%s): %s", e.Code, e.Stage, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// FieldSealError implements the FieldSealError interface.
func (e *Error) FieldSealError() {}

// newError builds a typed error for the given code and stage.
func newError(code ErrorCode, stage, format string, args ...any) *Error {
	return &Error{Code: code, Stage: stage, Message: fmt.Sprintf(format, args...)}
}

// wrapError builds a typed error preserving the underlying cause.
func wrapError(code ErrorCode, stage string, err error, format string, args ...any) *Error {
	return &Error{Code: code, Stage: stage, Message: fmt.Sprintf(format, args...), Err: err}
}

// CodeOf extracts the taxonomy code from an error. It returns the empty
// string for errors that did not originate in this SDK.
func CodeOf(err error) ErrorCode {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// errDecryptionFailed is the uniform failure for the decrypt path. One fixed
// message for every authentication or unwrap failure, so an observer cannot
// distinguish tampering from a wrong key.
func errDecryptionFailed(cause error) *Error {
	return &Error{Code: CodeDecryptionFailed, Message: "decryption failed", Err: cause}
}
