// Package provider isolates the external KEM library behind a narrow
// interface. It owns library-availability verification and enforces a
// validate-before-return discipline on every primitive output, so no
// structurally invalid key or secret ever reaches the engine.
package provider

import "errors"

// Sentinel errors returned by providers. The engine maps these to its public
// error taxonomy; underlying library detail is preserved only on the wrapped
// error chain.
var (
	// ErrUnavailable is returned when the KEM library binding cannot be loaded.
	ErrUnavailable = errors.New("kem provider unavailable")

	// ErrNotInitialized is returned when a primitive is used before Initialize.
	ErrNotInitialized = errors.New("kem provider not initialized")

	// ErrUnsupported is returned when a required algorithm is absent from the
	// library's advertised list.
	ErrUnsupported = errors.New("algorithm not supported by provider")

	// ErrKeyGen is returned when keypair generation fails or produces
	// structurally invalid material.
	ErrKeyGen = errors.New("keypair generation failed")

	// ErrEncapsulate is returned when encapsulation fails.
	ErrEncapsulate = errors.New("encapsulation failed")

	// ErrDecapsulate is returned when decapsulation fails.
	ErrDecapsulate = errors.New("decapsulation failed")
)

// KeySizes reports the published parameter sizes of a KEM in bytes.
type KeySizes struct {
	PublicKey    int
	PrivateKey   int
	Ciphertext   int
	SharedSecret int
}

// Provider is the adapter over a KEM library.
//
// Initialize binds the library once per process and verifies that every
// required algorithm is advertised. It is idempotent after success; a
// previous failure is not cached as success, so a later call may retry.
type Provider interface {
	// Name identifies the underlying library.
	Name() string

	// Initialize loads the library binding and verifies algorithm
	// availability. Safe for concurrent use.
	Initialize() error

	// Supports reports whether the KEM identifier is advertised by the
	// library. Valid only after Initialize succeeds.
	Supports(kemID string) bool

	// KeySizes returns the parameter sizes for a supported KEM.
	KeySizes(kemID string) (KeySizes, error)

	// GenerateKeyPair creates a fresh keypair for the KEM.
	GenerateKeyPair(kemID string) (publicKey, privateKey []byte, err error)

	// Encapsulate produces a shared secret and the KEM ciphertext that
	// transports it to the holder of the private key.
	Encapsulate(kemID string, publicKey []byte) (kemCiphertext, sharedSecret []byte, err error)

	// Decapsulate recovers the shared secret from a KEM ciphertext.
	Decapsulate(kemID string, kemCiphertext, privateKey []byte) (sharedSecret []byte, err error)
}
