// Package envelope defines the versioned wire format for FieldSeal encrypted
// values and converts between domain values and their serialized form.
//
// Two envelope shapes exist, discriminated by the "version" field:
//
//   - pq-v1: the hybrid post-quantum format carrying a KEM encapsulated key,
//     an AES-256-GCM ciphertext with its nonce and authentication tag, and the
//     composite algorithm identifier.
//
//   - legacy-v1: the classical format carrying a single opaque ciphertext
//     produced by the RSA-OAEP fallback scheme.
//
// Raw byte strings that are not JSON objects are treated as legacy
// ciphertexts, so envelopes produced before versioning existed still decrypt.
// The version strings are stable; a future format change requires a new
// version value, never a reinterpretation of existing fields.
package envelope

import "time"

// Envelope version discriminators. These values are part of the wire format
// and must never change.
const (
	VersionPostQuantum = "pq-v1"
	VersionLegacy      = "legacy-v1"
)

// Wire-format invariants for pq-v1 envelopes.
const (
	// NonceSize is the AES-GCM nonce size in bytes.
	NonceSize = 12
	// TagSize is the AES-GCM authentication tag size in bytes.
	TagSize = 16
)

// Format classifies the shape of a serialized envelope.
type Format int

const (
	// FormatUnknown is returned for structured input that matches no known
	// envelope version.
	FormatUnknown Format = iota
	// FormatPostQuantum identifies a pq-v1 envelope.
	FormatPostQuantum
	// FormatLegacy identifies a legacy-v1 envelope or a bare opaque ciphertext.
	FormatLegacy
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatPostQuantum:
		return "post-quantum"
	case FormatLegacy:
		return "legacy"
	default:
		return "unknown"
	}
}

// Envelope is the decoded form of a serialized envelope. It is a sealed
// union: the only implementations are [PostQuantum] and [Legacy], so
// consumers can switch over the concrete type exhaustively.
type Envelope interface {
	// Format reports which shape this envelope has.
	Format() Format
	// Version returns the wire version discriminator.
	Version() string

	sealed()
}

// PostQuantum is a decoded pq-v1 envelope.
type PostQuantum struct {
	// Algorithm is the composite "KEM+AEAD" identifier, e.g.
	// "ML-KEM-768+AES-256-GCM".
	Algorithm string
	// SecurityLevel is the named parameter set, "standard" or "high".
	SecurityLevel string
	// EncapsulatedKey is the KEM ciphertext transporting the shared secret.
	EncapsulatedKey []byte
	// Ciphertext is the AES-256-GCM ciphertext without the tag.
	Ciphertext []byte
	// Nonce is the 12-byte AES-GCM nonce.
	Nonce []byte
	// AuthTag is the 16-byte AES-GCM authentication tag.
	AuthTag []byte
	// Timestamp records when the envelope was produced.
	Timestamp time.Time
}

// Format implements Envelope.
func (*PostQuantum) Format() Format { return FormatPostQuantum }

// Version implements Envelope.
func (*PostQuantum) Version() string { return VersionPostQuantum }

func (*PostQuantum) sealed() {}

// Legacy is a decoded legacy-v1 envelope or bare classical ciphertext.
type Legacy struct {
	// Algorithm is the classical scheme identifier, e.g.
	// "RSA-2048-OAEP-SHA256". Empty for bare ciphertexts that predate the
	// envelope format; consumers assume the default classical scheme.
	Algorithm string
	// Ciphertext is the opaque classical ciphertext blob.
	Ciphertext []byte
}

// Format implements Envelope.
func (*Legacy) Format() Format { return FormatLegacy }

// Version implements Envelope.
func (*Legacy) Version() string { return VersionLegacy }

func (*Legacy) sealed() {}
