// Package crypto provides the symmetric primitives for the FieldSeal
// envelope protocol: HKDF-SHA-512 key derivation, AES-256-GCM sealing and
// opening, base64 helpers, and secret-buffer zeroing.
//
// The key derivation follows RFC 5869 with domain separation:
//
//   - IKM: the KEM shared secret
//   - Salt: SHA-256 hash of the KEM ciphertext
//   - Info: context string || AAD length (4 bytes BE) || AAD
//
// The AAD is the composite algorithm identifier, binding the algorithm
// choice into both the derived key and the GCM authentication tag.
//
// AES-GCM nonces MUST be unique for each encryption with the same key. Nonce
// reuse completely breaks the security of AES-GCM, allowing attackers to
// recover the authentication key and forge messages. Callers draw a fresh
// random nonce for every seal; no counters, no reuse.
//
// Shared secrets and derived keys are scoped to a single call. Callers zero
// them with [Zeroize] on every exit path instead of waiting for the garbage
// collector.
package crypto
