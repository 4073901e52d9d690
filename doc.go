// Package fieldseal protects sensitive form-field values with hybrid
// post-quantum encryption on behalf of a host application: given a recipient
// public key it produces a versioned envelope that only the matching private
// key can open.
//
// # Algorithm Suite
//
//   - ML-KEM-768 / ML-KEM-1024 (NIST FIPS 203): post-quantum key
//     encapsulation at the standard and high security levels.
//
//   - AES-256-GCM: authenticated encryption of the field value, with the
//     composite algorithm identifier bound as associated data.
//
//   - HKDF-SHA-512 (RFC 5869): derivation of the cipher key from the KEM
//     shared secret with domain separation; the shared secret is never used
//     directly.
//
//   - RSA-2048-OAEP-SHA256: classical fallback when the quantum-safe path
//     fails, producing legacy-v1 envelopes tagged FallbackUsed.
//
// # Usage
//
//	svc := fieldseal.New()
//
//	kp, err := svc.GenerateKeyPair(fieldseal.SecurityLevelStandard)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	res, err := svc.Encrypt("4111 1111 1111 1111", kp.PublicKey, kp.Algorithm)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	out, err := svc.Decrypt(res.Raw, kp.PrivateKey)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(out.Plaintext, out.DetectedFormat)
//
// # Errors
//
// Every failure carries an [ErrorCode] from a closed taxonomy; use [CodeOf]
// to classify. Decryption failures are deliberately generic: tampering and a
// wrong key are indistinguishable to the caller, so the envelope cannot be
// used as an oracle.
//
// # Envelope format
//
// The serialized envelope is self-describing: the "version" field ("pq-v1" or
// "legacy-v1") is the sole format discriminator, and decryption detects the
// format automatically. See the envelope subpackage for the wire format.
//
// # Key Management
//
// Key storage, rotation, transport security, and authorization are the host
// application's responsibility. Private keys returned by GenerateKeyPair are
// not retained by the service; keep them secure and never log them.
package fieldseal
