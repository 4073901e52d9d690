// Package classical implements the legacy asymmetric scheme used when the
// quantum-safe path is unavailable: RSA-2048-OAEP-SHA256 wrapping a fresh
// AES-256-GCM data key. The output is a single opaque blob so legacy
// envelopes carry one ciphertext field:
//
//	wrapped key (RSA modulus size) || nonce (12) || ciphertext || tag (16)
//
// The scheme identifier is bound into both the OAEP label and the GCM
// associated data.
package classical

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"errors"
	"fmt"
	"io"
)

// SchemeID is the wire identifier of the classical scheme.
const SchemeID = "RSA-2048-OAEP-SHA256"

const (
	keyBits     = 2048
	dataKeySize = 32
	nonceSize   = 12
	tagSize     = 16
)

var (
	// ErrKeyGen is returned when RSA keypair generation fails.
	ErrKeyGen = errors.New("classical keypair generation failed")

	// ErrInvalidPublicKey is returned when the public key is not a DER-encoded
	// RSA public key.
	ErrInvalidPublicKey = errors.New("invalid classical public key")

	// ErrInvalidPrivateKey is returned when the private key is not a
	// DER-encoded RSA private key.
	ErrInvalidPrivateKey = errors.New("invalid classical private key")

	// ErrEncrypt is returned when classical encryption fails.
	ErrEncrypt = errors.New("classical encryption failed")

	// ErrDecrypt is returned when classical decryption fails. The message is
	// deliberately generic.
	ErrDecrypt = errors.New("decryption failed")
)

// GenerateKeyPair creates an RSA-2048 keypair. The public key is returned as
// PKIX DER, the private key as PKCS #8 DER.
func GenerateKeyPair(random io.Reader) (publicKey, privateKey []byte, err error) {
	if random == nil {
		random = rand.Reader
	}

	key, err := rsa.GenerateKey(random, keyBits)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrKeyGen, err)
	}

	publicKey, err = x509.MarshalPKIXPublicKey(&key.PublicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrKeyGen, err)
	}

	privateKey, err = x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrKeyGen, err)
	}

	return publicKey, privateKey, nil
}

// Encrypt encrypts plaintext for the holder of the given PKIX DER public
// key. A fresh AES-256 data key is generated per call, wrapped with
// RSA-OAEP, and the whole result packed into one opaque blob.
func Encrypt(random io.Reader, publicKeyDER, plaintext []byte) ([]byte, error) {
	if random == nil {
		random = rand.Reader
	}

	pub, err := parsePublicKey(publicKeyDER)
	if err != nil {
		return nil, err
	}

	dataKey := make([]byte, dataKeySize)
	if _, err := io.ReadFull(random, dataKey); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncrypt, err)
	}
	defer zeroize(dataKey)

	wrapped, err := rsa.EncryptOAEP(sha256.New(), random, pub, dataKey, []byte(SchemeID))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncrypt, err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(random, nonce); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncrypt, err)
	}

	gcm, err := newGCM(dataKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncrypt, err)
	}
	sealed := gcm.Seal(nil, nonce, plaintext, []byte(SchemeID))

	blob := make([]byte, 0, len(wrapped)+nonceSize+len(sealed))
	blob = append(blob, wrapped...)
	blob = append(blob, nonce...)
	blob = append(blob, sealed...)
	return blob, nil
}

// Decrypt opens a blob produced by Encrypt using a PKCS #8 DER private key.
func Decrypt(privateKeyDER, blob []byte) ([]byte, error) {
	key, err := parsePrivateKey(privateKeyDER)
	if err != nil {
		return nil, err
	}

	wrappedSize := key.PublicKey.Size()
	if len(blob) < wrappedSize+nonceSize+tagSize {
		return nil, ErrDecrypt
	}

	wrapped := blob[:wrappedSize]
	nonce := blob[wrappedSize : wrappedSize+nonceSize]
	sealed := blob[wrappedSize+nonceSize:]

	dataKey, err := rsa.DecryptOAEP(sha256.New(), nil, key, wrapped, []byte(SchemeID))
	if err != nil {
		return nil, ErrDecrypt
	}
	defer zeroize(dataKey)

	gcm, err := newGCM(dataKey)
	if err != nil {
		return nil, ErrDecrypt
	}

	plaintext, err := gcm.Open(nil, nonce, sealed, []byte(SchemeID))
	if err != nil {
		return nil, ErrDecrypt
	}
	return plaintext, nil
}

// ValidKeyPair reports whether the DER keys parse as RSA keys belonging to
// the same keypair.
func ValidKeyPair(publicKeyDER, privateKeyDER []byte) bool {
	pub, err := parsePublicKey(publicKeyDER)
	if err != nil {
		return false
	}
	key, err := parsePrivateKey(privateKeyDER)
	if err != nil {
		return false
	}
	return key.PublicKey.Equal(pub)
}

func parsePublicKey(der []byte) (*rsa.PublicKey, error) {
	parsed, err := x509.ParsePKIXPublicKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPublicKey, err)
	}
	pub, ok := parsed.(*rsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA key", ErrInvalidPublicKey)
	}
	return pub, nil
}

func parsePrivateKey(der []byte) (*rsa.PrivateKey, error) {
	parsed, err := x509.ParsePKCS8PrivateKey(der)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPrivateKey, err)
	}
	key, ok := parsed.(*rsa.PrivateKey)
	if !ok {
		return nil, fmt.Errorf("%w: not an RSA key", ErrInvalidPrivateKey)
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

func zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
