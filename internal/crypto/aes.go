package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// SealAESGCM encrypts plaintext using AES-256-GCM and returns the ciphertext
// and the 16-byte authentication tag separately, as the envelope wire format
// carries them in distinct fields.
func SealAESGCM(key, nonce, aad, plaintext []byte) (ciphertext, tag []byte, err error) {
	gcm, err := newGCM(key, nonce)
	if err != nil {
		return nil, nil, err
	}

	sealed := gcm.Seal(nil, nonce, plaintext, aad)
	split := len(sealed) - AESTagSize
	return sealed[:split], sealed[split:], nil
}

// OpenAESGCM decrypts and authenticates an AES-256-GCM ciphertext whose tag
// is carried separately. Any authentication failure is reported as
// [ErrDecryptionFailed] with no further detail.
func OpenAESGCM(key, nonce, aad, ciphertext, tag []byte) ([]byte, error) {
	if len(tag) != AESTagSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidTagSize, len(tag), AESTagSize)
	}

	gcm, err := newGCM(key, nonce)
	if err != nil {
		return nil, err
	}

	sealed := make([]byte, 0, len(ciphertext)+len(tag))
	sealed = append(sealed, ciphertext...)
	sealed = append(sealed, tag...)

	plaintext, err := gcm.Open(nil, nonce, sealed, aad)
	if err != nil {
		return nil, ErrDecryptionFailed
	}

	return plaintext, nil
}

func newGCM(key, nonce []byte) (cipher.AEAD, error) {
	if len(key) != AESKeySize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidKeySize, len(key), AESKeySize)
	}

	if len(nonce) != AESNonceSize {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidNonceSize, len(nonce), AESNonceSize)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	return cipher.NewGCM(block)
}
