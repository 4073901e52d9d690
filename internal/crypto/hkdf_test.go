package crypto

import (
	"bytes"
	"crypto/rand"
	"testing"
)

func TestDeriveEnvelopeKey(t *testing.T) {
	t.Parallel()

	sharedSecret := make([]byte, 32)
	if _, err := rand.Read(sharedSecret); err != nil {
		t.Fatal(err)
	}
	aad := []byte("ML-KEM-768+AES-256-GCM")
	kemCiphertext := make([]byte, 1088)
	if _, err := rand.Read(kemCiphertext); err != nil {
		t.Fatal(err)
	}

	key, err := DeriveEnvelopeKey(sharedSecret, aad, kemCiphertext)
	if err != nil {
		t.Fatalf("DeriveEnvelopeKey() error = %v", err)
	}
	if len(key) != AESKeySize {
		t.Errorf("key length = %d, want %d", len(key), AESKeySize)
	}

	t.Run("deterministic", func(t *testing.T) {
		again, err := DeriveEnvelopeKey(sharedSecret, aad, kemCiphertext)
		if err != nil {
			t.Fatal(err)
		}
		if !bytes.Equal(key, again) {
			t.Error("same inputs produced different keys")
		}
	})

	t.Run("different aad", func(t *testing.T) {
		other, err := DeriveEnvelopeKey(sharedSecret, []byte("ML-KEM-1024+AES-256-GCM"), kemCiphertext)
		if err != nil {
			t.Fatal(err)
		}
		if bytes.Equal(key, other) {
			t.Error("different aad produced the same key")
		}
	})

	t.Run("different kem ciphertext", func(t *testing.T) {
		ct := bytes.Clone(kemCiphertext)
		ct[0] ^= 0xff
		other, err := DeriveEnvelopeKey(sharedSecret, aad, ct)
		if err != nil {
			t.Fatal(err)
		}
		if bytes.Equal(key, other) {
			t.Error("different kem ciphertext produced the same key")
		}
	})

	t.Run("different secret", func(t *testing.T) {
		secret := bytes.Clone(sharedSecret)
		secret[0] ^= 0xff
		other, err := DeriveEnvelopeKey(secret, aad, kemCiphertext)
		if err != nil {
			t.Fatal(err)
		}
		if bytes.Equal(key, other) {
			t.Error("different secret produced the same key")
		}
	})
}

func TestDeriveKey(t *testing.T) {
	t.Parallel()

	secret := []byte("test secret key for derivation")

	tests := []struct {
		name   string
		salt   []byte
		info   []byte
		length int
	}{
		{"basic 32 bytes", make([]byte, 32), []byte("info"), 32},
		{"empty salt", nil, []byte("info"), 32},
		{"empty info", make([]byte, 32), nil, 32},
		{"64 byte key", make([]byte, 32), []byte("info"), 64},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, err := DeriveKey(secret, tt.salt, tt.info, tt.length)
			if err != nil {
				t.Fatalf("DeriveKey() error = %v", err)
			}
			if len(key) != tt.length {
				t.Errorf("key length = %d, want %d", len(key), tt.length)
			}
		})
	}
}

func TestDeriveKey_ExceedsMaxLength(t *testing.T) {
	t.Parallel()

	// HKDF-SHA-512 can produce at most 255 * 64 = 16320 bytes.
	if _, err := DeriveKey([]byte("secret"), []byte("salt"), []byte("info"), 16321); err == nil {
		t.Error("expected error when requesting more than HKDF max output")
	}
}

func TestZeroize(t *testing.T) {
	t.Parallel()

	b := []byte{1, 2, 3, 4, 5}
	Zeroize(b)
	for i, v := range b {
		if v != 0 {
			t.Errorf("byte %d = %d, want 0", i, v)
		}
	}
}
