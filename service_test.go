package fieldseal

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/fieldseal/fieldseal-go/envelope"
	"github.com/fieldseal/fieldseal-go/internal/provider"
)

// failingProvider simulates a provider outage: initialization succeeds but
// every primitive call fails.
type failingProvider struct{}

func (failingProvider) Name() string         { return "failing" }
func (failingProvider) Initialize() error    { return nil }
func (failingProvider) Supports(string) bool { return true }
func (failingProvider) KeySizes(string) (provider.KeySizes, error) {
	return provider.KeySizes{}, provider.ErrUnsupported
}
func (failingProvider) GenerateKeyPair(string) ([]byte, []byte, error) {
	return nil, nil, provider.ErrKeyGen
}
func (failingProvider) Encapsulate(string, []byte) ([]byte, []byte, error) {
	return nil, nil, provider.ErrEncapsulate
}
func (failingProvider) Decapsulate(string, []byte, []byte) ([]byte, error) {
	return nil, provider.ErrDecapsulate
}

// unavailableProvider fails initialization, as when the library binding
// cannot be loaded.
type unavailableProvider struct{}

func (unavailableProvider) Name() string         { return "unavailable" }
func (unavailableProvider) Initialize() error    { return provider.ErrUnavailable }
func (unavailableProvider) Supports(string) bool { return false }

func (unavailableProvider) KeySizes(string) (provider.KeySizes, error) {
	return provider.KeySizes{}, provider.ErrUnavailable
}
func (unavailableProvider) GenerateKeyPair(string) ([]byte, []byte, error) {
	return nil, nil, provider.ErrUnavailable
}
func (unavailableProvider) Encapsulate(string, []byte) ([]byte, []byte, error) {
	return nil, nil, provider.ErrUnavailable
}
func (unavailableProvider) Decapsulate(string, []byte, []byte) ([]byte, error) {
	return nil, provider.ErrUnavailable
}

// countingProvider counts Initialize calls to observe the once-only
// initialization guarantee.
type countingProvider struct {
	Provider
	initCalls atomic.Int32
}

func (p *countingProvider) Initialize() error {
	p.initCalls.Add(1)
	return p.Provider.Initialize()
}

func TestEncryptDecrypt_RoundTrip(t *testing.T) {
	t.Parallel()

	svc := New()

	for _, level := range []SecurityLevel{SecurityLevelStandard, SecurityLevelHigh} {
		level := level
		t.Run(string(level), func(t *testing.T) {
			t.Parallel()

			kp, err := svc.GenerateKeyPair(level)
			if err != nil {
				t.Fatalf("GenerateKeyPair() error = %v", err)
			}
			if kp.FallbackUsed {
				t.Error("FallbackUsed = true for a healthy provider")
			}
			if kp.SecurityLevel != level {
				t.Errorf("SecurityLevel = %q, want %q", kp.SecurityLevel, level)
			}
			if kp.GeneratedAt.IsZero() {
				t.Error("GeneratedAt is zero")
			}

			res, err := svc.Encrypt("hello world", kp.PublicKey, kp.Algorithm)
			if err != nil {
				t.Fatalf("Encrypt() error = %v", err)
			}
			if got := envelope.Classify(res.Raw); got != envelope.FormatPostQuantum {
				t.Errorf("Classify(Raw) = %v, want post-quantum", got)
			}
			if res.FallbackUsed {
				t.Error("FallbackUsed = true for a healthy provider")
			}
			if res.DataSize != len("hello world") {
				t.Errorf("DataSize = %d, want %d", res.DataSize, len("hello world"))
			}
			if res.EncryptedSize != len(res.Raw) {
				t.Errorf("EncryptedSize = %d, want %d", res.EncryptedSize, len(res.Raw))
			}

			out, err := svc.Decrypt(res.Raw, kp.PrivateKey)
			if err != nil {
				t.Fatalf("Decrypt() error = %v", err)
			}
			if out.Plaintext != "hello world" {
				t.Errorf("Plaintext = %q, want %q", out.Plaintext, "hello world")
			}
			if out.DetectedFormat != envelope.FormatPostQuantum {
				t.Errorf("DetectedFormat = %v, want post-quantum", out.DetectedFormat)
			}
		})
	}
}

func TestEncrypt_ProbabilisticCiphertext(t *testing.T) {
	t.Parallel()

	svc := New()
	kp, err := svc.GenerateKeyPair(SecurityLevelStandard)
	if err != nil {
		t.Fatal(err)
	}

	first, err := svc.Encrypt("same plaintext", kp.PublicKey, kp.Algorithm)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Encrypt("same plaintext", kp.PublicKey, kp.Algorithm)
	if err != nil {
		t.Fatal(err)
	}

	a := first.Envelope.(*envelope.PostQuantum)
	b := second.Envelope.(*envelope.PostQuantum)

	if bytes.Equal(a.Nonce, b.Nonce) {
		t.Error("two encryptions share a nonce")
	}
	if bytes.Equal(a.EncapsulatedKey, b.EncapsulatedKey) {
		t.Error("two encryptions share an encapsulated key")
	}
	if bytes.Equal(a.Ciphertext, b.Ciphertext) {
		t.Error("two encryptions share a ciphertext")
	}
}

func TestDecrypt_WrongKey(t *testing.T) {
	t.Parallel()

	svc := New()
	kp, err := svc.GenerateKeyPair(SecurityLevelStandard)
	if err != nil {
		t.Fatal(err)
	}
	other, err := svc.GenerateKeyPair(SecurityLevelStandard)
	if err != nil {
		t.Fatal(err)
	}

	res, err := svc.Encrypt("hello world", kp.PublicKey, kp.Algorithm)
	if err != nil {
		t.Fatal(err)
	}

	_, err = svc.Decrypt(res.Raw, other.PrivateKey)
	if CodeOf(err) != CodeDecryptionFailed {
		t.Fatalf("Decrypt() error = %v, want code %s", err, CodeDecryptionFailed)
	}
}

func TestDecrypt_TamperDetection(t *testing.T) {
	t.Parallel()

	svc := New()
	kp, err := svc.GenerateKeyPair(SecurityLevelStandard)
	if err != nil {
		t.Fatal(err)
	}
	res, err := svc.Encrypt("sensitive field value", kp.PublicKey, kp.Algorithm)
	if err != nil {
		t.Fatal(err)
	}
	original := res.Envelope.(*envelope.PostQuantum)

	tests := []struct {
		name   string
		mutate func(*envelope.PostQuantum)
	}{
		{"ciphertext bit flip", func(e *envelope.PostQuantum) { e.Ciphertext[0] ^= 0x01 }},
		{"auth tag bit flip", func(e *envelope.PostQuantum) { e.AuthTag[0] ^= 0x01 }},
		{"encapsulated key bit flip", func(e *envelope.PostQuantum) { e.EncapsulatedKey[0] ^= 0x01 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tampered := &envelope.PostQuantum{
				Algorithm:       original.Algorithm,
				SecurityLevel:   original.SecurityLevel,
				EncapsulatedKey: bytes.Clone(original.EncapsulatedKey),
				Ciphertext:      bytes.Clone(original.Ciphertext),
				Nonce:           bytes.Clone(original.Nonce),
				AuthTag:         bytes.Clone(original.AuthTag),
				Timestamp:       original.Timestamp,
			}
			tt.mutate(tampered)

			raw, err := envelope.Encode(tampered)
			if err != nil {
				t.Fatal(err)
			}

			_, err = svc.Decrypt(raw, kp.PrivateKey)
			if CodeOf(err) != CodeDecryptionFailed {
				t.Fatalf("Decrypt() error = %v, want code %s", err, CodeDecryptionFailed)
			}

			var serr *Error
			if !errors.As(err, &serr) {
				t.Fatalf("error %T does not unwrap to *Error", err)
			}
			if serr.Message != "decryption failed" {
				t.Errorf("Message = %q, want the uniform generic message", serr.Message)
			}
		})
	}
}

func TestGenerateKeyPair_LevelSizing(t *testing.T) {
	t.Parallel()

	svc := New()
	standard, err := svc.GenerateKeyPair(SecurityLevelStandard)
	if err != nil {
		t.Fatal(err)
	}
	high, err := svc.GenerateKeyPair(SecurityLevelHigh)
	if err != nil {
		t.Fatal(err)
	}

	if high.KeySize.PublicKey <= standard.KeySize.PublicKey {
		t.Errorf("high public key size %d not larger than standard %d",
			high.KeySize.PublicKey, standard.KeySize.PublicKey)
	}
	if high.KeySize.PrivateKey <= standard.KeySize.PrivateKey {
		t.Errorf("high private key size %d not larger than standard %d",
			high.KeySize.PrivateKey, standard.KeySize.PrivateKey)
	}
}

func TestGenerateKeyPair_InvalidLevel(t *testing.T) {
	t.Parallel()

	svc := New()
	_, err := svc.GenerateKeyPair("quantum-max")
	if CodeOf(err) != CodeInvalidInput {
		t.Fatalf("GenerateKeyPair() error = %v, want code %s", err, CodeInvalidInput)
	}
}

func TestGenerateKeyPair_DefaultLevel(t *testing.T) {
	t.Parallel()

	svc := New()
	kp, err := svc.GenerateKeyPair("")
	if err != nil {
		t.Fatalf("GenerateKeyPair(\"\") error = %v", err)
	}
	if kp.SecurityLevel != SecurityLevelStandard {
		t.Errorf("SecurityLevel = %q, want standard default", kp.SecurityLevel)
	}
	if kp.Algorithm != envelope.AlgorithmMLKEM768 {
		t.Errorf("Algorithm = %q, want %q", kp.Algorithm, envelope.AlgorithmMLKEM768)
	}
}

func TestEncrypt_InputValidation(t *testing.T) {
	t.Parallel()

	svc := New()
	kp, err := svc.GenerateKeyPair(SecurityLevelStandard)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		data      string
		publicKey string
		algorithm string
		wantCode  ErrorCode
	}{
		{"empty data", "", kp.PublicKey, kp.Algorithm, CodeInvalidInput},
		{"unknown algorithm", "x", kp.PublicKey, "ROT13", CodeInvalidInput},
		{"classical id not accepted", "x", kp.PublicKey, "RSA-2048-OAEP-SHA256", CodeInvalidInput},
		{"bad base64 key", "x", "!!not base64!!", kp.Algorithm, CodeInvalidKey},
		{"empty key", "x", "", kp.Algorithm, CodeInvalidKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Encrypt(tt.data, tt.publicKey, tt.algorithm)
			if CodeOf(err) != tt.wantCode {
				t.Errorf("Encrypt() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestDecrypt_MalformedEnvelope(t *testing.T) {
	t.Parallel()

	svc := New()
	kp, err := svc.GenerateKeyPair(SecurityLevelStandard)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		raw      []byte
		wantCode ErrorCode
	}{
		{"empty", nil, CodeInvalidInput},
		{"unknown version", []byte(`{"version":"pq-v99","ciphertext":"AA=="}`), CodeInvalidEnvelope},
		{"pq-v1 missing fields", []byte(`{"version":"pq-v1"}`), CodeInvalidEnvelope},
		{"legacy missing ciphertext", []byte(`{"version":"legacy-v1","algorithm":"RSA-2048-OAEP-SHA256"}`), CodeInvalidEnvelope},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Decrypt(tt.raw, kp.PrivateKey)
			if CodeOf(err) != tt.wantCode {
				t.Errorf("Decrypt() error = %v, want code %s", err, tt.wantCode)
			}
		})
	}
}

func TestDecrypt_BadPrivateKeyEncoding(t *testing.T) {
	t.Parallel()

	svc := New()
	kp, err := svc.GenerateKeyPair(SecurityLevelStandard)
	if err != nil {
		t.Fatal(err)
	}
	res, err := svc.Encrypt("x", kp.PublicKey, kp.Algorithm)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Decrypt(res.Raw, "!!not base64!!"); CodeOf(err) != CodeInvalidKey {
		t.Errorf("Decrypt() error = %v, want code %s", err, CodeInvalidKey)
	}

	// Wrong-length but valid base64 private key.
	if _, err := svc.Decrypt(res.Raw, "AAAA"); CodeOf(err) != CodeInvalidKey {
		t.Errorf("Decrypt() error = %v, want code %s", err, CodeInvalidKey)
	}
}

func TestService_ProviderUnavailable(t *testing.T) {
	t.Parallel()

	svc := New(WithProvider(unavailableProvider{}))

	_, err := svc.GenerateKeyPair(SecurityLevelStandard)
	if CodeOf(err) != CodeLibraryUnavailable {
		t.Fatalf("GenerateKeyPair() error = %v, want code %s", err, CodeLibraryUnavailable)
	}

	// Failed is terminal for this instance; later calls observe the same
	// outcome without re-binding.
	if _, err := svc.Encrypt("x", "AAAA", envelope.AlgorithmMLKEM768); CodeOf(err) != CodeLibraryUnavailable {
		t.Errorf("Encrypt() error = %v, want code %s", err, CodeLibraryUnavailable)
	}
	if _, err := svc.Decrypt([]byte("x"), "AAAA"); CodeOf(err) != CodeLibraryUnavailable {
		t.Errorf("Decrypt() error = %v, want code %s", err, CodeLibraryUnavailable)
	}
}

func TestService_InitializeOnce(t *testing.T) {
	t.Parallel()

	counting := &countingProvider{
		Provider: provider.NewCIRCL(envelope.KEMMLKEM768, envelope.KEMMLKEM1024),
	}
	svc := New(WithProvider(counting))

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.GenerateKeyPair(SecurityLevelStandard)
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Errorf("goroutine %d: GenerateKeyPair() error = %v", i, err)
		}
	}
	if calls := counting.initCalls.Load(); calls != 1 {
		t.Errorf("Initialize called %d times, want 1", calls)
	}
}

func ExampleService_Encrypt() {
	svc := New()

	kp, err := svc.GenerateKeyPair(SecurityLevelStandard)
	if err != nil {
		panic(err)
	}

	res, err := svc.Encrypt("hello world", kp.PublicKey, kp.Algorithm)
	if err != nil {
		panic(err)
	}

	out, err := svc.Decrypt(res.Raw, kp.PrivateKey)
	if err != nil {
		panic(err)
	}

	fmt.Println(res.Envelope.Version(), out.Plaintext)
	// Output: pq-v1 hello world
}
