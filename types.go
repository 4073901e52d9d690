package fieldseal

import (
	"fmt"
	"time"

	"github.com/fieldseal/fieldseal-go/envelope"
)

// SecurityLevel selects the KEM parameter set for a keypair. It is immutable
// once chosen: the level is bound into the keypair's algorithm identifier.
type SecurityLevel string

const (
	// SecurityLevelStandard maps to ML-KEM-768.
	SecurityLevelStandard SecurityLevel = "standard"
	// SecurityLevelHigh maps to ML-KEM-1024, trading larger keys and
	// ciphertexts for a wider strength margin.
	SecurityLevelHigh SecurityLevel = "high"
)

// ParseSecurityLevel validates a security level value. The empty string
// defaults to standard.
func ParseSecurityLevel(s string) (SecurityLevel, error) {
	switch SecurityLevel(s) {
	case SecurityLevelStandard, SecurityLevelHigh:
		return SecurityLevel(s), nil
	case "":
		return SecurityLevelStandard, nil
	}
	return "", fmt.Errorf("unrecognized security level %q", s)
}

// KEM returns the KEM identifier bound to the level.
func (l SecurityLevel) KEM() string {
	if l == SecurityLevelHigh {
		return envelope.KEMMLKEM1024
	}
	return envelope.KEMMLKEM768
}

// Algorithm returns the composite algorithm identifier bound to the level.
func (l SecurityLevel) Algorithm() string {
	if l == SecurityLevelHigh {
		return envelope.AlgorithmMLKEM1024
	}
	return envelope.AlgorithmMLKEM768
}

// levelForKEM maps a KEM identifier back to its security level.
func levelForKEM(kemID string) SecurityLevel {
	if kemID == envelope.KEMMLKEM1024 {
		return SecurityLevelHigh
	}
	return SecurityLevelStandard
}

// KeySizes reports the byte lengths of a keypair's raw key material.
type KeySizes struct {
	PublicKey  int `json:"publicKey"`
	PrivateKey int `json:"privateKey"`
}

// KeyPair is the result of a keypair generation. Ownership of the key
// material transfers entirely to the caller; the service retains no copy.
type KeyPair struct {
	// PublicKey is the base64-encoded public key.
	PublicKey string `json:"publicKey"`
	// PrivateKey is the base64-encoded private key. Keep it secure: it must
	// never be logged or stored in plaintext.
	PrivateKey string `json:"privateKey"`
	// Algorithm identifies the scheme the keys belong to.
	Algorithm string `json:"algorithm"`
	// SecurityLevel is the parameter set the keypair was generated at.
	SecurityLevel SecurityLevel `json:"securityLevel"`
	// KeySize reports the raw key material sizes in bytes.
	KeySize KeySizes `json:"keySize"`
	// GeneratedAt is when the keypair was created.
	GeneratedAt time.Time `json:"generatedAt"`
	// FallbackUsed is true when the classical scheme was substituted for the
	// quantum-safe one.
	FallbackUsed bool `json:"fallbackUsed"`
}

// EncryptResult is the outcome of an encryption operation.
type EncryptResult struct {
	// Envelope is the decoded form of the produced envelope.
	Envelope envelope.Envelope `json:"-"`
	// Raw is the serialized envelope handed back to the host for storage.
	Raw []byte `json:"envelope"`
	// SecurityLevel is the level inferred from the algorithm used.
	SecurityLevel SecurityLevel `json:"securityLevel"`
	// FallbackUsed is true when the classical scheme produced the envelope.
	FallbackUsed bool `json:"fallbackUsed"`
	// DataSize is the plaintext length in bytes.
	DataSize int `json:"dataSize"`
	// EncryptedSize is the serialized envelope length in bytes.
	EncryptedSize int `json:"encryptedSize"`
}

// DecryptResult is the outcome of a decryption operation.
type DecryptResult struct {
	// Plaintext is the recovered field value.
	Plaintext string `json:"plaintext"`
	// DetectedFormat reports which envelope shape was decrypted.
	DetectedFormat envelope.Format `json:"detectedFormat"`
}
