package fieldseal

import (
	"crypto/rand"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/fieldseal/fieldseal-go/envelope"
	"github.com/fieldseal/fieldseal-go/internal/classical"
	"github.com/fieldseal/fieldseal-go/internal/crypto"
	"github.com/fieldseal/fieldseal-go/internal/provider"
)

// serviceState tracks the engine's initialization state machine:
// uninitialized → initializing → ready, or failed.
type serviceState int

const (
	stateUninitialized serviceState = iota
	stateInitializing
	stateReady
	stateFailed
)

// Service is the hybrid crypto engine. Every operation is stateless beyond
// the one-time provider initialization; calls are independent and safe for
// concurrent use.
type Service struct {
	mu      sync.Mutex
	state   serviceState
	initErr *Error

	provider         Provider
	rand             io.Reader
	fallbackDisabled bool
}

// New creates a service. Provider initialization is lazy: it runs on the
// first operation (or on the first of several racing operations, with the
// others observing its outcome).
func New(opts ...Option) *Service {
	cfg := serviceConfig{
		provider: provider.NewCIRCL(envelope.KEMMLKEM768, envelope.KEMMLKEM1024),
		rand:     rand.Reader,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Service{
		provider:         cfg.provider,
		rand:             cfg.rand,
		fallbackDisabled: cfg.fallbackDisabled,
	}
}

// ensureReady runs the one-time initialization. Exactly one attempt executes
// under concurrent first use; racing callers block on the mutex and observe
// the same outcome. A failed state is terminal for this instance; retry by
// constructing a new Service.
func (s *Service) ensureReady() *Error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case stateReady:
		return nil
	case stateFailed:
		return s.initErr
	}

	s.state = stateInitializing
	if err := s.provider.Initialize(); err != nil {
		s.state = stateFailed
		s.initErr = mapInitError(err)
		return s.initErr
	}
	s.state = stateReady
	return nil
}

func mapInitError(err error) *Error {
	if errors.Is(err, provider.ErrUnsupported) {
		return wrapError(CodeAlgorithmUnsupported, "init", err, "required algorithm not advertised by provider")
	}
	return wrapError(CodeLibraryUnavailable, "init", err, "kem library could not be initialized")
}

// GenerateKeyPair creates a keypair at the given security level. Unrecognized
// level values are rejected before any generation is attempted. On a
// quantum-safe failure the classical fallback is tried once (see fallback.go).
func (s *Service) GenerateKeyPair(level SecurityLevel) (*KeyPair, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}

	parsed, err := ParseSecurityLevel(string(level))
	if err != nil {
		return nil, wrapError(CodeInvalidInput, "input", err, "security level must be %q or %q",
			SecurityLevelStandard, SecurityLevelHigh)
	}

	pub, priv, genErr := s.provider.GenerateKeyPair(parsed.KEM())
	if genErr != nil {
		qErr := wrapError(CodeKeyPairGenerationFailed, "kem", genErr,
			"keypair generation failed for %s", parsed.KEM())
		return s.fallbackGenerateKeyPair(qErr)
	}
	defer crypto.Zeroize(priv)

	return &KeyPair{
		PublicKey:     crypto.ToBase64(pub),
		PrivateKey:    crypto.ToBase64(priv),
		Algorithm:     parsed.Algorithm(),
		SecurityLevel: parsed,
		KeySize:       KeySizes{PublicKey: len(pub), PrivateKey: len(priv)},
		GeneratedAt:   time.Now().UTC(),
	}, nil
}

// Encrypt protects a field value for the holder of the given public key.
// Input constraints are checked before any cryptographic call: non-empty
// data, a supported composite algorithm identifier, and a base64-decodable
// key. On a quantum-safe failure the classical fallback is tried once.
func (s *Service) Encrypt(data, publicKeyB64, algorithmID string) (*EncryptResult, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}

	if data == "" {
		return nil, newError(CodeInvalidInput, "input", "data must not be empty")
	}

	alg, err := envelope.ParseAlgorithm(algorithmID)
	if err != nil {
		return nil, wrapError(CodeInvalidInput, "input", err,
			"algorithm must be %q or %q", envelope.AlgorithmMLKEM768, envelope.AlgorithmMLKEM1024)
	}

	publicKey, err := crypto.DecodeBase64(publicKeyB64)
	if err != nil {
		return nil, wrapError(CodeInvalidKey, "input", err, "public key is not valid base64")
	}
	if len(publicKey) == 0 {
		return nil, newError(CodeInvalidKey, "input", "public key must not be empty")
	}

	result, qErr := s.encryptPostQuantum([]byte(data), publicKey, alg)
	if qErr != nil {
		return s.fallbackEncrypt([]byte(data), publicKey, qErr)
	}
	return result, nil
}

// encryptPostQuantum runs the hybrid path: encapsulate, derive, seal, encode.
func (s *Service) encryptPostQuantum(data, publicKey []byte, alg envelope.Algorithm) (*EncryptResult, *Error) {
	kemCiphertext, sharedSecret, err := s.provider.Encapsulate(alg.KEM, publicKey)
	if err != nil {
		return nil, wrapError(CodeEncapsulationFailed, "kem", err, "encapsulation failed for %s", alg.KEM)
	}
	defer crypto.Zeroize(sharedSecret)

	// The composite algorithm identifier is the AAD: it is bound into both
	// the derived key and the authentication tag.
	aad := []byte(alg.ID())

	aesKey, err := crypto.DeriveEnvelopeKey(sharedSecret, aad, kemCiphertext)
	if err != nil {
		return nil, wrapError(CodeEncryptionFailed, "kdf", err, "key derivation failed")
	}
	defer crypto.Zeroize(aesKey)

	// Fresh random nonce on every call. Never a counter: accidental reuse
	// under the same derived key would break GCM entirely.
	nonce := make([]byte, crypto.AESNonceSize)
	if _, err := io.ReadFull(s.rand, nonce); err != nil {
		return nil, wrapError(CodeEncryptionFailed, "aead", err, "nonce generation failed")
	}

	ciphertext, tag, err := crypto.SealAESGCM(aesKey, nonce, aad, data)
	if err != nil {
		return nil, wrapError(CodeEncryptionFailed, "aead", err, "symmetric seal failed")
	}

	env := &envelope.PostQuantum{
		Algorithm:       alg.ID(),
		SecurityLevel:   string(levelForKEM(alg.KEM)),
		EncapsulatedKey: kemCiphertext,
		Ciphertext:      ciphertext,
		Nonce:           nonce,
		AuthTag:         tag,
		Timestamp:       time.Now().UTC(),
	}

	raw, err := envelope.Encode(env)
	if err != nil {
		return nil, wrapError(CodeEncryptionFailed, "codec", err, "envelope encoding failed")
	}

	return &EncryptResult{
		Envelope:      env,
		Raw:           raw,
		SecurityLevel: levelForKEM(alg.KEM),
		DataSize:      len(data),
		EncryptedSize: len(raw),
	}, nil
}

// Decrypt opens a serialized envelope. The envelope may be adversarially
// malformed; classification and decoding reject it with a typed error, never
// a panic. Authentication failures surface as the uniform decryption-failed
// code regardless of cause.
func (s *Service) Decrypt(raw []byte, privateKeyB64 string) (*DecryptResult, error) {
	if err := s.ensureReady(); err != nil {
		return nil, err
	}

	if len(raw) == 0 {
		return nil, newError(CodeInvalidInput, "input", "envelope must not be empty")
	}

	privateKey, err := crypto.DecodeBase64(privateKeyB64)
	if err != nil {
		return nil, wrapError(CodeInvalidKey, "input", err, "private key is not valid base64")
	}
	if len(privateKey) == 0 {
		return nil, newError(CodeInvalidKey, "input", "private key must not be empty")
	}
	defer crypto.Zeroize(privateKey)

	env, err := envelope.Decode(raw)
	if err != nil {
		return nil, wrapError(CodeInvalidEnvelope, "codec", err, "%s", err.Error())
	}

	switch e := env.(type) {
	case *envelope.PostQuantum:
		plaintext, derr := s.decryptPostQuantum(e, privateKey)
		if derr != nil {
			return nil, derr
		}
		return &DecryptResult{Plaintext: string(plaintext), DetectedFormat: envelope.FormatPostQuantum}, nil
	case *envelope.Legacy:
		plaintext, derr := s.decryptLegacy(e, privateKey)
		if derr != nil {
			return nil, derr
		}
		return &DecryptResult{Plaintext: string(plaintext), DetectedFormat: envelope.FormatLegacy}, nil
	default:
		return nil, newError(CodeInvalidEnvelope, "codec", "unrecognized envelope format")
	}
}

// decryptPostQuantum reverses the hybrid path: decapsulate, derive, open.
func (s *Service) decryptPostQuantum(env *envelope.PostQuantum, privateKey []byte) ([]byte, *Error) {
	// Decode already validated the algorithm; a failure here means the
	// envelope was mutated between decode and use.
	alg, err := envelope.ParseAlgorithm(env.Algorithm)
	if err != nil {
		return nil, wrapError(CodeInvalidEnvelope, "codec", err, "unsupported algorithm %q", env.Algorithm)
	}

	if params, ok := envelope.ParamsForKEM(alg.KEM); ok && len(privateKey) != params.PrivateKeySize {
		return nil, newError(CodeInvalidKey, "input",
			"private key length %d does not match %s", len(privateKey), alg.KEM)
	}

	sharedSecret, err := s.provider.Decapsulate(alg.KEM, env.EncapsulatedKey, privateKey)
	if err != nil {
		return nil, errDecryptionFailed(err)
	}
	defer crypto.Zeroize(sharedSecret)

	aad := []byte(alg.ID())

	aesKey, err := crypto.DeriveEnvelopeKey(sharedSecret, aad, env.EncapsulatedKey)
	if err != nil {
		return nil, errDecryptionFailed(err)
	}
	defer crypto.Zeroize(aesKey)

	plaintext, err := crypto.OpenAESGCM(aesKey, env.Nonce, aad, env.Ciphertext, env.AuthTag)
	if err != nil {
		return nil, errDecryptionFailed(err)
	}
	return plaintext, nil
}

// decryptLegacy routes a legacy envelope to the classical scheme.
func (s *Service) decryptLegacy(env *envelope.Legacy, privateKey []byte) ([]byte, *Error) {
	plaintext, err := classical.Decrypt(privateKey, env.Ciphertext)
	if err != nil {
		if errors.Is(err, classical.ErrInvalidPrivateKey) {
			return nil, wrapError(CodeInvalidKey, "input", err, "private key is not a classical key")
		}
		return nil, errDecryptionFailed(err)
	}
	return plaintext, nil
}
