package fieldseal

import (
	"errors"
	"time"

	"github.com/fieldseal/fieldseal-go/envelope"
	"github.com/fieldseal/fieldseal-go/internal/classical"
	"github.com/fieldseal/fieldseal-go/internal/crypto"
)

// The fallback policy substitutes the classical RSA scheme when the
// quantum-safe path fails during keypair generation or encryption. Exactly
// one classical attempt is made; decryption never falls back, because format
// detection already routes it deterministically.

// fallbackGenerateKeyPair attempts classical keypair generation after a
// quantum-safe failure. Results are tagged FallbackUsed.
func (s *Service) fallbackGenerateKeyPair(qErr *Error) (*KeyPair, error) {
	if s.fallbackDisabled {
		return nil, qErr
	}

	pub, priv, err := classical.GenerateKeyPair(s.rand)
	if err != nil {
		cErr := wrapError(CodeKeyPairGenerationFailed, "fallback", err, "classical keypair generation failed")
		return nil, combineFailures(qErr, cErr)
	}
	defer crypto.Zeroize(priv)

	return &KeyPair{
		PublicKey:     crypto.ToBase64(pub),
		PrivateKey:    crypto.ToBase64(priv),
		Algorithm:     classical.SchemeID,
		SecurityLevel: SecurityLevelStandard,
		KeySize:       KeySizes{PublicKey: len(pub), PrivateKey: len(priv)},
		GeneratedAt:   time.Now().UTC(),
		FallbackUsed:  true,
	}, nil
}

// fallbackEncrypt attempts classical encryption after a quantum-safe
// failure, producing a legacy-v1 envelope tagged FallbackUsed.
func (s *Service) fallbackEncrypt(data, publicKey []byte, qErr *Error) (*EncryptResult, error) {
	if s.fallbackDisabled {
		return nil, qErr
	}

	blob, err := classical.Encrypt(s.rand, publicKey, data)
	if err != nil {
		cErr := classifyClassicalEncryptError(err)
		return nil, combineFailures(qErr, cErr)
	}

	env := &envelope.Legacy{
		Algorithm:  classical.SchemeID,
		Ciphertext: blob,
	}
	raw, err := envelope.Encode(env)
	if err != nil {
		cErr := wrapError(CodeEncryptionFailed, "fallback", err, "envelope encoding failed")
		return nil, combineFailures(qErr, cErr)
	}

	return &EncryptResult{
		Envelope:      env,
		Raw:           raw,
		SecurityLevel: SecurityLevelStandard,
		FallbackUsed:  true,
		DataSize:      len(data),
		EncryptedSize: len(raw),
	}, nil
}

func classifyClassicalEncryptError(err error) *Error {
	if errors.Is(err, classical.ErrInvalidPublicKey) {
		return wrapError(CodeInvalidKey, "fallback", err, "public key is not a classical key")
	}
	return wrapError(CodeEncryptionFailed, "fallback", err, "classical encryption failed")
}

// combineFailures builds the composite error for a double failure, classified
// by the more specific of the two codes: caller-fixable codes win over
// environment codes, since they indicate a problem retrying cannot fix.
func combineFailures(qErr, cErr *Error) *Error {
	return &Error{
		Code:    moreSpecific(qErr.Code, cErr.Code),
		Stage:   "fallback",
		Message: "post-quantum path failed (" + qErr.Message + "); classical fallback failed (" + cErr.Message + ")",
		Err:     errors.Join(qErr, cErr),
	}
}

// codeSpecificity ranks codes for composite classification. Higher is more
// specific.
func codeSpecificity(code ErrorCode) int {
	switch code {
	case CodeInvalidInput, CodeInvalidKey:
		return 2
	case CodeInvalidEnvelope:
		return 1
	default:
		return 0
	}
}

func moreSpecific(a, b ErrorCode) ErrorCode {
	if codeSpecificity(b) > codeSpecificity(a) {
		return b
	}
	return a
}
