package fieldseal

import (
	"bytes"

	"github.com/fieldseal/fieldseal-go/envelope"
	"github.com/fieldseal/fieldseal-go/internal/classical"
	"github.com/fieldseal/fieldseal-go/internal/crypto"
)

// KeyPairFromPrivateKey reconstructs a full keypair from a base64 ML-KEM
// private key at the given security level. The public key is embedded in the
// private key (FIPS 203 key layout), so hosts that stored only the private
// key can recover the keypair without regenerating. GeneratedAt is zero for a
// reconstructed keypair.
func KeyPairFromPrivateKey(privateKeyB64 string, level SecurityLevel) (*KeyPair, error) {
	parsed, err := ParseSecurityLevel(string(level))
	if err != nil {
		return nil, wrapError(CodeInvalidInput, "input", err, "security level must be %q or %q",
			SecurityLevelStandard, SecurityLevelHigh)
	}

	privateKey, err := crypto.DecodeBase64(privateKeyB64)
	if err != nil {
		return nil, wrapError(CodeInvalidKey, "input", err, "private key is not valid base64")
	}
	defer crypto.Zeroize(privateKey)

	params, _ := envelope.ParamsForKEM(parsed.KEM())
	if len(privateKey) != params.PrivateKeySize {
		return nil, newError(CodeInvalidKey, "input",
			"private key length %d does not match %s", len(privateKey), parsed.KEM())
	}

	offset := params.PublicKeyOffset()
	publicKey := make([]byte, params.PublicKeySize)
	copy(publicKey, privateKey[offset:offset+params.PublicKeySize])

	return &KeyPair{
		PublicKey:     crypto.ToBase64(publicKey),
		PrivateKey:    crypto.ToBase64(privateKey),
		Algorithm:     parsed.Algorithm(),
		SecurityLevel: parsed,
		KeySize:       KeySizes{PublicKey: params.PublicKeySize, PrivateKey: params.PrivateKeySize},
	}, nil
}

// ValidateKeyPair reports whether a keypair is structurally consistent: both
// keys decode, their sizes match the keypair's algorithm, the stated security
// level agrees with the algorithm, and the public key matches the one carried
// inside the private key. No cryptographic operation beyond parsing is
// performed; a valid shape does not prove the keypair round-trips.
func ValidateKeyPair(kp *KeyPair) bool {
	if kp == nil || kp.PublicKey == "" || kp.PrivateKey == "" {
		return false
	}

	publicKey, err := crypto.DecodeBase64(kp.PublicKey)
	if err != nil {
		return false
	}
	privateKey, err := crypto.DecodeBase64(kp.PrivateKey)
	if err != nil {
		return false
	}
	defer crypto.Zeroize(privateKey)

	if kp.Algorithm == classical.SchemeID {
		return classical.ValidKeyPair(publicKey, privateKey)
	}

	alg, err := envelope.ParseAlgorithm(kp.Algorithm)
	if err != nil {
		return false
	}
	if levelForKEM(alg.KEM) != kp.SecurityLevel {
		return false
	}
	params, ok := envelope.ParamsForKEM(alg.KEM)
	if !ok {
		return false
	}
	if len(publicKey) != params.PublicKeySize || len(privateKey) != params.PrivateKeySize {
		return false
	}

	offset := params.PublicKeyOffset()
	return bytes.Equal(publicKey, privateKey[offset:offset+params.PublicKeySize])
}
