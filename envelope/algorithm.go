package envelope

import (
	"errors"
	"fmt"
	"strings"
)

// Supported algorithm identifiers. Composite identifiers name the KEM and the
// AEAD joined by "+"; the classical identifier names the fallback scheme.
const (
	KEMMLKEM768  = "ML-KEM-768"
	KEMMLKEM1024 = "ML-KEM-1024"

	AEADAES256GCM = "AES-256-GCM"

	AlgorithmMLKEM768  = KEMMLKEM768 + "+" + AEADAES256GCM
	AlgorithmMLKEM1024 = KEMMLKEM1024 + "+" + AEADAES256GCM

	AlgorithmRSAOAEP = "RSA-2048-OAEP-SHA256"
)

// ErrUnknownAlgorithm is returned when an algorithm identifier is not one of
// the supported composite identifiers.
var ErrUnknownAlgorithm = errors.New("unknown algorithm identifier")

// Algorithm is the structured form of a composite algorithm identifier,
// parsed once during decode rather than re-split at every call site.
type Algorithm struct {
	// KEM is the key encapsulation mechanism identifier.
	KEM string
	// AEAD is the authenticated cipher identifier.
	AEAD string
}

// ID returns the composite wire identifier.
func (a Algorithm) ID() string {
	return a.KEM + "+" + a.AEAD
}

// ParseAlgorithm parses a composite "KEM+AEAD" identifier. Only the two
// supported hybrid suites are accepted.
func ParseAlgorithm(id string) (Algorithm, error) {
	kem, aead, ok := strings.Cut(id, "+")
	if !ok {
		return Algorithm{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, id)
	}

	a := Algorithm{KEM: kem, AEAD: aead}
	switch a.ID() {
	case AlgorithmMLKEM768, AlgorithmMLKEM1024:
		return a, nil
	}
	return Algorithm{}, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, id)
}

// KEMParams describes the published parameter sizes of a supported KEM, in
// bytes. Envelope validation uses these to reject encapsulated keys whose
// length does not match the stated algorithm.
type KEMParams struct {
	PublicKeySize  int
	PrivateKeySize int
	CiphertextSize int
	SharedKeySize  int
}

var kemParams = map[string]KEMParams{
	KEMMLKEM768: {
		PublicKeySize:  1184,
		PrivateKeySize: 2400,
		CiphertextSize: 1088,
		SharedKeySize:  32,
	},
	KEMMLKEM1024: {
		PublicKeySize:  1568,
		PrivateKeySize: 3168,
		CiphertextSize: 1568,
		SharedKeySize:  32,
	},
}

// PublicKeyOffset returns the byte offset of the embedded public key within
// a private key. The FIPS 203 private key layout is
// sk_pke || pk || H(pk) || z, with H(pk) and z each 32 bytes.
func (p KEMParams) PublicKeyOffset() int {
	return p.PrivateKeySize - p.PublicKeySize - 64
}

// ParamsForKEM returns the parameter sizes for a supported KEM identifier.
func ParamsForKEM(kem string) (KEMParams, bool) {
	p, ok := kemParams[kem]
	return p, ok
}
