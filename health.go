package fieldseal

import (
	"bytes"
	"time"

	"github.com/fieldseal/fieldseal-go/envelope"
	"github.com/fieldseal/fieldseal-go/internal/classical"
	"github.com/fieldseal/fieldseal-go/internal/crypto"
)

// AlgorithmStatus is the per-algorithm outcome of a health check.
type AlgorithmStatus struct {
	// Functional is true when a live generate→encapsulate→decapsulate round
	// trip produced matching shared secrets.
	Functional bool `json:"functional"`
	// KeySizes reports the structural key sizes observed during the check.
	KeySizes KeySizes `json:"keySizes"`
	// Error describes the failure when Functional is false.
	Error string `json:"error,omitempty"`
}

// VerificationReport is produced fresh by every health check; it is never
// persisted and contains no secret material.
type VerificationReport struct {
	// ProviderAvailable is true iff provider initialization succeeded.
	ProviderAvailable bool `json:"providerAvailable"`
	// Functional is true iff at least one algorithm round-trips successfully.
	Functional bool `json:"functional"`
	// Algorithms maps composite algorithm identifiers to their status.
	Algorithms map[string]AlgorithmStatus `json:"algorithms"`
	// CheckedAt is when the report was produced.
	CheckedAt time.Time `json:"checkedAt"`
}

// Verify runs a live self-test across the supported algorithms: for each, a
// fresh keypair is generated, a secret encapsulated against it, and the
// decapsulated secret compared byte-for-byte. Secret material is zeroed and
// never enters the report.
func (s *Service) Verify() *VerificationReport {
	report := &VerificationReport{
		Algorithms: make(map[string]AlgorithmStatus),
		CheckedAt:  time.Now().UTC(),
	}

	levels := []SecurityLevel{SecurityLevelStandard, SecurityLevelHigh}

	if err := s.ensureReady(); err != nil {
		for _, level := range levels {
			report.Algorithms[level.Algorithm()] = AlgorithmStatus{Error: err.Message}
		}
		return report
	}
	report.ProviderAvailable = true

	for _, level := range levels {
		status := s.verifyAlgorithm(level)
		report.Algorithms[level.Algorithm()] = status
		if status.Functional {
			report.Functional = true
		}
	}
	return report
}

func (s *Service) verifyAlgorithm(level SecurityLevel) AlgorithmStatus {
	kemID := level.KEM()

	pub, priv, err := s.provider.GenerateKeyPair(kemID)
	if err != nil {
		return AlgorithmStatus{Error: "keypair generation failed"}
	}
	defer crypto.Zeroize(priv)

	status := AlgorithmStatus{
		KeySizes: KeySizes{PublicKey: len(pub), PrivateKey: len(priv)},
	}

	kemCiphertext, sent, err := s.provider.Encapsulate(kemID, pub)
	if err != nil {
		status.Error = "encapsulation failed"
		return status
	}
	defer crypto.Zeroize(sent)

	received, err := s.provider.Decapsulate(kemID, kemCiphertext, priv)
	if err != nil {
		status.Error = "decapsulation failed"
		return status
	}
	defer crypto.Zeroize(received)

	if !bytes.Equal(sent, received) {
		status.Error = "shared secret mismatch"
		return status
	}

	status.Functional = true
	return status
}

// AlgorithmInfo is a static description of a supported algorithm.
type AlgorithmInfo struct {
	ID            string        `json:"id"`
	KEM           string        `json:"kem,omitempty"`
	AEAD          string        `json:"aead,omitempty"`
	SecurityLevel SecurityLevel `json:"securityLevel"`
	Fallback      bool          `json:"fallback,omitempty"`
	Description   string        `json:"description"`
}

// Capabilities describes the supported algorithms and their security-level
// mapping. The description is static; use [Service.Verify] for live status.
func Capabilities() []AlgorithmInfo {
	return []AlgorithmInfo{
		{
			ID:            envelope.AlgorithmMLKEM768,
			KEM:           envelope.KEMMLKEM768,
			AEAD:          envelope.AEADAES256GCM,
			SecurityLevel: SecurityLevelStandard,
			Description:   "ML-KEM-768 (NIST FIPS 203) hybrid with AES-256-GCM; standard security level",
		},
		{
			ID:            envelope.AlgorithmMLKEM1024,
			KEM:           envelope.KEMMLKEM1024,
			AEAD:          envelope.AEADAES256GCM,
			SecurityLevel: SecurityLevelHigh,
			Description:   "ML-KEM-1024 (NIST FIPS 203) hybrid with AES-256-GCM; high security level",
		},
		{
			ID:            classical.SchemeID,
			SecurityLevel: SecurityLevelStandard,
			Fallback:      true,
			Description:   "RSA-2048-OAEP-SHA256 wrapping AES-256-GCM; classical fallback, legacy envelopes",
		},
	}
}
