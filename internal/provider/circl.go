package provider

import (
	"fmt"
	"sync"

	"github.com/cloudflare/circl/kem"
	"github.com/cloudflare/circl/kem/schemes"
)

// CIRCL is the Provider implementation backed by Cloudflare's CIRCL library.
// Scheme lookup goes through the library's registry so that algorithm
// availability reflects what the linked library actually advertises.
type CIRCL struct {
	required []string

	mu    sync.Mutex
	ready bool
}

// NewCIRCL creates a CIRCL provider that requires the given KEM identifiers
// to be available. Initialize fails if any of them is absent from the
// library's advertised schemes.
func NewCIRCL(required ...string) *CIRCL {
	return &CIRCL{required: required}
}

// Name implements Provider.
func (p *CIRCL) Name() string { return "circl" }

// Initialize implements Provider. Exactly one verification pass runs even
// under concurrent first use; callers racing here block on the mutex and
// observe the outcome. Success is cached; failure is not, so a subsequent
// call re-verifies.
func (p *CIRCL) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready {
		return nil
	}

	for _, id := range p.required {
		if schemes.ByName(id) == nil {
			return fmt.Errorf("%w: %s", ErrUnsupported, id)
		}
	}

	p.ready = true
	return nil
}

// Supports implements Provider.
func (p *CIRCL) Supports(kemID string) bool {
	return schemes.ByName(kemID) != nil
}

// KeySizes implements Provider.
func (p *CIRCL) KeySizes(kemID string) (KeySizes, error) {
	sch, err := p.scheme(kemID)
	if err != nil {
		return KeySizes{}, err
	}
	return KeySizes{
		PublicKey:    sch.PublicKeySize(),
		PrivateKey:   sch.PrivateKeySize(),
		Ciphertext:   sch.CiphertextSize(),
		SharedSecret: sch.SharedKeySize(),
	}, nil
}

// GenerateKeyPair implements Provider.
func (p *CIRCL) GenerateKeyPair(kemID string) ([]byte, []byte, error) {
	sch, err := p.scheme(kemID)
	if err != nil {
		return nil, nil, err
	}

	pub, priv, err := sch.GenerateKeyPair()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrKeyGen, kemID, err)
	}

	pubBytes, err := pub.MarshalBinary()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrKeyGen, kemID, err)
	}
	privBytes, err := priv.MarshalBinary()
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrKeyGen, kemID, err)
	}

	if len(pubBytes) != sch.PublicKeySize() || len(privBytes) != sch.PrivateKeySize() {
		return nil, nil, fmt.Errorf("%w: %s: library returned malformed key material", ErrKeyGen, kemID)
	}

	return pubBytes, privBytes, nil
}

// Encapsulate implements Provider.
func (p *CIRCL) Encapsulate(kemID string, publicKey []byte) ([]byte, []byte, error) {
	sch, err := p.scheme(kemID)
	if err != nil {
		return nil, nil, err
	}

	pub, err := sch.UnmarshalBinaryPublicKey(publicKey)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrEncapsulate, kemID, err)
	}

	ct, ss, err := sch.Encapsulate(pub)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s: %w", ErrEncapsulate, kemID, err)
	}

	if len(ct) != sch.CiphertextSize() || len(ss) != sch.SharedKeySize() {
		return nil, nil, fmt.Errorf("%w: %s: library returned malformed output", ErrEncapsulate, kemID)
	}

	return ct, ss, nil
}

// Decapsulate implements Provider.
func (p *CIRCL) Decapsulate(kemID string, kemCiphertext, privateKey []byte) ([]byte, error) {
	sch, err := p.scheme(kemID)
	if err != nil {
		return nil, err
	}

	priv, err := sch.UnmarshalBinaryPrivateKey(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecapsulate, kemID, err)
	}

	ss, err := sch.Decapsulate(priv, kemCiphertext)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecapsulate, kemID, err)
	}

	if len(ss) != sch.SharedKeySize() {
		return nil, fmt.Errorf("%w: %s: library returned malformed output", ErrDecapsulate, kemID)
	}

	return ss, nil
}

// scheme resolves a KEM identifier after checking initialization state.
func (p *CIRCL) scheme(kemID string) (kem.Scheme, error) {
	p.mu.Lock()
	ready := p.ready
	p.mu.Unlock()

	if !ready {
		return nil, ErrNotInitialized
	}

	sch := schemes.ByName(kemID)
	if sch == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, kemID)
	}
	return sch, nil
}
