package fieldseal

import (
	"io"

	"github.com/fieldseal/fieldseal-go/internal/provider"
)

// Provider is the adapter interface over the KEM library. The default is the
// CIRCL-backed implementation; tests substitute failing providers to exercise
// the fallback path.
type Provider = provider.Provider

// serviceConfig holds configuration for the service.
type serviceConfig struct {
	provider         Provider
	rand             io.Reader
	fallbackDisabled bool
}

// Option configures the service.
type Option func(*serviceConfig)

// WithProvider sets a custom KEM provider. Intended for testing and for
// embedding alternative library bindings.
func WithProvider(p Provider) Option {
	return func(c *serviceConfig) {
		c.provider = p
	}
}

// WithRand sets the random source used for AES-GCM nonces and classical
// fallback key generation. KEM key generation draws from the library's own
// source. Defaults to crypto/rand. Intended for testing.
func WithRand(r io.Reader) Option {
	return func(c *serviceConfig) {
		c.rand = r
	}
}

// WithFallbackDisabled turns off the classical fallback: failures of the
// quantum-safe path surface directly instead of substituting RSA.
func WithFallbackDisabled() Option {
	return func(c *serviceConfig) {
		c.fallbackDisabled = true
	}
}
