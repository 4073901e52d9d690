package crypto

// Zeroize overwrites a secret buffer with zeros. Private keys, shared
// secrets, and derived keys are zeroed on every exit path rather than left
// to garbage collection timing.
func Zeroize(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
