package crypto

import "github.com/google/uuid"

// SigningParameters is everything a signer needs besides the claim.
type SigningParameters struct {
	PrivateKey string
	Algorithm  Algorithm
	// Nonce is a fresh random value bound into each proof.
	Nonce string
}

// NewSigningParameters checks that privateKey is usable with alg.
func (r *Registry) NewSigningParameters(privateKey string, alg Algorithm) (*SigningParameters, error) {
	if _, err := r.PublicKeyFromPrivateKey(alg, privateKey); err != nil {
		return nil, err
	}
	return &SigningParameters{
		PrivateKey: privateKey,
		Algorithm:  alg,
		Nonce:      uuid.NewString(),
	}, nil
}

// NewSigningParameters is Registry.NewSigningParameters on the built-in suites.
func NewSigningParameters(privateKey string, alg Algorithm) (*SigningParameters, error) {
	return defaultRegistry.NewSigningParameters(privateKey, alg)
}
