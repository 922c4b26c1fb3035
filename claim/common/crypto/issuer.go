package crypto

import (
	"encoding/base64"
	"encoding/json"
)

const (
	// IssuerPrefix starts an issuer reference that embeds a key descriptor.
	IssuerPrefix = "data:;base64,"
	// LegacyIssuerPrefix starts an issuer reference holding a bare base58
	// Ed25519 public key.
	LegacyIssuerPrefix = "data:,"
)

// IssuerKey is the descriptor embedded in an issuer reference.
type IssuerKey struct {
	Algorithm Algorithm `json:"algorithm"`
	PublicKey string    `json:"publicKey"`
}

// EncodePublicKeyAsIssuer builds a self-describing issuer reference. The
// public key is not validated.
func EncodePublicKeyAsIssuer(publicKey string, alg Algorithm) string {
	// two string fields cannot fail to marshal
	raw, _ := json.Marshal(IssuerKey{Algorithm: alg, PublicKey: publicKey})
	return IssuerPrefix + base64.StdEncoding.EncodeToString(raw)
}

// EncodePrivateKeyAsIssuer derives the public key and encodes it as an issuer.
func (r *Registry) EncodePrivateKeyAsIssuer(privateKey string, alg Algorithm) (string, error) {
	pub, err := r.PublicKeyFromPrivateKey(alg, privateKey)
	if err != nil {
		return "", err
	}
	return EncodePublicKeyAsIssuer(pub, alg), nil
}

// EncodePrivateKeyAsIssuer is Registry.EncodePrivateKeyAsIssuer on the built-in suites.
func EncodePrivateKeyAsIssuer(privateKey string, alg Algorithm) (string, error) {
	return defaultRegistry.EncodePrivateKeyAsIssuer(privateKey, alg)
}
