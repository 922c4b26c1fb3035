package keyresolver

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/pilacorp/go-claim-sdk/claim/common/crypto"
)

// ErrUnresolvableIssuer is returned when no public key can be obtained for an issuer.
var ErrUnresolvableIssuer = errors.New("unresolvable issuer")

// IsDataURL reports whether issuer embeds its key material.
func IsDataURL(issuer string) bool {
	return strings.HasPrefix(issuer, "data:")
}

// DecodeIssuer extracts the key descriptor from a data: issuer reference.
// The legacy "data:,<base58>" form always denotes an Ed25519 key.
func DecodeIssuer(issuer string) (*crypto.IssuerKey, error) {
	switch {
	case strings.HasPrefix(issuer, crypto.IssuerPrefix):
		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(issuer, crypto.IssuerPrefix))
		if err != nil {
			return nil, fmt.Errorf("%w: issuer payload is not base64: %v", ErrUnresolvableIssuer, err)
		}

		var key crypto.IssuerKey
		if err := json.Unmarshal(raw, &key); err != nil {
			return nil, fmt.Errorf("%w: issuer payload is not a key descriptor: %v", ErrUnresolvableIssuer, err)
		}
		if key.Algorithm == "" || key.PublicKey == "" {
			return nil, fmt.Errorf("%w: issuer payload lacks algorithm or publicKey", ErrUnresolvableIssuer)
		}
		return &key, nil

	case strings.HasPrefix(issuer, crypto.LegacyIssuerPrefix):
		pub := strings.TrimPrefix(issuer, crypto.LegacyIssuerPrefix)
		if pub == "" {
			return nil, fmt.Errorf("%w: empty legacy issuer", ErrUnresolvableIssuer)
		}
		return &crypto.IssuerKey{Algorithm: crypto.Ed25519Signature2018, PublicKey: pub}, nil

	default:
		return nil, fmt.Errorf("%w: %q is not a data URL issuer", ErrUnresolvableIssuer, issuer)
	}
}
