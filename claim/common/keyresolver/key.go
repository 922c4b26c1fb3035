package keyresolver

import (
	"context"
	"fmt"

	"github.com/pilacorp/go-claim-sdk/claim/common/crypto"
)

// Key is a resolved verification key.
type Key struct {
	ID             string
	Type           string
	Owner          string
	Algorithm      crypto.Algorithm
	PublicKeyField string
	PublicKey      string
}

// Document renders k as the JSON-LD key document handed to document loaders:
// the key itself under "publicKey" and an owner listing it.
func (k *Key) Document() map[string]interface{} {
	key := map[string]interface{}{
		"id":             k.ID,
		"type":           k.Type,
		"owner":          k.Owner,
		k.PublicKeyField: k.PublicKey,
	}
	return map[string]interface{}{
		"owner": map[string]interface{}{
			"id":        k.Owner,
			"publicKey": []interface{}{key},
		},
		"publicKey": key,
	}
}

func keyFromIssuer(registry *crypto.Registry, issuer string) (*Key, error) {
	desc, err := DecodeIssuer(issuer)
	if err != nil {
		return nil, err
	}
	suite, err := registry.Suite(desc.Algorithm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnresolvableIssuer, err)
	}
	return &Key{
		ID:             issuer,
		Type:           suite.VerificationKeyType(),
		Owner:          issuer,
		Algorithm:      suite.Algorithm(),
		PublicKeyField: suite.PublicKeyField(),
		PublicKey:      desc.PublicKey,
	}, nil
}

// keyFromDocument reads a key out of a fetched document. The document is
// either a key itself or carries one under "publicKey".
func keyFromDocument(registry *crypto.Registry, url string, doc interface{}) (*Key, error) {
	m, ok := doc.(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("%w: document at %s is not an object", ErrUnresolvableIssuer, url)
	}

	switch pk := m["publicKey"].(type) {
	case map[string]interface{}:
		m = pk
	case []interface{}:
		if len(pk) == 0 {
			return nil, fmt.Errorf("%w: document at %s lists no keys", ErrUnresolvableIssuer, url)
		}
		first, ok := pk[0].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: document at %s has a malformed key entry", ErrUnresolvableIssuer, url)
		}
		m = first
	}

	keyType, _ := m["type"].(string)
	suite, err := registry.SuiteForKeyType(keyType)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnresolvableIssuer, err)
	}
	pub, _ := m[suite.PublicKeyField()].(string)
	if pub == "" {
		return nil, fmt.Errorf("%w: key at %s has no %s", ErrUnresolvableIssuer, url, suite.PublicKeyField())
	}

	key := &Key{
		ID:             url,
		Type:           keyType,
		Owner:          url,
		Algorithm:      suite.Algorithm(),
		PublicKeyField: suite.PublicKeyField(),
		PublicKey:      pub,
	}
	if id, ok := m["id"].(string); ok && id != "" {
		key.ID = id
	}
	if owner, ok := m["owner"].(string); ok && owner != "" {
		key.Owner = owner
	}
	return key, nil
}

// KeyResolver turns an issuer reference into a verification key.
type KeyResolver interface {
	Resolve(ctx context.Context, issuer string) (*Key, error)
}
