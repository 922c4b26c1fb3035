package crypto

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"fmt"

	"github.com/mr-tron/base58"
)

type ed25519Suite struct{}

// NewEd25519Suite returns the Ed25519Signature2018 suite. Keys are base58:
// 64 byte private keys (seed || public) and 32 byte public keys.
func NewEd25519Suite() Suite {
	return ed25519Suite{}
}

func (ed25519Suite) Algorithm() Algorithm        { return Ed25519Signature2018 }
func (ed25519Suite) VerificationKeyType() string { return "Ed25519VerificationKey2018" }
func (ed25519Suite) PublicKeyField() string      { return "publicKeyBase58" }
func (ed25519Suite) JWSAlgorithm() string        { return "EdDSA" }

func (ed25519Suite) GenerateKeyPair(opts *GenerateKeyOptions) (*KeyPair, error) {
	var priv ed25519.PrivateKey
	switch {
	case opts.Seed != nil:
		if len(opts.Seed) != ed25519.SeedSize {
			return nil, fmt.Errorf("%w: ed25519 seed must be %d bytes, got %d", ErrKeyGeneration, ed25519.SeedSize, len(opts.Seed))
		}
		priv = ed25519.NewKeyFromSeed(opts.Seed)
	default:
		r := opts.Rand
		if r == nil {
			r = rand.Reader
		}
		var err error
		_, priv, err = ed25519.GenerateKey(r)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
		}
	}

	return &KeyPair{
		Algorithm:  Ed25519Signature2018,
		PublicKey:  base58.Encode(priv.Public().(ed25519.PublicKey)),
		PrivateKey: base58.Encode(priv),
	}, nil
}

func (s ed25519Suite) PublicKeyFromPrivateKey(privateKey string) (string, error) {
	priv, err := parseEd25519PrivateKey(privateKey)
	if err != nil {
		return "", err
	}
	return base58.Encode(priv.Public().(ed25519.PublicKey)), nil
}

func (ed25519Suite) Sign(privateKey string, data []byte) ([]byte, error) {
	priv, err := parseEd25519PrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	return ed25519.Sign(priv, data), nil
}

func (ed25519Suite) Verify(publicKey string, data, signature []byte) error {
	raw, err := base58.Decode(publicKey)
	if err != nil {
		return fmt.Errorf("%w: ed25519 public key is not base58: %v", ErrInvalidKey, err)
	}
	if len(raw) != ed25519.PublicKeySize {
		return fmt.Errorf("%w: ed25519 public key must be %d bytes, got %d", ErrInvalidKey, ed25519.PublicKeySize, len(raw))
	}
	if !ed25519.Verify(raw, data, signature) {
		return ErrInvalidSignature
	}
	return nil
}

// parseEd25519PrivateKey accepts the 64 byte expanded form and a bare 32 byte seed.
func parseEd25519PrivateKey(privateKey string) (ed25519.PrivateKey, error) {
	raw, err := base58.Decode(privateKey)
	if err != nil {
		return nil, fmt.Errorf("%w: ed25519 private key is not base58: %v", ErrInvalidKey, err)
	}
	switch len(raw) {
	case ed25519.PrivateKeySize:
		priv := ed25519.PrivateKey(raw)
		// the trailing half must be the public key of the seed
		if !bytes.Equal(ed25519.NewKeyFromSeed(raw[:ed25519.SeedSize]), priv) {
			return nil, fmt.Errorf("%w: ed25519 private key is inconsistent", ErrInvalidKey)
		}
		return priv, nil
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	default:
		return nil, fmt.Errorf("%w: ed25519 private key must be %d bytes, got %d", ErrInvalidKey, ed25519.PrivateKeySize, len(raw))
	}
}
