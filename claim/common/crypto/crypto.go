package crypto

import (
	"errors"
	"fmt"
	"io"
	"sort"
)

// Algorithm names a signature suite.
type Algorithm string

const (
	Ed25519Signature2018        Algorithm = "Ed25519Signature2018"
	RsaSignature2018            Algorithm = "RsaSignature2018"
	EcdsaSecp256k1Signature2019 Algorithm = "EcdsaSecp256k1Signature2019"
)

var (
	// ErrUnsupportedAlgorithm keeps the historical wording, callers match on it.
	ErrUnsupportedAlgorithm = errors.New("Unsupported Signing Algorithm") //nolint:staticcheck
	ErrKeyGeneration        = errors.New("key generation failed")
	ErrInvalidKey           = errors.New("invalid key")
	ErrInvalidSignature     = errors.New("invalid signature")
)

// KeyPair holds string encoded key material for a suite.
type KeyPair struct {
	Algorithm  Algorithm
	PublicKey  string
	PrivateKey string
}

// GenerateKeyOptions tunes key generation. The zero value is valid.
type GenerateKeyOptions struct {
	// Seed makes Ed25519 and secp256k1 generation deterministic. Must be 32 bytes.
	Seed []byte
	// Bits is the RSA modulus size, 2048 when zero.
	Bits int
	// Rand overrides the entropy source, crypto/rand when nil.
	Rand io.Reader
}

// Suite is a signature suite: key formats, JWS algorithm and raw sign/verify.
type Suite interface {
	Algorithm() Algorithm
	// VerificationKeyType is the JSON-LD type of the public key document.
	VerificationKeyType() string
	// PublicKeyField is the key document attribute carrying the public key.
	PublicKeyField() string
	// JWSAlgorithm is the "alg" header value.
	JWSAlgorithm() string

	GenerateKeyPair(opts *GenerateKeyOptions) (*KeyPair, error)
	PublicKeyFromPrivateKey(privateKey string) (string, error)
	Sign(privateKey string, data []byte) ([]byte, error)
	Verify(publicKey string, data, signature []byte) error
}

// Registry maps algorithm names to suites.
type Registry struct {
	suites map[Algorithm]Suite
}

// NewRegistry returns a registry holding suites.
func NewRegistry(suites ...Suite) *Registry {
	r := &Registry{suites: make(map[Algorithm]Suite, len(suites))}
	for _, s := range suites {
		r.Register(s)
	}
	return r
}

// DefaultRegistry returns a fresh registry with the built-in suites.
func DefaultRegistry() *Registry {
	return NewRegistry(NewEd25519Suite(), NewRsaSuite(), NewSecp256k1Suite())
}

var defaultRegistry = DefaultRegistry()

// Register adds or replaces a suite. Not safe for concurrent use with lookups.
func (r *Registry) Register(s Suite) {
	r.suites[s.Algorithm()] = s
}

// Suite looks up the suite for alg.
func (r *Registry) Suite(alg Algorithm) (Suite, error) {
	s, ok := r.suites[alg]
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUnsupportedAlgorithm, alg)
	}
	return s, nil
}

// SuiteForKeyType looks up a suite by its verification key type.
func (r *Registry) SuiteForKeyType(keyType string) (Suite, error) {
	for _, s := range r.suites {
		if s.VerificationKeyType() == keyType {
			return s, nil
		}
	}
	return nil, fmt.Errorf("%w %s", ErrUnsupportedAlgorithm, keyType)
}

// ParseAlgorithm validates name against the registered suites.
func (r *Registry) ParseAlgorithm(name string) (Algorithm, error) {
	alg := Algorithm(name)
	if _, err := r.Suite(alg); err != nil {
		return "", err
	}
	return alg, nil
}

// Algorithms lists the registered algorithms in lexical order.
func (r *Registry) Algorithms() []Algorithm {
	out := make([]Algorithm, 0, len(r.suites))
	for alg := range r.suites {
		out = append(out, alg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// GenerateKeyPair creates a fresh key pair for alg.
func (r *Registry) GenerateKeyPair(alg Algorithm, opts *GenerateKeyOptions) (*KeyPair, error) {
	s, err := r.Suite(alg)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = &GenerateKeyOptions{}
	}
	return s.GenerateKeyPair(opts)
}

// PublicKeyFromPrivateKey derives the encoded public key for alg.
func (r *Registry) PublicKeyFromPrivateKey(alg Algorithm, privateKey string) (string, error) {
	s, err := r.Suite(alg)
	if err != nil {
		return "", err
	}
	return s.PublicKeyFromPrivateKey(privateKey)
}

// ParseAlgorithm validates name against the built-in suites.
func ParseAlgorithm(name string) (Algorithm, error) {
	return defaultRegistry.ParseAlgorithm(name)
}

// GenerateKeyPair creates a key pair with one of the built-in suites.
func GenerateKeyPair(alg Algorithm, opts *GenerateKeyOptions) (*KeyPair, error) {
	return defaultRegistry.GenerateKeyPair(alg, opts)
}

// PublicKeyFromPrivateKey derives a public key with one of the built-in suites.
func PublicKeyFromPrivateKey(alg Algorithm, privateKey string) (string, error) {
	return defaultRegistry.PublicKeyFromPrivateKey(alg, privateKey)
}

// GenerateEd25519Base58Keys returns base58 keys derived from a 32 byte seed.
// A nil entropy draws a random seed.
func GenerateEd25519Base58Keys(entropy []byte) (*KeyPair, error) {
	return GenerateKeyPair(Ed25519Signature2018, &GenerateKeyOptions{Seed: entropy})
}

// GenerateRsaKeyPems returns a PKCS#1 private key and a PKIX public key, PEM encoded.
func GenerateRsaKeyPems(bits int) (*KeyPair, error) {
	return GenerateKeyPair(RsaSignature2018, &GenerateKeyOptions{Bits: bits})
}

// GenerateSecp256k1HexKeys returns a hex private key and a compressed hex public key.
func GenerateSecp256k1HexKeys() (*KeyPair, error) {
	return GenerateKeyPair(EcdsaSecp256k1Signature2019, nil)
}
