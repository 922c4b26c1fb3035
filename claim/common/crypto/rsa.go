package crypto

import (
	stdcrypto "crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"encoding/pem"
	"fmt"
)

const defaultRsaBits = 2048

type rsaSuite struct{}

// NewRsaSuite returns the RsaSignature2018 suite. Private keys are PKCS#1 PEM
// (PKCS#8 is accepted), public keys are PKIX PEM. Signatures are RSASSA-PSS
// over SHA-256.
func NewRsaSuite() Suite {
	return rsaSuite{}
}

func (rsaSuite) Algorithm() Algorithm        { return RsaSignature2018 }
func (rsaSuite) VerificationKeyType() string { return "RsaVerificationKey2018" }
func (rsaSuite) PublicKeyField() string      { return "publicKeyPem" }
func (rsaSuite) JWSAlgorithm() string        { return "PS256" }

func (rsaSuite) GenerateKeyPair(opts *GenerateKeyOptions) (*KeyPair, error) {
	bits := opts.Bits
	if bits == 0 {
		bits = defaultRsaBits
	}
	r := opts.Rand
	if r == nil {
		r = rand.Reader
	}

	priv, err := rsa.GenerateKey(r, bits)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}
	pub, err := encodeRsaPublicKey(&priv.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
	}

	return &KeyPair{
		Algorithm: RsaSignature2018,
		PublicKey: pub,
		PrivateKey: string(pem.EncodeToMemory(&pem.Block{
			Type:  "RSA PRIVATE KEY",
			Bytes: x509.MarshalPKCS1PrivateKey(priv),
		})),
	}, nil
}

func (rsaSuite) PublicKeyFromPrivateKey(privateKey string) (string, error) {
	priv, err := parseRsaPrivateKey(privateKey)
	if err != nil {
		return "", err
	}
	return encodeRsaPublicKey(&priv.PublicKey)
}

func (rsaSuite) Sign(privateKey string, data []byte) ([]byte, error) {
	priv, err := parseRsaPrivateKey(privateKey)
	if err != nil {
		return nil, err
	}
	digest := sha256.Sum256(data)
	sig, err := rsa.SignPSS(rand.Reader, priv, stdcrypto.SHA256, digest[:], &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthEqualsHash,
	})
	if err != nil {
		return nil, fmt.Errorf("rsa: sign error: %w", err)
	}
	return sig, nil
}

func (rsaSuite) Verify(publicKey string, data, signature []byte) error {
	pub, err := parseRsaPublicKey(publicKey)
	if err != nil {
		return err
	}
	digest := sha256.Sum256(data)
	if err := rsa.VerifyPSS(pub, stdcrypto.SHA256, digest[:], signature, &rsa.PSSOptions{
		SaltLength: rsa.PSSSaltLengthAuto,
	}); err != nil {
		return ErrInvalidSignature
	}
	return nil
}

func encodeRsaPublicKey(pub *rsa.PublicKey) (string, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return "", err
	}
	return string(pem.EncodeToMemory(&pem.Block{Type: "PUBLIC KEY", Bytes: der})), nil
}

func parseRsaPrivateKey(privateKey string) (*rsa.PrivateKey, error) {
	block, _ := pem.Decode([]byte(privateKey))
	if block == nil {
		return nil, fmt.Errorf("%w: rsa private key is not PEM encoded", ErrInvalidKey)
	}

	switch block.Type {
	case "RSA PRIVATE KEY":
		priv, err := x509.ParsePKCS1PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return priv, nil
	case "PRIVATE KEY":
		key, err := x509.ParsePKCS8PrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		priv, ok := key.(*rsa.PrivateKey)
		if !ok {
			return nil, fmt.Errorf("%w: PKCS#8 key is %T, not RSA", ErrInvalidKey, key)
		}
		return priv, nil
	default:
		return nil, fmt.Errorf("%w: unexpected PEM block %q", ErrInvalidKey, block.Type)
	}
}

func parseRsaPublicKey(publicKey string) (*rsa.PublicKey, error) {
	block, _ := pem.Decode([]byte(publicKey))
	if block == nil {
		return nil, fmt.Errorf("%w: rsa public key is not PEM encoded", ErrInvalidKey)
	}

	switch block.Type {
	case "PUBLIC KEY":
		key, err := x509.ParsePKIXPublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		pub, ok := key.(*rsa.PublicKey)
		if !ok {
			return nil, fmt.Errorf("%w: PKIX key is %T, not RSA", ErrInvalidKey, key)
		}
		return pub, nil
	case "RSA PUBLIC KEY":
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
		}
		return pub, nil
	default:
		return nil, fmt.Errorf("%w: unexpected PEM block %q", ErrInvalidKey, block.Type)
	}
}
