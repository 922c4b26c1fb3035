package crypto

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

type secp256k1Suite struct{}

// NewSecp256k1Suite returns the EcdsaSecp256k1Signature2019 suite. Private
// keys are 32 byte hex (0x prefix optional), public keys are compressed hex.
// Signatures are the 64 byte [R || S] form over SHA-256.
func NewSecp256k1Suite() Suite {
	return secp256k1Suite{}
}

func (secp256k1Suite) Algorithm() Algorithm        { return EcdsaSecp256k1Signature2019 }
func (secp256k1Suite) VerificationKeyType() string { return "EcdsaSecp256k1VerificationKey2019" }
func (secp256k1Suite) PublicKeyField() string      { return "publicKeyHex" }
func (secp256k1Suite) JWSAlgorithm() string        { return "ES256K" }

func (secp256k1Suite) GenerateKeyPair(opts *GenerateKeyOptions) (*KeyPair, error) {
	var priv *secp256k1.PrivateKey
	if opts.Seed != nil {
		if len(opts.Seed) != secp256k1.PrivKeyBytesLen {
			return nil, fmt.Errorf("%w: secp256k1 seed must be %d bytes, got %d", ErrKeyGeneration, secp256k1.PrivKeyBytesLen, len(opts.Seed))
		}
		priv = secp256k1.PrivKeyFromBytes(opts.Seed)
	} else {
		var err error
		priv, err = secp256k1.GeneratePrivateKey()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrKeyGeneration, err)
		}
	}

	return &KeyPair{
		Algorithm:  EcdsaSecp256k1Signature2019,
		PublicKey:  hex.EncodeToString(priv.PubKey().SerializeCompressed()),
		PrivateKey: hex.EncodeToString(priv.Serialize()),
	}, nil
}

func (secp256k1Suite) PublicKeyFromPrivateKey(privateKey string) (string, error) {
	priv, err := ethcrypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	return hex.EncodeToString(ethcrypto.CompressPubkey(&priv.PublicKey)), nil
}

func (secp256k1Suite) Sign(privateKey string, data []byte) ([]byte, error) {
	priv, err := ethcrypto.HexToECDSA(strings.TrimPrefix(privateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	digest := sha256.Sum256(data)
	signature, err := ethcrypto.Sign(digest[:], priv)
	if err != nil {
		return nil, fmt.Errorf("ecdsa: sign error: %w", err)
	}

	// drop the recovery byte
	return signature[:64], nil
}

func (secp256k1Suite) Verify(publicKey string, data, signature []byte) error {
	raw, err := hex.DecodeString(strings.TrimPrefix(publicKey, "0x"))
	if err != nil {
		return fmt.Errorf("%w: secp256k1 public key is not hex: %v", ErrInvalidKey, err)
	}
	// accepts compressed and uncompressed points
	pub, err := btcec.ParsePubKey(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}

	if len(signature) == 65 {
		signature = signature[:64]
	}
	if len(signature) != 64 {
		return ErrInvalidSignature
	}

	digest := sha256.Sum256(data)
	if !ethcrypto.VerifySignature(pub.SerializeCompressed(), digest[:], signature) {
		return ErrInvalidSignature
	}
	return nil
}
