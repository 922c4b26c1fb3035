package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pilacorp/go-claim-sdk/claim/common/crypto"
	"github.com/pilacorp/go-claim-sdk/claim/common/ldcontext"
	"github.com/pilacorp/go-claim-sdk/claim/vc"
)

// bind ties the named flags of cmd to viper keys once cmd is selected, since
// several commands share flag names.
func (a *app) bind(names ...string) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		for _, name := range names {
			if err := a.v.BindPFlag(name, cmd.Flags().Lookup(name)); err != nil {
				return err
			}
		}
		return nil
	}
}

type keyOutput struct {
	Algorithm  crypto.Algorithm `json:"algorithm"`
	PublicKey  string           `json:"publicKey"`
	PrivateKey string           `json:"privateKey"`
	Issuer     string           `json:"issuer"`
}

func (a *app) keygenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a key pair and its issuer reference",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := a.algorithm("algorithm")
			if err != nil {
				return err
			}
			opts := &crypto.GenerateKeyOptions{Bits: a.v.GetInt("bits")}
			if seed := a.v.GetString("seed"); seed != "" {
				if opts.Seed, err = hex.DecodeString(seed); err != nil {
					return fmt.Errorf("seed must be hex: %w", err)
				}
			}

			keys, err := crypto.GenerateKeyPair(alg, opts)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(keyOutput{
				Algorithm:  keys.Algorithm,
				PublicKey:  keys.PublicKey,
				PrivateKey: keys.PrivateKey,
				Issuer:     crypto.EncodePublicKeyAsIssuer(keys.PublicKey, keys.Algorithm),
			}, "", "  ")
			if err != nil {
				return err
			}
			return writeLine(cmd, out)
		},
	}
	cmd.PreRunE = a.bind("algorithm", "bits", "seed")
	cmd.Flags().String("algorithm", string(crypto.Ed25519Signature2018), "signature suite")
	cmd.Flags().Int("bits", 0, "RSA modulus size")
	cmd.Flags().String("seed", "", "hex seed for deterministic Ed25519 or secp256k1 keys")
	return cmd
}

func (a *app) issuerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "issuer",
		Short: "Print the issuer reference of a key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := a.algorithm("algorithm")
			if err != nil {
				return err
			}

			var issuer string
			switch pub, priv := a.v.GetString("public-key"), a.v.GetString("private-key"); {
			case pub != "":
				issuer = crypto.EncodePublicKeyAsIssuer(pub, alg)
			case priv != "":
				if issuer, err = crypto.EncodePrivateKeyAsIssuer(priv, alg); err != nil {
					return err
				}
			default:
				return fmt.Errorf("one of --public-key or --private-key is required")
			}
			return writeLine(cmd, []byte(issuer))
		},
	}
	cmd.PreRunE = a.bind("algorithm", "public-key", "private-key")
	cmd.Flags().String("algorithm", string(crypto.Ed25519Signature2018), "signature suite")
	cmd.Flags().String("public-key", "", "public key")
	cmd.Flags().String("private-key", "", "private key (or CLAIMCTL_PRIVATE_KEY)")
	return cmd
}

func (a *app) createCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create [payload.json|-]",
		Short: "Create an unsigned verifiable claim from a JSON payload",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := ldcontext.ParseClaimType(a.v.GetString("type"))
			if err != nil {
				return err
			}
			issuer := a.v.GetString("issuer")
			if issuer == "" {
				return fmt.Errorf("--issuer is required")
			}

			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			var payload map[string]interface{}
			if err := json.Unmarshal(data, &payload); err != nil {
				return fmt.Errorf("payload must be a JSON object: %w", err)
			}

			var extra []vc.Option
			if file := a.v.GetString("context"); file != "" {
				ctx, err := readContext(file)
				if err != nil {
					return err
				}
				extra = append(extra, vc.WithContext(ctx))
			}

			claim, err := vc.CreateVerifiableClaim(t, payload, issuer, a.options(extra...)...)
			if err != nil {
				return err
			}
			out, err := claim.ToJSON()
			if err != nil {
				return err
			}
			return writeLine(cmd, out)
		},
	}
	cmd.PreRunE = a.bind("type", "issuer", "context")
	cmd.Flags().String("type", string(ldcontext.Work), "claim type")
	cmd.Flags().String("issuer", "", "issuer reference")
	cmd.Flags().String("context", "", "JSON file extending the claim context")
	return cmd
}

func readContext(file string) (ldcontext.Context, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, err
	}
	var ctx ldcontext.Context
	if err := json.Unmarshal(data, &ctx); err != nil {
		return nil, fmt.Errorf("context must be a JSON object: %w", err)
	}
	return ctx, nil
}

func (a *app) idCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "id [claim.json|-]",
		Short: "Compute the content identifier of a claim",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			var claim vc.BaseVerifiableClaim
			if err := json.Unmarshal(data, &claim); err != nil {
				return fmt.Errorf("malformed claim: %w", err)
			}
			id, err := vc.GenerateClaimID(&claim, a.options()...)
			if err != nil {
				return err
			}
			return writeLine(cmd, []byte(id))
		},
	}
}

func (a *app) signCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign [claim.json|-]",
		Short: "Sign a verifiable claim",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			alg, err := a.algorithm("algorithm")
			if err != nil {
				return err
			}
			priv := a.v.GetString("private-key")
			if priv == "" {
				return fmt.Errorf("--private-key is required")
			}

			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}
			claim, err := vc.ParseVerifiableClaim(data)
			if err != nil {
				return err
			}

			var extra []vc.Option
			if a.v.GetBool("allow-undefined-terms") {
				extra = append(extra, vc.WithAllowUndefinedTerms())
			}
			signed, err := vc.NewSigner(a.options(extra...)...).Sign(claim, priv, alg)
			if err != nil {
				return err
			}
			out, err := signed.ToJSON()
			if err != nil {
				return err
			}
			return writeLine(cmd, out)
		},
	}
	cmd.PreRunE = a.bind("algorithm", "private-key", "allow-undefined-terms")
	cmd.Flags().String("algorithm", string(crypto.Ed25519Signature2018), "signature suite")
	cmd.Flags().String("private-key", "", "private key (or CLAIMCTL_PRIVATE_KEY)")
	cmd.Flags().Bool("allow-undefined-terms", false, "leave attributes missing from the context unsigned")
	return cmd
}

func (a *app) verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [signed.json|-]",
		Short: "Verify a signed verifiable claim",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args)
			if err != nil {
				return err
			}

			var extra []vc.Option
			if a.v.GetBool("require-issuer-as-creator") {
				extra = append(extra, vc.WithRequireIssuerAsCreator())
			}
			if a.v.GetBool("validate-rdf") {
				extra = append(extra, vc.WithValidateRDF())
			}
			verifier, err := vc.NewVerifier(a.options(extra...)...)
			if err != nil {
				return err
			}

			if !verifier.IsValidSignedVerifiableClaim(data) {
				_ = writeLine(cmd, []byte("invalid"))
				return errInvalidClaim
			}
			return writeLine(cmd, []byte("valid"))
		},
	}
	cmd.PreRunE = a.bind("require-issuer-as-creator", "validate-rdf")
	cmd.Flags().Bool("require-issuer-as-creator", false, "reject proofs not created by the claim issuer")
	cmd.Flags().Bool("validate-rdf", false, "reject claims whose canonical form holds malformed quads")
	return cmd
}
