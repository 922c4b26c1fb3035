package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pilacorp/go-claim-sdk/claim/common/crypto"
	"github.com/pilacorp/go-claim-sdk/claim/common/keyresolver"
	"github.com/pilacorp/go-claim-sdk/claim/vc"
)

const envPrefix = "CLAIMCTL"

// errInvalidClaim makes verify exit with status 1.
var errInvalidClaim = errors.New("claim is invalid")

type app struct {
	v      *viper.Viper
	logger *slog.Logger
}

func newRootCmd(v *viper.Viper) *cobra.Command {
	a := &app{v: v}

	root := &cobra.Command{
		Use:           "claimctl",
		Short:         "Create, sign and verify verifiable claims",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init(cmd)
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file (YAML, JSON or TOML)")
	flags.String("log-level", "info", "log level: debug, info, warn or error")
	flags.String("log-format", "text", "log format: text or json")
	flags.Bool("offline", false, "only resolve self-describing data: issuers")
	flags.Int("retries", 0, "retries for remote issuer documents")
	for _, name := range []string{"config", "log-level", "log-format", "offline", "retries"} {
		_ = v.BindPFlag(name, flags.Lookup(name))
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	root.AddCommand(
		a.keygenCmd(),
		a.issuerCmd(),
		a.createCmd(),
		a.idCmd(),
		a.signCmd(),
		a.verifyCmd(),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	if file := a.v.GetString("config"); file != "" {
		a.v.SetConfigFile(file)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	logger, err := newLogger(cmd.ErrOrStderr(), a.v.GetString("log-level"), a.v.GetString("log-format"))
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

func newLogger(w io.Writer, level, format string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "text":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

// options wires the shared flags into the library.
func (a *app) options(extra ...vc.Option) []vc.Option {
	resolverOpts := []keyresolver.Option{
		keyresolver.WithLogger(a.logger),
		keyresolver.WithRetry(uint64(max(a.v.GetInt("retries"), 0))),
	}
	if a.v.GetBool("offline") {
		resolverOpts = append(resolverOpts, keyresolver.WithoutNetwork())
	}

	opts := []vc.Option{
		vc.WithLogger(a.logger),
		vc.WithKeyResolver(keyresolver.New(resolverOpts...)),
	}
	return append(opts, extra...)
}

func (a *app) algorithm(name string) (crypto.Algorithm, error) {
	return crypto.ParseAlgorithm(a.v.GetString(name))
}

// readInput reads a file argument, or stdin for "-" or no argument.
func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(args[0])
}

func writeLine(cmd *cobra.Command, data []byte) error {
	_, err := fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return err
}
