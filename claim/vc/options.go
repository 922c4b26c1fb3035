package vc

import (
	"log/slog"
	"runtime"
	"time"

	"github.com/piprate/json-gold/ld"

	"github.com/pilacorp/go-claim-sdk/claim/common/crypto"
	"github.com/pilacorp/go-claim-sdk/claim/common/keyresolver"
	"github.com/pilacorp/go-claim-sdk/claim/common/ldcontext"
	"github.com/pilacorp/go-claim-sdk/claim/common/processor"
)

// KeyResolver turns an issuer reference into a verification key.
// *keyresolver.Resolver is the standard implementation.
type KeyResolver = keyresolver.KeyResolver

// Option configures claim creation, signing and verification.
type Option func(*options)

type options struct {
	loader              ld.DocumentLoader
	resolver            KeyResolver
	registry            *crypto.Registry
	logger              *slog.Logger
	clock               func() time.Time
	context             ldcontext.Context
	allowUndefinedTerms bool
	validateRDF         bool
	issuerAsCreator     bool
	concurrency         int
}

// WithDocumentLoader sets the loader used during canonicalization. A loader
// that also implements KeyResolver is used to resolve signers as well.
func WithDocumentLoader(loader ld.DocumentLoader) Option {
	return func(o *options) {
		o.loader = loader
		if r, ok := loader.(KeyResolver); ok && o.resolver == nil {
			o.resolver = r
		}
	}
}

// WithKeyResolver sets how proof creators are turned into public keys.
func WithKeyResolver(resolver KeyResolver) Option {
	return func(o *options) {
		o.resolver = resolver
	}
}

// WithRegistry sets the available signature suites.
func WithRegistry(registry *crypto.Registry) Option {
	return func(o *options) {
		o.registry = registry
	}
}

// WithLogger sets the logger, slog.Default() otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithClock overrides time.Now for issuance dates and proof timestamps.
func WithClock(clock func() time.Time) Option {
	return func(o *options) {
		o.clock = clock
	}
}

// WithContext extends the default context of a claim being created.
func WithContext(ctx ldcontext.Context) Option {
	return func(o *options) {
		o.context = ctx
	}
}

// WithAllowUndefinedTerms lets signing silently drop payload attributes the
// claim context does not define.
func WithAllowUndefinedTerms() Option {
	return func(o *options) {
		o.allowUndefinedTerms = true
	}
}

// WithValidateRDF rejects claims whose canonical form holds malformed quads,
// such as a context term mapped to an IRI that cannot be serialized.
func WithValidateRDF() Option {
	return func(o *options) {
		o.validateRDF = true
	}
}

// WithRequireIssuerAsCreator makes IsValidSignedVerifiableClaim also require
// that the proof was created by the claim's own issuer.
func WithRequireIssuerAsCreator() Option {
	return func(o *options) {
		o.issuerAsCreator = true
	}
}

// WithConcurrency bounds parallel verifications in Verifier.VerifyAll.
func WithConcurrency(n int) Option {
	return func(o *options) {
		o.concurrency = n
	}
}

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if o.registry == nil {
		o.registry = crypto.DefaultRegistry()
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.clock == nil {
		o.clock = time.Now
	}
	if o.concurrency <= 0 {
		o.concurrency = runtime.GOMAXPROCS(0)
	}
	if o.resolver == nil {
		o.resolver = keyresolver.New(keyresolver.WithRegistry(o.registry), keyresolver.WithLogger(o.logger))
	}
	if o.loader == nil {
		if loader, ok := o.resolver.(ld.DocumentLoader); ok {
			o.loader = loader
		} else {
			o.loader = keyresolver.New(keyresolver.WithRegistry(o.registry), keyresolver.WithLogger(o.logger))
		}
	}
	return o
}

func (o *options) processorOpts(strict bool) []processor.Opt {
	opts := []processor.Opt{processor.WithDocumentLoader(o.loader)}
	if strict {
		opts = append(opts, processor.WithStrictTerms())
	}
	if o.validateRDF {
		opts = append(opts, processor.WithValidateRDF())
	}
	return opts
}
