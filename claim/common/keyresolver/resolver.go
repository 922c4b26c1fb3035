package keyresolver

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/bluele/gcache"
	"github.com/cenkalti/backoff/v4"
	"github.com/piprate/json-gold/ld"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/pilacorp/go-claim-sdk/claim/common/crypto"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultCacheSize = 128
)

// Resolver turns issuer references into verification keys. Data URL issuers
// are answered locally; anything else goes to the fallback loader.
//
// Resolver implements ld.DocumentLoader.
type Resolver struct {
	registry   *crypto.Registry
	fallback   ld.DocumentLoader
	httpClient *http.Client
	network    bool
	cacheSize  int
	cache      gcache.Cache
	maxRetries uint64
	logger     *slog.Logger
}

var (
	_ ld.DocumentLoader = (*Resolver)(nil)
	_ KeyResolver       = (*Resolver)(nil)
)

// Option configures a Resolver.
type Option func(*Resolver)

// WithRegistry sets the suites used to interpret keys.
func WithRegistry(registry *crypto.Registry) Option {
	return func(r *Resolver) {
		r.registry = registry
	}
}

// WithoutNetwork restricts resolution to data URL issuers.
func WithoutNetwork() Option {
	return func(r *Resolver) {
		r.network = false
	}
}

// WithHTTPClient sets the client used by the default fallback loader.
func WithHTTPClient(client *http.Client) Option {
	return func(r *Resolver) {
		r.httpClient = client
	}
}

// WithFallbackLoader replaces the HTTP loader for non data URL documents.
func WithFallbackLoader(loader ld.DocumentLoader) Option {
	return func(r *Resolver) {
		r.fallback = loader
	}
}

// WithCacheSize bounds the LRU cache of fetched documents. Zero disables it.
func WithCacheSize(size int) Option {
	return func(r *Resolver) {
		r.cacheSize = size
	}
}

// WithRetry retries failed fetches with exponential backoff.
func WithRetry(maxRetries uint64) Option {
	return func(r *Resolver) {
		r.maxRetries = maxRetries
	}
}

// WithLogger sets the logger, slog.Default() otherwise.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates a Resolver.
func New(opts ...Option) *Resolver {
	r := &Resolver{
		network:   true,
		cacheSize: defaultCacheSize,
	}
	for _, opt := range opts {
		opt(r)
	}

	if r.registry == nil {
		r.registry = crypto.DefaultRegistry()
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	if r.network && r.fallback == nil {
		client := r.httpClient
		if client == nil {
			client = &http.Client{
				Timeout:   defaultTimeout,
				Transport: otelhttp.NewTransport(http.DefaultTransport),
			}
		}
		r.fallback = ld.NewDefaultDocumentLoader(client)
	}
	if r.cacheSize > 0 {
		r.cache = gcache.New(r.cacheSize).LRU().Build()
	}

	return r
}

// Resolve returns the verification key for issuer.
func (r *Resolver) Resolve(ctx context.Context, issuer string) (*Key, error) {
	if IsDataURL(issuer) {
		return keyFromIssuer(r.registry, issuer)
	}

	doc, err := r.loadRemote(ctx, issuer)
	if err != nil {
		return nil, err
	}
	return keyFromDocument(r.registry, issuer, doc.Document)
}

// LoadDocument implements ld.DocumentLoader.
func (r *Resolver) LoadDocument(u string) (*ld.RemoteDocument, error) {
	if IsDataURL(u) {
		key, err := keyFromIssuer(r.registry, u)
		if err != nil {
			return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, err)
		}
		return &ld.RemoteDocument{DocumentURL: u, Document: key.Document()}, nil
	}

	doc, err := r.loadRemote(context.Background(), u)
	if err != nil {
		return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, err)
	}
	return doc, nil
}

func (r *Resolver) loadRemote(ctx context.Context, u string) (*ld.RemoteDocument, error) {
	if !r.network {
		return nil, fmt.Errorf("%w: network resolution disabled for %s", ErrUnresolvableIssuer, u)
	}

	if r.cache != nil {
		if cached, err := r.cache.Get(u); err == nil {
			return cached.(*ld.RemoteDocument), nil
		} else if !errors.Is(err, gcache.KeyNotFoundError) {
			r.logger.WarnContext(ctx, "document cache lookup failed", "url", u, "error", err)
		}
	}

	var doc *ld.RemoteDocument
	fetch := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		var err error
		doc, err = r.fallback.LoadDocument(u)
		return err
	}
	notify := func(err error, wait time.Duration) {
		r.logger.WarnContext(ctx, "document fetch failed, retrying", "url", u, "wait", wait, "error", err)
	}

	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), r.maxRetries), ctx)
	if err := backoff.RetryNotify(fetch, policy, notify); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnresolvableIssuer, err)
	}
	r.logger.DebugContext(ctx, "fetched document", "url", u)

	if r.cache != nil {
		if err := r.cache.Set(u, doc); err != nil {
			r.logger.WarnContext(ctx, "document cache store failed", "url", u, "error", err)
		}
	}
	return doc, nil
}
