package processor

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/piprate/json-gold/ld"

	"github.com/pilacorp/go-claim-sdk/claim/common/ldcontext"
)

const (
	format    = "application/n-quads"
	algorithm = ld.AlgorithmURDNA2015
)

var (
	// ErrCanonicalization wraps every failure to produce canonical N-Quads.
	ErrCanonicalization = errors.New("canonicalization failed")
	// ErrInvalidRDFFound is returned when the canonical form does not parse
	// back as N-Quads, e.g. when a context maps a term to a malformed IRI.
	ErrInvalidRDFFound = errors.New("invalid RDF in canonical form")
)

// Options holds options for canonicalization of JSON-LD docs.
type Options struct {
	DocumentLoader ld.DocumentLoader
	ValidateRDF    bool
	StrictTerms    bool
}

// Opt is a canonicalization option.
type Opt func(opts *Options)

// WithDocumentLoader sets the loader for remote contexts. Without one, any
// remote context is a canonicalization error.
func WithDocumentLoader(loader ld.DocumentLoader) Opt {
	return func(opts *Options) {
		opts.DocumentLoader = loader
	}
}

// WithValidateRDF fails when the canonical form holds invalid quads.
func WithValidateRDF() Opt {
	return func(opts *Options) {
		opts.ValidateRDF = true
	}
}

// WithStrictTerms rejects documents using properties the inline @context
// does not define, instead of silently dropping them.
func WithStrictTerms() Opt {
	return func(opts *Options) {
		opts.StrictTerms = true
	}
}

// offlineLoader refuses every remote document.
type offlineLoader struct{}

func (offlineLoader) LoadDocument(u string) (*ld.RemoteDocument, error) {
	return nil, ld.NewJsonLdError(ld.LoadingDocumentFailed, fmt.Errorf("no document loader configured for %s", u))
}

func prepareOpts(opts []Opt) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.DocumentLoader == nil {
		o.DocumentLoader = offlineLoader{}
	}
	return o
}

// CanonicalizeDocument returns the canonical N-Quads of doc. doc may be any
// value that marshals to a JSON object.
func CanonicalizeDocument(doc interface{}, opts ...Opt) ([]byte, error) {
	o := prepareOpts(opts)

	if doc == nil {
		return nil, fmt.Errorf("%w: document is nil", ErrCanonicalization)
	}
	normalized, err := toGeneric(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCanonicalization, err)
	}

	if o.StrictTerms {
		if err := checkTerms(normalized); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCanonicalization, err)
		}
	}

	ldOptions := ld.NewJsonLdOptions("")
	ldOptions.ProcessingMode = ld.JsonLd_1_1
	ldOptions.Algorithm = algorithm
	ldOptions.Format = format
	ldOptions.DocumentLoader = o.DocumentLoader

	view, err := ld.NewJsonLdProcessor().Normalize(normalized, ldOptions)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to normalize JSON-LD document: %v", ErrCanonicalization, err)
	}
	result, ok := view.(string)
	if !ok {
		return nil, fmt.Errorf("%w: failed to normalize JSON-LD document, invalid view", ErrCanonicalization)
	}

	if o.ValidateRDF {
		if err := validateRDF(result); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCanonicalization, err)
		}
	}

	return []byte(result), nil
}

// ComputeDigest returns the SHA-256 digest of data.
func ComputeDigest(data []byte) []byte {
	hash := sha256.Sum256(data)
	return hash[:]
}

// HexDigest returns the lowercase hex SHA-256 digest of data.
func HexDigest(data []byte) string {
	return hex.EncodeToString(ComputeDigest(data))
}

// toGeneric round-trips doc through JSON so the JSON-LD processor only sees
// maps, slices, strings, float64, bool and nil.
func toGeneric(doc interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal document: %w", err)
	}
	var out map[string]interface{}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("document is not a JSON object: %w", err)
	}
	if out == nil {
		return nil, errors.New("document is null")
	}
	return out, nil
}

// checkTerms walks every property name of doc against its inline @context.
// Remote (string) contexts cannot be checked and disable the walk.
func checkTerms(doc map[string]interface{}) error {
	ctx, ok := inlineContext(doc["@context"])
	if !ok {
		return nil
	}

	var undefined []string
	walkTerms(doc, ctx, &undefined)
	if len(undefined) == 0 {
		return nil
	}
	sort.Strings(undefined)
	return fmt.Errorf("The property %q in the input was not defined in the context.", undefined[0]) //nolint:staticcheck
}

func inlineContext(raw interface{}) (ldcontext.Context, bool) {
	switch c := raw.(type) {
	case nil:
		return ldcontext.Context{}, true
	case map[string]interface{}:
		return ldcontext.Context(c), true
	case []interface{}:
		merged := make([]ldcontext.Context, 0, len(c))
		for _, entry := range c {
			m, ok := entry.(map[string]interface{})
			if !ok {
				return nil, false
			}
			merged = append(merged, m)
		}
		return ldcontext.Merge(merged...), true
	default:
		return nil, false
	}
}

func walkTerms(value interface{}, ctx ldcontext.Context, undefined *[]string) {
	switch v := value.(type) {
	case map[string]interface{}:
		for key, child := range v {
			if key == "@context" {
				continue
			}
			if !ctx.Defines(key) {
				*undefined = append(*undefined, key)
				continue
			}
			if strings.HasPrefix(key, "@") && key != "@graph" && key != "@list" && key != "@set" {
				continue
			}
			walkTerms(child, ctx, undefined)
		}
	case []interface{}:
		for _, child := range v {
			walkTerms(child, ctx, undefined)
		}
	}
}

// validateRDF parses the canonical form back. URDNA2015 serializes IRIs
// without checking them, so a malformed IRI in a context survives
// normalization but not parsing.
func validateRDF(view string) error {
	if _, err := ld.ParseNQuads(view); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRDFFound, err)
	}
	return nil
}
