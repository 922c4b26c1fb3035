package ldcontext

import (
	"fmt"
	"sort"
)

// Context maps claim attribute names to JSON-LD term definitions. A value is
// either an IRI (absolute or compact) or an expanded term definition object.
type Context map[string]interface{}

// ClaimType is the closed set of claim type tags.
type ClaimType string

const (
	Identity ClaimType = "Identity"
	Work     ClaimType = "Work"
)

// DefaultClaimContext is shared by every claim type.
//
// It MUST define every top-level attribute of a claim except @context and the
// proof. Attributes without a definition are left out of the canonical form.
func DefaultClaimContext() Context {
	return Context{
		"cred":   "https://w3id.org/credentials#",
		"dc":     "http://purl.org/dc/terms/",
		"schema": "http://schema.org/",
		"sec":    "https://w3id.org/security#",

		"id":           "sec:digestValue",
		"issuer":       "cred:issuer",
		"issuanceDate": "cred:issued",
		"type":         "schema:additionalType",
		"claim":        "schema:Thing",
	}
}

// Base is DefaultClaimContext.
func Base() Context {
	return DefaultClaimContext()
}

// DefaultWorkClaimContext describes a creative work.
func DefaultWorkClaimContext() Context {
	return Context{
		"archiveUrl":   "schema:url",
		"author":       "schema:author",
		"canonicalUrl": "schema:url",
		"claim":        "schema:CreativeWork",
		"contributors": map[string]interface{}{
			"@id":        "schema:ItemList",
			"@container": "@list",
			"@type":      "schema:contributor",
		},
		"copyrightHolder": "schema:copyrightHolder",
		"dateCreated":     "schema:dateCreated",
		"datePublished":   "schema:datePublished",
		"license":         "schema:license",
		"name":            "schema:name",
		"tags":            "schema:keywords",
		"hash":            "sec:digestValue",
	}
}

// DefaultIdentityClaimContext describes an identity binding.
func DefaultIdentityClaimContext() Context {
	return Context{
		"publicKey":  "sec:publicKeyBase58",
		"profileUrl": "sec:owner",
	}
}

var typeDefaults = map[ClaimType]func() Context{
	Identity: DefaultIdentityClaimContext,
	Work:     DefaultWorkClaimContext,
}

// ClaimTypes returns the known claim type tags in lexical order.
func ClaimTypes() []ClaimType {
	types := make([]ClaimType, 0, len(typeDefaults))
	for t := range typeDefaults {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}

// ParseClaimType validates a type tag.
func ParseClaimType(name string) (ClaimType, error) {
	t := ClaimType(name)
	if !t.Valid() {
		return "", fmt.Errorf("unsupported claim type %s", name)
	}
	return t, nil
}

// Valid reports whether t has a registered default context.
func (t ClaimType) Valid() bool {
	_, ok := typeDefaults[t]
	return ok
}

// IsWork reports whether t is the Work type.
func IsWork(t ClaimType) bool { return t == Work }

// IsIdentity reports whether t is the Identity type.
func IsIdentity(t ClaimType) bool { return t == Identity }

// String implements fmt.Stringer.
func (t ClaimType) String() string {
	return string(t)
}

// DefaultContextFor returns the type-specific default context for t.
func DefaultContextFor(t ClaimType) (Context, error) {
	def, ok := typeDefaults[t]
	if !ok {
		return nil, fmt.Errorf("unsupported claim type %s", t)
	}
	return def(), nil
}

// Merge composes contexts left to right. Later entries override earlier ones
// on key collision. Nil contexts are skipped.
func Merge(contexts ...Context) Context {
	merged := make(Context)
	for _, c := range contexts {
		for k, v := range c {
			merged[k] = copyValue(v)
		}
	}
	return merged
}

// Effective returns base -> type default -> ext for t. Unknown types only get
// the base and ext entries.
func Effective(t ClaimType, ext Context) Context {
	var typeCtx Context
	if def, ok := typeDefaults[t]; ok {
		typeCtx = def()
	}
	return Merge(DefaultClaimContext(), typeCtx, ext)
}

// Defines reports whether term has a definition in c or is already an IRI.
func (c Context) Defines(term string) bool {
	if _, ok := c[term]; ok {
		return true
	}
	if len(term) > 0 && term[0] == '@' {
		return true
	}
	for i := 0; i < len(term); i++ {
		if term[i] == ':' {
			return true
		}
	}
	return false
}

// Validate checks that every entry of c is a usable term definition.
func Validate(c Context) error {
	for key, value := range c {
		if key == "" {
			return fmt.Errorf("failed to validate context: empty key")
		}
		switch v := value.(type) {
		case string:
			if v == "" {
				return fmt.Errorf("failed to validate context: empty string value for key %q", key)
			}
		case map[string]interface{}:
			if _, nested := v["@context"]; nested {
				return fmt.Errorf("failed to validate context: key %q must not contain nested @context", key)
			}
		case Context:
			if _, nested := v["@context"]; nested {
				return fmt.Errorf("failed to validate context: key %q must not contain nested @context", key)
			}
		case nil:
			// a null definition explicitly unbinds a term
		default:
			return fmt.Errorf("failed to validate context: key %q must be string or map, got %T", key, v)
		}
	}
	return nil
}

func copyValue(v interface{}) interface{} {
	switch m := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			out[k] = copyValue(val)
		}
		return out
	case Context:
		out := make(map[string]interface{}, len(m))
		for k, val := range m {
			out[k] = copyValue(val)
		}
		return out
	default:
		return v
	}
}
