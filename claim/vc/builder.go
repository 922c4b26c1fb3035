package vc

import (
	"fmt"

	"github.com/pilacorp/go-claim-sdk/claim/common/jsonmap"
	"github.com/pilacorp/go-claim-sdk/claim/common/ldcontext"
)

const issuanceDateLayout = "2006-01-02T15:04:05.000Z07:00"

// CreateVerifiableClaim builds an unsigned claim of type t stamped with the
// current time. The stored context is the merged effective context, so the
// claim is self-contained.
func CreateVerifiableClaim(t ClaimType, payload map[string]interface{}, issuer string, opts ...Option) (*VerifiableClaim, error) {
	o := newOptions(opts)

	if !t.Valid() {
		return nil, illegalArgument("Unsupported claim type %s", t)
	}
	if err := ldcontext.Validate(o.context); err != nil {
		return nil, fmt.Errorf("invalid claim context: %w", err)
	}

	claim := map[string]interface{}{}
	if payload != nil {
		copied, err := jsonmap.FromValue(payload)
		if err != nil {
			return nil, fmt.Errorf("invalid claim payload: %w", err)
		}
		claim = copied
	}

	base := BaseVerifiableClaim{
		Context:      ldcontext.Effective(t, o.context),
		Type:         t,
		Issuer:       issuer,
		IssuanceDate: o.clock().UTC().Format(issuanceDateLayout),
		Claim:        claim,
	}

	id, err := o.claimID(&base)
	if err != nil {
		return nil, err
	}
	o.logger.Debug("created verifiable claim", "id", id, "type", t)

	return &VerifiableClaim{BaseVerifiableClaim: base, ID: id}, nil
}
