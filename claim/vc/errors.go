package vc

import (
	"errors"
	"fmt"

	"github.com/pilacorp/go-claim-sdk/claim/common/keyresolver"
	"github.com/pilacorp/go-claim-sdk/claim/common/processor"
)

// ErrIllegalArgument matches every *IllegalArgumentError.
var ErrIllegalArgument = errors.New("illegal argument")

var (
	// ErrCanonicalization is returned when a claim cannot be normalized.
	ErrCanonicalization = processor.ErrCanonicalization
	// ErrUnresolvableIssuer is returned when an issuer yields no public key.
	ErrUnresolvableIssuer = keyresolver.ErrUnresolvableIssuer
)

const (
	msgEmptyID          = "Cannot sign a claim that has an empty .id field."
	msgAlteredID        = "Cannot sign a claim whose id has been altered or generated incorrectly."
	msgInvalidCreator   = "Cannot sign a claim with an invalid creator in the signing options."
	msgInvalidSignature = "Claim signature is invalid"
)

// IllegalArgumentError reports caller misuse. Its message is part of the API.
type IllegalArgumentError struct {
	Message string
}

func (e *IllegalArgumentError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrIllegalArgument) hold.
func (e *IllegalArgumentError) Is(target error) bool {
	return target == ErrIllegalArgument
}

func illegalArgument(format string, args ...interface{}) error {
	return &IllegalArgumentError{Message: fmt.Sprintf(format, args...)}
}
