package imagemeta

import (
	"github.com/simonhull/imagemeta/internal/types"
)

// Error is the error type returned by every operation of this package.
// Use errors.Is with the sentinels below, or KindOf, to branch on the kind.
type Error = types.Error

// Kind classifies an Error.
type Kind = types.Kind

// Error kinds.
const (
	KindUnclassified         = types.KindUnclassified
	KindNotReadYet           = types.KindNotReadYet
	KindIOFailure            = types.KindIOFailure
	KindMalformedInput       = types.KindMalformedInput
	KindInvalidKey           = types.KindInvalidKey
	KindInvalidValue         = types.KindInvalidValue
	KindUnsupportedOperation = types.KindUnsupportedOperation
	KindNotRepeatable        = types.KindNotRepeatable
	KindTypeMismatch         = types.KindTypeMismatch
	KindResourceExhaustion   = types.KindResourceExhaustion
	KindCorruption           = types.KindCorruption
)

// Sentinels matching any Error of their kind.
var (
	ErrUnclassified         = types.ErrUnclassified
	ErrNotReadYet           = types.ErrNotReadYet
	ErrIOFailure            = types.ErrIOFailure
	ErrMalformedInput       = types.ErrMalformedInput
	ErrInvalidKey           = types.ErrInvalidKey
	ErrInvalidValue         = types.ErrInvalidValue
	ErrUnsupportedOperation = types.ErrUnsupportedOperation
	ErrNotRepeatable        = types.ErrNotRepeatable
	ErrTypeMismatch         = types.ErrTypeMismatch
	ErrResourceExhaustion   = types.ErrResourceExhaustion
	ErrCorruption           = types.ErrCorruption
)

// KindOf returns the kind of err, or KindUnclassified for foreign errors.
func KindOf(err error) Kind {
	return types.KindOf(err)
}

// Warning is a non-fatal issue found while decoding.
type Warning = types.Warning
