package types

import (
	"errors"
	"fmt"
)

// Kind classifies a failure into one of a small, stable set of
// caller-facing categories.
type Kind int

const (
	KindUnclassified Kind = iota
	KindNotReadYet
	KindIOFailure
	KindMalformedInput
	KindInvalidKey
	KindInvalidValue
	KindUnsupportedOperation
	KindNotRepeatable
	KindTypeMismatch
	KindResourceExhaustion
	KindCorruption
)

var kindNames = [...]string{
	KindUnclassified:         "unclassified",
	KindNotReadYet:           "metadata not read",
	KindIOFailure:            "i/o failure",
	KindMalformedInput:       "malformed input",
	KindInvalidKey:           "invalid key",
	KindInvalidValue:         "invalid value",
	KindUnsupportedOperation: "unsupported operation",
	KindNotRepeatable:        "not repeatable",
	KindTypeMismatch:         "type mismatch",
	KindResourceExhaustion:   "resource exhaustion",
	KindCorruption:           "corruption",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Error is the single error type surfaced by every public operation.
//
// Kind is always set. Context carries the offending key, value or path
// when one exists. Err is the underlying cause, if any.
type Error struct {
	Kind    Kind
	Op      string
	Context string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Context != "" {
		msg += fmt.Sprintf(" %q", e.Context)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same Kind. A target with
// Op or Context set must match those too, so the sentinels below match any
// error of their kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Kind != e.Kind {
		return false
	}
	if t.Op != "" && t.Op != e.Op {
		return false
	}
	return t.Context == "" || t.Context == e.Context
}

// Sentinels for errors.Is matching.
var (
	ErrUnclassified         = &Error{Kind: KindUnclassified}
	ErrNotReadYet           = &Error{Kind: KindNotReadYet}
	ErrIOFailure            = &Error{Kind: KindIOFailure}
	ErrMalformedInput       = &Error{Kind: KindMalformedInput}
	ErrInvalidKey           = &Error{Kind: KindInvalidKey}
	ErrInvalidValue         = &Error{Kind: KindInvalidValue}
	ErrUnsupportedOperation = &Error{Kind: KindUnsupportedOperation}
	ErrNotRepeatable        = &Error{Kind: KindNotRepeatable}
	ErrTypeMismatch         = &Error{Kind: KindTypeMismatch}
	ErrResourceExhaustion   = &Error{Kind: KindResourceExhaustion}
	ErrCorruption           = &Error{Kind: KindCorruption}
)

// NewError builds an *Error.
func NewError(kind Kind, op, context string, err error) *Error {
	return &Error{Kind: kind, Op: op, Context: context, Err: err}
}

// KindOf returns the Kind of err, or KindUnclassified when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnclassified
}

// Warning represents a non-fatal issue encountered while decoding.
//
// Warnings indicate problems that don't prevent metadata extraction but
// may indicate corrupted or unusual data. Examples include:
//   - IFD entries with an unknown type
//   - XMP structures that cannot be flattened into keys
//   - Previews above the configured size limit
type Warning struct {
	// Stage where the warning occurred
	Stage string // "exif", "iptc", "xmp", "preview"

	// Warning message
	Message string

	// File offset where the issue occurred (0 if not applicable)
	Offset int64
}

// String returns a human-readable warning message.
func (w Warning) String() string {
	if w.Offset > 0 {
		return fmt.Sprintf("%s (at offset %d): %s", w.Stage, w.Offset, w.Message)
	}
	return fmt.Sprintf("%s: %s", w.Stage, w.Message)
}
