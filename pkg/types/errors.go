// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"errors"
	"fmt"
)

// ErrorKind classifies conversion failures and warnings.
type ErrorKind string

const (
	// Fatal kinds.
	KindInputNotFound         ErrorKind = "InputNotFound"
	KindUnrecognizedContainer ErrorKind = "UnrecognizedContainer"
	KindMissingTopicDocument  ErrorKind = "MissingTopicDocument"
	KindMalformedXML          ErrorKind = "MalformedXML"
	KindMissingMandatoryField ErrorKind = "MissingMandatoryField"

	// Recoverable kinds.
	KindUnresolvedRelationshipTarget ErrorKind = "UnresolvedRelationshipTarget"
)

// Sentinels for errors.Is matching against a *ConversionError's kind.
var (
	ErrInputNotFound         = errors.New("input not found")
	ErrUnrecognizedContainer = errors.New("unrecognized container")
	ErrMissingTopicDocument  = errors.New("missing topic document")
	ErrMalformedXML          = errors.New("malformed XML")
	ErrMissingMandatoryField = errors.New("missing mandatory field")
)

var kindSentinels = map[ErrorKind]error{
	KindInputNotFound:         ErrInputNotFound,
	KindUnrecognizedContainer: ErrUnrecognizedContainer,
	KindMissingTopicDocument:  ErrMissingTopicDocument,
	KindMalformedXML:          ErrMalformedXML,
	KindMissingMandatoryField: ErrMissingMandatoryField,
}

// ConversionError is a fatal, classified conversion failure.
type ConversionError struct {
	Kind   ErrorKind
	Path   string
	Detail string

	// Line is the 1-based position hint for MalformedXML, 0 when unknown.
	Line int

	Err error
}

// NewConversionError builds a ConversionError.
func NewConversionError(kind ErrorKind, path, detail string, cause error) *ConversionError {
	return &ConversionError{Kind: kind, Path: path, Detail: detail, Err: cause}
}

func (e *ConversionError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Kind, e.Path)
	if e.Line > 0 {
		msg += fmt.Sprintf(":%d", e.Line)
	}
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ConversionError) Unwrap() error { return e.Err }

// Is matches the sentinel for the error's kind.
func (e *ConversionError) Is(target error) bool {
	s, ok := kindSentinels[e.Kind]
	return ok && s == target
}

// KindOf returns the kind of a *ConversionError anywhere in err's chain, or
// "" when err is not a conversion error.
func KindOf(err error) ErrorKind {
	var ce *ConversionError
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}

// Warning is a recoverable condition reported alongside a successful result.
type Warning struct {
	Kind   ErrorKind `json:"kind" yaml:"kind"`
	Detail string    `json:"detail" yaml:"detail"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Detail)
}
