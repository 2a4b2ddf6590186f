// Package imgerr defines the error taxonomy shared by every stage of the
// compression engine. Errors are always job-local: a stage returns an
// *Error and the scheduler records it on that job's result.
package imgerr

import (
	"errors"
	"fmt"
)

// Kind classifies a job failure.
type Kind int

const (
	KindUnknown Kind = iota
	// KindUnsupportedFormat: no known signature matched the input bytes.
	KindUnsupportedFormat
	// KindCorrupt: a signature matched but the structure behind it is invalid.
	KindCorrupt
	// KindInvalidParameters: a transform was asked for something impossible.
	KindInvalidParameters
	// KindInvalidInput: the encoder rejected the image (e.g. zero dimensions).
	KindInvalidInput
	// KindUnsupportedMode: the codec build cannot do what was asked.
	KindUnsupportedMode
	// KindCancelled: the batch was cancelled before the job finished.
	KindCancelled
	// KindIO: the input could not be loaded.
	KindIO
)

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	KindUnsupportedFormat: "unsupported_format",
	KindCorrupt:           "corrupt",
	KindInvalidParameters: "invalid_parameters",
	KindInvalidInput:      "invalid_input",
	KindUnsupportedMode:   "unsupported_mode",
	KindCancelled:         "cancelled",
	KindIO:                "io",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// ParseKind is the inverse of Kind.String. Unknown names map to KindUnknown.
func ParseKind(s string) Kind {
	for k, name := range kindNames {
		if name == s {
			return k
		}
	}
	return KindUnknown
}

// Error is a classified failure. Op names the stage that failed
// ("detect", "decode webp", "transform crop", ...).
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Op != "" && e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Op != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on kind alone: errors.Is(err, &Error{Kind: KindCorrupt}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// Message is the human-readable part without the kind prefix.
func (e *Error) Message() string {
	if e.Err == nil {
		return e.Op
	}
	if e.Op == "" {
		return e.Err.Error()
	}
	return e.Op + ": " + e.Err.Error()
}

// New builds an error from a format string.
func New(kind Kind, op, format string, args ...any) *Error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// Wrap classifies err. An err that already carries a kind keeps it.
func Wrap(kind Kind, op string, err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf returns the kind carried by err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// As converts any error into an *Error, defaulting to fallback when err
// carries no classification.
func As(err error, fallback Kind) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: fallback, Err: err}
}

// Sentinel kinds for errors.Is.
var (
	ErrUnsupportedFormat = &Error{Kind: KindUnsupportedFormat}
	ErrCorrupt           = &Error{Kind: KindCorrupt}
	ErrInvalidParameters = &Error{Kind: KindInvalidParameters}
	ErrInvalidInput      = &Error{Kind: KindInvalidInput}
	ErrUnsupportedMode   = &Error{Kind: KindUnsupportedMode}
	ErrCancelled         = &Error{Kind: KindCancelled}
)
