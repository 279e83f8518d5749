// Package apperr defines the small, closed error taxonomy shared by
// every package in this module: errors are values with a Kind, checked
// with errors.Is/errors.As rather than a typed-exception hierarchy.
package apperr

import "errors"

// Kind classifies an Error without tying callers to a specific message
// string, so control code can branch with errors.Is against the
// package-level sentinels below.
type Kind int

const (
	KindUnknown Kind = iota
	KindDeviceError
	KindFormatUnsupported
	KindNotSeekable
	KindEndOfStream
	KindTimeout
	KindNotSupported
	KindDisposed
	KindInvalidArgument
	KindRouteFaulted
	KindDecoderError
	KindEncoderError
)

func (k Kind) String() string {
	switch k {
	case KindDeviceError:
		return "DeviceError"
	case KindFormatUnsupported:
		return "FormatUnsupported"
	case KindNotSeekable:
		return "NotSeekable"
	case KindEndOfStream:
		return "EndOfStream"
	case KindTimeout:
		return "Timeout"
	case KindNotSupported:
		return "NotSupported"
	case KindDisposed:
		return "Disposed"
	case KindInvalidArgument:
		return "InvalidArgument"
	case KindRouteFaulted:
		return "RouteFaulted"
	case KindDecoderError:
		return "DecoderError"
	case KindEncoderError:
		return "EncoderError"
	default:
		return "Unknown"
	}
}

// Error is a value-based error carrying a Kind and an optional wrapped
// cause, following the stdlib errors.Is/errors.As convention rather
// than a typed-exception hierarchy.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Kind.String() + ": " + e.Message
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports equality by Kind, so errors.Is(err, ErrNotSeekable) works
// without requiring identical Message/Err fields.
func (e *Error) Is(target error) bool {
	var o *Error
	if errors.As(target, &o) {
		return e.Kind == o.Kind
	}
	return false
}

// New constructs an *Error of the given kind with a message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an *Error of the given kind wrapping cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Sentinel values for errors.Is comparisons against a bare Kind.
var (
	ErrDeviceError        = &Error{Kind: KindDeviceError}
	ErrFormatUnsupported  = &Error{Kind: KindFormatUnsupported}
	ErrNotSeekable        = &Error{Kind: KindNotSeekable}
	ErrEndOfStream        = &Error{Kind: KindEndOfStream}
	ErrTimeout            = &Error{Kind: KindTimeout}
	ErrNotSupported       = &Error{Kind: KindNotSupported}
	ErrDisposed           = &Error{Kind: KindDisposed}
	ErrInvalidArgument    = &Error{Kind: KindInvalidArgument}
	ErrRouteFaulted       = &Error{Kind: KindRouteFaulted}
	ErrDecoderError       = &Error{Kind: KindDecoderError}
	ErrEncoderError       = &Error{Kind: KindEncoderError}
)
