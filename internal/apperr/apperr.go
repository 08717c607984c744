// Package apperr defines the failure kinds shared by the group, swipe and
// movie components.
//
// Every failure carries a machine-checkable Kind and a human-readable
// message, so callers can branch on errors.Is(err, apperr.InvalidCode)
// instead of matching strings.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies a class of failure.
type Kind string

const (
	KindValidation              Kind = "validation"
	KindInvalidCode             Kind = "invalid_code"
	KindAlreadyMember           Kind = "already_member"
	KindRemoteWrite             Kind = "remote_write"
	KindRemoteRead              Kind = "remote_read"
	KindCodeGenerationExhausted Kind = "code_generation_exhausted"
	KindNotFound                Kind = "not_found"
	KindNetwork                 Kind = "network"
	KindUnauthorized            Kind = "unauthorized"
	KindContract                Kind = "contract"
)

// Sentinels for errors.Is. They compare by kind only.
var (
	Validation              = &Error{Kind: KindValidation}
	InvalidCode             = &Error{Kind: KindInvalidCode}
	AlreadyMember           = &Error{Kind: KindAlreadyMember}
	RemoteWrite             = &Error{Kind: KindRemoteWrite}
	RemoteRead              = &Error{Kind: KindRemoteRead}
	CodeGenerationExhausted = &Error{Kind: KindCodeGenerationExhausted}
	NotFound                = &Error{Kind: KindNotFound}
	Network                 = &Error{Kind: KindNetwork}
	Unauthorized            = &Error{Kind: KindUnauthorized}
	Contract                = &Error{Kind: KindContract}
)

// Error is a classified failure.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// New returns an Error of the given kind.
func New(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error of the given kind that wraps err.
func Wrap(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func (e *Error) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Kind)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in err's chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// MessageOf returns the human-readable message of the first *Error in err's
// chain, falling back to err.Error().
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
