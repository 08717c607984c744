package service

import (
	"context"
	"errors"

	"connectrpc.com/connect"

	"github.com/mmynk/watchtogether/internal/apperr"
)

// ErrorKindHeader carries the apperr kind of a failed call so clients can
// branch without parsing messages.
const ErrorKindHeader = "Error-Kind"

var kindCodes = map[apperr.Kind]connect.Code{
	apperr.KindValidation:              connect.CodeInvalidArgument,
	apperr.KindInvalidCode:             connect.CodeNotFound,
	apperr.KindAlreadyMember:           connect.CodeAlreadyExists,
	apperr.KindRemoteWrite:             connect.CodeUnavailable,
	apperr.KindRemoteRead:              connect.CodeUnavailable,
	apperr.KindCodeGenerationExhausted: connect.CodeResourceExhausted,
	apperr.KindNotFound:                connect.CodeNotFound,
	apperr.KindNetwork:                 connect.CodeUnavailable,
	apperr.KindUnauthorized:            connect.CodeUnauthenticated,
	apperr.KindContract:                connect.CodeFailedPrecondition,
}

// toConnectError translates a domain error into a Connect error.
func toConnectError(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		return connectErr
	}
	if errors.Is(err, context.Canceled) {
		return connect.NewError(connect.CodeCanceled, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	}

	kind := apperr.KindOf(err)
	code, ok := kindCodes[kind]
	if !ok {
		return connect.NewError(connect.CodeInternal, err)
	}

	connectErr = connect.NewError(code, errors.New(apperr.MessageOf(err)))
	connectErr.Meta().Set(ErrorKindHeader, string(kind))
	return connectErr
}

// ErrorKind returns the apperr kind attached to a Connect error by the
// server, or "" if there is none.
func ErrorKind(err error) apperr.Kind {
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		return ""
	}
	return apperr.Kind(connectErr.Meta().Get(ErrorKindHeader))
}

// requireUser returns the authenticated caller or an Unauthenticated error.
func requireUser(userID string) error {
	if userID == "" {
		return connect.NewError(connect.CodeUnauthenticated, errors.New("authentication required"))
	}
	return nil
}
