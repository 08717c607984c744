package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"connectrpc.com/connect"

	"github.com/mmynk/watchtogether/internal/apperr"
)

func TestToConnectError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code connect.Code
		kind apperr.Kind
	}{
		{"invalid code", apperr.New(apperr.KindInvalidCode, "no group"), connect.CodeNotFound, apperr.KindInvalidCode},
		{"already member", apperr.New(apperr.KindAlreadyMember, "dup"), connect.CodeAlreadyExists, apperr.KindAlreadyMember},
		{"exhausted", apperr.New(apperr.KindCodeGenerationExhausted, "full"), connect.CodeResourceExhausted, apperr.KindCodeGenerationExhausted},
		{"remote write", apperr.Wrap(apperr.KindRemoteWrite, errors.New("disk"), "save"), connect.CodeUnavailable, apperr.KindRemoteWrite},
		{"wrapped kind", fmt.Errorf("outer: %w", apperr.New(apperr.KindNetwork, "offline")), connect.CodeUnavailable, apperr.KindNetwork},
		{"unclassified", errors.New("boom"), connect.CodeInternal, ""},
		{"canceled", context.Canceled, connect.CodeCanceled, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := toConnectError(tt.err)
			if got := connect.CodeOf(err); got != tt.code {
				t.Errorf("code = %v, want %v", got, tt.code)
			}
			if got := ErrorKind(err); got != tt.kind {
				t.Errorf("kind = %q, want %q", got, tt.kind)
			}
		})
	}

	if toConnectError(nil) != nil {
		t.Error("nil error must stay nil")
	}
}

func TestToConnectError_HidesCause(t *testing.T) {
	err := toConnectError(apperr.Wrap(apperr.KindRemoteRead, errors.New("SQL logic error near SELECT"), "could not load group"))
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		t.Fatalf("expected *connect.Error, got %T", err)
	}
	if connectErr.Message() != "could not load group" {
		t.Errorf("message = %q, want only the human-readable message", connectErr.Message())
	}
}

func TestKindCodes_MatchDeclaredKinds(t *testing.T) {
	declared := []apperr.Kind{
		apperr.KindValidation,
		apperr.KindInvalidCode,
		apperr.KindAlreadyMember,
		apperr.KindRemoteWrite,
		apperr.KindRemoteRead,
		apperr.KindCodeGenerationExhausted,
		apperr.KindNotFound,
		apperr.KindNetwork,
		apperr.KindUnauthorized,
		apperr.KindContract,
	}

	for _, kind := range declared {
		code, ok := kindCodes[kind]
		if !ok {
			t.Errorf("kind %q has no Connect code", kind)
			continue
		}
		if code == connect.CodeInternal {
			t.Errorf("kind %q maps to %v", kind, code)
		}
	}
	if len(kindCodes) != len(declared) {
		t.Errorf("kindCodes has %d entries, want one per declared kind (%d)", len(kindCodes), len(declared))
	}
}
