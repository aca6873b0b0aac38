package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorIsByCode(t *testing.T) {
	err := New(CodeInvalidGrant, "code already redeemed")
	target := New(CodeInvalidGrant, "different message")
	if !stderrors.Is(err, target) {
		t.Fatal("expected errors with equal codes to match")
	}
	other := New(CodeInvalidClient, "code already redeemed")
	if stderrors.Is(err, other) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Wrap(CodeServerError, "persist token", cause)
	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable")
	}
	if err.Error() != "persist token" {
		t.Fatalf("Error() = %q, want %q", err.Error(), "persist token")
	}
}

func TestCodeOf(t *testing.T) {
	wrapped := fmt.Errorf("handler: %w", New(CodeInvalidToken, "expired"))
	if got := CodeOf(wrapped); got != CodeInvalidToken {
		t.Fatalf("CodeOf = %q, want %q", got, CodeInvalidToken)
	}
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("CodeOf plain error = %q, want %q", got, CodeUnknown)
	}
	if got := CodeOf(nil); got != CodeUnknown {
		t.Fatalf("CodeOf nil = %q, want %q", got, CodeUnknown)
	}
}

func TestOAuthErrorMapping(t *testing.T) {
	cases := []struct {
		code Code
		want string
	}{
		{CodeInvalidRequest, "invalid_request"},
		{CodeInvalidClient, "invalid_client"},
		{CodeInvalidGrant, "invalid_grant"},
		{CodeNotFound, "invalid_grant"},
		{CodeUnsupportedGrantType, "unsupported_grant_type"},
		{CodeUnsupportedResponseType, "unsupported_response_type"},
		{CodeAccessDenied, "access_denied"},
		{CodeInvalidToken, "invalid_token"},
		{CodeSessionExpired, "invalid_token"},
		{CodeServerError, "server_error"},
		{CodeUnknown, "server_error"},
	}
	for _, tc := range cases {
		if got := tc.code.OAuthError(); got != tc.want {
			t.Errorf("%s.OAuthError() = %q, want %q", tc.code, got, tc.want)
		}
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		code Code
		want int
	}{
		{CodeInvalidRequest, http.StatusBadRequest},
		{CodeInvalidGrant, http.StatusBadRequest},
		{CodeInvalidClient, http.StatusUnauthorized},
		{CodeInvalidToken, http.StatusUnauthorized},
		{CodeServerError, http.StatusInternalServerError},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := tc.code.HTTPStatus(); got != tc.want {
			t.Errorf("%s.HTTPStatus() = %d, want %d", tc.code, got, tc.want)
		}
	}
}
