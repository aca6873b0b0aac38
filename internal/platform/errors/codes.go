package errors

import "net/http"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// OAuth protocol errors
	CodeInvalidRequest          Code = "OAUTH_INVALID_REQUEST"
	CodeInvalidClient           Code = "OAUTH_INVALID_CLIENT"
	CodeInvalidGrant            Code = "OAUTH_INVALID_GRANT"
	CodeUnsupportedGrantType    Code = "OAUTH_UNSUPPORTED_GRANT_TYPE"
	CodeUnsupportedResponseType Code = "OAUTH_UNSUPPORTED_RESPONSE_TYPE"
	CodeAccessDenied            Code = "OAUTH_ACCESS_DENIED"
	CodeInvalidToken            Code = "OAUTH_INVALID_TOKEN"
	CodeServerError             Code = "OAUTH_SERVER_ERROR"

	// Session errors
	CodeSessionMissing Code = "SESSION_MISSING"
	CodeSessionInvalid Code = "SESSION_INVALID"
	CodeSessionExpired Code = "SESSION_EXPIRED"

	// Subject errors
	CodeSubjectEmptyEmail   Code = "SUBJECT_EMPTY_EMAIL"
	CodeSubjectInvalidEmail Code = "SUBJECT_INVALID_EMAIL"
	CodeSubjectEmptyName    Code = "SUBJECT_EMPTY_NAME"

	// Storage errors
	CodeNotFound Code = "NOT_FOUND"
)

// OAuthError maps domain codes to RFC 6749 error strings for wire responses.
func (c Code) OAuthError() string {
	switch c {
	case CodeInvalidRequest:
		return "invalid_request"
	case CodeInvalidClient:
		return "invalid_client"
	case CodeInvalidGrant, CodeNotFound:
		return "invalid_grant"
	case CodeUnsupportedGrantType:
		return "unsupported_grant_type"
	case CodeUnsupportedResponseType:
		return "unsupported_response_type"
	case CodeAccessDenied:
		return "access_denied"
	case CodeInvalidToken, CodeSessionMissing, CodeSessionInvalid, CodeSessionExpired:
		return "invalid_token"
	default:
		return "server_error"
	}
}

// HTTPStatus maps domain codes to HTTP status codes for back-channel responses.
func (c Code) HTTPStatus() int {
	switch c {
	// BadRequest - malformed or rejected input
	case CodeInvalidRequest,
		CodeInvalidGrant,
		CodeUnsupportedGrantType,
		CodeUnsupportedResponseType,
		CodeAccessDenied,
		CodeNotFound:
		return http.StatusBadRequest

	// Unauthorized - failed client or token authentication
	case CodeInvalidClient,
		CodeInvalidToken,
		CodeSessionMissing,
		CodeSessionInvalid,
		CodeSessionExpired:
		return http.StatusUnauthorized

	default:
		return http.StatusInternalServerError
	}
}
