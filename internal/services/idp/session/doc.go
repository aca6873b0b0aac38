// Package session verifies the authenticated-subject input supplied by the
// corporate login service.
//
// The login mechanism itself is an external collaborator: it authenticates
// employees and issues a signed session token. This package only proves that
// a request carries a valid, unexpired token and extracts the subject
// identity from it, so the OAuth endpoints never read ambient session state.
package session
