// Package idp hosts the in-house identity provider service.
//
// The service implements the OAuth 2.0 Authorization Code Grant for trusted
// internal applications: authorization and consent choreography, one-time
// code redemption, bearer token issuance, and scope-filtered user info.
package idp
